package generate

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

var novaModels = map[string]string{
	"nova-lite": "us.amazon.nova-2-lite-v1:0",
	"nova-pro":  "us.amazon.nova-2-pro-v1:0",
}

// NovaGenerator calls Amazon Nova models through the Bedrock Converse API.
type NovaGenerator struct {
	model  string
	client *bedrockruntime.Client
}

func NewNovaGenerator(ctx context.Context, model string) (*NovaGenerator, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return &NovaGenerator{
		model:  model,
		client: bedrockruntime.NewFromConfig(cfg),
	}, nil
}

func (g *NovaGenerator) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	modelID := novaModels[g.model]
	if modelID == "" {
		modelID = g.model
	}
	if modelID == "" {
		modelID = novaModels["nova-lite"]
	}

	maxTokens := int32(opts.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	var lastErr error
	backoff := initialBackoff

	for attempt := 1; attempt <= maxRetries; attempt++ {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		resp, err := g.client.Converse(ctx, &bedrockruntime.ConverseInput{
			ModelId: aws.String(modelID),
			Messages: []types.Message{
				{
					Role: types.ConversationRoleUser,
					Content: []types.ContentBlock{
						&types.ContentBlockMemberText{Value: prompt},
					},
				},
			},
			InferenceConfig: &types.InferenceConfiguration{
				MaxTokens:   aws.Int32(maxTokens),
				Temperature: aws.Float32(float32(opts.Temperature)),
			},
		})
		if err != nil {
			lastErr = &Error{Provider: "nova", Reason: ReasonTransport, Detail: "Bedrock Converse", Err: err}
			if attempt < maxRetries {
				if serr := sleepBackoff(ctx, backoff); serr != nil {
					return "", serr
				}
				backoff *= time.Duration(backoffMult)
			}
			continue
		}

		text := novaText(resp)
		if text == "" {
			lastErr = &Error{Provider: "nova", Reason: ReasonEmptyResponse, Detail: "empty response"}
			if attempt < maxRetries {
				if serr := sleepBackoff(ctx, backoff); serr != nil {
					return "", serr
				}
				backoff *= time.Duration(backoffMult)
			}
			continue
		}

		return text, nil
	}
	return "", lastErr
}

func novaText(resp *bedrockruntime.ConverseOutput) string {
	if resp.Output == nil {
		return ""
	}
	msg, ok := resp.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return ""
	}
	for _, block := range msg.Value.Content {
		if tb, ok := block.(*types.ContentBlockMemberText); ok {
			return tb.Value
		}
	}
	return ""
}

// ListModels returns the Nova model identifiers this tool knows how to
// drive. Bedrock model discovery needs the control-plane API and broader
// IAM permissions, so the list is static.
func (g *NovaGenerator) ListModels(ctx context.Context) ([]string, error) {
	ids := make([]string, 0, len(novaModels))
	for alias := range novaModels {
		ids = append(ids, alias)
	}
	sort.Strings(ids)
	return ids, nil
}
