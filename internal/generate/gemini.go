package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

var geminiModels = map[string]string{
	"gemini-flash": "gemini-2.5-flash",
	"gemini-pro":   "gemini-2.5-pro",
}

const (
	geminiGenerateEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent"
	geminiListEndpoint     = "https://generativelanguage.googleapis.com/v1beta/models"
)

// GeminiGenerator calls the Gemini REST API directly.
type GeminiGenerator struct {
	model      string
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

func NewGeminiGenerator(model string) *GeminiGenerator {
	return &GeminiGenerator{
		model:      model,
		apiKey:     os.Getenv("GEMINI_API_KEY"),
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// geminiRequest is the request body for generateContent.
type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig *geminiGenCfg   `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenCfg struct {
	Temperature     float64            `json:"temperature"`
	MaxOutputTokens int                `json:"maxOutputTokens,omitempty"`
	ThinkingConfig  *geminiThinkingCfg `json:"thinkingConfig,omitempty"`
}

type geminiThinkingCfg struct {
	ThinkingBudget int `json:"thinkingBudget"`
}

type geminiResponse struct {
	Candidates     []geminiCandidate `json:"candidates"`
	PromptFeedback *geminiFeedback   `json:"promptFeedback"`
}

type geminiCandidate struct {
	Content geminiRespContent `json:"content"`
}

type geminiRespContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiFeedback struct {
	BlockReason string `json:"blockReason"`
}

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	if g.apiKey == "" {
		return "", &Error{Provider: "gemini", Reason: ReasonTransport, Detail: "GEMINI_API_KEY is not set"}
	}

	modelID := geminiModels[g.model]
	if modelID == "" {
		modelID = g.model
	}
	if modelID == "" {
		modelID = geminiModels["gemini-flash"]
	}

	genCfg := &geminiGenCfg{
		Temperature:     opts.Temperature,
		MaxOutputTokens: opts.MaxTokens,
	}
	if opts.ThinkingBudget >= 0 {
		genCfg.ThinkingConfig = &geminiThinkingCfg{ThinkingBudget: opts.ThinkingBudget}
	}
	reqBody := geminiRequest{
		Contents:         []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: genCfg,
	}

	var lastErr error
	backoff := initialBackoff

	for attempt := 1; attempt <= maxRetries; attempt++ {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		text, err := g.doGenerate(ctx, modelID, reqBody)
		if err == nil {
			return text, nil
		}
		lastErr = err

		// Safety blocks are deterministic; retrying the same prompt only
		// burns quota.
		if HasReason(err, ReasonSafetyBlocked) {
			return "", err
		}
		if attempt < maxRetries {
			if serr := sleepBackoff(ctx, backoff); serr != nil {
				return "", serr
			}
			backoff *= time.Duration(backoffMult)
		}
	}
	return "", lastErr
}

func (g *GeminiGenerator) doGenerate(ctx context.Context, modelID string, reqBody geminiRequest) (string, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", &Error{Provider: "gemini", Reason: ReasonTransport, Detail: "marshal request", Err: err}
	}

	url := fmt.Sprintf(g.generateURL(), modelID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", &Error{Provider: "gemini", Reason: ReasonTransport, Detail: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", &Error{Provider: "gemini", Reason: ReasonTransport, Detail: "call Gemini API", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10*1024*1024))
	if err != nil {
		return "", &Error{Provider: "gemini", Reason: ReasonTransport, Detail: "read response", Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &Error{
			Provider: "gemini",
			Reason:   ReasonTransport,
			Detail:   fmt.Sprintf("HTTP %d: %s", resp.StatusCode, truncate(string(body), 200)),
		}
	}

	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &Error{Provider: "gemini", Reason: ReasonEmptyResponse, Detail: "malformed response JSON", Err: err}
	}

	text := geminiText(parsed)
	if text == "" {
		if parsed.PromptFeedback != nil && parsed.PromptFeedback.BlockReason != "" {
			return "", &Error{
				Provider: "gemini",
				Reason:   ReasonSafetyBlocked,
				Detail:   fmt.Sprintf("request blocked by content safety filters (reason: %s)", parsed.PromptFeedback.BlockReason),
			}
		}
		return "", &Error{Provider: "gemini", Reason: ReasonEmptyResponse, Detail: "empty response"}
	}
	return text, nil
}

func geminiText(resp geminiResponse) string {
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		for _, part := range cand.Content.Parts {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}

// ListModels fetches the model identifiers available to the API key.
func (g *GeminiGenerator) ListModels(ctx context.Context) ([]string, error) {
	if g.apiKey == "" {
		return nil, &ListError{Provider: "gemini", Err: fmt.Errorf("GEMINI_API_KEY is not set")}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.listURL(), nil)
	if err != nil {
		return nil, &ListError{Provider: "gemini", Err: err}
	}
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, &ListError{Provider: "gemini", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ListError{Provider: "gemini", Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
	}

	var parsed struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, &ListError{Provider: "gemini", Err: err}
	}

	ids := make([]string, 0, len(parsed.Models))
	for _, m := range parsed.Models {
		ids = append(ids, strings.TrimPrefix(m.Name, "models/"))
	}
	return ids, nil
}

func (g *GeminiGenerator) generateURL() string {
	if g.baseURL != "" {
		return g.baseURL + "/models/%s:generateContent"
	}
	return geminiGenerateEndpoint
}

func (g *GeminiGenerator) listURL() string {
	if g.baseURL != "" {
		return g.baseURL + "/models"
	}
	return geminiListEndpoint
}

func truncate(s string, maxLen int) string {
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}
