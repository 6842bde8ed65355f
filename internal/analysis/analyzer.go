// Package analysis runs the SFL document analysis task: it prompts a
// model for the three-part analysis JSON and parses the reply into the
// typed result, tolerating the usual model output noise (markdown
// fences, prose around the object).
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/apresai/sflstudio/internal/generate"
	"github.com/apresai/sflstudio/internal/sfl"
)

const analysisMaxTokens = 4096

type Analyzer struct {
	gen    generate.Generator
	logger *slog.Logger
}

func NewAnalyzer(gen generate.Generator, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{gen: gen, logger: logger}
}

// Analyze derives an SFL profile and persona configuration from the
// document text.
func (a *Analyzer) Analyze(ctx context.Context, text string) (*sfl.AnalysisResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("document is empty")
	}

	a.logger.Info("analyzing document", "chars", len(text))

	raw, err := a.gen.Generate(ctx, generate.AnalysisPrompt(text), generate.Options{
		Temperature:    generate.AnalysisTemperature,
		MaxTokens:      analysisMaxTokens,
		ThinkingBudget: -1,
	})
	if err != nil {
		return nil, fmt.Errorf("analysis request: %w", err)
	}

	result, err := parseResult(raw)
	if err != nil {
		return nil, err
	}

	a.logger.Info("analysis complete",
		"technicality", result.SFLAnalysis.Technicality.Score,
		"saveable", sfl.IsSaveable(result.PersonaConfiguration))
	return result, nil
}

func parseResult(text string) (*sfl.AnalysisResult, error) {
	text = stripScratchpad(text)
	text = stripMarkdownFences(text)
	text = extractJSON(text)

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("no JSON content found in response")
	}

	var result sfl.AnalysisResult
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, fmt.Errorf("parse analysis JSON: %w", err)
	}

	if err := validate(&result); err != nil {
		return nil, fmt.Errorf("invalid analysis: %w", err)
	}
	return &result, nil
}

func validate(r *sfl.AnalysisResult) error {
	score := r.SFLAnalysis.Technicality.Score
	if score < 1 || score > 10 {
		return fmt.Errorf("technicality score %g out of range", score)
	}
	if !sfl.IsSaveable(r.PersonaConfiguration) {
		return fmt.Errorf("configuration percentages do not sum to 100")
	}
	return nil
}

var scratchpadRe = regexp.MustCompile(`(?s)<scratchpad>.*?</scratchpad>`)

func stripScratchpad(text string) string {
	return scratchpadRe.ReplaceAllString(text, "")
}

var fenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*\n?(.*?)\n?```")

func stripMarkdownFences(text string) string {
	if matches := fenceRe.FindStringSubmatch(text); len(matches) > 1 {
		return matches[1]
	}
	return text
}

func extractJSON(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return text[start : end+1]
	}
	return text
}
