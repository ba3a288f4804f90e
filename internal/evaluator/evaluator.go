package evaluator

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/antoniostano/adpulse/internal/llm"
)

// Outcome describes how an evaluation was produced, for metrics and trace
// metadata.
type Outcome string

const (
	OutcomeParsed        Outcome = "parsed"
	OutcomeParseFallback Outcome = "parse_fallback"
	OutcomeProviderError Outcome = "provider_error"
)

// Evaluator turns an analysis request into a structured health evaluation by
// way of the completion capability. It never returns a malformed evaluation:
// provider failures and unparseable replies both degrade into a fallback
// verdict, and only a provider failure also surfaces the error.
type Evaluator struct {
	completer   llm.Completer
	maxTokens   int
	temperature float64
}

func New(completer llm.Completer, maxTokens int, temperature float64) *Evaluator {
	if maxTokens <= 0 {
		maxTokens = 1000
	}
	return &Evaluator{
		completer:   completer,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

// Evaluate runs one completion and normalizes the reply. The returned
// Evaluation is always well-formed even when err is non-nil.
func (e *Evaluator) Evaluate(ctx context.Context, req AnalysisRequest) (Evaluation, llm.Result, Outcome, error) {
	result, err := e.completer.Complete(ctx, SystemPrompt, BuildPrompt(req), e.maxTokens, e.temperature)
	if err != nil {
		return providerErrorEvaluation(err), result, OutcomeProviderError, err
	}

	eval, ok := parseEvaluation(result.Text)
	if !ok {
		return parseFallbackEvaluation(result.Text), result, OutcomeParseFallback, nil
	}
	return eval, result, OutcomeParsed, nil
}

// parseEvaluation extracts the JSON object embedded in the reply text and
// normalizes its fields.
func parseEvaluation(text string) (Evaluation, bool) {
	raw := extractJSON(text)
	if raw == "" {
		return Evaluation{}, false
	}

	var parsed struct {
		Category              string   `json:"category"`
		Confidence            any      `json:"confidence"`
		Reasoning             string   `json:"reasoning"`
		Recommendations       []string `json:"recommendations"`
		RiskFactors           []string `json:"risk_factors"`
		PositiveIndicators    []string `json:"positive_indicators"`
		BudgetAssessment      string   `json:"budget_assessment"`
		PerformanceAssessment string   `json:"performance_assessment"`
		ClientSatisfaction    string   `json:"client_satisfaction"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return Evaluation{}, false
	}

	eval := Evaluation{
		Category:              parsed.Category,
		Confidence:            normalizeConfidence(parsed.Confidence),
		Reasoning:             parsed.Reasoning,
		Recommendations:       emptyIfNil(parsed.Recommendations),
		RiskFactors:           emptyIfNil(parsed.RiskFactors),
		PositiveIndicators:    emptyIfNil(parsed.PositiveIndicators),
		BudgetAssessment:      parsed.BudgetAssessment,
		PerformanceAssessment: parsed.PerformanceAssessment,
		ClientSatisfaction:    parsed.ClientSatisfaction,
	}
	// Unknown categories are coerced rather than rejected so one creative
	// model reply cannot break the closed category set downstream.
	if !ValidCategory(eval.Category) {
		eval.Category = DefaultCategory
	}
	return eval, true
}

// extractJSON returns the outermost brace-delimited region of the text, which
// tolerates models that wrap the object in prose or code fences.
func extractJSON(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}

func normalizeConfidence(v any) int {
	switch n := v.(type) {
	case float64:
		return clampConfidence(int(n))
	case string:
		if i, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(n), "%")); err == nil {
			return clampConfidence(i)
		}
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return clampConfidence(int(i))
		}
	}
	return 50
}

func clampConfidence(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func parseFallbackEvaluation(replyText string) Evaluation {
	return Evaluation{
		Category:              DefaultCategory,
		Confidence:            50,
		Reasoning:             replyText,
		Recommendations:       []string{"Please review campaign data and consult with the account management team"},
		RiskFactors:           []string{"Unable to parse detailed assessment"},
		PositiveIndicators:    []string{},
		BudgetAssessment:      "Analysis incomplete",
		PerformanceAssessment: "Analysis incomplete",
		ClientSatisfaction:    "Analysis incomplete",
	}
}

func providerErrorEvaluation(err error) Evaluation {
	return Evaluation{
		Category:              DefaultCategory,
		Confidence:            0,
		Reasoning:             "Error occurred during evaluation: " + err.Error(),
		Recommendations:       []string{"Please try again or consult with the account management team"},
		RiskFactors:           []string{"System error"},
		PositiveIndicators:    []string{},
		BudgetAssessment:      "Analysis failed",
		PerformanceAssessment: "Analysis failed",
		ClientSatisfaction:    "Analysis failed",
	}
}

func emptyIfNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
