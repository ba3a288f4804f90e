package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/antoniostano/adpulse/internal/archive"
	"github.com/antoniostano/adpulse/internal/evaluator"
	"github.com/antoniostano/adpulse/internal/llm"
	"github.com/antoniostano/adpulse/internal/observability"
	"github.com/antoniostano/adpulse/internal/trace"
)

type stubCompleter struct {
	text string
	err  error
}

func (s *stubCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float64) (llm.Result, error) {
	if s.err != nil {
		return llm.Result{}, s.err
	}
	return llm.Result{Text: s.text, Model: "stub-model"}, nil
}

const goodReply = `{
	"category": "healthy",
	"confidence": 90,
	"reasoning": "Strong ROAS and stable budget pacing.",
	"recommendations": ["Keep current allocation"],
	"risk_factors": [],
	"positive_indicators": ["ROAS above target"],
	"budget_assessment": "On track",
	"performance_assessment": "Above target",
	"client_satisfaction": "High"
}`

func sampleRequest() evaluator.AnalysisRequest {
	return evaluator.AnalysisRequest{
		CompanyName:               "Acme",
		AccountManager:            "Jordan",
		MonthlyBudget:             5000,
		CampaignDurationMonths:    6,
		CampaignObjectives:        "Grow qualified signups in EMEA",
		CurrentPerformanceMetrics: "CTR 2.1%, CPA $18, ROAS 3.4",
		BudgetUtilization:         "82% of monthly budget spent",
	}
}

func newTestService(t *testing.T, completer llm.Completer, opts Options) (*Service, *trace.FileStore, *archive.InMemoryStore) {
	t.Helper()
	store, err := trace.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	mirror := archive.NewInMemoryStore()
	metrics := observability.NewMetrics(fmt.Sprintf("analysis_test_%d", time.Now().UnixNano()))
	svc := NewService(store, mirror, evaluator.New(completer, 1000, 0.3), metrics, opts)
	return svc, store, mirror
}

func TestAnalyzeSuccess(t *testing.T) {
	svc, store, mirror := newTestService(t, &stubCompleter{text: goodReply}, Options{TraceEnabled: true})

	res, err := svc.Analyze(context.Background(), "", sampleRequest())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.ConversationID == "" {
		t.Fatalf("ConversationID empty")
	}
	if res.Evaluation.Category != "healthy" || res.Evaluation.Confidence != 90 {
		t.Fatalf("evaluation = %+v", res.Evaluation)
	}
	if res.Outcome != evaluator.OutcomeParsed {
		t.Fatalf("Outcome = %q", res.Outcome)
	}
	if res.ProcessingTime < 0 {
		t.Fatalf("ProcessingTime = %f", res.ProcessingTime)
	}

	conv := store.Load(res.ConversationID)
	if conv == nil {
		t.Fatalf("conversation not persisted")
	}
	if len(conv.Events) != 2 {
		t.Fatalf("len(Events) = %d, want 2", len(conv.Events))
	}
	if conv.Events[0].EventType != trace.EventUserRequest || conv.Events[1].EventType != trace.EventBotResponse {
		t.Fatalf("event order = %s, %s", conv.Events[0].EventType, conv.Events[1].EventType)
	}

	n, err := mirror.EventCount(context.Background(), res.ConversationID)
	if err != nil {
		t.Fatalf("EventCount: %v", err)
	}
	if n != 2 {
		t.Fatalf("mirror count = %d, want 2", n)
	}
}

func TestAnalyzeContinuesConversation(t *testing.T) {
	svc, store, _ := newTestService(t, &stubCompleter{text: goodReply}, Options{TraceEnabled: true})

	first, err := svc.Analyze(context.Background(), "", sampleRequest())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	second, err := svc.Analyze(context.Background(), first.ConversationID, sampleRequest())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if second.ConversationID != first.ConversationID {
		t.Fatalf("conversation ids differ: %q vs %q", first.ConversationID, second.ConversationID)
	}
	conv := store.Load(first.ConversationID)
	if len(conv.Events) != 4 {
		t.Fatalf("len(Events) = %d, want 4", len(conv.Events))
	}
}

func TestAnalyzeValidationFailure(t *testing.T) {
	svc, store, _ := newTestService(t, &stubCompleter{text: goodReply}, Options{TraceEnabled: true})

	req := sampleRequest()
	req.CompanyName = ""
	req.MonthlyBudget = -1

	_, err := svc.Analyze(context.Background(), "", req)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if len(verr.Problems) < 2 {
		t.Fatalf("Problems = %v, want at least 2", verr.Problems)
	}
	if entries := store.List(); len(entries) != 0 {
		t.Fatalf("rejected request left traces: %v", entries)
	}
}

func TestAnalyzeProviderErrorStillTraced(t *testing.T) {
	svc, store, _ := newTestService(t, &stubCompleter{err: errors.New("dial tcp: connection refused")}, Options{TraceEnabled: true})

	res, err := svc.Analyze(context.Background(), "", sampleRequest())
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if res.Outcome != evaluator.OutcomeProviderError {
		t.Fatalf("Outcome = %q", res.Outcome)
	}
	if res.Evaluation.Category != evaluator.DefaultCategory || res.Evaluation.Confidence != 0 {
		t.Fatalf("fallback evaluation = %+v", res.Evaluation)
	}

	conv := store.Load(res.ConversationID)
	if conv == nil {
		t.Fatalf("conversation not persisted")
	}
	if len(conv.Events) != 3 {
		t.Fatalf("len(Events) = %d, want 3", len(conv.Events))
	}
	errEvent := conv.Events[1]
	if errEvent.EventType != trace.EventError {
		t.Fatalf("Events[1].EventType = %s, want error", errEvent.EventType)
	}
	if errEvent.Content["error_type"] != "connection" {
		t.Fatalf("error_type = %v", errEvent.Content["error_type"])
	}
	if conv.Events[2].EventType != trace.EventBotResponse {
		t.Fatalf("Events[2].EventType = %s, want bot_response", conv.Events[2].EventType)
	}
}

func TestAnalyzeRedactsSensitiveFields(t *testing.T) {
	svc, store, _ := newTestService(t, &stubCompleter{text: goodReply}, Options{TraceEnabled: true})

	req := sampleRequest()
	req.ClientReportedNotes = "Reach the client at jane@acme.com"

	res, err := svc.Analyze(context.Background(), "", req)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	conv := store.Load(res.ConversationID)
	info := conv.Events[0].Content["client_info"].(map[string]any)
	notes := info["client_reported_notes"].(string)
	if strings.Contains(notes, "jane@acme.com") {
		t.Fatalf("notes not redacted: %q", notes)
	}
	if !strings.Contains(notes, "[REDACTED_EMAIL]") {
		t.Fatalf("redaction marker missing: %q", notes)
	}
}

func TestAnalyzeKeepsSensitiveFieldsWhenConfigured(t *testing.T) {
	svc, store, _ := newTestService(t, &stubCompleter{text: goodReply}, Options{TraceEnabled: true, IncludeSensitiveData: true})

	req := sampleRequest()
	req.ClientReportedNotes = "Reach the client at jane@acme.com"

	res, err := svc.Analyze(context.Background(), "", req)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	conv := store.Load(res.ConversationID)
	info := conv.Events[0].Content["client_info"].(map[string]any)
	if !strings.Contains(info["client_reported_notes"].(string), "jane@acme.com") {
		t.Fatalf("notes unexpectedly redacted: %v", info["client_reported_notes"])
	}
}

func TestAnalyzeTracingDisabled(t *testing.T) {
	svc, store, mirror := newTestService(t, &stubCompleter{text: goodReply}, Options{TraceEnabled: false})

	res, err := svc.Analyze(context.Background(), "", sampleRequest())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.Evaluation.Category != "healthy" {
		t.Fatalf("Category = %q", res.Evaluation.Category)
	}
	if entries := store.List(); len(entries) != 0 {
		t.Fatalf("tracing disabled but traces written: %v", entries)
	}
	if n, _ := mirror.EventCount(context.Background(), res.ConversationID); n != 0 {
		t.Fatalf("mirror count = %d, want 0", n)
	}
}
