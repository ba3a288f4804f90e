// Package analysis orchestrates one campaign analysis round trip: validate,
// trace the request, run the evaluation, trace the outcome.
package analysis

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/antoniostano/adpulse/internal/archive"
	"github.com/antoniostano/adpulse/internal/evaluator"
	"github.com/antoniostano/adpulse/internal/observability"
	"github.com/antoniostano/adpulse/internal/policy"
	"github.com/antoniostano/adpulse/internal/reliability"
	"github.com/antoniostano/adpulse/internal/trace"
)

// ValidationError carries the full list of request problems so the caller can
// report all of them at once.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid analysis request: " + strings.Join(e.Problems, "; ")
}

// Result is one completed analysis.
type Result struct {
	ConversationID string               `json:"conversation_id"`
	Evaluation     evaluator.Evaluation `json:"evaluation"`
	ProcessingTime float64              `json:"processing_time_seconds"`
	Outcome        evaluator.Outcome    `json:"outcome"`
	Model          string               `json:"model,omitempty"`
}

type Options struct {
	TraceEnabled         bool
	IncludeSensitiveData bool
}

// Service runs analyses and owns the trace side effects around them.
type Service struct {
	store   *trace.FileStore
	mirror  archive.Store
	eval    *evaluator.Evaluator
	metrics *observability.Metrics
	opts    Options
}

func NewService(store *trace.FileStore, mirror archive.Store, eval *evaluator.Evaluator, metrics *observability.Metrics, opts Options) *Service {
	return &Service{
		store:   store,
		mirror:  mirror,
		eval:    eval,
		metrics: metrics,
		opts:    opts,
	}
}

// Analyze validates and evaluates one campaign request. A blank
// conversationID starts a new conversation; a known one appends to it. The
// returned Result is well-formed even when the completion provider fails; only
// validation problems surface as an error.
func (s *Service) Analyze(ctx context.Context, conversationID string, req evaluator.AnalysisRequest) (Result, error) {
	started := time.Now()

	validateStart := time.Now()
	if problems := evaluator.Validate(req); len(problems) > 0 {
		return Result{}, &ValidationError{Problems: problems}
	}
	s.metrics.ObserveStage("validate", time.Since(validateStart))

	if conversationID == "" {
		conversationID = trace.NewConversationID()
	}

	fields := req.Fields()
	if !s.opts.IncludeSensitiveData {
		fields, _ = policy.RedactFields(fields)
	}
	s.recordEvent(ctx, trace.NewUserRequestEvent(conversationID, req.CompanyName, fields, nil))

	completionStart := time.Now()
	eval, llmResult, outcome, evalErr := s.eval.Evaluate(ctx, req)
	s.metrics.ObserveStage("completion", time.Since(completionStart))

	if evalErr != nil {
		code, retryable := reliability.ClassifyCompletionError(evalErr)
		s.metrics.CompletionErrors.WithLabelValues(code).Inc()
		s.recordEvent(ctx, trace.NewErrorEvent(conversationID, evalErr.Error(), code, map[string]any{
			"company_name": req.CompanyName,
			"retryable":    retryable,
		}))
	}
	if outcome != evaluator.OutcomeParsed {
		s.metrics.IncrementIndicator(string(outcome))
	}

	processing := time.Since(started).Seconds()
	persistStart := time.Now()
	s.recordEvent(ctx, trace.NewBotResponseEvent(conversationID, eval.AsContent(), processing, map[string]any{
		"outcome": string(outcome),
		"model":   llmResult.Model,
	}))
	s.metrics.ObserveStage("persist", time.Since(persistStart))

	s.metrics.AnalysisRequests.WithLabelValues(string(outcome)).Inc()
	s.metrics.ProcessingTime.Observe(processing)
	s.metrics.ObserveStage("analyze_total", time.Since(started))

	return Result{
		ConversationID: conversationID,
		Evaluation:     eval,
		ProcessingTime: processing,
		Outcome:        outcome,
		Model:          llmResult.Model,
	}, nil
}

// recordEvent appends to the file store and mirrors to the archive. Tracing is
// best effort around the analysis itself: failures are logged, never surfaced.
func (s *Service) recordEvent(ctx context.Context, ev trace.Event) {
	if !s.opts.TraceEnabled {
		return
	}
	if err := s.store.Append(ev); err != nil {
		log.Printf("trace append failed conversation=%s type=%s: %v", ev.ConversationID, ev.EventType, err)
		return
	}
	s.metrics.TraceEvents.WithLabelValues(string(ev.EventType)).Inc()
	if s.mirror != nil {
		if err := s.mirror.RecordEvent(ctx, ev); err != nil {
			log.Printf("archive mirror failed conversation=%s: %v", ev.ConversationID, err)
		}
	}
}
