package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/antoniostano/adpulse/internal/analysis"
	"github.com/antoniostano/adpulse/internal/evaluator"
)

type analyzeRequest struct {
	ConversationID string `json:"conversation_id"`
	evaluator.AnalysisRequest
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decodeJSON(r, &req); err != nil {
		if errors.Is(err, errEmptyBody) {
			respondError(w, http.StatusBadRequest, "invalid_request", "request body is required")
			return
		}
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	res, err := s.svc.Analyze(r.Context(), strings.TrimSpace(req.ConversationID), req.AnalysisRequest)
	if err != nil {
		var verr *analysis.ValidationError
		if errors.As(err, &verr) {
			respondJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error":    "validation failed",
				"code":     "invalid_analysis_request",
				"problems": verr.Problems,
			})
			return
		}
		respondError(w, http.StatusInternalServerError, "analysis_failed", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (s *Server) handleConfig(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"model_name":    s.cfg.ModelName,
		"llm_mode":      s.cfg.LLMMode,
		"trace_enabled": s.cfg.TraceEnabled,
		"categories":    evaluator.Categories(),
	})
}
