package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/antoniostano/adpulse/internal/trace"
)

func (s *Server) handleListConversations(w http.ResponseWriter, _ *http.Request) {
	entries := s.store.List()
	respondJSON(w, http.StatusOK, map[string]any{
		"conversations": entries,
		"count":         len(entries),
	})
}

func (s *Server) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		respondError(w, http.StatusBadRequest, "invalid_conversation_id", "missing conversation id")
		return
	}
	conv := s.store.Load(id)
	if conv == nil {
		respondError(w, http.StatusNotFound, "conversation_not_found", "no trace for conversation "+id)
		return
	}
	respondJSON(w, http.StatusOK, conv)
}

func (s *Server) handleConversationHistory(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	conv := s.store.Load(id)
	if conv == nil {
		respondError(w, http.StatusNotFound, "conversation_not_found", "no trace for conversation "+id)
		return
	}
	history := trace.History(conv)
	respondJSON(w, http.StatusOK, map[string]any{
		"conversation_id": id,
		"history":         history,
		"count":           len(history),
	})
}

func (s *Server) handleConversationSummary(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	conv := s.store.Load(id)
	if conv == nil {
		respondError(w, http.StatusNotFound, "conversation_not_found", "no trace for conversation "+id)
		return
	}
	summary := conv.Summary
	if summary == nil {
		fresh := trace.Summarize(conv)
		summary = &fresh
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"conversation_id": id,
		"summary":         summary,
	})
}

func (s *Server) handleCloseConversation(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	conv, err := s.store.End(id, nil)
	if err != nil {
		if errors.Is(err, trace.ErrNotFound) {
			respondError(w, http.StatusNotFound, "conversation_not_found", "no trace for conversation "+id)
			return
		}
		respondError(w, http.StatusInternalServerError, "close_failed", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, conv)
}

func (s *Server) handleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	removed, err := s.store.Delete(id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "delete_failed", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"conversation_id": id,
		"removed":         removed,
	})
}

func (s *Server) handleExportConversation(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	format := exportFormat(r)
	data, err := s.store.Export(id, format)
	if err != nil {
		if errors.Is(err, trace.ErrNotFound) {
			respondError(w, http.StatusNotFound, "conversation_not_found", "no trace for conversation "+id)
			return
		}
		if errors.Is(err, trace.ErrUnsupportedFormat) {
			respondError(w, http.StatusBadRequest, "unsupported_format", err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "export_failed", err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="trace_`+id+`.json"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleExportAll(w http.ResponseWriter, r *http.Request) {
	data, err := s.store.ExportAll(exportFormat(r))
	if err != nil {
		if errors.Is(err, trace.ErrUnsupportedFormat) {
			respondError(w, http.StatusBadRequest, "unsupported_format", err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "export_failed", err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="traces.json"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

type purgeRequest struct {
	MaxAgeDays *int `json:"max_age_days"`
	DryRun     bool `json:"dry_run"`
}

func (s *Server) handlePurgeTraces(w http.ResponseWriter, r *http.Request) {
	var req purgeRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	days := s.cfg.MaxTraceAgeDays
	if req.MaxAgeDays != nil {
		if *req.MaxAgeDays < 0 {
			respondError(w, http.StatusBadRequest, "invalid_request", "max_age_days must be >= 0")
			return
		}
		days = *req.MaxAgeDays
	}
	maxAge := time.Duration(days) * 24 * time.Hour

	if req.DryRun {
		stale := s.store.StaleTraces(maxAge)
		respondJSON(w, http.StatusOK, map[string]any{
			"dry_run":      true,
			"max_age_days": days,
			"stale":        stale,
			"count":        len(stale),
		})
		return
	}

	removed, err := s.store.Purge(maxAge)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "purge_failed", err.Error())
		return
	}
	s.metrics.TracesPurged.Add(float64(removed))
	respondJSON(w, http.StatusOK, map[string]any{
		"dry_run":      false,
		"max_age_days": days,
		"removed":      removed,
	})
}

func exportFormat(r *http.Request) string {
	format := strings.TrimSpace(r.URL.Query().Get("format"))
	if format == "" {
		return trace.FormatJSON
	}
	return format
}
