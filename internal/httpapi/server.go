package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/antoniostano/adpulse/internal/analysis"
	"github.com/antoniostano/adpulse/internal/archive"
	"github.com/antoniostano/adpulse/internal/config"
	"github.com/antoniostano/adpulse/internal/observability"
	"github.com/antoniostano/adpulse/internal/trace"
)

type Server struct {
	cfg      config.Config
	svc      *analysis.Service
	store    *trace.FileStore
	feed     *trace.Feed
	mirror   archive.Store
	metrics  *observability.Metrics
	upgrader websocket.Upgrader
	static   http.Handler
}

func New(cfg config.Config, svc *analysis.Service, store *trace.FileStore, feed *trace.Feed, mirror archive.Store, metrics *observability.Metrics) *Server {
	return &Server{
		cfg:     cfg,
		svc:     svc,
		store:   store,
		feed:    feed,
		mirror:  mirror,
		metrics: metrics,
		static:  newStaticHandler(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Only allow browser websocket connections from the same
				// origin unless explicitly opened up. Non-browser clients
				// often omit Origin and are allowed through.
				if cfg.AllowAnyOrigin {
					return true
				}
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/ui/", http.StatusTemporaryRedirect)
	})
	r.Get("/ui", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/ui/", http.StatusTemporaryRedirect)
	})
	r.Handle("/ui/*", http.StripPrefix("/ui/", s.static))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Post("/v1/analyze", s.handleAnalyze)
	r.Get("/v1/config", s.handleConfig)
	r.Get("/v1/perf/latency", s.handlePerfLatency)

	r.Get("/v1/conversations", s.handleListConversations)
	r.Get("/v1/conversations/export", s.handleExportAll)
	r.Get("/v1/conversations/{id}", s.handleGetConversation)
	r.Get("/v1/conversations/{id}/history", s.handleConversationHistory)
	r.Get("/v1/conversations/{id}/summary", s.handleConversationSummary)
	r.Post("/v1/conversations/{id}/close", s.handleCloseConversation)
	r.Delete("/v1/conversations/{id}", s.handleDeleteConversation)
	r.Get("/v1/conversations/{id}/export", s.handleExportConversation)

	r.Post("/v1/traces/purge", s.handlePurgeTraces)
	r.Get("/v1/traces/ws", s.handleTraceFeedWS)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"trace_enabled": s.cfg.TraceEnabled,
		"archive_mode":  archive.Mode(s.mirror),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":       "ready",
		"archive_mode": archive.Mode(s.mirror),
	})
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "eof") {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
