package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/antoniostano/adpulse/internal/analysis"
	"github.com/antoniostano/adpulse/internal/archive"
	"github.com/antoniostano/adpulse/internal/config"
	"github.com/antoniostano/adpulse/internal/evaluator"
	"github.com/antoniostano/adpulse/internal/httpapi"
	"github.com/antoniostano/adpulse/internal/llm"
	"github.com/antoniostano/adpulse/internal/observability"
	"github.com/antoniostano/adpulse/internal/trace"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	ctx := context.Background()
	mirror, err := archive.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("archive store init failed: %v", err)
	}
	defer mirror.Close()
	log.Printf("archive store: %s", archive.Mode(mirror))

	completer, err := llm.NewCompleter(llm.Config{
		Mode:    cfg.LLMMode,
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.ModelName,
	})
	if err != nil {
		log.Fatalf("completer init failed: %v", err)
	}
	if _, ok := completer.(*llm.MockCompleter); ok {
		log.Printf("completion provider: mock (no OPENAI_API_KEY)")
	} else {
		log.Printf("completion provider: openai model=%s", cfg.ModelName)
	}

	store, err := trace.NewFileStore(cfg.TracesDirectory)
	if err != nil {
		log.Fatalf("trace store init failed: %v", err)
	}
	feed := trace.NewFeed()
	store.SetFeed(feed)

	eval := evaluator.New(completer, cfg.MaxTokens, cfg.Temperature)
	svc := analysis.NewService(store, mirror, eval, metrics, analysis.Options{
		TraceEnabled:         cfg.TraceEnabled,
		IncludeSensitiveData: cfg.IncludeSensitiveData,
	})

	api := httpapi.New(cfg, svc, store, feed, mirror, metrics)
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()
	if cfg.TraceEnabled && cfg.MaxTraceAgeDays > 0 {
		store.StartJanitor(runCtx, cfg.TracePurgeInterval, cfg.MaxTraceAge())
	}

	go func() {
		log.Printf("server listening on %s", cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("shutdown signal received")

	runCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = httpServer.Close()
	}

	log.Printf("shutdown complete")
}
