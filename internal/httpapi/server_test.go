package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/antoniostano/adpulse/internal/analysis"
	"github.com/antoniostano/adpulse/internal/archive"
	"github.com/antoniostano/adpulse/internal/config"
	"github.com/antoniostano/adpulse/internal/evaluator"
	"github.com/antoniostano/adpulse/internal/llm"
	"github.com/antoniostano/adpulse/internal/observability"
	"github.com/antoniostano/adpulse/internal/trace"
)

func newTestServer(t *testing.T) (*httptest.Server, *trace.FileStore) {
	t.Helper()
	cfg := config.Config{
		TraceEnabled:    true,
		MaxTraceAgeDays: 30,
		ModelName:       "mock-model",
		LLMMode:         "mock",
		AllowAnyOrigin:  true,
	}
	store, err := trace.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	feed := trace.NewFeed()
	store.SetFeed(feed)
	mirror := archive.NewInMemoryStore()
	metrics := observability.NewMetrics(fmt.Sprintf("test_httpapi_%d", time.Now().UnixNano()))
	eval := evaluator.New(llm.NewMockCompleter(), 1000, 0.3)
	svc := analysis.NewService(store, mirror, eval, metrics, analysis.Options{TraceEnabled: true})

	srv := New(cfg, svc, store, feed, mirror, metrics)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, store
}

func analyzeBody() []byte {
	body, _ := json.Marshal(map[string]any{
		"company_name":                "Acme",
		"account_manager":             "Jordan",
		"monthly_budget":              5000,
		"campaign_duration_months":    6,
		"campaign_objectives":         "Grow qualified signups in EMEA",
		"current_performance_metrics": "CTR 2.1%, CPA $18, ROAS 3.4",
		"budget_utilization":          "82% of monthly budget spent",
	})
	return body
}

func postAnalyze(t *testing.T, ts *httptest.Server) map[string]any {
	t.Helper()
	res, err := http.Post(ts.URL+"/v1/analyze", "application/json", bytes.NewReader(analyzeBody()))
	if err != nil {
		t.Fatalf("analyze request error = %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("analyze status = %d, want %d", res.StatusCode, http.StatusOK)
	}
	var decoded map[string]any
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode analyze response: %v", err)
	}
	return decoded
}

func TestAnalyzeEndpoint(t *testing.T) {
	ts, store := newTestServer(t)

	decoded := postAnalyze(t, ts)
	conversationID, _ := decoded["conversation_id"].(string)
	if conversationID == "" {
		t.Fatalf("missing conversation_id: %+v", decoded)
	}
	eval, ok := decoded["evaluation"].(map[string]any)
	if !ok {
		t.Fatalf("missing evaluation: %+v", decoded)
	}
	if eval["category"] != "healthy" {
		t.Fatalf("category = %v, want healthy", eval["category"])
	}

	conv := store.Load(conversationID)
	if conv == nil || len(conv.Events) != 2 {
		t.Fatalf("trace not written: %+v", conv)
	}
}

func TestAnalyzeValidationProblems(t *testing.T) {
	ts, _ := newTestServer(t)

	body, _ := json.Marshal(map[string]any{
		"company_name":   "",
		"monthly_budget": -5,
	})
	res, err := http.Post(ts.URL+"/v1/analyze", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("analyze request error = %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusUnprocessableEntity)
	}
	var decoded map[string]any
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	problems, ok := decoded["problems"].([]any)
	if !ok || len(problems) == 0 {
		t.Fatalf("missing problems list: %+v", decoded)
	}
}

func TestAnalyzeEmptyBody(t *testing.T) {
	ts, _ := newTestServer(t)

	res, err := http.Post(ts.URL+"/v1/analyze", "application/json", bytes.NewReader(nil))
	if err != nil {
		t.Fatalf("analyze request error = %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusBadRequest)
	}
}

func TestHealthAndConfig(t *testing.T) {
	ts, _ := newTestServer(t)

	res, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz error = %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("healthz status = %d", res.StatusCode)
	}
	var health map[string]any
	if err := json.NewDecoder(res.Body).Decode(&health); err != nil {
		t.Fatalf("decode healthz: %v", err)
	}
	if health["archive_mode"] != "in-memory" {
		t.Fatalf("archive_mode = %v", health["archive_mode"])
	}

	cfgRes, err := http.Get(ts.URL + "/v1/config")
	if err != nil {
		t.Fatalf("config error = %v", err)
	}
	defer cfgRes.Body.Close()
	var cfg map[string]any
	if err := json.NewDecoder(cfgRes.Body).Decode(&cfg); err != nil {
		t.Fatalf("decode config: %v", err)
	}
	categories, ok := cfg["categories"].([]any)
	if !ok || len(categories) != 4 {
		t.Fatalf("categories = %v, want 4 entries", cfg["categories"])
	}
	if cfg["model_name"] != "mock-model" {
		t.Fatalf("model_name = %v", cfg["model_name"])
	}
}

func TestUIRoutes(t *testing.T) {
	ts, _ := newTestServer(t)

	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	res, err := client.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET / error = %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusTemporaryRedirect {
		t.Fatalf("GET / status = %d, want redirect", res.StatusCode)
	}
	if loc := res.Header.Get("Location"); loc != "/ui/" {
		t.Fatalf("Location = %q, want /ui/", loc)
	}

	uiRes, err := http.Get(ts.URL + "/ui/")
	if err != nil {
		t.Fatalf("GET /ui/ error = %v", err)
	}
	defer uiRes.Body.Close()
	if uiRes.StatusCode != http.StatusOK {
		t.Fatalf("GET /ui/ status = %d", uiRes.StatusCode)
	}
}

func TestPerfLatencyEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	postAnalyze(t, ts)

	res, err := http.Get(ts.URL + "/v1/perf/latency")
	if err != nil {
		t.Fatalf("perf request error = %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("perf status = %d", res.StatusCode)
	}
	var snap map[string]any
	if err := json.NewDecoder(res.Body).Decode(&snap); err != nil {
		t.Fatalf("decode perf snapshot: %v", err)
	}
	stages, ok := snap["stages"].([]any)
	if !ok || len(stages) == 0 {
		t.Fatalf("stages = %v, want at least one stage", snap["stages"])
	}
}
