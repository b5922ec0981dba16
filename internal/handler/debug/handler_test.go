package debug

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

func setupRouter(started time.Time, now time.Time) *chi.Mux {
	h := New(started)
	h.now = func() time.Time { return now }
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func TestPing(t *testing.T) {
	now := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	r := setupRouter(now, now)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/debug/ping", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if resp["message"] != "pong" || resp["timestamp"] != "2025-03-01T08:00:00Z" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestInfo(t *testing.T) {
	started := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	r := setupRouter(started, started.Add(90*time.Second))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/debug/info", nil))

	var info Info
	if err := json.Unmarshal(rr.Body.Bytes(), &info); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if info.Uptime != 90 {
		t.Fatalf("expected uptime 90s, got %v", info.Uptime)
	}
	if info.GoVersion != runtime.Version() || info.Goroutines < 1 || info.Memory.Sys == 0 {
		t.Fatalf("unexpected info %+v", info)
	}
}

func TestEcho(t *testing.T) {
	r := setupRouter(time.Now(), time.Now())

	req := httptest.NewRequest(http.MethodPost, "/debug/echo?x=1", strings.NewReader(`{"hello":"world"}`))
	req.Header.Set("X-Custom", "yes")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	var resp struct {
		Method  string              `json:"method"`
		URL     string              `json:"url"`
		Body    map[string]string   `json:"body"`
		Headers map[string][]string `json:"headers"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if resp.Method != http.MethodPost || resp.URL != "/debug/echo?x=1" || resp.Body["hello"] != "world" {
		t.Fatalf("unexpected echo %+v", resp)
	}
	if got := resp.Headers["X-Custom"]; len(got) != 1 || got[0] != "yes" {
		t.Fatalf("expected header to be echoed, got %v", got)
	}
}
