package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/zhouzirui/ai-interviewer/backend/internal/config"
	aiService "github.com/zhouzirui/ai-interviewer/backend/internal/service/ai"
	"github.com/zhouzirui/ai-interviewer/backend/internal/service/ai/aitest"
	chatService "github.com/zhouzirui/ai-interviewer/backend/internal/service/chat"
	"github.com/zhouzirui/ai-interviewer/backend/internal/service/evaluation"
	interviewService "github.com/zhouzirui/ai-interviewer/backend/internal/service/interview"
	recordService "github.com/zhouzirui/ai-interviewer/backend/internal/service/record"
	"github.com/zhouzirui/ai-interviewer/backend/internal/store/memory"
)

func newTestRouter(t *testing.T, withRecords bool) (http.Handler, *aitest.Factory) {
	t.Helper()

	factory := aitest.NewFactory(func(opts aiService.ClientOptions) (*aitest.Provider, error) {
		return &aitest.Provider{
			Reply: "ok",
			Models: []aiService.RemoteModel{
				{Name: "models/gemini-2.5-flash", DisplayName: "Gemini 2.5 Flash", SupportedActions: []string{"generateContent"}},
				{Name: "models/gemini-1.5-pro", DisplayName: "Gemini 1.5 Pro", SupportedActions: []string{"generateContent"}},
			},
		}, nil
	})

	aiSvc, err := aiService.NewService(context.Background(), config.AIConfig{
		APIKey:          "server-key",
		APIVersion:      "v1beta",
		DefaultModel:    "gemini-2.5-flash",
		EvaluationModel: "gemini-2.5-flash",
		ModelFamily:     "flash",
		ModelVersions:   []string{"2.5"},
		MaxOutputTokens: 1000,
	}, factory.New, zap.NewNop())
	if err != nil {
		t.Fatalf("ai.NewService err: %v", err)
	}
	evalSvc, err := evaluation.NewService(aiSvc, zap.NewNop())
	if err != nil {
		t.Fatalf("evaluation.NewService err: %v", err)
	}

	deps := Dependencies{
		AI:         aiSvc,
		Interview:  interviewService.NewService(aiSvc, zap.NewNop()),
		Evaluation: evalSvc,
		Chat:       chatService.NewService(aiSvc, zap.NewNop()),
		StartedAt:  time.Now(),
	}
	if withRecords {
		deps.Records = recordService.NewService(memory.New())
	}

	return NewRouter(deps, config.ServerConfig{RequestTimeout: time.Minute}, zap.NewNop()), factory
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(t, false)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK || rr.Body.String() != "OK" {
		t.Fatalf("unexpected health response %d %q", rr.Code, rr.Body.String())
	}
}

func TestModelsUseOverrideKeyFromHeader(t *testing.T) {
	r, factory := newTestRouter(t, false)

	req := httptest.NewRequest(http.MethodGet, "/api/ai/models", nil)
	req.Header.Set("X-Gemini-Api-Key", "user-key")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var models []aiService.ModelInfo
	if err := json.Unmarshal(rr.Body.Bytes(), &models); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	// 用户自带的 key 不做系列过滤
	if len(models) != 2 {
		t.Fatalf("expected unfiltered models, got %+v", models)
	}

	opts := factory.Options()
	if last := opts[len(opts)-1]; last.APIKey != "user-key" {
		t.Fatalf("expected override provider, got %+v", last)
	}
}

func TestModelsWithDefaultKeyAreFiltered(t *testing.T) {
	r, _ := newTestRouter(t, false)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/ai/models", nil))

	var models []aiService.ModelInfo
	if err := json.Unmarshal(rr.Body.Bytes(), &models); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if len(models) != 1 || models[0].ID != "gemini-2.5-flash" {
		t.Fatalf("expected only the flash family, got %+v", models)
	}
}

func TestRecordRoutesAreOptional(t *testing.T) {
	r, _ := newTestRouter(t, false)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/interviews", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without a store, got %d", rr.Code)
	}

	r, _ = newTestRouter(t, true)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/interviews", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 with a store, got %d", rr.Code)
	}
}

func TestDebugPingUnderAPIPrefix(t *testing.T) {
	r, _ := newTestRouter(t, false)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/debug/ping", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}
