package record

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/ai-interviewer/backend/internal/model/interview"
	recordservice "github.com/zhouzirui/ai-interviewer/backend/internal/service/record"
	"github.com/zhouzirui/ai-interviewer/backend/internal/store/memory"
)

func setupRouter() *chi.Mux {
	r := chi.NewRouter()
	New(recordservice.NewService(memory.New()), nil).RegisterRoutes(r)
	return r
}

func serve(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func completedInterview() map[string]any {
	return map[string]any{
		"config":  map[string]string{"jobTitle": "Backend Engineer", "company": "Acme", "interviewType": "technical"},
		"history": []map[string]any{{"role": "model", "text": "请介绍一下你自己", "timestamp": 1}},
		"feedback": map[string]any{
			"score": 75, "pros": []string{"清晰"}, "cons": []string{}, "suggestions": []string{}, "overallSummary": "良好",
		},
	}
}

func TestRecordLifecycle(t *testing.T) {
	r := setupRouter()

	rr := serve(r, http.MethodPost, "/interviews", completedInterview())
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var created interview.Record
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if created.ID == "" || created.CreatedAt == 0 {
		t.Fatalf("expected id and createdAt, got %+v", created)
	}

	rr = serve(r, http.MethodGet, "/interviews", nil)
	var list []interview.Record
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if len(list) != 1 || list[0].ID != created.ID {
		t.Fatalf("unexpected list %+v", list)
	}

	if rr = serve(r, http.MethodGet, "/interviews/"+created.ID, nil); rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if rr = serve(r, http.MethodDelete, "/interviews/"+created.ID, nil); rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	if rr = serve(r, http.MethodGet, "/interviews/"+created.ID, nil); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if rr = serve(r, http.MethodDelete, "/interviews/"+created.ID, nil); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", rr.Code)
	}
}

func TestCreateRejectsIncompleteInterview(t *testing.T) {
	r := setupRouter()

	body := completedInterview()
	body["history"] = []any{}
	if rr := serve(r, http.MethodPost, "/interviews", body); rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}

	body = completedInterview()
	body["feedback"] = map[string]any{"score": 300}
	if rr := serve(r, http.MethodPost, "/interviews", body); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}
