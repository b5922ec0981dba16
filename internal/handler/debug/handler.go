package debug

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/ai-interviewer/backend/pkg/utils"
)

// Handler 暴露运行时诊断接口。
type Handler struct {
	startedAt time.Time
	now       func() time.Time
}

// New creates a debug handler; startedAt is used to report uptime.
func New(startedAt time.Time) *Handler {
	return &Handler{startedAt: startedAt, now: time.Now}
}

// RegisterRoutes 注册 /debug 路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/debug", func(r chi.Router) {
		r.Get("/ping", h.handlePing)
		r.Get("/info", h.handleInfo)
		r.Post("/echo", h.handleEcho)
	})
}

// MemoryStats is a subset of runtime.MemStats in bytes.
type MemoryStats struct {
	Alloc      uint64 `json:"alloc"`
	TotalAlloc uint64 `json:"totalAlloc"`
	Sys        uint64 `json:"sys"`
	HeapInuse  uint64 `json:"heapInuse"`
	NumGC      uint32 `json:"numGC"`
}

// Info 运行时信息
type Info struct {
	GoVersion  string      `json:"goVersion"`
	Platform   string      `json:"platform"`
	Uptime     float64     `json:"uptime"`
	Goroutines int         `json:"goroutines"`
	Memory     MemoryStats `json:"memoryUsage"`
}

func (h *Handler) handlePing(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"message":   "pong",
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) handleInfo(w http.ResponseWriter, r *http.Request) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	utils.RespondJSON(w, http.StatusOK, Info{
		GoVersion:  runtime.Version(),
		Platform:   runtime.GOOS + "/" + runtime.GOARCH,
		Uptime:     h.now().Sub(h.startedAt).Seconds(),
		Goroutines: runtime.NumGoroutine(),
		Memory: MemoryStats{
			Alloc:      ms.Alloc,
			TotalAlloc: ms.TotalAlloc,
			Sys:        ms.Sys,
			HeapInuse:  ms.HeapInuse,
			NumGC:      ms.NumGC,
		},
	})
}

func (h *Handler) handleEcho(w http.ResponseWriter, r *http.Request) {
	var body json.RawMessage
	if r.ContentLength != 0 {
		if err := utils.DecodeJSON(r, &body); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"method":  r.Method,
		"url":     r.URL.RequestURI(),
		"body":    body,
		"headers": r.Header,
	})
}
