package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/zhouzirui/ai-interviewer/backend/internal/config"
	aiHandler "github.com/zhouzirui/ai-interviewer/backend/internal/handler/ai"
	"github.com/zhouzirui/ai-interviewer/backend/internal/handler/debug"
	interviewHandler "github.com/zhouzirui/ai-interviewer/backend/internal/handler/interview"
	recordHandler "github.com/zhouzirui/ai-interviewer/backend/internal/handler/record"
	"github.com/zhouzirui/ai-interviewer/backend/internal/handler/stream"
	middlewarePkg "github.com/zhouzirui/ai-interviewer/backend/internal/middleware"
	aiService "github.com/zhouzirui/ai-interviewer/backend/internal/service/ai"
	chatService "github.com/zhouzirui/ai-interviewer/backend/internal/service/chat"
	"github.com/zhouzirui/ai-interviewer/backend/internal/service/evaluation"
	interviewService "github.com/zhouzirui/ai-interviewer/backend/internal/service/interview"
	recordService "github.com/zhouzirui/ai-interviewer/backend/internal/service/record"
)

// Dependencies 路由所需的核心服务。
type Dependencies struct {
	AI         *aiService.Service
	Interview  *interviewService.Service
	Evaluation *evaluation.Service
	Chat       *chatService.Service
	// Records 为 nil 时不注册 /interviews 路由。
	Records   *recordService.Service
	StartedAt time.Time
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Dependencies, cfg config.ServerConfig, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.StartedAt.IsZero() {
		deps.StartedAt = time.Now()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.Logger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(cfg.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/api", func(api chi.Router) {
		api.Use(middlewarePkg.RequestContext)

		// 流式接口由客户端断开控制生命周期，不受请求超时限制
		stream.New(deps.Chat, deps.Evaluation, logger).RegisterRoutes(api)

		api.Group(func(g chi.Router) {
			if cfg.RequestTimeout > 0 {
				g.Use(middleware.Timeout(cfg.RequestTimeout))
			}

			aiHandler.New(deps.AI).RegisterRoutes(g)
			interviewHandler.New(deps.Interview, deps.Evaluation, logger).RegisterRoutes(g)
			debug.New(deps.StartedAt).RegisterRoutes(g)

			if deps.Records != nil {
				recordHandler.New(deps.Records, logger).RegisterRoutes(g)
			}
		})
	})

	return r
}
