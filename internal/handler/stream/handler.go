package stream

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/zhouzirui/ai-interviewer/backend/internal/model/chat"
	"github.com/zhouzirui/ai-interviewer/backend/internal/model/interview"
	"github.com/zhouzirui/ai-interviewer/backend/internal/requestctx"
	chatservice "github.com/zhouzirui/ai-interviewer/backend/internal/service/chat"
	"github.com/zhouzirui/ai-interviewer/backend/internal/service/evaluation"
	"github.com/zhouzirui/ai-interviewer/backend/pkg/utils"
)

const firstFrameTimeout = 30 * time.Second

// Handler serves the streaming chat and feedback endpoints.
type Handler struct {
	chatSvc    *chatservice.Service
	evaluation *evaluation.Service
	logger     *zap.Logger
	upgrader   websocket.Upgrader
}

// New creates a stream handler.
func New(chatSvc *chatservice.Service, evalSvc *evaluation.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		chatSvc:    chatSvc,
		evaluation: evalSvc,
		logger:     logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes 注册流式路由。这些路由不能挂在请求超时中间件下。
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/ai/chat/stream", h.handleChatStream)
	r.Post("/ai/feedback/stream", h.handleFeedbackStream)
	r.Get("/ai/chat/ws", h.handleChatWebSocket)
}

func (h *Handler) handleChatStream(w http.ResponseWriter, r *http.Request) {
	var req chat.Request
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if _, err := chatservice.BuildInput(req.Messages); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.serveSSE(w, r, "chat", func(ctx context.Context) (*schema.StreamReader[*schema.Message], error) {
		return h.chatSvc.Stream(ctx, req.Model, req.Messages)
	})
}

func (h *Handler) handleFeedbackStream(w http.ResponseWriter, r *http.Request) {
	var req struct {
		History []interview.Message `json:"history"`
		Config  interview.Config    `json:"config"`
	}
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if _, err := interview.PhaseOf(req.History).Advance(interview.EventFinish); err != nil {
		utils.RespondError(w, http.StatusConflict, "interview has not started")
		return
	}

	h.serveSSE(w, r, "feedback", func(ctx context.Context) (*schema.StreamReader[*schema.Message], error) {
		return h.evaluation.StreamFeedback(ctx, req.History, req.Config)
	})
}

func (h *Handler) serveSSE(w http.ResponseWriter, r *http.Request, kind string, open func(context.Context) (*schema.StreamReader[*schema.Message], error)) {
	sink, err := NewSSESink(w)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	ctx := r.Context()
	sr, err := open(ctx)
	if err != nil {
		h.logger.Error("open stream failed", zap.String("kind", kind), zap.Error(err))
		_ = sink.Send(Event{Error: StreamErrorMessage})
		return
	}

	h.finish(kind, Relay(ctx, sr, sink))
}

func (h *Handler) finish(kind string, err error) {
	switch {
	case err == nil:
		h.logger.Debug("stream completed", zap.String("kind", kind))
	case errors.Is(err, context.Canceled):
		h.logger.Debug("stream aborted by client", zap.String("kind", kind))
	default:
		h.logger.Warn("stream ended with error", zap.String("kind", kind), zap.Error(err))
	}
}

// handleChatWebSocket streams a chat reply over a WebSocket. The first client
// frame is the chat request; it may carry the API key because browsers cannot
// set custom headers on WebSocket handshakes.
func (h *Handler) handleChatWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	_ = conn.SetReadDeadline(time.Now().Add(firstFrameTimeout))
	var req chat.Request
	if err := conn.ReadJSON(&req); err != nil {
		h.logger.Debug("websocket read request failed", zap.Error(err))
		return
	}
	_ = conn.SetReadDeadline(time.Time{})

	if req.APIKey != "" {
		values, _ := requestctx.From(ctx)
		values.APIKey = req.APIKey
		ctx = requestctx.With(ctx, values)
	}

	// 客户端关闭连接时取消上游。
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	sink := wsSink{conn: conn}
	sr, err := h.chatSvc.Stream(ctx, req.Model, req.Messages)
	if err != nil {
		if isBadRequest(err) {
			_ = sink.Send(Event{Error: err.Error()})
		} else {
			h.logger.Error("open websocket stream failed", zap.Error(err))
			_ = sink.Send(Event{Error: StreamErrorMessage})
		}
		closeNormally(conn)
		return
	}

	err = Relay(ctx, sr, sink)
	h.finish("websocket", err)
	if !errors.Is(err, context.Canceled) {
		closeNormally(conn)
	}
}

type wsSink struct {
	conn *websocket.Conn
}

func (s wsSink) Send(ev Event) error {
	return s.conn.WriteJSON(ev)
}

func closeNormally(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
}

func isBadRequest(err error) bool {
	return errors.Is(err, chatservice.ErrNoMessages) ||
		errors.Is(err, chatservice.ErrLastMessageNotUser) ||
		errors.Is(err, chatservice.ErrInvalidAttachment)
}
