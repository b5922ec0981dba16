package interview

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/zhouzirui/ai-interviewer/backend/internal/model/interview"
	"github.com/zhouzirui/ai-interviewer/backend/internal/service/evaluation"
	interviewservice "github.com/zhouzirui/ai-interviewer/backend/internal/service/interview"
	"github.com/zhouzirui/ai-interviewer/backend/pkg/utils"
)

// PhaseHeader reports the interview phase reached by a successful call.
const PhaseHeader = "X-Interview-Phase"

const upstreamErrorMessage = "AI 服务暂时不可用，请稍后重试"

// Handler 面试流程的 HTTP 处理器
type Handler struct {
	interview  *interviewservice.Service
	evaluation *evaluation.Service
	logger     *zap.Logger
}

// New 创建面试处理器
func New(interviewSvc *interviewservice.Service, evalSvc *evaluation.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{interview: interviewSvc, evaluation: evalSvc, logger: logger}
}

// RegisterRoutes 注册面试相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/ai/start", h.handleStart)
	r.Post("/ai/chat", h.handleChat)
	r.Post("/ai/feedback", h.handleFeedback)
}

type textResponse struct {
	Text string `json:"text"`
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	var cfg interview.Config
	if err := utils.DecodeJSON(r, &cfg); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	text, err := h.interview.StartInterview(r.Context(), cfg)
	if err != nil {
		h.respondServiceError(w, "start interview", err)
		return
	}

	w.Header().Set(PhaseHeader, string(interview.PhaseInProgress))
	utils.RespondJSON(w, http.StatusOK, textResponse{Text: text})
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		History []interview.Message `json:"history"`
		Message string              `json:"message"`
		Config  interview.Config    `json:"config"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	text, err := h.interview.SendMessage(r.Context(), payload.History, payload.Message, payload.Config)
	if err != nil {
		h.respondServiceError(w, "send interview message", err)
		return
	}

	w.Header().Set(PhaseHeader, string(interview.PhaseInProgress))
	utils.RespondJSON(w, http.StatusOK, textResponse{Text: text})
}

func (h *Handler) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		History []interview.Message `json:"history"`
		Config  interview.Config    `json:"config"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	feedback, err := h.evaluation.GetFeedback(r.Context(), payload.History, payload.Config)
	if err != nil {
		h.respondServiceError(w, "get feedback", err)
		return
	}

	w.Header().Set(PhaseHeader, string(interview.PhaseCompleted))
	utils.RespondJSON(w, http.StatusOK, feedback)
}

// respondServiceError maps service errors to short client messages. Provider
// details stay in the log.
func (h *Handler) respondServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, interview.ErrJobTitleRequired),
		errors.Is(err, interview.ErrInvalidInterviewType),
		errors.Is(err, interviewservice.ErrEmptyMessage):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, interview.ErrInvalidTransition):
		utils.RespondError(w, http.StatusConflict, "interview is not in a state that allows this action")
	case errors.Is(err, evaluation.ErrEvaluationFailed):
		h.logger.Warn(op+" failed", zap.Error(err))
		utils.RespondError(w, http.StatusBadGateway, evaluation.ErrEvaluationFailed.Error())
	default:
		h.logger.Error(op+" failed", zap.Error(err))
		utils.RespondError(w, http.StatusBadGateway, upstreamErrorMessage)
	}
}
