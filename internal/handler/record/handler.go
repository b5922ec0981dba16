package record

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/zhouzirui/ai-interviewer/backend/internal/model/interview"
	recordservice "github.com/zhouzirui/ai-interviewer/backend/internal/service/record"
	"github.com/zhouzirui/ai-interviewer/backend/internal/store"
	"github.com/zhouzirui/ai-interviewer/backend/pkg/utils"
)

// Handler 面试记录的 HTTP 处理器
type Handler struct {
	records *recordservice.Service
	logger  *zap.Logger
}

// New 创建记录处理器
func New(records *recordservice.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{records: records, logger: logger}
}

// RegisterRoutes 注册记录相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/interviews", func(r chi.Router) {
		r.Post("/", h.handleCreate)
		r.Get("/", h.handleList)
		r.Get("/{id}", h.handleGet)
		r.Delete("/{id}", h.handleDelete)
	})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Config   interview.Config    `json:"config"`
		History  []interview.Message `json:"history"`
		Feedback interview.Feedback  `json:"feedback"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := h.records.Create(r.Context(), payload.Config, payload.History, payload.Feedback)
	if err != nil {
		switch {
		case errors.Is(err, interview.ErrInvalidTransition):
			utils.RespondError(w, http.StatusConflict, "interview is not complete")
		case errors.Is(err, store.ErrAlreadyExists):
			utils.RespondError(w, http.StatusConflict, "record already exists")
		case errors.Is(err, interview.ErrJobTitleRequired),
			errors.Is(err, interview.ErrInvalidInterviewType),
			errors.Is(err, interview.ErrInvalidFeedback):
			utils.RespondError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("create record failed", zap.Error(err))
			utils.RespondError(w, http.StatusInternalServerError, "failed to save record")
		}
		return
	}

	utils.RespondJSON(w, http.StatusCreated, rec)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	records, err := h.records.List(r.Context())
	if err != nil {
		h.logger.Error("list records failed", zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "failed to list records")
		return
	}
	utils.RespondJSON(w, http.StatusOK, records)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := h.records.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondLookupError(w, "get", err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, rec)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.records.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondLookupError(w, "delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondLookupError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		utils.RespondError(w, http.StatusNotFound, "record not found")
		return
	}
	h.logger.Error(op+" record failed", zap.Error(err))
	utils.RespondError(w, http.StatusInternalServerError, "failed to "+op+" record")
}
