package ai

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	aiservice "github.com/zhouzirui/ai-interviewer/backend/internal/service/ai"
	"github.com/zhouzirui/ai-interviewer/backend/pkg/utils"
)

// Handler 模型列表与凭证校验。
type Handler struct {
	ai *aiservice.Service
}

// New 创建处理器
func New(aiSvc *aiservice.Service) *Handler {
	return &Handler{ai: aiSvc}
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ai/models", h.handleListModels)
	r.Post("/ai/validate-key", h.handleValidateKey)
}

func (h *Handler) handleListModels(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.ai.ListModels(r.Context()))
}

func (h *Handler) handleValidateKey(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Key string `json:"key"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	utils.RespondJSON(w, http.StatusOK, h.ai.ValidateCredential(r.Context(), payload.Key))
}
