package profile

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/medassist/medchat/internal/model/assistant"
	"github.com/medassist/medchat/pkg/utils"
)

// Handler 助手展示信息的HTTP处理器
type Handler struct {
	profile assistant.Profile
}

// New 创建profile处理器
func New(profile assistant.Profile) *Handler {
	return &Handler{profile: profile}
}

// RegisterRoutes 注册profile相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/profile", h.handleGetProfile)
}

func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.profile)
}
