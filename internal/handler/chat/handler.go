package chat

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/medassist/medchat/internal/model/chat"
	chatService "github.com/medassist/medchat/internal/service/chat"
	"github.com/medassist/medchat/pkg/utils"
)

// Handler 聊天服务的HTTP处理器
type Handler struct {
	chatSvc *chatService.Service
}

// New 创建聊天处理器
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{chatSvc: chatSvc}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session", h.handleCreateSession)
	r.Get("/session/{sessionID}", h.handleGetConversation)
	r.Post("/session/{sessionID}/messages", h.handleSendMessage)
}

// handleCreateSession 创建会话
func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.chatSvc.CreateSession(r.Context())
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusCreated, session)
}

// handleGetConversation 返回会话当前的消息列表与加载状态
func (h *Handler) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	controller, err := h.chatSvc.Controller(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, controller.Snapshot())
}

// handleSendMessage 发送消息并在回复到达后返回会话
func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text string `json:"text"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	controller, err := h.chatSvc.Controller(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}

	if err := controller.TrySend(r.Context(), payload.Text); err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, chat.ErrBlankInput):
			status = http.StatusBadRequest
		case errors.Is(err, chat.ErrBusy):
			status = http.StatusConflict
		}
		utils.RespondError(w, status, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, controller.Snapshot())
}
