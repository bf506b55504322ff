package page

import (
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"github.com/medassist/medchat/internal/logger"
	"github.com/medassist/medchat/internal/model/assistant"
	"github.com/medassist/medchat/internal/model/chat"
	chatservice "github.com/medassist/medchat/internal/service/chat"
	"github.com/medassist/medchat/web"
)

// Handler 渲染聊天页面
type Handler struct {
	chatSvc *chatservice.Service
	tmpl    *template.Template
}

type view struct {
	Profile   assistant.Profile
	SessionID string
	Messages  []chat.Message
	IsLoading bool
}

// New 创建页面处理器，模板解析失败时返回错误。
func New(chatSvc *chatservice.Service) (*Handler, error) {
	tmpl, err := template.ParseFS(web.Templates, "templates/index.html")
	if err != nil {
		return nil, err
	}
	return &Handler{chatSvc: chatSvc, tmpl: tmpl}, nil
}

// RegisterRoutes 注册页面路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.index)
	r.Post("/", h.submit)
}

// index 每次加载都开启新会话；仅当 ?session= 指向仍存活的会话时沿用它，供无脚本表单重定向回来。
func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	controller, sessionID, err := h.session(r, r.URL.Query().Get("session"))
	if err != nil {
		http.Error(w, "failed to create session", http.StatusInternalServerError)
		return
	}

	conv := controller.Snapshot()
	data := view{
		Profile:   h.chatSvc.Profile(),
		SessionID: sessionID,
		Messages:  conv.Messages,
		IsLoading: conv.IsLoading,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := h.tmpl.ExecuteTemplate(w, "index.html", data); err != nil {
		logger.ErrorCF("page", "render failed", map[string]any{"error": err.Error()})
	}
}

// submit 是无脚本表单的回退路径：同步发送后重定向回同一会话。
func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	text := r.PostForm.Get("text")
	if utf8.RuneCountInString(text) > h.chatSvc.Profile().MaxInput {
		http.Error(w, "message too long", http.StatusBadRequest)
		return
	}

	controller, sessionID, err := h.session(r, r.PostForm.Get("session"))
	if err != nil {
		http.Error(w, "failed to create session", http.StatusInternalServerError)
		return
	}

	if err := controller.TrySend(r.Context(), text); err != nil && !errors.Is(err, chat.ErrBlankInput) {
		logger.InfoCF("page", "form send rejected", map[string]any{"session": sessionID, "error": err.Error()})
	}

	http.Redirect(w, r, "/?session="+url.QueryEscape(sessionID), http.StatusSeeOther)
}

// session 返回 id 对应的会话，为空或已失效时新建。
func (h *Handler) session(r *http.Request, id string) (*chatservice.Controller, string, error) {
	if id != "" {
		if controller, err := h.chatSvc.Controller(r.Context(), id); err == nil {
			return controller, id, nil
		}
	}

	session, err := h.chatSvc.CreateSession(r.Context())
	if err != nil {
		return nil, "", err
	}
	controller, err := h.chatSvc.Controller(r.Context(), session.ID)
	if err != nil {
		return nil, "", err
	}
	return controller, session.ID, nil
}
