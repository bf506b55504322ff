package inference

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/medassist/medchat/internal/logger"
	"github.com/medassist/medchat/internal/metrics"
	"github.com/medassist/medchat/internal/service/ai"
	"github.com/medassist/medchat/pkg/utils"
)

const maxFormMemory = 1 << 20

// Handler 推理后端接口
type Handler struct {
	aiSvc   *ai.Service
	version string
}

// New 创建推理处理器。aiSvc 为 nil 时问答接口返回 503。
func New(aiSvc *ai.Service, version string) *Handler {
	return &Handler{aiSvc: aiSvc, version: version}
}

// RegisterRoutes 注册推理路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.root)
	r.Get("/get", h.legacyChat)
	r.Post("/get", h.legacyChat)
	r.Route("/api/chat", func(api chi.Router) {
		api.Post("/", h.chat)
		api.Get("/health", h.health)
	})
}

type chatRequest struct {
	Message string `json:"message"`
}

func (h *Handler) root(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"version":   h.version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// legacyChat 接收表单字段 msg，以纯文本返回回答。
func (h *Handler) legacyChat(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		metrics.InferenceServed("legacy", "bad_request")
		utils.RespondError(w, http.StatusBadRequest, "invalid form body")
		return
	}

	msg, ok := formValue(r, "msg")
	if !ok {
		metrics.InferenceServed("legacy", "bad_request")
		utils.RespondError(w, http.StatusBadRequest, "msg field is required")
		return
	}
	if h.aiSvc == nil {
		metrics.InferenceServed("legacy", "unavailable")
		utils.RespondError(w, http.StatusServiceUnavailable, "ai service unavailable")
		return
	}

	answer, err := h.aiSvc.Answer(r.Context(), msg)
	if errors.Is(err, ai.ErrEmptyQuestion) {
		metrics.InferenceServed("legacy", "bad_request")
		utils.RespondError(w, http.StatusBadRequest, "msg must not be empty")
		return
	}
	if err != nil {
		logger.ErrorCF("inference", "legacy chat failed", map[string]any{"error": err.Error()})
		metrics.InferenceServed("legacy", "error")
		utils.RespondText(w, http.StatusInternalServerError, err.Error())
		return
	}

	metrics.InferenceServed("legacy", "ok")
	utils.RespondText(w, http.StatusOK, answer.Answer)
}

func (h *Handler) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.InferenceServed("chat", "bad_request")
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if h.aiSvc == nil {
		metrics.InferenceServed("chat", "unavailable")
		utils.RespondError(w, http.StatusServiceUnavailable, "ai service unavailable")
		return
	}

	answer, err := h.aiSvc.Answer(r.Context(), req.Message)
	if errors.Is(err, ai.ErrEmptyQuestion) {
		metrics.InferenceServed("chat", "bad_request")
		utils.RespondError(w, http.StatusBadRequest, "message is required")
		return
	}
	if err != nil {
		logger.ErrorCF("inference", "chat failed", map[string]any{"error": err.Error()})
		metrics.InferenceServed("chat", "error")
		utils.RespondError(w, http.StatusInternalServerError, "Internal server error: "+err.Error())
		return
	}

	metrics.InferenceServed("chat", "ok")
	utils.RespondJSON(w, http.StatusOK, answer)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if h.aiSvc == nil || !h.aiSvc.HealthCheck(r.Context()) {
		utils.RespondJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":  "unhealthy",
			"message": "Chat service is not operational",
		})
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"message": "Chat service is operational",
	})
}

// formValue 读取已解析的表单字段，区分缺失与空值。
func formValue(r *http.Request, key string) (string, bool) {
	vs, ok := r.Form[key]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}
