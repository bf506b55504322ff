package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/medassist/medchat/internal/config"
	"github.com/medassist/medchat/internal/handler/chat"
	"github.com/medassist/medchat/internal/handler/inference"
	"github.com/medassist/medchat/internal/handler/page"
	"github.com/medassist/medchat/internal/handler/profile"
	"github.com/medassist/medchat/internal/handler/stream"
	"github.com/medassist/medchat/internal/handler/ws"
	"github.com/medassist/medchat/internal/metrics"
	middlewarePkg "github.com/medassist/medchat/internal/middleware"
	aiService "github.com/medassist/medchat/internal/service/ai"
	chatService "github.com/medassist/medchat/internal/service/chat"
	"github.com/medassist/medchat/pkg/utils"
)

// NewRouter wires the chat web surface to the session service.
func NewRouter(chatSvc *chatService.Service, serverCfg config.ServerConfig) (http.Handler, error) {
	pageHandler, err := page.New(chatSvc)
	if err != nil {
		return nil, err
	}

	r := newBaseRouter(serverCfg)

	pageHandler.RegisterRoutes(r)
	ws.New(chatSvc, serverCfg.AllowedOrigins).RegisterRoutes(r)

	r.Route("/api", func(api chi.Router) {
		profile.New(chatSvc.Profile()).RegisterRoutes(api)
		chat.New(chatSvc).RegisterRoutes(api)
		stream.New(chatSvc).RegisterRoutes(api)
	})

	return r, nil
}

// NewInferenceRouter wires the question-answering backend. aiSvc may be nil
// when no model is configured.
func NewInferenceRouter(aiSvc *aiService.Service, version string, serverCfg config.ServerConfig) http.Handler {
	r := newBaseRouter(serverCfg)
	inference.New(aiSvc, version).RegisterRoutes(r)
	return r
}

func newBaseRouter(serverCfg config.ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(serverCfg.AllowedOrigins))

	r.Get("/healthz", handleHealth)
	r.Handle("/metrics", metrics.Handler())
	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
