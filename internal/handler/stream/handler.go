package stream

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/medassist/medchat/internal/logger"
	"github.com/medassist/medchat/internal/model/chat"
	chatService "github.com/medassist/medchat/internal/service/chat"
	"github.com/medassist/medchat/pkg/utils"
)

// Handler pushes the state changes of one send over Server-Sent Events.
type Handler struct {
	chatSvc *chatService.Service
}

// New creates a new stream handler
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{chatSvc: chatSvc}
}

// RegisterRoutes mounts the stream endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/session/{sessionID}/stream", h.handleStream)
}

// StreamError is the payload of an "error" event.
type StreamError struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	userMessage := r.URL.Query().Get("message")

	controller, err := h.chatSvc.Controller(r.Context(), sessionID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}

	if err := h.HandleStreamRequest(r.Context(), w, controller, userMessage); err != nil {
		logger.WarnCF("stream", "stream request failed", map[string]any{
			"session": sessionID,
			"error":   err.Error(),
		})
	}
}

// HandleStreamRequest sends userMessage through controller and writes every
// resulting event, followed by an "end" event.
func (h *Handler) HandleStreamRequest(ctx context.Context, w http.ResponseWriter, controller *chatService.Controller, userMessage string) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return fmt.Errorf("streaming unsupported")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := controller.Watch(ctx, 8)
	done := make(chan error, 1)
	go func() {
		done <- controller.TrySend(ctx, userMessage)
	}()

	utils.SetupSSEHeaders(w)
	w.WriteHeader(http.StatusOK)

	for {
		select {
		case ev := <-events:
			utils.SendSSEEvent(w, flusher, string(ev.Type), ev)
		case err := <-done:
			drain(w, flusher, events)
			if err != nil {
				utils.SendSSEEvent(w, flusher, "error", StreamError{Error: err.Error(), Code: errorCode(err)})
			}
			utils.SendSSEEvent(w, flusher, "end", controller.Snapshot())
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func drain(w http.ResponseWriter, flusher http.Flusher, events <-chan chatService.Event) {
	for {
		select {
		case ev := <-events:
			utils.SendSSEEvent(w, flusher, string(ev.Type), ev)
		default:
			return
		}
	}
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, chat.ErrBlankInput):
		return "blank"
	case errors.Is(err, chat.ErrBusy):
		return "busy"
	default:
		return "internal"
	}
}
