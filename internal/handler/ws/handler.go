package ws

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/medassist/medchat/internal/logger"
	"github.com/medassist/medchat/internal/model/chat"
	chatservice "github.com/medassist/medchat/internal/service/chat"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	writeWait  = 10 * time.Second
)

// Handler WebSocket会话处理器
type Handler struct {
	chatSvc  *chatservice.Service
	origins  map[string]bool
	upgrader websocket.Upgrader
}

// New 创建WebSocket处理器。allowedOrigins 为空时只做同源校验。
func New(chatSvc *chatservice.Service, allowedOrigins []string) *Handler {
	h := &Handler{
		chatSvc: chatSvc,
		origins: make(map[string]bool, len(allowedOrigins)),
	}
	for _, o := range allowedOrigins {
		h.origins[o] = true
	}
	h.upgrader = websocket.Upgrader{
		CheckOrigin:     h.checkOrigin,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	return h
}

// RegisterRoutes 注册WebSocket路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/{sessionID}", h.handleWebSocket)
}

type inboundMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type outgoingMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId,omitempty"`
	Data      any    `json:"data,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

type errorData struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || h.origins[origin] {
		return true
	}
	u, err := url.Parse(origin)
	return err == nil && u.Host == r.Host
}

// handleWebSocket 处理WebSocket连接
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	controller, err := h.chatSvc.Attach(r.Context(), sessionID)
	if err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	// 最后一个连接断开即结束会话，刷新页面会开启新会话。
	defer h.chatSvc.Detach(sessionID)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WarnCF("websocket", "upgrade failed", map[string]any{"error": err.Error()})
		return
	}
	defer conn.Close()

	logger.DebugCF("websocket", "connection opened", map[string]any{"session": sessionID})

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	events := controller.Watch(ctx, 16)
	outbound := make(chan outgoingMessage, 4)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer conn.Close()
		defer cancel()
		h.writeLoop(ctx, conn, sessionID, controller.Snapshot(), events, outbound)
	}()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.WarnCF("websocket", "read error", map[string]any{"session": sessionID, "error": err.Error()})
			}
			break
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))

		switch msg.Type {
		case "send":
			go h.send(ctx, controller, msg.Text, outbound)
		default:
			queue(ctx, outbound, outgoingMessage{
				Type: "error",
				Data: errorData{Message: "unsupported message type: " + msg.Type, Code: "unsupported"},
			})
		}
	}

	cancel()
	wg.Wait()
	logger.DebugCF("websocket", "connection closed", map[string]any{"session": sessionID})
}

func (h *Handler) send(ctx context.Context, controller *chatservice.Controller, text string, outbound chan<- outgoingMessage) {
	err := controller.TrySend(ctx, text)
	if err == nil {
		return
	}

	code := "internal"
	switch {
	case errors.Is(err, chat.ErrBlankInput):
		code = "blank"
	case errors.Is(err, chat.ErrBusy):
		code = "busy"
	}
	queue(ctx, outbound, outgoingMessage{Type: "error", Data: errorData{Message: err.Error(), Code: code}})
}

// writeLoop is the only goroutine writing to conn.
func (h *Handler) writeLoop(ctx context.Context, conn *websocket.Conn, sessionID string, snapshot chat.Conversation, events <-chan chatservice.Event, outbound <-chan outgoingMessage) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	write := func(msg outgoingMessage) bool {
		msg.SessionID = sessionID
		msg.Timestamp = time.Now().Unix()
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(msg); err != nil {
			logger.WarnCF("websocket", "write failed", map[string]any{"session": sessionID, "error": err.Error()})
			return false
		}
		return true
	}

	if !write(outgoingMessage{Type: "snapshot", Data: snapshot}) {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			if !write(outgoingMessage{Type: string(ev.Type), Data: ev}) {
				return
			}
		case msg := <-outbound:
			if !write(msg) {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func queue(ctx context.Context, outbound chan<- outgoingMessage, msg outgoingMessage) {
	select {
	case outbound <- msg:
	case <-ctx.Done():
	}
}
