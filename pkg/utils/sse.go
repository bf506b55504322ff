package utils

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/medassist/medchat/internal/logger"
)

// SetupSSEHeaders 设置Server-Sent Events响应头
func SetupSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
}

// SendSSEEvent 发送带事件类型的SSE消息
func SendSSEEvent(w http.ResponseWriter, flusher http.Flusher, event string, data any) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		logger.WarnCF("sse", "failed to marshal event data", map[string]any{"event": event, "error": err.Error()})
		return
	}

	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, jsonData); err != nil {
		logger.WarnCF("sse", "failed to write event", map[string]any{"event": event, "error": err.Error()})
		return
	}
	flusher.Flush()
}
