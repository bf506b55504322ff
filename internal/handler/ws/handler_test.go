package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/medassist/medchat/internal/model/assistant"
	"github.com/medassist/medchat/internal/model/chat"
	chatservice "github.com/medassist/medchat/internal/service/chat"
	"github.com/medassist/medchat/internal/service/transport"
)

type echoSender struct{}

func (echoSender) Send(_ context.Context, text string) transport.Result {
	return transport.Success{Text: "re: " + text}
}

type frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func dial(t *testing.T) (*websocket.Conn, *chatservice.Service, string) {
	t.Helper()
	svc := chatservice.NewService(echoSender{}, assistant.Seed("", "", 0))
	session, err := svc.CreateSession(context.Background())
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}

	r := chi.NewRouter()
	New(svc, nil).RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/" + session.ID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial err: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn, svc, session.ID
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	var f frame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("read err: %v", err)
	}
	return f
}

func TestWebSocketSendsSnapshotFirst(t *testing.T) {
	conn, _, _ := dial(t)

	f := readFrame(t, conn)
	if f.Type != "snapshot" {
		t.Fatalf("expected snapshot, got %s", f.Type)
	}
	var conv chat.Conversation
	if err := json.Unmarshal(f.Data, &conv); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if len(conv.Messages) != 1 || !conv.Messages[0].IsBot {
		t.Fatalf("unexpected snapshot %+v", conv)
	}
}

func TestWebSocketStreamsSendEvents(t *testing.T) {
	conn, svc, sessionID := dial(t)
	readFrame(t, conn)

	if err := conn.WriteJSON(inboundMessage{Type: "send", Text: "What is a fever?"}); err != nil {
		t.Fatalf("write err: %v", err)
	}

	var types []string
	var last chatservice.Event
	for i := 0; i < 4; i++ {
		f := readFrame(t, conn)
		types = append(types, f.Type)
		if err := json.Unmarshal(f.Data, &last); err != nil {
			t.Fatalf("decode err: %v", err)
		}
		if i == 2 && (last.Message == nil || last.Message.Text != "re: What is a fever?") {
			t.Fatalf("unexpected bot event %+v", last)
		}
	}

	if got := strings.Join(types, ","); got != "message,status,message,status" {
		t.Fatalf("unexpected frame sequence %s", got)
	}
	if last.IsLoading {
		t.Fatal("final status must clear loading")
	}

	controller, err := svc.Controller(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("Controller err: %v", err)
	}
	if n := len(controller.Snapshot().Messages); n != 3 {
		t.Fatalf("expected 3 messages, got %d", n)
	}
}

func TestWebSocketCloseEndsSession(t *testing.T) {
	conn, svc, sessionID := dial(t)
	readFrame(t, conn)

	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	conn.Close()

	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, err := svc.GetSession(context.Background(), sessionID); errors.Is(err, chatservice.ErrSessionNotFound) {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("session still held after its connection closed")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestWebSocketBlankSendReportsError(t *testing.T) {
	conn, _, _ := dial(t)
	readFrame(t, conn)

	if err := conn.WriteJSON(inboundMessage{Type: "send", Text: "  "}); err != nil {
		t.Fatalf("write err: %v", err)
	}

	f := readFrame(t, conn)
	if f.Type != "error" || !strings.Contains(string(f.Data), `"code":"blank"`) {
		t.Fatalf("unexpected frame %s %s", f.Type, f.Data)
	}
}

func TestWebSocketUnknownSession(t *testing.T) {
	svc := chatservice.NewService(echoSender{}, assistant.Seed("", "", 0))
	r := chi.NewRouter()
	New(svc, nil).RegisterRoutes(r)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/ws/missing", nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestCheckOrigin(t *testing.T) {
	h := New(nil, []string{"http://localhost:3000"})

	req := httptest.NewRequest(http.MethodGet, "http://chat.example/ws/x", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	if !h.checkOrigin(req) {
		t.Fatal("listed origin rejected")
	}

	req.Header.Set("Origin", "http://chat.example")
	if !h.checkOrigin(req) {
		t.Fatal("same-host origin rejected")
	}

	req.Header.Set("Origin", "http://evil.example")
	if h.checkOrigin(req) {
		t.Fatal("foreign origin accepted")
	}
}
