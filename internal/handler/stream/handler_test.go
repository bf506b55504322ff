package stream

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/medassist/medchat/internal/model/assistant"
	chatservice "github.com/medassist/medchat/internal/service/chat"
	"github.com/medassist/medchat/internal/service/transport"
)

type echoSender struct{}

func (echoSender) Send(_ context.Context, text string) transport.Result {
	return transport.Success{Text: "re: " + text}
}

func setup(t *testing.T) (*chi.Mux, chatservice.Session) {
	t.Helper()
	svc := chatservice.NewService(echoSender{}, assistant.Seed("", "", 0))
	session, err := svc.CreateSession(context.Background())
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}

	r := chi.NewRouter()
	New(svc).RegisterRoutes(r)
	return r, session
}

func eventNames(body string) []string {
	var names []string
	sc := bufio.NewScanner(strings.NewReader(body))
	for sc.Scan() {
		if name, ok := strings.CutPrefix(sc.Text(), "event: "); ok {
			names = append(names, name)
		}
	}
	return names
}

func TestStreamEmitsEventsInOrder(t *testing.T) {
	r, session := setup(t)

	req := httptest.NewRequest(http.MethodGet, "/session/"+session.ID+"/stream?message=hello", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if ct := resp.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type %q", ct)
	}

	got := strings.Join(eventNames(resp.Body.String()), ",")
	if got != "message,status,message,status,end" {
		t.Fatalf("unexpected event sequence %s", got)
	}
	if !strings.Contains(resp.Body.String(), `"text":"re: hello"`) {
		t.Fatalf("reply missing from stream: %s", resp.Body.String())
	}
}

func TestStreamBlankMessageReportsError(t *testing.T) {
	r, session := setup(t)

	req := httptest.NewRequest(http.MethodGet, "/session/"+session.ID+"/stream?message=%20%20", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	got := strings.Join(eventNames(resp.Body.String()), ",")
	if got != "error,end" {
		t.Fatalf("unexpected event sequence %s", got)
	}
	if !strings.Contains(resp.Body.String(), `"code":"blank"`) {
		t.Fatalf("expected blank code: %s", resp.Body.String())
	}
}

func TestStreamUnknownSession(t *testing.T) {
	r, _ := setup(t)

	req := httptest.NewRequest(http.MethodGet, "/session/missing/stream?message=hi", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}
