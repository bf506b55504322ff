package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/medassist/medchat/internal/config"
	"github.com/medassist/medchat/internal/model/assistant"
	chatService "github.com/medassist/medchat/internal/service/chat"
	"github.com/medassist/medchat/internal/service/transport"
)

type stubSender struct{}

func (stubSender) Send(context.Context, string) transport.Result {
	return transport.Success{Text: "ok"}
}

func newWebRouter(t *testing.T) http.Handler {
	t.Helper()
	svc := chatService.NewService(stubSender{}, assistant.Seed("", "", 0))
	r, err := NewRouter(svc, config.ServerConfig{Addr: ":0", AllowedOrigins: []string{"http://localhost:3000"}})
	if err != nil {
		t.Fatalf("NewRouter err: %v", err)
	}
	return r
}

func TestWebRoutesMounted(t *testing.T) {
	r := newWebRouter(t)

	cases := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/api/profile", http.StatusOK},
		{http.MethodPost, "/api/session", http.StatusCreated},
		{http.MethodGet, "/api/session/missing", http.StatusNotFound},
		{http.MethodGet, "/ws/missing", http.StatusNotFound},
	}
	for _, tc := range cases {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(tc.method, tc.path, nil))
		if resp.Code != tc.want {
			t.Fatalf("%s %s: expected %d, got %d", tc.method, tc.path, tc.want, resp.Code)
		}
	}
}

func TestMetricsExposeChatCounters(t *testing.T) {
	r := newWebRouter(t)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/session", nil))

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(resp.Body.String(), "medchat_sessions") {
		t.Fatal("session gauge missing from /metrics")
	}
}

func TestCORSPreflight(t *testing.T) {
	r := newWebRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/session", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Header().Get("Access-Control-Allow-Origin") != "http://localhost:3000" {
		t.Fatalf("missing allow-origin header: %v", resp.Header())
	}
}

func TestInferenceRouterWithoutModel(t *testing.T) {
	r := NewInferenceRouter(nil, "1.0.0", config.ServerConfig{})

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 on root, got %d", resp.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/get", strings.NewReader("msg=hi"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.Code)
	}
}
