package profile

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/medassist/medchat/internal/model/assistant"
)

func TestGetProfile(t *testing.T) {
	r := chi.NewRouter()
	New(assistant.Seed("Clinic", "", 500)).RegisterRoutes(r)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/profile", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var got assistant.Profile
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if got.Name != "Clinic" || got.MaxInput != 500 || got.Welcome != assistant.WelcomeText {
		t.Fatalf("unexpected profile %+v", got)
	}
}
