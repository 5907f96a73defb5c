package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/labframe/labframe/internal/auth"
)

func newLoginRouter(t *testing.T) http.Handler {
	t.Helper()
	svc, err := auth.NewService("0123456789abcdef0123456789abcdef", "admin", "a-strong-password", time.Hour)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	r := chi.NewRouter()
	r.Post("/login", NewAuthHandler(svc).Login)
	return r
}

func TestLogin(t *testing.T) {
	t.Run("valid credentials return a token", func(t *testing.T) {
		rec := doRequest(t, newLoginRouter(t), http.MethodPost, "/login",
			`{"username":"admin","password":"a-strong-password"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		body := decodeBody(t, rec)
		token, _ := body["token"].(string)
		if token == "" {
			t.Fatal("expected a token in the response")
		}
	})

	t.Run("wrong password is 401", func(t *testing.T) {
		rec := doRequest(t, newLoginRouter(t), http.MethodPost, "/login",
			`{"username":"admin","password":"guess"}`)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("missing fields rejected before auth", func(t *testing.T) {
		rec := doRequest(t, newLoginRouter(t), http.MethodPost, "/login", `{"username":"admin"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}
