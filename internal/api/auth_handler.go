package api

import (
	"net/http"

	"github.com/labframe/labframe/internal/auth"
)

// AuthHandler serves the login endpoint.
type AuthHandler struct {
	auth *auth.Service
}

// NewAuthHandler creates an auth handler.
func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Login handles POST /api/v1/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	input, ok := decodeJSON[auth.LoginRequest](w, r)
	if !ok {
		return
	}
	if !validateInput(w, r, input) {
		return
	}

	resp, err := h.auth.Login(input.Username, input.Password)
	if err != nil {
		sendError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid credentials", nil)
		return
	}

	sendJSON(w, http.StatusOK, resp)
}
