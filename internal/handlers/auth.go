package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/diewo77/go-users/httpx"
	"github.com/diewo77/go-users/i18n"
	"github.com/diewo77/go-users/internal/users"
)

// LoginService issues tokens for valid credentials.
type LoginService interface {
	Login(ctx context.Context, input map[string]any) (*users.Token, error)
}

type AuthHandler struct {
	svc LoginService
}

func NewAuthHandler(svc LoginService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Login exchanges {login, password} for a bearer token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	tok, err := h.svc.Login(r.Context(), body)
	if errors.Is(err, users.ErrInvalidCredentials) {
		httpx.Validation(w, i18n.Tc(r.Context(), "auth.failed"), map[string][]string{
			"login": {i18n.Tc(r.Context(), "auth.failed")},
		})
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.Data(w, http.StatusOK, map[string]any{
		"token":      tok.Token,
		"token_type": "Bearer",
		"expires_at": tok.ExpiresAt.UTC().Format(time.RFC3339),
		"user":       users.Output(tok.User),
	}, i18n.Tc(r.Context(), "auth.logged_in"))
}
