package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sanad-org/sanad/internal/adapter/http/dto"
	"github.com/sanad-org/sanad/internal/adapter/http/middleware"
	"github.com/sanad-org/sanad/internal/domain"
	"github.com/sanad-org/sanad/internal/usecase"
)

// AuthService defines the behavior needed by AuthHandler.
type AuthService interface {
	Login(ctx context.Context, input usecase.LoginInput) usecase.LoginResult
	Logout(ctx context.Context, token string) usecase.LogoutResult
	ListUserSessions(ctx context.Context, userID string, limit, offset int) ([]*domain.Session, error)
}

// AuthHandler handles authentication HTTP requests.
type AuthHandler struct {
	authUC AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authUC AuthService) *AuthHandler {
	return &AuthHandler{authUC: authUC}
}

// Login authenticates a user and issues a session token. Failures come
// back as a structured body with a 401 status; the message never says
// more than the login taxonomy allows.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result := h.authUC.Login(r.Context(), usecase.LoginInput{
		Username:  req.Username,
		Password:  req.Password,
		IPAddress: clientIP(r),
		UserAgent: r.UserAgent(),
	})

	status := http.StatusOK
	if !result.Success {
		status = http.StatusUnauthorized
	}

	writeJSON(w, status, dto.LoginResponse{
		Success: result.Success,
		Token:   result.Token,
		User:    result.Identity,
		Message: result.Message,
	})
}

// Logout terminates the session named by the bearer token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "missing session token", "")
		return
	}

	result := h.authUC.Logout(r.Context(), token)

	status := http.StatusOK
	if !result.Success {
		status = http.StatusNotFound
	}

	writeJSON(w, status, dto.LogoutResponse{
		Success: result.Success,
		Message: result.Message,
	})
}

// Me returns the identity attached to the current session.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	if identity == nil {
		writeError(w, http.StatusUnauthorized, "invalid or expired session", "")
		return
	}

	writeJSON(w, http.StatusOK, identity)
}

// Sessions lists a user's login history, newest first. Tokens are not
// part of the response.
func (h *AuthHandler) Sessions(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing user ID", "")
		return
	}

	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	sessions, err := h.authUC.ListUserSessions(r.Context(), userID, limit, offset)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list sessions", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sessions": dto.SessionsFromDomain(sessions),
		"total":    len(sessions),
	})
}

// clientIP extracts the caller's address, preferring X-Forwarded-For when
// the service runs behind a proxy.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	return r.RemoteAddr
}
