package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/sanad-org/sanad/internal/domain"
)

// ContextKey is the type for context keys
type ContextKey string

const (
	// IdentityContextKey is the context key for the authenticated identity
	IdentityContextKey ContextKey = "identity"
)

// SessionValidator resolves a session token to an identity. An unusable
// token (unknown, expired, logged out) resolves to nil.
type SessionValidator interface {
	ValidateSession(ctx context.Context, token string) *domain.Identity
}

// SessionAuth creates a middleware that requires a valid session token.
func SessionAuth(validator SessionValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Extract token from Authorization header
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}

			// Parse Bearer token
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "invalid authorization header format", http.StatusUnauthorized)
				return
			}

			identity := validator.ValidateSession(r.Context(), parts[1])
			if identity == nil {
				http.Error(w, "invalid or expired session", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), IdentityContextKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequirePermission creates a middleware that checks the caller's role
// against the policy for a resource and level. The record-level facts
// (ownership, department) are not known at routing time, so the check
// here is the role-level gate; handlers that need record-level checks
// call the policy again with full facts.
func RequirePermission(policy *domain.Policy, resource domain.Resource, level domain.Level) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := IdentityFromContext(r.Context())
			if identity == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			// The caller trivially satisfies own and department scope
			// against themselves, so only grant existence is decided here.
			allowed := policy.Check(identity.Role, resource, level, domain.CheckFacts{
				CallerID:           identity.ID,
				OwnerID:            identity.ID,
				CallerDepartment:   identity.Department,
				ResourceDepartment: identity.Department,
			})
			if !allowed {
				http.Error(w, "insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// IdentityFromContext extracts the authenticated identity from context.
// It returns nil when the request did not pass session authentication.
func IdentityFromContext(ctx context.Context) *domain.Identity {
	identity, ok := ctx.Value(IdentityContextKey).(*domain.Identity)
	if !ok {
		return nil
	}
	return identity
}
