package handler

import (
	"net/http"

	"github.com/sanad-org/sanad/internal/adapter/http/middleware"
	"github.com/sanad-org/sanad/internal/domain"
)

// PermissionHandler exposes read-only views of the access policy.
type PermissionHandler struct {
	policy *domain.Policy
}

// NewPermissionHandler creates a new PermissionHandler.
func NewPermissionHandler(policy *domain.Policy) *PermissionHandler {
	return &PermissionHandler{policy: policy}
}

// Summary returns the grant summary for a role. Without a role query
// parameter it describes the caller's own role.
func (h *PermissionHandler) Summary(w http.ResponseWriter, r *http.Request) {
	roleParam := r.URL.Query().Get("role")

	var role domain.Role
	if roleParam == "" {
		identity := middleware.IdentityFromContext(r.Context())
		if identity == nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired session", "")
			return
		}
		role = identity.Role
	} else {
		parsed, err := domain.ParseRole(roleParam)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid role", err.Error())
			return
		}
		role = parsed
	}

	writeJSON(w, http.StatusOK, h.policy.Summary(role))
}
