package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sanad-org/sanad/internal/domain"
)

type validatorStub struct {
	identity *domain.Identity
	seen     string
}

func (v *validatorStub) ValidateSession(ctx context.Context, token string) *domain.Identity {
	v.seen = token
	return v.identity
}

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestSessionAuth_ValidToken(t *testing.T) {
	identity := &domain.Identity{ID: "user-1", Role: domain.RoleEmployee}
	validator := &validatorStub{identity: identity}

	var got *domain.Identity
	handler := SessionAuth(validator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer tok-abc")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if validator.seen != "tok-abc" {
		t.Fatalf("expected token tok-abc, got %q", validator.seen)
	}
	if got != identity {
		t.Fatalf("identity not propagated: %+v", got)
	}
}

func TestSessionAuth_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"malformed header", "tok-abc"},
		{"wrong scheme", "Basic dXNlcjpwYXNz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := SessionAuth(&validatorStub{identity: &domain.Identity{}})(okHandler(&called))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
			if called {
				t.Fatal("next handler should not run")
			}
		})
	}
}

func TestSessionAuth_InvalidSession(t *testing.T) {
	called := false
	handler := SessionAuth(&validatorStub{identity: nil})(okHandler(&called))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer tok-expired")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if called {
		t.Fatal("next handler should not run")
	}
}

func TestRequirePermission(t *testing.T) {
	policy := domain.DefaultPolicy()

	tests := []struct {
		name     string
		identity *domain.Identity
		resource domain.Resource
		level    domain.Level
		want     int
	}{
		{
			name:     "admin allowed",
			identity: &domain.Identity{ID: "u1", Role: domain.RoleAdmin},
			resource: domain.ResourceUsers,
			level:    domain.LevelDelete,
			want:     http.StatusOK,
		},
		{
			name:     "viewer denied mutation",
			identity: &domain.Identity{ID: "u2", Role: domain.RoleViewer},
			resource: domain.ResourceUsers,
			level:    domain.LevelCreate,
			want:     http.StatusForbidden,
		},
		{
			name:     "employee own-scoped grant passes the gate",
			identity: &domain.Identity{ID: "u3", Role: domain.RoleEmployee},
			resource: domain.ResourceActivities,
			level:    domain.LevelEdit,
			want:     http.StatusOK,
		},
		{
			name:     "no identity",
			identity: nil,
			resource: domain.ResourceUsers,
			level:    domain.LevelView,
			want:     http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := RequirePermission(policy, tt.resource, tt.level)(okHandler(&called))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.identity != nil {
				ctx := context.WithValue(req.Context(), IdentityContextKey, tt.identity)
				req = req.WithContext(ctx)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rec.Code)
			}
			if (rec.Code == http.StatusOK) != called {
				t.Fatal("handler invocation does not match status")
			}
		})
	}
}

func TestIdentityFromContext_Empty(t *testing.T) {
	if identity := IdentityFromContext(context.Background()); identity != nil {
		t.Fatalf("expected nil, got %+v", identity)
	}
}
