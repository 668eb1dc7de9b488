package usecase

import (
	"context"
	"time"

	"github.com/sanad-org/sanad/internal/domain"
)

// UserRepository defines data access for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// GetByUsername returns (nil, nil) when no user matches.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	// GetByEmail returns (nil, nil) when no user matches.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	UpdateLastLogin(ctx context.Context, tx Transaction, id string, at time.Time) error
	List(ctx context.Context, limit, offset int) ([]*domain.User, error)
}

// SessionRepository defines data access for sessions.
type SessionRepository interface {
	Create(ctx context.Context, tx Transaction, session *domain.Session) error
	// GetActiveByToken returns (nil, nil) when no active, unexpired
	// session matches the token at the given instant.
	GetActiveByToken(ctx context.Context, token string, now time.Time) (*domain.Session, error)
	Deactivate(ctx context.Context, token string, at time.Time) error
	TouchActivity(ctx context.Context, token string, at time.Time) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Session, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// TokenGenerator produces unguessable session tokens.
type TokenGenerator interface {
	Generate() (string, error)
}

// SessionCache is a lookaside cache for validated sessions, keyed by
// token. Misses are not errors.
type SessionCache interface {
	Get(ctx context.Context, token string) (*domain.Identity, error)
	Set(ctx context.Context, token string, identity *domain.Identity, ttl time.Duration) error
	Delete(ctx context.Context, token string) error
}

// Retrier retries an operation on transient storage errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}
