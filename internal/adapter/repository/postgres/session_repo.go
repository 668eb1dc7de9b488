package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sanad-org/sanad/internal/domain"
	"github.com/sanad-org/sanad/internal/usecase"
)

const sessionColumns = `id, user_id, session_token, ip_address, user_agent,
		is_active, login_at, last_activity_at, expires_at, logout_at`

// SessionRepository implements session persistence. Session rows are
// never deleted; closed sessions stay behind as an audit trail.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// Create inserts a new session inside the login transaction.
func (r *SessionRepository) Create(ctx context.Context, tx usecase.Transaction, session *domain.Session) error {
	pgxTx, err := unwrapTx(tx)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO user_sessions (id, user_id, session_token, ip_address, user_agent,
			is_active, login_at, last_activity_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = pgxTx.Exec(ctx, query,
		session.ID,
		session.UserID,
		session.Token,
		session.IPAddress,
		session.UserAgent,
		session.Active,
		session.LoginAt,
		session.LastActivityAt,
		session.ExpiresAt,
	)

	return err
}

// GetActiveByToken retrieves the session matching the token that is still
// active and unexpired at the given instant. One indexed lookup; this is
// on the hot path of every authenticated request.
func (r *SessionRepository) GetActiveByToken(ctx context.Context, token string, now time.Time) (*domain.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM user_sessions
		WHERE session_token = $1 AND is_active AND expires_at > $2
	`

	session, err := r.scanSession(r.pool.QueryRow(ctx, query, token, now))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}

	return session, err
}

// Deactivate closes the active session bound to the token, stamping its
// logout time. Expiry is not checked here: an expired session that was
// never logged out can still be closed explicitly.
func (r *SessionRepository) Deactivate(ctx context.Context, token string, at time.Time) error {
	query := `
		UPDATE user_sessions
		SET is_active = false, logout_at = $2
		WHERE session_token = $1 AND is_active
	`

	tag, err := r.pool.Exec(ctx, query, token, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}

	return nil
}

// TouchActivity records the last-activity time. Advisory only; callers
// treat failures as non-fatal and timestamps may land out of order under
// concurrent validations of the same token.
func (r *SessionRepository) TouchActivity(ctx context.Context, token string, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE user_sessions SET last_activity_at = $2 WHERE session_token = $1`,
		token, at,
	)
	return err
}

// ListByUser retrieves a user's sessions, most recent first.
func (r *SessionRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM user_sessions
		WHERE user_id = $1
		ORDER BY login_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*domain.Session
	for rows.Next() {
		session, err := r.scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}

	return sessions, rows.Err()
}

func (r *SessionRepository) scanSession(row pgx.Row) (*domain.Session, error) {
	var session domain.Session

	err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.Token,
		&session.IPAddress,
		&session.UserAgent,
		&session.Active,
		&session.LoginAt,
		&session.LastActivityAt,
		&session.ExpiresAt,
		&session.LogoutAt,
	)
	if err != nil {
		return nil, err
	}

	return &session, nil
}
