package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/sanad-org/sanad/internal/domain"
	"github.com/sanad-org/sanad/internal/infrastructure/metrics"
)

// User-facing outcome messages. Expected authentication failures are
// results, not errors; only storage faults get logged, and those are
// reported with the generic message so internals never leak to the UI.
const (
	msgLoginOK         = "login successful"
	msgUnknownUser     = "invalid username"
	msgBadPassword     = "incorrect password"
	msgLogoutOK        = "logged out successfully"
	msgSessionNotFound = "session not found"
	msgInternalError   = "an internal error occurred"
)

// LoginInput carries the credentials and origin metadata of a login call.
type LoginInput struct {
	Username  string
	Password  string
	IPAddress string
	UserAgent string
}

// LoginResult is the structured outcome of a login call. Reason is nil on
// success and one of the domain sentinel errors otherwise.
type LoginResult struct {
	Success  bool
	Token    string
	Identity *domain.Identity
	Message  string
	Reason   error
}

// LogoutResult is the structured outcome of a logout call.
type LogoutResult struct {
	Success bool
	Message string
	Reason  error
}

// AuthUseCase authenticates credentials, manages the session lifecycle
// and answers "who is this token" queries.
type AuthUseCase struct {
	txManager   TransactionManager
	userRepo    UserRepository
	sessionRepo SessionRepository
	idGen       IDGenerator
	tokenGen    TokenGenerator
	cache       SessionCache
	retrier     Retrier
	metrics     *metrics.Metrics
	logger      zerolog.Logger

	sessionTTL time.Duration
	cacheTTL   time.Duration
	now        func() time.Time
}

// AuthConfig holds the dependencies and tunables of the AuthUseCase.
// Cache, Retrier and Metrics are optional.
type AuthConfig struct {
	TxManager   TransactionManager
	UserRepo    UserRepository
	SessionRepo SessionRepository
	IDGen       IDGenerator
	TokenGen    TokenGenerator
	Cache       SessionCache
	Retrier     Retrier
	Metrics     *metrics.Metrics
	Logger      zerolog.Logger
	SessionTTL  time.Duration
	CacheTTL    time.Duration
}

// NewAuthUseCase creates a new auth use case.
func NewAuthUseCase(cfg AuthConfig) *AuthUseCase {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = domain.DefaultSessionTTL
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Minute
	}

	return &AuthUseCase{
		txManager:   cfg.TxManager,
		userRepo:    cfg.UserRepo,
		sessionRepo: cfg.SessionRepo,
		idGen:       cfg.IDGen,
		tokenGen:    cfg.TokenGen,
		cache:       cfg.Cache,
		retrier:     cfg.Retrier,
		metrics:     cfg.Metrics,
		logger:      cfg.Logger,
		sessionTTL:  cfg.SessionTTL,
		cacheTTL:    cfg.CacheTTL,
	}
}

// WithClock overrides the time source. Only intended for tests.
func (uc *AuthUseCase) WithClock(now func() time.Time) *AuthUseCase {
	uc.now = now
	return uc
}

func (uc *AuthUseCase) clock() time.Time {
	if uc.now != nil {
		return uc.now()
	}
	return time.Now().UTC()
}

// Login verifies credentials and, on success, opens a new session. The
// session insert and the last-login update commit in one transaction so a
// login never leaves half its side effects behind. Concurrent logins for
// the same user are independent; each gets its own session row.
func (uc *AuthUseCase) Login(ctx context.Context, input LoginInput) LoginResult {
	uc.countAttempt()

	user, err := uc.userRepo.GetByUsername(ctx, input.Username)
	if err != nil {
		return uc.loginStorageFailure(ctx, err, "look up user")
	}
	if user == nil {
		uc.countFailure("unknown_user")
		return LoginResult{Message: msgUnknownUser, Reason: domain.ErrUnknownUser}
	}

	if user.Status != domain.StatusActive {
		uc.countFailure(string(user.Status))
		return LoginResult{Message: user.Status.Message(), Reason: domain.ErrAccountNotActive}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		uc.countFailure("bad_password")
		return LoginResult{Message: msgBadPassword, Reason: domain.ErrInvalidCredential}
	}

	token, err := uc.tokenGen.Generate()
	if err != nil {
		return uc.loginStorageFailure(ctx, err, "generate session token")
	}

	now := uc.clock()
	session := &domain.Session{
		ID:             uc.idGen.Generate(),
		UserID:         user.ID,
		Token:          token,
		IPAddress:      input.IPAddress,
		UserAgent:      input.UserAgent,
		Active:         true,
		LoginAt:        now,
		LastActivityAt: now,
		ExpiresAt:      now.Add(uc.sessionTTL),
	}

	if err := uc.withRetry(ctx, func() error {
		return uc.createSessionTx(ctx, session, now)
	}); err != nil {
		return uc.loginStorageFailure(ctx, err, "persist session")
	}

	if uc.metrics != nil {
		uc.metrics.ActiveSessions.Inc()
	}

	return LoginResult{
		Success:  true,
		Token:    token,
		Identity: user.Redacted(),
		Message:  msgLoginOK,
	}
}

// createSessionTx writes the session row and the owner's last-login
// timestamp atomically.
func (uc *AuthUseCase) createSessionTx(ctx context.Context, session *domain.Session, now time.Time) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}

	if err := uc.sessionRepo.Create(ctx, tx, session); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := uc.userRepo.UpdateLastLogin(ctx, tx, session.UserID, now); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	return tx.Commit(ctx)
}

func (uc *AuthUseCase) withRetry(ctx context.Context, op func() error) error {
	if uc.retrier == nil {
		return op()
	}
	return uc.retrier.Retry(ctx, op)
}

func (uc *AuthUseCase) loginStorageFailure(ctx context.Context, err error, action string) LoginResult {
	uc.countFailure("storage")
	uc.logger.Error().Err(err).Str("action", action).Msg("login failed")
	return LoginResult{Message: msgInternalError, Reason: domain.ErrStorageFailure}
}

// Logout closes the active session bound to the token. The session row is
// kept, inactive, as an audit trail. Logging out an unknown or already
// closed session reports failure but is harmless to the caller.
func (uc *AuthUseCase) Logout(ctx context.Context, token string) LogoutResult {
	err := uc.sessionRepo.Deactivate(ctx, token, uc.clock())
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrSessionNotFound):
		return LogoutResult{Message: msgSessionNotFound, Reason: domain.ErrSessionNotFound}
	default:
		uc.logger.Error().Err(err).Msg("logout failed")
		return LogoutResult{Message: msgInternalError, Reason: domain.ErrStorageFailure}
	}

	uc.dropCached(ctx, token)

	if uc.metrics != nil {
		uc.metrics.ActiveSessions.Dec()
	}

	return LogoutResult{Success: true, Message: msgLogoutOK}
}

// ValidateSession resolves a token to the owning identity. It returns nil
// for every "not logged in" shape: unknown token, closed session, expired
// session, or a session whose owner no longer exists. It never returns an
// error; this runs on every authenticated request.
func (uc *AuthUseCase) ValidateSession(ctx context.Context, token string) *domain.Identity {
	if token == "" {
		return nil
	}

	if uc.cache != nil {
		if identity, err := uc.cache.Get(ctx, token); err == nil && identity != nil {
			uc.countValidation("cache_hit")
			return identity
		}
	}

	now := uc.clock()
	session, err := uc.sessionRepo.GetActiveByToken(ctx, token, now)
	if err != nil {
		uc.logger.Error().Err(err).Msg("session lookup failed")
		return nil
	}
	if session == nil {
		uc.countValidation("miss")
		return nil
	}

	// Advisory telemetry; a failed write must not block the request.
	if err := uc.sessionRepo.TouchActivity(ctx, token, now); err != nil {
		uc.logger.Warn().Err(err).Msg("failed to update session activity")
	}

	user, err := uc.userRepo.GetByID(ctx, session.UserID)
	if err != nil || user == nil {
		// Referential inconsistency: session without an owner.
		uc.countValidation("orphaned")
		return nil
	}

	identity := user.Redacted()
	uc.cacheIdentity(ctx, token, identity, session.ExpiresAt.Sub(now))
	uc.countValidation("hit")
	return identity
}

// ListUserSessions returns a user's login history, most recent first.
// Closed sessions are included; the rows double as an audit trail.
func (uc *AuthUseCase) ListUserSessions(ctx context.Context, userID string, limit, offset int) ([]*domain.Session, error) {
	limit, offset, _ = domain.ValidatePagination(limit, offset)

	if _, err := uc.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	return uc.sessionRepo.ListByUser(ctx, userID, limit, offset)
}

func (uc *AuthUseCase) cacheIdentity(ctx context.Context, token string, identity *domain.Identity, untilExpiry time.Duration) {
	if uc.cache == nil {
		return
	}
	ttl := uc.cacheTTL
	if untilExpiry > 0 && untilExpiry < ttl {
		ttl = untilExpiry
	}
	if err := uc.cache.Set(ctx, token, identity, ttl); err != nil {
		uc.logger.Warn().Err(err).Msg("failed to cache session")
	}
}

func (uc *AuthUseCase) dropCached(ctx context.Context, token string) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Delete(ctx, token); err != nil {
		uc.logger.Warn().Err(err).Msg("failed to invalidate cached session")
	}
}

func (uc *AuthUseCase) countAttempt() {
	if uc.metrics != nil {
		uc.metrics.AuthAttempts.Inc()
	}
}

func (uc *AuthUseCase) countFailure(reason string) {
	if uc.metrics != nil {
		uc.metrics.AuthFailures.WithLabelValues(reason).Inc()
	}
}

func (uc *AuthUseCase) countValidation(outcome string) {
	if uc.metrics != nil {
		uc.metrics.SessionValidations.WithLabelValues(outcome).Inc()
	}
}
