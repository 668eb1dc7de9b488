package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/sanad-org/sanad/internal/domain"
	"github.com/sanad-org/sanad/internal/usecase"
	"github.com/sanad-org/sanad/internal/usecase/mocks"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func hashOf(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return string(hash)
}

func activeUser(t *testing.T, password string) *domain.User {
	t.Helper()
	return &domain.User{
		ID:           "user-1",
		Username:     "amal",
		Email:        "amal@example.org",
		PasswordHash: hashOf(t, password),
		FullName:     "Amal Haddad",
		Role:         domain.RoleEmployee,
		Status:       domain.StatusActive,
		Department:   "relief",
	}
}

type authMocks struct {
	txManager   *mocks.MockTransactionManager
	tx          *mocks.MockTransaction
	userRepo    *mocks.MockUserRepository
	sessionRepo *mocks.MockSessionRepository
	idGen       *mocks.MockIDGenerator
	tokenGen    *mocks.MockTokenGenerator
	cache       *mocks.MockSessionCache
}

func newAuthUseCase(ctrl *gomock.Controller, withCache bool) (*usecase.AuthUseCase, authMocks) {
	m := authMocks{
		txManager:   mocks.NewMockTransactionManager(ctrl),
		tx:          mocks.NewMockTransaction(ctrl),
		userRepo:    mocks.NewMockUserRepository(ctrl),
		sessionRepo: mocks.NewMockSessionRepository(ctrl),
		idGen:       mocks.NewMockIDGenerator(ctrl),
		tokenGen:    mocks.NewMockTokenGenerator(ctrl),
	}

	cfg := usecase.AuthConfig{
		TxManager:   m.txManager,
		UserRepo:    m.userRepo,
		SessionRepo: m.sessionRepo,
		IDGen:       m.idGen,
		TokenGen:    m.tokenGen,
		Logger:      zerolog.Nop(),
		SessionTTL:  24 * time.Hour,
		CacheTTL:    time.Minute,
	}
	if withCache {
		m.cache = mocks.NewMockSessionCache(ctrl)
		cfg.Cache = m.cache
	}

	uc := usecase.NewAuthUseCase(cfg).WithClock(func() time.Time { return testNow })
	return uc, m
}

func TestAuthUseCase_Login_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	uc, m := newAuthUseCase(ctrl, false)

	user := activeUser(t, "Sanad2024ok")

	m.userRepo.EXPECT().GetByUsername(gomock.Any(), "amal").Return(user, nil)
	m.tokenGen.EXPECT().Generate().Return("tok-abc", nil)
	m.idGen.EXPECT().Generate().Return("sess-1")
	m.txManager.EXPECT().Begin(gomock.Any()).Return(m.tx, nil)

	var created *domain.Session
	m.sessionRepo.EXPECT().
		Create(gomock.Any(), m.tx, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ usecase.Transaction, s *domain.Session) error {
			created = s
			return nil
		})
	m.userRepo.EXPECT().UpdateLastLogin(gomock.Any(), m.tx, "user-1", testNow).Return(nil)
	m.tx.EXPECT().Commit(gomock.Any()).Return(nil)

	result := uc.Login(context.Background(), usecase.LoginInput{
		Username:  "amal",
		Password:  "Sanad2024ok",
		IPAddress: "10.0.0.1",
		UserAgent: "cli",
	})

	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if result.Token != "tok-abc" {
		t.Errorf("unexpected token: %q", result.Token)
	}
	if result.Message != "login successful" {
		t.Errorf("unexpected message: %q", result.Message)
	}
	if result.Identity == nil || result.Identity.ID != "user-1" {
		t.Errorf("unexpected identity: %+v", result.Identity)
	}

	if created == nil {
		t.Fatal("no session persisted")
	}
	if created.ID != "sess-1" || created.Token != "tok-abc" || created.UserID != "user-1" {
		t.Errorf("unexpected session: %+v", created)
	}
	if !created.Active {
		t.Error("session should start active")
	}
	if created.IPAddress != "10.0.0.1" || created.UserAgent != "cli" {
		t.Errorf("origin metadata lost: %+v", created)
	}
	if !created.ExpiresAt.Equal(testNow.Add(24 * time.Hour)) {
		t.Errorf("unexpected expiry: %v", created.ExpiresAt)
	}
}

func TestAuthUseCase_Login_UnknownUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	uc, m := newAuthUseCase(ctrl, false)

	m.userRepo.EXPECT().GetByUsername(gomock.Any(), "ghost").Return(nil, nil)

	result := uc.Login(context.Background(), usecase.LoginInput{Username: "ghost", Password: "x"})

	if result.Success {
		t.Fatal("expected failure")
	}
	if result.Message != "invalid username" {
		t.Errorf("unexpected message: %q", result.Message)
	}
	if !errors.Is(result.Reason, domain.ErrUnknownUser) {
		t.Errorf("unexpected reason: %v", result.Reason)
	}
	if result.Token != "" {
		t.Error("failed login must not issue a token")
	}
}

func TestAuthUseCase_Login_InactiveStatuses(t *testing.T) {
	tests := []struct {
		status  domain.Status
		message string
	}{
		{domain.StatusInactive, "account is inactive"},
		{domain.StatusSuspended, "account is suspended"},
		{domain.StatusPending, "account is pending approval"},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			ctrl := gomock.NewController(t)
			uc, m := newAuthUseCase(ctrl, false)

			user := activeUser(t, "Sanad2024ok")
			user.Status = tt.status
			m.userRepo.EXPECT().GetByUsername(gomock.Any(), "amal").Return(user, nil)

			// The status gate fires before the password compare, so even
			// the correct password must not open a session.
			result := uc.Login(context.Background(), usecase.LoginInput{
				Username: "amal",
				Password: "Sanad2024ok",
			})

			if result.Success {
				t.Fatal("expected failure")
			}
			if result.Message != tt.message {
				t.Errorf("message = %q, want %q", result.Message, tt.message)
			}
			if !errors.Is(result.Reason, domain.ErrAccountNotActive) {
				t.Errorf("unexpected reason: %v", result.Reason)
			}
		})
	}
}

func TestAuthUseCase_Login_BadPassword(t *testing.T) {
	ctrl := gomock.NewController(t)
	uc, m := newAuthUseCase(ctrl, false)

	m.userRepo.EXPECT().GetByUsername(gomock.Any(), "amal").Return(activeUser(t, "Sanad2024ok"), nil)

	result := uc.Login(context.Background(), usecase.LoginInput{Username: "amal", Password: "wrong"})

	if result.Success {
		t.Fatal("expected failure")
	}
	if result.Message != "incorrect password" {
		t.Errorf("unexpected message: %q", result.Message)
	}
	if !errors.Is(result.Reason, domain.ErrInvalidCredential) {
		t.Errorf("unexpected reason: %v", result.Reason)
	}
}

func TestAuthUseCase_Login_StorageFailureIsGeneric(t *testing.T) {
	ctrl := gomock.NewController(t)
	uc, m := newAuthUseCase(ctrl, false)

	m.userRepo.EXPECT().GetByUsername(gomock.Any(), "amal").Return(nil, errors.New("connection refused"))

	result := uc.Login(context.Background(), usecase.LoginInput{Username: "amal", Password: "x"})

	if result.Success {
		t.Fatal("expected failure")
	}
	if result.Message != "an internal error occurred" {
		t.Errorf("storage detail leaked: %q", result.Message)
	}
	if !errors.Is(result.Reason, domain.ErrStorageFailure) {
		t.Errorf("unexpected reason: %v", result.Reason)
	}
}

func TestAuthUseCase_Login_SessionInsertRollsBack(t *testing.T) {
	ctrl := gomock.NewController(t)
	uc, m := newAuthUseCase(ctrl, false)

	m.userRepo.EXPECT().GetByUsername(gomock.Any(), "amal").Return(activeUser(t, "Sanad2024ok"), nil)
	m.tokenGen.EXPECT().Generate().Return("tok-abc", nil)
	m.idGen.EXPECT().Generate().Return("sess-1")
	m.txManager.EXPECT().Begin(gomock.Any()).Return(m.tx, nil)
	m.sessionRepo.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).Return(errors.New("insert failed"))
	m.tx.EXPECT().Rollback(gomock.Any()).Return(nil)

	result := uc.Login(context.Background(), usecase.LoginInput{Username: "amal", Password: "Sanad2024ok"})

	if result.Success {
		t.Fatal("expected failure")
	}
	if !errors.Is(result.Reason, domain.ErrStorageFailure) {
		t.Errorf("unexpected reason: %v", result.Reason)
	}
}

func TestAuthUseCase_Login_LastLoginUpdateRollsBack(t *testing.T) {
	ctrl := gomock.NewController(t)
	uc, m := newAuthUseCase(ctrl, false)

	m.userRepo.EXPECT().GetByUsername(gomock.Any(), "amal").Return(activeUser(t, "Sanad2024ok"), nil)
	m.tokenGen.EXPECT().Generate().Return("tok-abc", nil)
	m.idGen.EXPECT().Generate().Return("sess-1")
	m.txManager.EXPECT().Begin(gomock.Any()).Return(m.tx, nil)
	m.sessionRepo.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).Return(nil)
	m.userRepo.EXPECT().UpdateLastLogin(gomock.Any(), m.tx, "user-1", testNow).Return(errors.New("update failed"))
	m.tx.EXPECT().Rollback(gomock.Any()).Return(nil)

	result := uc.Login(context.Background(), usecase.LoginInput{Username: "amal", Password: "Sanad2024ok"})

	if result.Success {
		t.Fatal("session insert and last-login update must commit together")
	}
}

func TestAuthUseCase_Logout(t *testing.T) {
	ctrl := gomock.NewController(t)
	uc, m := newAuthUseCase(ctrl, false)

	m.sessionRepo.EXPECT().Deactivate(gomock.Any(), "tok-abc", testNow).Return(nil)

	result := uc.Logout(context.Background(), "tok-abc")

	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if result.Message != "logged out successfully" {
		t.Errorf("unexpected message: %q", result.Message)
	}
}

func TestAuthUseCase_Logout_UnknownSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	uc, m := newAuthUseCase(ctrl, false)

	m.sessionRepo.EXPECT().Deactivate(gomock.Any(), "tok-gone", testNow).Return(domain.ErrSessionNotFound)

	result := uc.Logout(context.Background(), "tok-gone")

	if result.Success {
		t.Fatal("expected failure")
	}
	if result.Message != "session not found" {
		t.Errorf("unexpected message: %q", result.Message)
	}
	if !errors.Is(result.Reason, domain.ErrSessionNotFound) {
		t.Errorf("unexpected reason: %v", result.Reason)
	}
}

func TestAuthUseCase_Logout_DropsCachedSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	uc, m := newAuthUseCase(ctrl, true)

	m.sessionRepo.EXPECT().Deactivate(gomock.Any(), "tok-abc", testNow).Return(nil)
	m.cache.EXPECT().Delete(gomock.Any(), "tok-abc").Return(nil)

	result := uc.Logout(context.Background(), "tok-abc")
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
}

func TestAuthUseCase_ValidateSession_EmptyToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	uc, _ := newAuthUseCase(ctrl, false)

	if identity := uc.ValidateSession(context.Background(), ""); identity != nil {
		t.Errorf("empty token should resolve to nil, got %+v", identity)
	}
}

func TestAuthUseCase_ValidateSession_UnknownToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	uc, m := newAuthUseCase(ctrl, false)

	m.sessionRepo.EXPECT().GetActiveByToken(gomock.Any(), "tok-gone", testNow).Return(nil, nil)

	if identity := uc.ValidateSession(context.Background(), "tok-gone"); identity != nil {
		t.Errorf("unknown token should resolve to nil, got %+v", identity)
	}
}

func TestAuthUseCase_ValidateSession_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	uc, m := newAuthUseCase(ctrl, false)

	session := &domain.Session{
		ID:        "sess-1",
		UserID:    "user-1",
		Token:     "tok-abc",
		Active:    true,
		ExpiresAt: testNow.Add(time.Hour),
	}
	user := activeUser(t, "Sanad2024ok")

	m.sessionRepo.EXPECT().GetActiveByToken(gomock.Any(), "tok-abc", testNow).Return(session, nil)
	m.sessionRepo.EXPECT().TouchActivity(gomock.Any(), "tok-abc", testNow).Return(nil)
	m.userRepo.EXPECT().GetByID(gomock.Any(), "user-1").Return(user, nil)

	identity := uc.ValidateSession(context.Background(), "tok-abc")

	if identity == nil {
		t.Fatal("expected identity")
	}
	if identity.ID != "user-1" || identity.Role != domain.RoleEmployee {
		t.Errorf("unexpected identity: %+v", identity)
	}
}

func TestAuthUseCase_ValidateSession_ActivityWriteFailureTolerated(t *testing.T) {
	ctrl := gomock.NewController(t)
	uc, m := newAuthUseCase(ctrl, false)

	session := &domain.Session{UserID: "user-1", Token: "tok-abc", Active: true, ExpiresAt: testNow.Add(time.Hour)}

	m.sessionRepo.EXPECT().GetActiveByToken(gomock.Any(), "tok-abc", testNow).Return(session, nil)
	m.sessionRepo.EXPECT().TouchActivity(gomock.Any(), "tok-abc", testNow).Return(errors.New("write failed"))
	m.userRepo.EXPECT().GetByID(gomock.Any(), "user-1").Return(activeUser(t, "Sanad2024ok"), nil)

	if identity := uc.ValidateSession(context.Background(), "tok-abc"); identity == nil {
		t.Error("activity telemetry failure must not invalidate the session")
	}
}

func TestAuthUseCase_ValidateSession_OrphanedSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	uc, m := newAuthUseCase(ctrl, false)

	session := &domain.Session{UserID: "user-gone", Token: "tok-abc", Active: true, ExpiresAt: testNow.Add(time.Hour)}

	m.sessionRepo.EXPECT().GetActiveByToken(gomock.Any(), "tok-abc", testNow).Return(session, nil)
	m.sessionRepo.EXPECT().TouchActivity(gomock.Any(), "tok-abc", testNow).Return(nil)
	m.userRepo.EXPECT().GetByID(gomock.Any(), "user-gone").Return(nil, domain.ErrUserNotFound)

	if identity := uc.ValidateSession(context.Background(), "tok-abc"); identity != nil {
		t.Errorf("session without an owner should resolve to nil, got %+v", identity)
	}
}

func TestAuthUseCase_ValidateSession_CacheHitSkipsStore(t *testing.T) {
	ctrl := gomock.NewController(t)
	uc, m := newAuthUseCase(ctrl, true)

	cached := &domain.Identity{ID: "user-1", Username: "amal", Role: domain.RoleEmployee}
	m.cache.EXPECT().Get(gomock.Any(), "tok-abc").Return(cached, nil)

	identity := uc.ValidateSession(context.Background(), "tok-abc")

	if identity != cached {
		t.Errorf("expected cached identity, got %+v", identity)
	}
}

func TestAuthUseCase_ValidateSession_CachesWithBoundedTTL(t *testing.T) {
	ctrl := gomock.NewController(t)
	uc, m := newAuthUseCase(ctrl, true)

	// Session expires before the configured cache TTL; the cached entry
	// must not outlive the session.
	session := &domain.Session{UserID: "user-1", Token: "tok-abc", Active: true, ExpiresAt: testNow.Add(10 * time.Second)}

	m.cache.EXPECT().Get(gomock.Any(), "tok-abc").Return(nil, nil)
	m.sessionRepo.EXPECT().GetActiveByToken(gomock.Any(), "tok-abc", testNow).Return(session, nil)
	m.sessionRepo.EXPECT().TouchActivity(gomock.Any(), "tok-abc", testNow).Return(nil)
	m.userRepo.EXPECT().GetByID(gomock.Any(), "user-1").Return(activeUser(t, "Sanad2024ok"), nil)
	m.cache.EXPECT().Set(gomock.Any(), "tok-abc", gomock.Any(), 10*time.Second).Return(nil)

	if identity := uc.ValidateSession(context.Background(), "tok-abc"); identity == nil {
		t.Fatal("expected identity")
	}
}

func TestAuthUseCase_ListUserSessions(t *testing.T) {
	ctrl := gomock.NewController(t)
	uc, m := newAuthUseCase(ctrl, false)

	user := activeUser(t, "Sanad2024ok")
	sessions := []*domain.Session{
		{ID: "sess-2", UserID: "user-1", Active: true},
		{ID: "sess-1", UserID: "user-1", Active: false},
	}

	m.userRepo.EXPECT().GetByID(gomock.Any(), "user-1").Return(user, nil)
	m.sessionRepo.EXPECT().ListByUser(gomock.Any(), "user-1", 50, 0).Return(sessions, nil)

	got, err := uc.ListUserSessions(context.Background(), "user-1", 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "sess-2" {
		t.Fatalf("unexpected sessions: %+v", got)
	}
}

func TestAuthUseCase_ListUserSessions_UnknownUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	uc, m := newAuthUseCase(ctrl, false)

	m.userRepo.EXPECT().GetByID(gomock.Any(), "ghost").Return(nil, domain.ErrUserNotFound)

	if _, err := uc.ListUserSessions(context.Background(), "ghost", 20, 0); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
