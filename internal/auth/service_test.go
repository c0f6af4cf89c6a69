package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/datndc/timekeeper/internal/model"
)

// --- モック定義 ---

type mockUserRepo struct {
	user *model.User

	recordedAttempts    int
	recordedLockedUntil *time.Time
	resetCalled         bool
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	if m.user != nil && m.user.Username == username {
		u := *m.user
		return &u, nil
	}
	return nil, nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id int) (*model.User, error) {
	return nil, nil
}

func (m *mockUserRepo) ListEmployees(ctx context.Context) ([]model.EmployeeSummary, error) {
	return nil, nil
}

func (m *mockUserRepo) RecordFailedLogin(ctx context.Context, id int, attempts int, lockedUntil *time.Time) error {
	m.recordedAttempts = attempts
	m.recordedLockedUntil = lockedUntil
	return nil
}

func (m *mockUserRepo) ResetLoginState(ctx context.Context, id int) error {
	m.resetCalled = true
	return nil
}

type mockSessionRepo struct {
	created *model.Session
	deleted string
}

func (m *mockSessionRepo) Create(ctx context.Context, session *model.Session) error {
	m.created = session
	return nil
}

func (m *mockSessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	return nil, nil
}

func (m *mockSessionRepo) DeleteByID(ctx context.Context, id string) error {
	m.deleted = id
	return nil
}

func testConfig() ServiceConfig {
	return ServiceConfig{
		SessionMaxAge:    86400,
		MaxLoginAttempts: 5,
		LockDuration:     10 * time.Minute,
	}
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	return string(hash)
}

func assertUnauthenticated(t *testing.T, err error) {
	t.Helper()
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *model.APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeUnauthenticated {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeUnauthenticated)
	}
}

// --- Login ---

// 正しいパスワードでログインできることを検証する。
func TestLogin_CorrectPassword_Succeeds(t *testing.T) {
	users := &mockUserRepo{
		user: &model.User{
			ID:           1,
			Username:     "datndc1",
			PasswordHash: hashPassword(t, "sample123"),
			Role:         model.RoleAdmin,
		},
	}
	svc := NewService(users, &mockSessionRepo{}, testConfig())

	u, err := svc.Login(context.Background(), "datndc1", "sample123")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if u.ID != 1 || u.Role != model.RoleAdmin {
		t.Errorf("user = %+v, want id=1 role=admin", u)
	}
}

// 存在しないユーザーはUNAUTHENTICATEDになることを検証する。
func TestLogin_UnknownUser_Unauthenticated(t *testing.T) {
	svc := NewService(&mockUserRepo{}, &mockSessionRepo{}, testConfig())

	_, err := svc.Login(context.Background(), "ghost", "whatever")
	assertUnauthenticated(t, err)
}

// パスワード不一致で失敗回数が記録されることを検証する。
func TestLogin_WrongPassword_RecordsFailedAttempt(t *testing.T) {
	users := &mockUserRepo{
		user: &model.User{
			ID:           2,
			Username:     "user1",
			PasswordHash: hashPassword(t, "sample123"),
			Role:         model.RoleUser,
		},
	}
	svc := NewService(users, &mockSessionRepo{}, testConfig())

	_, err := svc.Login(context.Background(), "user1", "wrong")
	assertUnauthenticated(t, err)

	if users.recordedAttempts != 1 {
		t.Errorf("recorded attempts = %d, want 1", users.recordedAttempts)
	}
	if users.recordedLockedUntil != nil {
		t.Error("expected no lock on first failure")
	}
}

// 失敗回数が上限に達するとロック期限が設定されることを検証する。
func TestLogin_MaxAttempts_LocksAccount(t *testing.T) {
	users := &mockUserRepo{
		user: &model.User{
			ID:             2,
			Username:       "user1",
			PasswordHash:   hashPassword(t, "sample123"),
			Role:           model.RoleUser,
			FailedAttempts: 4,
		},
	}
	svc := NewService(users, &mockSessionRepo{}, testConfig())

	_, err := svc.Login(context.Background(), "user1", "wrong")
	assertUnauthenticated(t, err)

	if users.recordedAttempts != 5 {
		t.Errorf("recorded attempts = %d, want 5", users.recordedAttempts)
	}
	if users.recordedLockedUntil == nil {
		t.Fatal("expected lock to be set")
	}
	if !users.recordedLockedUntil.After(time.Now()) {
		t.Error("lock expiry should be in the future")
	}
}

// ロック中のアカウントは正しいパスワードでも拒否されることを検証する。
func TestLogin_LockedAccount_Rejected(t *testing.T) {
	lockedUntil := time.Now().Add(5 * time.Minute)
	users := &mockUserRepo{
		user: &model.User{
			ID:             2,
			Username:       "user1",
			PasswordHash:   hashPassword(t, "sample123"),
			Role:           model.RoleUser,
			FailedAttempts: 5,
			LockedUntil:    &lockedUntil,
		},
	}
	svc := NewService(users, &mockSessionRepo{}, testConfig())

	_, err := svc.Login(context.Background(), "user1", "sample123")
	assertUnauthenticated(t, err)
}

// ログイン成功時に失敗カウンタがリセットされることを検証する。
func TestLogin_Success_ResetsFailedAttempts(t *testing.T) {
	users := &mockUserRepo{
		user: &model.User{
			ID:             2,
			Username:       "user1",
			PasswordHash:   hashPassword(t, "sample123"),
			Role:           model.RoleUser,
			FailedAttempts: 3,
		},
	}
	svc := NewService(users, &mockSessionRepo{}, testConfig())

	if _, err := svc.Login(context.Background(), "user1", "sample123"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !users.resetCalled {
		t.Error("expected login state to be reset")
	}
}

// --- CreateSession / Logout ---

// セッション発行でID・ユーザー名・期限が設定されることを検証する。
func TestCreateSession_SetsFields(t *testing.T) {
	sessions := &mockSessionRepo{}
	svc := NewService(&mockUserRepo{}, sessions, testConfig())

	session, err := svc.CreateSession(context.Background(), "datndc1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(session.ID) != 64 {
		t.Errorf("session ID length = %d, want 64 hex chars", len(session.ID))
	}
	if session.Username != "datndc1" {
		t.Errorf("session.Username = %q, want %q", session.Username, "datndc1")
	}
	if !session.ExpiresAt.After(time.Now()) {
		t.Error("session expiry should be in the future")
	}
	if sessions.created == nil {
		t.Fatal("expected session to be persisted")
	}
}

// 発行されるセッションIDが毎回異なることを検証する。
func TestCreateSession_IDsAreUnique(t *testing.T) {
	svc := NewService(&mockUserRepo{}, &mockSessionRepo{}, testConfig())

	s1, err := svc.CreateSession(context.Background(), "user1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	s2, err := svc.CreateSession(context.Background(), "user1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if s1.ID == s2.ID {
		t.Error("expected unique session IDs")
	}
}

// Logoutがセッションを削除することを検証する。
func TestLogout_DeletesSession(t *testing.T) {
	sessions := &mockSessionRepo{}
	svc := NewService(&mockUserRepo{}, sessions, testConfig())

	if err := svc.Logout(context.Background(), "sess-1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if sessions.deleted != "sess-1" {
		t.Errorf("deleted = %q, want %q", sessions.deleted, "sess-1")
	}
}

// 空セッションIDのLogoutは何もしないことを検証する。
func TestLogout_EmptySessionID_NoOp(t *testing.T) {
	sessions := &mockSessionRepo{}
	svc := NewService(&mockUserRepo{}, sessions, testConfig())

	if err := svc.Logout(context.Background(), ""); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if sessions.deleted != "" {
		t.Error("expected no deletion for empty session ID")
	}
}
