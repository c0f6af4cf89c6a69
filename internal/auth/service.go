// Package auth はログイン認証とセッション発行を提供する。
// ここで発行されたCookie/セッションをidentityパッケージのResolverが消費する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/datndc/timekeeper/internal/model"
	"github.com/datndc/timekeeper/internal/repository"
)

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge    int           // セッション有効期間（秒）
	MaxLoginAttempts int           // ロックまでのログイン失敗回数
	LockDuration     time.Duration // アカウントロック期間
}

// Service はログイン認証のビジネスロジックを提供する。
type Service struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	config   ServiceConfig
}

// NewService はServiceを生成する。
func NewService(users repository.UserRepository, sessions repository.SessionRepository, config ServiceConfig) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		config:   config,
	}
}

// Login はユーザー名とパスワードを検証し、認証されたユーザーを返す。
// 失敗回数がMaxLoginAttemptsに達するとLockDurationの間アカウントをロックする。
// 存在しないユーザー・パスワード不一致・ロック中はいずれもUNAUTHENTICATEDを返し、
// どの条件で失敗したかを呼び出し元に区別させない。
func (s *Service) Login(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, model.NewStoreError(err)
	}
	if user == nil {
		return nil, model.NewUnauthenticatedError("Invalid username or password")
	}

	if user.LockedUntil != nil && user.LockedUntil.After(time.Now()) {
		slog.Warn("login rejected: account locked",
			slog.String("username", username),
		)
		return nil, model.NewUnauthenticatedError("Invalid username or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		attempts := user.FailedAttempts + 1
		var lockedUntil *time.Time
		if attempts >= s.config.MaxLoginAttempts {
			t := time.Now().Add(s.config.LockDuration)
			lockedUntil = &t
		}

		if recErr := s.users.RecordFailedLogin(ctx, user.ID, attempts, lockedUntil); recErr != nil {
			slog.Error("failed to record failed login",
				slog.String("username", username),
				slog.String("error", recErr.Error()),
			)
		}

		return nil, model.NewUnauthenticatedError("Invalid username or password")
	}

	if user.FailedAttempts > 0 || user.LockedUntil != nil {
		if err := s.users.ResetLoginState(ctx, user.ID); err != nil {
			slog.Error("failed to reset login state",
				slog.String("username", username),
				slog.String("error", err.Error()),
			)
		}
	}

	slog.Info("user logged in", slog.String("username", username))
	return user, nil
}

// CreateSession は認証済みユーザーのサーバーサイドセッションを発行する。
// highモードのsession_id Cookieの値として使う。
func (s *Service) CreateSession(ctx context.Context, username string) (*model.Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	session := &model.Session{
		ID:        sessionID,
		Username:  username,
		ExpiresAt: time.Now().Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt: time.Now(),
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, model.NewStoreError(err)
	}

	return session, nil
}

// Logout はセッションを破棄する。
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	if err := s.sessions.DeleteByID(ctx, sessionID); err != nil {
		return model.NewStoreError(err)
	}

	slog.Info("user logged out", slog.String("session_id", sessionID))
	return nil
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
