package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/datndc/timekeeper/internal/identity"
	"github.com/datndc/timekeeper/internal/metrics"
	"github.com/datndc/timekeeper/internal/model"
)

const (
	sessionCookieName     = "session_id"
	currentUserCookieName = "current_user"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Login(ctx context.Context, username, password string) (*model.User, error)
	CreateSession(ctx context.Context, username string) (*model.Session, error)
	Logout(ctx context.Context, sessionID string) error
}

// LoginMetrics はログイン試行の結果を記録する。
type LoginMetrics interface {
	RecordLogin(result string)
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	DefaultMode   identity.Mode
	CookieDomain  string
	CookieSecure  bool
	SessionMaxAge int // セッションCookieの有効期間（秒）
}

// AuthHandler はログイン・ログアウトのHTTPハンドラー。
// 有効なセキュリティモードに応じてクレデンシャルの発行先を切り替える:
// lowモードは平文のcurrent_user Cookie、highモードはサーバーサイドセッション。
type AuthHandler struct {
	service AuthServiceInterface
	config  AuthHandlerConfig
	metrics LoginMetrics
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, config AuthHandlerConfig, loginMetrics LoginMetrics) *AuthHandler {
	return &AuthHandler{
		service: service,
		config:  config,
		metrics: loginMetrics,
	}
}

// loginRequest はログインリクエストボディ。
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login はユーザー名とパスワードを検証し、モードに応じたクレデンシャルを発行する。
// POST /api/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body", "")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeErrorResponse(w, http.StatusBadRequest, "Missing username or password", "")
		return
	}

	user, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.recordLogin(metrics.LoginResultFailure)
		handleServiceError(w, err)
		return
	}

	mode := identity.ModeFromRequest(r, h.config.DefaultMode)

	switch mode {
	case identity.ModeHigh:
		session, err := h.service.CreateSession(r.Context(), user.Username)
		if err != nil {
			h.recordLogin(metrics.LoginResultFailure)
			handleServiceError(w, err)
			return
		}
		h.setSessionCookie(w, session.ID)
	default:
		// lowモード: 平文Cookieによる自己申告の身元。
		// フロントエンドが参照するためHttpOnlyにはしない。
		http.SetCookie(w, &http.Cookie{
			Name:     currentUserCookieName,
			Value:    user.Username,
			Path:     "/",
			Domain:   h.config.CookieDomain,
			MaxAge:   h.config.SessionMaxAge,
			HttpOnly: false,
			Secure:   h.config.CookieSecure,
			SameSite: http.SameSiteLaxMode,
		})
	}

	h.recordLogin(metrics.LoginResultSuccess)
	slog.Info("login succeeded",
		slog.String("username", user.Username),
		slog.String("security_level", string(mode)),
	)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Login successful",
		"user": userResponse{
			ID:       user.ID,
			Username: user.Username,
			Role:     string(user.Role),
			Location: user.Location,
		},
		"security_level": string(mode),
	})
}

// Logout はセッションを破棄し、両モードのクレデンシャルCookieをクリアする。
// POST /api/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		if logoutErr := h.service.Logout(r.Context(), cookie.Value); logoutErr != nil {
			slog.Error("failed to logout", slog.String("error", logoutErr.Error()))
			// ログアウト失敗してもCookieはクリアする
		}
	}

	h.clearCookie(w, sessionCookieName, true)
	h.clearCookie(w, currentUserCookieName, false)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Logged out",
	})
}

// setSessionCookie はセッションCookieを設定する（HTTP Only）。
func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sessionID,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   h.config.SessionMaxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearCookie は指定Cookieを失効させる。
func (h *AuthHandler) clearCookie(w http.ResponseWriter, name string, httpOnly bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: httpOnly,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) recordLogin(result string) {
	if h.metrics != nil {
		h.metrics.RecordLogin(result)
	}
}
