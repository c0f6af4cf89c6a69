package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/datndc/timekeeper/internal/identity"
	"github.com/datndc/timekeeper/internal/metrics"
	"github.com/datndc/timekeeper/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// 身元解決
	Resolver    IdentityResolver
	DefaultMode identity.Mode

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// 勤怠
	AttendanceService AttendanceServiceInterface

	// ユーザー
	UserService UserServiceInterface

	// 監視
	Metrics  *metrics.Collector
	Gatherer prometheus.Gatherer
	DBPinger Pinger
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → Recovery → SecurityHeaders → CORS → Logging → Metrics
//
// レート制限はAPIルートグループにのみ適用する。/health と /metrics は
// レート制限の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	if deps.Metrics != nil {
		r.Use(metrics.Middleware(deps.Metrics))
	}

	var loginMetrics LoginMetrics
	var attendanceMetrics AttendanceMetrics
	if deps.Metrics != nil {
		loginMetrics = deps.Metrics
		attendanceMetrics = deps.Metrics
	}

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig, loginMetrics)
	attendanceHandler := NewAttendanceHandler(deps.Resolver, deps.AttendanceService, attendanceMetrics)
	userHandler := NewUserHandler(deps.Resolver, deps.UserService, deps.DefaultMode)
	healthHandler := NewHealthHandler(deps.DBPinger)

	// --- 運用エンドポイント（レート制限の外） ---
	r.Get("/health", healthHandler.Check)
	if deps.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.Gatherer))
	}

	// --- APIルート ---
	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// POST /api/login - ブルートフォース対策の専用レート制限を追加
		r.With(deps.RateLimiter.LoginMiddleware()).Post("/api/login", authHandler.Login)
		r.Post("/api/logout", authHandler.Logout)

		// 勤怠照会
		r.Get("/api/attendance", attendanceHandler.ListMonth)

		// ユーザー参照
		r.Get("/api/users/me", userHandler.Me)
		r.Get("/api/employees", userHandler.ListEmployees)
	})

	return r
}
