// Package model はドメインモデルを定義する。
package model

import "time"

// Role はユーザーの権限区分を表す。
type Role string

const (
	// RoleAdmin は管理者。全ユーザーの勤怠を参照できる。
	RoleAdmin Role = "admin"
	// RoleUser は一般ユーザー。自分自身の勤怠のみ参照できる。
	RoleUser Role = "user"
)

// User は従業員アカウントを表す。
// PasswordHashはbcryptハッシュであり、レスポンスには一切含めない。
type User struct {
	ID             int
	Username       string
	PasswordHash   string
	Role           Role
	Fullname       string
	Location       string
	FailedAttempts int
	LockedUntil    *time.Time
}

// Principal は認証済みリクエスト主体を表す。
// リクエストごとに解決され、リクエスト間でキャッシュしない。
// パスワードやトークン素材は保持しない。
type Principal struct {
	ID       int
	Username string
	Role     Role
}

// IsAdmin は管理者権限を持つかどうかを返す。
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// Session はサーバーサイドセッションを表す。
// highセキュリティモードの信頼ソースとなる。
type Session struct {
	ID        string
	Username  string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// EmployeeSummary は従業員一覧用の読み取り専用プロジェクション。
type EmployeeSummary struct {
	ID       int
	Username string
	Fullname string
}
