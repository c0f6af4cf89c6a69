// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/datndc/timekeeper/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByUsername は指定ユーザー名のユーザーを取得する。見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.User, error)

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int) (*model.User, error)

	// ListEmployees は全従業員のサマリーをID昇順で返す。
	ListEmployees(ctx context.Context) ([]model.EmployeeSummary, error)

	// RecordFailedLogin はログイン失敗回数とロック期限を更新する。
	RecordFailedLogin(ctx context.Context, id int, attempts int, lockedUntil *time.Time) error

	// ResetLoginState はログイン成功時に失敗回数とロック期限をリセットする。
	ResetLoginState(ctx context.Context, id int) error
}

// SessionRepository はサーバーサイドセッションの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
}

// AttendanceRepository は勤怠記録の読み取りインターフェース。
// このコアは読み取り専用であり、書き込み系は別経路が担う。
type AttendanceRepository interface {
	// ListByUserAndRange は指定ユーザーの [start, end) 区間の勤怠記録を
	// 日付昇順で返す。
	ListByUserAndRange(ctx context.Context, userID int, start, end time.Time) ([]model.AttendanceRecord, error)
}
