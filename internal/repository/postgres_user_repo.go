package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/datndc/timekeeper/internal/model"
)

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

// FindByUsername は指定ユーザー名のユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.findOne(ctx,
		`SELECT id, username, password, role, fullname, COALESCE(location, ''), failed_attempts, locked_until
		 FROM users WHERE username = $1`,
		username,
	)
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id int) (*model.User, error) {
	return r.findOne(ctx,
		`SELECT id, username, password, role, fullname, COALESCE(location, ''), failed_attempts, locked_until
		 FROM users WHERE id = $1`,
		id,
	)
}

func (r *PostgresUserRepo) findOne(ctx context.Context, query string, arg interface{}) (*model.User, error) {
	user := &model.User{}
	var lockedUntil sql.NullTime

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.Role,
		&user.Fullname, &user.Location, &user.FailedAttempts, &lockedUntil,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if lockedUntil.Valid {
		user.LockedUntil = &lockedUntil.Time
	}

	return user, nil
}

// ListEmployees は全従業員のサマリーをID昇順で返す。
func (r *PostgresUserRepo) ListEmployees(ctx context.Context) ([]model.EmployeeSummary, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, username, fullname FROM users ORDER BY id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []model.EmployeeSummary
	for rows.Next() {
		var e model.EmployeeSummary
		if err := rows.Scan(&e.ID, &e.Username, &e.Fullname); err != nil {
			return nil, fmt.Errorf("failed to scan employee row: %w", err)
		}
		employees = append(employees, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employee rows: %w", err)
	}

	return employees, nil
}

// RecordFailedLogin はログイン失敗回数とロック期限を更新する。
func (r *PostgresUserRepo) RecordFailedLogin(ctx context.Context, id int, attempts int, lockedUntil *time.Time) error {
	var locked sql.NullTime
	if lockedUntil != nil {
		locked = sql.NullTime{Time: *lockedUntil, Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET failed_attempts = $2, locked_until = $3 WHERE id = $1`,
		id, attempts, locked,
	)
	if err != nil {
		return fmt.Errorf("failed to record failed login: %w", err)
	}
	return nil
}

// ResetLoginState はログイン成功時に失敗回数とロック期限をリセットする。
func (r *PostgresUserRepo) ResetLoginState(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET failed_attempts = 0, locked_until = NULL WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to reset login state: %w", err)
	}
	return nil
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
