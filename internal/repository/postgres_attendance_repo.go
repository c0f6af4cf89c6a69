package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/datndc/timekeeper/internal/model"
)

// PostgresAttendanceRepo はPostgreSQLを使用した勤怠記録リポジトリ。
type PostgresAttendanceRepo struct {
	db *sql.DB
}

// NewPostgresAttendanceRepo はPostgresAttendanceRepoを生成する。
func NewPostgresAttendanceRepo(db *sql.DB) *PostgresAttendanceRepo {
	return &PostgresAttendanceRepo{db: db}
}

// ListByUserAndRange は指定ユーザーの [start, end) 区間の勤怠記録を日付昇順で返す。
// 件数上限は設けない（区間が1か月である限り最大31件に収まる）。
func (r *PostgresAttendanceRepo) ListByUserAndRange(ctx context.Context, userID int, start, end time.Time) ([]model.AttendanceRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id, work_date, check_in, check_out, COALESCE(status, ''), COALESCE(note, '')
		 FROM attendance
		 WHERE user_id = $1
		   AND work_date >= $2
		   AND work_date < $3
		 ORDER BY work_date ASC`,
		userID, start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance: %w", err)
	}
	defer rows.Close()

	var records []model.AttendanceRecord
	for rows.Next() {
		var rec model.AttendanceRecord
		var checkIn, checkOut sql.NullTime

		if err := rows.Scan(&rec.UserID, &rec.WorkDate, &checkIn, &checkOut, &rec.Status, &rec.Note); err != nil {
			return nil, fmt.Errorf("failed to scan attendance row: %w", err)
		}

		if checkIn.Valid {
			rec.CheckIn = &checkIn.Time
		}
		if checkOut.Valid {
			rec.CheckOut = &checkOut.Time
		}

		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendance rows: %w", err)
	}

	return records, nil
}

// compile-time interface check
var _ AttendanceRepository = (*PostgresAttendanceRepo)(nil)
