// Package attendance は勤怠記録の認可付き月次照会を提供する。
package attendance

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/datndc/timekeeper/internal/model"
	"github.com/datndc/timekeeper/internal/repository"
)

// monthPattern は照会月の入力形式 "YYYY-MM"。
var monthPattern = regexp.MustCompile(`^(\d{4})-(0[1-9]|1[0-2])$`)

// ParseMonth は"YYYY-MM"形式の入力から月の半開区間 [Start, End) を計算する。
// EndはStartの翌月1日であり、年またぎ・月の長さ・うるう年を問わず正しい。
// 形式不一致はINVALID_ARGUMENTを返し、ストアには一切アクセスしない。
func ParseMonth(month string) (model.MonthWindow, error) {
	m := monthPattern.FindStringSubmatch(month)
	if m == nil {
		return model.MonthWindow{}, model.NewInvalidArgumentError("Invalid month format, expected YYYY-MM")
	}

	year, _ := strconv.Atoi(m[1])
	mon, _ := strconv.Atoi(m[2])

	start := time.Date(year, time.Month(mon), 1, 0, 0, 0, 0, time.UTC)
	return model.MonthWindow{
		Start: start,
		End:   start.AddDate(0, 1, 0),
	}, nil
}

// Service は勤怠照会のサービス層。
// 可視性ルールの適用と区間クエリの実行を担う。
type Service struct {
	records repository.AttendanceRepository
}

// NewService はServiceを生成する。
func NewService(records repository.AttendanceRepository) *Service {
	return &Service{records: records}
}

// ListMonth は対象ユーザーの月次勤怠記録を日付昇順で返す。
// 可視性ルール: adminは全ユーザーを、一般ユーザーは自分自身のみを照会できる。
// 認可は区間クエリの実行より前に行い、拒否されたリクエストに対して
// 部分的なデータ計算は一切行わない。
func (s *Service) ListMonth(ctx context.Context, principal model.Principal, targetUserID int, window model.MonthWindow) ([]model.AttendanceRecord, error) {
	if !principal.IsAdmin() && targetUserID != principal.ID {
		return nil, model.NewForbiddenError("Forbidden: cannot view other users' attendance")
	}

	records, err := s.records.ListByUserAndRange(ctx, targetUserID, window.Start, window.End)
	if err != nil {
		return nil, model.NewStoreError(fmt.Errorf("failed to list attendance for user %d: %w", targetUserID, err))
	}

	return records, nil
}
