// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/datndc/timekeeper/internal/attendance"
	"github.com/datndc/timekeeper/internal/model"
)

// IdentityResolver はリクエストのクレデンシャルを検証済みPrincipalへ解決する。
type IdentityResolver interface {
	Resolve(ctx context.Context, r *http.Request) (*model.Principal, error)
}

// AttendanceServiceInterface は勤怠ハンドラーが必要とするサービスインターフェース。
type AttendanceServiceInterface interface {
	ListMonth(ctx context.Context, principal model.Principal, targetUserID int, window model.MonthWindow) ([]model.AttendanceRecord, error)
}

// AttendanceMetrics は勤怠照会のメトリクスを記録する。
type AttendanceMetrics interface {
	RecordAttendanceQuery()
}

// AttendanceHandler は勤怠照会のHTTPハンドラー。
type AttendanceHandler struct {
	resolver IdentityResolver
	service  AttendanceServiceInterface
	metrics  AttendanceMetrics
}

// NewAttendanceHandler はAttendanceHandlerを生成する。
func NewAttendanceHandler(resolver IdentityResolver, service AttendanceServiceInterface, metrics AttendanceMetrics) *AttendanceHandler {
	return &AttendanceHandler{
		resolver: resolver,
		service:  service,
		metrics:  metrics,
	}
}

// recordResponse は勤怠レコードのレスポンス表現。
// 日付はYYYY-MM-DD、出退勤はHH:MM（未打刻はnull）。
type recordResponse struct {
	Date     string  `json:"date"`
	CheckIn  *string `json:"checkIn"`
	CheckOut *string `json:"checkOut"`
	Status   string  `json:"status"`
	Note     string  `json:"note"`
}

// ListMonth は指定ユーザーの月次勤怠レコードを返す。
// GET /api/attendance?userId=xxx&month=YYYY-MM
//
// 入力検証は身元解決より先に行う。検証エラーの場合はストアに一切アクセスしない。
func (h *AttendanceHandler) ListMonth(w http.ResponseWriter, r *http.Request) {
	userIDParam := r.URL.Query().Get("userId")
	monthParam := r.URL.Query().Get("month")

	if userIDParam == "" || monthParam == "" {
		writeErrorResponse(w, http.StatusBadRequest, "Missing userId or month (YYYY-MM)", "")
		return
	}

	targetUserID, err := strconv.Atoi(userIDParam)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid userId", "")
		return
	}

	window, err := attendance.ParseMonth(monthParam)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	principal, err := h.resolver.Resolve(r.Context(), r)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	records, err := h.service.ListMonth(r.Context(), *principal, targetUserID, window)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordAttendanceQuery()
	}

	out := make([]recordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, toRecordResponse(rec))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"records": out,
	})
}

// toRecordResponse はドメインモデルをレスポンス表現に整形する。
func toRecordResponse(rec model.AttendanceRecord) recordResponse {
	return recordResponse{
		Date:     rec.WorkDate.Format("2006-01-02"),
		CheckIn:  formatClock(rec.CheckIn),
		CheckOut: formatClock(rec.CheckOut),
		Status:   rec.Status,
		Note:     rec.Note,
	}
}

// formatClock はタイムスタンプをHH:MMに整形する。未打刻(nil)はnilのまま返す。
func formatClock(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("15:04")
	return &s
}
