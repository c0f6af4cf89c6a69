// Package model はドメインモデルを定義する。
package model

import "time"

// AttendanceRecord は1ユーザー・1営業日の勤怠記録を表す。
// (user_id, work_date) はストア側の一意制約で保証される。
// CheckIn/CheckOutは打刻がない日（欠勤等）はnilのまま保持する。
type AttendanceRecord struct {
	UserID   int
	WorkDate time.Time
	CheckIn  *time.Time
	CheckOut *time.Time
	Status   string
	Note     string
}

// MonthWindow は月の半開区間 [Start, End) を表す派生値。
// 永続化せず、リクエストごとに再計算する。
type MonthWindow struct {
	Start time.Time
	End   time.Time
}
