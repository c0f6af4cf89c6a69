// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ハンドラーやサービス層から利用する。
type MetricsCollector interface {
	RecordHTTPStatus(statusCode int)
	RecordRequestDuration(duration time.Duration)
	RecordLogin(result string)
	RecordAttendanceQuery()
	RecordSessionsDeleted(count int)
}

// ログイン結果のラベル値。
const (
	LoginResultSuccess = "success"
	LoginResultFailure = "failure"
	LoginResultLocked  = "locked"
)

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpStatus        *prometheus.CounterVec
	requestDuration   prometheus.Histogram
	loginTotal        *prometheus.CounterVec
	attendanceQueries prometheus.Counter
	sessionsDeleted   prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "timekeeper_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "timekeeper_http_request_duration_seconds",
			Help:    "HTTPリクエスト処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		loginTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "timekeeper_login_total",
			Help: "結果別のログイン試行数",
		}, []string{"result"}),
		attendanceQueries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "timekeeper_attendance_queries_total",
			Help: "勤怠月次照会の合計数",
		}),
		sessionsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "timekeeper_sessions_deleted_total",
			Help: "クリーンアップで削除された期限切れセッションの合計数",
		}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.requestDuration,
		c.loginTotal,
		c.attendanceQueries,
		c.sessionsDeleted,
	)

	return c
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestDuration はリクエスト処理時間を記録する。
func (c *Collector) RecordRequestDuration(duration time.Duration) {
	c.requestDuration.Observe(duration.Seconds())
}

// RecordLogin はログイン試行の結果を記録する。
func (c *Collector) RecordLogin(result string) {
	c.loginTotal.WithLabelValues(result).Inc()
}

// RecordAttendanceQuery は勤怠月次照会を記録する。
func (c *Collector) RecordAttendanceQuery() {
	c.attendanceQueries.Inc()
}

// RecordSessionsDeleted は削除された期限切れセッション数を記録する。
func (c *Collector) RecordSessionsDeleted(count int) {
	c.sessionsDeleted.Add(float64(count))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Middleware はレスポンスのステータスコードと処理時間を記録するミドルウェアを返す。
func Middleware(collector MetricsCollector) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			collector.RecordHTTPStatus(rec.status)
			collector.RecordRequestDuration(time.Since(start))
		})
	}
}

// statusRecorder はWriteHeaderで設定されたステータスコードを記録する。
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
