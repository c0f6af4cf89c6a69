// Package cleanup は期限切れセッションの自動削除ジョブを提供する。
// highセキュリティモードで発行されたサーバーサイドセッションのうち、
// 有効期限を過ぎた行を日次バッチで削除する。
package cleanup

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// Executor はSQLのExecContextを抽象化するインターフェース。
// *sql.DB や *sql.Tx を受け付けることができる。
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// DeletionRecorder は削除されたセッション数をメトリクスに記録する。
type DeletionRecorder interface {
	RecordSessionsDeleted(count int)
}

// CleanupJob は期限切れセッションの自動削除ジョブ。
// 日次実行のバッチジョブとして設計されており、冪等な削除処理を保証する。
// 期限切れセッションはFindByIDの時点で既に無効扱いのため、
// このジョブは行の物理削除のみを担当する。
type CleanupJob struct {
	db      Executor
	logger  *slog.Logger
	metrics DeletionRecorder
}

// NewCleanupJob は新しいCleanupJobを生成する。
// metricsはnilでもよい。
func NewCleanupJob(db Executor, logger *slog.Logger, metrics DeletionRecorder) *CleanupJob {
	return &CleanupJob{
		db:      db,
		logger:  logger,
		metrics: metrics,
	}
}

// Run は有効期限を過ぎたセッションを削除する。
// 冪等: 削除対象がない場合でもエラーにならない。
func (j *CleanupJob) Run(ctx context.Context) error {
	start := time.Now()

	query := `DELETE FROM sessions WHERE expires_at < now()`
	result, err := j.db.ExecContext(ctx, query)
	if err != nil {
		j.logger.Error("セッションクリーンアップジョブの実行に失敗しました",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("セッションクリーンアップの実行に失敗: %w", err)
	}

	deletedCount, err := result.RowsAffected()
	if err != nil {
		j.logger.Error("削除件数の取得に失敗しました",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("削除件数の取得に失敗: %w", err)
	}

	if j.metrics != nil {
		j.metrics.RecordSessionsDeleted(int(deletedCount))
	}

	duration := time.Since(start)
	j.logger.Info("セッションクリーンアップジョブが完了しました",
		slog.Int64("deleted_count", deletedCount),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}
