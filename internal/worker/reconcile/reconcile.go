// Package reconcile は再インジェストで生じた重複バッチを監視するワーカーを提供する。
// 同じ画像が再処理されると fridge_items に複数世代の行が残る。
// 食材行は一度書いたら変更・削除しないため、ここでは件数を集計して記録するだけにとどめる。
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/fridgelog/internal/repository"
)

// DefaultInterval はワーカーのデフォルト実行間隔。
const DefaultInterval = time.Hour

// StatsSource は重複バッチの集計元。
type StatsSource interface {
	DuplicateBatchStats(ctx context.Context) (repository.DuplicateBatchStats, error)
}

// StatsRecorder は集計結果の記録先。
type StatsRecorder interface {
	RecordDuplicateBatches(images, extraBatches int64)
}

// Job は重複バッチの集計ジョブ。
type Job struct {
	source   StatsSource
	recorder StatsRecorder
	logger   *slog.Logger
}

// NewJob は新しいJobを生成する。
func NewJob(source StatsSource, recorder StatsRecorder, logger *slog.Logger) *Job {
	return &Job{source: source, recorder: recorder, logger: logger}
}

// Run は重複バッチを集計して記録し、集計結果を返す。
func (j *Job) Run(ctx context.Context) (repository.DuplicateBatchStats, error) {
	start := time.Now()

	stats, err := j.source.DuplicateBatchStats(ctx)
	if err != nil {
		j.logger.Error("重複バッチの集計に失敗しました",
			slog.String("error", err.Error()),
		)
		return repository.DuplicateBatchStats{}, fmt.Errorf("重複バッチの集計に失敗: %w", err)
	}
	j.recorder.RecordDuplicateBatches(stats.Images, stats.ExtraBatches)

	level := slog.LevelInfo
	if stats.Images > 0 {
		level = slog.LevelWarn
	}
	j.logger.Log(ctx, level, "重複バッチの集計が完了しました",
		slog.Int64("reingested_images", stats.Images),
		slog.Int64("extra_batches", stats.ExtraBatches),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)
	return stats, nil
}

// Start は起動直後に1回実行し、その後intervalごとに実行する。
// コンテキストがキャンセルされるまでブロックする。
func (j *Job) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	j.logger.Info("集計ワーカーを開始しました", slog.Duration("interval", interval))

	// 失敗しても次の周期で再実行する
	_, _ = j.Run(ctx)

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("集計ワーカーを停止しました")
			return
		case <-ticker.C:
			_, _ = j.Run(ctx)
		}
	}
}
