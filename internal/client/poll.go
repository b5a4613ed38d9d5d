package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hitoshi/fridgelog/internal/fridge"
	"github.com/hitoshi/fridgelog/internal/model"
)

// ErrStillProcessing は再試行回数内に検出結果が得られなかったことを表す。
var ErrStillProcessing = errors.New("検出処理がまだ完了していません")

// デフォルトのポーリング設定
const (
	DefaultPollInterval   = 30 * time.Second
	DefaultPollMaxRetries = 12

	resolveConcurrency = 8
)

// PollConfig は検出結果待ちのポーリング設定。
// ゼロ値の項目はデフォルト値を使う。
type PollConfig struct {
	Interval   time.Duration
	MaxRetries int
}

func (p PollConfig) withDefaults() PollConfig {
	if p.Interval <= 0 {
		p.Interval = DefaultPollInterval
	}
	if p.MaxRetries <= 0 {
		p.MaxRetries = DefaultPollMaxRetries
	}
	return p
}

// WaitForDetection はInterval待ってから履歴を読む処理をMaxRetries回まで繰り返し、
// keyの検出結果が得られた時点で返す。得られなければErrStillProcessingを返す。
func (c *Client) WaitForDetection(ctx context.Context, key string, cfg PollConfig) (*model.DetectionResult, error) {
	cfg = cfg.withDefaults()

	timer := time.NewTimer(cfg.Interval)
	defer timer.Stop()

	for attempt := 1; attempt <= cfg.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}

		entries, err := c.History(ctx)
		if err != nil {
			return nil, fmt.Errorf("履歴の取得に失敗しました: %w", err)
		}
		for _, e := range entries {
			if e.Key == key && e.Status == fridge.StatusDetected && e.Detection != nil {
				return e.Detection, nil
			}
		}
		timer.Reset(cfg.Interval)
	}
	return nil, ErrStillProcessing
}

// ResolveURLs はkeysの表示用URLを並列に解決する。
// 結果はキーからURLへのマップで、順序は保証しない。1件でも失敗したらエラーを返す。
func ResolveURLs(ctx context.Context, keys []string, resolve func(ctx context.Context, key string) (string, error)) (map[string]string, error) {
	urls := make([]string, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveConcurrency)
	for i, key := range keys {
		g.Go(func() error {
			u, err := resolve(gctx, key)
			if err != nil {
				return fmt.Errorf("URLの解決に失敗しました (%s): %w", key, err)
			}
			urls[i] = u
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resolved := make(map[string]string, len(keys))
	for i, key := range keys {
		resolved[key] = urls[i]
	}
	return resolved, nil
}
