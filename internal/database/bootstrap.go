package database

import (
	"context"
	"log/slog"
	"sync"
)

// SchemaBootstrapper はスキーマの準備を最初の呼び出し時に一度だけ行う。
// 失敗した場合は次回の呼び出しで再試行する。
type SchemaBootstrapper struct {
	mu      sync.Mutex
	done    bool
	migrate func() error
	logger  *slog.Logger
}

// NewSchemaBootstrapper はdatabaseURLに対してマイグレーションを適用するSchemaBootstrapperを生成する。
func NewSchemaBootstrapper(databaseURL string, logger *slog.Logger) *SchemaBootstrapper {
	return newSchemaBootstrapper(func() error { return RunMigrations(databaseURL) }, logger)
}

func newSchemaBootstrapper(migrate func() error, logger *slog.Logger) *SchemaBootstrapper {
	if logger == nil {
		logger = slog.Default()
	}
	return &SchemaBootstrapper{migrate: migrate, logger: logger}
}

// Ensure はスキーマが未準備であればマイグレーションを適用する。
func (b *SchemaBootstrapper) Ensure(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.done {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := b.migrate(); err != nil {
		b.logger.Warn("schema bootstrap failed", slog.String("error", err.Error()))
		return err
	}
	b.done = true
	return nil
}
