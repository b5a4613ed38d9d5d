package function

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hitoshi/fridgelog/internal/profile"
)

// errInternal は呼び出し元に返す汎用エラー。詳細はログのみに記録する。
var errInternal = errors.New("internal server error")

// ResolverFunction は名前付き操作形式のプロフィールハンドラー。
type ResolverFunction struct {
	service ProfileService
	logger  *slog.Logger
}

// NewResolverFunction はResolverFunctionを生成する。
func NewResolverFunction(service ProfileService, logger *slog.Logger) *ResolverFunction {
	return &ResolverFunction{service: service, logger: logger}
}

// Handle はfieldNameに応じた操作を実行し、結果をそのまま返す。
// 入力不正はメッセージ付きのエラー、それ以外の失敗は汎用エラーになる。
func (f *ResolverFunction) Handle(ctx context.Context, ev profile.ResolverEvent) (any, error) {
	return guard(f.logger, "resolver",
		func() (any, error) { return nil, errInternal },
		func() (any, error) {
			result, err := f.service.Resolve(ctx, ev)
			if err == nil {
				return result, nil
			}
			if _, apiErr := statusFor(err); apiErr != nil && apiErr.Category == "validation" {
				return nil, apiErr
			}
			f.logger.Error("resolver failed",
				slog.String("field_name", ev.FieldName),
				slog.String("error", err.Error()),
			)
			return nil, errInternal
		},
	)
}
