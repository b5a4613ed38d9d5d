package function

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"github.com/hitoshi/fridgelog/internal/ingestion"
)

// EventIngester はオブジェクト作成通知を処理する。
type EventIngester interface {
	HandleEvent(ctx context.Context, refs []ingestion.ObjectRef) ([]*ingestion.Result, error)
}

// IngestFunction はS3オブジェクト作成トリガーのハンドラー。
type IngestFunction struct {
	ingester EventIngester
	logger   *slog.Logger
}

// NewIngestFunction はIngestFunctionを生成する。
func NewIngestFunction(ingester EventIngester, logger *slog.Logger) *IngestFunction {
	return &IngestFunction{ingester: ingester, logger: logger}
}

// Handle は通知に含まれる画像を処理する。
// 成功時は200と検出結果、失敗時は500とエラーメッセージを返す。
func (f *IngestFunction) Handle(ctx context.Context, ev events.S3Event) (events.APIGatewayProxyResponse, error) {
	return guard(f.logger, "ingest",
		func() (events.APIGatewayProxyResponse, error) {
			return jsonResponse(http.StatusInternalServerError, nil,
				ingestion.Outcome{Message: ingestion.MessageFailed, Error: "internal error"}), nil
		},
		func() (events.APIGatewayProxyResponse, error) {
			results, err := f.process(ctx, ev)
			if err != nil {
				f.logger.Error("error processing image",
					slog.Int("records", len(ev.Records)),
					slog.String("error", err.Error()),
				)
				return jsonResponse(http.StatusInternalServerError, nil, ingestion.FailureOutcome(err)), nil
			}
			return jsonResponse(http.StatusOK, nil, ingestion.SuccessOutcome(results)), nil
		},
	)
}

func (f *IngestFunction) process(ctx context.Context, ev events.S3Event) ([]*ingestion.Result, error) {
	refs, err := ingestion.RefsFromS3Event(ev)
	if err != nil {
		return nil, err
	}
	return f.ingester.HandleEvent(ctx, refs)
}
