package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"github.com/hitoshi/fridgelog/internal/ingestion"
)

// EventIngesterInterface はオブジェクト作成通知を処理するサービスインターフェース。
type EventIngesterInterface interface {
	HandleEvent(ctx context.Context, refs []ingestion.ObjectRef) ([]*ingestion.Result, error)
}

// EventHandler はS3イベント通知（Webhook形式）のHTTPハンドラー。
type EventHandler struct {
	ingester EventIngesterInterface
}

// NewEventHandler はEventHandlerを生成する。
func NewEventHandler(ingester EventIngesterInterface) *EventHandler {
	return &EventHandler{ingester: ingester}
}

// HandleS3Event はS3イベント通知のJSONを受け取りインジェストを実行する。
// POST /events/s3
func (h *EventHandler) HandleS3Event(w http.ResponseWriter, r *http.Request) {
	var ev events.S3Event
	if !decodeJSONBody(w, r, &ev) {
		return
	}

	refs, err := ingestion.RefsFromS3Event(ev)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ingestion.FailureOutcome(err))
		return
	}

	results, err := h.ingester.HandleEvent(r.Context(), refs)
	if err != nil {
		slog.Error("ingestion failed",
			slog.Int("records", len(ev.Records)),
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusInternalServerError, ingestion.FailureOutcome(err))
		return
	}
	writeJSON(w, http.StatusOK, ingestion.SuccessOutcome(results))
}
