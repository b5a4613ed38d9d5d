package ingestion

import (
	"github.com/aws/aws-lambda-go/events"

	"github.com/hitoshi/fridgelog/internal/model"
	"github.com/hitoshi/fridgelog/internal/objectkey"
)

// 処理結果のメッセージ
const (
	MessageProcessed = "Successfully processed image and stored items"
	MessageNoImage   = "No fridge image in event"
	MessageFailed    = "Error processing image"
)

// RefsFromS3Event はS3通知イベントのレコードをObjectRefに変換する。
// キーはここで一度だけデコードし、以降はデコード済みのキーとして扱う。
func RefsFromS3Event(ev events.S3Event) ([]ObjectRef, error) {
	refs := make([]ObjectRef, 0, len(ev.Records))
	for _, rec := range ev.Records {
		key, err := objectkey.DecodeEventKey(rec.S3.Object.Key)
		if err != nil {
			return nil, model.NewInvalidObjectKeyError(rec.S3.Object.Key)
		}
		refs = append(refs, ObjectRef{
			Bucket: rec.S3.Bucket.Name,
			Key:    key,
		})
	}
	return refs, nil
}

// Outcome は通知1回分の処理結果のレスポンスボディ。
type Outcome struct {
	Message       string               `json:"message"`
	DetectedItems []model.DetectedItem `json:"detectedItems,omitempty"`
	JSONURL       string               `json:"jsonUrl,omitempty"`
	Error         string               `json:"error,omitempty"`
}

// SuccessOutcome は処理結果から成功レスポンスを作る。
// 複数画像を処理した場合は最後の画像の結果を返す。
func SuccessOutcome(results []*Result) Outcome {
	if len(results) == 0 {
		return Outcome{Message: MessageNoImage}
	}
	last := results[len(results)-1]
	return Outcome{
		Message:       MessageProcessed,
		DetectedItems: last.Items,
		JSONURL:       last.JSONURL,
	}
}

// FailureOutcome は失敗レスポンスを作る。
func FailureOutcome(err error) Outcome {
	return Outcome{Message: MessageFailed, Error: err.Error()}
}
