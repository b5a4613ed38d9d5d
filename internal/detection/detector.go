package detection

import (
	"context"
	"math"

	"github.com/hitoshi/fridgelog/internal/model"
)

// Image は検出対象の画像オブジェクトを表す。
type Image struct {
	Bucket string
	Key    string
}

// Detector は画像から食材を検出するインターフェース。
type Detector interface {
	Detect(ctx context.Context, img Image) ([]model.DetectedItem, error)
}

// roundConfidence は信頼度を小数点以下2桁に丸める。
func roundConfidence(v float64) float64 {
	return math.Round(v*100) / 100
}
