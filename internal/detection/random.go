package detection

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/hitoshi/fridgelog/internal/model"
)

const (
	// MaxRandomItems は1枚の画像から検出する食材数の上限。
	MaxRandomItems = 20

	minRandomConfidence  = 0.7
	randomConfidenceSpan = 0.3
)

// RandomDetector は食材一覧からランダムに抽出した結果を返す検出器。
// 画像の内容は参照しない。
type RandomDetector struct {
	mu    sync.Mutex
	rng   *rand.Rand
	names []string
}

// NewRandomDetector は時刻をシードとするRandomDetectorを生成する。
func NewRandomDetector() *RandomDetector {
	seed := uint64(time.Now().UnixNano())
	return NewRandomDetectorWithRand(rand.New(rand.NewPCG(seed, seed>>1)))
}

// NewRandomDetectorWithRand は乱数源を指定してRandomDetectorを生成する。
func NewRandomDetectorWithRand(rng *rand.Rand) *RandomDetector {
	return &RandomDetector{rng: rng, names: Vocabulary()}
}

// Detect は1〜20件の重複しない食材を、0.70〜1.00の信頼度付きで返す。
func (d *RandomDetector) Detect(_ context.Context, _ Image) ([]model.DetectedItem, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := 1 + d.rng.IntN(MaxRandomItems)
	if n > len(d.names) {
		n = len(d.names)
	}

	// 部分的なFisher-Yatesシャッフルで先頭n件を非復元抽出する
	for i := 0; i < n; i++ {
		j := i + d.rng.IntN(len(d.names)-i)
		d.names[i], d.names[j] = d.names[j], d.names[i]
	}

	items := make([]model.DetectedItem, n)
	for i := 0; i < n; i++ {
		items[i] = model.DetectedItem{
			ItemName:   d.names[i],
			Confidence: roundConfidence(minRandomConfidence + d.rng.Float64()*randomConfidenceSpan),
		}
	}
	return items, nil
}

var _ Detector = (*RandomDetector)(nil)
