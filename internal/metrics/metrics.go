// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層、ワーカー、ミドルウェアから利用する。
type MetricsCollector interface {
	RecordIngestionSuccess(itemCount int)
	RecordIngestionFailure(stage string)
	RecordIngestionSkipped()
	RecordIngestionLatency(duration time.Duration)
	RecordFollowAction(action, outcome string)
	RecordHTTPStatus(statusCode int)
	RecordDuplicateBatches(images, extraBatches int64)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	ingestSuccess  prometheus.Counter
	ingestFail     *prometheus.CounterVec
	ingestSkipped  prometheus.Counter
	itemsDetected  prometheus.Counter
	ingestLatency  prometheus.Histogram
	followActions  *prometheus.CounterVec
	httpStatus     *prometheus.CounterVec
	reingested     prometheus.Gauge
	extraBatches   prometheus.Gauge
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		ingestSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fridgelog_ingestion_success_total",
			Help: "インジェスト成功の合計数",
		}),
		ingestFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fridgelog_ingestion_fail_total",
			Help: "段階別のインジェスト失敗数",
		}, []string{"stage"}),
		ingestSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fridgelog_ingestion_skipped_total",
			Help: "対象外キーとしてスキップしたイベント数",
		}),
		itemsDetected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fridgelog_items_detected_total",
			Help: "検出・登録された食材の合計数",
		}),
		ingestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fridgelog_ingestion_latency_seconds",
			Help:    "画像1枚あたりのインジェスト処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		followActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fridgelog_follow_actions_total",
			Help: "アクションと結果別のフォロー操作数",
		}, []string{"action", "outcome"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fridgelog_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		reingested: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fridgelog_reingested_images",
			Help: "食材行に複数のバッチを持つ画像の数",
		}),
		extraBatches: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fridgelog_duplicate_batches",
			Help: "再インジェストで追加されたバッチ数の合計",
		}),
	}

	reg.MustRegister(
		c.ingestSuccess,
		c.ingestFail,
		c.ingestSkipped,
		c.itemsDetected,
		c.ingestLatency,
		c.followActions,
		c.httpStatus,
		c.reingested,
		c.extraBatches,
	)

	return c
}

// RecordIngestionSuccess はインジェスト成功と登録した食材数を記録する。
func (c *Collector) RecordIngestionSuccess(itemCount int) {
	c.ingestSuccess.Inc()
	c.itemsDetected.Add(float64(itemCount))
}

// RecordIngestionFailure は失敗した段階（parse, detect, sidecar, store）を記録する。
func (c *Collector) RecordIngestionFailure(stage string) {
	c.ingestFail.WithLabelValues(stage).Inc()
}

// RecordIngestionSkipped はスキップしたイベントを記録する。
func (c *Collector) RecordIngestionSkipped() {
	c.ingestSkipped.Inc()
}

// RecordIngestionLatency はインジェストの処理時間を記録する。
func (c *Collector) RecordIngestionLatency(duration time.Duration) {
	c.ingestLatency.Observe(duration.Seconds())
}

// RecordFollowAction はフォロー操作を記録する。
func (c *Collector) RecordFollowAction(action, outcome string) {
	c.followActions.WithLabelValues(action, outcome).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordDuplicateBatches は直近の重複バッチ集計を記録する。
func (c *Collector) RecordDuplicateBatches(images, extraBatches int64) {
	c.reingested.Set(float64(images))
	c.extraBatches.Set(float64(extraBatches))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop は何も記録しないMetricsCollector。
type Nop struct{}

func (Nop) RecordIngestionSuccess(int)           {}
func (Nop) RecordIngestionFailure(string)        {}
func (Nop) RecordIngestionSkipped()              {}
func (Nop) RecordIngestionLatency(time.Duration) {}
func (Nop) RecordFollowAction(string, string)    {}
func (Nop) RecordHTTPStatus(int)                 {}
func (Nop) RecordDuplicateBatches(int64, int64)  {}

var (
	_ MetricsCollector = (*Collector)(nil)
	_ MetricsCollector = Nop{}
)
