package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// 文档注释：批处理指标
// 背景：命令一次性运行，无 /metrics 端点；结束时写入 textfile，由 node_exporter 的 textfile collector 采集。
// 约束：使用独立 Registry，避免默认注册表中的 Go 运行时指标混入 textfile。
type Metrics struct {
	reg *prometheus.Registry

	DistrictsTotal   *prometheus.CounterVec
	FeaturesTotal    prometheus.Counter
	FeaturesSkipped  prometheus.Counter
	PolygonsRepaired prometheus.Counter
	PolygonsDropped  prometheus.Counter
	OutlineFallbacks prometheus.Counter
	MergeDurationSec prometheus.Histogram
	CacheTotal       *prometheus.CounterVec
	OutlineCoverage  *prometheus.GaugeVec
	LastRunTimestamp prometheus.Gauge
	OutputBytes      *prometheus.GaugeVec
}

// 结果状态标签
const (
	StatusOK          = "ok"
	StatusPlaceholder = "placeholder"
	StatusNoOutline   = "no_outline"
)

func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		DistrictsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "keralamap_districts_total",
			Help: "Districts processed by result status",
		}, []string{"status"}),
		FeaturesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "keralamap_features_total",
			Help: "GeoJSON features extracted from hierarchy files",
		}),
		FeaturesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "keralamap_features_skipped_total",
			Help: "Features skipped because their geometry could not be decoded",
		}),
		PolygonsRepaired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "keralamap_polygons_repaired_total",
			Help: "Invalid polygons repaired with MakeValid",
		}),
		PolygonsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "keralamap_polygons_dropped_total",
			Help: "Polygons dropped as empty or unrepairable",
		}),
		OutlineFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "keralamap_outline_fallbacks_total",
			Help: "Merges that collapsed to empty and used fallback parameters",
		}),
		MergeDurationSec: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "keralamap_merge_duration_seconds",
			Help:    "Outline merge duration per district",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		}),
		CacheTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "keralamap_outline_cache_total",
			Help: "Outline cache lookups by result",
		}, []string{"result"}),
		OutlineCoverage: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "keralamap_outline_coverage_ratio",
			Help: "Share of input polygons inside the merged outline",
		}, []string{"district"}),
		LastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "keralamap_last_run_timestamp_seconds",
			Help: "Unix time the last run finished",
		}),
		OutputBytes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "keralamap_output_bytes",
			Help: "Size of written output files",
		}, []string{"kind"}),
	}
	m.reg.MustRegister(
		m.DistrictsTotal, m.FeaturesTotal, m.FeaturesSkipped, m.PolygonsRepaired,
		m.PolygonsDropped, m.OutlineFallbacks, m.MergeDurationSec, m.CacheTotal,
		m.OutlineCoverage, m.LastRunTimestamp, m.OutputBytes,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// ObserveMerge：记录一次合并耗时与缓存结果
func (m *Metrics) ObserveMerge(d time.Duration, cached bool) {
	if m == nil {
		return
	}
	m.MergeDurationSec.Observe(d.Seconds())
	if cached {
		m.CacheTotal.WithLabelValues("hit").Inc()
	} else {
		m.CacheTotal.WithLabelValues("miss").Inc()
	}
}

// District：按状态累计组织区数量
func (m *Metrics) District(status string) {
	if m == nil {
		return
	}
	m.DistrictsTotal.WithLabelValues(status).Inc()
}

// WriteTextfile：path 为空时不写；先写临时文件再改名，由 client_golang 保证
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	m.LastRunTimestamp.SetToCurrentTime()
	return prometheus.WriteToTextfile(path, m.reg)
}
