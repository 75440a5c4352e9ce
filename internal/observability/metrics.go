package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	syncRunsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sushi_sync_runs_total",
			Help: "Total number of bucket-to-lake sync cycles.",
		},
	)
	syncFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sushi_sync_failures_total",
			Help: "Total number of failed sync cycles.",
		},
	)
	tablesLoadedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sushi_tables_loaded_total",
			Help: "Total number of lake tables created or replaced by sync.",
		},
	)
	syncDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sushi_sync_duration_seconds",
			Help:    "Duration of sync cycles in seconds.",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
	)
	refreshRunsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sushi_snapshot_refresh_runs_total",
			Help: "Total number of snapshot expiry and cleanup cycles.",
		},
	)
	refreshDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sushi_snapshot_refresh_duration_seconds",
			Help:    "Duration of snapshot refresh cycles in seconds.",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)
	uploadBytesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sushi_upload_bytes_total",
			Help: "Total bytes uploaded to the object store.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		syncRunsTotal,
		syncFailuresTotal,
		tablesLoadedTotal,
		syncDurationSeconds,
		refreshRunsTotal,
		refreshDurationSeconds,
		uploadBytesTotal,
	)
}

func ObserveSync(tablesLoaded int, failed bool, elapsed time.Duration) {
	syncRunsTotal.Inc()
	if failed {
		syncFailuresTotal.Inc()
	}
	if tablesLoaded > 0 {
		tablesLoadedTotal.Add(float64(tablesLoaded))
	}
	syncDurationSeconds.Observe(elapsed.Seconds())
}

func ObserveRefresh(elapsed time.Duration) {
	refreshRunsTotal.Inc()
	refreshDurationSeconds.Observe(elapsed.Seconds())
}

func AddUploadBytes(n int64) {
	if n > 0 {
		uploadBytesTotal.Add(float64(n))
	}
}
