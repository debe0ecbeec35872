package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	initOnce sync.Once

	// FilesShreddedTotal counts targets whose passes all completed
	FilesShreddedTotal prometheus.Counter

	// BytesWrittenTotal counts every byte issued by overwrite passes
	// (zero and random alike)
	BytesWrittenTotal prometheus.Counter

	// PassesTotal counts completed zero+random passes across all files
	PassesTotal prometheus.Counter

	// ErrorsTotal counts targets that failed for any reason
	ErrorsTotal prometheus.Counter

	// ShredDuration observes wall time per successfully shredded file
	ShredDuration prometheus.Histogram
)

// Init initializes and registers all metrics with Prometheus
// Safe to call multiple times (uses sync.Once)
func Init() {
	initOnce.Do(func() {
		FilesShreddedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shredsafe_files_shredded_total",
			Help: "Total number of files successfully shredded",
		})
		BytesWrittenTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shredsafe_bytes_written_total",
			Help: "Total bytes written by overwrite passes",
		})
		PassesTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shredsafe_passes_total",
			Help: "Total completed zero+random overwrite passes",
		})
		ErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shredsafe_errors_total",
			Help: "Total targets that failed to shred",
		})
		ShredDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "shredsafe_shred_duration_seconds",
			Help:    "Wall time spent shredding one file",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		})

		prometheus.MustRegister(
			FilesShreddedTotal,
			BytesWrittenTotal,
			PassesTotal,
			ErrorsTotal,
			ShredDuration,
		)
	})
}
