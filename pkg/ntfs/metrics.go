package ntfs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	metricsOnce sync.Once

	linksCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ntlink",
			Subsystem: "link",
			Name:      "created_total",
			Help:      "Number of links created by kind (junction, file-symlink, directory-symlink, hardlink).",
		},
		[]string{"kind"})

	linksRemovedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ntlink",
			Subsystem: "link",
			Name:      "removed_total",
			Help:      "Number of links removed.",
		})

	backupRecordsWrittenTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ntlink",
			Subsystem: "backup",
			Name:      "records_written_total",
			Help:      "Number of manifest records written by a backup run.",
		})

	restoreRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ntlink",
			Subsystem: "restore",
			Name:      "records_total",
			Help:      "Number of manifest records processed during restore, by outcome (installed, failed).",
		},
		[]string{"outcome"})
)

// registerMetrics registers this package's Prometheus collectors with
// the default registry exactly once, the way
// pkg/blobstore/circular/file_offset_store.go guards its own histogram
// registration with a sync.Once: every call to a metrics-emitting
// function in this package is cheap to call repeatedly, and a process
// that never touches ntfs pays nothing for the metrics it never
// registers.
func registerMetrics() {
	metricsOnce.Do(func() {
		prometheus.MustRegister(linksCreatedTotal)
		prometheus.MustRegister(linksRemovedTotal)
		prometheus.MustRegister(backupRecordsWrittenTotal)
		prometheus.MustRegister(restoreRecordsTotal)
	})
}
