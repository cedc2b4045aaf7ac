package download

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	downloadsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "channelsurfer",
		Name:      "downloads_started_total",
		Help:      "Downloads accepted by the orchestrator",
	})
	downloadsFinished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "channelsurfer",
			Name:      "downloads_finished_total",
			Help:      "Downloads reported as finished, by outcome",
		},
		[]string{"outcome"},
	)
	downloadsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "channelsurfer",
		Name:      "downloads_active",
		Help:      "Downloads currently holding a slot",
	})
	downloadsQueued = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "channelsurfer",
		Name:      "downloads_queued",
		Help:      "Downloads waiting for a free slot",
	})
	downloadedBytes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "channelsurfer",
		Name:      "downloaded_bytes_total",
		Help:      "Artifact bytes written to the library",
	})
	downloadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "channelsurfer",
			Name:      "download_duration_seconds",
			Help:      "Wall time of finished downloads",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		},
		[]string{"outcome"},
	)
)
