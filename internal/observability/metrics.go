package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	activityPersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "sleepbaby",
		Subsystem: "persistence",
		Name:      "last_activity_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent activity persisted to Postgres.",
	})
	activityRecordedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sleepbaby",
		Subsystem: "persistence",
		Name:      "activities_recorded_total",
		Help:      "Number of activity records persisted, labeled by kind.",
	}, []string{"kind"})
)

func init() {
	prometheus.MustRegister(activityPersistGauge, activityRecordedCounter)
}

// RecordActivityPersisted updates the persistence watermark gauge and the
// per-kind counter.
func RecordActivityPersisted(kind string, ts time.Time) {
	activityRecordedCounter.WithLabelValues(kind).Inc()
	if ts.IsZero() {
		return
	}
	activityPersistGauge.Set(float64(ts.Unix()))
}
