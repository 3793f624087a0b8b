package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ledger"

// Recorder collects engine outcomes. A nil *Recorder records nothing.
type Recorder struct {
	operations *prometheus.CounterVec
	guardWait  *prometheus.HistogramVec
}

// NewRecorder creates the collectors and registers them with reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Balance mutations by operation and outcome code.",
		}, []string{"operation", "outcome"}),
		guardWait: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "guard_wait_seconds",
			Help:      "Time spent waiting for account guards.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"operation"}),
	}

	for _, c := range []prometheus.Collector{r.operations, r.guardWait} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Observe records one operation outcome; outcome is "ok" or an error code.
func (r *Recorder) Observe(operation, outcome string) {
	if r == nil {
		return
	}
	r.operations.WithLabelValues(operation, outcome).Inc()
}

func (r *Recorder) ObserveGuardWait(operation string, d time.Duration) {
	if r == nil {
		return
	}
	r.guardWait.WithLabelValues(operation).Observe(d.Seconds())
}
