// Package metrics exports container activity as Prometheus metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/skekre98/locator/core"
)

// Observer implements core.Observer on top of Prometheus collectors.
type Observer struct {
	resolutions *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	builds      *prometheus.CounterVec
}

// NewObserver creates the collectors and registers them with reg.
func NewObserver(reg prometheus.Registerer) (*Observer, error) {
	o := &Observer{
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "locator",
			Name:      "resolutions_total",
			Help:      "Container Get calls by result: hit, built or the error kind.",
		}, []string{"result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "locator",
			Name:      "resolve_duration_seconds",
			Help:      "Latency of container Get calls.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, []string{"cached"}),
		builds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "locator",
			Name:      "instances_built_total",
			Help:      "Instances constructed, by type id.",
		}, []string{"type"}),
	}
	for _, c := range []prometheus.Collector{o.resolutions, o.duration, o.builds} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func (o *Observer) ObserveResolution(r core.Resolution) {
	result := "built"
	switch {
	case r.Err != nil:
		result = core.ErrorKind(r.Err)
	case r.Cached:
		result = "hit"
	}
	o.resolutions.WithLabelValues(result).Inc()

	cached := "false"
	if r.Cached {
		cached = "true"
	}
	o.duration.WithLabelValues(cached).Observe(r.Duration.Seconds())
}

func (o *Observer) ObserveBuild(t core.TypeID, _ time.Duration) {
	o.builds.WithLabelValues(t.String()).Inc()
}
