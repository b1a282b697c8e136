package recalc

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Registry *prometheus.Registry

	recomputesRun     prometheus.Counter
	recomputesSkipped *prometheus.CounterVec
	valuesPublished   prometheus.Counter
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(registry)
	return &Metrics{
		Registry: registry,
		recomputesRun: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "fotura",
			Subsystem: "recalc",
			Name:      "recomputes_total",
			Help:      "Number of session price recomputations executed.",
		}),
		recomputesSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fotura",
			Subsystem: "recalc",
			Name:      "recomputes_skipped_total",
			Help:      "Number of recomputations skipped, by reason.",
		}, []string{"reason"}),
		valuesPublished: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "fotura",
			Subsystem: "recalc",
			Name:      "value_updates_published_total",
			Help:      "Number of value updates delivered to subscribers.",
		}),
	}
}
