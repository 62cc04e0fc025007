package metric

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var interactionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "interactions_total",
	Help:      "Interactions handled, by kind, name and outcome",
}, []string{"kind", "name", "outcome"})

// ObserveInteraction counts one handled interaction. err is the handler's result.
func ObserveInteraction(kind, name string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	interactionsTotal.WithLabelValues(kind, name, outcome).Inc()
}
