package quota

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resourceTokens = "tokens"
	resourceImages = "images"

	outcomeAllowed  = "allowed"
	outcomeDenied   = "denied"
	outcomeDisabled = "disabled"
)

var (
	decisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kartuli",
		Subsystem: "quota",
		Name:      "decisions_total",
		Help:      "Quota checks by actor type, resource and outcome.",
	}, []string{"actor_type", "resource", "outcome"})

	consumedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kartuli",
		Subsystem: "quota",
		Name:      "consumed_total",
		Help:      "Units recorded against actors by resource.",
	}, []string{"actor_type", "resource"})

	storeErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kartuli",
		Subsystem: "quota",
		Name:      "store_errors_total",
		Help:      "Usage store failures by operation.",
	}, []string{"operation"})
)

func observeDecision(actor Actor, resource string, allowed bool) {
	outcome := outcomeDenied
	if allowed {
		outcome = outcomeAllowed
	}

	decisionsTotal.WithLabelValues(string(actor.Type), resource, outcome).Inc()
}
