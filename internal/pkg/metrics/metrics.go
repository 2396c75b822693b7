package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	transitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "asrama",
		Subsystem: "request",
		Name:      "transitions_total",
		Help:      "Lifecycle moves broken down by request kind, action and result.",
	}, []string{"kind", "action", "result"})

	allocations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "asrama",
		Subsystem: "room",
		Name:      "allocations_total",
		Help:      "Room assignment attempts broken down by mode and result.",
	}, []string{"mode", "result"})

	claims = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "asrama",
		Subsystem: "complaint",
		Name:      "claims_total",
		Help:      "Complaint claim attempts broken down by result.",
	}, []string{"result"})

	cacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "asrama",
		Subsystem: "cache",
		Name:      "requests_total",
		Help:      "Cache lookups broken down by cache and hit/miss.",
	}, []string{"cache", "result"})
)

func RecordTransition(kind, action string, err error) {
	transitions.WithLabelValues(kind, action, result(err)).Inc()
}

func RecordAllocation(mode string, err error) {
	allocations.WithLabelValues(mode, result(err)).Inc()
}

func RecordClaim(err error) {
	claims.WithLabelValues(result(err)).Inc()
}

func RecordCacheRequest(cache string, hit bool) {
	r := "miss"
	if hit {
		r = "hit"
	}
	cacheRequests.WithLabelValues(cache, r).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
