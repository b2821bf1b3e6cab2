package quadtree

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	reasonLabel = "reason"
)

var (
	quadtreeSplits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quadtree_splits_total",
		Help: "The number of quadtree nodes split into quadrants.",
	})

	quadtreeRedistributions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quadtree_redistributions_total",
		Help: "The number of subtrees rebuilt by redistributing their points.",
	})

	quadtreeRejectedInserts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quadtree_rejected_inserts_total",
		Help: "The number of inserted points that were not stored.",
	}, []string{reasonLabel})
)

func instrumentSplit() {
	quadtreeSplits.Inc()
}

func instrumentRedistribution() {
	quadtreeRedistributions.Inc()
}

func instrumentRejectedInsert(reason string) {
	quadtreeRejectedInserts.
		With(prometheus.Labels{reasonLabel: reason}).
		Inc()
}
