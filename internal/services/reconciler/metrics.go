package reconciler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	membersProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reconciler_members_processed_total",
		Help: "Number of members processed by the daily reconciliation",
	})
	statusTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reconciler_status_transitions_total",
		Help: "Number of member status transitions applied by the reconciliation",
	}, []string{"status"})
	memberFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reconciler_member_failures_total",
		Help: "Number of members that failed to reconcile",
	})
)
