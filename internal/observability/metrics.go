package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Mutation outcomes used as the "result" label.
const (
	ResultOK         = "ok"
	ResultNotFound   = "not_found"
	ResultValidation = "validation"
	ResultConflict   = "conflict"
	ResultError      = "error"
)

var (
	sessionMutations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workout_tracker",
		Subsystem: "sessions",
		Name:      "mutations_total",
		Help:      "Session mutations by operation and outcome.",
	}, []string{"operation", "result"})
	sessionSaveConflicts = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "workout_tracker",
		Subsystem: "sessions",
		Name:      "save_conflicts_total",
		Help:      "Session saves rejected because the stored version had moved on.",
	})
	sessionsCompleted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "workout_tracker",
		Subsystem: "sessions",
		Name:      "completed_total",
		Help:      "Sessions marked completed.",
	})
	catalogLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workout_tracker",
		Subsystem: "catalog",
		Name:      "lookups_total",
		Help:      "Catalog exercise lookups by cache outcome.",
	}, []string{"cache"})
)

func init() {
	prometheus.MustRegister(sessionMutations, sessionSaveConflicts, sessionsCompleted, catalogLookups)
}

// RecordSessionMutation counts one mutation attempt.
func RecordSessionMutation(operation, result string) {
	sessionMutations.WithLabelValues(operation, result).Inc()
}

// RecordSessionSaveConflict counts one rejected version-checked save.
func RecordSessionSaveConflict() {
	sessionSaveConflicts.Inc()
}

// RecordSessionCompleted counts one completed session.
func RecordSessionCompleted() {
	sessionsCompleted.Inc()
}

// RecordCatalogLookup counts a catalog lookup as a cache hit or miss.
func RecordCatalogLookup(hit bool) {
	if hit {
		catalogLookups.WithLabelValues("hit").Inc()
		return
	}
	catalogLookups.WithLabelValues("miss").Inc()
}
