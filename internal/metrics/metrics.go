// Package metrics exposes Prometheus collectors for the tracker.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "expensetracker"

// Result labels.
const (
	ResultOK        = "ok"
	ResultDuplicate = "duplicate"
	ResultInvalid   = "invalid"
	ResultError     = "error"
)

var (
	httpResponseTime = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "response_time_seconds",
			Help:      "HTTP response time by route pattern.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
		},
		[]string{"method", "route", "status"},
	)

	registrations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Sign-up attempts by result.",
		},
		[]string{"result"},
	)

	logins = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts by result.",
		},
		[]string{"result"},
	)

	expensesAppended = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expenses_appended_total",
			Help:      "Expenses appended, by category.",
		},
		[]string{"category"},
	)

	eventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "amqp",
			Name:      "events_published_total",
			Help:      "expense.recorded publish attempts by result.",
		},
		[]string{"result"},
	)

	rowsSynced = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sheets",
			Name:      "rows_synced_total",
			Help:      "Rows appended to the spreadsheet by result.",
		},
		[]string{"result"},
	)
)

func ObserveResponse(method, route string, status int, elapsed time.Duration) {
	httpResponseTime.
		WithLabelValues(method, route, strconv.Itoa(status)).
		Observe(elapsed.Seconds())
}

func Registration(result string) { registrations.WithLabelValues(result).Inc() }

func Login(result string) { logins.WithLabelValues(result).Inc() }

func ExpenseAppended(category string) { expensesAppended.WithLabelValues(category).Inc() }

func EventPublished(result string) { eventsPublished.WithLabelValues(result).Inc() }

func RowSynced(result string) { rowsSynced.WithLabelValues(result).Inc() }
