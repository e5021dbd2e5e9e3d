package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "familycal"

type Metrics struct {
	Kafka    KafkaMetrics
	API      APIMetrics
	Repo     RepoMetrics
	Calendar CalendarMetrics
	Outbox   OutboxMetrics
	Go       GoMetrics
}

type KafkaMetrics struct {
	ProducerAttemptLatencySeconds *prometheus.HistogramVec
	ProducerOperationsTotal       *prometheus.CounterVec
	ProducerSuccessAttempts       *prometheus.HistogramVec

	ConsumerMessagesTotal   *prometheus.CounterVec
	ConsumerProcessDuration *prometheus.HistogramVec
	ConsumerRebalancesTotal *prometheus.CounterVec
	ConsumerInFlight        *prometheus.GaugeVec
}

type APIMetrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

type RepoMetrics struct {
	RequestsTotal   *prometheus.CounterVec
	DurationSeconds *prometheus.HistogramVec
	InFlight        *prometheus.GaugeVec
}

// CalendarMetrics запросы календаря и разворачивание повторяющихся событий
type CalendarMetrics struct {
	QueryDuration          *prometheus.HistogramVec
	OccurrencesExpanded    prometheus.Histogram
	ExpansionFailuresTotal *prometheus.CounterVec
	DirectoryLookupsTotal  *prometheus.CounterVec
}

// OutboxMetrics судьба записей outbox и чистка по расписанию
type OutboxMetrics struct {
	RelayedTotal *prometheus.CounterVec
	PurgedTotal  *prometheus.CounterVec
}

type GoMetrics struct {
	InternalGoroutines *prometheus.GaugeVec
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		Kafka:    newKafkaMetrics(f),
		API:      newAPIMetrics(f),
		Repo:     newRepoMetrics(f),
		Calendar: newCalendarMetrics(f),
		Outbox:   newOutboxMetrics(f),
		Go: GoMetrics{
			InternalGoroutines: f.NewGaugeVec(prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "go",
				Name:      "internal_goroutines",
				Help:      "Number of running internal goroutines by name.",
			}, []string{"name"}),
		},
	}
}

func newKafkaMetrics(f promauto.Factory) KafkaMetrics {
	const subsystem = "kafka"

	return KafkaMetrics{
		ProducerAttemptLatencySeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "producer_attempt_latency_seconds",
			Help:      "Latency of a single produce attempt.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"topic", "result"}), // ok|error

		ProducerOperationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "producer_operations_total",
			Help:      "Produce calls by final result.",
		}, []string{"topic", "result"}), // success|failed|permanent|canceled

		ProducerSuccessAttempts: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "producer_success_attempts",
			Help:      "Attempt number on which a produce call succeeded.",
			Buckets:   []float64{1, 2, 3, 4, 5},
		}, []string{"topic"}),

		ConsumerMessagesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "consumer_messages_total",
			Help:      "Consumed family-link messages by topic and result.",
		}, []string{"topic", "result"}), // ok|malformed|error

		ConsumerProcessDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "consumer_process_duration_seconds",
			Help:      "Time spent applying one consumed message.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"topic"}),

		ConsumerRebalancesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "consumer_rebalances_total",
			Help:      "Consumer group session setups and cleanups.",
		}, []string{"event"}),

		ConsumerInFlight: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "consumer_inflight_messages",
			Help:      "Messages currently being applied.",
		}, []string{"topic"}),
	}
}

func newAPIMetrics(f promauto.Factory) APIMetrics {
	labels := []string{"method", "path", "status"}

	return APIMetrics{
		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, labels),

		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, labels),
	}
}

func newRepoMetrics(f promauto.Factory) RepoMetrics {
	return RepoMetrics{
		RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "requests_total",
			Help:      "DB requests by operation, entity, result and error kind.",
		}, []string{"op", "name", "result", "error_kind"}),

		DurationSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "request_duration_seconds",
			Help:      "DB request duration in seconds.",
			Buckets:   []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"op", "name", "result"}),

		InFlight: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "inflight",
			Help:      "DB requests in progress.",
		}, []string{"op", "name"}),
	}
}

func newCalendarMetrics(f promauto.Factory) CalendarMetrics {
	return CalendarMetrics{
		QueryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "calendar",
			Name:      "query_duration_seconds",
			Help:      "Calendar query duration including expansion.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"role", "windowed"}),

		OccurrencesExpanded: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "calendar",
			Name:      "occurrences_expanded",
			Help:      "Occurrences materialized per recurring event.",
			Buckets:   []float64{0, 1, 5, 10, 50, 100, 500, 1000},
		}),

		ExpansionFailuresTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "calendar",
			Name:      "expansion_failures_total",
			Help:      "Recurring events returned unexpanded, by failure kind.",
		}, []string{"kind"}), // malformed_rule|unbounded|iteration_limit

		DirectoryLookupsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "directory",
			Name:      "lookups_total",
			Help:      "User directory lookups by backend, operation and result.",
		}, []string{"backend", "op", "result"}),
	}
}

func newOutboxMetrics(f promauto.Factory) OutboxMetrics {
	return OutboxMetrics{
		RelayedTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "outbox",
			Name:      "relayed_total",
			Help:      "Outbox records handled by the relay, by event type and outcome.",
		}, []string{"event_type", "result"}), // sent|retry|gave_up

		PurgedTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "outbox",
			Name:      "purged_total",
			Help:      "Rows removed by the retention job.",
		}, []string{"table"}), // events|outbox
	}
}
