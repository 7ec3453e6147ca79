package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ConsoleMetrics содержит метрики ядра консоли: листинг и мутации заказов.
type ConsoleMetrics struct {
	// Счётчики листинга
	queriesTotal   prometheus.Counter
	queryErrors    prometheus.Counter
	staleDiscarded prometheus.Counter

	// Счётчики guard-а мутаций
	mutations      *prometheus.CounterVec
	mutationErrors *prometheus.CounterVec
	deletesBlocked prometheus.Counter

	// Гистограмма времени листинга
	queryDuration prometheus.Histogram
}

// NewConsoleMetrics создаёт метрики ядра с дефолтным registerer-ом.
func NewConsoleMetrics() *ConsoleMetrics {
	return newConsoleMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newConsoleMetricsWithRegisterer(registerer prometheus.Registerer) *ConsoleMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &ConsoleMetrics{
		queriesTotal: registerCounter(registerer, prometheus.CounterOpts{
			Name: "sales_console_queries_total",
			Help: "Total number of sales list queries issued",
		}),
		queryErrors: registerCounter(registerer, prometheus.CounterOpts{
			Name: "sales_console_query_errors_total",
			Help: "Total number of sales list queries that failed",
		}),
		staleDiscarded: registerCounter(registerer, prometheus.CounterOpts{
			Name: "sales_console_stale_responses_discarded_total",
			Help: "Total number of list responses discarded as stale",
		}),
		mutations: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "sales_console_mutations_total",
			Help: "Total number of confirmed order mutations",
		}, []string{"action"}),
		mutationErrors: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "sales_console_mutation_errors_total",
			Help: "Total number of failed order mutations",
		}, []string{"action"}),
		deletesBlocked: registerCounter(registerer, prometheus.CounterOpts{
			Name: "sales_console_deletes_blocked_total",
			Help: "Total number of delete confirmations refused for shipped orders",
		}),
		queryDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "sales_console_query_duration_seconds",
			Help:    "Duration of sales list queries in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// RecordQuery увеличивает счётчик выполненных листингов.
func (m *ConsoleMetrics) RecordQuery() {
	if m == nil {
		return
	}
	m.queriesTotal.Inc()
}

// RecordQueryError увеличивает счётчик неудачных листингов.
func (m *ConsoleMetrics) RecordQueryError() {
	if m == nil {
		return
	}
	m.queryErrors.Inc()
}

// RecordStaleDiscarded увеличивает счётчик отброшенных устаревших ответов.
func (m *ConsoleMetrics) RecordStaleDiscarded() {
	if m == nil {
		return
	}
	m.staleDiscarded.Inc()
}

// RecordMutation увеличивает счётчик подтверждённых мутаций по действию.
func (m *ConsoleMetrics) RecordMutation(action string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(action).Inc()
}

// RecordMutationError увеличивает счётчик неудачных мутаций по действию.
func (m *ConsoleMetrics) RecordMutationError(action string) {
	if m == nil {
		return
	}
	m.mutationErrors.WithLabelValues(action).Inc()
}

// RecordDeleteBlocked увеличивает счётчик отказов удалять отгруженный заказ.
func (m *ConsoleMetrics) RecordDeleteBlocked() {
	if m == nil {
		return
	}
	m.deletesBlocked.Inc()
}

// RecordQueryDuration записывает время выполнения листинга.
func (m *ConsoleMetrics) RecordQueryDuration(duration time.Duration) {
	if m == nil {
		return
	}
	m.queryDuration.Observe(duration.Seconds())
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}
