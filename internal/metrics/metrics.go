// Package metrics exposes store and import activity to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MrJamesThe3rd/budgetit/internal/budget"
	"github.com/MrJamesThe3rd/budgetit/internal/report"
)

// Metrics is a budget.Observer counting diagnostic events, plus gauges
// sampled from the store on every scrape.
type Metrics struct {
	registry *prometheus.Registry
	events   *prometheus.CounterVec
}

// New registers the event counter and runtime collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "budgetit",
			Name:      "events_total",
			Help:      "Diagnostic events emitted by the store and importers.",
		}, []string{"kind", "entity"}),
	}

	m.registry.MustRegister(
		m.events,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Watch exports entity counts and totals of store, read at scrape time.
func (m *Metrics) Watch(store *budget.Store) {
	m.registry.MustRegister(&stateCollector{store: store})
}

func (m *Metrics) Observe(ev budget.Event) {
	m.events.WithLabelValues(string(ev.Kind), ev.Entity).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

var (
	entitiesDesc = prometheus.NewDesc("budgetit_entities", "Number of stored entities.", []string{"entity"}, nil)
	amountDesc   = prometheus.NewDesc("budgetit_amount_euros", "Summed amounts.", []string{"figure"}, nil)
)

// stateCollector reads the store snapshot at scrape time.
type stateCollector struct {
	store *budget.Store
}

func (c *stateCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- entitiesDesc
	ch <- amountDesc
}

func (c *stateCollector) Collect(ch chan<- prometheus.Metric) {
	st := c.store.State()

	counts := map[string]int{
		"budget":   len(st.Budgets),
		"expense":  len(st.Expenses),
		"category": len(st.Categories),
		"service":  len(st.Services),
	}
	for entity, n := range counts {
		ch <- prometheus.MustNewConstMetric(entitiesDesc, prometheus.GaugeValue, float64(n), entity)
	}

	sum := report.Summarize(st)
	unbudgeted := report.UnbudgetedStats(st, 0)

	ch <- prometheus.MustNewConstMetric(amountDesc, prometheus.GaugeValue, sum.TotalBudget, "budget")
	ch <- prometheus.MustNewConstMetric(amountDesc, prometheus.GaugeValue, sum.TotalExpenses, "expenses")
	ch <- prometheus.MustNewConstMetric(amountDesc, prometheus.GaugeValue, unbudgeted.UnbudgetedTotal, "unbudgeted")
}
