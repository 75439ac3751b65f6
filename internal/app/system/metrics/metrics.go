// Package metrics exposes the Prometheus instruments for meal planning
// and grocery list building, plus the /metrics handler.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics holds the application's Prometheus metrics.
type Metrics struct {
	// Meal-plan generation
	GenerationsTotal   *prometheus.CounterVec
	MealsCreatedTotal  prometheus.Counter
	GenerationDuration prometheus.Histogram

	// Grocery lists
	GroceryListsTotal prometheus.Counter
	GroceryItemsTotal prometheus.Counter

	// Access decisions that ended in a denial
	AccessDeniedTotal *prometheus.CounterVec
}

// New creates and registers the metrics once per process. Subsequent calls
// return the same instance.
//
// Metrics:
//   - mealhub_generations_total{result} - generation runs by outcome
//   - mealhub_meals_created_total - calendar meal rows written by generation
//   - mealhub_generation_duration_seconds - generation run time
//   - mealhub_grocery_lists_total - grocery lists built
//   - mealhub_grocery_items_total - consolidated items written to lists
//   - mealhub_access_denied_total{kind,action} - refused reads and writes
func New() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			GenerationsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "mealhub_generations_total",
					Help: "Total number of meal-plan generation runs",
				},
				[]string{"result"}, // "ok", "invalid", "empty_pool", "forbidden", "error"
			),
			MealsCreatedTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "mealhub_meals_created_total",
					Help: "Total number of calendar meals created by generation",
				},
			),
			GenerationDuration: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "mealhub_generation_duration_seconds",
					Help:    "Duration of meal-plan generation in seconds",
					Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
				},
			),
			GroceryListsTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "mealhub_grocery_lists_total",
					Help: "Total number of grocery lists built from calendars",
				},
			),
			GroceryItemsTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "mealhub_grocery_items_total",
					Help: "Total number of consolidated grocery items written",
				},
			),
			AccessDeniedTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "mealhub_access_denied_total",
					Help: "Total number of denied resource accesses",
				},
				[]string{"kind", "action"},
			),
		}
	})
	return globalMetrics
}

// RecordGeneration records one generation run. mealsCreated is only counted for successful runs.
func (m *Metrics) RecordGeneration(result string, mealsCreated int, seconds float64) {
	if m == nil {
		return
	}
	m.GenerationsTotal.WithLabelValues(result).Inc()
	m.GenerationDuration.Observe(seconds)
	if result == "ok" {
		m.MealsCreatedTotal.Add(float64(mealsCreated))
	}
}

// RecordGroceryList records a built grocery list and its item count.
func (m *Metrics) RecordGroceryList(items int) {
	if m == nil {
		return
	}
	m.GroceryListsTotal.Inc()
	m.GroceryItemsTotal.Add(float64(items))
}

// RecordDenied records a refused access.
func (m *Metrics) RecordDenied(kind, action string) {
	if m == nil {
		return
	}
	m.AccessDeniedTotal.WithLabelValues(kind, action).Inc()
}

// Handler serves the default Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
