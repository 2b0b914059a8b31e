// Package metrics exposes Prometheus instrumentation for the recipe core
// and its HTTP surface.
package metrics

import (
	"strconv"
	"time"

	"github.com/pageza/foodgram/backend/internal/apperror"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "foodgram_api_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// RecipeWrites counts create, replace and delete outcomes.
	RecipeWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_recipe_writes_total",
			Help: "Recipe write operations by outcome",
		},
		[]string{"operation", "result"},
	)

	CompositionRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_composition_rejections_total",
			Help: "Recipe compositions rejected by validation, by reason",
		},
		[]string{"reason"},
	)

	RelationChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_relation_changes_total",
			Help: "Favorite, cart and subscription changes by outcome",
		},
		[]string{"kind", "operation", "result"},
	)

	ShoppingListLines = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "foodgram_shopping_list_lines",
			Help:    "Number of aggregated lines per generated shopping list",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
		},
	)

	ShoppingListDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "foodgram_shopping_list_duration_seconds",
			Help:    "Time to build a shopping list",
			Buckets: prometheus.DefBuckets,
		},
	)

	RateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
		[]string{"scope"},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordRecipeWrite records a recipe write and its outcome.
func RecordRecipeWrite(operation string, err error) {
	RecipeWrites.WithLabelValues(operation, Result(err)).Inc()
}

// RecordRelationChange records an add or remove on a membership relation.
func RecordRelationChange(kind, operation string, err error) {
	RelationChanges.WithLabelValues(kind, operation, Result(err)).Inc()
}

// RecordShoppingList records the size and build time of a shopping list.
func RecordShoppingList(lines int, duration time.Duration) {
	ShoppingListLines.Observe(float64(lines))
	ShoppingListDuration.Observe(duration.Seconds())
}

// Result buckets an error into a low-cardinality label.
func Result(err error) string {
	if err == nil {
		return "ok"
	}
	switch apperror.Kind(err) {
	case apperror.ErrValidation:
		return "invalid"
	case apperror.ErrConflict:
		return "conflict"
	case apperror.ErrNotFound:
		return "not_found"
	case apperror.ErrForbidden:
		return "forbidden"
	default:
		return "error"
	}
}
