package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devlink_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// CacheResults counts cache lookups by key prefix and outcome (hit/miss).
	CacheResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devlink_cache_results_total",
		Help: "Total number of cache lookups by outcome",
	}, []string{"prefix", "outcome"})

	// AuthFailures counts rejected requests on protected routes by reason.
	AuthFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devlink_auth_failures_total",
		Help: "Total number of authentication failures by reason",
	}, []string{"reason"})
)

var (
	promOnce sync.Once
	promMW   *fiberprometheus.FiberPrometheus
)

// InitMetrics creates the Prometheus HTTP middleware for the service.
// fiberprometheus registers collectors on the default registry, so the
// instance is created once and shared across servers (tests included).
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		promMW = fiberprometheus.New(serviceName)
	})
	return promMW
}

// MetricsMiddleware adapts the Prometheus middleware to a fiber.Handler.
func MetricsMiddleware(p *fiberprometheus.FiberPrometheus) fiber.Handler {
	return p.Middleware
}
