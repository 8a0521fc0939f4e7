// Package metrics defines the custom Prometheus metrics of the logbook API
// and the Echo middleware that records HTTP traffic.
//
// Every collector is registered with the default registry, through promauto
// or echoprometheus, so /metrics only needs Handler().
package metrics

import (
	"sync"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "logbook"

// RateLimitedTotal counts requests rejected by the rate limiter.
var RateLimitedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Total number of requests rejected with 429.",
	},
)

// ── Domain metrics ────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts authentication operations.
// Labels:
//   - operation: "register", "login" or "change_password"
//   - result: "success" or "failure"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of authentication attempts, by operation and result.",
	},
	[]string{"operation", "result"},
)

// ClientsCreatedTotal counts newly created client records.
// Label:
//   - agency: the client's agency (e.g. "MSME")
var ClientsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "clients_created_total",
		Help:      "Total number of clients created, by agency.",
	},
	[]string{"agency"},
)

// ObserveAuth records the outcome of an authentication operation.
func ObserveAuth(operation string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	AuthAttemptsTotal.WithLabelValues(operation, result).Inc()
}

// httpMiddleware registers the request collectors once per process.
var httpMiddleware = sync.OnceValue(func() echo.MiddlewareFunc {
	return echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:                 namespace,
		Subsystem:                 "http",
		DoNotUseRequestPathFor404: true,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	})
})

// Middleware records request count, latency and sizes per route template.
// Handler errors are rendered before the status is read, so domain errors
// are counted under their final status code.
func Middleware() echo.MiddlewareFunc {
	record := httpMiddleware()
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return record(func(c echo.Context) error {
			if err := next(c); err != nil {
				c.Error(err)
			}
			return nil
		})
	}
}

// Handler serves the default registry in the Prometheus exposition format.
func Handler() echo.HandlerFunc {
	return echoprometheus.NewHandler()
}
