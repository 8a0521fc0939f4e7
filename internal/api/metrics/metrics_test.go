package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(c prometheus.Counter) float64 {
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		return -1
	}
	return m.GetCounter().GetValue()
}

// requestCount reads logbook_http_requests_total for one route and status
// from the default registry.
func requestCount(t *testing.T, url, code string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "logbook_http_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["url"] == url && labels["code"] == code {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Use(Middleware())
	e.GET("/metrics", Handler())
	return e
}

func TestMiddleware_CountsByRoute(t *testing.T) {
	e := newEcho()
	e.GET("/api/clients/:id", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	before := requestCount(t, "/api/clients/:id", "200")

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/clients/abc", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, before+1, requestCount(t, "/api/clients/:id", "200"))
}

func TestMiddleware_RecordsRenderedErrorStatus(t *testing.T) {
	e := newEcho()
	e.GET("/boom", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusTeapot, "short and stout")
	})

	before := requestCount(t, "/boom", "418")

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)

	assert.Equal(t, before+1, requestCount(t, "/boom", "418"))
}

func TestHandler_ExposesCustomCollectors(t *testing.T) {
	ObserveAuth("register", nil)

	rec := httptest.NewRecorder()
	newEcho().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "logbook_auth_attempts_total")
}

func TestObserveAuth(t *testing.T) {
	before := counterValue(AuthAttemptsTotal.WithLabelValues("login", "failure"))
	ObserveAuth("login", errors.New("nope"))
	assert.Equal(t, before+1, counterValue(AuthAttemptsTotal.WithLabelValues("login", "failure")))
}
