package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestHTTPMiddleware_RecordsRouteAndCode(t *testing.T) {
	e := echo.New()
	e.Use(HTTPMiddleware())
	e.GET("/files/:key", func(c echo.Context) error { return c.String(http.StatusOK, "pdf") })
	e.POST("/punch/export", func(c echo.Context) error { return echo.NewHTTPError(http.StatusTooManyRequests) })

	okBefore := testutil.ToFloat64(httpRequests.WithLabelValues(http.MethodGet, "/files/:key", "200"))
	limitedBefore := testutil.ToFloat64(httpRequests.WithLabelValues(http.MethodPost, "/punch/export", "429"))

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/files/a.pdf", nil))
	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/punch/export", nil))

	assert.Equal(t, okBefore+1, testutil.ToFloat64(httpRequests.WithLabelValues(http.MethodGet, "/files/:key", "200")))
	assert.Equal(t, limitedBefore+1, testutil.ToFloat64(httpRequests.WithLabelValues(http.MethodPost, "/punch/export", "429")))
	assert.Zero(t, testutil.ToFloat64(httpInFlight))
}

func TestCheckDependency(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, "ok", CheckDependency(ctx, "redis", func(context.Context) error { return nil }))
	assert.Equal(t, 1.0, testutil.ToFloat64(dependencyUp.WithLabelValues("redis")))

	assert.Equal(t, "down", CheckDependency(ctx, "redis", func(context.Context) error { return errors.New("refused") }))
	assert.Equal(t, 0.0, testutil.ToFloat64(dependencyUp.WithLabelValues("redis")))
}

func TestAddScheduledOutcomes(t *testing.T) {
	before := testutil.ToFloat64(scheduledRunsTotal.WithLabelValues("sent"))
	AddScheduledOutcomes(2, 1, 0)
	assert.Equal(t, before+2, testutil.ToFloat64(scheduledRunsTotal.WithLabelValues("sent")))
}

func TestIncRateLimitExceeded_DefaultsLabels(t *testing.T) {
	before := testutil.ToFloat64(rateLimitExceeded.WithLabelValues("unknown", "ip"))
	IncRateLimitExceeded("", "ip")
	assert.Equal(t, before+1, testutil.ToFloat64(rateLimitExceeded.WithLabelValues("unknown", "ip")))
}
