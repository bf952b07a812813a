package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareCountsRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()

	router := gin.New()
	router.Use(m.Middleware())
	router.GET("/objects/:container/*prefix", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/metrics", gin.WrapH(m.Handler()))

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/objects/photos/a/", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("/objects/:container/*prefix", "GET", "200")))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, w.Body.String(), "swiftbrowser_http_requests_total")
}

func TestObserveSwift(t *testing.T) {
	m := New()
	m.ObserveSwift("container_list", nil)
	m.ObserveSwift("container_list", errors.New("boom"))
	m.ObserveSwift("container_list", nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.swiftOps.WithLabelValues("container_list", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.swiftOps.WithLabelValues("container_list", "error")))

	var nilMetrics *Metrics
	assert.NotPanics(t, func() { nilMetrics.ObserveSwift("noop", nil) })
}
