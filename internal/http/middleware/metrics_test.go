package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_CountsByRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Metrics())
	r.GET("/matches/:id/messages", func(c *gin.Context) { c.JSON(http.StatusOK, []string{}) })
	r.DELETE("/blocks/:targetId", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	msgs := httpReqs.WithLabelValues(http.MethodGet, "/matches/:id/messages", "200")
	unblock := httpReqs.WithLabelValues(http.MethodDelete, "/blocks/:targetId", "204")
	missing := httpReqs.WithLabelValues(http.MethodGet, unmatchedRoute, "404")
	before := []float64{testutil.ToFloat64(msgs), testutil.ToFloat64(unblock), testutil.ToFloat64(missing)}

	for _, target := range []string{"/matches/m-1/messages", "/matches/m-2/messages"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, target, nil))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/blocks/u-9", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/profiles/u-9", nil))

	if got := testutil.ToFloat64(msgs); got != before[0]+2 {
		t.Fatalf("messages counter = %v; want %v", got, before[0]+2)
	}
	if got := testutil.ToFloat64(unblock); got != before[1]+1 {
		t.Fatalf("unblock counter = %v; want %v", got, before[1]+1)
	}
	if got := testutil.ToFloat64(missing); got != before[2]+1 {
		t.Fatalf("unmatched counter = %v; want %v", got, before[2]+1)
	}
	if got := testutil.ToFloat64(httpInflight); got != 0 {
		t.Fatalf("inflight = %v; want 0", got)
	}
}

func TestRouteLabel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	var got string
	r.GET("/matches/:id", func(c *gin.Context) { got = routeLabel(c) })
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/matches/abc", nil))
	if got != "/matches/:id" {
		t.Fatalf("routeLabel = %q", got)
	}
}
