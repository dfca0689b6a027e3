package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestHTTPMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)

	m := NewHTTPMetrics()
	router := gin.New()
	router.Use(m.Handler())
	router.GET("/habits/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/habits/a", "/habits/b", "/nope"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	}

	t.Run("Success: Route template is the label", func(t *testing.T) {
		assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("/habits/:id", "GET", "200")))
	})

	t.Run("Edge Case: Unmatched paths share one series", func(t *testing.T) {
		assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("unmatched", "GET", "404")))
	})

	t.Run("Success: Histogram observed", func(t *testing.T) {
		assert.Equal(t, 2, testutil.CollectAndCount(m.duration))
	})
}
