package http

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func setupRateLimitedRouter(t *testing.T, rps float64, burst int) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := gin.New()
	router.POST("/limited", RateLimitMiddleware(rps, burst, logger), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	return router
}

func doRateLimitedRequest(router *gin.Engine, clientIP string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/limited", nil)
	req.Header.Set("X-Forwarded-For", clientIP)
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("AllowsRequestsWithinBurst", func(t *testing.T) {
		router := setupRateLimitedRouter(t, 1.0, 3)

		for i := 0; i < 3; i++ {
			w := doRateLimitedRequest(router, "10.0.0.1")
			assert.Equal(t, http.StatusNoContent, w.Code)
		}
	})

	t.Run("RejectsRequestsOverBurst", func(t *testing.T) {
		router := setupRateLimitedRouter(t, 1.0, 2)

		doRateLimitedRequest(router, "10.0.0.2")
		doRateLimitedRequest(router, "10.0.0.2")
		w := doRateLimitedRequest(router, "10.0.0.2")

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.NotEmpty(t, w.Header().Get("Retry-After"))
		assert.Contains(t, w.Body.String(), "rate_limit_exceeded")
	})

	t.Run("LimitsAreIndependentPerIP", func(t *testing.T) {
		router := setupRateLimitedRouter(t, 1.0, 1)

		first := doRateLimitedRequest(router, "10.0.0.3")
		assert.Equal(t, http.StatusNoContent, first.Code)

		blocked := doRateLimitedRequest(router, "10.0.0.3")
		assert.Equal(t, http.StatusTooManyRequests, blocked.Code)

		other := doRateLimitedRequest(router, "10.0.0.4")
		assert.Equal(t, http.StatusNoContent, other.Code)
	})
}
