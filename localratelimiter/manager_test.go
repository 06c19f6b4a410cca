package localratelimiter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/mangashelf/mangashelf/internal/config"
)

func newFrozenLimiter(t *testing.T, perSecond float64, burst int) (*RateLimiter, *time.Time) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(ctx, config.RateLimitConfig{SummariesPerSecond: perSecond, Burst: burst})
	rl.now = func() time.Time { return now }
	return rl, &now
}

func TestAllowPerClient(t *testing.T) {
	rl, now := newFrozenLimiter(t, 1, 2)

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"))

	*now = now.Add(time.Second)
	assert.True(t, rl.Allow("10.0.0.1"))
}

func TestRemoveIdle(t *testing.T) {
	rl, now := newFrozenLimiter(t, 1, 1)
	rl.Allow("10.0.0.1")

	*now = now.Add(idleTimeout + time.Second)
	rl.Allow("10.0.0.2")
	rl.removeIdle()

	assert.NotContains(t, rl.clientLimiters, "10.0.0.1")
	assert.Contains(t, rl.clientLimiters, "10.0.0.2")
}

func TestRateLimiterMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl, _ := newFrozenLimiter(t, 1, 1)

	router := gin.New()
	router.Use(rl.RateLimiterMiddleware())
	router.POST("/api/summaries", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		recorder := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/summaries", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		router.ServeHTTP(recorder, req)
		codes = append(codes, recorder.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
}
