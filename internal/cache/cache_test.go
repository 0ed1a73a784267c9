package cache

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anish877/maintainer-dashboard-sub000/internal/monitoring"
)

func TestCacheSetGet(t *testing.T) {
	c := NewCache(time.Minute)

	_, found := c.Get("missing")
	assert.False(t, found)

	c.Set("key", []byte("payload"))
	data, found := c.Get("key")
	assert.True(t, found)
	assert.Equal(t, []byte("payload"), data)
}

func TestCacheExpiry(t *testing.T) {
	c := NewCache(10 * time.Millisecond)
	c.Set("key", []byte("payload"))

	time.Sleep(20 * time.Millisecond)

	_, found := c.Get("key")
	assert.False(t, found)
}

func TestCacheClearAndSize(t *testing.T) {
	c := NewCache(time.Minute)
	c.Set("a", []byte("1"))
	c.Set("b", []byte("2"))
	assert.Equal(t, 2, c.Size())

	c.Delete("a")
	assert.Equal(t, 1, c.Size())

	c.Clear()
	assert.Zero(t, c.Size())
}

func TestCacheStats(t *testing.T) {
	c := NewCache(time.Minute)
	c.Set("a", []byte("1"))

	stats := c.Stats()
	assert.Equal(t, 1, stats["total_items"])
	assert.Equal(t, 0, stats["expired_items"])
	assert.Equal(t, 1, stats["active_items"])
	assert.Equal(t, 60.0, stats["ttl_seconds"])
}

func newCachedRouter(c *Cache, hits *int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(c.Middleware(monitoring.NewMetrics()))

	handler := func(ctx *gin.Context) {
		*hits++
		ctx.JSON(http.StatusOK, gin.H{"hits": *hits})
	}
	r.GET("/api/repos/:owner/:repo/health", handler)
	r.POST("/api/repos/:owner/:repo/analyze", handler)
	r.GET("/metrics", handler)
	return r
}

func TestMiddlewareCachesAPIGets(t *testing.T) {
	c := NewCache(time.Minute)
	hits := 0
	r := newCachedRouter(c, &hits)

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/api/repos/octo/hello/health", nil))
	require.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	r.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/api/repos/octo/hello/health", nil))
	require.Equal(t, http.StatusOK, second.Code)

	// Second request served from cache, handler ran once.
	assert.Equal(t, 1, hits)
	assert.Equal(t, first.Body.String(), second.Body.String())
}

func TestMiddlewareDistinguishesQueryStrings(t *testing.T) {
	c := NewCache(time.Minute)
	hits := 0
	r := newCachedRouter(c, &hits)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/repos/octo/hello/health?days=7", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/repos/octo/hello/health?days=30", nil))

	assert.Equal(t, 2, hits)
}

func TestMiddlewareSkipsWrites(t *testing.T) {
	c := NewCache(time.Minute)
	hits := 0
	r := newCachedRouter(c, &hits)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/repos/octo/hello/analyze", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}

	assert.Equal(t, 2, hits)
	assert.Zero(t, c.Size())
}

func TestMiddlewareSkipsNonAPIPaths(t *testing.T) {
	c := NewCache(time.Minute)
	hits := 0
	r := newCachedRouter(c, &hits)

	for i := 0; i < 2; i++ {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics", nil))
	}

	assert.Equal(t, 2, hits)
	assert.Zero(t, c.Size())
}

func TestMiddlewareClearInvalidates(t *testing.T) {
	c := NewCache(time.Minute)
	hits := 0
	r := newCachedRouter(c, &hits)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/repos/octo/hello/health", nil))
	c.Clear()
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/repos/octo/hello/health", nil))

	assert.Equal(t, 2, hits)
}
