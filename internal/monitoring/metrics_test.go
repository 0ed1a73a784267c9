package monitoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecordAnalysisRun(t *testing.T) {
	m := NewMetrics()

	m.RecordAnalysisRun(10, 2, 5, false)
	m.RecordAnalysisRun(3, 0, 1, true)

	stats := m.GetStats()
	assert.Equal(t, int64(2), stats["analysis_runs"])
	assert.Equal(t, int64(13), stats["contributors_analyzed"])
	assert.Equal(t, int64(2), stats["contributors_failed"])
	assert.Equal(t, int64(6), stats["insights_generated"])
	assert.Equal(t, int64(1), stats["synthetic_trends"])
}

func TestCacheHitRate(t *testing.T) {
	m := NewMetrics()

	m.IncrementCacheHit()
	m.IncrementCacheHit()
	m.IncrementCacheHit()
	m.IncrementCacheMiss()

	stats := m.GetStats()
	assert.Equal(t, int64(3), stats["cache_hits"])
	assert.Equal(t, int64(1), stats["cache_misses"])
	assert.Equal(t, 75.0, stats["cache_hit_rate_percent"])
}

func TestPercentileResponseTime(t *testing.T) {
	m := NewMetrics()

	assert.Equal(t, time.Duration(0), m.GetPercentileResponseTime(95))

	for i := 1; i <= 100; i++ {
		m.RecordResponseTime(time.Duration(i) * time.Millisecond)
	}

	p50 := m.GetPercentileResponseTime(50)
	p99 := m.GetPercentileResponseTime(99)
	assert.Greater(t, p99, p50)
	assert.LessOrEqual(t, p99, 100*time.Millisecond)
}

func TestExternalAPIStats(t *testing.T) {
	m := NewMetrics()

	m.RecordExternalAPIRequest("GitHub", true)
	m.RecordExternalAPIRequest("GitHub", true)
	m.RecordExternalAPIRequest("GitHub", false)

	stats := m.GetExternalAPIStats()
	github, ok := stats["GitHub"].(map[string]interface{})
	assert.True(t, ok)
	assert.Equal(t, int64(3), github["requests"])
	assert.Equal(t, int64(1), github["errors"])
}

func TestRateLimitStats(t *testing.T) {
	m := NewMetrics()

	m.IncrementRateLimitIPBlock()
	m.IncrementRateLimitFallback()
	m.IncrementRateLimitEndpoint("analyze")
	m.IncrementRateLimitEndpoint("analyze")

	stats := m.GetRateLimitStats()
	assert.Equal(t, int64(1), stats["ip_blocks"])
	assert.Equal(t, int64(1), stats["fallback_count"])
	assert.Equal(t, map[string]int64{"analyze": 2}, stats["endpoint_blocks"])
}

func TestReset(t *testing.T) {
	m := NewMetrics()
	m.IncrementRequest()
	m.RecordAnalysisRun(5, 1, 2, true)
	m.RecordRequestByStatus(200)

	m.Reset()

	stats := m.GetStats()
	assert.Equal(t, int64(0), stats["total_requests"])
	assert.Equal(t, int64(0), stats["analysis_runs"])
	assert.Empty(t, m.GetStatusCodeDistribution())
}
