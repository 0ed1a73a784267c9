package dashboard

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anish877/maintainer-dashboard-sub000/internal/analysis"
)

type fakeStore struct {
	snapshots []analysis.HealthSnapshot
	insights  []analysis.Insight
	activity  map[time.Time]analysis.DayActivity
	err       error
}

func (f *fakeStore) SnapshotsByRepository(context.Context, string) ([]analysis.HealthSnapshot, error) {
	return f.snapshots, f.err
}

func (f *fakeStore) ActiveInsights(context.Context, string) ([]analysis.Insight, error) {
	return f.insights, f.err
}

func (f *fakeStore) RepositoryActivity(context.Context, string, time.Time, time.Time) (map[time.Time]analysis.DayActivity, error) {
	return f.activity, f.err
}

func fixedClock() time.Time {
	return time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
}

func TestRepositoryHealthPayload(t *testing.T) {
	store := &fakeStore{
		snapshots: []analysis.HealthSnapshot{
			{ContributorID: "alice", RetentionScore: 90, EngagementScore: 80, IsRisingStar: true, Country: "Japan", Timezone: "Asia/Tokyo"},
			{ContributorID: "bob", RetentionScore: 50, EngagementScore: 20, IsAtRisk: true, Country: "Japan", Timezone: "Asia/Tokyo"},
			{ContributorID: "carol", RetentionScore: 10, EngagementScore: 14, IsFirstTime: true},
		},
		activity: map[time.Time]analysis.DayActivity{
			time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC): {Issues: 1, PRs: 1},
		},
	}
	service := NewService(store).WithClock(fixedClock)

	payload, err := service.RepositoryHealth(context.Background(), "octo/hello")
	require.NoError(t, err)

	assert.Equal(t, "octo/hello", payload.RepositoryID)
	assert.Equal(t, fixedClock(), payload.GeneratedAt)
	assert.Len(t, payload.Snapshots, 3)
	assert.False(t, payload.Trend.Synthetic)
	assert.Len(t, payload.Trend.Points, analysis.DefaultTrendWindowDays)

	agg := payload.Aggregates
	assert.Equal(t, 3, agg.Contributors)
	assert.Equal(t, 1, agg.FirstTime)
	assert.Equal(t, 1, agg.AtRisk)
	assert.Equal(t, 1, agg.RisingStars)
	assert.Equal(t, 50.0, agg.AvgRetention)
	assert.Equal(t, 38.0, agg.AvgEngagement)
	assert.Equal(t, map[string]int{"Japan": 2}, agg.Countries)
	assert.Equal(t, map[string]int{"Asia/Tokyo": 2}, agg.Timezones)
}

func TestRepositoryHealthDistributionBands(t *testing.T) {
	store := &fakeStore{
		snapshots: []analysis.HealthSnapshot{
			{RetentionScore: 100},
			{RetentionScore: 80}, // boundary lands in excellent
			{RetentionScore: 79.9},
			{RetentionScore: 60},
			{RetentionScore: 59.9},
			{RetentionScore: 40},
			{RetentionScore: 39.9},
			{RetentionScore: 0},
		},
	}
	service := NewService(store).WithClock(fixedClock).WithRand(rand.New(rand.NewSource(1)))

	payload, err := service.RepositoryHealth(context.Background(), "octo/hello")
	require.NoError(t, err)

	assert.Equal(t, Distribution{Excellent: 2, Good: 2, Fair: 2, Poor: 2}, payload.Distribution)
}

func TestRepositoryHealthEmptyRepository(t *testing.T) {
	store := &fakeStore{}
	service := NewService(store).WithClock(fixedClock).WithRand(rand.New(rand.NewSource(1)))

	payload, err := service.RepositoryHealth(context.Background(), "octo/hello")
	require.NoError(t, err)

	assert.Empty(t, payload.Snapshots)
	assert.Zero(t, payload.Aggregates.Contributors)
	assert.Zero(t, payload.Aggregates.AvgRetention)
	// Nothing stored means the trend is placeholder data, flagged as such.
	assert.True(t, payload.Trend.Synthetic)
}

func TestRepositoryHealthPropagatesStoreErrors(t *testing.T) {
	store := &fakeStore{err: errors.New("db closed")}
	service := NewService(store)

	_, err := service.RepositoryHealth(context.Background(), "octo/hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db closed")
}

func TestSortInsights(t *testing.T) {
	older := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	insights := []analysis.Insight{
		{Type: analysis.InsightFirstTime, Severity: analysis.SeverityInfo, Confidence: 95, UpdatedAt: older},
		{Type: analysis.InsightHighPerformer, Severity: analysis.SeveritySuccess, Confidence: 90, UpdatedAt: newer},
		{Type: analysis.InsightBurnoutWarning, Severity: analysis.SeverityCritical, Confidence: 75, UpdatedAt: newer},
		{Type: analysis.InsightAtRisk, Severity: analysis.SeverityWarning, Confidence: 88, UpdatedAt: newer},
	}
	sortInsights(insights)

	// Newest first; within the same timestamp, severity outranks confidence.
	assert.Equal(t, analysis.InsightBurnoutWarning, insights[0].Type)
	assert.Equal(t, analysis.InsightAtRisk, insights[1].Type)
	assert.Equal(t, analysis.InsightHighPerformer, insights[2].Type)
	assert.Equal(t, analysis.InsightFirstTime, insights[3].Type)
}
