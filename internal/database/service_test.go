package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContributionCountsSplitsWindows(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	today := utcDay(2026, 3, 15)
	service := NewActivityService(repo).WithClock(func() time.Time { return now })

	// Inside the recent window (last 30 days including today).
	require.NoError(t, repo.UpsertActivity(ctx, NewActivityRecord("octo/hello", "alice", today, 2, 1)))
	require.NoError(t, repo.UpsertActivity(ctx, NewActivityRecord("octo/hello", "alice", today.AddDate(0, 0, -29), 1, 0)))

	// Inside the historical window (the 60 days before that).
	require.NoError(t, repo.UpsertActivity(ctx, NewActivityRecord("octo/hello", "alice", today.AddDate(0, 0, -30), 0, 4)))
	require.NoError(t, repo.UpsertActivity(ctx, NewActivityRecord("octo/hello", "alice", today.AddDate(0, 0, -89), 3, 0)))

	// Before both windows, must not be counted at all.
	require.NoError(t, repo.UpsertActivity(ctx, NewActivityRecord("octo/hello", "alice", today.AddDate(0, 0, -90), 9, 9)))

	counts, err := service.ContributionCounts(ctx, "octo/hello", "alice", 42)
	require.NoError(t, err)

	assert.Equal(t, 42, counts.TotalContributions)
	assert.Equal(t, 3, counts.RecentIssues)
	assert.Equal(t, 1, counts.RecentPRs)
	assert.Equal(t, 3, counts.HistoricalIssues)
	assert.Equal(t, 4, counts.HistoricalPRs)
}

func TestContributionCountsNoActivity(t *testing.T) {
	repo := newTestRepository(t)
	service := NewActivityService(repo)

	counts, err := service.ContributionCounts(context.Background(), "octo/hello", "ghost", 7)
	require.NoError(t, err)

	assert.Equal(t, 7, counts.TotalContributions)
	assert.Zero(t, counts.RecentIssues)
	assert.Zero(t, counts.RecentPRs)
	assert.Zero(t, counts.HistoricalIssues)
	assert.Zero(t, counts.HistoricalPRs)
}

func TestContributionCountsIgnoresOtherRepositories(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	service := NewActivityService(repo).WithClock(func() time.Time { return now })

	require.NoError(t, repo.UpsertActivity(ctx, NewActivityRecord("octo/other", "alice", utcDay(2026, 3, 14), 5, 5)))

	counts, err := service.ContributionCounts(ctx, "octo/hello", "alice", 0)
	require.NoError(t, err)
	assert.Zero(t, counts.RecentIssues)
	assert.Zero(t, counts.RecentPRs)
}
