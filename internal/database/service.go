package database

import (
	"context"
	"fmt"
	"time"

	"github.com/anish877/maintainer-dashboard-sub000/internal/types"
)

const (
	// RecentWindowDays is the trailing window treated as "recent" activity.
	RecentWindowDays = 30

	// HistoricalWindowDays is how far before the recent window the
	// "historical" baseline reaches.
	HistoricalWindowDays = 60
)

// ActivityService derives contribution count windows from the stored raw
// activity. The scoring engine consumes these as its only input.
type ActivityService struct {
	repo *Repository
	now  func() time.Time
}

// NewActivityService creates an activity service
func NewActivityService(repo *Repository) *ActivityService {
	return &ActivityService{repo: repo, now: time.Now}
}

// WithClock overrides the time source, for tests.
func (s *ActivityService) WithClock(now func() time.Time) *ActivityService {
	s.now = now
	return s
}

// ContributionCounts splits a contributor's stored activity into the recent
// window (last 30 days) and the historical baseline (the 60 days before
// that). totalContributions comes from the upstream API because the local
// store only covers the sync horizon.
func (s *ActivityService) ContributionCounts(ctx context.Context, repositoryID, contributorID string, totalContributions int) (types.RawContributionCount, error) {
	var counts types.RawContributionCount
	counts.TotalContributions = totalContributions

	today := dayUTC(s.now())
	recentFrom := today.AddDate(0, 0, -(RecentWindowDays - 1))
	historicalFrom := recentFrom.AddDate(0, 0, -HistoricalWindowDays)
	historicalTo := recentFrom.AddDate(0, 0, -1)

	recent, err := s.repo.DailyActivity(ctx, repositoryID, contributorID, recentFrom, today)
	if err != nil {
		return counts, fmt.Errorf("failed to load recent activity: %w", err)
	}
	for _, act := range recent {
		counts.RecentIssues += act.Issues
		counts.RecentPRs += act.PRs
	}

	historical, err := s.repo.DailyActivity(ctx, repositoryID, contributorID, historicalFrom, historicalTo)
	if err != nil {
		return counts, fmt.Errorf("failed to load historical activity: %w", err)
	}
	for _, act := range historical {
		counts.HistoricalIssues += act.Issues
		counts.HistoricalPRs += act.PRs
	}

	return counts, nil
}

func dayUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
