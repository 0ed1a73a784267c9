package dashboard

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/anish877/maintainer-dashboard-sub000/internal/analysis"
)

// Store is the read side the dashboard needs from persistence.
type Store interface {
	SnapshotsByRepository(ctx context.Context, repositoryID string) ([]analysis.HealthSnapshot, error)
	ActiveInsights(ctx context.Context, repositoryID string) ([]analysis.Insight, error)
	RepositoryActivity(ctx context.Context, repositoryID string, from, to time.Time) (map[time.Time]analysis.DayActivity, error)
}

// Aggregates summarizes the contributor population of a repository.
type Aggregates struct {
	Contributors  int            `json:"contributors"`
	FirstTime     int            `json:"first_time"`
	AtRisk        int            `json:"at_risk"`
	RisingStars   int            `json:"rising_stars"`
	AvgRetention  float64        `json:"avg_retention"`
	AvgEngagement float64        `json:"avg_engagement"`
	Countries     map[string]int `json:"countries"`
	Timezones     map[string]int `json:"timezones"`
}

// Distribution buckets contributors by retention score band.
type Distribution struct {
	Excellent int `json:"excellent"` // 80 and above
	Good      int `json:"good"`      // 60 to 79
	Fair      int `json:"fair"`      // 40 to 59
	Poor      int `json:"poor"`      // below 40
}

// RepositoryHealth is the full dashboard payload for one repository.
type RepositoryHealth struct {
	RepositoryID string                    `json:"repository_id"`
	GeneratedAt  time.Time                 `json:"generated_at"`
	Aggregates   Aggregates                `json:"aggregates"`
	Distribution Distribution              `json:"distribution"`
	Trend        analysis.TrendSeries      `json:"trend"`
	Snapshots    []analysis.HealthSnapshot `json:"snapshots"`
	Insights     []analysis.Insight        `json:"insights"`
}

// Service assembles dashboard payloads from stored analysis results.
type Service struct {
	store Store
	now   func() time.Time
	rng   *rand.Rand
}

// NewService creates a dashboard service
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// WithClock overrides the time source, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// WithRand fixes the random source used when the trend falls back to
// synthetic data, for tests.
func (s *Service) WithRand(rng *rand.Rand) *Service {
	s.rng = rng
	return s
}

// RepositoryHealth builds the dashboard payload for a repository from its
// stored snapshots, insights and activity. It is a pure read; nothing is
// recomputed or persisted.
func (s *Service) RepositoryHealth(ctx context.Context, repositoryID string) (*RepositoryHealth, error) {
	snapshots, err := s.store.SnapshotsByRepository(ctx, repositoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshots: %w", err)
	}

	insights, err := s.store.ActiveInsights(ctx, repositoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load insights: %w", err)
	}
	sortInsights(insights)

	now := s.now()
	today := dayUTC(now)
	from := today.AddDate(0, 0, -(analysis.DefaultTrendWindowDays - 1))
	activity, err := s.store.RepositoryActivity(ctx, repositoryID, from, today)
	if err != nil {
		return nil, fmt.Errorf("failed to load activity: %w", err)
	}

	return &RepositoryHealth{
		RepositoryID: repositoryID,
		GeneratedAt:  now,
		Aggregates:   buildAggregates(snapshots),
		Distribution: buildDistribution(snapshots),
		Trend:        analysis.BuildTrend(activity, analysis.DefaultTrendWindowDays, now, s.rng),
		Snapshots:    snapshots,
		Insights:     insights,
	}, nil
}

// sortInsights orders insights newest first, breaking timestamp ties by
// severity and then confidence so the most urgent of a batch surfaces first.
func sortInsights(insights []analysis.Insight) {
	sort.SliceStable(insights, func(i, j int) bool {
		a, b := insights[i], insights[j]
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		if a.Severity.Rank() != b.Severity.Rank() {
			return a.Severity.Rank() > b.Severity.Rank()
		}
		return a.Confidence > b.Confidence
	})
}

func buildAggregates(snapshots []analysis.HealthSnapshot) Aggregates {
	agg := Aggregates{
		Contributors: len(snapshots),
		Countries:    make(map[string]int),
		Timezones:    make(map[string]int),
	}

	var retentionSum, engagementSum float64
	for i := range snapshots {
		s := &snapshots[i]
		retentionSum += s.RetentionScore
		engagementSum += s.EngagementScore

		if s.IsFirstTime {
			agg.FirstTime++
		}
		if s.IsAtRisk {
			agg.AtRisk++
		}
		if s.IsRisingStar {
			agg.RisingStars++
		}
		if s.Country != "" {
			agg.Countries[s.Country]++
		}
		if s.Timezone != "" {
			agg.Timezones[s.Timezone]++
		}
	}

	if len(snapshots) > 0 {
		agg.AvgRetention = retentionSum / float64(len(snapshots))
		agg.AvgEngagement = engagementSum / float64(len(snapshots))
	}

	return agg
}

func buildDistribution(snapshots []analysis.HealthSnapshot) Distribution {
	var dist Distribution
	for i := range snapshots {
		switch score := snapshots[i].RetentionScore; {
		case score >= 80:
			dist.Excellent++
		case score >= 60:
			dist.Good++
		case score >= 40:
			dist.Fair++
		default:
			dist.Poor++
		}
	}
	return dist
}

func dayUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
