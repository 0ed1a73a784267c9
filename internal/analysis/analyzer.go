package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/anish877/maintainer-dashboard-sub000/internal/types"
)

// DefaultMaxBatch bounds how many contributors one run processes, keeping
// the cost of the upstream API fetches predictable.
const DefaultMaxBatch = 50

// Store is the persistence the analyzer needs. All writes are idempotent
// upserts keyed by natural identity; internal/database.Repository implements
// this over sqlite.
type Store interface {
	// DailyActivity returns one contributor's per-day issue/PR counts within
	// [from, to], keyed by midnight-UTC day.
	DailyActivity(ctx context.Context, repositoryID, contributorID string, from, to time.Time) (map[time.Time]DayActivity, error)

	// RepositoryActivity returns repository-wide per-day counts summed
	// across contributors within [from, to].
	RepositoryActivity(ctx context.Context, repositoryID string, from, to time.Time) (map[time.Time]DayActivity, error)

	// UpsertSnapshot replaces the snapshot for its (repository, contributor)
	// pair.
	UpsertSnapshot(ctx context.Context, s *HealthSnapshot) error

	// UpsertDailyMetric inserts or overwrites the record for its
	// (contributor, day) pair.
	UpsertDailyMetric(ctx context.Context, m *DailyMetric) error

	// UpsertInsight creates the record for its (repository, contributor,
	// type) key or refreshes the existing one in place.
	UpsertInsight(ctx context.Context, ins *Insight) error

	// DeactivateStaleInsights marks the contributor's insights whose type is
	// not in fired as inactive. Records are never deleted.
	DeactivateStaleInsights(ctx context.Context, repositoryID, contributorID string, fired []InsightType) error
}

// ContributorInput is one contributor's raw material for a batch run.
type ContributorInput struct {
	ContributorID string
	Username      string
	Counts        types.RawContributionCount
	Profile       types.ContributorProfile
}

// ContributorError records a per-contributor failure that was isolated from
// the rest of the batch.
type ContributorError struct {
	ContributorID string `json:"contributor_id"`
	Username      string `json:"username"`
	Err           error  `json:"-"`
	Message       string `json:"error"`
}

// BatchResult is the outcome of analyzing one repository. Partial success is
// the expected shape of a batch run: Snapshots holds the contributors that
// were fully processed, Errors the ones that were skipped.
type BatchResult struct {
	RepositoryID string             `json:"repository_id"`
	Snapshots    []HealthSnapshot   `json:"snapshots"`
	InsightCount int                `json:"insight_count"`
	Trend        TrendSeries        `json:"trend"`
	Errors       []ContributorError `json:"errors,omitempty"`
}

// Analyzer orchestrates the health pipeline: scoring, geo resolution,
// insight rules and daily metrics per contributor, then one repository-wide
// trend aggregation.
type Analyzer struct {
	store    Store
	maxBatch int
	rng      *rand.Rand
	now      func() time.Time
}

// NewAnalyzer creates an analyzer bound to a store.
func NewAnalyzer(store Store) *Analyzer {
	return &Analyzer{
		store:    store,
		maxBatch: DefaultMaxBatch,
		now:      time.Now,
	}
}

// WithClock overrides the time source, for tests.
func (a *Analyzer) WithClock(now func() time.Time) *Analyzer {
	a.now = now
	return a
}

// WithRand fixes the random source used by the synthetic trend fallback, for
// tests.
func (a *Analyzer) WithRand(rng *rand.Rand) *Analyzer {
	a.rng = rng
	return a
}

// BuildSnapshot derives one contributor's health snapshot from raw counts
// and profile. Pure; scoring and geo resolution cannot fail.
func BuildSnapshot(repositoryID string, in ContributorInput) HealthSnapshot {
	scores := ComputeScores(in.Counts)
	country, timezone := ResolveLocation(in.Profile.Location)

	return HealthSnapshot{
		RepositoryID:    repositoryID,
		ContributorID:   in.ContributorID,
		Username:        in.Username,
		RetentionScore:  scores.Retention,
		EngagementScore: scores.Engagement,
		BurnoutRisk:     scores.BurnoutRisk,
		IsFirstTime:     scores.FirstTime,
		IsAtRisk:        scores.AtRisk,
		IsRisingStar:    scores.RisingStar,
		Country:         country,
		Timezone:        timezone,
		Counts:          in.Counts,
	}
}

// AnalyzeRepository runs the full pipeline for a batch of contributors. A
// failure for one contributor is logged, recorded in the result and never
// blocks the next contributor; the prior stored state for a failed
// contributor is left untouched. The trend is aggregated once for the whole
// repository after the loop.
func (a *Analyzer) AnalyzeRepository(ctx context.Context, repositoryID string, inputs []ContributorInput) (*BatchResult, error) {
	if len(inputs) > a.maxBatch {
		slog.Warn("Contributor batch truncated",
			"repository", repositoryID,
			"batch", len(inputs),
			"max", a.maxBatch)
		inputs = inputs[:a.maxBatch]
	}

	// Scoring and geo are pure, so all snapshots are derived up front; the
	// dominant country must be known before the insight rules run.
	snapshots := make([]HealthSnapshot, len(inputs))
	for i, in := range inputs {
		snapshots[i] = BuildSnapshot(repositoryID, in)
	}
	dominant := dominantCountry(snapshots)

	result := &BatchResult{RepositoryID: repositoryID}
	for i := range snapshots {
		fired, err := a.processContributor(ctx, &snapshots[i], dominant)
		if err != nil {
			slog.Error("Contributor analysis failed, skipping",
				"repository", repositoryID,
				"contributor", snapshots[i].Username,
				"error", err)
			result.Errors = append(result.Errors, ContributorError{
				ContributorID: snapshots[i].ContributorID,
				Username:      snapshots[i].Username,
				Err:           err,
				Message:       err.Error(),
			})
			continue
		}
		result.Snapshots = append(result.Snapshots, snapshots[i])
		result.InsightCount += fired
	}

	trend, err := a.buildRepositoryTrend(ctx, repositoryID)
	if err != nil {
		return result, fmt.Errorf("aggregate trend for %s: %w", repositoryID, err)
	}
	result.Trend = trend

	slog.Info("Repository analysis completed",
		"repository", repositoryID,
		"contributors", len(result.Snapshots),
		"failed", len(result.Errors),
		"insights", result.InsightCount,
		"synthetic_trend", trend.Synthetic)

	return result, nil
}

// processContributor persists one contributor's snapshot, insights and
// daily metrics. A panic in the pipeline is converted to an error so a
// single bad record cannot abort the batch.
func (a *Analyzer) processContributor(ctx context.Context, snapshot *HealthSnapshot, dominant string) (fired int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in contributor pipeline: %v", r)
		}
	}()

	if err := a.store.UpsertSnapshot(ctx, snapshot); err != nil {
		return 0, fmt.Errorf("upsert snapshot: %w", err)
	}

	insights := EvaluateInsights(RuleContext{Snapshot: snapshot, DominantCountry: dominant})
	firedTypes := make([]InsightType, 0, len(insights))
	for i := range insights {
		if err := a.store.UpsertInsight(ctx, &insights[i]); err != nil {
			return 0, fmt.Errorf("upsert insight %s: %w", insights[i].Type, err)
		}
		firedTypes = append(firedTypes, insights[i].Type)
	}
	if err := a.store.DeactivateStaleInsights(ctx, snapshot.RepositoryID, snapshot.ContributorID, firedTypes); err != nil {
		return 0, fmt.Errorf("deactivate stale insights: %w", err)
	}

	now := a.now()
	from := day(now).AddDate(0, 0, -(DefaultMetricsWindowDays - 1))
	activity, err := a.store.DailyActivity(ctx, snapshot.RepositoryID, snapshot.ContributorID, from, day(now))
	if err != nil {
		return 0, fmt.Errorf("load daily activity: %w", err)
	}
	for _, m := range BuildDailyMetrics(snapshot.ContributorID, activity, DefaultMetricsWindowDays, now) {
		metric := m
		if err := a.store.UpsertDailyMetric(ctx, &metric); err != nil {
			return 0, fmt.Errorf("upsert daily metric %s: %w", m.Date.Format("2006-01-02"), err)
		}
	}

	return len(insights), nil
}

func (a *Analyzer) buildRepositoryTrend(ctx context.Context, repositoryID string) (TrendSeries, error) {
	now := a.now()
	from := day(now).AddDate(0, 0, -(DefaultTrendWindowDays - 1))
	activity, err := a.store.RepositoryActivity(ctx, repositoryID, from, day(now))
	if err != nil {
		return TrendSeries{}, err
	}
	return BuildTrend(activity, DefaultTrendWindowDays, now, a.rng), nil
}

// dominantCountry returns the most common resolved country among the
// snapshots, empty when no contributor has one. Ties break toward the
// country seen first so the result is stable across runs.
func dominantCountry(snapshots []HealthSnapshot) string {
	counts := make(map[string]int)
	order := make([]string, 0)
	for i := range snapshots {
		c := snapshots[i].Country
		if c == "" {
			continue
		}
		if counts[c] == 0 {
			order = append(order, c)
		}
		counts[c]++
	}

	best := ""
	bestCount := 0
	for _, c := range order {
		if counts[c] > bestCount {
			best = c
			bestCount = counts[c]
		}
	}
	return best
}
