package analysis

import "github.com/anish877/maintainer-dashboard-sub000/internal/types"

// Tuning constants for the health model. Thresholds are part of the scoring
// contract and are covered by tests; change them together with the tests.
const (
	retentionPerContribution = 10.0
	retentionPerRecent       = 5.0
	retentionTenureBonus     = 20.0

	engagementPerRecent  = 15.0
	engagementTrendBoost = 25.0
	engagementTrendDrop  = -20.0
	engagementExpBonus   = 10.0

	trendGrowingAbove   = 1.2
	trendDecliningBelow = 0.5
)

// Scores holds the numeric outputs of the score calculator plus the derived
// classifications.
type Scores struct {
	Retention   float64
	Engagement  float64
	BurnoutRisk float64

	FirstTime  bool
	AtRisk     bool
	RisingStar bool
}

// ComputeScores maps raw contribution counts to retention, engagement and
// burnout scores, each clamped to [0,100], and evaluates the boolean
// classifications. Negative counts are treated as zero; the function is pure
// and never fails.
func ComputeScores(c types.RawContributionCount) Scores {
	total := nonNegative(c.TotalContributions)
	recent := nonNegative(c.RecentIssues) + nonNegative(c.RecentPRs)
	historical := nonNegative(c.HistoricalIssues) + nonNegative(c.HistoricalPRs)

	retention := float64(total)*retentionPerContribution + float64(recent)*retentionPerRecent
	if total > 10 {
		retention += retentionTenureBonus
	}
	retention = clamp(retention, 0, 100)

	// No historical baseline reads as "stable" so brand-new contributors are
	// not penalized and we never divide by zero.
	trend := 1.0
	if historical > 0 {
		trend = float64(recent) / float64(historical)
	}

	engagement := float64(recent) * engagementPerRecent
	switch {
	case trend > trendGrowingAbove:
		engagement += engagementTrendBoost
	case trend < trendDecliningBelow:
		engagement += engagementTrendDrop
	}
	if total > 5 {
		engagement += engagementExpBonus
	}
	engagement = clamp(engagement, 0, 100)

	// The three burnout signals are independent and additive; a long-tenured,
	// fully inactive contributor saturates at 100.
	burnout := 0.0
	if total > 50 && recent < 2 {
		burnout += 70
	}
	if engagement < 30 {
		burnout += 50
	}
	if total > 100 && recent == 0 {
		burnout += 90
	}
	burnout = clamp(burnout, 0, 100)

	return Scores{
		Retention:   retention,
		Engagement:  engagement,
		BurnoutRisk: burnout,

		FirstTime:  total <= 1,
		AtRisk:     (engagement < 25 && total > 5) || burnout > 60,
		RisingStar: engagement > 75 && total < 25 && recent > 3,
	}
}

// RecentActivity returns the recent issue+PR count with negatives zeroed,
// the same quantity the scoring formulas use.
func RecentActivity(c types.RawContributionCount) int {
	return nonNegative(c.RecentIssues) + nonNegative(c.RecentPRs)
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
