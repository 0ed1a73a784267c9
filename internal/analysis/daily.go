package analysis

import (
	"math"
	"time"
)

// DefaultMetricsWindowDays is the trailing window, inclusive of today, the
// daily metrics builder covers.
const DefaultMetricsWindowDays = 30

// Commits and comments are not observed directly; they are estimated from
// the issue/PR signal with fixed proxy ratios. Documented as estimates, not
// measurements.
const (
	commitsPerPR            = 2.5
	commentsPerContribution = 0.5
)

// BuildDailyMetrics produces one DailyMetric per day of the trailing window
// (oldest first) from the contributor's per-day activity. Days without
// activity yield zero-valued records so the series stays dense. The output
// depends only on the inputs; upserting it for the same day twice leaves the
// stored record unchanged.
func BuildDailyMetrics(contributorID string, activity map[time.Time]DayActivity, windowDays int, now time.Time) []DailyMetric {
	if windowDays <= 0 {
		windowDays = DefaultMetricsWindowDays
	}

	today := day(now)
	metrics := make([]DailyMetric, 0, windowDays)

	for i := windowDays - 1; i >= 0; i-- {
		d := today.AddDate(0, 0, -i)
		act := activity[d]

		issues := nonNegative(act.Issues)
		prs := nonNegative(act.PRs)
		contributions := issues + prs

		metrics = append(metrics, DailyMetric{
			ContributorID: contributorID,
			Date:          d,
			Contributions: contributions,
			Issues:        issues,
			PRs:           prs,
			Commits:       int(math.Round(float64(prs) * commitsPerPR)),
			Comments:      int(math.Round(float64(contributions) * commentsPerContribution)),
		})
	}

	return metrics
}
