package analysis

import (
	"time"

	"github.com/anish877/maintainer-dashboard-sub000/internal/types"
)

// Severity classifies how urgent an insight is for the maintainer.
type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeveritySuccess  Severity = "SUCCESS"
	SeverityWarning  Severity = "WARNING"
	SeverityCritical Severity = "CRITICAL"
)

// Rank orders severities for display: CRITICAL > WARNING > INFO > SUCCESS.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityWarning:
		return 2
	case SeverityInfo:
		return 1
	case SeveritySuccess:
		return 0
	default:
		return -1
	}
}

// InsightType enumerates the fixed set of insight rules.
type InsightType string

const (
	InsightRisingStar     InsightType = "RISING_STAR"
	InsightAtRisk         InsightType = "AT_RISK"
	InsightFirstTime      InsightType = "FIRST_TIME_CONTRIBUTOR"
	InsightHighPerformer  InsightType = "HIGH_PERFORMER"
	InsightBurnoutWarning InsightType = "BURNOUT_WARNING"
	InsightActivitySpike  InsightType = "ACTIVITY_SPIKE"
	InsightDiversity      InsightType = "DIVERSITY_INSIGHT"
)

// HealthSnapshot is the derived health model for one contributor in one
// repository. It is recomputed wholesale on every run and replaces the
// previous snapshot for that (repository, contributor) pair.
type HealthSnapshot struct {
	RepositoryID  string `json:"repository_id"`
	ContributorID string `json:"contributor_id"`
	Username      string `json:"username"`

	RetentionScore  float64 `json:"retention_score"`
	EngagementScore float64 `json:"engagement_score"`
	BurnoutRisk     float64 `json:"burnout_risk"`

	IsFirstTime  bool `json:"is_first_time"`
	IsAtRisk     bool `json:"is_at_risk"`
	IsRisingStar bool `json:"is_rising_star"`

	// Country falls back to the raw location text when it cannot be
	// canonicalized; Timezone is empty when unresolved.
	Country  string `json:"country,omitempty"`
	Timezone string `json:"timezone,omitempty"`

	Counts types.RawContributionCount `json:"counts"`
}

// Insight is a templated finding about one contributor. Exactly one live
// record exists per (repository, contributor, type); re-running the rules
// updates the record in place rather than duplicating it.
type Insight struct {
	RepositoryID  string      `json:"repository_id"`
	ContributorID string      `json:"contributor_id"`
	Type          InsightType `json:"type"`
	Title         string      `json:"title"`
	Description   string      `json:"description"`
	Severity      Severity    `json:"severity"`
	Confidence    float64     `json:"confidence"`
	IsActive      bool        `json:"is_active"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// DailyMetric is one contributor's activity for one calendar day. Exactly
// one record exists per (contributor, day).
type DailyMetric struct {
	ContributorID string    `json:"contributor_id"`
	Date          time.Time `json:"date"`
	Contributions int       `json:"contributions"`
	Issues        int       `json:"issues"`
	PRs           int       `json:"prs"`
	Commits       int       `json:"commits"`
	Comments      int       `json:"comments"`
}

// TrendPoint is repository-wide activity for one calendar day.
// Total == Issues + PRs + Commits always holds.
type TrendPoint struct {
	Date    time.Time `json:"date"`
	Total   int       `json:"total"`
	Issues  int       `json:"issues"`
	PRs     int       `json:"prs"`
	Commits int       `json:"commits"`
}

// TrendSeries is a dense daily series for charting. Synthetic marks series
// generated by the fallback when the window carried no real signal; it is
// always serialized so consumers cannot mistake placeholder data for
// measurement.
type TrendSeries struct {
	Points    []TrendPoint `json:"points"`
	Synthetic bool         `json:"synthetic"`
}

// DayActivity is the raw per-day issue/PR signal the builders consume.
type DayActivity struct {
	Issues int `json:"issues"`
	PRs    int `json:"prs"`
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// day truncates t to midnight UTC so map keys compare reliably.
func day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
