package database

import (
	"time"

	"github.com/google/uuid"
)

// ActivityRecord is one contributor-day of raw issue/PR activity.
type ActivityRecord struct {
	ID            string    `json:"id" db:"id"`
	RepositoryID  string    `json:"repository_id" db:"repository_id"`
	ContributorID string    `json:"contributor_id" db:"contributor_id"`
	Day           time.Time `json:"day" db:"day"`
	Issues        int       `json:"issues" db:"issues"`
	PRs           int       `json:"prs" db:"prs"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// SnapshotRecord is the stored form of a contributor health snapshot.
type SnapshotRecord struct {
	ID                 string    `json:"id" db:"id"`
	RepositoryID       string    `json:"repository_id" db:"repository_id"`
	ContributorID      string    `json:"contributor_id" db:"contributor_id"`
	Username           string    `json:"username" db:"username"`
	RetentionScore     float64   `json:"retention_score" db:"retention_score"`
	EngagementScore    float64   `json:"engagement_score" db:"engagement_score"`
	BurnoutRisk        float64   `json:"burnout_risk" db:"burnout_risk"`
	IsFirstTime        bool      `json:"is_first_time" db:"is_first_time"`
	IsAtRisk           bool      `json:"is_at_risk" db:"is_at_risk"`
	IsRisingStar       bool      `json:"is_rising_star" db:"is_rising_star"`
	Country            string    `json:"country,omitempty" db:"country"`
	Timezone           string    `json:"timezone,omitempty" db:"timezone"`
	TotalContributions int       `json:"total_contributions" db:"total_contributions"`
	RecentIssues       int       `json:"recent_issues" db:"recent_issues"`
	RecentPRs          int       `json:"recent_prs" db:"recent_prs"`
	HistoricalIssues   int       `json:"historical_issues" db:"historical_issues"`
	HistoricalPRs      int       `json:"historical_prs" db:"historical_prs"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`
}

// MetricRecord is the stored form of one contributor-day of derived metrics.
type MetricRecord struct {
	ID            string    `json:"id" db:"id"`
	ContributorID string    `json:"contributor_id" db:"contributor_id"`
	Day           time.Time `json:"day" db:"day"`
	Contributions int       `json:"contributions" db:"contributions"`
	Issues        int       `json:"issues" db:"issues"`
	PRs           int       `json:"prs" db:"prs"`
	Commits       int       `json:"commits" db:"commits"`
	Comments      int       `json:"comments" db:"comments"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// InsightRecord is the stored form of a generated insight.
type InsightRecord struct {
	ID            string    `json:"id" db:"id"`
	RepositoryID  string    `json:"repository_id" db:"repository_id"`
	ContributorID string    `json:"contributor_id" db:"contributor_id"`
	Type          string    `json:"type" db:"type"`
	Title         string    `json:"title" db:"title"`
	Description   string    `json:"description" db:"description"`
	Severity      string    `json:"severity" db:"severity"`
	Confidence    float64   `json:"confidence" db:"confidence"`
	IsActive      bool      `json:"is_active" db:"is_active"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// NewActivityRecord creates an activity row with a generated surrogate ID.
// The natural key is (repository, contributor, day); the ID only exists so
// rows are individually addressable.
func NewActivityRecord(repositoryID, contributorID string, day time.Time, issues, prs int) *ActivityRecord {
	now := time.Now()
	return &ActivityRecord{
		ID:            uuid.New().String(),
		RepositoryID:  repositoryID,
		ContributorID: contributorID,
		Day:           day,
		Issues:        issues,
		PRs:           prs,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
