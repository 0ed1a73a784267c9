package types

// RawContributionCount holds per-contributor activity counts over the
// trailing analysis windows (recent = last 30 days, historical = the 60 days
// before that). Supplied by the caller; the engine never mutates it.
type RawContributionCount struct {
	TotalContributions int `json:"total_contributions"`
	RecentIssues       int `json:"recent_issues"`
	RecentPRs          int `json:"recent_prs"`
	HistoricalIssues   int `json:"historical_issues"`
	HistoricalPRs      int `json:"historical_prs"`
}

// ContributorProfile carries the optional profile fields fetched for a
// contributor. Location is free text exactly as the user wrote it.
type ContributorProfile struct {
	Location string `json:"location,omitempty"`
}
