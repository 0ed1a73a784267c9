package analysis

import (
	"fmt"
	"math"
)

// RuleContext is the immutable input one rule evaluation sees: the scored
// snapshot plus the repository-level facts some rules compare against.
type RuleContext struct {
	Snapshot *HealthSnapshot

	// DominantCountry is the most common resolved country across the
	// repository's contributors, empty when unknown.
	DominantCountry string
}

// insightRule pairs an independent predicate with the builder for its
// insight draft. Rules are a flat table, not a conditional chain, so new
// rules can be added without touching existing ones.
type insightRule struct {
	Type    InsightType
	Applies func(RuleContext) bool
	Build   func(RuleContext) Insight
}

var insightRules = []insightRule{
	{
		Type: InsightRisingStar,
		Applies: func(rc RuleContext) bool {
			return rc.Snapshot.IsRisingStar
		},
		Build: func(rc RuleContext) Insight {
			s := rc.Snapshot
			return draft(s, InsightRisingStar, SeveritySuccess,
				math.Min(95, 70+s.EngagementScore/2),
				fmt.Sprintf("%s is a rising star", s.Username),
				fmt.Sprintf("%s is new to the project but highly engaged (engagement %.0f). Consider offering mentorship or larger issues to keep the momentum.", s.Username, s.EngagementScore))
		},
	},
	{
		Type: InsightAtRisk,
		Applies: func(rc RuleContext) bool {
			return rc.Snapshot.IsAtRisk
		},
		Build: func(rc RuleContext) Insight {
			s := rc.Snapshot
			return draft(s, InsightAtRisk, SeverityWarning,
				math.Min(90, 60+s.BurnoutRisk/2),
				fmt.Sprintf("%s may be disengaging", s.Username),
				fmt.Sprintf("%s's recent activity has dropped off compared to their history (burnout risk %.0f). A check-in or a smaller, well-scoped issue could help.", s.Username, s.BurnoutRisk))
		},
	},
	{
		Type: InsightFirstTime,
		Applies: func(rc RuleContext) bool {
			return rc.Snapshot.IsFirstTime
		},
		Build: func(rc RuleContext) Insight {
			s := rc.Snapshot
			return draft(s, InsightFirstTime, SeverityInfo, 95,
				fmt.Sprintf("%s made their first contribution", s.Username),
				fmt.Sprintf("%s just made their first contribution. A welcoming review and a pointer to good-first-issues increases the chance they come back.", s.Username))
		},
	},
	{
		Type: InsightHighPerformer,
		Applies: func(rc RuleContext) bool {
			s := rc.Snapshot
			return s.RetentionScore > 80 && s.EngagementScore > 70
		},
		Build: func(rc RuleContext) Insight {
			s := rc.Snapshot
			return draft(s, InsightHighPerformer, SeveritySuccess,
				math.Min(95, (s.RetentionScore+s.EngagementScore)/2),
				fmt.Sprintf("%s is a consistent high performer", s.Username),
				fmt.Sprintf("%s combines strong retention (%.0f) with high engagement (%.0f). They may be a good candidate for triage or review permissions.", s.Username, s.RetentionScore, s.EngagementScore))
		},
	},
	{
		Type: InsightBurnoutWarning,
		Applies: func(rc RuleContext) bool {
			return rc.Snapshot.BurnoutRisk > 70
		},
		Build: func(rc RuleContext) Insight {
			s := rc.Snapshot
			return draft(s, InsightBurnoutWarning, SeverityCritical,
				s.BurnoutRisk,
				fmt.Sprintf("%s shows burnout warning signs", s.Username),
				fmt.Sprintf("%s was a heavy contributor but has gone quiet (burnout risk %.0f). Reach out before they disappear for good.", s.Username, s.BurnoutRisk))
		},
	},
	{
		Type: InsightActivitySpike,
		Applies: func(rc RuleContext) bool {
			s := rc.Snapshot
			return RecentActivity(s.Counts) > 5 && s.Counts.TotalContributions < 20
		},
		Build: func(rc RuleContext) Insight {
			s := rc.Snapshot
			recent := RecentActivity(s.Counts)
			return draft(s, InsightActivitySpike, SeverityInfo,
				math.Min(90, 50+float64(recent)*5),
				fmt.Sprintf("%s's activity is spiking", s.Username),
				fmt.Sprintf("%s opened %d issues/PRs in the last 30 days, unusual for a newer contributor. Worth a look at what they are driving at.", s.Username, recent))
		},
	},
	{
		Type: InsightDiversity,
		Applies: func(rc RuleContext) bool {
			s := rc.Snapshot
			return s.Country != "" && rc.DominantCountry != "" && s.Country != rc.DominantCountry
		},
		Build: func(rc RuleContext) Insight {
			s := rc.Snapshot
			return draft(s, InsightDiversity, SeverityInfo, 85,
				fmt.Sprintf("%s broadens the contributor base", s.Username),
				fmt.Sprintf("%s contributes from %s while most of the project's contributors are in %s. Consider their timezone when scheduling reviews.", s.Username, s.Country, rc.DominantCountry))
		},
	},
}

// EvaluateInsights runs every rule against the snapshot and returns the
// drafts for the rules that fired. Each type is emitted at most once; rules
// are independent, so several may fire for the same contributor. Persistence
// (and the dedup-by-key contract) belongs to the store, not here.
func EvaluateInsights(rc RuleContext) []Insight {
	var out []Insight
	for _, rule := range insightRules {
		if rule.Applies(rc) {
			out = append(out, rule.Build(rc))
		}
	}
	return out
}

func draft(s *HealthSnapshot, t InsightType, sev Severity, confidence float64, title, description string) Insight {
	return Insight{
		RepositoryID:  s.RepositoryID,
		ContributorID: s.ContributorID,
		Type:          t,
		Title:         title,
		Description:   description,
		Severity:      sev,
		Confidence:    clamp(confidence, 0, 100),
		IsActive:      true,
	}
}
