package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/anish877/maintainer-dashboard-sub000/internal/analysis"
)

// dayFormat is how DATE columns are written and parsed. Days are always
// midnight UTC.
const dayFormat = "2006-01-02"

// Repository handles database operations. It implements analysis.Store and
// the read paths the dashboard needs.
type Repository struct {
	db *DB
}

// NewRepository creates a new repository
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// UpsertActivity writes one contributor-day of raw activity, overwriting any
// previous row for the same (repository, contributor, day).
func (r *Repository) UpsertActivity(ctx context.Context, rec *ActivityRecord) error {
	stmt, err := r.db.GetPreparedStatement("upsert_activity")
	if err != nil {
		return err
	}

	_, err = stmt.ExecContext(ctx,
		rec.ID, rec.RepositoryID, rec.ContributorID, rec.Day.UTC().Format(dayFormat),
		rec.Issues, rec.PRs, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert activity: %w", err)
	}

	return nil
}

// DailyActivity returns one contributor's per-day counts within [from, to],
// keyed by midnight-UTC day. Days with no row are simply absent.
func (r *Repository) DailyActivity(ctx context.Context, repositoryID, contributorID string, from, to time.Time) (map[time.Time]analysis.DayActivity, error) {
	stmt, err := r.db.GetPreparedStatement("get_daily_activity")
	if err != nil {
		return nil, err
	}

	rows, err := stmt.QueryContext(ctx, repositoryID, contributorID,
		from.UTC().Format(dayFormat), to.UTC().Format(dayFormat))
	if err != nil {
		return nil, fmt.Errorf("failed to query daily activity: %w", err)
	}
	defer rows.Close()

	return scanActivity(rows)
}

// RepositoryActivity returns repository-wide per-day counts summed across
// contributors within [from, to].
func (r *Repository) RepositoryActivity(ctx context.Context, repositoryID string, from, to time.Time) (map[time.Time]analysis.DayActivity, error) {
	stmt, err := r.db.GetPreparedStatement("get_repository_activity")
	if err != nil {
		return nil, err
	}

	rows, err := stmt.QueryContext(ctx, repositoryID,
		from.UTC().Format(dayFormat), to.UTC().Format(dayFormat))
	if err != nil {
		return nil, fmt.Errorf("failed to query repository activity: %w", err)
	}
	defer rows.Close()

	return scanActivity(rows)
}

// scanActivity reads (day, issues, prs) rows. The driver hands DATE columns
// back as time.Time already; normalizing to midnight UTC keeps the map keys
// comparable with the analysis day helpers.
func scanActivity(rows *sql.Rows) (map[time.Time]analysis.DayActivity, error) {
	out := make(map[time.Time]analysis.DayActivity)
	for rows.Next() {
		var d time.Time
		var issues, prs int
		if err := rows.Scan(&d, &issues, &prs); err != nil {
			return nil, fmt.Errorf("failed to scan activity row: %w", err)
		}
		out[dayUTC(d)] = analysis.DayActivity{Issues: issues, PRs: prs}
	}
	return out, rows.Err()
}

// UpsertSnapshot replaces the snapshot for its (repository, contributor)
// pair. The original created_at survives the replace.
func (r *Repository) UpsertSnapshot(ctx context.Context, s *analysis.HealthSnapshot) error {
	stmt, err := r.db.GetPreparedStatement("upsert_snapshot")
	if err != nil {
		return err
	}

	now := time.Now()
	_, err = stmt.ExecContext(ctx,
		uuid.New().String(), s.RepositoryID, s.ContributorID, s.Username,
		s.RetentionScore, s.EngagementScore, s.BurnoutRisk,
		s.IsFirstTime, s.IsAtRisk, s.IsRisingStar,
		s.Country, s.Timezone,
		s.Counts.TotalContributions, s.Counts.RecentIssues, s.Counts.RecentPRs,
		s.Counts.HistoricalIssues, s.Counts.HistoricalPRs,
		now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert snapshot: %w", err)
	}

	return nil
}

// UpsertDailyMetric writes one contributor-day of derived metrics. Keyed by
// (contributor, day), so replaying a window is idempotent.
func (r *Repository) UpsertDailyMetric(ctx context.Context, m *analysis.DailyMetric) error {
	stmt, err := r.db.GetPreparedStatement("upsert_daily_metric")
	if err != nil {
		return err
	}

	now := time.Now()
	_, err = stmt.ExecContext(ctx,
		uuid.New().String(), m.ContributorID, m.Date.UTC().Format(dayFormat),
		m.Contributions, m.Issues, m.PRs, m.Commits, m.Comments,
		now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert daily metric: %w", err)
	}

	return nil
}

// UpsertInsight creates the row for its (repository, contributor, type) key
// or refreshes the existing one in place, reactivating it if it had been
// deactivated.
func (r *Repository) UpsertInsight(ctx context.Context, ins *analysis.Insight) error {
	stmt, err := r.db.GetPreparedStatement("upsert_insight")
	if err != nil {
		return err
	}

	now := time.Now()
	_, err = stmt.ExecContext(ctx,
		uuid.New().String(), ins.RepositoryID, ins.ContributorID, string(ins.Type),
		ins.Title, ins.Description, string(ins.Severity), ins.Confidence, ins.IsActive,
		now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert insight: %w", err)
	}

	return nil
}

// DeactivateStaleInsights marks the contributor's insights whose type is not
// in fired as inactive. Rows are never deleted, so the history of a
// condition that once held is preserved.
func (r *Repository) DeactivateStaleInsights(ctx context.Context, repositoryID, contributorID string, fired []analysis.InsightType) error {
	query := `UPDATE insights SET is_active = FALSE, updated_at = ?
		WHERE repository_id = ? AND contributor_id = ? AND is_active = TRUE`
	args := []interface{}{time.Now(), repositoryID, contributorID}

	if len(fired) > 0 {
		placeholders := strings.Repeat("?,", len(fired))
		query += fmt.Sprintf(" AND type NOT IN (%s)", placeholders[:len(placeholders)-1])
		for _, t := range fired {
			args = append(args, string(t))
		}
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to deactivate stale insights: %w", err)
	}

	return nil
}

// SnapshotsByRepository returns every stored snapshot for the repository,
// strongest retention first.
func (r *Repository) SnapshotsByRepository(ctx context.Context, repositoryID string) ([]analysis.HealthSnapshot, error) {
	stmt, err := r.db.GetPreparedStatement("get_snapshots_by_repo")
	if err != nil {
		return nil, err
	}

	rows, err := stmt.QueryContext(ctx, repositoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var out []analysis.HealthSnapshot
	for rows.Next() {
		var rec SnapshotRecord
		if err := rows.Scan(
			&rec.ID, &rec.RepositoryID, &rec.ContributorID, &rec.Username,
			&rec.RetentionScore, &rec.EngagementScore, &rec.BurnoutRisk,
			&rec.IsFirstTime, &rec.IsAtRisk, &rec.IsRisingStar,
			&rec.Country, &rec.Timezone,
			&rec.TotalContributions, &rec.RecentIssues, &rec.RecentPRs,
			&rec.HistoricalIssues, &rec.HistoricalPRs,
			&rec.CreatedAt, &rec.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		out = append(out, snapshotFromRecord(&rec))
	}

	return out, rows.Err()
}

// ActiveInsights returns the repository's active insights ordered by most
// recently refreshed first.
func (r *Repository) ActiveInsights(ctx context.Context, repositoryID string) ([]analysis.Insight, error) {
	stmt, err := r.db.GetPreparedStatement("get_active_insights")
	if err != nil {
		return nil, err
	}

	rows, err := stmt.QueryContext(ctx, repositoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query insights: %w", err)
	}
	defer rows.Close()

	var out []analysis.Insight
	for rows.Next() {
		var rec InsightRecord
		if err := rows.Scan(
			&rec.ID, &rec.RepositoryID, &rec.ContributorID, &rec.Type,
			&rec.Title, &rec.Description, &rec.Severity, &rec.Confidence,
			&rec.IsActive, &rec.CreatedAt, &rec.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan insight: %w", err)
		}
		out = append(out, analysis.Insight{
			RepositoryID:  rec.RepositoryID,
			ContributorID: rec.ContributorID,
			Type:          analysis.InsightType(rec.Type),
			Title:         rec.Title,
			Description:   rec.Description,
			Severity:      analysis.Severity(rec.Severity),
			Confidence:    rec.Confidence,
			IsActive:      rec.IsActive,
			CreatedAt:     rec.CreatedAt,
			UpdatedAt:     rec.UpdatedAt,
		})
	}

	return out, rows.Err()
}

// DailyMetrics returns the contributor's stored metrics within [from, to],
// oldest first.
func (r *Repository) DailyMetrics(ctx context.Context, contributorID string, from, to time.Time) ([]analysis.DailyMetric, error) {
	stmt, err := r.db.GetPreparedStatement("get_daily_metrics")
	if err != nil {
		return nil, err
	}

	rows, err := stmt.QueryContext(ctx, contributorID,
		from.UTC().Format(dayFormat), to.UTC().Format(dayFormat))
	if err != nil {
		return nil, fmt.Errorf("failed to query daily metrics: %w", err)
	}
	defer rows.Close()

	var out []analysis.DailyMetric
	for rows.Next() {
		var rec MetricRecord
		if err := rows.Scan(
			&rec.ID, &rec.ContributorID, &rec.Day,
			&rec.Contributions, &rec.Issues, &rec.PRs, &rec.Commits, &rec.Comments,
			&rec.CreatedAt, &rec.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan daily metric: %w", err)
		}
		out = append(out, analysis.DailyMetric{
			ContributorID: rec.ContributorID,
			Date:          dayUTC(rec.Day),
			Contributions: rec.Contributions,
			Issues:        rec.Issues,
			PRs:           rec.PRs,
			Commits:       rec.Commits,
			Comments:      rec.Comments,
		})
	}

	return out, rows.Err()
}

func snapshotFromRecord(rec *SnapshotRecord) analysis.HealthSnapshot {
	s := analysis.HealthSnapshot{
		RepositoryID:    rec.RepositoryID,
		ContributorID:   rec.ContributorID,
		Username:        rec.Username,
		RetentionScore:  rec.RetentionScore,
		EngagementScore: rec.EngagementScore,
		BurnoutRisk:     rec.BurnoutRisk,
		IsFirstTime:     rec.IsFirstTime,
		IsAtRisk:        rec.IsAtRisk,
		IsRisingStar:    rec.IsRisingStar,
		Country:         rec.Country,
		Timezone:        rec.Timezone,
	}
	s.Counts.TotalContributions = rec.TotalContributions
	s.Counts.RecentIssues = rec.RecentIssues
	s.Counts.RecentPRs = rec.RecentPRs
	s.Counts.HistoricalIssues = rec.HistoricalIssues
	s.Counts.HistoricalPRs = rec.HistoricalPRs
	return s
}
