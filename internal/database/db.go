package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DB represents the database connection with pooling
type DB struct {
	*sql.DB
	pool     *ConnectionPool
	prepared map[string]*sql.Stmt
	mutex    sync.RWMutex
}

// ConnectionPool manages database connection pooling
type ConnectionPool struct {
	db           *sql.DB
	maxOpenConns int
	maxIdleConns int
	maxLifetime  time.Duration
}

// NewConnectionPool creates a new database connection pool
func NewConnectionPool(db *sql.DB, maxOpen, maxIdle int, maxLifetime time.Duration) *ConnectionPool {
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(maxLifetime)

	return &ConnectionPool{
		db:           db,
		maxOpenConns: maxOpen,
		maxIdleConns: maxIdle,
		maxLifetime:  maxLifetime,
	}
}

// GetStats returns connection pool statistics
func (cp *ConnectionPool) GetStats() map[string]interface{} {
	stats := cp.db.Stats()

	return map[string]interface{}{
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"max_open_connections": cp.maxOpenConns,
		"max_idle_connections": cp.maxIdleConns,
		"max_lifetime_seconds": cp.maxLifetime.Seconds(),
		"wait_count":           stats.WaitCount,
		"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
		"max_idle_closed":      stats.MaxIdleClosed,
		"max_lifetime_closed":  stats.MaxLifetimeClosed,
	}
}

// NewDB creates a new database connection with optimized pooling
func NewDB(dataDir string) (*DB, error) {
	// Ensure data directory exists
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "maintainer_dashboard.db")

	// Configure connection string for better performance
	connStr := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Configure connection pooling for better performance
	pool := NewConnectionPool(db, 25, 5, 5*time.Minute) // 25 max open, 5 idle, 5min lifetime

	database := &DB{
		DB:       db,
		pool:     pool,
		prepared: make(map[string]*sql.Stmt),
	}

	// Run migrations
	if err := database.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Initialize prepared statements
	if err := database.initPreparedStatements(); err != nil {
		return nil, fmt.Errorf("failed to initialize prepared statements: %w", err)
	}

	slog.Info("Database initialized with connection pooling",
		"max_open_conns", pool.maxOpenConns,
		"max_idle_conns", pool.maxIdleConns,
		"max_lifetime", pool.maxLifetime)

	return database, nil
}

// migrate creates the necessary tables
func (db *DB) migrate() error {
	queries := []string{
		// Raw per-day activity, the input side of the pipeline. One row per
		// contributor per day; the sync job upserts into it.
		`CREATE TABLE IF NOT EXISTS daily_activity (
			id TEXT PRIMARY KEY,
			repository_id TEXT NOT NULL,
			contributor_id TEXT NOT NULL,
			day DATE NOT NULL,
			issues INTEGER NOT NULL DEFAULT 0,
			prs INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			UNIQUE(repository_id, contributor_id, day)
		)`,

		// One health snapshot per contributor per repository, replaced on
		// every analysis run.
		`CREATE TABLE IF NOT EXISTS health_snapshots (
			id TEXT PRIMARY KEY,
			repository_id TEXT NOT NULL,
			contributor_id TEXT NOT NULL,
			username TEXT NOT NULL,
			retention_score REAL NOT NULL,
			engagement_score REAL NOT NULL,
			burnout_risk REAL NOT NULL,
			is_first_time BOOLEAN NOT NULL DEFAULT FALSE,
			is_at_risk BOOLEAN NOT NULL DEFAULT FALSE,
			is_rising_star BOOLEAN NOT NULL DEFAULT FALSE,
			country TEXT,
			timezone TEXT,
			total_contributions INTEGER NOT NULL DEFAULT 0,
			recent_issues INTEGER NOT NULL DEFAULT 0,
			recent_prs INTEGER NOT NULL DEFAULT 0,
			historical_issues INTEGER NOT NULL DEFAULT 0,
			historical_prs INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			UNIQUE(repository_id, contributor_id)
		)`,

		// Derived per-day metrics, keyed by contributor and day so re-running
		// the analysis overwrites rather than duplicates.
		`CREATE TABLE IF NOT EXISTS daily_metrics (
			id TEXT PRIMARY KEY,
			contributor_id TEXT NOT NULL,
			day DATE NOT NULL,
			contributions INTEGER NOT NULL DEFAULT 0,
			issues INTEGER NOT NULL DEFAULT 0,
			prs INTEGER NOT NULL DEFAULT 0,
			commits INTEGER NOT NULL DEFAULT 0,
			comments INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			UNIQUE(contributor_id, day)
		)`,

		// Insights keep one row per (repository, contributor, type); rules
		// that stop firing flip is_active instead of deleting.
		`CREATE TABLE IF NOT EXISTS insights (
			id TEXT PRIMARY KEY,
			repository_id TEXT NOT NULL,
			contributor_id TEXT NOT NULL,
			type TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			severity TEXT NOT NULL,
			confidence REAL NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			UNIQUE(repository_id, contributor_id, type)
		)`,

		// Indexes for performance
		`CREATE INDEX IF NOT EXISTS idx_daily_activity_repo_day ON daily_activity(repository_id, day)`,
		`CREATE INDEX IF NOT EXISTS idx_daily_activity_contributor ON daily_activity(repository_id, contributor_id, day)`,
		`CREATE INDEX IF NOT EXISTS idx_health_snapshots_repo ON health_snapshots(repository_id)`,
		`CREATE INDEX IF NOT EXISTS idx_daily_metrics_contributor ON daily_metrics(contributor_id, day)`,
		`CREATE INDEX IF NOT EXISTS idx_insights_repo ON insights(repository_id, is_active)`,
		`CREATE INDEX IF NOT EXISTS idx_insights_updated ON insights(repository_id, updated_at DESC)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}

	return nil
}

// initPreparedStatements initializes frequently used prepared statements
func (db *DB) initPreparedStatements() error {
	statements := map[string]string{
		"upsert_activity": `INSERT INTO daily_activity (
			id, repository_id, contributor_id, day, issues, prs, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(repository_id, contributor_id, day) DO UPDATE SET
			issues = excluded.issues,
			prs = excluded.prs,
			updated_at = excluded.updated_at`,

		"upsert_snapshot": `INSERT INTO health_snapshots (
			id, repository_id, contributor_id, username,
			retention_score, engagement_score, burnout_risk,
			is_first_time, is_at_risk, is_rising_star,
			country, timezone,
			total_contributions, recent_issues, recent_prs, historical_issues, historical_prs,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(repository_id, contributor_id) DO UPDATE SET
			username = excluded.username,
			retention_score = excluded.retention_score,
			engagement_score = excluded.engagement_score,
			burnout_risk = excluded.burnout_risk,
			is_first_time = excluded.is_first_time,
			is_at_risk = excluded.is_at_risk,
			is_rising_star = excluded.is_rising_star,
			country = excluded.country,
			timezone = excluded.timezone,
			total_contributions = excluded.total_contributions,
			recent_issues = excluded.recent_issues,
			recent_prs = excluded.recent_prs,
			historical_issues = excluded.historical_issues,
			historical_prs = excluded.historical_prs,
			updated_at = excluded.updated_at`,

		"upsert_daily_metric": `INSERT INTO daily_metrics (
			id, contributor_id, day, contributions, issues, prs, commits, comments, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(contributor_id, day) DO UPDATE SET
			contributions = excluded.contributions,
			issues = excluded.issues,
			prs = excluded.prs,
			commits = excluded.commits,
			comments = excluded.comments,
			updated_at = excluded.updated_at`,

		"upsert_insight": `INSERT INTO insights (
			id, repository_id, contributor_id, type, title, description,
			severity, confidence, is_active, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(repository_id, contributor_id, type) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			severity = excluded.severity,
			confidence = excluded.confidence,
			is_active = excluded.is_active,
			updated_at = excluded.updated_at`,

		"get_daily_activity": `SELECT day, issues, prs
			FROM daily_activity
			WHERE repository_id = ? AND contributor_id = ? AND day BETWEEN ? AND ?
			ORDER BY day ASC`,

		"get_repository_activity": `SELECT day, SUM(issues), SUM(prs)
			FROM daily_activity
			WHERE repository_id = ? AND day BETWEEN ? AND ?
			GROUP BY day ORDER BY day ASC`,

		"get_snapshots_by_repo": `SELECT id, repository_id, contributor_id, username,
			retention_score, engagement_score, burnout_risk,
			is_first_time, is_at_risk, is_rising_star,
			country, timezone,
			total_contributions, recent_issues, recent_prs, historical_issues, historical_prs,
			created_at, updated_at
			FROM health_snapshots WHERE repository_id = ? ORDER BY retention_score DESC, username ASC`,

		"get_daily_metrics": `SELECT id, contributor_id, day, contributions, issues, prs, commits, comments, created_at, updated_at
			FROM daily_metrics WHERE contributor_id = ? AND day BETWEEN ? AND ? ORDER BY day ASC`,

		"get_active_insights": `SELECT id, repository_id, contributor_id, type, title, description,
			severity, confidence, is_active, created_at, updated_at
			FROM insights WHERE repository_id = ? AND is_active = TRUE
			ORDER BY updated_at DESC`,
	}

	db.mutex.Lock()
	defer db.mutex.Unlock()

	for name, query := range statements {
		stmt, err := db.Prepare(query)
		if err != nil {
			return fmt.Errorf("failed to prepare statement %s: %w", name, err)
		}
		db.prepared[name] = stmt

		slog.Debug("Prepared statement initialized", "name", name)
	}

	return nil
}

// GetPreparedStatement retrieves a prepared statement
func (db *DB) GetPreparedStatement(name string) (*sql.Stmt, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	stmt, exists := db.prepared[name]
	if !exists {
		return nil, fmt.Errorf("prepared statement %s not found", name)
	}

	return stmt, nil
}

// GetPoolStats returns database connection pool statistics
func (db *DB) GetPoolStats() map[string]interface{} {
	return db.pool.GetStats()
}

// Close closes the database connection and prepared statements
func (db *DB) Close() error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	// Close all prepared statements
	for name, stmt := range db.prepared {
		if err := stmt.Close(); err != nil {
			slog.Warn("Failed to close prepared statement", "name", name, "error", err)
		}
	}

	// Clear the map
	db.prepared = make(map[string]*sql.Stmt)

	// Close the database connection
	return db.DB.Close()
}
