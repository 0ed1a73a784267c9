package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/anish877/maintainer-dashboard-sub000/docs"
	"github.com/anish877/maintainer-dashboard-sub000/internal/adapters"
	"github.com/anish877/maintainer-dashboard-sub000/internal/analysis"
	"github.com/anish877/maintainer-dashboard-sub000/internal/cache"
	"github.com/anish877/maintainer-dashboard-sub000/internal/dashboard"
	"github.com/anish877/maintainer-dashboard-sub000/internal/database"
	"github.com/anish877/maintainer-dashboard-sub000/internal/errors"
	"github.com/anish877/maintainer-dashboard-sub000/internal/monitoring"
	"github.com/anish877/maintainer-dashboard-sub000/internal/ratelimit"
)

func main() {
	// Structured logging setup
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Configuration from environment with defaults
	dataDir := getEnvOrDefault("DATA_DIR", "./data")
	githubToken := os.Getenv("GITHUB_TOKEN")
	port := getEnvOrDefault("PORT", "8080")
	redisAddr := os.Getenv("REDIS_ADDR")
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB, _ := strconv.Atoi(getEnvOrDefault("REDIS_DB", "0"))

	// Initialize database and services
	db, err := database.NewDB(dataDir)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	repo := database.NewRepository(db)
	activityService := database.NewActivityService(repo)

	// Create analyzer, adapter and dashboard service
	analyzer := analysis.NewAnalyzer(repo)
	githubAdapter := adapters.NewGitHubAdapter(githubToken)
	dashboardService := dashboard.NewService(repo)

	r := gin.New()

	// Initialize monitoring system
	appMetrics := monitoring.NewMetrics()
	appLogger := monitoring.NewLogger()

	// Add monitoring middleware first (to capture all requests)
	r.Use(monitoring.MonitoringMiddleware(appMetrics, appLogger))

	// Add error handling middleware
	r.Use(errors.ErrorHandler())
	r.Use(errors.RecoveryHandler())

	// CORS for the dashboard frontend
	r.Use(cors.Default())

	// Rate limiting: Redis-backed with in-memory fallback
	redisClient, err := ratelimit.NewRedisClient(redisAddr, redisPassword, redisDB)
	if err != nil {
		slog.Warn("Redis unavailable, rate limiting degrades to in-memory", "error", err)
	}
	defer redisClient.Close()

	rateLimiter := ratelimit.NewRateLimiter(redisClient, ratelimit.DefaultConfig(), appMetrics)
	r.Use(rateLimiter.IPRateLimitMiddleware())

	// Initialize cache for dashboard reads (5 minutes TTL)
	appCache := cache.NewCache(5 * time.Minute)
	r.Use(appCache.Middleware(appMetrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   "1.0.0",
			"metrics":   appMetrics.GetStats(),
		})
	})

	// Trigger the full pipeline for a repository: sync activity from GitHub,
	// score every contributor, generate insights and rebuild the trend.
	r.POST("/api/repos/:owner/:repo/analyze", rateLimiter.AnalyzeRateLimitMiddleware(), func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Minute)
		defer cancel()

		owner := c.Param("owner")
		repoName := c.Param("repo")
		repositoryID := fmt.Sprintf("%s/%s", owner, repoName)

		start := time.Now()
		slog.Info("Starting repository analysis", "repository", repositoryID, "ip", c.ClientIP())

		// Sync enough history to cover both the recent window and the
		// historical baseline.
		syncDays := database.RecentWindowDays + database.HistoricalWindowDays
		since := time.Now().UTC().AddDate(0, 0, -syncDays)

		syncStart := time.Now()
		contributorDays, err := githubAdapter.SyncActivity(ctx, owner, repoName, since, repo)
		appMetrics.IncrementGitHubCalls()
		appMetrics.RecordExternalAPIRequest("GitHub", err == nil)
		if err != nil {
			appErr := errors.NewExternalAPIError("GitHub", err)
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}
		appLogger.SyncLogger(repositoryID, contributorDays, since, time.Since(syncStart))

		contributors, err := githubAdapter.ListContributors(ctx, owner, repoName, analysis.DefaultMaxBatch)
		appMetrics.IncrementGitHubCalls()
		appMetrics.RecordExternalAPIRequest("GitHub", err == nil)
		if err != nil {
			appErr := errors.NewExternalAPIError("GitHub", err)
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		if len(contributors) == 0 {
			appErr := errors.NewNotFoundError(fmt.Sprintf("contributors for %s", repositoryID))
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		inputs := make([]analysis.ContributorInput, 0, len(contributors))
		for _, contributor := range contributors {
			counts, err := activityService.ContributionCounts(ctx, repositoryID, contributor.Login, contributor.Contributions)
			if err != nil {
				appErr := errors.ToAppError(err)
				errors.LogError(c, appErr)
				c.JSON(appErr.HTTPStatus, appErr)
				return
			}

			// Profile fetch is best effort; a missing profile only costs
			// the geo fields.
			profile, err := githubAdapter.FetchProfile(ctx, contributor.Login)
			appMetrics.IncrementGitHubCalls()
			appMetrics.RecordExternalAPIRequest("GitHub", err == nil)
			if err != nil {
				slog.Warn("Profile fetch failed, continuing without location",
					"contributor", contributor.Login, "error", err)
			}

			inputs = append(inputs, analysis.ContributorInput{
				ContributorID: contributor.Login,
				Username:      contributor.Login,
				Counts:        counts,
				Profile:       profile,
			})
		}

		result, err := analyzer.AnalyzeRepository(ctx, repositoryID, inputs)
		if err != nil {
			appErr := errors.ToAppError(err)
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		appMetrics.RecordAnalysisRun(len(result.Snapshots), len(result.Errors), result.InsightCount, result.Trend.Synthetic)
		appLogger.AnalysisLogger(repositoryID, len(result.Snapshots), len(result.Errors), result.InsightCount, result.Trend.Synthetic, time.Since(start))

		// Cached dashboard payloads are stale now
		appCache.Clear()

		c.JSON(http.StatusOK, result)
	})

	// Dashboard payload: aggregates, score distribution, trend, snapshots
	// and active insights. Served from the store, cached by the middleware.
	r.GET("/api/repos/:owner/:repo/health", func(c *gin.Context) {
		repositoryID := fmt.Sprintf("%s/%s", c.Param("owner"), c.Param("repo"))

		payload, err := dashboardService.RepositoryHealth(c.Request.Context(), repositoryID)
		if err != nil {
			appErr := errors.ToAppError(err)
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		if len(payload.Snapshots) == 0 {
			appErr := errors.NewNotFoundError(fmt.Sprintf("analysis for %s", repositoryID))
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		c.JSON(http.StatusOK, payload)
	})

	// Active insights only, newest first
	r.GET("/api/repos/:owner/:repo/insights", func(c *gin.Context) {
		repositoryID := fmt.Sprintf("%s/%s", c.Param("owner"), c.Param("repo"))

		insights, err := repo.ActiveInsights(c.Request.Context(), repositoryID)
		if err != nil {
			appErr := errors.ToAppError(err)
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"repository_id": repositoryID,
			"insights":      insights,
		})
	})

	// Per-contributor daily metrics for charting
	r.GET("/api/contributors/:login/metrics", func(c *gin.Context) {
		login := c.Param("login")

		days := analysis.DefaultMetricsWindowDays
		if daysStr := c.Query("days"); daysStr != "" {
			if d, err := strconv.Atoi(daysStr); err == nil && d > 0 && d <= 90 {
				days = d
			}
		}

		to := time.Now().UTC()
		from := to.AddDate(0, 0, -(days - 1))
		metrics, err := repo.DailyMetrics(c.Request.Context(), login, from, to)
		if err != nil {
			appErr := errors.ToAppError(err)
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"contributor_id": login,
			"days":           days,
			"metrics":        metrics,
		})
	})

	// Swagger documentation routes
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Metrics endpoint
	r.GET("/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, appMetrics.GetStats())
	})

	// Cache stats endpoint
	r.GET("/cache/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, appCache.Stats())
	})

	// Database pool stats endpoint
	r.GET("/pools/database", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"pool":  "database",
			"stats": db.GetPoolStats(),
		})
	})

	// Rate limit endpoints
	r.GET("/ratelimit/status", rateLimiter.HandleRateLimitStatus())
	r.GET("/admin/ratelimits", rateLimiter.HandleAdminRateLimits())
	r.POST("/admin/ratelimits/invalidate/:ip", rateLimiter.HandleAdminInvalidateIP())

	// Start server with graceful shutdown
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		slog.Info("Starting server", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
