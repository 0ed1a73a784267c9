package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anish877/maintainer-dashboard-sub000/internal/analysis"
	"github.com/anish877/maintainer-dashboard-sub000/internal/dashboard"
	"github.com/anish877/maintainer-dashboard-sub000/internal/database"
	"github.com/anish877/maintainer-dashboard-sub000/internal/errors"
)

// setupRouter builds a router with the same read-side wiring as main, backed
// by a throwaway database. The analyze route is excluded because it reaches
// out to GitHub.
func setupRouter(t *testing.T) (*gin.Engine, *database.Repository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewDB(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := database.NewRepository(db)
	dashboardService := dashboard.NewService(repo)

	r := gin.New()
	r.Use(errors.ErrorHandler())
	r.Use(errors.RecoveryHandler())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

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

	return r, repo
}

func TestHealthEndpoint(t *testing.T) {
	r, _ := setupRouter(t)

	tests := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
	}{
		{
			name:           "GET /health returns OK status",
			method:         "GET",
			path:           "/health",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "POST /health not routed",
			method:         "POST",
			path:           "/health",
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest(tt.method, tt.path, nil)
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestRepositoryHealthEndpointNotAnalyzed(t *testing.T) {
	r, _ := setupRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/repos/octo/hello/health", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRepositoryHealthEndpointAfterAnalysis(t *testing.T) {
	r, repo := setupRouter(t)
	ctx := context.Background()

	require.NoError(t, repo.UpsertSnapshot(ctx, &analysis.HealthSnapshot{
		RepositoryID:    "octo/hello",
		ContributorID:   "alice",
		Username:        "alice",
		RetentionScore:  90,
		EngagementScore: 80,
	}))
	require.NoError(t, repo.UpsertActivity(ctx, database.NewActivityRecord(
		"octo/hello", "alice", time.Now().UTC().Truncate(24*time.Hour), 2, 1)))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/repos/octo/hello/health", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Equal(t, "octo/hello", payload["repository_id"])

	aggregates, ok := payload["aggregates"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(1), aggregates["contributors"])

	trend, ok := payload["trend"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, false, trend["synthetic"])
}

func TestInsightsEndpoint(t *testing.T) {
	r, repo := setupRouter(t)

	require.NoError(t, repo.UpsertInsight(context.Background(), &analysis.Insight{
		RepositoryID:  "octo/hello",
		ContributorID: "alice",
		Type:          analysis.InsightRisingStar,
		Title:         "alice is a rising star",
		Description:   "d",
		Severity:      analysis.SeveritySuccess,
		Confidence:    90,
		IsActive:      true,
	}))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/repos/octo/hello/insights", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var payload struct {
		RepositoryID string             `json:"repository_id"`
		Insights     []analysis.Insight `json:"insights"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Equal(t, "octo/hello", payload.RepositoryID)
	require.Len(t, payload.Insights, 1)
	assert.Equal(t, analysis.InsightRisingStar, payload.Insights[0].Type)
}

func TestGetEnvOrDefault(t *testing.T) {
	t.Setenv("MAINTAINER_DASHBOARD_TEST_KEY", "set")
	assert.Equal(t, "set", getEnvOrDefault("MAINTAINER_DASHBOARD_TEST_KEY", "fallback"))
	assert.Equal(t, "fallback", getEnvOrDefault("MAINTAINER_DASHBOARD_TEST_MISSING", "fallback"))
}
