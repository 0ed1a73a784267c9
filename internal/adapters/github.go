package adapters

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/anish877/maintainer-dashboard-sub000/internal/database"
	"github.com/anish877/maintainer-dashboard-sub000/internal/types"
)

const (
	// githubPageSize is the per-page size for paginated list calls.
	githubPageSize = 100

	// Client-side throttle so a large sync stays well inside GitHub's
	// secondary rate limits.
	githubRequestsPerSecond = 2
	githubBurst             = 5
)

// Contributor is the slim projection of a repository contributor the
// pipeline needs: identity plus the all-time contribution count GitHub
// already aggregates.
type Contributor struct {
	Login         string `json:"login"`
	Contributions int    `json:"contributions"`
}

// ActivityStore is where synced activity lands. database.Repository
// implements it.
type ActivityStore interface {
	UpsertActivity(ctx context.Context, rec *database.ActivityRecord) error
}

// GitHubAdapter fetches contributor and activity data from the GitHub API.
type GitHubAdapter struct {
	client  *github.Client
	limiter *rate.Limiter
}

// NewGitHubAdapter creates a GitHub adapter. With an empty token requests go
// out unauthenticated, which works for public repositories at a much lower
// rate limit.
func NewGitHubAdapter(token string) *GitHubAdapter {
	var client *github.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		client = github.NewClient(oauth2.NewClient(context.Background(), ts))
	} else {
		client = github.NewClient(nil)
	}

	return &GitHubAdapter{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(githubRequestsPerSecond), githubBurst),
	}
}

// ListContributors returns up to limit contributors of the repository,
// ordered by contribution count as GitHub returns them.
func (g *GitHubAdapter) ListContributors(ctx context.Context, owner, repo string, limit int) ([]Contributor, error) {
	opts := &github.ListContributorsOptions{
		ListOptions: github.ListOptions{PerPage: githubPageSize},
	}

	var out []Contributor
	for {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		contributors, resp, err := g.client.Repositories.ListContributors(ctx, owner, repo, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list contributors for %s/%s: %w", owner, repo, err)
		}

		for _, c := range contributors {
			out = append(out, Contributor{
				Login:         c.GetLogin(),
				Contributions: c.GetContributions(),
			})
			if len(out) >= limit {
				return out, nil
			}
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return out, nil
}

// FetchProfile fetches a contributor's public profile. Only the free-text
// location is kept; geo resolution happens downstream.
func (g *GitHubAdapter) FetchProfile(ctx context.Context, login string) (types.ContributorProfile, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return types.ContributorProfile{}, err
	}

	user, _, err := g.client.Users.Get(ctx, login)
	if err != nil {
		return types.ContributorProfile{}, fmt.Errorf("failed to fetch profile for %s: %w", login, err)
	}

	return types.ContributorProfile{Location: user.GetLocation()}, nil
}

// activityKey buckets issues and PRs by author and creation day.
type activityKey struct {
	login string
	day   time.Time
}

// SyncActivity walks the repository's issues and pull requests created since
// the given time and upserts one row per contributor per day into the store.
// Returns how many contributor-days were written. Re-running the sync for an
// overlapping window overwrites rather than duplicates.
func (g *GitHubAdapter) SyncActivity(ctx context.Context, owner, repo string, since time.Time, store ActivityStore) (int, error) {
	repositoryID := fmt.Sprintf("%s/%s", owner, repo)

	opts := &github.IssueListByRepoOptions{
		State:       "all",
		Since:       since,
		Sort:        "created",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: githubPageSize},
	}

	buckets := make(map[activityKey]*database.ActivityRecord)
	for {
		if err := g.limiter.Wait(ctx); err != nil {
			return 0, err
		}

		issues, resp, err := g.client.Issues.ListByRepo(ctx, owner, repo, opts)
		if err != nil {
			return 0, fmt.Errorf("failed to list issues for %s: %w", repositoryID, err)
		}

		for _, issue := range issues {
			created := issue.GetCreatedAt().Time
			if created.Before(since) {
				continue
			}
			login := issue.GetUser().GetLogin()
			if login == "" {
				continue
			}

			d := created.UTC().Truncate(24 * time.Hour)
			key := activityKey{login: login, day: d}
			rec, ok := buckets[key]
			if !ok {
				rec = database.NewActivityRecord(repositoryID, login, d, 0, 0)
				buckets[key] = rec
			}

			// The issues endpoint returns PRs too; they carry a
			// pull_request stanza.
			if issue.IsPullRequest() {
				rec.PRs++
			} else {
				rec.Issues++
			}
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	for _, rec := range buckets {
		if err := store.UpsertActivity(ctx, rec); err != nil {
			return 0, fmt.Errorf("failed to store activity for %s: %w", rec.ContributorID, err)
		}
	}

	slog.Info("Activity sync completed",
		"repository", repositoryID,
		"since", since.Format(time.RFC3339),
		"contributor_days", len(buckets))

	return len(buckets), nil
}

// RateLimit reports the remaining core API quota, for the metrics endpoint.
func (g *GitHubAdapter) RateLimit(ctx context.Context) (remaining int, limit int, err error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return 0, 0, err
	}

	limits, _, err := g.client.RateLimit.Get(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to fetch rate limit: %w", err)
	}

	core := limits.GetCore()
	return core.Remaining, core.Limit, nil
}
