// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"

	"github.com/manikhere79/devops-metrics-agent/internal/domain"
)

// Fetcher defines the behavior of a gateway for fetching pull-request
// data from GitHub. HTTP failures surface as *domain.FetchError.
type Fetcher interface {
	// FetchPullRequests returns up to perPage pull requests for the
	// repository ("owner/name"), newest activity first, carrying the
	// creation/merge/close timestamps cycle time needs.
	FetchPullRequests(ctx context.Context, repo string, perPage int, state string) ([]domain.PullRequestRecord, error)
	// FetchReviewData returns pull requests with their first-review
	// timestamp and review count, for review-time calculation.
	FetchReviewData(ctx context.Context, repo string, perPage int, state string) ([]domain.PullRequestRecord, error)
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	logger        *log.Logger
}

// reviewDataQuery fetches PRs with their review timestamps in a single
// search query, so review time never needs one reviews request per PR.
type reviewDataQuery struct {
	Search struct {
		PageInfo struct {
			HasNextPage bool
			EndCursor   githubv4.String
		}
		Edges []struct {
			Node struct {
				Typename    string `graphql:"__typename"`
				PullRequest struct {
					Number    githubv4.Int
					CreatedAt githubv4.DateTime
					MergedAt  githubv4.DateTime
					ClosedAt  githubv4.DateTime
					Reviews   struct {
						TotalCount githubv4.Int
						Nodes      []struct {
							SubmittedAt githubv4.DateTime
						}
					} `graphql:"reviews(first: 100)"`
				} `graphql:"... on PullRequest"`
			}
		}
	} `graphql:"search(query: $query, type: ISSUE, first: $first, after: $cursor)"`
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
func NewGitHubGateway(token string, logger *log.Logger) (Fetcher, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}
	return &GitHubGateway{
		restClient:    github.NewClient(httpClient),
		graphqlClient: githubv4.NewClient(httpClient),
		logger:        logger,
	}, nil
}

// FetchPullRequests lists pull requests via the REST API, newest
// activity first.
func (g *GitHubGateway) FetchPullRequests(ctx context.Context, repo string, perPage int, state string) ([]domain.PullRequestRecord, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}
	if perPage <= 0 {
		perPage = 10
	}
	if state == "" {
		state = "all"
	}

	g.logger.Printf("Fetching pull requests for %s (per_page=%d, state=%s)...", repo, perPage, state)
	opts := &github.PullRequestListOptions{
		State:       state,
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: perPage},
	}
	prs, _, err := g.restClient.PullRequests.List(ctx, owner, name, opts)
	if err != nil {
		return nil, fetchError(err)
	}

	records := make([]domain.PullRequestRecord, 0, len(prs))
	for _, pr := range prs {
		records = append(records, domain.PullRequestRecord{
			Number:    pr.GetNumber(),
			Title:     pr.GetTitle(),
			State:     pr.GetState(),
			Author:    pr.GetUser().GetLogin(),
			CreatedAt: pr.CreatedAt.GetTime(),
			MergedAt:  pr.MergedAt.GetTime(),
			ClosedAt:  pr.ClosedAt.GetTime(),
		})
	}
	g.logger.Printf("Fetched %d pull requests for %s.", len(records), repo)
	return records, nil
}

// FetchReviewData fetches pull requests with review timestamps via one
// GraphQL search query per page.
func (g *GitHubGateway) FetchReviewData(ctx context.Context, repo string, perPage int, state string) ([]domain.PullRequestRecord, error) {
	if _, _, err := splitRepo(repo); err != nil {
		return nil, err
	}
	if perPage <= 0 {
		perPage = 20
	}

	query := fmt.Sprintf("repo:%s is:pr", strings.TrimSpace(repo))
	switch state {
	case "open":
		query += " is:open"
	case "closed":
		query += " is:closed"
	}

	g.logger.Printf("Fetching review data for %s (query: %s)...", repo, query)
	variables := map[string]interface{}{
		"query":  githubv4.String(query),
		"first":  githubv4.Int(perPage),
		"cursor": (*githubv4.String)(nil),
	}

	var records []domain.PullRequestRecord
	for {
		var q reviewDataQuery
		if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
			return nil, fetchError(err)
		}

		for _, edge := range q.Search.Edges {
			if edge.Node.Typename != "PullRequest" {
				continue
			}
			prNode := edge.Node.PullRequest

			record := domain.PullRequestRecord{
				Number:      int(prNode.Number),
				CreatedAt:   optionalTime(prNode.CreatedAt),
				MergedAt:    optionalTime(prNode.MergedAt),
				ClosedAt:    optionalTime(prNode.ClosedAt),
				ReviewCount: int(prNode.Reviews.TotalCount),
			}

			// The earliest submitted review is the first-review event.
			if len(prNode.Reviews.Nodes) > 0 {
				first := prNode.Reviews.Nodes[0].SubmittedAt.Time
				for _, review := range prNode.Reviews.Nodes[1:] {
					if review.SubmittedAt.Before(first) {
						first = review.SubmittedAt.Time
					}
				}
				record.FirstReviewAt = &first
			}

			records = append(records, record)
		}

		if !q.Search.PageInfo.HasNextPage || len(records) >= perPage {
			break
		}
		variables["cursor"] = githubv4.NewString(q.Search.PageInfo.EndCursor)
		g.logger.Println("  Fetching next page of review data...")
	}

	g.logger.Printf("Fetched review data for %d pull requests in %s.", len(records), repo)
	return records, nil
}

// fetchError maps client errors onto *domain.FetchError. REST errors
// carry the remote HTTP status; transport and GraphQL failures carry
// only the message.
func fetchError(err error) error {
	var ger *github.ErrorResponse
	if errors.As(err, &ger) {
		status := 0
		if ger.Response != nil {
			status = ger.Response.StatusCode
		}
		return &domain.FetchError{StatusCode: status, Message: ger.Message}
	}
	return &domain.FetchError{Message: err.Error()}
}

func splitRepo(repo string) (owner, name string, err error) {
	owner, name, ok := strings.Cut(strings.TrimSpace(repo), "/")
	if !ok || owner == "" || name == "" {
		return "", "", fmt.Errorf("invalid repository %q, expected owner/name", repo)
	}
	return owner, name, nil
}

// optionalTime maps a GraphQL null (decoded as the zero time) to a nil
// pointer, matching the REST record shape.
func optionalTime(dt githubv4.DateTime) *time.Time {
	if dt.IsZero() {
		return nil
	}
	t := dt.Time
	return &t
}
