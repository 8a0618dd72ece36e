// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/manikhere79/devops-metrics-agent/internal/configstore"
	"github.com/manikhere79/devops-metrics-agent/internal/domain"
	"github.com/manikhere79/devops-metrics-agent/internal/gateway"
	"github.com/manikhere79/devops-metrics-agent/internal/metrics"
)

// FetcherFactory builds a Fetcher for a stored credential. Injected so
// tests can substitute a mock gateway.
type FetcherFactory func(token string, logger *log.Logger) (gateway.Fetcher, error)

// FetchOptions selects which repositories to fetch and how.
//
// When Repo is empty and AllRepos is false, the FIRST tracked
// repository is used. That is the deliberate default, not a fallback:
// metrics answer "how is the repo I care most about doing", and the
// first repo a user tracked is that repo. AllRepos opts into
// aggregating every tracked repository instead.
type FetchOptions struct {
	Repo     string
	AllRepos bool
	PerPage  int
	State    string
}

// MetricsService orchestrates a metric request: resolve the user's
// credential and target repositories from the store, fetch raw
// pull-request records, and run the pipeline.
type MetricsService struct {
	store      *configstore.Store
	newFetcher FetcherFactory
	logger     *log.Logger
}

// NewMetricsService creates a new MetricsService instance.
func NewMetricsService(store *configstore.Store, newFetcher FetcherFactory, logger *log.Logger) *MetricsService {
	return &MetricsService{
		store:      store,
		newFetcher: newFetcher,
		logger:     logger,
	}
}

// CycleTime computes creation-to-merge time over the selected repos.
func (s *MetricsService) CycleTime(ctx context.Context, userID string, fo FetchOptions, mo metrics.Options) (domain.MetricResult, error) {
	return s.run(ctx, userID, fo, mo,
		func(ctx context.Context, f gateway.Fetcher, repo string) ([]domain.PullRequestRecord, error) {
			return f.FetchPullRequests(ctx, repo, fo.PerPage, fo.State)
		},
		metrics.ComputeCycleTime)
}

// ReviewTime computes creation-to-first-review time over the selected repos.
func (s *MetricsService) ReviewTime(ctx context.Context, userID string, fo FetchOptions, mo metrics.Options) (domain.MetricResult, error) {
	return s.run(ctx, userID, fo, mo,
		func(ctx context.Context, f gateway.Fetcher, repo string) ([]domain.PullRequestRecord, error) {
			return f.FetchReviewData(ctx, repo, fo.PerPage, fo.State)
		},
		metrics.ComputeReviewTime)
}

func (s *MetricsService) run(ctx context.Context, userID string, fo FetchOptions, mo metrics.Options,
	fetch func(context.Context, gateway.Fetcher, string) ([]domain.PullRequestRecord, error),
	compute func([]domain.PullRequestRecord, metrics.Options) (domain.MetricResult, error)) (domain.MetricResult, error) {

	s.logger.Printf("Usecase: computing metric for user %q...", userID)

	cfg, err := s.store.GetConfig(ctx, userID)
	if err != nil {
		return domain.MetricResult{}, err
	}
	if cfg.Credential == "" {
		return domain.MetricResult{}, fmt.Errorf("user %q: %w", userID, domain.ErrMissingCredential)
	}

	repos, err := resolveRepos(cfg, fo)
	if err != nil {
		return domain.MetricResult{}, err
	}

	fetcher, err := s.newFetcher(cfg.Credential, s.logger)
	if err != nil {
		return domain.MetricResult{}, fmt.Errorf("creating github gateway: %w", err)
	}

	// Fetch every repo concurrently; slots keep per-repo ordering so
	// the combined sample is reproducible.
	slots := make([][]domain.PullRequestRecord, len(repos))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, repo := range repos {
		i, repo := i, repo
		eg.Go(func() error {
			records, err := fetch(egCtx, fetcher, repo)
			if err != nil {
				return err
			}
			slots[i] = records
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return domain.MetricResult{}, err
	}

	var records []domain.PullRequestRecord
	for _, slot := range slots {
		records = append(records, slot...)
	}
	s.logger.Printf("Usecase: fetched %d records across %d repo(s).", len(records), len(repos))

	result, err := compute(records, mo)
	result.Repos = repos
	return result, err
}

// resolveRepos picks the target repositories: an explicit repo wins,
// then all tracked repos when requested, otherwise the first tracked
// repo only.
func resolveRepos(cfg domain.UserConfig, fo FetchOptions) ([]string, error) {
	if fo.Repo != "" {
		return []string{fo.Repo}, nil
	}
	if len(cfg.TrackedRepos) == 0 {
		return nil, fmt.Errorf("user %q: %w", cfg.UserID, domain.ErrNoTrackedRepos)
	}
	if fo.AllRepos {
		return cfg.TrackedRepos, nil
	}
	return cfg.TrackedRepos[:1], nil
}
