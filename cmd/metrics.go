package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/manikhere79/devops-metrics-agent/internal/domain"
	"github.com/manikhere79/devops-metrics-agent/internal/gateway"
	"github.com/manikhere79/devops-metrics-agent/internal/metrics"
	"github.com/manikhere79/devops-metrics-agent/internal/usecase"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Compute pull-request metrics and output them as JSON",
	Long: `Fetches pull-request data from GitHub and computes the requested metric.
Without --repo, the first tracked repository is used; --all-repos
aggregates across every tracked repository instead.`,
}

var cycleTimeCmd = &cobra.Command{
	Use:   "cycle-time",
	Short: "Elapsed time from PR creation to merge",
	Run: func(cmd *cobra.Command, args []string) {
		runMetric(cmd, func(s *usecase.MetricsService, ctx context.Context, userID string, fo usecase.FetchOptions, mo metrics.Options) (domain.MetricResult, error) {
			return s.CycleTime(ctx, userID, fo, mo)
		})
	},
}

var reviewTimeCmd = &cobra.Command{
	Use:   "review-time",
	Short: "Elapsed time from PR creation to first review",
	Run: func(cmd *cobra.Command, args []string) {
		runMetric(cmd, func(s *usecase.MetricsService, ctx context.Context, userID string, fo usecase.FetchOptions, mo metrics.Options) (domain.MetricResult, error) {
			return s.ReviewTime(ctx, userID, fo, mo)
		})
	},
}

func runMetric(cmd *cobra.Command, compute func(*usecase.MetricsService, context.Context, string, usecase.FetchOptions, metrics.Options) (domain.MetricResult, error)) {
	logger := newLogger(cmd)

	cfg, err := loadSettings(cmd)
	if err != nil {
		fatal("Failed to load configuration: %v", err)
	}

	mo, err := metricOptions(cmd)
	if err != nil {
		fatal("%v", err)
	}
	fo := fetchOptions(cmd)

	store, err := openStore(cfg, logger, false)
	if err != nil {
		fatal("Failed to open the config store: %v", err)
	}
	defer store.Close()

	service := usecase.NewMetricsService(store, gateway.NewGitHubGateway, logger)
	result, err := compute(service, context.Background(), cfg.UserID, fo, mo)
	if err != nil {
		fatal("Failed to compute metric: %v", err)
	}

	jsonData, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fatal("Failed to marshal result to JSON: %v", err)
	}
	fmt.Println(string(jsonData))
}

func metricOptions(cmd *cobra.Command) (metrics.Options, error) {
	unitStr, _ := cmd.InheritedFlags().GetString("unit")
	aggStr, _ := cmd.InheritedFlags().GetString("aggregate")

	var opts metrics.Options
	switch unitStr {
	case "", "hours":
		opts.Unit = metrics.Hours
	case "days":
		opts.Unit = metrics.Days
	default:
		return opts, fmt.Errorf("invalid --unit %q, expected hours or days", unitStr)
	}
	switch aggStr {
	case "", "mean":
		opts.Aggregate = metrics.Mean
	case "median":
		opts.Aggregate = metrics.Median
	default:
		return opts, fmt.Errorf("invalid --aggregate %q, expected mean or median", aggStr)
	}
	return opts, nil
}

func fetchOptions(cmd *cobra.Command) usecase.FetchOptions {
	repo, _ := cmd.InheritedFlags().GetString("repo")
	allRepos, _ := cmd.InheritedFlags().GetBool("all-repos")
	perPage, _ := cmd.InheritedFlags().GetInt("per-page")
	state, _ := cmd.InheritedFlags().GetString("state")
	return usecase.FetchOptions{
		Repo:     repo,
		AllRepos: allRepos,
		PerPage:  perPage,
		State:    state,
	}
}

func init() {
	rootCmd.AddCommand(metricsCmd)
	metricsCmd.AddCommand(cycleTimeCmd)
	metricsCmd.AddCommand(reviewTimeCmd)
	metricsCmd.PersistentFlags().StringP("repo", "r", "", "Repository to analyze (owner/name); default is the first tracked repo")
	metricsCmd.PersistentFlags().Bool("all-repos", false, "Aggregate across all tracked repositories")
	metricsCmd.PersistentFlags().String("unit", "hours", "Time unit for values (hours or days)")
	metricsCmd.PersistentFlags().String("aggregate", "mean", "Aggregate to compute (mean or median)")
	metricsCmd.PersistentFlags().Int("per-page", 50, "Number of pull requests to fetch per repository")
	metricsCmd.PersistentFlags().String("state", "all", "PR state filter (open, closed, or all)")
}
