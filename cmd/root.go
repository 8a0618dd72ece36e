// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/manikhere79/devops-metrics-agent/internal/config"
	"github.com/manikhere79/devops-metrics-agent/internal/configstore"
)

var rootCmd = &cobra.Command{
	Use:   "devops-metrics",
	Short: "A CLI tool to track repositories and compute pull-request metrics.",
	Long: `devops-metrics stores a GitHub token and a per-user list of tracked
repositories in a local SQLite database, fetches pull-request data from
the GitHub API, and computes cycle-time and review-time statistics.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().String("db", "", "Path to the SQLite database (default: METRICS_DB_PATH or ~/.devops-metrics/metrics_db.sqlite)")
	rootCmd.PersistentFlags().StringP("user", "u", "", "User id to operate on (default: METRICS_USER_ID or user1)")
}

// newLogger builds the command logger: discard by default, stderr when
// --verbose is set.
func newLogger(cmd *cobra.Command) *log.Logger {
	verbose, _ := cmd.InheritedFlags().GetBool("verbose")
	logger := log.New(io.Discard, "", log.LstdFlags)
	if verbose {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

// loadSettings resolves environment configuration and applies the
// --db/--user flag overrides.
func loadSettings(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if db, _ := cmd.InheritedFlags().GetString("db"); db != "" {
		cfg.DBPath = db
	}
	if user, _ := cmd.InheritedFlags().GetString("user"); user != "" {
		cfg.UserID = user
	}
	return cfg, nil
}

// openStore opens the configuration store at the resolved database path.
func openStore(cfg *config.Config, logger *log.Logger, resetRepos bool) (*configstore.Store, error) {
	if err := cfg.EnsureDataDir(); err != nil {
		return nil, err
	}
	return configstore.Open(configstore.Config{
		Path:                       cfg.DBPath,
		ResetReposOnCredentialSave: resetRepos,
		Logger:                     logger,
	})
}

// fatal prints an error to stderr and exits, the shared failure path
// for all commands.
func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
