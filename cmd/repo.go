package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/manikhere79/devops-metrics-agent/internal/configstore"
)

var repoCmd = &cobra.Command{
	Use:   "repo",
	Short: "Manage the tracked-repository list",
}

var repoAddCmd = &cobra.Command{
	Use:   "add <owner/name>",
	Short: "Add a repository to the tracked list",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withStore(cmd, func(ctx context.Context, store *configstore.Store, userID string) error {
			outcome, err := store.AddTrackedRepo(ctx, userID, args[0])
			if err != nil {
				return err
			}
			if outcome == configstore.AlreadyTracked {
				fmt.Printf("Repository %q is already tracked.\n", args[0])
			} else {
				fmt.Printf("Repository %q is now tracked.\n", args[0])
			}
			return nil
		})
	},
}

var repoRemoveCmd = &cobra.Command{
	Use:   "remove <owner/name>",
	Short: "Remove a repository from the tracked list",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withStore(cmd, func(ctx context.Context, store *configstore.Store, userID string) error {
			outcome, err := store.RemoveTrackedRepo(ctx, userID, args[0])
			if err != nil {
				return err
			}
			if outcome == configstore.NotTracked {
				fmt.Printf("Repository %q is not in the tracked list.\n", args[0])
			} else {
				fmt.Printf("Repository %q is no longer tracked.\n", args[0])
			}
			return nil
		})
	},
}

var repoListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked repositories",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		withStore(cmd, func(ctx context.Context, store *configstore.Store, userID string) error {
			repos, err := store.ListTrackedRepos(ctx, userID)
			if err != nil {
				return err
			}
			if len(repos) == 0 {
				fmt.Println("No tracked repositories.")
				return nil
			}
			for i, repo := range repos {
				fmt.Printf("%d. %s\n", i+1, repo)
			}
			return nil
		})
	},
}

// withStore opens the store for the selected user, runs fn, and exits
// on error, so each subcommand only contains its own logic.
func withStore(cmd *cobra.Command, fn func(ctx context.Context, store *configstore.Store, userID string) error) {
	logger := newLogger(cmd)
	cfg, err := loadSettings(cmd)
	if err != nil {
		fatal("Failed to load configuration: %v", err)
	}
	store, err := openStore(cfg, logger, false)
	if err != nil {
		fatal("Failed to open the config store: %v", err)
	}
	defer store.Close()

	if err := fn(context.Background(), store, cfg.UserID); err != nil {
		fatal("Error: %v", err)
	}
}

func init() {
	rootCmd.AddCommand(repoCmd)
	repoCmd.AddCommand(repoAddCmd)
	repoCmd.AddCommand(repoRemoveCmd)
	repoCmd.AddCommand(repoListCmd)
}
