package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the stored GitHub credential",
}

var authSetupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Save the GitHub token to persistent storage",
	Long: `Saves the GitHub token for the selected user. The token comes from
--token when given, otherwise from the GITHUB_PAT environment variable.
A user's tracked repositories survive a token refresh unless
--reset-repos is set.`,
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger(cmd)

		cfg, err := loadSettings(cmd)
		if err != nil {
			fatal("Failed to load configuration: %v", err)
		}

		token, _ := cmd.Flags().GetString("token")
		if token == "" {
			token = cfg.GitHubToken
		}
		if token == "" {
			fatal("Error: GITHUB_PAT environment variable is not set and no --token provided.")
		}

		resetRepos, _ := cmd.Flags().GetBool("reset-repos")
		store, err := openStore(cfg, logger, resetRepos)
		if err != nil {
			fatal("Failed to open the config store: %v", err)
		}
		defer store.Close()

		if err := store.SaveCredential(context.Background(), cfg.UserID, token); err != nil {
			fatal("Failed to save the credential: %v", err)
		}
		fmt.Printf("GitHub token saved for user %q.\n", cfg.UserID)
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authSetupCmd)
	authSetupCmd.Flags().String("token", "", "GitHub token to store (default: GITHUB_PAT environment variable)")
	authSetupCmd.Flags().Bool("reset-repos", false, "Re-initialize the tracked-repository list when saving the token")
}
