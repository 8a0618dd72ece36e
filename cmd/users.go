package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/manikhere79/devops-metrics-agent/internal/configstore"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Inspect stored user configurations (read-only diagnostic)",
	Long: `Prints the stored configuration for the selected user, or for every
user with --all. Tokens are masked to their first and last four
characters unless --show-token is set.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		showToken, _ := cmd.Flags().GetBool("show-token")
		all, _ := cmd.Flags().GetBool("all")

		withStore(cmd, func(ctx context.Context, store *configstore.Store, userID string) error {
			userIDs := []string{userID}
			if all {
				var err error
				userIDs, err = store.ListUsers(ctx)
				if err != nil {
					return err
				}
				if len(userIDs) == 0 {
					fmt.Println("No users found in database.")
					return nil
				}
			}

			for _, id := range userIDs {
				cfg, err := store.GetConfig(ctx, id)
				if err != nil {
					return err
				}
				fmt.Printf("User:   %s\n", id)
				fmt.Printf("Token:  %s\n", formatToken(cfg.Credential, !showToken))
				if len(cfg.TrackedRepos) == 0 {
					fmt.Println("Repos:  (none)")
				} else {
					fmt.Println("Repos:")
					for i, repo := range cfg.TrackedRepos {
						fmt.Printf("  %d. %s\n", i+1, repo)
					}
				}
				fmt.Println()
			}
			return nil
		})
	},
}

// formatToken masks a credential for display: first and last four
// characters only, unless the token is too short to mask meaningfully.
func formatToken(token string, mask bool) string {
	if token == "" {
		return "(not set)"
	}
	if !mask {
		return token
	}
	if len(token) > 8 {
		return fmt.Sprintf("%s...%s (hidden)", token[:4], token[len(token)-4:])
	}
	return "**** (hidden)"
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.Flags().Bool("all", false, "Show every user in the database")
	usersCmd.Flags().Bool("show-token", false, "Print the stored token unmasked")
}
