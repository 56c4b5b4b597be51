package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var tokenTTL time.Duration

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage identity tokens",
}

var tokenIssueCmd = needsServices(&cobra.Command{
	Use:   "issue [user-id]",
	Short: "Issue a signed token for a user",
	Long: `Issue an HS256 token for a user. Requires auth.mode = "jwt" and a
configured auth.jwt_secret.`,
	Args: cobra.ExactArgs(1),
	RunE: runTokenIssue,
})

func init() {
	tokenIssueCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
	tokenCmd.AddCommand(tokenIssueCmd)
	rootCmd.AddCommand(tokenCmd)
}

func runTokenIssue(cmd *cobra.Command, args []string) error {
	if services == nil || services.Tokens == nil {
		return errors.New("token issuing requires auth.mode = jwt")
	}
	if tokenTTL <= 0 {
		return errors.New("--ttl must be positive")
	}

	token, err := services.Tokens.IssueToken(args[0], tokenTTL)
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}
	cmd.Println(token)
	return nil
}
