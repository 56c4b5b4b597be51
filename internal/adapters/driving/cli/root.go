// Package cli provides the docqa command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// version is set at build time.
var version = "dev"

// TokenIssuer mints identity tokens. Only available in JWT auth mode.
type TokenIssuer interface {
	IssueToken(userID string, ttl time.Duration) (string, error)
}

// Services are the pipeline services commands run against.
type Services struct {
	Ingest   driving.IngestService
	Ask      driving.AskService
	Document driving.DocumentService
	History  driving.HistoryService
	Auth     driven.AuthProvider

	// Tokens is nil unless auth runs in JWT mode.
	Tokens TokenIssuer

	// Metrics is served at /metrics by "mcp serve --port".
	Metrics http.Handler
}

// Wiring builds the pipeline services. The returned cleanup releases stores
// and provider clients.
type Wiring func(ctx context.Context) (*Services, func(), error)

var (
	wiring          Wiring
	services        *Services
	cleanup         func()
	settingsService driving.SettingsService
)

// Global flags.
var (
	verbose   bool
	authToken string
	timeout   time.Duration
)

// annotationServices marks commands that need the pipeline services.
const annotationServices = "docqa/services"

var rootCmd = &cobra.Command{
	Use:   "docqa",
	Short: "Ask questions about your documents",
	Long: `docqa ingests documents, splits them into overlapping chunks, embeds them,
and answers questions using only the most relevant chunks as context.

Every answer is recorded in a per-user history together with the chunks
it was grounded in.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if cleanup != nil {
			cleanup()
			cleanup = nil
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print pipeline progress to stderr")
	rootCmd.PersistentFlags().StringVar(&authToken, "token", os.Getenv("DOCQA_TOKEN"),
		"identity token (default $DOCQA_TOKEN)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "per-operation timeout")
}

// SetWiring sets how pipeline services are built.
func SetWiring(w Wiring) {
	wiring = w
}

// SetSettingsService sets the settings service used by the settings commands.
func SetSettingsService(s driving.SettingsService) {
	settingsService = s
}

// Execute runs the root command.
func Execute(v string) error {
	version = v
	rootCmd.SetOut(os.Stdout)
	if err := rootCmd.Execute(); err != nil {
		return describeError(err)
	}
	return nil
}

// needsServices marks cmd as requiring the pipeline services.
func needsServices(cmd *cobra.Command) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[annotationServices] = "true"
	return cmd
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if cmd.Annotations[annotationServices] != "true" || services != nil {
		return nil
	}
	if wiring == nil {
		return errors.New("services not configured")
	}

	svc, done, err := wiring(cmd.Context())
	if err != nil {
		return err
	}
	services, cleanup = svc, done
	return nil
}

// begin returns a context bounded by --timeout and the authenticated owner.
func begin(cmd *cobra.Command) (context.Context, context.CancelFunc, string, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)

	if services == nil || services.Auth == nil {
		cancel()
		return nil, nil, "", errors.New("auth provider not configured")
	}

	ownerID, err := services.Auth.Authenticate(ctx, authToken)
	if err != nil {
		cancel()
		return nil, nil, "", fmt.Errorf("authenticate: %w", err)
	}
	logger.Debug("Authenticated as %s", ownerID)
	return ctx, cancel, ownerID, nil
}
