// Package cmd holds the commands of the veritas CLI.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/bilgisen/veritas/internal/apiclient"
	"github.com/bilgisen/veritas/internal/auth"
	"github.com/bilgisen/veritas/internal/config"
	"github.com/bilgisen/veritas/internal/logger"
	"github.com/bilgisen/veritas/internal/metrics"
	"github.com/spf13/cobra"
)

// Version information
var (
	Version = "dev"
	Commit  = "none"
)

// session is what every command needs once flags and env are resolved.
type session struct {
	cfg    *config.Config
	tokens *auth.FileStore
	api    *apiclient.Client
}

// NewRootCommand creates the root command for the veritas CLI
func NewRootCommand() *cobra.Command {
	s := &session{}
	var apiURL, tokenFile string

	cmd := &cobra.Command{
		Use:   "veritas",
		Short: "Veritas CLI - read political news from both sides",
		Long: `Veritas CLI talks to the Veritas news backend: browse the feed,
manage bookmarks, find articles with an opposing viewpoint and send inquiries.`,
		Version:       fmt.Sprintf("%s (commit: %s)", Version, Commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return s.open(apiURL, tokenFile)
		},
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&apiURL, "api", "", "backend base URL (default from API_BASE_URL)")
	cmd.PersistentFlags().StringVar(&tokenFile, "token-file", "", "access token file (default from TOKEN_FILE)")

	cmd.AddCommand(
		newSignupCommand(s),
		newLoginCommand(s),
		newLogoutCommand(s),
		newWhoamiCommand(s),
		newArticlesCommand(s),
		newBookmarksCommand(s),
		newToggleCommand(s),
		newExportCommand(s),
		newExportsCommand(s),
		newRecommendCommand(s),
		newClearCacheCommand(s),
		newInquireCommand(s),
		newInquiriesCommand(s),
	)
	return cmd
}

func (s *session) open(apiURL, tokenFile string) error {
	cfg, err := config.Load()
	if apiURL != "" || tokenFile != "" {
		// Flags may repair what the environment got wrong, so validate afterwards.
		cfg = config.FromEnv()
		if apiURL != "" {
			cfg.APIBaseURL = strings.TrimRight(apiURL, "/")
		}
		if tokenFile != "" {
			cfg.TokenFile = tokenFile
		}
		err = cfg.Validate()
	}
	if err != nil {
		return err
	}

	level := "warn"
	if os.Getenv("LOG_LEVEL") != "" {
		level = cfg.LogLevel
	}
	if err := logger.Init(logger.Config{Level: level, Output: "stderr", Pretty: true}); err != nil {
		return err
	}

	s.cfg = cfg
	s.tokens = auth.NewFileStore(cfg.TokenFile)
	s.api = apiclient.NewFromConfig(cfg, s.tokens, metrics.Nop{})
	return nil
}

func (s *session) requireLogin() error {
	if !s.tokens.IsAuthenticated() {
		return apiclient.ErrNeedsAuth
	}
	return nil
}
