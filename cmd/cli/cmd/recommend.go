package cmd

import (
	"fmt"

	"github.com/bilgisen/veritas/internal/articles"
	"github.com/bilgisen/veritas/internal/cache"
	"github.com/bilgisen/veritas/internal/metrics"
	"github.com/bilgisen/veritas/internal/recommend"
	"github.com/spf13/cobra"
)

func newRecommendCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "recommend <article-link>",
		Short: "Find articles arguing the other side of a story",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			summaries, err := cache.New(s.cfg)
			if err != nil {
				summaries = cache.NewMemoryCache()
			}
			defer summaries.Close()

			picks, err := recommend.NewFetcherFromConfig(s.cfg, s.api, summaries, metrics.Nop{}).Fetch(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(picks) == 0 {
				fmt.Fprintln(out, "No opposing viewpoints found")
				return nil
			}
			for i, c := range picks {
				source := articles.UnknownPress
				if c.Source != nil {
					source = *c.Source
				}
				fmt.Fprintf(out, "%d. [%s] %s (%.2f)\n   %s\n", i+1, source, articles.CleanTitle(c.Title), c.Score, c.Link)
				if c.Summary != "" {
					fmt.Fprintf(out, "   %s\n", c.Summary)
				}
			}
			return nil
		},
	}
}

func newClearCacheCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-cache",
		Short: "Drop cached article summaries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if s.cfg.RedisURL == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "No REDIS_URL set, summaries are only cached per process")
				return nil
			}
			summaries, err := cache.New(s.cfg)
			if err != nil {
				return err
			}
			defer summaries.Close()

			if err := summaries.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Summary cache cleared")
			return nil
		},
	}
}
