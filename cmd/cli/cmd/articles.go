package cmd

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/bilgisen/veritas/internal/articles"
	"github.com/bilgisen/veritas/internal/bookmarks"
	"github.com/bilgisen/veritas/internal/logger"
	"github.com/bilgisen/veritas/internal/models"
	"github.com/bilgisen/veritas/internal/storage"
	"github.com/spf13/cobra"
)

func newArticlesCommand(s *session) *cobra.Command {
	var page, size int

	cmd := &cobra.Command{
		Use:   "articles",
		Short: "List the latest articles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, offset := articles.Page(page, size)
			list, err := articles.NewClient(s.api).List(cmd.Context(), limit, offset)
			if err != nil {
				return err
			}

			marks := bookmarks.New(s.api, s.tokens)
			if err := marks.Load(cmd.Context()); err != nil {
				logger.Warn().Err(err).Msg("bookmark state unavailable")
			}
			return printArticles(cmd.OutOrStdout(), list, marks.IsSaved)
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&size, "size", articles.DefaultPageSize, "articles per page (max 100)")
	return cmd
}

func newBookmarksCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "bookmarks",
		Short: "List bookmarked articles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := s.requireLogin(); err != nil {
				return err
			}
			marks := bookmarks.New(s.api, s.tokens)
			if err := marks.Load(cmd.Context()); err != nil {
				return err
			}
			list := marks.List()
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No bookmarks yet")
				return nil
			}
			return printArticles(cmd.OutOrStdout(), list, marks.IsSaved)
		},
	}
}

func newToggleCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <article-id>",
		Short: "Bookmark an article, or remove it if already bookmarked",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid article id %q", args[0])
			}

			marks := bookmarks.New(s.api, s.tokens)
			if err := marks.Load(cmd.Context()); err != nil {
				return err
			}
			saved, err := marks.Toggle(cmd.Context(), models.Article{ID: id})
			if err != nil {
				return err
			}
			if saved {
				fmt.Fprintf(cmd.OutOrStdout(), "Article %d bookmarked\n", id)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Article %d removed from bookmarks\n", id)
			}
			return nil
		},
	}
}

func newExportCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Write a JSON snapshot of your bookmarks to EXPORT_PATH or the R2 bucket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := s.requireLogin(); err != nil {
				return err
			}
			marks := bookmarks.New(s.api, s.tokens)
			if err := marks.Load(cmd.Context()); err != nil {
				return err
			}

			sink, err := storage.NewSink(cmd.Context(), s.cfg)
			if err != nil {
				return err
			}
			list := marks.List()
			loc, err := storage.ExportBookmarks(cmd.Context(), sink, list)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d bookmarks to %s\n", len(list), loc)
			return nil
		},
	}
}

func newExportsCommand(s *session) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "exports",
		Short: "List bookmark snapshots written under EXPORT_PATH, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sink, err := storage.NewFileSink(s.cfg.ExportPath)
			if err != nil {
				return err
			}
			paths, err := sink.List(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(paths) == 0 {
				fmt.Fprintf(out, "No exports under %s\n", s.cfg.ExportPath)
				return nil
			}
			if limit > 0 && len(paths) > limit {
				paths = paths[:limit]
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "EXPORTED\tBOOKMARKS\tFILE")
			for _, p := range paths {
				snap, err := sink.Read(p)
				if err != nil {
					logger.Warn().Err(err).Str("file", p).Msg("skipping unreadable export")
					continue
				}
				fmt.Fprintf(w, "%s\t%d\t%s\n", snap.ExportedAt.Local().Format("2006-01-02 15:04"), snap.Count, p)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "show at most this many exports, 0 for all")
	return cmd
}

func printArticles(out io.Writer, list []models.Article, saved func(int) bool) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\t\tPRESS\tTIME\tTITLE")
	for _, a := range list {
		mark := ""
		if saved(a.ID) {
			mark = "★"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", a.ID, mark, a.Press, a.Time, a.Title)
	}
	return w.Flush()
}
