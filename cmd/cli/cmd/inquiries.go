package cmd

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/bilgisen/veritas/internal/inquiries"
	"github.com/spf13/cobra"
)

func newInquireCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "inquire <title> <content>",
		Short: "Send an inquiry to the Veritas team",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			inq, err := inquiries.NewClient(s.api, s.tokens).Create(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Inquiry %d submitted (%s)\n", inq.ID, inq.Status)
			return nil
		},
	}
}

func newInquiriesCommand(s *session) *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:   "inquiries",
		Short: "List your inquiries, or show, edit and remove one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := s.requireLogin(); err != nil {
				return err
			}
			list, err := inquiries.NewClient(s.api, s.tokens).List(cmd.Context(), page)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTATUS\tTITLE")
			for _, it := range list.Items {
				fmt.Fprintf(w, "%d\t%s\t%s\n", it.ID, it.Status, it.Title)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "%d total\n", list.Count)
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.AddCommand(
		newInquiryShowCommand(s),
		newInquiryEditCommand(s),
		newInquiryRemoveCommand(s),
	)
	return cmd
}

func newInquiryShowCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one inquiry in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := inquiryID(args[0])
			if err != nil {
				return err
			}
			inq, err := inquiries.NewClient(s.api, s.tokens).Get(cmd.Context(), id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "#%d %s [%s]\n", inq.ID, inq.Title, inq.Status)
			if inq.CreatedAt != nil {
				fmt.Fprintf(out, "Created %s\n", *inq.CreatedAt)
			}
			fmt.Fprintf(out, "\n%s\n", inq.Content)
			return nil
		},
	}
}

func newInquiryEditCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <id> <title> <content>",
		Short: "Replace the title and content of an inquiry",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := inquiryID(args[0])
			if err != nil {
				return err
			}
			inq, err := inquiries.NewClient(s.api, s.tokens).Update(cmd.Context(), id, args[1], args[2])
			if err != nil {
				return err
			}

			brief := inquiries.Brief(*inq)
			fmt.Fprintf(cmd.OutOrStdout(), "Inquiry %d updated (%s): %s\n", brief.ID, brief.Status, *brief.Excerpt)
			return nil
		},
	}
}

func newInquiryRemoveCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete an inquiry",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := inquiryID(args[0])
			if err != nil {
				return err
			}
			if err := inquiries.NewClient(s.api, s.tokens).Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Inquiry %d deleted\n", id)
			return nil
		},
	}
}

func inquiryID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid inquiry id %q", arg)
	}
	return id, nil
}
