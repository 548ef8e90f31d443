package cmd

import (
	"fmt"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/bilgisen/veritas/internal/auth"
	"github.com/bilgisen/veritas/internal/models"
	"github.com/spf13/cobra"
)

// askPassword prompts for a password unless one was given on the command line.
var askPassword = func(message string, out *string) error {
	return survey.AskOne(&survey.Password{Message: message}, out, survey.WithValidator(survey.Required))
}

func newSignupCommand(s *session) *cobra.Command {
	var req models.SignupRequest

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.Password == "" {
				if err := askPassword("Password:", &req.Password); err != nil {
					return err
				}
				if err := askPassword("Password again:", &req.PasswordConfirm); err != nil {
					return err
				}
			}
			if req.PasswordConfirm == "" {
				req.PasswordConfirm = req.Password
			}

			user, err := auth.NewClient(s.api, s.tokens).Signup(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Account %d created for %s. Run `veritas login` to sign in.\n", user.ID, user.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "display name")
	cmd.Flags().StringVar(&req.Email, "email", "", "email address")
	cmd.Flags().StringVar(&req.Password, "password", "", "password, prompted when empty")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLoginCommand(s *session) *cobra.Command {
	var req models.LoginRequest

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.Password == "" {
				if err := askPassword("Password:", &req.Password); err != nil {
					return err
				}
			}
			if _, err := auth.NewClient(s.api, s.tokens).Login(cmd.Context(), req); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s, token stored in %s\n", req.Email, s.tokens.Path())
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Email, "email", "", "email address")
	cmd.Flags().StringVar(&req.Password, "password", "", "password, prompted when empty")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := auth.NewClient(s.api, s.tokens).Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoamiCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show who the stored token belongs to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := s.requireLogin(); err != nil {
				return err
			}
			id, err := auth.Inspect(s.tokens.Token())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s <%s> (user %s)\n", id.Nickname, id.Email, id.UserID)
			switch {
			case id.ExpiresAt.IsZero():
			case id.Expired(time.Now()):
				fmt.Fprintf(out, "Token expired at %s, log in again\n", id.ExpiresAt.Local().Format(time.RFC3339))
			default:
				fmt.Fprintf(out, "Token valid until %s\n", id.ExpiresAt.Local().Format(time.RFC3339))
			}
			return nil
		},
	}
}
