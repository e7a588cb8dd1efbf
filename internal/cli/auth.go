package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"cartable/internal/auth"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var readPasswordFunc = term.ReadPassword // mockable

func newLoginCommand(app *App) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			email = strings.TrimSpace(email)
			if email == "" {
				return errors.New("--email is required")
			}

			fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
			pwd, err := readPasswordFunc(int(os.Stdin.Fd()))
			fmt.Fprintln(cmd.ErrOrStderr())
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}
			if len(pwd) == 0 {
				return errors.New("password is required")
			}

			ctx := cmd.Context()
			token, err := app.api.Login(ctx, email, string(pwd))
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			user, err := app.api.Me(ctx, token.AccessToken)
			if err != nil {
				return fmt.Errorf("fetch account: %w", err)
			}

			app.session.Set(token.AccessToken, user)
			if err := app.store.Save(app.session); err != nil {
				return err
			}

			app.logger.Debug("session stored", "path", app.store.Path(), "user_id", user.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", user.DisplayName())
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	return cmd
}

func newLogoutCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.session.Clear()
			if err := app.store.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoamiCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireLogin(); err != nil {
				return err
			}

			user, err := app.api.Me(cmd.Context(), app.session.Token())
			if err != nil {
				return app.check(err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s <%s>\n", user.DisplayName(), user.Email)
			if user.Role != "" {
				fmt.Fprintf(out, "role:    %s\n", user.Role)
			}
			if claims, err := auth.ParseClaims(app.session.Token()); err == nil && claims.ExpiresAt != nil {
				fmt.Fprintf(out, "expires: %s\n", claims.ExpiresAt.Time.Local().Format(time.RFC1123))
			}
			return nil
		},
	}
}

