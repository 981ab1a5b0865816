package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"codeladder/internal/session"
)

func (a *App) loginCommand() *cobra.Command {
	var username, token string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Save the username and token used for backend calls",
		Long: `Save a session for later commands. The token is the bearer token issued
by the code ladder web login. When --token is omitted it is read from stdin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(token) == "" {
				fmt.Fprint(cmd.OutOrStdout(), "Token: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && strings.TrimSpace(line) == "" {
					return errors.New("token is required")
				}
				token = line
				fmt.Fprintln(cmd.OutOrStdout())
			}

			current := session.New(username, token)
			if current.Username == "" {
				return errors.New("--username is required")
			}
			if err := session.Guard(current); err != nil {
				return errors.New("token is empty or already expired")
			}
			if err := a.store.Save(cmd.Context(), current); err != nil {
				return fmt.Errorf("save session: %w", err)
			}
			a.useSession(current)

			fmt.Fprintf(cmd.OutOrStdout(), "%s logged in as %s\n", a.styles.Success.Render("ok"), current.Username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "code ladder username")
	cmd.Flags().StringVarP(&token, "token", "t", "", "bearer token")
	return cmd
}

func (a *App) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("clear session: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func (a *App) whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if a.session.Username == "" {
				fmt.Fprintln(out, "Not logged in.")
				return nil
			}

			fmt.Fprintf(out, "username: %s\n", a.session.Username)
			fmt.Fprintf(out, "backend:  %s\n", a.client.BaseURL())
			if expiresAt, ok := a.session.ExpiresAt(); ok {
				fmt.Fprintf(out, "expires:  %s\n", expiresAt.Local().Format(time.RFC1123))
			}
			if !a.session.IsAuthenticated() {
				fmt.Fprintln(out, a.styles.Warn.Render("session expired; run `ladder login` again"))
			}
			return nil
		},
	}
}
