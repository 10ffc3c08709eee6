package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

var (
	okStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("46"))
	warnStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// newAuthCommand creates the auth subcommand
func newAuthCommand(container *Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the login session with the update server",
	}

	cmd.AddCommand(newAuthLoginCommand(container))
	cmd.AddCommand(newAuthLogoutCommand(container))
	cmd.AddCommand(newAuthStatusCommand(container))

	return cmd
}

// newAuthLoginCommand creates the auth login subcommand
func newAuthLoginCommand(container *Container) *cobra.Command {
	var username string
	var password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the update server",
		Long: `Exchange your update server credentials for a token. The token is stored
locally and attached to update checks and package downloads.`,
		Example: `  puc auth login --username owner@example.com
  puc auth login --username owner@example.com --password secret`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				fmt.Fprint(cmd.OutOrStdout(), "Password: ")
				raw, err := readPassword(int(os.Stdin.Fd()))
				fmt.Fprintln(cmd.OutOrStdout())
				if err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}
				password = string(raw)
			}

			if err := container.AuthManager.Login(cmd.Context(), username, password); err != nil {
				return err
			}

			name := container.AuthManager.Token().DisplayName()
			if name == "" {
				name = username
			}
			fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("Logged in")+" as "+name)

			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Update server username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (prompted when omitted)")
	cmd.MarkFlagRequired("username")

	return cmd
}

// newAuthLogoutCommand creates the auth logout subcommand
func newAuthLogoutCommand(container *Container) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := container.AuthManager.Logout(); err != nil {
				return fmt.Errorf("failed to clear token: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("Logged out"))
			return nil
		},
	}
}

// newAuthStatusCommand creates the auth status subcommand
func newAuthStatusCommand(container *Container) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current authentication state",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			settings := container.APIClient.Settings()

			if settings.NormalizedAPIBase() == "" {
				fmt.Fprintln(out, warnStyle.Render("No update server configured."))
				fmt.Fprintln(out, dimStyle.Render("Run 'puc configure --server URL' first."))
				return nil
			}
			fmt.Fprintf(out, "Server: %s\n", settings.NormalizedAPIBase())

			token := container.AuthManager.Token()
			if !container.AuthManager.IsAuthenticated() {
				fmt.Fprintln(out, warnStyle.Render("Product updates are locked."))
				fmt.Fprintln(out, dimStyle.Render("Log in with 'puc auth login' to enable manual and automatic updates."))
				return nil
			}

			line := okStyle.Render("Authenticated")
			if name := token.DisplayName(); name != "" {
				line += " as " + name
			}
			fmt.Fprintln(out, line)

			if token.Expires == 0 {
				fmt.Fprintln(out, dimStyle.Render("Token does not expire."))
			} else {
				expires := time.Unix(token.Expires, 0)
				fmt.Fprintln(out, dimStyle.Render("Token expires "+expires.Format(time.RFC1123)))
			}

			fmt.Fprintln(out, dimStyle.Render("Token: "+maskToken(token.Token)))
			return nil
		},
	}
}

// maskToken hides the middle of a token for display.
func maskToken(token string) string {
	if len(token) <= 10 {
		return strings.Repeat("*", len(token))
	}
	return token[:6] + "..." + token[len(token)-4:]
}
