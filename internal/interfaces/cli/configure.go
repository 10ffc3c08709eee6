package cli

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

// newConfigureCommand creates the configure command
func newConfigureCommand(container *Container) *cobra.Command {
	var server string
	var site string

	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Configure the update server connection",
		Example: `  puc configure --server https://updates.example.com
  puc configure --server https://updates.example.com --site https://shop.example.com`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if server == "" && site == "" {
				settings := container.APIClient.Settings()
				fmt.Fprintf(cmd.OutOrStdout(), "Server: %s\n", orUnset(settings.NormalizedAPIBase()))
				fmt.Fprintf(cmd.OutOrStdout(), "Site:   %s\n", orUnset(settings.SiteURL))
				return nil
			}

			settings := container.APIClient.Settings()

			if server != "" {
				if err := validateServerURL(server); err != nil {
					return err
				}
				settings.APIBase = strings.TrimRight(server, "/")
			}
			if site != "" {
				settings.SiteURL = site
			}

			if err := container.APIClient.UpdateSettings(settings); err != nil {
				return fmt.Errorf("failed to save settings: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("Settings saved"))
			return nil
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "Update server base URL")
	cmd.Flags().StringVar(&site, "site", "", "Site identity sent on login")

	return cmd
}

// validateServerURL rejects URLs the update server cannot live behind.
func validateServerURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid server URL: %w", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("unsupported URL scheme %q: use http or https", parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("server URL must include a host")
	}

	return nil
}

func orUnset(value string) string {
	if value == "" {
		return "(not set)"
	}
	return value
}
