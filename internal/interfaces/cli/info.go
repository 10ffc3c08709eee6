package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// newInfoCommand creates the info command
func newInfoCommand(container *Container) *cobra.Command {
	return &cobra.Command{
		Use:   "info <slug>",
		Short: "Show detailed information about a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result := container.Installer.PackageInformation(cmd.Context(), args[0])
			if result == nil {
				fmt.Fprintln(cmd.OutOrStdout(), warnStyle.Render("No information available."))
				fmt.Fprintln(cmd.OutOrStdout(), dimStyle.Render("Information requires a configured server and a valid login."))
				return nil
			}

			pretty, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to render information: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(pretty))
			return nil
		},
	}
}
