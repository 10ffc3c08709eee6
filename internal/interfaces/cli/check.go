package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

// newCheckCommand creates the check command
func newCheckCommand(container *Container) *cobra.Command {
	var auto bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check the installed products for available updates",
		Long: `Ask the update server which of the installed products have newer versions.
With --auto, products flagged for automatic updates are installed right away
(only while logged in).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if !container.AuthManager.IsAuthenticated() {
				fmt.Fprintln(out, warnStyle.Render("Product updates are locked."))
				fmt.Fprintln(out, dimStyle.Render("Log in with 'puc auth login' to check for updates."))
				return nil
			}

			if auto {
				if err := container.Installer.AutoUpdate(cmd.Context()); err != nil {
					return err
				}
			}

			check, err := container.Installer.CheckForUpdates(cmd.Context())
			if err != nil {
				return err
			}

			if len(check.Response) == 0 {
				fmt.Fprintln(out, "All products are up to date.")
				return nil
			}

			pluginFiles := make([]string, 0, len(check.Response))
			for pluginFile := range check.Response {
				pluginFiles = append(pluginFiles, pluginFile)
			}
			sort.Strings(pluginFiles)

			fmt.Fprintf(out, "%d update(s) available:\n\n", len(pluginFiles))
			for _, pluginFile := range pluginFiles {
				descriptor := check.Response[pluginFile]
				fmt.Fprintf(out, "  %-40s %s -> %s\n",
					pluginFile, check.Checked[pluginFile], descriptor.NewVersion)
			}

			fmt.Fprintln(out)
			fmt.Fprintln(out, dimStyle.Render("Install one with 'puc install <plugin-file>'."))
			return nil
		},
	}

	cmd.Flags().BoolVar(&auto, "auto", false, "Also install products flagged for automatic updates")

	return cmd
}
