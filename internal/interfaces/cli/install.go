package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newInstallCommand creates the install command
func newInstallCommand(container *Container) *cobra.Command {
	return &cobra.Command{
		Use:   "install <plugin-file>",
		Short: "Download and install an available update",
		Long: `Download the update package for one product. The plugin file is the
identifier shown by 'puc check', e.g. "plugin-a/plugin-a.php". Packages
hosted on the configured update server require a valid login.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pluginFile := args[0]

			check, err := container.Installer.CheckForUpdates(cmd.Context())
			if err != nil {
				return err
			}

			descriptor, ok := check.Response[pluginFile]
			if !ok {
				return fmt.Errorf("no update available for %s", pluginFile)
			}

			archivePath, err := container.Installer.Install(cmd.Context(), descriptor)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("Installed")+
				fmt.Sprintf(" %s %s (%s)", pluginFile, descriptor.NewVersion, archivePath))
			return nil
		},
	}
}
