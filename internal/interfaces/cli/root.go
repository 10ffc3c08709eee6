package cli

import (
	"fmt"
	"log"
	"os"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"productupdate.io/client/internal/apiclient"
	"productupdate.io/client/internal/auth"
	"productupdate.io/client/internal/installer"
)

var (
	Version   = "dev"     // Overridden by ldflags
	BuildTime = "unknown" // Overridden by ldflags
)

// Container holds the dependencies the CLI commands work against. It is
// populated by the dependency injection container at process start.
type Container struct {
	APIClient   *apiclient.Client
	AuthManager *auth.Manager
	Installer   *installer.Engine
	Logger      *log.Logger
}

// NewRootCommand creates the base command the subcommands hang off.
func NewRootCommand(container *Container) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "puc",
		Short: "Product update client - authenticated package updates",
		Long: `The product update client authenticates against a product update server,
checks the installed products for available updates, and downloads update
packages. Downloads from the configured server require a valid login.`,
		Version: Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf("{{.Name}} version {{.Version}}\nBuild time: %s\nGo version: %s\nPlatform: %s/%s\n",
		BuildTime, goVersion(), runtime.GOOS, runtime.GOARCH))

	rootCmd.AddCommand(newAuthCommand(container))
	rootCmd.AddCommand(newConfigureCommand(container))
	rootCmd.AddCommand(newCheckCommand(container))
	rootCmd.AddCommand(newInfoCommand(container))
	rootCmd.AddCommand(newInstallCommand(container))
	rootCmd.AddCommand(newUpdatesCommand(container))

	return rootCmd
}

// goVersion returns the Go version used to build the binary
func goVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		return info.GoVersion
	}
	return "unknown"
}

// Execute runs the root command and exits non-zero on error.
func Execute(container *Container) {
	rootCmd := NewRootCommand(container)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
