package di

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"productupdate.io/client/internal/apiclient"
	"productupdate.io/client/internal/auth"
	"productupdate.io/client/internal/infrastructure/registry"
	"productupdate.io/client/internal/infrastructure/storage"
	"productupdate.io/client/internal/installer"
	"productupdate.io/client/internal/interfaces/cli"
	"productupdate.io/client/internal/update"
)

// Container wires the update client's components together. Everything is
// constructed explicitly at process start and passed by reference; there is
// no ambient global lookup anywhere.
type Container struct {
	Store         *storage.FileOptionStore
	APIClient     *apiclient.Client
	AuthManager   *auth.Manager
	UpdateManager *update.Manager
	Pipeline      *update.Pipeline
	Registry      *registry.FileRegistry
	Installer     *installer.Engine

	CLIContainer *cli.Container

	Logger *log.Logger
}

// NewContainer builds the container with all components wired against the
// default data directory.
func NewContainer() (*Container, error) {
	dataDir, err := defaultDataDir()
	if err != nil {
		return nil, err
	}
	return NewContainerAt(dataDir)
}

// NewContainerAt builds the container rooted at a specific data directory.
func NewContainerAt(dataDir string) (*Container, error) {
	container := &Container{
		Logger: log.New(os.Stderr, "[puc] ", log.LstdFlags),
	}

	store, err := storage.NewFileOptionStore(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize option store: %w", err)
	}
	container.Store = store

	container.APIClient = apiclient.New(store)
	container.AuthManager = auth.NewManager(container.APIClient, store)
	container.UpdateManager = update.NewManager(container.AuthManager, container.APIClient, container.Logger)

	container.Pipeline = update.NewPipeline()
	container.UpdateManager.Register(container.Pipeline)

	container.Registry = registry.NewFileRegistry(filepath.Join(dataDir, "products.json"))
	container.Installer = installer.NewEngine(
		container.Pipeline,
		container.Registry,
		filepath.Join(dataDir, "packages"),
		container.Logger,
	)

	container.CLIContainer = &cli.Container{
		APIClient:   container.APIClient,
		AuthManager: container.AuthManager,
		Installer:   container.Installer,
		Logger:      container.Logger,
	}

	return container, nil
}

// defaultDataDir is where settings, the token, the product manifest, and
// downloaded packages live.
func defaultDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "product-update-client"), nil
}
