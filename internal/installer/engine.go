package installer

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"productupdate.io/client/internal/core/domain"
	"productupdate.io/client/internal/infrastructure/registry"
	"productupdate.io/client/internal/update"
)

// downloadTimeout is generous because packages can be large.
const downloadTimeout = 5 * time.Minute

// Engine is the host-side driver of the update pipeline: it runs update
// checks over the product registry and downloads approved packages, invoking
// the pipeline's extension points the way the host platform's upgrader
// would.
type Engine struct {
	pipeline    *update.Pipeline
	registry    *registry.FileRegistry
	httpClient  *http.Client
	packagesDir string
	logger      *log.Logger
}

// NewEngine creates an installer engine that stores downloaded packages
// under packagesDir.
func NewEngine(pipeline *update.Pipeline, reg *registry.FileRegistry, packagesDir string, logger *log.Logger) *Engine {
	return &Engine{
		pipeline: pipeline,
		registry: reg,
		httpClient: &http.Client{
			Timeout: downloadTimeout,
		},
		packagesDir: packagesDir,
		logger:      logger,
	}
}

// CheckForUpdates builds the checked-versions map from the registry and runs
// the update-check point over it.
func (e *Engine) CheckForUpdates(ctx context.Context) (*domain.UpdateCheck, error) {
	checked, err := e.registry.CheckedVersions()
	if err != nil {
		return nil, err
	}

	check := domain.NewUpdateCheck(checked)
	e.pipeline.RunUpdateCheck(ctx, check)
	return check, nil
}

// PackageInformation runs the package-info-lookup point for a slug.
func (e *Engine) PackageInformation(ctx context.Context, slug string) map[string]any {
	return e.pipeline.RunPackageInfo(ctx, nil, update.InfoRequest{
		Action: update.ActionPluginInformation,
		Slug:   slug,
	})
}

// Install downloads the descriptor's package and records the new version in
// the registry. The download-guard point runs first and may block it; the
// request-authorization point then amends the one request the guard
// approved.
func (e *Engine) Install(ctx context.Context, descriptor *domain.UpdateDescriptor) (string, error) {
	if descriptor.Package == "" {
		return "", fmt.Errorf("update for %s has no package URL", descriptor.PluginFile)
	}

	if err := e.pipeline.RunDownloadGuard(descriptor.Package); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, descriptor.Package, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create download request: %w", err)
	}
	req.Header = e.pipeline.RunRequestAuth(req.Header, descriptor.Package)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download failed with status %d", resp.StatusCode)
	}

	archivePath, err := e.writeArchive(descriptor.Slug, resp.Body)
	if err != nil {
		return "", err
	}

	if err := e.registry.Record(domain.Product{
		PluginFile: descriptor.PluginFile,
		Version:    descriptor.NewVersion,
		AutoUpdate: e.autoUpdateFlag(descriptor.PluginFile),
	}); err != nil {
		return "", err
	}

	e.logger.Printf("installed %s %s", descriptor.PluginFile, descriptor.NewVersion)
	return archivePath, nil
}

// AutoUpdate installs every available update for products flagged for
// automatic updates, deferring to the auto-update-decision point per item.
// Individual failures are logged and skipped.
func (e *Engine) AutoUpdate(ctx context.Context) error {
	check, err := e.CheckForUpdates(ctx)
	if err != nil {
		return err
	}

	products, err := e.registry.Products()
	if err != nil {
		return err
	}

	flagged := make(map[string]bool, len(products))
	for _, product := range products {
		flagged[product.PluginFile] = product.AutoUpdate
	}

	for pluginFile, descriptor := range check.Response {
		if !e.pipeline.RunAutoUpdate(flagged[pluginFile], descriptor) {
			continue
		}

		if _, err := e.Install(ctx, descriptor); err != nil {
			e.logger.Printf("auto-update of %s failed: %v", pluginFile, err)
		}
	}

	return nil
}

func (e *Engine) writeArchive(slug string, body io.Reader) (string, error) {
	if err := os.MkdirAll(e.packagesDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create packages directory: %w", err)
	}

	archivePath := filepath.Join(e.packagesDir, slug+".zip")
	out, err := os.Create(archivePath)
	if err != nil {
		return "", fmt.Errorf("failed to create package file: %w", err)
	}

	if _, err := io.Copy(out, body); err != nil {
		out.Close()
		os.Remove(archivePath)
		return "", fmt.Errorf("failed to write package: %w", err)
	}

	if err := out.Close(); err != nil {
		return "", fmt.Errorf("failed to close package file: %w", err)
	}

	return archivePath, nil
}

func (e *Engine) autoUpdateFlag(pluginFile string) bool {
	products, err := e.registry.Products()
	if err != nil {
		return false
	}

	for _, product := range products {
		if product.PluginFile == pluginFile {
			return product.AutoUpdate
		}
	}
	return false
}
