package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"productupdate.io/client/internal/core/domain"
)

// manifest is the on-disk format of the installed products list.
type manifest struct {
	Products []domain.Product `json:"products"`
}

// FileRegistry tracks the installed products in a JSON manifest. It stands
// in for the host platform's package registry and supplies the
// checked-versions map for update checks.
type FileRegistry struct {
	path string
	mu   sync.Mutex
}

// NewFileRegistry creates a registry backed by the manifest at path. A
// missing manifest is treated as an empty registry.
func NewFileRegistry(path string) *FileRegistry {
	return &FileRegistry{path: path}
}

// Products returns the installed products.
func (r *FileRegistry) Products() ([]domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, err := r.load()
	if err != nil {
		return nil, err
	}
	return m.Products, nil
}

// CheckedVersions builds the plugin-file to version map for one update
// check cycle.
func (r *FileRegistry) CheckedVersions() (map[string]string, error) {
	products, err := r.Products()
	if err != nil {
		return nil, err
	}

	checked := make(map[string]string, len(products))
	for _, product := range products {
		checked[product.PluginFile] = product.Version
	}
	return checked, nil
}

// Record adds or replaces a product entry and persists the manifest. The
// installer calls it after a successful install to bump the version.
func (r *FileRegistry) Record(product domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, err := r.load()
	if err != nil {
		return err
	}

	replaced := false
	for i, existing := range m.Products {
		if existing.PluginFile == product.PluginFile {
			m.Products[i] = product
			replaced = true
			break
		}
	}
	if !replaced {
		m.Products = append(m.Products, product)
	}

	return r.save(m)
}

func (r *FileRegistry) load() (*manifest, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &manifest{}, nil
		}
		return nil, fmt.Errorf("failed to read product manifest: %w", err)
	}

	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse product manifest: %w", err)
	}
	return &m, nil
}

func (r *FileRegistry) save(m *manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal product manifest: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(r.path), 0700); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}

	if err := os.WriteFile(r.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write product manifest: %w", err)
	}
	return nil
}
