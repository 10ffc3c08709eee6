package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileOptionStore keeps each option in its own JSON file under a directory,
// with permissions restricted to the current user. It stands in for the host
// platform's options table.
type FileOptionStore struct {
	dir string
	mu  sync.RWMutex
}

// NewFileOptionStore creates a file-backed option store rooted at dir,
// creating the directory if needed.
func NewFileOptionStore(dir string) (*FileOptionStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create option directory: %w", err)
	}

	return &FileOptionStore{dir: dir}, nil
}

// Get unmarshals the named option into out, returning false when no value
// has been stored.
func (s *FileOptionStore) Get(name string, out any) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.optionPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read option %s: %w", name, err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("failed to unmarshal option %s: %w", name, err)
	}

	return true, nil
}

// Set persists the value under the given name, replacing any previous value.
func (s *FileOptionStore) Set(name string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal option %s: %w", name, err)
	}

	if err := os.WriteFile(s.optionPath(name), data, 0600); err != nil {
		return fmt.Errorf("failed to write option %s: %w", name, err)
	}

	return nil
}

// Delete removes the named option. Missing options are ignored.
func (s *FileOptionStore) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.optionPath(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete option %s: %w", name, err)
	}

	return nil
}

func (s *FileOptionStore) optionPath(name string) string {
	return filepath.Join(s.dir, name+".json")
}

// MemoryOptionStore is an in-memory option store for testing.
type MemoryOptionStore struct {
	options map[string]json.RawMessage
	mu      sync.RWMutex
}

// NewMemoryOptionStore creates an empty in-memory option store.
func NewMemoryOptionStore() *MemoryOptionStore {
	return &MemoryOptionStore{
		options: make(map[string]json.RawMessage),
	}
}

// Get unmarshals the named option into out, returning false when absent.
func (s *MemoryOptionStore) Get(name string, out any) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raw, exists := s.options[name]
	if !exists {
		return false, nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("failed to unmarshal option %s: %w", name, err)
	}

	return true, nil
}

// Set stores the value under the given name.
func (s *MemoryOptionStore) Set(name string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal option %s: %w", name, err)
	}

	s.options[name] = raw
	return nil
}

// Delete removes the named option.
func (s *MemoryOptionStore) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.options, name)
	return nil
}
