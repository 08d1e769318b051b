package daemon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/1broseidon/screenline/internal/config"
)

// FileStore keeps the settings in a YAML file.
type FileStore struct {
	path    string
	watcher *config.Watcher
}

// NewFileStore creates a store for path. When watcher is set, every save is
// announced to it first so the daemon does not reload its own writes.
func NewFileStore(path string, watcher *config.Watcher) *FileStore {
	return &FileStore{path: path, watcher: watcher}
}

// Path returns the settings file path.
func (s *FileStore) Path() string { return s.path }

// Load reads and validates the settings file.
func (s *FileStore) Load() (*config.Config, error) {
	res, err := config.LoadFromPath(s.path)
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

// Save writes cfg.
func (s *FileStore) Save(cfg *config.Config) error {
	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	if s.watcher != nil {
		s.watcher.MarkSaved(data)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
