package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/docqa/internal/adapters/driven/config"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps settings in a TOML file, one table per key prefix:
// "chunking.size" is written as size under [chunking]. Every Set is
// written through to disk.
type ConfigStore struct {
	config.Values

	path string
	io   sync.Mutex
}

// NewConfigStore opens <dir>/config.toml, creating dir if needed. An empty
// dir means ~/.docqa. A missing file is an empty configuration.
func NewConfigStore(dir string) (*ConfigStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(home, ".docqa")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}

	s := &ConfigStore{path: filepath.Join(dir, "config.toml")}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Set stores value under key and rewrites the file.
func (s *ConfigStore) Set(key string, value any) error {
	s.io.Lock()
	defer s.io.Unlock()

	s.Put(key, value)
	return s.write()
}

// Save rewrites the file from memory.
func (s *ConfigStore) Save() error {
	s.io.Lock()
	defer s.io.Unlock()
	return s.write()
}

// Load replaces the in-memory settings with the file's content.
func (s *ConfigStore) Load() error {
	s.io.Lock()
	defer s.io.Unlock()

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.Replace(nil)
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", s.path, err)
	}

	tree := map[string]any{}
	if err := toml.Unmarshal(raw, &tree); err != nil {
		return fmt.Errorf("parse %s: %w", s.path, err)
	}
	s.Replace(config.Flatten(tree))
	return nil
}

// Path returns the config file location.
func (s *ConfigStore) Path() string {
	return s.path
}

func (s *ConfigStore) write() error {
	out, err := toml.Marshal(s.Tree())
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(s.path, out, 0600); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}
