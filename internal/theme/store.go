// internal/theme/store.go
package theme

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

// StateKey is the key the selected theme is persisted under.
const StateKey = "soko-theme"

// Store persists client-local state in a small YAML file. The theme name is
// the only value it holds today; unknown keys already in the file are kept.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore creates a store for path. A leading "~" is expanded.
func NewStore(path string) (*Store, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand state file path %q: %w", path, err)
	}
	return &Store{path: expanded}, nil
}

// Path returns the expanded file path.
func (s *Store) Path() string {
	return s.path
}

// Theme returns the persisted theme, or fallback when the file is missing,
// unreadable, or names an unknown theme.
func (s *Store) Theme(fallback string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.read()
	if err != nil {
		return resolve(fallback)
	}
	if name, ok := state[StateKey].(string); ok && Valid(name) {
		return normalize(name)
	}
	return resolve(fallback)
}

// SetTheme persists name. Unknown names are rejected.
func (s *Store) SetTheme(name string) error {
	if !Valid(name) {
		return fmt.Errorf("unknown theme %q (available: %v)", name, Names())
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.read()
	if err != nil {
		// A corrupt file is replaced rather than blocking the user.
		state = map[string]any{}
	}
	state[StateKey] = normalize(name)
	return s.write(state)
}

func resolve(name string) string {
	if Valid(name) {
		return normalize(name)
	}
	return Default
}

func (s *Store) read() (map[string]any, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, err
	}
	state := map[string]any{}
	if err := yaml.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	if state == nil {
		state = map[string]any{}
	}
	return state, nil
}

func (s *Store) write(state map[string]any) error {
	data, err := yaml.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	return os.Rename(tmp, s.path)
}
