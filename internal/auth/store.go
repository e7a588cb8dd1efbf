package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cartable/internal/domain/models/pedagogy"

	"gopkg.in/yaml.v3"
)

// storedSession is the on-disk shape of a session.
type storedSession struct {
	Token   string         `yaml:"token"`
	User    *pedagogy.User `yaml:"user,omitempty"`
	SavedAt time.Time      `yaml:"saved_at"`
}

// FileStore persists a Session to a YAML file readable only by its owner.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by path. The file need not exist.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file.
func (f *FileStore) Path() string {
	return f.path
}

// Load reads the stored session. A missing file yields an empty session.
func (f *FileStore) Load() (*Session, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return NewSession("", nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}

	var stored storedSession
	if err := yaml.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("parse session file %s: %w", f.path, err)
	}
	return NewSession(stored.Token, stored.User), nil
}

// Save writes the session, creating parent directories as needed.
func (f *FileStore) Save(s *Session) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}

	data, err := yaml.Marshal(&storedSession{
		Token:   s.Token(),
		User:    s.User(),
		SavedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	if err := os.WriteFile(f.path, data, 0600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}

// Clear removes the stored session. Removing a missing file is not an error.
func (f *FileStore) Clear() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}
