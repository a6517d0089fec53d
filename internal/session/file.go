package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileStorage persists entries as a YAML mapping in a single file.
// Every mutation rewrites the file.
type FileStorage struct {
	path    string
	entries map[string]string
}

// OpenFileStorage loads the file at path. A missing file yields an empty storage.
func OpenFileStorage(path string) (*FileStorage, error) {
	fs := &FileStorage{
		path:    path,
		entries: make(map[string]string),
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return fs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	if err := yaml.Unmarshal(data, &fs.entries); err != nil {
		return nil, fmt.Errorf("failed to parse session file %s: %w", path, err)
	}
	if fs.entries == nil {
		fs.entries = make(map[string]string)
	}
	return fs, nil
}

// Path returns the backing file.
func (f *FileStorage) Path() string {
	return f.path
}

func (f *FileStorage) Get(key string) (string, bool) {
	v, ok := f.entries[key]
	return v, ok
}

func (f *FileStorage) Set(key, value string) error {
	f.entries[key] = value
	return f.flush()
}

func (f *FileStorage) Remove(keys ...string) error {
	for _, k := range keys {
		delete(f.entries, k)
	}
	return f.flush()
}

func (f *FileStorage) flush() error {
	if len(f.entries) == 0 {
		if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove session file: %w", err)
		}
		return nil
	}

	data, err := yaml.Marshal(f.entries)
	if err != nil {
		return fmt.Errorf("failed to encode session file: %w", err)
	}

	// The file holds a bearer token.
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}
