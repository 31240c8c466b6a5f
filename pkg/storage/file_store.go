package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const (
	storeFileName = "storage.json"
	storeVersion  = "1.0"
)

// fileDocument is the on-disk layout of a FileStore.
type fileDocument struct {
	Items   map[string]string `json:"items"`
	Version string            `json:"version"`
}

// FileStore is a LocalStore persisted as a JSON document readable only by
// its owner.
type FileStore struct {
	mu    sync.Mutex
	path  string
	items map[string]string
}

var _ LocalStore = (*FileStore)(nil)

// DefaultDir returns ~/.fayol.
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".fayol"), nil
}

// OpenFileStore loads dir/storage.json, creating dir when needed. A missing
// file yields an empty store.
func OpenFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	fs := &FileStore{
		path:  filepath.Join(dir, storeFileName),
		items: make(map[string]string),
	}

	data, err := os.ReadFile(fs.path)
	if os.IsNotExist(err) {
		return fs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read storage file: %w", err)
	}

	var doc fileDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse storage file: %w", err)
	}
	if doc.Items != nil {
		fs.items = doc.Items
	}
	return fs, nil
}

// Path returns the backing file path.
func (fs *FileStore) Path() string {
	return fs.path
}

// Get returns the value for key or ErrNotFound.
func (fs *FileStore) Get(key string) (string, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	v, ok := fs.items[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// Set stores value and rewrites the file. On failure the in-memory state
// is left unchanged.
func (fs *FileStore) Set(key, value string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	prev, had := fs.items[key]
	fs.items[key] = value
	if err := fs.save(); err != nil {
		if had {
			fs.items[key] = prev
		} else {
			delete(fs.items, key)
		}
		return err
	}
	return nil
}

// Remove deletes key. Removing a missing key is not an error.
func (fs *FileStore) Remove(key string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	prev, had := fs.items[key]
	if !had {
		return nil
	}
	delete(fs.items, key)
	if err := fs.save(); err != nil {
		fs.items[key] = prev
		return err
	}
	return nil
}

func (fs *FileStore) save() error {
	data, err := json.MarshalIndent(fileDocument{Items: fs.items, Version: storeVersion}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal storage file: %w", err)
	}

	// Write with restricted permissions (readable only by owner)
	tmp := fs.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write storage file: %w", err)
	}
	if err := os.Rename(tmp, fs.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace storage file: %w", err)
	}
	return nil
}
