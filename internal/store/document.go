// Package store persists the gallery's aggregate documents as JSON files
// under a single data directory: the global user index, one document per
// user, one record per file and the share registry. Every mutation is a
// whole-document read-modify-write; partial updates never touch disk.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	// ErrNotFound reports a missing document.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate reports a uniqueness violation inside an index document.
	ErrDuplicate = errors.New("duplicate entry")
)

// DocumentStore reads and writes JSON documents keyed by a relative path.
// Writes go to a temporary file in the target directory and are renamed
// into place, so readers observe either the old or the new document and
// never a torn one. Lock serializes read-modify-write cycles per key
// within the process; writers in other processes still race at file level.
type DocumentStore struct {
	root string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewDocumentStore(root string) (*DocumentStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &DocumentStore{
		root:  root,
		locks: make(map[string]*sync.Mutex),
	}, nil
}

// Lock acquires the per-key mutex and returns the release function.
func (s *DocumentStore) Lock(key string) func() {
	s.mu.Lock()
	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

func (s *DocumentStore) Read(key string, v interface{}) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("reading document %s: %w", key, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding document %s: %w", key, err)
	}
	return nil
}

func (s *DocumentStore) Write(key string, v interface{}) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating container for %s: %w", key, err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding document %s: %w", key, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", key, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing document %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("flushing document %s: %w", key, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("setting mode on %s: %w", key, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing document %s: %w", key, err)
	}
	return nil
}

func (s *DocumentStore) Exists(key string) bool {
	path, err := s.path(key)
	if err != nil {
		return false
	}
	_, statErr := os.Stat(path)
	return statErr == nil
}

// Delete removes a document; an already-absent document is a no-op.
func (s *DocumentStore) Delete(key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting document %s: %w", key, err)
	}
	return nil
}

// path resolves a key inside the data directory. Keys embed ids that come
// from URL parameters in some code paths, so a key must already be in
// canonical form: cleaning must change nothing. That refuses both keys
// escaping the root and keys traversing from one document family into
// another, like files/../users/<id>.json.
func (s *DocumentStore) path(key string) (string, error) {
	native := filepath.FromSlash(key)
	cleaned := filepath.Clean(native)
	if cleaned == "." || filepath.IsAbs(cleaned) || strings.HasPrefix(cleaned, "..") || cleaned != native {
		return "", fmt.Errorf("invalid document key %q", key)
	}
	return filepath.Join(s.root, cleaned), nil
}
