package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mediavault/backend/pkg/logger"
)

// LocalStore keeps uploads on the local filesystem under a root directory,
// one subdirectory per user. Writes land in a temp file and are renamed
// into place so a crashed upload never leaves a half-written object behind.
type LocalStore struct {
	root string
}

func NewLocalStore(root string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating uploads directory: %w", err)
	}
	return &LocalStore{root: root}, nil
}

func (l *LocalStore) Put(ctx context.Context, path string, reader io.Reader, size int64, contentType string) error {
	target, err := l.resolve(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("creating upload directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return fmt.Errorf("creating temp upload: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, reader); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing upload %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("flushing upload %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("setting mode on upload %s: %w", path, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("storing upload %s: %w", path, err)
	}

	logger.Info("blob_stored", map[string]interface{}{
		"path":         path,
		"size":         size,
		"content_type": contentType,
		"backend":      "local",
	})
	return nil
}

func (l *LocalStore) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	target, err := l.resolve(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(target)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("blob %s: %w", path, os.ErrNotExist)
		}
		return nil, fmt.Errorf("opening blob %s: %w", path, err)
	}
	return file, nil
}

func (l *LocalStore) Delete(ctx context.Context, path string) error {
	target, err := l.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting blob %s: %w", path, err)
	}
	return nil
}

// resolve maps a blob path into the uploads root. Paths must already be
// canonical; cleaning must change nothing, so traversal between user
// directories is refused along with anything escaping the root.
func (l *LocalStore) resolve(path string) (string, error) {
	native := filepath.FromSlash(path)
	cleaned := filepath.Clean(native)
	if cleaned == "." || filepath.IsAbs(cleaned) || strings.HasPrefix(cleaned, "..") || cleaned != native {
		return "", fmt.Errorf("invalid blob path %q", path)
	}
	return filepath.Join(l.root, cleaned), nil
}
