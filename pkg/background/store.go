package background

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// ErrNotFound is returned by BlobStore.Get for unknown keys.
var ErrNotFound = errors.New("background not found")

// BlobStore persists normalized backgrounds.
type BlobStore interface {
	// Save stores data under key, replacing any blob already there.
	Save(ctx context.Context, key string, data []byte) error
	// Get returns the blob stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// maxKeyIDLen bounds the escaped id embedded in a key, keeping keys well
// inside the 255-byte filename limit.
const maxKeyIDLen = 96

// Key returns the storage key of one uploaded background: the counter id plus
// a hash of the normalized image. Each distinct upload gets its own key, so a
// new background never overwrites the one a counter currently references.
// Ids that escape to more than maxKeyIDLen bytes are replaced by their hash.
func Key(counterID string, data []byte) string {
	id := url.PathEscape(counterID)
	if len(id) > maxKeyIDLen {
		id = fmt.Sprintf("%016x", xxhash.Sum64String(counterID))
	}
	return fmt.Sprintf("bg-%s-%016x.png", id, xxhash.Sum64(data))
}

// FileBlobStore keeps one file per key in a directory.
type FileBlobStore struct {
	dir string
}

// NewFileBlobStore creates dir if needed and returns a store rooted there.
func NewFileBlobStore(dir string) (*FileBlobStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create background dir: %w", err)
	}
	return &FileBlobStore{dir: dir}, nil
}

// Dir returns the directory backing the store.
func (s *FileBlobStore) Dir() string { return s.dir }

func (s *FileBlobStore) path(key string) (string, error) {
	if key == "" || key != filepath.Base(key) || strings.HasPrefix(key, ".") || strings.ContainsAny(key, `/\`) {
		return "", fmt.Errorf("invalid background key %q", key)
	}
	return filepath.Join(s.dir, key), nil
}

// Save writes data to a temporary file and renames it over the key, so
// readers never observe a partially written background.
func (s *FileBlobStore) Save(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp background: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write background: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync background: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close background: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("install background: %w", err)
	}
	return nil
}

// Get reads the blob stored under key.
func (s *FileBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read background: %w", err)
	}
	return data, nil
}

// Delete removes the blob stored under key.
func (s *FileBlobStore) Delete(ctx context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove background: %w", err)
	}
	return nil
}

var _ BlobStore = (*FileBlobStore)(nil)
