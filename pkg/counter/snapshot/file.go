package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/matzehuels/kawaiicounter/pkg/counter"
)

// File persists snapshots to a JSON file.
type File struct {
	mu   sync.Mutex
	path string
}

// NewFile returns a file persister writing to path, creating its directory.
func NewFile(path string) (*File, error) {
	if path == "" {
		return nil, fmt.Errorf("snapshot path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	return &File{path: path}, nil
}

// Path returns the snapshot file location.
func (f *File) Path() string { return f.path }

// Load reads the snapshot. A file that cannot be decoded is moved aside to
// <path>.corrupt-<timestamp> so the next save does not overwrite it.
func (f *File) Load(ctx context.Context) (*counter.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, counter.ErrNoSnapshot
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	snap, err := counter.DecodeSnapshot(data)
	if err != nil {
		aside := fmt.Sprintf("%s.corrupt-%s", f.path, time.Now().UTC().Format("20060102T150405"))
		if rerr := os.Rename(f.path, aside); rerr != nil {
			return nil, fmt.Errorf("%s: %w (could not move aside: %v)", f.path, err, rerr)
		}
		return nil, fmt.Errorf("%s: %w (moved to %s)", f.path, err, aside)
	}
	return snap, nil
}

// Save writes the snapshot atomically.
func (f *File) Save(ctx context.Context, snap *counter.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := counter.EncodeSnapshot(snap)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".snapshot-*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

func (f *File) Close() error { return nil }

var _ counter.Persister = (*File)(nil)
