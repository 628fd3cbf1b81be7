package counter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

// SnapshotVersion is the current snapshot schema version.
const SnapshotVersion = 1

// ErrNoSnapshot is returned by a Persister when nothing has been saved yet.
var ErrNoSnapshot = errors.New("no snapshot")

// Snapshot is the durable image of all counters.
type Snapshot struct {
	Version  int                `json:"version"`
	Counters map[string]Counter `json:"counters"`
}

// Persister loads and saves whole snapshots.
//
// Save must either store the snapshot completely or leave the previous one in
// place. Load returns ErrNoSnapshot when no snapshot exists.
type Persister interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snap *Snapshot) error
	Close() error
}

// EncodeSnapshot serializes snap as indented JSON.
func EncodeSnapshot(snap *Snapshot) ([]byte, error) {
	out := *snap
	if out.Version == 0 {
		out.Version = SnapshotVersion
	}
	if out.Counters == nil {
		out.Counters = map[string]Counter{}
	}
	data, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses a versioned snapshot or a legacy page → visits object.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("empty snapshot")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}

	if isVersioned(fields) {
		var snap Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			return nil, fmt.Errorf("parse snapshot: %w", err)
		}
		if snap.Version != SnapshotVersion {
			return nil, fmt.Errorf("unsupported snapshot version %d", snap.Version)
		}
		if snap.Counters == nil {
			snap.Counters = map[string]Counter{}
		}
		return &snap, nil
	}
	return migrateLegacy(fields)
}

// isVersioned reports whether fields hold a versioned snapshot: a numeric
// version next to a counters object. A legacy file may count a page named
// "version" or "counters", but never has both shapes at once.
func isVersioned(fields map[string]json.RawMessage) bool {
	version, ok := fields["version"]
	if !ok {
		return false
	}
	counters, ok := fields["counters"]
	if !ok {
		return false
	}
	var n json.Number
	if err := json.Unmarshal(version, &n); err != nil {
		return false
	}
	counters = bytes.TrimSpace(counters)
	return len(counters) > 0 && counters[0] == '{'
}

func migrateLegacy(fields map[string]json.RawMessage) (*Snapshot, error) {
	snap := &Snapshot{Version: SnapshotVersion, Counters: make(map[string]Counter, len(fields))}
	for page, raw := range fields {
		var visits float64
		if err := json.Unmarshal(raw, &visits); err != nil {
			return nil, fmt.Errorf("legacy entry %q: not a number", page)
		}
		if strings.TrimSpace(page) == "" {
			continue
		}
		snap.Counters[page] = Counter{
			ID:    page,
			Site:  page,
			Count: clampCount(visits),
		}
	}
	return snap, nil
}

func clampCount(v float64) int64 {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= math.MaxInt64:
		return math.MaxInt64
	}
	return int64(v)
}
