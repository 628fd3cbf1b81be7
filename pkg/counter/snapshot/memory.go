package snapshot

import (
	"context"
	"sync"

	"github.com/matzehuels/kawaiicounter/pkg/counter"
)

// Memory keeps the last saved snapshot in process.
type Memory struct {
	mu      sync.Mutex
	snap    *counter.Snapshot
	saves   int
	saveErr error
}

// NewMemory returns an empty in-process persister.
func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Load(ctx context.Context) (*counter.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snap == nil {
		return nil, counter.ErrNoSnapshot
	}
	return clone(m.snap), nil
}

func (m *Memory) Save(ctx context.Context, snap *counter.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.snap = clone(snap)
	m.saves++
	return nil
}

// Saves returns the number of successful saves.
func (m *Memory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// SetSaveErr makes every subsequent Save fail with err. Nil restores saving.
func (m *Memory) SetSaveErr(err error) {
	m.mu.Lock()
	m.saveErr = err
	m.mu.Unlock()
}

func (m *Memory) Close() error { return nil }

func clone(s *counter.Snapshot) *counter.Snapshot {
	out := &counter.Snapshot{Version: s.Version, Counters: make(map[string]counter.Counter, len(s.Counters))}
	for id, c := range s.Counters {
		out.Counters[id] = c
	}
	return out
}

var _ counter.Persister = (*Memory)(nil)
