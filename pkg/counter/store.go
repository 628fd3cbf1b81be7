package counter

import (
	"context"
	stderrors "errors"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/kawaiicounter/pkg/badge/style"
	"github.com/matzehuels/kawaiicounter/pkg/errors"
	"github.com/matzehuels/kawaiicounter/pkg/observability"
)

const (
	shardCount    = 64
	maxIDAttempts = 5
)

// Store is the in-memory, write-through implementation of [Repository].
//
// Lock order: shard lock, then commitMu, then mu.
type Store struct {
	persister Persister
	ids       *IDGenerator
	logger    *log.Logger
	now       func() time.Time

	shards   [shardCount]sync.Mutex
	commitMu sync.Mutex

	mu       sync.RWMutex
	counters map[string]Counter
}

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator replaces the default crypto/rand id generator.
func WithIDGenerator(g *IDGenerator) Option {
	return func(s *Store) {
		if g != nil {
			s.ids = g
		}
	}
}

// WithLogger sets the store logger. Nil keeps log.Default().
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New returns an empty store saving through p.
// A nil persister keeps counters in memory only.
func New(p Persister, opts ...Option) *Store {
	s := &Store{
		persister: p,
		ids:       NewIDGenerator(nil),
		logger:    log.Default(),
		now:       time.Now,
		counters:  make(map[string]Counter),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open returns a store initialized from the last snapshot in p.
// Startup never fails: a missing or unreadable snapshot yields an empty store.
func Open(ctx context.Context, p Persister, opts ...Option) *Store {
	s := New(p, opts...)
	s.Load(ctx)
	return s
}

// Load replaces the in-memory state with the persisted snapshot and returns
// the number of counters loaded.
func (s *Store) Load(ctx context.Context) int {
	if s.persister == nil {
		return 0
	}

	snap, err := s.persister.Load(ctx)
	switch {
	case stderrors.Is(err, ErrNoSnapshot):
		s.logger.Info("no counter snapshot found, starting empty")
		return 0
	case err != nil:
		s.logger.Error("counter snapshot unreadable, starting empty", "err", err)
		return 0
	}

	counters := make(map[string]Counter, len(snap.Counters))
	for id, c := range snap.Counters {
		if id == "" {
			continue
		}
		c.ID = id
		if c.Count < 0 {
			c.Count = 0
		}
		counters[id] = c
	}

	s.mu.Lock()
	s.counters = counters
	s.mu.Unlock()

	s.logger.Info("loaded counter snapshot", "counters", len(counters))
	return len(counters)
}

// Create implements [Repository].
func (s *Store) Create(ctx context.Context, site string, start int64, opts style.Options) (string, error) {
	if start < 0 {
		start = 0
	}

	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id, err := s.ids.New()
		if err != nil {
			return "", errors.Wrap(errors.ErrCodeInternal, err, "generate counter id")
		}

		lock := s.lockFor(id)
		lock.Lock()
		if _, taken := s.lookup(id); taken {
			lock.Unlock()
			s.logger.Warn("counter id collision, retrying", "id", id, "attempt", attempt+1)
			continue
		}

		c := Counter{
			ID:        id,
			Site:      strings.TrimSpace(site),
			Count:     start,
			Options:   opts,
			CreatedAt: s.now().UTC(),
		}
		err = s.commit(ctx, "create", c)
		lock.Unlock()
		if err != nil {
			return "", err
		}

		observability.Counters().OnCreate(ctx, id)
		s.logger.Debug("counter created", "id", id, "site", c.Site, "count", start)
		return id, nil
	}
	return "", errors.New(errors.ErrCodeInternal, "could not allocate a unique counter id")
}

// Get implements [Repository].
func (s *Store) Get(_ context.Context, id string) (Counter, error) {
	c, ok := s.lookup(id)
	if !ok {
		return Counter{}, errors.NotFound(id)
	}
	return c, nil
}

// IncrementAndGet implements [Repository].
func (s *Store) IncrementAndGet(ctx context.Context, id string) (Counter, error) {
	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	c, ok := s.lookup(id)
	if !ok {
		return Counter{}, errors.NotFound(id)
	}
	if c.Count == math.MaxInt64 {
		return Counter{}, errors.New(errors.ErrCodeInternal, "counter %q overflowed", id)
	}
	c.Count++

	if err := s.commit(ctx, "increment", c); err != nil {
		return Counter{}, err
	}
	observability.Counters().OnIncrement(ctx, id, c.Count)
	return c, nil
}

// SetBackgroundRef implements [Repository].
func (s *Store) SetBackgroundRef(ctx context.Context, id, ref string) error {
	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	c, ok := s.lookup(id)
	if !ok {
		return errors.NotFound(id)
	}
	c.BackgroundRef = ref
	return s.commit(ctx, "background", c)
}

// List implements [Repository].
func (s *Store) List(_ context.Context) ([]Counter, error) {
	s.mu.RLock()
	out := make([]Counter, 0, len(s.counters))
	for _, c := range s.counters {
		out = append(out, c)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Len returns the number of counters.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.counters)
}

// Close releases the persister.
func (s *Store) Close() error {
	if s.persister == nil {
		return nil
	}
	return s.persister.Close()
}

func (s *Store) lockFor(id string) *sync.Mutex {
	return &s.shards[xxhash.Sum64String(id)%shardCount]
}

func (s *Store) lookup(id string) (Counter, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.counters[id]
	return c, ok
}

// commit saves a snapshot containing c and installs c only if the save succeeded.
// The caller must hold the shard lock for c.ID.
func (s *Store) commit(ctx context.Context, op string, c Counter) error {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	if s.persister != nil {
		s.mu.RLock()
		next := make(map[string]Counter, len(s.counters)+1)
		for id, existing := range s.counters {
			next[id] = existing
		}
		s.mu.RUnlock()
		next[c.ID] = c

		if err := s.persister.Save(ctx, &Snapshot{Version: SnapshotVersion, Counters: next}); err != nil {
			observability.Counters().OnPersistError(ctx, op, err)
			s.logger.Error("snapshot save failed, mutation discarded", "op", op, "id", c.ID, "err", err)
			return errors.Wrap(errors.ErrCodePersistence, err, "persist counter %s", c.ID)
		}
	}

	s.mu.Lock()
	s.counters[c.ID] = c
	s.mu.Unlock()
	return nil
}
