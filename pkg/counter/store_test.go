package counter_test

import (
	"bytes"
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/kawaiicounter/pkg/badge/style"
	"github.com/matzehuels/kawaiicounter/pkg/counter"
	"github.com/matzehuels/kawaiicounter/pkg/counter/snapshot"
	"github.com/matzehuels/kawaiicounter/pkg/errors"
)

func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	store := counter.New(snapshot.NewMemory())

	opts := style.Options{Label: "Hits", Layout: "side-by-side"}
	id, err := store.Create(ctx, "  my-site  ", 41, opts)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(id) != 2*counter.IDBytes {
		t.Errorf("len(id) = %d, want %d", len(id), 2*counter.IDBytes)
	}

	c, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if c.ID != id {
		t.Errorf("ID = %q, want %q", c.ID, id)
	}
	if c.Site != "my-site" {
		t.Errorf("Site = %q, want %q", c.Site, "my-site")
	}
	if c.Count != 41 {
		t.Errorf("Count = %d, want 41", c.Count)
	}
	if c.Options.Label != "Hits" || c.Options.Layout != "side-by-side" {
		t.Errorf("Options = %+v, want label Hits and side-by-side layout", c.Options)
	}
	if c.HasBackground() {
		t.Error("new counter should not have a background")
	}
	if c.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}

func TestCreateClampsNegativeStart(t *testing.T) {
	ctx := context.Background()
	store := counter.New(nil)

	id, err := store.Create(ctx, "site", -5, style.Options{})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	c, _ := store.Get(ctx, id)
	if c.Count != 0 {
		t.Errorf("Count = %d, want 0", c.Count)
	}
}

func TestUnknownCounter(t *testing.T) {
	ctx := context.Background()
	store := counter.New(nil)

	if _, err := store.Get(ctx, "nope"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Get error = %v, want NOT_FOUND", err)
	}
	if _, err := store.IncrementAndGet(ctx, "nope"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("IncrementAndGet error = %v, want NOT_FOUND", err)
	}
	if err := store.SetBackgroundRef(ctx, "nope", "bg.png"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("SetBackgroundRef error = %v, want NOT_FOUND", err)
	}
}

func TestUniqueIDs(t *testing.T) {
	ctx := context.Background()
	store := counter.New(nil)

	const n = 10000
	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		id, err := store.Create(ctx, "site", 0, style.Options{})
		if err != nil {
			t.Fatalf("Create #%d: %v", i, err)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q after %d creates", id, i)
		}
		seen[id] = true
	}
	if store.Len() != n {
		t.Errorf("Len() = %d, want %d", store.Len(), n)
	}
}

func TestConcurrentIncrements(t *testing.T) {
	ctx := context.Background()
	mem := snapshot.NewMemory()
	store := counter.New(mem)

	id, err := store.Create(ctx, "site", 100, style.Options{})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	other, _ := store.Create(ctx, "other", 0, style.Options{})

	const n = 200
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := store.IncrementAndGet(ctx, id); err != nil {
				t.Errorf("IncrementAndGet: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := store.IncrementAndGet(ctx, other); err != nil {
				t.Errorf("IncrementAndGet: %v", err)
			}
		}()
	}
	wg.Wait()

	c, _ := store.Get(ctx, id)
	if c.Count != 100+n {
		t.Errorf("Count = %d, want %d", c.Count, 100+n)
	}
	o, _ := store.Get(ctx, other)
	if o.Count != n {
		t.Errorf("other Count = %d, want %d", o.Count, n)
	}

	// The last snapshot must reflect every committed increment.
	reloaded := counter.Open(ctx, mem)
	rc, err := reloaded.Get(ctx, id)
	if err != nil {
		t.Fatalf("reloaded Get: %v", err)
	}
	if rc.Count != c.Count {
		t.Errorf("reloaded Count = %d, want %d", rc.Count, c.Count)
	}
}

func TestIncrementReturnsPostValue(t *testing.T) {
	ctx := context.Background()
	store := counter.New(nil)
	id, _ := store.Create(ctx, "site", 7, style.Options{})

	for want := int64(8); want <= 10; want++ {
		c, err := store.IncrementAndGet(ctx, id)
		if err != nil {
			t.Fatalf("IncrementAndGet: %v", err)
		}
		if c.Count != want {
			t.Errorf("Count = %d, want %d", c.Count, want)
		}
	}
}

func TestPersistenceFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	mem := snapshot.NewMemory()
	store := counter.New(mem)

	id, err := store.Create(ctx, "site", 5, style.Options{})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	mem.SetSaveErr(stderrors.New("disk full"))

	if _, err := store.IncrementAndGet(ctx, id); !errors.Is(err, errors.ErrCodePersistence) {
		t.Errorf("IncrementAndGet error = %v, want PERSISTENCE", err)
	}
	if err := store.SetBackgroundRef(ctx, id, "bg.png"); !errors.Is(err, errors.ErrCodePersistence) {
		t.Errorf("SetBackgroundRef error = %v, want PERSISTENCE", err)
	}
	if _, err := store.Create(ctx, "new", 0, style.Options{}); !errors.Is(err, errors.ErrCodePersistence) {
		t.Errorf("Create error = %v, want PERSISTENCE", err)
	}

	c, _ := store.Get(ctx, id)
	if c.Count != 5 {
		t.Errorf("Count = %d, want 5 after failed save", c.Count)
	}
	if c.BackgroundRef != "" {
		t.Errorf("BackgroundRef = %q, want empty after failed save", c.BackgroundRef)
	}
	if store.Len() != 1 {
		t.Errorf("Len() = %d, want 1 after failed create", store.Len())
	}

	mem.SetSaveErr(nil)
	c, err = store.IncrementAndGet(ctx, id)
	if err != nil {
		t.Fatalf("IncrementAndGet after recovery: %v", err)
	}
	if c.Count != 6 {
		t.Errorf("Count = %d, want 6", c.Count)
	}
}

func TestOpenRestoresState(t *testing.T) {
	ctx := context.Background()
	mem := snapshot.NewMemory()
	store := counter.New(mem)

	width := 3.0
	id, _ := store.Create(ctx, "site", 0, style.Options{Background: "#ff69b4", BorderWidth: &width})
	store.IncrementAndGet(ctx, id)
	store.IncrementAndGet(ctx, id)
	if err := store.SetBackgroundRef(ctx, id, "bg-"+id+".png"); err != nil {
		t.Fatalf("SetBackgroundRef: %v", err)
	}

	reloaded := counter.Open(ctx, mem)
	c, err := reloaded.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get after Open: %v", err)
	}
	if c.Count != 2 {
		t.Errorf("Count = %d, want 2", c.Count)
	}
	if c.BackgroundRef != "bg-"+id+".png" {
		t.Errorf("BackgroundRef = %q", c.BackgroundRef)
	}
	if c.Options.Background != "#ff69b4" || c.Options.BorderWidth == nil || *c.Options.BorderWidth != 3 {
		t.Errorf("Options = %+v, want stored options", c.Options)
	}
}

func TestOpenWithoutSnapshot(t *testing.T) {
	store := counter.Open(context.Background(), snapshot.NewMemory())
	if store.Len() != 0 {
		t.Errorf("Len() = %d, want 0", store.Len())
	}
}

func TestListOrder(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	clock := func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	store := counter.New(nil, counter.WithClock(clock))

	var want []string
	for i := 0; i < 5; i++ {
		id, err := store.Create(ctx, "site", 0, style.Options{})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		want = append(want, id)
	}

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != len(want) {
		t.Fatalf("len(List) = %d, want %d", len(list), len(want))
	}
	for i, c := range list {
		if c.ID != want[i] {
			t.Errorf("List[%d] = %q, want %q", i, c.ID, want[i])
		}
	}
}

func TestIDCollisionRetries(t *testing.T) {
	ctx := context.Background()
	entropy := append(bytes.Repeat([]byte{0}, 2*counter.IDBytes), bytes.Repeat([]byte{1}, counter.IDBytes)...)
	store := counter.New(nil, counter.WithIDGenerator(counter.NewIDGenerator(bytes.NewReader(entropy))))

	first, err := store.Create(ctx, "a", 0, style.Options{})
	if err != nil {
		t.Fatalf("first Create: %v", err)
	}
	second, err := store.Create(ctx, "b", 0, style.Options{})
	if err != nil {
		t.Fatalf("second Create: %v", err)
	}
	if first != "0000000000000000" {
		t.Errorf("first = %q, want all zeros", first)
	}
	if second != "0101010101010101" {
		t.Errorf("second = %q, want 0101010101010101", second)
	}
}

func TestIDGeneratorExhausted(t *testing.T) {
	ctx := context.Background()
	store := counter.New(nil, counter.WithIDGenerator(counter.NewIDGenerator(bytes.NewReader(nil))))

	if _, err := store.Create(ctx, "a", 0, style.Options{}); !errors.Is(err, errors.ErrCodeInternal) {
		t.Errorf("Create error = %v, want INTERNAL_ERROR", err)
	}
	if store.Len() != 0 {
		t.Errorf("Len() = %d, want 0", store.Len())
	}
}
