package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	c := NoopCounterHooks{}
	c.OnCreate(ctx, "abc")
	c.OnIncrement(ctx, "abc", 42)
	c.OnPersistError(ctx, "increment", errors.New("disk full"))

	r := NoopRenderHooks{}
	r.OnRender(ctx, "svg", "default", time.Millisecond, nil)
	r.OnCacheHit(ctx)
	r.OnCacheMiss(ctx)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	defer Reset()

	if _, ok := Counters().(NoopCounterHooks); !ok {
		t.Error("Counters() should return NoopCounterHooks by default")
	}
	if _, ok := Render().(NoopRenderHooks); !ok {
		t.Error("Render() should return NoopRenderHooks by default")
	}

	customCounters := &testCounterHooks{}
	SetCounterHooks(customCounters)
	if Counters() != customCounters {
		t.Error("SetCounterHooks should set custom hooks")
	}

	customRender := &testRenderHooks{}
	SetRenderHooks(customRender)
	if Render() != customRender {
		t.Error("SetRenderHooks should set custom hooks")
	}

	Reset()
	if _, ok := Counters().(NoopCounterHooks); !ok {
		t.Error("Reset() should restore NoopCounterHooks")
	}
	if _, ok := Render().(NoopRenderHooks); !ok {
		t.Error("Reset() should restore NoopRenderHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testCounterHooks{}
	SetCounterHooks(custom)
	SetCounterHooks(nil)
	if Counters() != custom {
		t.Error("SetCounterHooks(nil) should keep the previous hooks")
	}
}

func TestCustomHooksReceiveEvents(t *testing.T) {
	Reset()
	defer Reset()

	h := &testCounterHooks{}
	SetCounterHooks(h)

	ctx := context.Background()
	Counters().OnCreate(ctx, "a")
	Counters().OnIncrement(ctx, "a", 1)
	Counters().OnIncrement(ctx, "a", 2)

	if h.creates != 1 {
		t.Errorf("creates = %d, want 1", h.creates)
	}
	if h.increments != 2 {
		t.Errorf("increments = %d, want 2", h.increments)
	}
	if h.last != 2 {
		t.Errorf("last = %d, want 2", h.last)
	}
}

type testCounterHooks struct {
	creates    int
	increments int
	last       int64
}

func (h *testCounterHooks) OnCreate(context.Context, string) { h.creates++ }
func (h *testCounterHooks) OnIncrement(_ context.Context, _ string, n int64) {
	h.increments++
	h.last = n
}
func (h *testCounterHooks) OnPersistError(context.Context, string, error) {}

type testRenderHooks struct{}

func (*testRenderHooks) OnRender(context.Context, string, string, time.Duration, error) {}
func (*testRenderHooks) OnCacheHit(context.Context)                                     {}
func (*testRenderHooks) OnCacheMiss(context.Context)                                    {}
