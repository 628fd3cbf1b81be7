package counter

import (
	"context"
	"time"

	"github.com/matzehuels/kawaiicounter/pkg/badge/style"
)

// Counter is a single visit counter.
type Counter struct {
	ID            string        `json:"id" bson:"id"`
	Site          string        `json:"site" bson:"site"`
	Count         int64         `json:"count" bson:"count"`
	Options       style.Options `json:"options" bson:"options"`
	BackgroundRef string        `json:"backgroundRef,omitempty" bson:"backgroundRef,omitempty"`
	CreatedAt     time.Time     `json:"createdAt" bson:"createdAt"`
}

// HasBackground reports whether a background image has been attached.
func (c Counter) HasBackground() bool { return c.BackgroundRef != "" }

// Repository is the contract between the service layer and counter storage.
type Repository interface {
	// Create stores a new counter and returns its id.
	// Negative start counts are clamped to zero.
	Create(ctx context.Context, site string, start int64, opts style.Options) (string, error)

	// Get returns the counter or a NOT_FOUND error.
	Get(ctx context.Context, id string) (Counter, error)

	// IncrementAndGet adds one to the count and returns the updated counter.
	IncrementAndGet(ctx context.Context, id string) (Counter, error)

	// SetBackgroundRef records the blob key of the counter's background.
	SetBackgroundRef(ctx context.Context, id, ref string) error

	// List returns all counters ordered by creation time, then id.
	List(ctx context.Context) ([]Counter, error)
}

var _ Repository = (*Store)(nil)
