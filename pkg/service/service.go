// Package service implements the counter use cases shared by the HTTP server
// and the CLI: creating counters, attaching backgrounds, and producing badges.
//
// The service owns no state of its own. Counters live in a
// [counter.Repository], normalized backgrounds in a [background.BlobStore], and
// rasterized PNGs are memoized in a [cache.Cache] keyed by the SVG they were
// drawn from.
package service

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/kawaiicounter/pkg/background"
	"github.com/matzehuels/kawaiicounter/pkg/badge/style"
	"github.com/matzehuels/kawaiicounter/pkg/cache"
	"github.com/matzehuels/kawaiicounter/pkg/counter"
	"github.com/matzehuels/kawaiicounter/pkg/errors"
)

// PreviewCount is the number shown on preview badges.
const PreviewCount = 12345

// Format is a badge output format.
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// ParseFormat returns the format named by s (case-insensitive), or false.
func ParseFormat(s string) (Format, bool) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatSVG:
		return FormatSVG, true
	case FormatPNG:
		return FormatPNG, true
	}
	return "", false
}

// Artifact is a rendered badge.
type Artifact struct {
	Data        []byte
	ContentType string
	Count       int64
}

// CreateRequest describes a new counter. Options must be present, even if empty.
type CreateRequest struct {
	Site    string
	StartAt int64
	Options *style.Options
}

// BadgeOptions controls a badge request.
type BadgeOptions struct {
	Increment bool
	Format    Format
}

// Service coordinates counters, backgrounds and rendering.
// It is safe for concurrent use.
type Service struct {
	counters    counter.Repository
	backgrounds background.BlobStore
	cache       cache.Cache
	logger      *log.Logger

	fit      background.Fit
	cacheTTL time.Duration
	group    singleflight.Group
	uploads  sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithFit selects how uploads are mapped onto the badge.
func WithFit(fit background.Fit) Option {
	return func(s *Service) { s.fit = fit }
}

// WithCacheTTL sets the lifetime of cached rasterizations. Zero means no expiry.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) { s.cacheTTL = ttl }
}

// New creates a service. A nil cache disables render caching and a nil logger
// falls back to log.Default().
func New(repo counter.Repository, blobs background.BlobStore, c cache.Cache, logger *log.Logger, opts ...Option) *Service {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	s := &Service{
		counters:    repo,
		backgrounds: blobs,
		cache:       c,
		logger:      logger,
		fit:         background.FitStretch,
		cacheTTL:    24 * time.Hour,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates req and stores a new counter.
func (s *Service) Create(ctx context.Context, req CreateRequest) (string, error) {
	if err := errors.ValidateSite(req.Site); err != nil {
		return "", err
	}
	if req.Options == nil {
		return "", errors.New(errors.ErrCodeInvalidInput, "options are required")
	}

	id, err := s.counters.Create(ctx, strings.TrimSpace(req.Site), req.StartAt, *req.Options)
	if err != nil {
		return "", err
	}
	s.logger.Info("counter created", "id", id, "site", strings.TrimSpace(req.Site))
	return id, nil
}

// Get returns a counter.
func (s *Service) Get(ctx context.Context, id string) (counter.Counter, error) {
	if err := errors.ValidateCounterID(id); err != nil {
		return counter.Counter{}, err
	}
	return s.counters.Get(ctx, id)
}

// UploadBackground normalizes raw and attaches it to the counter. The counter
// and its current background are left unchanged when the image cannot be
// processed or stored.
func (s *Service) UploadBackground(ctx context.Context, id string, raw []byte) error {
	if err := errors.ValidateCounterID(id); err != nil {
		return err
	}
	if len(raw) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "background image is required")
	}
	if s.backgrounds == nil {
		return errors.New(errors.ErrCodeInternal, "background storage is not configured")
	}

	normalized, err := background.NormalizeFit(raw, s.fit)
	if err != nil {
		return err
	}

	// Swapping a counter's background reads the old reference and replaces it;
	// two uploads for the same counter must not interleave.
	s.uploads.Lock()
	defer s.uploads.Unlock()

	c, err := s.counters.Get(ctx, id)
	if err != nil {
		return err
	}
	prev := c.BackgroundRef

	key := background.Key(id, normalized)
	if key == prev {
		return nil
	}
	if err := s.backgrounds.Save(ctx, key, normalized); err != nil {
		return errors.Wrap(errors.ErrCodePersistence, err, "could not store background")
	}

	if err := s.counters.SetBackgroundRef(ctx, id, key); err != nil {
		s.dropBlob(ctx, id, key)
		return err
	}
	if prev != "" {
		s.dropBlob(ctx, id, prev)
	}

	s.logger.Info("background uploaded", "id", id, "key", key, "bytes", len(raw))
	return nil
}

func (s *Service) dropBlob(ctx context.Context, id, key string) {
	if err := s.backgrounds.Delete(ctx, key); err != nil {
		s.logger.Warn("orphaned background blob", "id", id, "key", key, "err", err)
	}
}

// Badge renders the counter's badge using only its stored options,
// incrementing first when opts.Increment is set.
func (s *Service) Badge(ctx context.Context, id string, opts BadgeOptions) (Artifact, error) {
	if err := errors.ValidateCounterID(id); err != nil {
		return Artifact{}, err
	}

	var (
		c   counter.Counter
		err error
	)
	if opts.Increment {
		c, err = s.counters.IncrementAndGet(ctx, id)
	} else {
		c, err = s.counters.Get(ctx, id)
	}
	if err != nil {
		return Artifact{}, err
	}

	return s.render(ctx, c.Count, style.Resolve(c.Options), s.backgroundFor(ctx, c), opts.Format)
}

// Preview renders a badge with PreviewCount from query overrides and defaults.
// It never touches the counter store.
func (s *Service) Preview(ctx context.Context, q url.Values, format Format) (Artifact, error) {
	return s.render(ctx, PreviewCount, style.Resolve(style.FromQuery(q)), nil, format)
}

// Visit increments an existing counter and returns the new count.
func (s *Service) Visit(ctx context.Context, page string) (int64, error) {
	if err := errors.ValidateCounterID(page); err != nil {
		return 0, err
	}
	c, err := s.counters.IncrementAndGet(ctx, page)
	if err != nil {
		return 0, err
	}
	return c.Count, nil
}

// List returns all counter ids in creation order.
func (s *Service) List(ctx context.Context) ([]string, error) {
	all, err := s.counters.List(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(all))
	for i, c := range all {
		ids[i] = c.ID
	}
	return ids, nil
}

func (s *Service) backgroundFor(ctx context.Context, c counter.Counter) []byte {
	if !c.HasBackground() || s.backgrounds == nil {
		return nil
	}
	data, err := s.backgrounds.Get(ctx, c.BackgroundRef)
	if err != nil {
		s.logger.Warn("background unavailable, rendering without it", "id", c.ID, "key", c.BackgroundRef, "err", err)
		return nil
	}
	return data
}
