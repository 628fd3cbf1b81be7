package service

import (
	"context"
	"time"

	"github.com/matzehuels/kawaiicounter/pkg/badge"
	"github.com/matzehuels/kawaiicounter/pkg/badge/raster"
	"github.com/matzehuels/kawaiicounter/pkg/badge/style"
	"github.com/matzehuels/kawaiicounter/pkg/cache"
	"github.com/matzehuels/kawaiicounter/pkg/errors"
	"github.com/matzehuels/kawaiicounter/pkg/observability"
)

func (s *Service) render(ctx context.Context, count int64, cfg style.Config, bg []byte, format Format) (Artifact, error) {
	start := time.Now()
	if format == "" {
		format = FormatSVG
	}

	svg := badge.Render(count, cfg, badge.WithBackground(bg), badge.WithLogger(s.logger))
	art := Artifact{Data: svg, ContentType: badge.ContentType, Count: count}

	var err error
	if format == FormatPNG {
		art.ContentType = raster.ContentType
		art.Data, err = s.rasterize(ctx, count, cfg, bg, svg)
	}

	observability.Render().OnRender(ctx, string(format), string(cfg.Layout), time.Since(start), err)
	if err != nil {
		return Artifact{}, err
	}
	return art, nil
}

// rasterize draws the PNG for a badge whose SVG is svg. The SVG captures every
// input of the drawing, so its hash is the cache key.
func (s *Service) rasterize(ctx context.Context, count int64, cfg style.Config, bg, svg []byte) ([]byte, error) {
	key := cache.Key("png", cache.Hash(svg))

	if data, hit, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Warn("render cache read failed", "err", err)
	} else if hit {
		observability.Render().OnCacheHit(ctx)
		return data, nil
	}
	observability.Render().OnCacheMiss(ctx)

	v, err, _ := s.group.Do(key, func() (any, error) {
		png, err := raster.Rasterize(count, cfg, bg)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(ctx, key, png, s.cacheTTL); err != nil {
			s.logger.Warn("render cache write failed", "err", err)
		}
		return png, nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "could not rasterize badge")
	}
	return v.([]byte), nil
}
