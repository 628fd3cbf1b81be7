// Package pkg holds the kawaiicounter libraries.
//
// # Overview
//
// kawaiicounter draws 88x31 visit-counter badges. The pkg directory is
// organized by concern:
//
//  1. [counter] - counters, identifiers, and the persisted snapshot
//  2. [badge] - style resolution, SVG rendering, and PNG rasterization
//  3. [background] - normalization and storage of uploaded backgrounds
//  4. [cache] - memoization of rasterized badges (memory, file, redis)
//  5. [service] - the use cases shared by the HTTP server and the CLI
//
// Supporting packages: [errors] (coded errors mapped to HTTP statuses),
// [fonts] (embedded Go fonts for the rasterizer), [observability] (counter and
// render hooks), and [buildinfo].
//
// # Data Flow
//
//	request → service → counter.Store (increment) → style.Resolve
//	        → badge.Render (SVG) or raster.Rasterize (PNG, cached)
//
// [counter]: github.com/matzehuels/kawaiicounter/pkg/counter
// [badge]: github.com/matzehuels/kawaiicounter/pkg/badge
// [background]: github.com/matzehuels/kawaiicounter/pkg/background
// [cache]: github.com/matzehuels/kawaiicounter/pkg/cache
// [service]: github.com/matzehuels/kawaiicounter/pkg/service
// [errors]: github.com/matzehuels/kawaiicounter/pkg/errors
// [fonts]: github.com/matzehuels/kawaiicounter/pkg/fonts
// [observability]: github.com/matzehuels/kawaiicounter/pkg/observability
// [buildinfo]: github.com/matzehuels/kawaiicounter/pkg/buildinfo
package pkg
