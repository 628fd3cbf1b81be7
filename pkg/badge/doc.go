// Package badge renders 88x31 counter badges as SVG markup.
//
// [Render] is a pure function of the count, a resolved [style.Config], and an
// optional background image: identical inputs always produce byte-identical
// output, so callers may cache the result or hash it.
//
// # Layers
//
// Each badge is drawn bottom to top:
//
//  1. the background rectangle, filled and stroked according to the border style
//  2. the background image, stretched over the full canvas (optional)
//  3. the border outline again, so an image never hides it
//  4. the label and the count, placed by the layout
//
// A background that is not a decodable image is dropped with a warning; it
// never fails the render.
//
// # Example
//
//	cfg := style.Resolve(style.Options{Layout: "side-by-side", Label: "Views"})
//	svg := badge.Render(12345, cfg)
package badge
