// Package raster draws counter badges as 88x31 PNG images.
//
// The layer stack and text placement are shared with the SVG renderer in
// package badge, so a badge looks the same in either format. Drawing uses
// fogleman/gg with the embedded Go fonts from package fonts.
package raster

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"github.com/matzehuels/kawaiicounter/pkg/badge"
	"github.com/matzehuels/kawaiicounter/pkg/badge/style"
	"github.com/matzehuels/kawaiicounter/pkg/fonts"
)

// ContentType is the media type of Rasterize output.
const ContentType = "image/png"

// Rasterize draws count with cfg over the optional background and returns PNG
// bytes. A background that does not decode is skipped, matching the SVG
// renderer; the returned error is reserved for encoding failures.
func Rasterize(count int64, cfg style.Config, background []byte) ([]byte, error) {
	dc := gg.NewContext(badge.Width, badge.Height)

	bw := cfg.BorderWidth
	radius := badge.Radius(cfg.BorderStyle)
	outline := func() {
		x, y := bw/2, bw/2
		w, h := float64(badge.Width)-bw, float64(badge.Height)-bw
		if radius > 0 {
			dc.DrawRoundedRectangle(x, y, w, h, radius)
		} else {
			dc.DrawRectangle(x, y, w, h)
		}
	}

	// fill
	outline()
	dc.SetColor(colorOr(cfg.Background, style.DefaultBackground))
	dc.Fill()

	// background image
	if img := decodeBackground(background); img != nil {
		if radius > 0 {
			outline()
			dc.Clip()
		}
		dc.DrawImage(img, 0, 0)
		dc.ResetClip()
	}

	// border
	if bw > 0 {
		outline()
		dc.SetColor(colorOr(cfg.BorderColor, style.DefaultBorderColor))
		dc.SetLineWidth(bw)
		dc.SetDash(badge.Dash(cfg.BorderStyle)...)
		dc.Stroke()
		dc.SetDash()
	}

	// text
	fg := colorOr(cfg.FontColor, style.DefaultFontColor)
	family := fonts.ForCSS(cfg.Font)
	for _, t := range badge.Place(count, cfg) {
		dc.SetFontFace(fonts.Face(family, t.Size, t.Bold))
		dc.SetColor(fg)
		dc.Push()
		if t.Rotate != 0 {
			dc.RotateAbout(gg.Radians(t.Rotate), t.X, t.Y)
		}
		dc.DrawStringAnchored(t.Value, t.X, t.Y, anchorX(t.Anchor), 0)
		dc.Pop()
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode badge png: %w", err)
	}
	return buf.Bytes(), nil
}

// decodeBackground decodes data and makes sure it covers exactly the canvas.
func decodeBackground(data []byte) image.Image {
	if len(data) == 0 {
		return nil
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	if b := img.Bounds(); b.Dx() != badge.Width || b.Dy() != badge.Height {
		img = imaging.Resize(img, badge.Width, badge.Height, imaging.NearestNeighbor)
	}
	return img
}

func anchorX(a badge.Anchor) float64 {
	switch a {
	case badge.AnchorMiddle:
		return 0.5
	case badge.AnchorEnd:
		return 1
	default:
		return 0
	}
}
