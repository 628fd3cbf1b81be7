package background

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/matzehuels/kawaiicounter/pkg/badge"
	"github.com/matzehuels/kawaiicounter/pkg/errors"
)

// MaxSourcePixels bounds the decoded size of an upload so a tiny compressed
// file cannot expand into gigabytes of pixels.
const MaxSourcePixels = 4096 * 4096

// Fit controls how a source image of a different aspect ratio is mapped onto
// the badge.
type Fit string

const (
	// FitStretch scales both axes independently to cover the badge.
	FitStretch Fit = "stretch"
	// FitCrop scales to cover the badge and crops the overflow around the centre.
	FitCrop Fit = "crop"
)

// ParseFit returns the Fit named by s, or false.
func ParseFit(s string) (Fit, bool) {
	switch Fit(s) {
	case FitStretch, "":
		return FitStretch, true
	case FitCrop:
		return FitCrop, true
	}
	return "", false
}

// Normalize decodes raw and returns an 88x31 PNG, stretching the source.
func Normalize(raw []byte) ([]byte, error) {
	return NormalizeFit(raw, FitStretch)
}

// NormalizeFit decodes raw and returns an 88x31 PNG using fit. Inputs that are
// not decodable images, or that exceed MaxSourcePixels, fail with an
// IMAGE_PROCESSING error.
func NormalizeFit(raw []byte, fit Fit) ([]byte, error) {
	if len(raw) == 0 {
		return nil, errors.New(errors.ErrCodeImageProcessing, "background image is empty")
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeImageProcessing, err, "background is not a supported image")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width*cfg.Height > MaxSourcePixels {
		return nil, errors.New(errors.ErrCodeImageProcessing, "background image is %dx%d, too large", cfg.Width, cfg.Height)
	}

	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeImageProcessing, err, "decode %s background", format)
	}

	var dst *image.NRGBA
	switch fit {
	case FitCrop:
		dst = imaging.Fill(src, badge.Width, badge.Height, imaging.Center, imaging.NearestNeighbor)
	default:
		dst = imaging.Resize(src, badge.Width, badge.Height, imaging.NearestNeighbor)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, dst, imaging.PNG); err != nil {
		return nil, errors.Wrap(errors.ErrCodeImageProcessing, err, "encode background")
	}
	return buf.Bytes(), nil
}
