package background

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/matzehuels/kawaiicounter/pkg/errors"
)

func checkerboard(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA{A: 255}
			if (x+y)%2 == 0 {
				c = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestNormalizeDimensions(t *testing.T) {
	sizes := []struct{ w, h int }{
		{88, 31}, {1, 1}, {10, 200}, {400, 30}, {1000, 1000}, {89, 32},
	}

	for _, fit := range []Fit{FitStretch, FitCrop} {
		for _, sz := range sizes {
			out, err := NormalizeFit(encodePNG(t, checkerboard(sz.w, sz.h)), fit)
			if err != nil {
				t.Fatalf("NormalizeFit(%dx%d, %s) error: %v", sz.w, sz.h, fit, err)
			}
			img, format, err := image.Decode(bytes.NewReader(out))
			if err != nil {
				t.Fatalf("output does not decode: %v", err)
			}
			if format != "png" {
				t.Errorf("format = %s, want png", format)
			}
			if b := img.Bounds(); b.Dx() != 88 || b.Dy() != 31 {
				t.Errorf("NormalizeFit(%dx%d, %s) = %dx%d, want 88x31", sz.w, sz.h, fit, b.Dx(), b.Dy())
			}
		}
	}
}

func TestNormalizeFormats(t *testing.T) {
	src := checkerboard(44, 20)

	var jpg, gf bytes.Buffer
	if err := jpeg.Encode(&jpg, src, nil); err != nil {
		t.Fatal(err)
	}
	if err := gif.Encode(&gf, src, nil); err != nil {
		t.Fatal(err)
	}

	for name, data := range map[string][]byte{"jpeg": jpg.Bytes(), "gif": gf.Bytes()} {
		if _, err := Normalize(data); err != nil {
			t.Errorf("Normalize(%s) error: %v", name, err)
		}
	}
}

func TestNormalizeNearestNeighbour(t *testing.T) {
	// A 2x1 black|white source must upscale to hard-edged halves, no grey.
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.Set(0, 0, color.NRGBA{A: 255})
	src.Set(1, 0, color.NRGBA{R: 255, G: 255, B: 255, A: 255})

	out, err := Normalize(encodePNG(t, src))
	if err != nil {
		t.Fatal(err)
	}
	img, _, _ := image.Decode(bytes.NewReader(out))
	for y := 0; y < 31; y++ {
		for x := 0; x < 88; x++ {
			r, _, _, _ := img.At(x, y).RGBA()
			if v := r >> 8; v != 0 && v != 255 {
				t.Fatalf("pixel (%d,%d) = %d, interpolated value found", x, y, v)
			}
		}
	}
}

func TestNormalizeRejectsGarbage(t *testing.T) {
	inputs := map[string][]byte{
		"empty":     nil,
		"text":      []byte("hello, I am not an image"),
		"truncated": encodePNG(t, checkerboard(20, 20))[:40],
	}

	for name, raw := range inputs {
		t.Run(name, func(t *testing.T) {
			_, err := Normalize(raw)
			if err == nil {
				t.Fatal("Normalize() should fail")
			}
			if !errors.Is(err, errors.ErrCodeImageProcessing) {
				t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeImageProcessing)
			}
		})
	}
}

func TestParseFit(t *testing.T) {
	tests := []struct {
		in   string
		want Fit
		ok   bool
	}{
		{"", FitStretch, true},
		{"stretch", FitStretch, true},
		{"crop", FitCrop, true},
		{"zoom", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseFit(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseFit(%q) = %v, %v, want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
