// Package fonts provides the font faces used to rasterize badges.
//
// The Go font family (golang.org/x/image/font/gofont) is compiled into the
// binary, so PNG badges render identically on every host without system
// fonts. CSS font-family names from badge styles are mapped onto the closest
// Go font: monospace-like names use Go Mono, everything else Go Regular.
package fonts

import (
	"strings"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Family identifies one of the embedded font families.
type Family int

const (
	Sans Family = iota
	Mono
)

// monoHints are substrings of CSS family names that select Mono.
var monoHints = []string{"mono", "courier", "consol", "terminal", "pixel", "code"}

// ForCSS maps a CSS font-family value onto an embedded family.
func ForCSS(css string) Family {
	css = strings.ToLower(css)
	for _, h := range monoHints {
		if strings.Contains(css, h) {
			return Mono
		}
	}
	return Sans
}

type variant struct {
	family Family
	bold   bool
}

var (
	parsed     map[variant]*truetype.Font
	parsedOnce sync.Once
)

func load() {
	parsed = map[variant]*truetype.Font{
		{Sans, false}: mustParse(goregular.TTF),
		{Sans, true}:  mustParse(gobold.TTF),
		{Mono, false}: mustParse(gomono.TTF),
		{Mono, true}:  mustParse(gomonobold.TTF),
	}
}

func mustParse(ttf []byte) *truetype.Font {
	f, err := truetype.Parse(ttf)
	if err != nil {
		panic("fonts: embedded font does not parse: " + err.Error())
	}
	return f
}

// Face returns a new face of the given family at size points (72 DPI, so one
// point is one pixel). Faces are not safe for concurrent use; callers create
// one per render.
func Face(family Family, size float64, bold bool) font.Face {
	parsedOnce.Do(load)
	return truetype.NewFace(parsed[variant{family, bold}], &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}
