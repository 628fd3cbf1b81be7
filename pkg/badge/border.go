package badge

import (
	"fmt"

	"github.com/matzehuels/kawaiicounter/pkg/badge/style"
)

// CornerRadius is the corner radius of rounded borders.
const CornerRadius = 6.0

// Dash patterns for the patterned border styles.
var (
	dottedDash = []float64{2, 2}
	doubleDash = []float64{3, 1, 1, 1}
)

// border is the stroke geometry derived from a style.
type border struct {
	color  string
	width  float64
	dash   []float64
	radius float64
}

func borderFor(cfg style.Config) border {
	b := border{color: cfg.BorderColor, width: cfg.BorderWidth}
	switch cfg.BorderStyle {
	case style.BorderDotted:
		b.dash = dottedDash
	case style.BorderDouble:
		b.dash = doubleDash
	case style.BorderRounded:
		b.radius = CornerRadius
	}
	return b
}

// Dash returns the stroke dash pattern for s, nil for a continuous stroke.
func Dash(s style.BorderStyle) []float64 {
	return borderFor(style.Config{BorderStyle: s}).dash
}

// Radius returns the corner radius for s.
func Radius(s style.BorderStyle) float64 {
	return borderFor(style.Config{BorderStyle: s}).radius
}

func (b border) strokeAttrs() string {
	if b.width <= 0 {
		return `stroke="none"`
	}
	attrs := fmt.Sprintf(`stroke="%s" stroke-width="%s"`, EscapeXML(b.color), num(b.width))
	if len(b.dash) > 0 {
		attrs += ` stroke-dasharray="` + dashString(b.dash) + `"`
	}
	return attrs
}

func dashString(d []float64) string {
	s := ""
	for i, v := range d {
		if i > 0 {
			s += ","
		}
		s += num(v)
	}
	return s
}
