package raster

import (
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// ParseColor understands the CSS colour forms badge styles use in practice:
// #rgb, #rgba, #rrggbb, #rrggbbaa, rgb(), rgba(), the SVG named colours, and
// "transparent".
func ParseColor(s string) (color.Color, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "":
		return nil, false
	case s == "transparent":
		return color.NRGBA{}, true
	case strings.HasPrefix(s, "#"):
		return parseHex(s)
	case strings.HasPrefix(s, "rgb"):
		return parseFunc(s)
	}
	c, ok := colornames.Map[s]
	return c, ok
}

func parseHex(s string) (color.Color, bool) {
	alpha := uint8(255)
	switch len(s) {
	case 5: // #rgba
		a, err := strconv.ParseUint(strings.Repeat(s[4:], 2), 16, 8)
		if err != nil {
			return nil, false
		}
		alpha, s = uint8(a), s[:4]
	case 9: // #rrggbbaa
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return nil, false
		}
		alpha, s = uint8(a), s[:7]
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return nil, false
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}, true
}

// parseFunc handles rgb(r, g, b) and rgba(r, g, b, a) with 0-255 channels
// and a 0-1 alpha.
func parseFunc(s string) (color.Color, bool) {
	open, end := strings.IndexByte(s, '('), strings.LastIndexByte(s, ')')
	if open < 0 || end < open {
		return nil, false
	}
	parts := strings.FieldsFunc(s[open+1:end], func(r rune) bool { return r == ',' || r == ' ' || r == '/' })
	if len(parts) != 3 && len(parts) != 4 {
		return nil, false
	}

	var ch [3]uint8
	for i := range ch {
		v, err := strconv.ParseFloat(parts[i], 64)
		if err != nil {
			return nil, false
		}
		ch[i] = uint8(max(0, min(255, v)))
	}

	alpha := uint8(255)
	if len(parts) == 4 {
		a, err := strconv.ParseFloat(parts[3], 64)
		if err != nil {
			return nil, false
		}
		alpha = uint8(max(0, min(1, a)) * 255)
	}
	return color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: alpha}, true
}

// colorOr parses s, falling back to the parse of fallback.
func colorOr(s, fallback string) color.Color {
	if c, ok := ParseColor(s); ok {
		return c
	}
	c, _ := ParseColor(fallback)
	return c
}
