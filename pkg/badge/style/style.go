package style

import (
	"math"
	"strconv"
	"strings"
)

// Attribute defaults, taken from the classic dark 88x31 counter.
const (
	DefaultLabel       = "Visits"
	DefaultFont        = "sans-serif"
	DefaultBackground  = "#222"
	DefaultFontColor   = "#fff"
	DefaultBorderColor = "#555"
	DefaultBorderWidth = 1.0

	// MaxBorderWidth caps the stroke so that half of the 31px canvas stays visible.
	MaxBorderWidth = 15.0
)

// BorderStyle selects the stroke pattern and corner shape of the badge outline.
type BorderStyle string

// Supported border styles.
const (
	BorderSolid   BorderStyle = "solid"
	BorderDotted  BorderStyle = "dotted"
	BorderDouble  BorderStyle = "double"
	BorderRounded BorderStyle = "rounded"
)

// ParseBorderStyle maps s onto a known border style. Anything unrecognized,
// including the empty string, is BorderSolid.
func ParseBorderStyle(s string) BorderStyle {
	switch BorderStyle(strings.ToLower(strings.TrimSpace(s))) {
	case BorderDotted:
		return BorderDotted
	case BorderDouble:
		return BorderDouble
	case BorderRounded:
		return BorderRounded
	default:
		return BorderSolid
	}
}

// Layout selects how the label and the count are placed on the badge.
type Layout string

// Supported layouts.
const (
	LayoutDefault       Layout = "default"
	LayoutNumberOnly    Layout = "number-only"
	LayoutSideBySide    Layout = "side-by-side"
	LayoutVerticalLabel Layout = "vertical-label"
)

// ParseLayout maps s onto a known layout. Underscores are accepted in place of
// dashes. Anything unrecognized is LayoutDefault.
func ParseLayout(s string) Layout {
	s = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	switch Layout(s) {
	case LayoutNumberOnly:
		return LayoutNumberOnly
	case LayoutSideBySide:
		return LayoutSideBySide
	case LayoutVerticalLabel:
		return LayoutVerticalLabel
	default:
		return LayoutDefault
	}
}

// Config is a fully resolved badge style. Every field is set.
type Config struct {
	Label       string
	Font        string
	Background  string
	FontColor   string
	BorderStyle BorderStyle
	BorderColor string
	BorderWidth float64
	Layout      Layout
}

// Default returns the style used when no layer sets any attribute.
func Default() Config {
	return Config{
		Label:       DefaultLabel,
		Font:        DefaultFont,
		Background:  DefaultBackground,
		FontColor:   DefaultFontColor,
		BorderStyle: BorderSolid,
		BorderColor: DefaultBorderColor,
		BorderWidth: DefaultBorderWidth,
		Layout:      LayoutDefault,
	}
}

// Options is a partial style. Empty strings and a nil BorderWidth mean "not set".
type Options struct {
	Label       string   `json:"label,omitempty" bson:"label,omitempty"`
	Font        string   `json:"font,omitempty" bson:"font,omitempty"`
	Background  string   `json:"background,omitempty" bson:"background,omitempty"`
	FontColor   string   `json:"fontColor,omitempty" bson:"fontColor,omitempty"`
	BorderStyle string   `json:"borderStyle,omitempty" bson:"borderStyle,omitempty"`
	BorderColor string   `json:"borderColor,omitempty" bson:"borderColor,omitempty"`
	BorderWidth *float64 `json:"borderWidth,omitempty" bson:"borderWidth,omitempty"`
	Layout      string   `json:"layout,omitempty" bson:"layout,omitempty"`
}

// ParseBorderWidth parses a user-supplied stroke width. It returns nil for
// blank, non-numeric, negative, or non-finite input, and clamps values above
// MaxBorderWidth.
func ParseBorderWidth(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	w, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return clampWidth(w)
}

func clampWidth(w float64) *float64 {
	if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
		return nil
	}
	w = min(w, MaxBorderWidth)
	return &w
}

// Width returns a pointer to w, for building Options literals.
func Width(w float64) *float64 { return &w }
