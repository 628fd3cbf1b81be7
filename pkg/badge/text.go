package badge

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/matzehuels/kawaiicounter/pkg/badge/style"
)

const (
	padding      = 3.0
	charWidth    = 0.55 // average glyph advance as a fraction of the font size
	digitWidth   = 0.6
	minFontSize  = 5.0
	labelMinRune = 3
)

// Anchor is the horizontal alignment of a Text relative to its X coordinate.
type Anchor string

// Text anchors, named as in SVG.
const (
	AnchorStart  Anchor = "start"
	AnchorMiddle Anchor = "middle"
	AnchorEnd    Anchor = "end"
)

// Text is one positioned string on the badge. Y is the baseline. Rotate is in
// degrees, clockwise, about (X, Y).
type Text struct {
	Value  string
	X, Y   float64
	Size   float64
	Anchor Anchor
	Bold   bool
	Rotate float64
}

// Place computes the text items for count under cfg's layout. The rasterizer
// uses the same placement so SVG and PNG badges line up.
func Place(count int64, cfg style.Config) []Text {
	pad := padding + cfg.BorderWidth
	inner := Width - 2*pad
	digits := strconv.FormatInt(count, 10)

	switch cfg.Layout {
	case style.LayoutNumberOnly:
		return []Text{
			{Value: digits, X: Width / 2, Y: 21, Size: fitSize(digits, inner, 16, digitWidth), Anchor: AnchorMiddle, Bold: true},
		}

	case style.LayoutSideBySide:
		countSize := fitSize(digits, inner*0.55, 12, digitWidth)
		countW := float64(len(digits)) * countSize * digitWidth
		labelSize := 10.0
		label := TruncateLabel(cfg.Label, inner-countW-2, labelSize)
		return []Text{
			{Value: label, X: pad, Y: 19.5, Size: labelSize, Anchor: AnchorStart},
			{Value: digits, X: Width - pad, Y: 19.5, Size: countSize, Anchor: AnchorEnd, Bold: true},
		}

	case style.LayoutVerticalLabel:
		labelSize := 7.0
		label := TruncateLabel(cfg.Label, Height-2*pad, labelSize)
		countSize := fitSize(digits, inner-labelSize-2, 14, digitWidth)
		return []Text{
			{Value: label, X: pad + labelSize*0.85, Y: Height / 2.0, Size: labelSize, Anchor: AnchorMiddle, Rotate: -90},
			{Value: digits, X: Width - pad, Y: 20.5, Size: countSize, Anchor: AnchorEnd, Bold: true},
		}

	default:
		labelSize := 9.0
		return []Text{
			{Value: TruncateLabel(cfg.Label, inner, labelSize), X: Width / 2, Y: 12.5, Size: labelSize, Anchor: AnchorMiddle},
			{Value: digits, X: Width / 2, Y: 25, Size: fitSize(digits, inner, 11, digitWidth), Anchor: AnchorMiddle, Bold: true},
		}
	}
}

// fitSize shrinks size until s fits in avail, never below minFontSize.
func fitSize(s string, avail, size, ratio float64) float64 {
	n := max(1, len([]rune(s)))
	byWidth := avail / (float64(n) * ratio)
	return max(minFontSize, min(size, byWidth))
}

// TruncateLabel shortens label to what fits in avail at the given font size,
// ending it with ".." when cut.
func TruncateLabel(label string, avail, size float64) string {
	runes := []rune(label)
	maxRunes := max(labelMinRune, int(avail/(size*charWidth)))
	if len(runes) <= maxRunes {
		return label
	}
	return string(runes[:maxRunes-2]) + ".."
}

func renderText(buf *bytes.Buffer, count int64, cfg style.Config) {
	fmt.Fprintf(buf, `  <g font-family="%s" fill="%s">`+"\n", EscapeXML(cfg.Font), EscapeXML(cfg.FontColor))
	for _, t := range Place(count, cfg) {
		fmt.Fprintf(buf, `    <text x="%s" y="%s" font-size="%s" text-anchor="%s"`,
			num(t.X), num(t.Y), num(t.Size), t.Anchor)
		if t.Bold {
			buf.WriteString(` font-weight="bold"`)
		}
		if t.Rotate != 0 {
			fmt.Fprintf(buf, ` transform="rotate(%s %s %s)"`, num(t.Rotate), num(t.X), num(t.Y))
		}
		fmt.Fprintf(buf, ">%s</text>\n", EscapeXML(t.Value))
	}
	buf.WriteString("  </g>\n")
}

// EscapeXML escapes s for use in SVG text and attribute values.
func EscapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
