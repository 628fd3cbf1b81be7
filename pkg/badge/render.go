package badge

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/kawaiicounter/pkg/badge/style"
)

// Canvas size of every badge, regardless of layout or background.
const (
	Width  = 88
	Height = 31
)

// ContentType is the media type of the markup returned by Render.
const ContentType = "image/svg+xml"

// Option configures a single Render call.
type Option func(*renderer)

type renderer struct {
	background []byte
	logger     *log.Logger
}

// WithBackground composites data (an encoded raster image) over the badge fill.
func WithBackground(data []byte) Option {
	return func(r *renderer) { r.background = data }
}

// WithLogger sets the logger used to report dropped backgrounds.
func WithLogger(l *log.Logger) Option {
	return func(r *renderer) { r.logger = l }
}

// Render draws count with cfg and returns the SVG document.
func Render(count int64, cfg style.Config, opts ...Option) []byte {
	r := renderer{logger: log.Default()}
	for _, opt := range opts {
		opt(&r)
	}

	border := borderFor(cfg)
	bgURI := r.backgroundURI()

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		Width, Height, Width, Height)

	if bgURI != "" && border.radius > 0 {
		buf.WriteString("  <defs><clipPath id=\"badge-clip\">")
		writeRect(&buf, border, `fill="#000"`)
		buf.WriteString("</clipPath></defs>\n")
	}

	buf.WriteString("  ")
	writeRect(&buf, border, fmt.Sprintf(`fill="%s" %s`, EscapeXML(cfg.Background), border.strokeAttrs()))
	buf.WriteString("\n")

	if bgURI != "" {
		clip := ""
		if border.radius > 0 {
			clip = ` clip-path="url(#badge-clip)"`
		}
		fmt.Fprintf(&buf, `  <image x="0" y="0" width="%d" height="%d" preserveAspectRatio="none" style="image-rendering:pixelated"%s xlink:href="%s"/>`+"\n",
			Width, Height, clip, bgURI)
		if border.width > 0 {
			buf.WriteString("  ")
			writeRect(&buf, border, `fill="none" `+border.strokeAttrs())
			buf.WriteString("\n")
		}
	}

	renderText(&buf, count, cfg)

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// backgroundURI returns the background as a data URI, or "" when there is no
// usable background.
func (r *renderer) backgroundURI() string {
	if len(r.background) == 0 {
		return ""
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(r.background)); err != nil {
		if r.logger != nil {
			r.logger.Warn("dropping undecodable badge background", "bytes", len(r.background), "err", err)
		}
		return ""
	}
	mime := http.DetectContentType(r.background)
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(r.background)
}

func writeRect(buf *bytes.Buffer, b border, attrs string) {
	inset := b.width / 2
	fmt.Fprintf(buf, `<rect x="%s" y="%s" width="%s" height="%s"`,
		num(inset), num(inset), num(Width-b.width), num(Height-b.width))
	if b.radius > 0 {
		fmt.Fprintf(buf, ` rx="%s" ry="%s"`, num(b.radius), num(b.radius))
	}
	buf.WriteString(" " + attrs + "/>")
}

// num formats a coordinate with the shortest exact representation.
func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
