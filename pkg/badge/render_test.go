package badge

import (
	"bytes"
	"encoding/xml"
	"image"
	"image/color"
	"image/png"
	"io"
	"strconv"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/kawaiicounter/pkg/badge/style"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 3), G: uint8(y * 5), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

// svgDoc is the subset of the badge markup the tests inspect.
type svgDoc struct {
	Width  string    `xml:"width,attr"`
	Height string    `xml:"height,attr"`
	Rects  []svgRect `xml:"rect"`
	Images []struct {
		Href string `xml:"http://www.w3.org/1999/xlink href,attr"`
	} `xml:"image"`
	Group struct {
		Font  string    `xml:"font-family,attr"`
		Fill  string    `xml:"fill,attr"`
		Texts []svgText `xml:"text"`
	} `xml:"g"`
}

type svgRect struct {
	Fill      string `xml:"fill,attr"`
	Stroke    string `xml:"stroke,attr"`
	Width     string `xml:"stroke-width,attr"`
	Dash      string `xml:"stroke-dasharray,attr"`
	RX        string `xml:"rx,attr"`
	RectWidth string `xml:"width,attr"`
}

type svgText struct {
	X         string `xml:"x,attr"`
	Y         string `xml:"y,attr"`
	Anchor    string `xml:"text-anchor,attr"`
	Transform string `xml:"transform,attr"`
	Value     string `xml:",chardata"`
}

func parse(t *testing.T, data []byte) svgDoc {
	t.Helper()
	var doc svgDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		t.Fatalf("badge is not valid XML: %v\n%s", err, data)
	}
	return doc
}

func TestRenderFixedSize(t *testing.T) {
	bg := testPNG(t, 88, 31)
	layouts := []style.Layout{style.LayoutDefault, style.LayoutNumberOnly, style.LayoutSideBySide, style.LayoutVerticalLabel, "bogus"}

	for _, l := range layouts {
		for _, withBG := range []bool{false, true} {
			cfg := style.Resolve(style.Options{Layout: string(l)})
			var opts []Option
			if withBG {
				opts = append(opts, WithBackground(bg))
			}
			doc := parse(t, Render(7, cfg, opts...))
			if doc.Width != "88" || doc.Height != "31" {
				t.Errorf("layout %s bg=%v: size = %sx%s, want 88x31", l, withBG, doc.Width, doc.Height)
			}
		}
	}
}

func TestRenderDeterministic(t *testing.T) {
	cfg := style.Resolve(style.Options{Label: "Hits", BorderStyle: "dotted", Layout: "side-by-side"})
	bg := testPNG(t, 88, 31)

	a := Render(5, cfg, WithBackground(bg))
	b := Render(5, cfg, WithBackground(bg))
	if !bytes.Equal(a, b) {
		t.Error("Render() should be deterministic for identical inputs")
	}

	c := Render(6, cfg, WithBackground(bg))
	if bytes.Equal(a, c) {
		t.Error("Render() should differ for different counts")
	}
}

func TestRenderBorderStyles(t *testing.T) {
	tests := []struct {
		border   string
		wantDash string
		wantRX   string
	}{
		{"solid", "", ""},
		{"dotted", "2,2", ""},
		{"double", "3,1,1,1", ""},
		{"rounded", "", "6"},
		{"zigzag", "", ""},
		{"", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.border, func(t *testing.T) {
			cfg := style.Resolve(style.Options{BorderStyle: tt.border, BorderWidth: style.Width(2)})
			doc := parse(t, Render(1, cfg))
			if len(doc.Rects) != 1 {
				t.Fatalf("got %d rects, want 1", len(doc.Rects))
			}
			r := doc.Rects[0]
			if r.Dash != tt.wantDash {
				t.Errorf("stroke-dasharray = %q, want %q", r.Dash, tt.wantDash)
			}
			if r.RX != tt.wantRX {
				t.Errorf("rx = %q, want %q", r.RX, tt.wantRX)
			}
			if r.Width != "2" {
				t.Errorf("stroke-width = %q, want 2", r.Width)
			}
		})
	}
}

func TestRenderGarbageBorderIsSolid(t *testing.T) {
	garbage := Render(3, style.Resolve(style.Options{BorderStyle: "<<garbage>>"}))
	solid := Render(3, style.Resolve(style.Options{BorderStyle: "solid"}))
	if !bytes.Equal(garbage, solid) {
		t.Errorf("garbage border should render exactly like solid\n%s\n%s", garbage, solid)
	}
}

func TestRenderStrokeInset(t *testing.T) {
	cfg := style.Resolve(style.Options{BorderWidth: style.Width(4)})
	doc := parse(t, Render(1, cfg))
	if got := doc.Rects[0].RectWidth; got != "84" {
		t.Errorf("rect width = %s, want 84", got)
	}
}

func TestRenderZeroBorder(t *testing.T) {
	cfg := style.Resolve(style.Options{BorderWidth: style.Width(0)})
	doc := parse(t, Render(1, cfg))
	if doc.Rects[0].Stroke != "none" {
		t.Errorf("stroke = %q, want none", doc.Rects[0].Stroke)
	}
}

func TestRenderLayouts(t *testing.T) {
	t.Run("number-only", func(t *testing.T) {
		cfg := style.Resolve(style.Options{Label: "Hits", Layout: "number-only"})
		doc := parse(t, Render(11, cfg))
		texts := doc.Group.Texts
		if len(texts) != 1 {
			t.Fatalf("got %d texts, want 1", len(texts))
		}
		if texts[0].Value != "11" || texts[0].Anchor != "middle" || texts[0].X != "44" {
			t.Errorf("text = %+v, want centered 11", texts[0])
		}
	})

	t.Run("side-by-side", func(t *testing.T) {
		cfg := style.Resolve(style.Options{Label: "Views", Layout: "side-by-side"})
		doc := parse(t, Render(12345, cfg))
		texts := doc.Group.Texts
		if len(texts) != 2 {
			t.Fatalf("got %d texts, want 2", len(texts))
		}
		if texts[0].Value != "Views" || texts[0].Anchor != "start" {
			t.Errorf("label = %+v, want left-aligned Views", texts[0])
		}
		if texts[1].Value != "12345" || texts[1].Anchor != "end" {
			t.Errorf("count = %+v, want right-aligned 12345", texts[1])
		}
		if texts[0].Y != texts[1].Y {
			t.Errorf("baselines differ: %s vs %s", texts[0].Y, texts[1].Y)
		}
	})

	t.Run("vertical-label", func(t *testing.T) {
		cfg := style.Resolve(style.Options{Label: "Hits", Layout: "vertical-label"})
		doc := parse(t, Render(42, cfg))
		texts := doc.Group.Texts
		if len(texts) != 2 {
			t.Fatalf("got %d texts, want 2", len(texts))
		}
		if !strings.HasPrefix(texts[0].Transform, "rotate(-90 ") {
			t.Errorf("label transform = %q, want rotate(-90 ...)", texts[0].Transform)
		}
		if texts[1].Value != "42" || texts[1].Anchor != "end" {
			t.Errorf("count = %+v, want right-aligned 42", texts[1])
		}
	})

	t.Run("default", func(t *testing.T) {
		cfg := style.Resolve(style.Options{Label: "Hits", Layout: "mystery"})
		doc := parse(t, Render(9, cfg))
		texts := doc.Group.Texts
		if len(texts) != 2 {
			t.Fatalf("got %d texts, want 2", len(texts))
		}
		if texts[0].Value != "Hits" || texts[1].Value != "9" {
			t.Errorf("texts = %+v", texts)
		}
		if texts[0].Anchor != "middle" || texts[1].Anchor != "middle" {
			t.Errorf("default layout should center both lines: %+v", texts)
		}
		labelY, _ := strconv.ParseFloat(texts[0].Y, 64)
		countY, _ := strconv.ParseFloat(texts[1].Y, 64)
		if labelY >= countY {
			t.Errorf("label baseline %s should be above count baseline %s", texts[0].Y, texts[1].Y)
		}
	})
}

func TestRenderBackground(t *testing.T) {
	cfg := style.Resolve(style.Options{BorderStyle: "rounded"})
	doc := parse(t, Render(1, cfg, WithBackground(testPNG(t, 88, 31))))

	if len(doc.Images) != 1 {
		t.Fatalf("got %d images, want 1", len(doc.Images))
	}
	if !strings.HasPrefix(doc.Images[0].Href, "data:image/png;base64,") {
		t.Errorf("href = %.40q, want png data URI", doc.Images[0].Href)
	}
	if len(doc.Rects) != 2 {
		t.Errorf("got %d rects, want fill plus outline", len(doc.Rects))
	}
}

func TestRenderLayerOrder(t *testing.T) {
	out := string(Render(1, style.Default(), WithBackground(testPNG(t, 88, 31))))
	rect := strings.Index(out, "<rect")
	img := strings.Index(out, "<image")
	text := strings.Index(out, "<text")
	if !(rect < img && img < text) {
		t.Errorf("layers out of order: rect=%d image=%d text=%d", rect, img, text)
	}
}

func TestRenderCorruptBackgroundIsOmitted(t *testing.T) {
	cfg := style.Default()
	got := Render(1, cfg, WithBackground([]byte("definitely not an image")), WithLogger(quietLogger()))
	want := Render(1, cfg)
	if !bytes.Equal(got, want) {
		t.Error("undecodable background should be dropped, leaving the plain badge")
	}
}

func TestRenderEscapesUserInput(t *testing.T) {
	cfg := style.Resolve(style.Options{
		Label:      `<script>alert(1)</script>`,
		Background: `red" onload="evil()`,
		Font:       `x"><g>`,
	})
	out := Render(1, cfg)
	if bytes.Contains(out, []byte("<script>")) || bytes.Contains(out, []byte(`onload="`)) {
		t.Errorf("user input not escaped:\n%s", out)
	}
	parse(t, out)
}

func TestTruncateLabel(t *testing.T) {
	tests := []struct {
		label string
		avail float64
		want  string
	}{
		{"Visits", 80, "Visits"},
		{"A very long label indeed", 40, "A very.."},
		{"かわいいカウンター", 20, "かわ.."},
		{"abcdef", 1, "a.."},
	}

	for _, tt := range tests {
		if got := TruncateLabel(tt.label, tt.avail, 9); got != tt.want {
			t.Errorf("TruncateLabel(%q, %v) = %q, want %q", tt.label, tt.avail, got, tt.want)
		}
	}
}
