package style

import (
	"net/url"
	"strings"
)

// Resolve merges layers, highest precedence first, on top of the defaults.
func Resolve(layers ...Options) Config {
	cfg := Default()
	cfg.Label = first(layers, func(o Options) string { return o.Label }, cfg.Label)
	cfg.Font = first(layers, func(o Options) string { return o.Font }, cfg.Font)
	cfg.Background = first(layers, func(o Options) string { return o.Background }, cfg.Background)
	cfg.FontColor = first(layers, func(o Options) string { return o.FontColor }, cfg.FontColor)
	cfg.BorderColor = first(layers, func(o Options) string { return o.BorderColor }, cfg.BorderColor)

	if s := first(layers, func(o Options) string { return o.BorderStyle }, ""); s != "" {
		cfg.BorderStyle = ParseBorderStyle(s)
	}
	if s := first(layers, func(o Options) string { return o.Layout }, ""); s != "" {
		cfg.Layout = ParseLayout(s)
	}

	for _, l := range layers {
		if l.BorderWidth == nil {
			continue
		}
		if w := clampWidth(*l.BorderWidth); w != nil {
			cfg.BorderWidth = *w
			break
		}
	}
	return cfg
}

func first(layers []Options, get func(Options) string, fallback string) string {
	for _, l := range layers {
		if v := strings.TrimSpace(get(l)); v != "" {
			return v
		}
	}
	return fallback
}

// FromQuery reads style overrides from request query parameters, accepting
// the same aliases as [Options.UnmarshalJSON].
func FromQuery(q url.Values) Options {
	return Options{
		Label:       q.Get("label"),
		Font:        q.Get("font"),
		Background:  withAlias(q.Get("background"), q.Get("bg")),
		FontColor:   q.Get("fontColor"),
		BorderStyle: withAlias(q.Get("borderStyle"), q.Get("border")),
		BorderColor: q.Get("borderColor"),
		BorderWidth: ParseBorderWidth(q.Get("borderWidth")),
		Layout:      q.Get("layout"),
	}
}
