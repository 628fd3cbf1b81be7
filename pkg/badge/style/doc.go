// Package style resolves the visual parameters of a counter badge.
//
// A badge is styled by eight attributes: label, font, background colour, font
// colour, border style, border colour, border width, and layout. Callers hold
// partial [Options] from different sources (a stored counter, request query
// parameters) and turn them into a complete [Config] with [Resolve].
//
// # Precedence
//
// [Resolve] takes its layers highest precedence first. For each attribute the
// first layer that sets it wins; if none does, the attribute's default applies:
//
//	// authoritative badge: stored options only
//	cfg := style.Resolve(counter.Options)
//
//	// preview: request overrides and defaults only
//	cfg := style.Resolve(style.FromQuery(r.URL.Query()))
//
//	// override > stored > default
//	cfg := style.Resolve(overrides, counter.Options)
//
// # Aliases
//
// The generator form posts "bg" and "border" where the stored schema says
// "background" and "borderStyle". Both JSON bodies and query strings accept
// either spelling; when both are present the field name wins.
//
// # Enumerations
//
// Border styles and layouts are parsed leniently: unknown border styles behave
// as [BorderSolid] and unknown layouts as [LayoutDefault].
package style
