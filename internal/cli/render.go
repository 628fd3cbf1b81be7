package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kawaiicounter/pkg/background"
	"github.com/matzehuels/kawaiicounter/pkg/badge"
	"github.com/matzehuels/kawaiicounter/pkg/badge/raster"
	"github.com/matzehuels/kawaiicounter/pkg/badge/style"
	"github.com/matzehuels/kawaiicounter/pkg/service"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output      string // output file, "-" or empty for stdout
	format      string // svg or png; inferred from the output extension when empty
	count       int64
	background  string // path of an image to normalize onto the badge
	fit         string
	borderWidth string
	style       style.Options
}

// renderCommand creates the render command, which draws a badge without
// touching any counter store.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{count: service.PreviewCount}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a badge to a file or stdout",
		Example: `  kawaiicounter render --count 42 --label "my site" -o badge.svg
  kawaiicounter render --layout side-by-side --border rounded --background cat.jpg -o badge.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, &opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	f.StringVarP(&opts.format, "format", "f", "", "output format: svg (default), png")
	f.Int64Var(&opts.count, "count", opts.count, "count to display")
	f.StringVar(&opts.background, "background", "", "background image (png, jpeg, gif)")
	f.StringVar(&opts.fit, "fit", string(background.FitStretch), "background fit: stretch, crop")
	f.StringVar(&opts.style.Label, "label", "", "label text")
	f.StringVar(&opts.style.Font, "font", "", "font family")
	f.StringVar(&opts.style.Background, "bg", "", "background colour")
	f.StringVar(&opts.style.FontColor, "font-color", "", "text colour")
	f.StringVar(&opts.style.BorderStyle, "border", "", "border style: solid, dotted, double, rounded")
	f.StringVar(&opts.style.BorderColor, "border-color", "", "border colour")
	f.StringVar(&opts.borderWidth, "border-width", "", "border width in pixels")
	f.StringVar(&opts.style.Layout, "layout", "", "layout: default, number-only, side-by-side, vertical-label")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, opts *renderOpts) error {
	format, err := opts.resolveFormat()
	if err != nil {
		return err
	}
	fit, ok := background.ParseFit(opts.fit)
	if !ok {
		return fmt.Errorf("invalid fit %q: must be stretch or crop", opts.fit)
	}

	var bg []byte
	if opts.background != "" {
		raw, err := os.ReadFile(opts.background)
		if err != nil {
			return fmt.Errorf("read background: %w", err)
		}
		if bg, err = background.NormalizeFit(raw, fit); err != nil {
			return err
		}
		c.Logger.Debug("background normalized", "path", opts.background, "fit", fit)
	}

	o := opts.style
	o.BorderWidth = style.ParseBorderWidth(opts.borderWidth)
	cfg := style.Resolve(o)

	prog := newProgress(c.Logger)
	var data []byte
	switch format {
	case service.FormatPNG:
		if data, err = raster.Rasterize(opts.count, cfg, bg); err != nil {
			return err
		}
	default:
		data = badge.Render(opts.count, cfg, badge.WithBackground(bg), badge.WithLogger(c.Logger))
	}

	if opts.output == "" || opts.output == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Rendered %s badge", format))
	printFile(cmd.OutOrStdout(), opts.output)
	return nil
}

// resolveFormat picks the explicit --format, else a .png or .svg output
// extension, else svg.
func (o *renderOpts) resolveFormat() (service.Format, error) {
	if o.format == "" {
		if format, ok := service.ParseFormat(strings.TrimPrefix(filepath.Ext(o.output), ".")); ok {
			return format, nil
		}
		return service.FormatSVG, nil
	}
	format, ok := service.ParseFormat(o.format)
	if !ok {
		return "", fmt.Errorf("invalid format %q: must be svg or png", o.format)
	}
	return format, nil
}
