package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/kawaiicounter/pkg/badge/style"
	"github.com/matzehuels/kawaiicounter/pkg/counter"
	"github.com/matzehuels/kawaiicounter/pkg/service"
)

// countersCommand creates the counters command for working with the
// configured store directly.
func (c *CLI) countersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "counters",
		Aliases: []string{"counter"},
		Short:   "Inspect and create counters",
	}

	cmd.AddCommand(c.countersListCommand())
	cmd.AddCommand(c.countersShowCommand())
	cmd.AddCommand(c.countersCreateCommand())

	return cmd
}

// withApp loads config, opens the app for the duration of fn, and closes it.
func (c *CLI) withApp(cmd *cobra.Command, fn func(*app) error) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	a, err := c.openApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func (c *CLI) countersListCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all counters in creation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(a *app) error {
				all, err := a.store.List(cmd.Context())
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				if asJSON {
					enc := json.NewEncoder(w)
					enc.SetIndent("", "  ")
					return enc.Encode(all)
				}
				if len(all) == 0 {
					printInfo(w, "No counters yet")
					printNextStep(w, "Create one", appName+" counters create --site example.com")
					return nil
				}
				fmt.Fprintln(w, counterTable(all))
				printDetail(w, "%d counters", len(all))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print counters as JSON")
	return cmd
}

func (c *CLI) countersShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a counter and its style",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(a *app) error {
				ctr, err := a.svc.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				printCounter(cmd.OutOrStdout(), ctr)
				return nil
			})
		},
	}
}

func (c *CLI) countersCreateCommand() *cobra.Command {
	var (
		site        string
		startAt     int64
		borderWidth string
		opts        style.Options
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a counter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.BorderWidth = style.ParseBorderWidth(borderWidth)
			return c.withApp(cmd, func(a *app) error {
				id, err := a.svc.Create(cmd.Context(), service.CreateRequest{
					Site:    site,
					StartAt: startAt,
					Options: &opts,
				})
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				printSuccess(w, "Created counter %s", StyleHighlight.Render(id))
				printNextStep(w, "Embed", "/counter.png?page="+id)
				return nil
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&site, "site", "", "site the counter belongs to (required)")
	f.Int64Var(&startAt, "start", 0, "initial count")
	f.StringVar(&opts.Label, "label", "", "label text")
	f.StringVar(&opts.Font, "font", "", "font family")
	f.StringVar(&opts.Background, "bg", "", "background colour")
	f.StringVar(&opts.FontColor, "font-color", "", "text colour")
	f.StringVar(&opts.BorderStyle, "border", "", "border style: solid, dotted, double, rounded")
	f.StringVar(&opts.BorderColor, "border-color", "", "border colour")
	f.StringVar(&borderWidth, "border-width", "", "border width in pixels")
	f.StringVar(&opts.Layout, "layout", "", "layout: default, number-only, side-by-side, vertical-label")
	_ = cmd.MarkFlagRequired("site")

	return cmd
}

// =============================================================================
// Counter Output
// =============================================================================

func counterTable(all []counter.Counter) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	rows := make([][]string, len(all))
	for i, ctr := range all {
		bg := "-"
		if ctr.HasBackground() {
			bg = "yes"
		}
		rows[i] = []string{
			ctr.ID,
			ctr.Site,
			strconv.FormatInt(ctr.Count, 10),
			string(style.Resolve(ctr.Options).Layout),
			bg,
			ctr.CreatedAt.Local().Format(time.DateTime),
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Site", "Count", "Layout", "Background", "Created").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 0:
				return cellStyle.Foreground(colorPink)
			case col == 2:
				return cellStyle.Foreground(colorWhite).Align(lipgloss.Right)
			default:
				return cellStyle
			}
		})
	return t.String()
}

func printCounter(w io.Writer, ctr counter.Counter) {
	cfg := style.Resolve(ctr.Options)

	fmt.Fprintln(w, StyleTitle.Render(ctr.ID))
	printKeyValue(w, "Site", ctr.Site)
	printKeyValue(w, "Count", StyleNumber.Render(strconv.FormatInt(ctr.Count, 10)))
	printKeyValue(w, "Created", ctr.CreatedAt.Local().Format(time.DateTime))
	if ctr.HasBackground() {
		printKeyValue(w, "Background", ctr.BackgroundRef)
	}
	printKeyValue(w, "Label", cfg.Label)
	printKeyValue(w, "Layout", string(cfg.Layout))
	printKeyValue(w, "Colours", fmt.Sprintf("bg %s, text %s", cfg.Background, cfg.FontColor))
	printKeyValue(w, "Border", fmt.Sprintf("%s %s %gpx", cfg.BorderStyle, cfg.BorderColor, cfg.BorderWidth))
}
