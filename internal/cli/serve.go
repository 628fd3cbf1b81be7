package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kawaiicounter/internal/config"
	"github.com/matzehuels/kawaiicounter/internal/server"
	"github.com/matzehuels/kawaiicounter/pkg/buildinfo"
)

// serveOpts holds command-line overrides for the serve command.
type serveOpts struct {
	addr    string
	store   string
	cache   string
	noLimit bool
}

// serveCommand creates the serve command, which runs the HTTP server until
// the command context is cancelled.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the badge HTTP server",
		Long: `Run the badge HTTP server.

The server shuts down gracefully on SIGINT or SIGTERM, finishing in-flight
requests before exiting.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts.apply(&cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}

			a, err := c.openApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			c.Logger.Info("starting "+appName, buildinfo.Fields()...)
			srv := server.New(a.svc, serverOptions(cfg), c.Logger)
			printInfo(cmd.OutOrStdout(), "Serving %s counters on %s", StyleNumber.Render(strconv.Itoa(a.store.Len())), StyleHighlight.Render(cfg.Server.Addr))
			return srv.ListenAndServe(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (overrides server.addr)")
	cmd.Flags().StringVar(&opts.store, "store", "", "store backend: file, redis, mongo, memory")
	cmd.Flags().StringVar(&opts.cache, "cache", "", "render cache backend: none, memory, file, redis")
	cmd.Flags().BoolVar(&opts.noLimit, "no-rate-limit", false, "disable rate limiting of mutating endpoints")

	return cmd
}

// apply layers flags over the loaded configuration.
func (o serveOpts) apply(cfg *config.Config) {
	if o.addr != "" {
		cfg.Server.Addr = o.addr
	}
	if o.store != "" {
		cfg.Store.Backend = o.store
	}
	if o.cache != "" {
		cfg.Cache.Backend = o.cache
	}
	if o.noLimit {
		cfg.RateLimit.RPS = 0
	}
}

func serverOptions(cfg config.Config) server.Options {
	return server.Options{
		Addr:           cfg.Server.Addr,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		DefaultFormat:  cfg.Format(),
		RateLimitRPS:   cfg.RateLimit.RPS,
		RateLimitBurst: cfg.RateLimit.Burst,
	}
}
