package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/matzehuels/apiscout/pkg/observability"
	"github.com/matzehuels/apiscout/pkg/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noWatch bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve discovery and integration configs over HTTP",
		Long: `Start an HTTP server exposing discovery, endpoint resolution, the
integration mapping, and Prometheus metrics. The mapping file is reloaded
when it changes on disk.`,
		Example: `  apiscout serve
  apiscout serve --addr :9090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}
			ctx := cmd.Context()

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			hooks, err := observability.NewPrometheusHooks(reg)
			if err != nil {
				return err
			}
			observability.SetDiscoveryHooks(hooks)
			observability.SetHTTPHooks(hooks)
			observability.SetCacheHooks(hooks)
			defer observability.Reset()

			engine, cleanup, err := c.newEngine(ctx, cfg, engineOptions{})
			if err != nil {
				return err
			}
			defer cleanup()

			in := c.newIntegrator(cfg)
			in.LoadConfig()
			if !noWatch {
				go func() {
					if err := in.Watch(ctx); err != nil {
						c.Logger.Warn("not watching mapping file", "path", in.Path(), "error", err)
					}
				}()
			}

			srv := server.New(server.Options{
				Discoverer: engine,
				Integrator: in,
				Logger:     c.Logger,
				Metrics:    promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
			})
			printInfo("Serving on %s", StyleLink.Render("http://"+addr))
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, 127.0.0.1:8080)")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "do not reload the mapping file on change")

	return cmd
}
