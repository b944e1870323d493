package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/matzehuels/chartgeom/internal/server"
	"github.com/matzehuels/chartgeom/pkg/observability/prom"
)

// serveCommand creates the HTTP API command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		noCache   bool
		noMetrics bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chart pipeline over HTTP",
		Long: `Serve the chart pipeline over HTTP.

Routes:
  POST /v1/geometry   dataset → geometry JSON
  POST /v1/render     dataset → rendered artifact (?format=svg|png|pdf|json)
  GET  /healthz       build info
  GET  /metrics       Prometheus metrics

The cache backend, request limits and log rotation come from the config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, noCache, !noMetrics)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, else :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "do not expose /metrics")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, noCache, metrics bool) error {
	runner, cfg, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	if addr == "" {
		addr = cfg.Server.Addr
	}

	w, closer := server.LogWriter(os.Stderr, server.LogFile{
		Path:       cfg.Server.LogFile,
		MaxSizeMB:  cfg.Server.LogMaxSizeMB,
		MaxBackups: cfg.Server.LogMaxBackups,
		MaxAgeDays: cfg.Server.LogMaxAgeDays,
	})
	defer closer.Close()
	logger := newLogger(w, c.Logger.GetLevel())
	runner.Logger = logger

	opts := server.Options{
		Timeout: cfg.Server.RequestTimeout.Duration,
		MaxBody: cfg.Server.MaxBodyMB << 20,
	}
	if metrics {
		if _, err := prom.Install(prometheus.DefaultRegisterer); err != nil {
			return fmt.Errorf("register metrics: %w", err)
		}
		opts.Metrics = promhttp.Handler()
	}

	printSuccess("Serving on %s", StyleHighlight.Render(addr))
	printDetail("Cache: %s", cfg.Cache.Backend)
	if cfg.Server.LogFile != "" {
		printDetail("Log file: %s", cfg.Server.LogFile)
	}
	return server.New(runner, logger, opts).ListenAndServe(ctx, addr)
}
