package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/brickfall/pkg/observability"
	"github.com/matzehuels/brickfall/pkg/server"
)

// serveCommand creates the serve command, which exposes the pipeline over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis over HTTP",
		Long: `Serve the analysis over HTTP.

Routes:
  POST /v1/analyze   snapshot in the body, JSON report out
  POST /v1/render    snapshot in the body, ?format=svg|png|dot|json
  GET  /healthz      liveness probe
  GET  /metrics      Prometheus metrics

The listen address and cache backend default to the [server] and [cache]
sections of the config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = c.Config.Server.Addr
			}
			if !cmd.Flags().Changed("timeout") {
				timeout = c.Config.Server.Timeout.Duration
			}
			return c.runServe(cmd.Context(), addr, timeout)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "maximum time per request")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, timeout time.Duration) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(reg)
	defer observability.InstallAll(metrics)()

	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	srv := server.New(server.Config{
		Addr:     addr,
		Runner:   runner,
		Logger:   log.FromContext(ctx),
		Gatherer: reg,
		Timeout:  timeout,
		CacheTTL: c.Config.Cache.TTL.Duration,
	})
	return srv.ListenAndServe(ctx)
}
