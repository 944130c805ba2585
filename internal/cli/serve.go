package cli

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/critpath/pkg/api"
	"github.com/matzehuels/critpath/pkg/observability/promhooks"
)

func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the scheduling HTTP API",
		Long: `Serve exposes the scheduling engine over HTTP, backed by the storage
configured in the config file. Prometheus metrics are served on /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string) error {
	logger := loggerFromContext(ctx)

	b, err := c.openConfigured(ctx)
	if err != nil {
		return err
	}
	defer b.Close()

	runner, err := c.newRunner(b)
	if err != nil {
		return err
	}
	defer runner.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	promhooks.New(reg).Register()

	if addr == "" {
		addr = b.cfg.Server.Addr
	}
	srv, err := api.NewServer(runner, logger, api.Config{
		Addr:           addr,
		RequestTimeout: b.cfg.Server.RequestTimeout,
		Gatherer:       reg,
	})
	if err != nil {
		return err
	}
	logger.Info("storage", "backend", b.cfg.Storage.Backend, "redis", b.redis != nil)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
