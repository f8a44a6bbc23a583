package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	clarinet "github.com/nlebedenco/clarinet-go"
	"github.com/nlebedenco/clarinet-go/internal/probe"
)

// shutdownTimeout is the maximum time to wait for the metrics server to
// drain during graceful shutdown.
const shutdownTimeout = 5 * time.Second

func echoCmd() *cobra.Command {
	var (
		listen   string
		protocol string
	)

	cmd := &cobra.Command{
		Use:   "echo",
		Short: "Run a UDP or TCP echo endpoint",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := probe.Load(configPath)
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.Echo.Listen = listen
			}
			if protocol != "" {
				cfg.Echo.Protocol = protocol
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runEcho(cfg)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "local endpoint (overrides config)")
	cmd.Flags().StringVar(&protocol, "protocol", "", "udp or tcp (overrides config)")
	return cmd
}

func runEcho(cfg probe.Config) error {
	logger := probe.NewLogger(cfg.Log)

	if err := clarinet.Initialize(); err != nil {
		return fmt.Errorf("initialize network subsystem: %w", err)
	}
	defer clarinet.Finalize()

	reg := prometheus.NewRegistry()
	collector := probe.NewCollector(reg)
	echo := probe.NewEcho(cfg, logger, collector)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return echo.Run(ctx)
	})

	if cfg.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: cfg.Metrics.Addr, Handler: mux}

		g.Go(func() error {
			logger.Info("metrics listening", slog.String("addr", cfg.Metrics.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("clarinet-probe stopped")
	return nil
}
