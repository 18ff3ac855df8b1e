package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/marmos91/thriftrt/internal/adminhttp"
	"github.com/marmos91/thriftrt/internal/config"
	"github.com/marmos91/thriftrt/internal/logger"
	"github.com/marmos91/thriftrt/internal/metrics"
	"github.com/marmos91/thriftrt/internal/tracing"
	"github.com/marmos91/thriftrt/pkg/dispatcher"
	"github.com/marmos91/thriftrt/pkg/reactor"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the reactor, dispatcher, and admin HTTP endpoint",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(ConfigFile())
	if err != nil {
		return fmt.Errorf("serve: load config: %w", err)
	}

	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		return fmt.Errorf("serve: init logger: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tracingShutdown, err := tracing.Init(ctx, tracing.Config{
		Enabled:     false,
		ServiceName: cfg.Admin.ServiceName,
	})
	if err != nil {
		return fmt.Errorf("serve: init tracing: %w", err)
	}
	defer func() {
		if err := tracingShutdown(ctx); err != nil {
			logger.Warn("tracing shutdown error", logger.Err(err))
		}
	}()

	var mtr *metrics.Metrics
	if cfg.Metrics.Enabled {
		mtr = metrics.New(prometheus.DefaultRegisterer)
	}

	rt := reactor.New(
		reactor.WithMaxFrameSize(uint32(cfg.Server.MaxFrameSize)),
		reactor.WithBackoff(reactor.Backoff{
			Initial: cfg.Server.ReconnectInitialBackoff,
			Max:     cfg.Server.ReconnectMaxBackoff,
			Factor:  2,
		}),
		reactor.WithMetrics(mtr),
	)
	go rt.Run()

	server, err := dispatcher.Spawn(ctx, rt, dispatcher.ServerRole{
		Addr:   cfg.Server.BindAddress,
		Runner: demoRunner(),
	})
	if err != nil {
		return fmt.Errorf("serve: spawn server dispatcher: %w", err)
	}
	logger.Info("reactor listening", logger.RemoteAddr(server.Addr().String()))

	// /healthz and /readyz must answer regardless of whether Prometheus
	// collection is turned on, so the admin server always starts; only
	// the collectors backing /metrics are gated by cfg.Metrics.Enabled.
	ready := func() bool { return true }
	adminServer := &http.Server{
		Addr:    cfg.Metrics.BindAddress,
		Handler: adminhttp.NewRouter(ready),
	}
	go func() {
		if err := adminServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("admin http server error", logger.Err(err))
		}
	}()
	logger.Info("admin http listening", logger.RemoteAddr(cfg.Metrics.BindAddress))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("thriftrtd is running, press Ctrl+C to stop")
	<-sigChan
	signal.Stop(sigChan)
	logger.Info("shutdown signal received, stopping")

	server.Shutdown()
	rt.Inbox() <- reactor.Shutdown{}
	<-rt.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := adminServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("admin http shutdown error", logger.Err(err))
	}

	logger.Info("thriftrtd stopped")
	return nil
}
