package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/sagarc03/confguard"
	"github.com/sagarc03/confguard/config"
	confhttp "github.com/sagarc03/confguard/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP validation server",
	Long: `Start an HTTP server that validates INI documents posted to
/v1/validate. When history is enabled, every validation is recorded and can
be listed under /v1/runs.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 5710, "HTTP server port (env: CONFGUARD_SERVER_PORT)")
	serveCmd.Flags().Bool("record", false, "record validations in the history backend")
	serveCmd.Flags().Bool("metrics", true, "expose Prometheus metrics on /metrics (env: CONFGUARD_SERVER_METRICS)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	var repo confguard.RunRepo
	if cfg.History.Enabled {
		r, cleanup, err := openHistory(ctx, cfg)
		if err != nil {
			return err
		}
		defer cleanup()
		repo = r
		slog.Info("run history enabled", "type", cfg.History.Type)
	}

	service, err := confguard.NewCheckService(afero.NewOsFs(), repo)
	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}

	handlerCfg := confhttp.HandlerConfig{
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		CORS:         cfg.CORS,
	}
	if cfg.Server.Metrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		handlerCfg.Metrics = confhttp.NewMetrics(reg)
	}

	handler := confhttp.NewHandler(&handlerCfg, service)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)

		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		slog.Info("shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "err", err)
		}
		cancel()
	}()

	slog.Info("starting server", "addr", addr, "history", repo != nil)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}
