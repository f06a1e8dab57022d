// Package server provides server-related CLI commands.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/andrei-cloud/go_pool/internal/config"
	"github.com/andrei-cloud/go_pool/internal/entity"
	"github.com/andrei-cloud/go_pool/internal/host"
	"github.com/andrei-cloud/go_pool/internal/logging"
	"github.com/andrei-cloud/go_pool/internal/metrics"
	"github.com/andrei-cloud/go_pool/internal/pool"
	"github.com/andrei-cloud/go_pool/internal/server"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the pool server",
		Long:  `Start the object pool server and serve acquire and release requests over TCP.`,
		RunE:  runServe,
	}

	// Add serve command specific flags that can override config.
	cmd.Flags().String("host", "localhost", "Server host")
	cmd.Flags().Int("port", 1600, "Server port")
	cmd.Flags().String("metrics-addr", "", "Prometheus metrics listen address (disabled when empty)")

	// Bind serve command flags to config keys.
	config.BindPFlag("server.host", cmd.Flags().Lookup("host"))
	config.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	config.BindPFlag("metrics.addr", cmd.Flags().Lookup("metrics-addr"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	// Get configuration.
	cfg := config.Get()

	// Normalize log level and format from config (with CLI flags overriding it).
	logLevel := strings.TrimSpace(strings.ToLower(cfg.Log.Level))
	logFormat := strings.TrimSpace(strings.ToLower(cfg.Log.Format))
	logging.InitLogger(logLevel == "debug", logFormat == "human")

	catalog := entity.NewCatalog(cfg.Catalog...)
	log.Debug().Strs("kinds", catalog.Kinds()).Msg("loaded catalog")

	reg := prometheus.NewRegistry()
	collector, err := metrics.NewCollector(reg)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	loop := host.New(
		NewFactory(cfg, catalog, NewRedisStore(cfg), collector),
		host.WithTickRate(cfg.Host.TickRate),
		host.WithStatsObserver(collector.Observe),
	)

	// Create a context that will be canceled when the server is stopping.
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	loopErr := make(chan error, 1)
	go func() { loopErr <- loop.Run(ctx) }()
	if err := loop.Do(ctx, func(m *pool.Manager) error {
		log.Info().Int("categories", m.Registry().Len()).Msg("pool ready")
		return nil
	}); err != nil {
		if errors.Is(err, host.ErrStopped) {
			return <-loopErr
		}
		return err
	}

	// Initialize the server with configured host and port.
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv, err := server.NewServer(serverAddr, loop, catalog)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %v", err)
	}

	if cfg.Metrics.Addr != "" {
		metricsSrv := serveMetrics(cfg.Metrics.Addr, reg)
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			_ = metricsSrv.Shutdown(shutdownCtx)
		}()
	}

	// Change scope on SIGHUP.
	reloadChan := make(chan os.Signal, 1)
	signal.Notify(reloadChan, syscall.SIGHUP)
	go func() {
		for range reloadChan {
			log.Info().Msg("reloading pool scope...")
			if err := srv.Reload(ctx); err != nil {
				log.Error().Err(err).Msg("failed to reload pool scope")
				continue
			}
			log.Info().Msg("pool scope reloaded")
		}
	}()

	defer signal.Stop(reloadChan)

	srvErr := make(chan error, 1)
	go func() { srvErr <- srv.Start() }()

	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stopChan)

	select {
	case <-stopChan:
	case <-ctx.Done():
	case err := <-loopErr:
		log.Error().Err(err).Msg("pool host stopped unexpectedly")
	case err := <-srvErr:
		if err != nil {
			cancel()
			<-loop.Done()
			return fmt.Errorf("failed to start server: %v", err)
		}
	}
	log.Info().Msg("shutting down server...")

	if err := srv.Stop(); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}
	cancel()
	<-loop.Done()

	return nil
}

func serveMetrics(addr string, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Info().Str("address", addr).Msg("metrics endpoint started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics endpoint failed")
		}
	}()

	return srv
}
