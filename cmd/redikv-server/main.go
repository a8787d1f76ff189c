// Command redikv-server runs the RESP-compatible in-memory key/value
// engine: load config, wire the store/runtime/secret manager, then hand
// accepted connections to the single-threaded reactor. The bootstrap
// ordering is logger -> config -> tracing -> secret manager -> engine ->
// listen; the secret manager comes after config because it is built from
// the loaded config's vault block.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/blueberrycongee/redikv/internal/config"
	"github.com/blueberrycongee/redikv/internal/observability"
	"github.com/blueberrycongee/redikv/internal/runtime"
)

func nowMs() int64 { return time.Now().UnixMilli() }

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "config/config.yaml", "path to configuration file")
	flag.Parse()

	bootstrapLogger := observability.NewLogger(observability.LoggerConfig{
		Level:      slog.LevelInfo,
		JSONFormat: true,
	}, observability.NewRedactor())
	logger := bootstrapLogger.Slog()
	slog.SetDefault(logger)

	logger.Info("starting redikv-server")

	cfgManager, err := config.NewManager(*configPath, logger)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	defer func() { _ = cfgManager.Close() }()

	cfg := cfgManager.Get()

	loggerCfg := observability.LoggerConfig{
		JSONFormat: cfg.Logging.Format == "json",
	}
	if lvl, err := parseLevel(cfg.Logging.Level); err == nil {
		loggerCfg.Level = lvl
	}
	logger = observability.NewLogger(loggerCfg, observability.NewRedactor()).Slog()
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if watchErr := cfgManager.Watch(ctx); watchErr != nil {
		logger.Warn("config hot-reload disabled", "error", watchErr)
	}

	tracingCfg := observability.TracingConfig{
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
		ServiceName: cfg.Tracing.ServiceName,
		SampleRate:  cfg.Tracing.SampleRate,
		Insecure:    cfg.Tracing.Insecure,
	}
	tracerProvider, err := observability.InitTracing(ctx, tracingCfg)
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
	} else if cfg.Tracing.Enabled {
		logger.Info("tracing enabled", "endpoint", cfg.Tracing.Endpoint)
	}
	defer func() {
		if tracerProvider != nil {
			_ = tracerProvider.Shutdown(context.Background())
		}
	}()

	secretMgr := buildSecretManager(cfg, logger)

	st, rt, err := buildRuntime(ctx, cfg, secretMgr, logger)
	if err != nil {
		return fmt.Errorf("failed to build runtime: %w", err)
	}

	rx := newReactor(st, rt, logger)

	plainAddr := fmt.Sprintf("%s:%d", cfg.Server.Bind, cfg.Server.Port)
	plainLn, err := net.Listen("tcp", plainAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", plainAddr, err)
	}
	logger.Info("listening", "addr", plainAddr)
	go rx.listenAndAccept(plainLn)

	var tlsLn net.Listener
	if cfg.TLS.Port != 0 {
		candidate := runtime.TLSCandidateConfig{
			TLSPort:     cfg.TLS.Port,
			CertFile:    cfg.TLS.CertFile,
			KeyFile:     cfg.TLS.KeyFile,
			CAFile:      cfg.TLS.CAFile,
			Protocols:   cfg.TLS.Protocols,
			Ciphers:     cfg.TLS.Ciphers,
			AuthClients: runtime.ClientAuthMode(cfg.TLS.AuthClients),
		}
		tlsAddr := fmt.Sprintf("%s:%d", cfg.Server.Bind, cfg.TLS.Port)
		tlsLn, err = buildTLSListener(tlsAddr, candidate)
		if err != nil {
			return fmt.Errorf("failed to build tls listener on %s: %w", tlsAddr, err)
		}
		logger.Info("tls listening", "addr", tlsAddr)
		go rx.listenAndAcceptTLS(tlsLn)
	}

	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		metricsHandler := otelhttp.NewHandler(promhttp.Handler(), "metrics")
		mux.Handle(cfg.Metrics.Path, metricsHandler)
		metricsSrv = &http.Server{Addr: cfg.Metrics.Addr, Handler: mux}
		go func() {
			logger.Info("metrics listening", "addr", cfg.Metrics.Addr, "path", cfg.Metrics.Path)
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server failed", "error", err)
			}
		}()
	}

	go rx.run()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down redikv-server")

	rx.Stop()
	_ = plainLn.Close()
	if tlsLn != nil {
		_ = tlsLn.Close()
	}
	if metricsSrv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = metricsSrv.Shutdown(shutdownCtx)
		shutdownCancel()
	}

	logger.Info("redikv-server stopped")
	return nil
}

func parseLevel(level string) (slog.Level, error) {
	var l slog.Level
	err := l.UnmarshalText([]byte(level))
	return l, err
}
