// Package main provides the entry point for wirekv-server.
//
// wirekv-server is a small in-memory key/value server speaking a
// RESP-style wire protocol over TCP.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/yndnr/wirekv-go/internal/infra/confloader"
	"github.com/yndnr/wirekv-go/internal/infra/shutdown"
	"github.com/yndnr/wirekv-go/internal/keyspace"
	"github.com/yndnr/wirekv-go/internal/server"
	"github.com/yndnr/wirekv-go/internal/server/config"
	"github.com/yndnr/wirekv-go/internal/telemetry/logger"
	"github.com/yndnr/wirekv-go/internal/telemetry/metric"
)

// Build information, set via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("wirekv-server %s (commit: %s, built: %s)\n", version, commit, buildTime)
		return nil
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := initLogger(cfg)

	log.Info("starting wirekv-server",
		"version", version,
		"commit", commit,
		"config", *configFile)

	store := keyspace.New()

	srv := server.New(&server.Config{
		Addr:        cfg.Server.Addr,
		Decoder:     cfg.Server.Decoder,
		LegacyAbort: cfg.Server.LegacyAbort,
		RateLimit:   cfg.Server.RateLimit,
	}, store, log)

	shutdownHandler := shutdown.NewHandler(30 * time.Second)

	ctx := context.Background()
	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("start server: %w", err)
	}

	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down server")
		return srv.Shutdown(ctx)
	})

	if cfg.Metrics.Enabled {
		metric.Register(metric.NewCollector(store, srv))
		metricsServer := metric.StartHTTPServer(cfg.Metrics.Addr, log)
		shutdownHandler.OnShutdown(func(ctx context.Context) error {
			metric.ShutdownHTTPServer(ctx, metricsServer, log)
			return nil
		})
	}

	// Watch the config file so log level changes apply without a restart.
	if *configFile != "" {
		watcher, err := startConfigWatcher(*configFile, log)
		if err != nil {
			log.Warn("config watcher disabled", "error", err)
		} else {
			shutdownHandler.OnShutdown(func(ctx context.Context) error {
				return watcher.Stop()
			})
		}
	}

	log.Info("server started, press Ctrl+C to stop")
	if err := shutdownHandler.Wait(); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig loads configuration from file and environment.
func loadConfig(configFile string) (*config.ServerConfig, error) {
	cfg := config.Default()

	opts := []confloader.Option{}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}

	loader := confloader.NewLoader(opts...)
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// initLogger initializes the structured logger and sets it as default.
func initLogger(cfg *config.ServerConfig) *slog.Logger {
	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	slog.SetDefault(log)
	return log
}

// startConfigWatcher re-reads the config file on change and applies the
// log level.
func startConfigWatcher(configFile string, log *slog.Logger) (*confloader.Watcher, error) {
	watcher, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}

	if err := watcher.Watch(configFile); err != nil {
		_ = watcher.Stop()
		return nil, err
	}

	watcher.OnChange(func(string) {
		cfg, err := loadConfig(configFile)
		if err != nil {
			log.Warn("config reload failed", "error", err)
			return
		}
		logger.SetLevel(cfg.Log.Level)
		log.Info("log level updated", "level", logger.GetLevel())
	})

	watcher.StartAsync()
	return watcher, nil
}
