package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hookdeps/internal/core/app"
	"hookdeps/internal/core/config"
	"hookdeps/internal/shared/observability"
	"hookdeps/internal/ui/cli"
)

var (
	configPath = flag.String("config", "./hookdeps.toml", "Path to config file")
	once       = flag.Bool("once", false, "Run single scan and exit")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	version    = flag.Bool("version", false, "Print version and exit")
)

const VERSION = "1.0.0"

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("hookdeps v%s\n", VERSION)
		os.Exit(0)
	}

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		if *configPath == "./hookdeps.toml" && os.IsNotExist(err) {
			cfg = config.Default()
		} else {
			slog.Error("failed to load config", "error", err)
			os.Exit(1)
		}
	}

	if flag.NArg() > 0 {
		cfg.ScanPaths = flag.Args()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.SetupTracing(ctx, cfg.Tracing.Endpoint)
	if err != nil {
		slog.Error("failed to set up tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			slog.Warn("failed to shut down tracing", "error", err)
		}
	}()

	a, err := app.New(cfg, logger)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	var obsServer *cli.ObservabilityServer
	if cfg.Metrics.Enabled {
		obsServer = cli.NewObservabilityServer(cfg.Metrics.Addr, app.NewHealthService(a), a.Store)
		if err := obsServer.Start(ctx); err != nil {
			slog.Error("failed to start observability server", "error", err)
			os.Exit(1)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := obsServer.Stop(shutdownCtx); err != nil {
				slog.Warn("failed to stop observability server", "error", err)
			}
		}()
	}

	summary, err := a.RunOnce(ctx)
	if err != nil {
		slog.Error("initial scan failed", "error", err)
		os.Exit(1)
	}

	if *once {
		if summary.Diagnostics > 0 {
			os.Exit(1)
		}
		return
	}

	if err := a.StartWatcher(ctx); err != nil {
		slog.Error("failed to start watcher", "error", err)
		os.Exit(1)
	}

	<-ctx.Done()
	slog.Info("shutting down")
}
