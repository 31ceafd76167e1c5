package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goliatone/go-storefront/internal/config"
	"github.com/goliatone/go-storefront/internal/logging"
	"github.com/goliatone/go-storefront/internal/server"
	"github.com/goliatone/go-storefront/pkg/di"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run returns the process exit code. Deferred cleanup runs before main exits.
func run(args []string) int {
	flags := flag.NewFlagSet("storefront", flag.ContinueOnError)
	var (
		configFile = flags.String("config", "", "path to configuration file (yaml, json or toml)")
		envPrefix  = flags.String("env-prefix", config.DefaultEnvPrefix, "environment variable prefix")
	)
	if err := flags.Parse(args); err != nil {
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var files []string
	if *configFile != "" {
		files = append(files, *configFile)
	}
	cfg, err := config.NewLoader(*envPrefix, files...).Load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		return 1
	}

	logger, err := logging.New(cfg.Server.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to configure logger: %v\n", err)
		return 1
	}

	container, err := di.NewContainer(ctx, cfg, di.WithLogger(logger))
	if err != nil {
		logger.Error("unable to build storefront", slog.Any("error", err))
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := container.Close(shutdownCtx); err != nil {
			logger.Error("shutdown failed", slog.Any("error", err))
		}
	}()

	srv, err := server.New(cfg.Server.Listen, logger, container.Handler())
	if err != nil {
		logger.Error("unable to construct server", slog.Any("error", err))
		return 1
	}

	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server terminated unexpectedly", slog.Any("error", err))
		return 1
	}

	logger.Info("server shutdown complete")
	return 0
}
