// Command nobel-proxy serves the Nobel prize read-through cache over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/Sternrassler/nobel-prize-cache/internal/app"
	"github.com/Sternrassler/nobel-prize-cache/pkg/api"
	"github.com/Sternrassler/nobel-prize-cache/pkg/config"
	"github.com/Sternrassler/nobel-prize-cache/pkg/logging"
)

const version = "1.0.0"

// flagKeys maps command line flags onto config keys.
var flagKeys = map[string]string{
	"addr":          "addr",
	"api-base-url":  "api_base_url",
	"cache-backend": "cache_backend",
	"cache-ttl":     "cache_ttl",
	"redis-addr":    "redis_addr",
	"static-dir":    "static_dir",
	"coalesce":      "coalesce",
	"logLevel":      "log_level",
	"log-pretty":    "log_pretty",
}

func main() {
	cliApp := newApp()
	if err := cliApp.Run(os.Args); err != nil {
		log.Error().Err(err).Msg("nobel-proxy failed")
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "nobel-proxy",
		Usage:   "read-through cache and normalization layer for the Nobel Prize API",
		Version: version,
		Action:  runServer,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "YAML or JSON config file"},
			&cli.StringFlag{Name: "addr", Usage: "HTTP listen address"},
			&cli.StringFlag{Name: "api-base-url", Usage: "upstream API root"},
			&cli.StringFlag{Name: "cache-backend", Usage: "memory, lru or redis"},
			&cli.DurationFlag{Name: "cache-ttl", Usage: "time-to-live of cached queries"},
			&cli.StringFlag{Name: "redis-addr", Usage: "Redis address for the redis backend"},
			&cli.StringFlag{Name: "static-dir", Usage: "directory served at /"},
			&cli.BoolFlag{Name: "coalesce", Usage: "merge concurrent misses for one query"},
			&cli.StringFlag{Name: "logLevel", Aliases: []string{"log-level"}, Usage: "debug, info, warn or error"},
			&cli.BoolFlag{Name: "log-pretty", Usage: "human-readable console logs"},
		},
	}
}

func runServer(cctx *cli.Context) error {
	cfg, err := config.Load(cctx.Context, cctx.String("config"), app.FlagOverrides(cctx, flagKeys))
	if err != nil {
		return err
	}

	logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.LogLevel),
		Pretty: cfg.LogPretty,
		Output: os.Stderr,
	})

	ctx, stop := signal.NotifyContext(cctx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(a, cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", cfg.Addr).
			Str("api_base_url", cfg.APIBaseURL).
			Msg("Starting nobel-proxy")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err = <-errCh:
	case <-ctx.Done():
		log.Info().Msg("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var errs []error
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		errs = append(errs, fmt.Errorf("serve: %w", err))
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown: %w", err))
	}
	if err := a.Close(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("close: %w", err))
	}
	return errors.Join(errs...)
}

func newHandler(a *app.App, cfg config.Config) http.Handler {
	return api.NewServer(a.Service, api.Options{
		Version:   version,
		StaticDir: cfg.StaticDir,
	}).Handler()
}
