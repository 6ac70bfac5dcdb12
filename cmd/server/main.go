// cmd/server/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/ottawafunsports/ofsl/internal/api/leagues"
	"github.com/ottawafunsports/ofsl/internal/config"
	"github.com/ottawafunsports/ofsl/internal/db"
	"github.com/ottawafunsports/ofsl/internal/email"
	"github.com/ottawafunsports/ofsl/internal/ratelimit"
	"github.com/ottawafunsports/ofsl/internal/scheduler"
)

const shutdownTimeout = 30 * time.Second

func configPath() string {
	path := flag.String("config", "", "path to config.yaml")
	flag.Parse()
	if *path != "" {
		return *path
	}
	if env := os.Getenv("CONFIG_PATH"); env != "" {
		return env
	}
	return "config.yaml"
}

func setupLogger(environment string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	zerolog.DefaultContextLogger = &log.Logger
}

func main() {
	cfg, err := config.Load(configPath())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setupLogger(cfg.App.Environment)

	database, err := db.NewFromConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer database.Close()

	leagues.InitHandlers(database, cfg.Location())

	var sender email.EmailSender
	sesClient, err := email.NewSESClientFromConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create email client")
	}
	if sesClient != nil {
		sender = sesClient
	}
	limits := ratelimit.DefaultConfig()
	limits.TrustProxy = cfg.App.TrustProxy
	limiter := ratelimit.New(limits)
	leagues.InitDigest(sender, cfg.App.BaseURL, limiter)

	if err := scheduler.Init(cfg.Location()); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize scheduler")
	}
	if err := scheduler.RegisterScheduleJobs(database, sender, cfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to register schedule jobs")
	}
	if err := scheduler.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start scheduler")
	}

	server := newServer(cfg, limiter)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Int("port", cfg.App.Port).Str("timezone", cfg.App.Timezone).Msg("Starting server")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		log.Info().Msg("Shutting down server")
		if err := scheduler.Stop(); err != nil {
			log.Error().Err(err).Msg("Failed to stop scheduler")
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server terminated with error")
		os.Exit(1)
	}
}
