// Package main is the entry point for the breeder HTTP service. It serves the
// breeding-outcome engine, stored rollers and odds templates, and runs the
// background maintenance jobs.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/breeder/internal/config"
	"github.com/aristath/breeder/internal/di"
	"github.com/aristath/breeder/internal/dictionary"
	"github.com/aristath/breeder/internal/server"
	"github.com/aristath/breeder/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
	})
	logger.SetGlobalLogger(log)

	log.Info().Str("data_dir", cfg.DataDir).Msg("Starting breeder")

	container, err := di.Wire(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer container.Close()

	if err := seedDefaults(container, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed defaults")
	}

	srv := server.New(server.Config{
		Log:       log,
		Container: container,
		DataDir:   cfg.DataDir,
		Port:      cfg.Port,
		DevMode:   cfg.DevMode,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	container.Scheduler.Start()

	log.Info().Int("port", cfg.Port).Msg("Breeder is running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info().Str("signal", sig.String()).Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server forced to shutdown")
	}
	container.Scheduler.Stop()

	log.Info().Msg("Breeder stopped")
}

// seedDefaults stores the default odds templates and the core roller. The core
// dictionary comes from DICTIONARY_PATH when set, the embedded one otherwise.
func seedDefaults(container *di.Container, cfg *config.Config, log zerolog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := container.OddsService.SeedDefaults(ctx); err != nil {
		return err
	}

	doc := dictionary.Default()
	if cfg.DictionaryPath != "" {
		loaded, err := dictionary.Load(cfg.DictionaryPath)
		if err != nil {
			return err
		}
		doc = loaded
	}

	roller, err := container.RollersService.SeedDefaults(ctx, doc)
	if err != nil {
		return err
	}
	log.Info().Str("slug", roller.Slug).Int("genes", len(roller.Dictionary)).Msg("Core roller ready")
	return nil
}
