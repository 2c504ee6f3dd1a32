package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/movieshelf/internal/client/cli"
	"github.com/dmitrijs2005/movieshelf/internal/client/client"
	"github.com/dmitrijs2005/movieshelf/internal/client/config"
	"github.com/dmitrijs2005/movieshelf/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/movieshelf/internal/client/services"
	"github.com/dmitrijs2005/movieshelf/internal/logging"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	// stderr keeps log records out of the REPL transcript
	logger := logging.NewTextLogger(os.Stderr, logging.ParseLevel(cfg.LogLevel, slog.LevelWarn))

	db, err := client.InitDatabase(ctx, cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("error initializing database: %w", err)
	}
	defer db.Close()

	remote, err := client.NewRemoteStoreClient(cfg.ServerEndpointAddr, cfg.RequestTimeout)
	if err != nil {
		return err
	}
	defer remote.Close()

	tokens := metadata.NewTokenStore(metadata.NewSQLiteRepository(db))
	session := services.NewSessionManager(remote, tokens, logger)
	trending := services.NewTrendingAggregator(remote, session, logger, services.TrendingOptions{
		Collection:    cfg.MetricsCollection,
		PosterBaseURL: cfg.PosterBaseURL,
		Attempts:      cfg.IncrementAttempts,
	})
	saved := services.NewSavedMovieStore(remote, session, logger, services.SavedOptions{
		Collection:    cfg.SavedCollection,
		PosterBaseURL: cfg.PosterBaseURL,
	})

	if _, err := session.Resolve(ctx); err != nil {
		fmt.Fprintln(os.Stdout, cli.Describe("session restore", err))
	}

	app := cli.NewApp(session, trending, saved, logger, cli.Options{TrendingLimit: cfg.TrendingLimit}, os.Stdin, os.Stdout)
	app.Run(ctx)
	return nil
}
