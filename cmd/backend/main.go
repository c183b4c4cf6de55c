package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gmkornilov/chess-puzzle-book/internal/api"
	"github.com/gmkornilov/chess-puzzle-book/internal/config"
	"github.com/gmkornilov/chess-puzzle-book/internal/dao"
	"github.com/gmkornilov/chess-puzzle-book/internal/scraper"
	"github.com/gmkornilov/chess-puzzle-book/internal/trainer"
	"github.com/gmkornilov/chess-puzzle-book/pkg/puzzle"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read configuration")
	}
	config.SetupLogging(cfg)

	store, err := dao.OpenStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	defer store.Close()

	if cfg.Store.Kind == config.StoreMemory {
		if _, err := store.InsertPuzzle(puzzle.Sample()); err != nil {
			log.Fatal().Err(err).Msg("failed to seed the memory store")
		}
	}

	service := trainer.NewService(store, store)
	router := api.NewRouter(
		api.NewPuzzleApi(service),
		api.NewSessionApi(service, cfg.Board.ImageSize, cfg.Session.IdleTimeout),
		api.NewJobApi(scraper.NewFactory(cfg, store)),
	)
	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", cfg.Addr()).Str("store", cfg.Store.Kind).Msg("starting backend")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server exited")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
	log.Info().Msg("backend stopped")
}
