package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gmkornilov/chess-puzzle-book/internal/dao"
	"github.com/gmkornilov/chess-puzzle-book/internal/scraper"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func init() {
	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Generate puzzles from the games on lichess TV",
		Long: `Follow the games featured on lichess TV, analyse every move and store
the mate puzzles found, until interrupted.

Examples:
  STORE_KIND=mongo puzzlebook watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := dao.OpenStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			watcher := scraper.NewFactory(cfg, store).CreateTvWatcher()
			err = watcher.Watch(ctx)
			log.Info().Int("puzzles", watcher.Found()).Msg("stopped watching")
			return err
		},
	}
	rootCmd.AddCommand(watchCmd)
}
