package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/gmkornilov/chess-puzzle-book/internal/config"
	"github.com/gmkornilov/chess-puzzle-book/internal/dao"
	"github.com/gmkornilov/chess-puzzle-book/pkg/puzzle"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var cfg *config.Configuration

var rootCmd = &cobra.Command{
	Use:           "puzzlebook",
	Short:         "Solve, render, import and generate chess puzzles",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.InitConfig()
		if err != nil {
			return fmt.Errorf("reading configuration: %w", err)
		}
		config.SetupLogging(cfg)
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		return nil
	},
}

// puzzleFlags selects a puzzle: explicit FEN and moves, a stored id, or the
// built-in sample.
type puzzleFlags struct {
	id    string
	fen   string
	moves string
}

func (f *puzzleFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.id, "id", "", "Id of a stored puzzle")
	cmd.Flags().StringVar(&f.fen, "fen", "", "Starting position of an ad hoc puzzle")
	cmd.Flags().StringVar(&f.moves, "moves", "", "UCI moves of an ad hoc puzzle, setup move first (e.g. \"a6a5 e5c7\")")
}

func (f *puzzleFlags) load() (puzzle.Puzzle, error) {
	switch {
	case f.fen != "":
		moves, err := puzzle.ParseMoves(strings.ReplaceAll(f.moves, ",", " "))
		if err != nil {
			return puzzle.Puzzle{}, err
		}
		return puzzle.Puzzle{ID: "adhoc", FEN: f.fen, Moves: moves}, nil
	case f.id != "":
		store, err := dao.OpenStore(cfg)
		if err != nil {
			return puzzle.Puzzle{}, err
		}
		defer store.Close()
		return store.GetPuzzle(f.id)
	}
	return puzzle.Sample(), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("puzzlebook failed")
	}
}
