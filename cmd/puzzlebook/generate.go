package main

import (
	"fmt"
	"os"

	"github.com/gmkornilov/chess-puzzle-book/internal/dao"
	"github.com/gmkornilov/chess-puzzle-book/pkg/puzgen"
	"github.com/spf13/cobra"
)

func init() {
	var save bool
	generateCmd := &cobra.Command{
		Use:   "generate <pgn>",
		Short: "Generate mate puzzles from the games of a PGN file",
		Long: `Run every game of a PGN file through the engine at STOCKFISH_PATH and
print the mate puzzles found.

Examples:
  puzzlebook generate games.pgn
  STORE_KIND=badger puzzlebook generate --save games.pgn`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			engine, err := puzgen.SetupEngine(cfg.Stockfish.Path, cfg.Stockfish.Args...)
			if err != nil {
				return fmt.Errorf("starting %s: %w", cfg.Stockfish.Path, err)
			}
			defer engine.Close()

			puzzles, err := puzgen.NewGenerator(engine, cfg.Stockfish.Depth).AnalyzeAllGames(f)
			if err != nil {
				return err
			}
			for _, p := range puzzles {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n", p)
			}

			if !save || len(puzzles) == 0 {
				return nil
			}
			store, err := dao.OpenStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()
			return store.InsertAllPuzzles(puzzles)
		},
	}
	generateCmd.Flags().BoolVar(&save, "save", false, "Store the puzzles found")
	rootCmd.AddCommand(generateCmd)
}
