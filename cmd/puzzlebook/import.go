package main

import (
	"fmt"
	"os"

	"github.com/gmkornilov/chess-puzzle-book/internal/dao"
	"github.com/gmkornilov/chess-puzzle-book/internal/importer"
	"github.com/gmkornilov/chess-puzzle-book/internal/trainer"
	"github.com/spf13/cobra"
)

func init() {
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Import puzzles into the configured store",
	}
	lichessCmd := &cobra.Command{
		Use:   "lichess <csv>",
		Short: "Import the lichess puzzle database export",
		Long: `Import the lichess puzzle database export (lichess_db_puzzle.csv)
into the store chosen by STORE_KIND. Rows that don't parse are skipped.

Examples:
  STORE_KIND=badger puzzlebook import lichess lichess_db_puzzle.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			store, err := dao.OpenStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			report, err := importer.ImportLichess(f, trainer.NewService(store, store))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d puzzles, skipped %d\n", report.Imported, report.Skipped)
			return nil
		},
	}
	importCmd.AddCommand(lichessCmd)
	rootCmd.AddCommand(importCmd)
}
