package main

import (
	"fmt"
	"os"

	"github.com/gmkornilov/chess-puzzle-book/pkg/board"
	"github.com/gmkornilov/chess-puzzle-book/pkg/puzzle"
	"github.com/gmkornilov/chess-puzzle-book/pkg/rules"
	"github.com/spf13/cobra"
)

func init() {
	var (
		flags  puzzleFlags
		output string
		size   int
	)
	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "Draw a puzzle's starting position as PNG",
		Long: `Draw the position the solver faces, after the setup move, as PNG.

Examples:
  puzzlebook render -o sample.png
  puzzlebook render --id 00sHx --size 800 -o puzzle.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := flags.load()
			if err != nil {
				return err
			}
			if size == 0 {
				size = cfg.Board.ImageSize
			}
			return renderPuzzle(p, output, size)
		},
	}
	flags.register(renderCmd)
	renderCmd.Flags().StringVarP(&output, "output", "o", "puzzle.png", "Output file")
	renderCmd.Flags().IntVar(&size, "size", 0, "Image size in pixels (default BOARD_IMAGE_SIZE)")
	rootCmd.AddCommand(renderCmd)
}

func renderPuzzle(p puzzle.Puzzle, output string, size int) error {
	view := board.NewMirror()
	c, err := puzzle.NewController(p, rules.Factory, view)
	if err != nil {
		return err
	}
	defer c.Close()

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", output, err)
	}
	if err := board.EncodePNG(f, view.Snapshot(), size); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
