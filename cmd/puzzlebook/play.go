package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gmkornilov/chess-puzzle-book/pkg/board"
	"github.com/gmkornilov/chess-puzzle-book/pkg/puzzle"
	"github.com/gmkornilov/chess-puzzle-book/pkg/rules"
	"github.com/spf13/cobra"
)

func init() {
	var flags puzzleFlags
	playCmd := &cobra.Command{
		Use:   "play",
		Short: "Solve a puzzle in the terminal",
		Long: `Solve a puzzle in the terminal. Type moves as square pairs.

Examples:
  puzzlebook play
  puzzlebook play --id 00sHx
  puzzlebook play --fen "8/P7/8/8/8/8/k7/4K3 w - - 0 1" --moves "a7a8 a2b2"

Type "hint" for the piece to move and "quit" to give up.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := flags.load()
			if err != nil {
				return err
			}
			return play(os.Stdin, cmd.OutOrStdout(), p)
		},
	}
	flags.register(playCmd)
	rootCmd.AddCommand(playCmd)
}

// play runs one puzzle against the commands read from in until it is
// solved, the input ends or the player quits.
func play(in io.Reader, out io.Writer, p puzzle.Puzzle) error {
	view := board.NewText(out)
	c, err := puzzle.NewController(p, rules.Factory, view,
		puzzle.WithResultHook(func(res puzzle.Result) {
			switch res.Outcome {
			case puzzle.Incorrect:
				fmt.Fprintf(out, "%s is not it, try again\n", res.Move)
			case puzzle.Correct:
				fmt.Fprintf(out, "%s is correct, opponent plays %s\n", res.Move, res.Reply)
			}
		}),
		puzzle.WithSolvedHook(func() {
			fmt.Fprintln(out, "Puzzle solved!")
		}),
	)
	if err != nil {
		return err
	}
	defer c.Close()

	scanner := bufio.NewScanner(in)
	for c.State() == puzzle.AwaitingMove {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.ToLower(strings.TrimSpace(scanner.Text()))
		switch line {
		case "":
			continue
		case "quit", "q":
			fmt.Fprintf(out, "Solution: %s\n", solution(p))
			return nil
		case "hint", "h":
			if sq, ok := c.Hint(); ok {
				fmt.Fprintf(out, "Move the piece on %s\n", sq)
			}
			continue
		}

		m, err := puzzle.ParseMove(strings.ReplaceAll(line, " ", ""))
		if err != nil {
			fmt.Fprintf(out, "can't read %q, type a move like e2e4\n", line)
			continue
		}
		if err := view.Play(m.From, m.To); err != nil {
			if errors.Is(err, board.ErrNotMovable) {
				fmt.Fprintf(out, "%s is not a legal move\n", m)
				continue
			}
			return err
		}
	}
	return nil
}

func solution(p puzzle.Puzzle) string {
	moves := make([]string, 0, len(p.Moves)-1)
	for _, m := range p.Moves[1:] {
		moves = append(moves, m.String())
	}
	return strings.Join(moves, " ")
}
