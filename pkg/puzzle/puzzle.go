package puzzle

import (
	"encoding/json"
	"fmt"
	"strings"
)

type Color string

const (
	White Color = "white"
	Black Color = "black"
)

func (c Color) Other() Color {
	if c == White {
		return Black
	}
	return White
}

type Move struct {
	From      string `json:"from" bson:"from"`
	To        string `json:"to" bson:"to"`
	Promotion string `json:"promotion,omitempty" bson:"promotion,omitempty"`
}

// ParseMove reads a move in UCI long algebraic form, e.g. "e2e4" or "e7e8q".
func ParseMove(s string) (Move, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != 4 && len(s) != 5 {
		return Move{}, fmt.Errorf("move %q: expected 4 or 5 characters", s)
	}
	m := Move{From: s[:2], To: s[2:4]}
	if !IsSquare(m.From) || !IsSquare(m.To) {
		return Move{}, fmt.Errorf("move %q: bad square", s)
	}
	if len(s) == 5 {
		if !strings.ContainsRune("qrbn", rune(s[4])) {
			return Move{}, fmt.Errorf("move %q: bad promotion piece", s)
		}
		m.Promotion = s[4:]
	}
	return m, nil
}

// ParseMoves reads a space separated list of UCI moves as found in the
// lichess puzzle export.
func ParseMoves(s string) ([]Move, error) {
	fields := strings.Fields(s)
	moves := make([]Move, 0, len(fields))
	for _, f := range fields {
		m, err := ParseMove(f)
		if err != nil {
			return nil, err
		}
		moves = append(moves, m)
	}
	return moves, nil
}

func (m Move) String() string {
	return m.From + m.To + m.Promotion
}

// Matches compares origin and destination only.
func (m Move) Matches(from, to string) bool {
	return m.From == from && m.To == to
}

type Puzzle struct {
	ID              string   `json:"id" bson:"_id"`
	FEN             string   `json:"fen" bson:"fen"`
	Moves           []Move   `json:"moves" bson:"moves"`
	Rating          int      `json:"rating" bson:"rating"`
	RatingDeviation int      `json:"rating_deviation,omitempty" bson:"rating_deviation,omitempty"`
	Popularity      int      `json:"popularity,omitempty" bson:"popularity,omitempty"`
	PlayCount       int      `json:"play_count,omitempty" bson:"play_count,omitempty"`
	Themes          []string `json:"themes,omitempty" bson:"themes,omitempty"`
	GameURL         string   `json:"game_url,omitempty" bson:"game_url,omitempty"`
	Source          string   `json:"source,omitempty" bson:"source,omitempty"`
}

func (p Puzzle) String() string {
	j, _ := json.MarshalIndent(p, "", "\t")
	return string(j)
}

// Validate checks the shape of the puzzle. Chess legality of the moves is
// left to the rules engine.
func (p Puzzle) Validate() error {
	if strings.TrimSpace(p.FEN) == "" {
		return fmt.Errorf("%w: empty position", ErrInvalidPuzzle)
	}
	if len(p.Moves) < 2 {
		return fmt.Errorf("%w: need a setup move and at least one move to find", ErrInvalidPuzzle)
	}
	for i, m := range p.Moves {
		if !IsSquare(m.From) || !IsSquare(m.To) {
			return fmt.Errorf("%w: move %d (%s) has a bad square", ErrInvalidPuzzle, i, m)
		}
	}
	return nil
}

// HasTheme reports whether the puzzle is tagged with any of themes.
func (p Puzzle) HasTheme(themes ...string) bool {
	for _, want := range themes {
		for _, t := range p.Themes {
			if t == want {
				return true
			}
		}
	}
	return false
}

// Sample is the puzzle shipped with the viewer: White's king takes on a5,
// Black checks with the bishop and wins the rook after the king steps out.
func Sample() Puzzle {
	return Puzzle{
		ID:  "sample",
		FEN: "3R4/8/K7/pB2b3/1p6/1P2k3/3p4/8 w - - 4 58",
		Moves: []Move{
			{From: "a6", To: "a5"},
			{From: "e5", To: "c7"},
			{From: "a5", To: "b4"},
			{From: "c7", To: "d8"},
		},
		Rating: 1500,
		Themes: []string{"endgame", "fork"},
		Source: "builtin",
	}
}
