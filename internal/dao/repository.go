package dao

import (
	"errors"
	"math/rand"
	"sort"

	"github.com/gmkornilov/chess-puzzle-book/pkg/puzzle"
	"github.com/google/uuid"
)

// ratingWindow is how far a random pick may stray from the requested rating.
const ratingWindow = 100

var ErrNotFound = errors.New("not found")

type TrainingSet struct {
	ID              string   `json:"id" bson:"_id"`
	Name            string   `json:"name" bson:"name"`
	PuzzleIDs       []string `json:"puzzle_ids" bson:"puzzle_ids"`
	MinRating       int      `json:"min_rating" bson:"min_rating"`
	MaxRating       int      `json:"max_rating" bson:"max_rating"`
	Themes          []string `json:"themes,omitempty" bson:"themes,omitempty"`
	CurrentProgress int      `json:"current_progress" bson:"current_progress"`
	CyclesDone      int      `json:"cycles_done" bson:"cycles_done"`
}

type PuzzleRepository interface {
	InsertPuzzle(p puzzle.Puzzle) (puzzle.Puzzle, error)

	InsertAllPuzzles(puzzles []puzzle.Puzzle) error

	GetPuzzle(id string) (puzzle.Puzzle, error)

	ListPuzzles(limit int) ([]puzzle.Puzzle, error)

	GetRandomPuzzleForRating(rating int) (puzzle.Puzzle, error)

	// FindRandomPuzzles returns up to size puzzles rated within
	// [minRating, maxRating]. With themes given, a puzzle must carry at
	// least one of them.
	FindRandomPuzzles(size, minRating, maxRating int, themes []string) ([]puzzle.Puzzle, error)
}

type TrainingSetRepository interface {
	InsertTrainingSet(set TrainingSet) (TrainingSet, error)

	GetTrainingSet(id string) (TrainingSet, error)
}

// Store is a repository for both puzzles and training sets.
type Store interface {
	PuzzleRepository
	TrainingSetRepository
	Close() error
}

func withID(p puzzle.Puzzle) puzzle.Puzzle {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return p
}

func matches(p puzzle.Puzzle, minRating, maxRating int, themes []string) bool {
	if p.Rating < minRating || p.Rating > maxRating {
		return false
	}
	return len(themes) == 0 || p.HasTheme(themes...)
}

func pickRandom(candidates []puzzle.Puzzle, size int) []puzzle.Puzzle {
	rand.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	if len(candidates) > size {
		candidates = candidates[:size]
	}
	return candidates
}

func sortAndLimit(puzzles []puzzle.Puzzle, limit int) []puzzle.Puzzle {
	sort.Slice(puzzles, func(i, j int) bool {
		return puzzles[i].ID < puzzles[j].ID
	})
	if limit > 0 && len(puzzles) > limit {
		puzzles = puzzles[:limit]
	}
	return puzzles
}
