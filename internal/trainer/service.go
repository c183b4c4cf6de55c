package trainer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gmkornilov/chess-puzzle-book/internal/dao"
	"github.com/gmkornilov/chess-puzzle-book/pkg/puzzle"
)

const (
	MaxSetNameLength = 100
	MinSetSize       = 5
	MaxSetSize       = 1000

	minPopularity = -100
	maxPopularity = 100
)

var (
	ErrEmptyName     = errors.New("set name can't be blank")
	ErrNameTooLong   = fmt.Errorf("set name length can't exceed %d", MaxSetNameLength)
	ErrSetTooSmall   = fmt.Errorf("set size must be at least %d", MinSetSize)
	ErrSetTooLarge   = fmt.Errorf("set size can't exceed %d", MaxSetSize)
	ErrCriteriaUnmet = errors.New("not enough puzzles meet the criteria given")
	ErrBadPuzzle     = errors.New("puzzle rejected")
)

type SetOptions struct {
	Name      string   `json:"name"`
	Size      int      `json:"size"`
	MinRating int      `json:"min_rating"`
	MaxRating int      `json:"max_rating"`
	Themes    []string `json:"themes,omitempty"`
}

type Service struct {
	puzzles dao.PuzzleRepository
	sets    dao.TrainingSetRepository
}

func NewService(puzzles dao.PuzzleRepository, sets dao.TrainingSetRepository) *Service {
	return &Service{puzzles: puzzles, sets: sets}
}

func (s *Service) ImportPuzzle(p puzzle.Puzzle) (puzzle.Puzzle, error) {
	if p.Popularity < minPopularity || p.Popularity > maxPopularity {
		return puzzle.Puzzle{}, fmt.Errorf("%w: puzzle %s: popularity %d is out of range [%d, %d]",
			ErrBadPuzzle, p.ID, p.Popularity, minPopularity, maxPopularity)
	}
	if err := p.Validate(); err != nil {
		return puzzle.Puzzle{}, fmt.Errorf("%w: puzzle %s: %v", ErrBadPuzzle, p.ID, err)
	}
	return s.puzzles.InsertPuzzle(p)
}

func (s *Service) ListPuzzles(limit int) ([]puzzle.Puzzle, error) {
	return s.puzzles.ListPuzzles(limit)
}

func (s *Service) GetPuzzle(id string) (puzzle.Puzzle, error) {
	return s.puzzles.GetPuzzle(id)
}

func (s *Service) RandomPuzzle(rating int) (puzzle.Puzzle, error) {
	return s.puzzles.GetRandomPuzzleForRating(rating)
}

// CreateSet picks opts.Size random puzzles matching the options and stores
// them as a new training set. No themes means a mix of everything.
func (s *Service) CreateSet(opts SetOptions) (dao.TrainingSet, error) {
	name := strings.TrimSpace(opts.Name)
	switch {
	case name == "":
		return dao.TrainingSet{}, ErrEmptyName
	case len(name) > MaxSetNameLength:
		return dao.TrainingSet{}, ErrNameTooLong
	case opts.Size < MinSetSize:
		return dao.TrainingSet{}, ErrSetTooSmall
	case opts.Size > MaxSetSize:
		return dao.TrainingSet{}, ErrSetTooLarge
	}
	if opts.MaxRating == 0 {
		opts.MaxRating = 4000
	}

	found, err := s.puzzles.FindRandomPuzzles(opts.Size, opts.MinRating, opts.MaxRating, opts.Themes)
	if err != nil {
		return dao.TrainingSet{}, fmt.Errorf("find puzzles: %w", err)
	}
	if len(found) != opts.Size {
		return dao.TrainingSet{}, ErrCriteriaUnmet
	}

	ids := make([]string, 0, len(found))
	for _, p := range found {
		ids = append(ids, p.ID)
	}
	set, err := s.sets.InsertTrainingSet(dao.TrainingSet{
		Name:      name,
		PuzzleIDs: ids,
		MinRating: opts.MinRating,
		MaxRating: opts.MaxRating,
		Themes:    opts.Themes,
	})
	if err != nil {
		return dao.TrainingSet{}, fmt.Errorf("store training set: %w", err)
	}
	return set, nil
}

func (s *Service) GetSet(id string) (dao.TrainingSet, error) {
	return s.sets.GetTrainingSet(id)
}
