package trainer

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/gmkornilov/chess-puzzle-book/internal/dao"
	"github.com/gmkornilov/chess-puzzle-book/pkg/puzzle"
)

type failingSets struct{}

func (failingSets) InsertTrainingSet(dao.TrainingSet) (dao.TrainingSet, error) {
	return dao.TrainingSet{}, errors.New("disk full")
}

func (failingSets) GetTrainingSet(string) (dao.TrainingSet, error) {
	return dao.TrainingSet{}, dao.ErrNotFound
}

func newService(t *testing.T, puzzles int) *Service {
	t.Helper()
	store := dao.NewMemoryStore()
	for i := 0; i < puzzles; i++ {
		p := puzzle.Sample()
		p.ID = fmt.Sprintf("p%02d", i)
		p.Rating = 1500 + i
		if _, err := store.InsertPuzzle(p); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return NewService(store, store)
}

func TestImportPuzzle(t *testing.T) {
	s := newService(t, 0)
	p := puzzle.Sample()
	p.ID = "lichess-1"
	p.Popularity = 50

	got, err := s.ImportPuzzle(p)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if got.ID != "lichess-1" {
		t.Fatalf("id = %q", got.ID)
	}
	stored, err := s.GetPuzzle("lichess-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Popularity != 50 || stored.FEN != p.FEN {
		t.Fatalf("stored = %+v", stored)
	}
}

func TestImportPuzzleRejects(t *testing.T) {
	s := newService(t, 0)
	tests := []struct {
		name   string
		mutate func(*puzzle.Puzzle)
	}{
		{"popularity too low", func(p *puzzle.Puzzle) { p.Popularity = -101 }},
		{"popularity too high", func(p *puzzle.Puzzle) { p.Popularity = 101 }},
		{"no moves", func(p *puzzle.Puzzle) { p.Moves = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := puzzle.Sample()
			tt.mutate(&p)
			if _, err := s.ImportPuzzle(p); !errors.Is(err, ErrBadPuzzle) {
				t.Fatalf("err = %v, want ErrBadPuzzle", err)
			}
		})
	}
}

func TestCreateSet(t *testing.T) {
	s := newService(t, 10)
	set, err := s.CreateSet(SetOptions{Name: "My training set", Size: 10, MinRating: 1500, MaxRating: 1600})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if set.ID == "" || set.Name != "My training set" || len(set.PuzzleIDs) != 10 {
		t.Fatalf("set = %+v", set)
	}
	if set.CurrentProgress != 0 || set.CyclesDone != 0 {
		t.Fatalf("fresh set has progress: %+v", set)
	}
	stored, err := s.GetSet(set.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(stored.PuzzleIDs) != 10 {
		t.Fatalf("stored = %+v", stored)
	}
}

func TestCreateSetValidation(t *testing.T) {
	s := newService(t, 10)
	tests := []struct {
		name string
		opts SetOptions
		want error
	}{
		{"empty name", SetOptions{Name: "", Size: 10}, ErrEmptyName},
		{"blank name", SetOptions{Name: "   ", Size: 10}, ErrEmptyName},
		{"name too long", SetOptions{Name: strings.Repeat("a", 101), Size: 10}, ErrNameTooLong},
		{"size too small", SetOptions{Name: "set", Size: 4}, ErrSetTooSmall},
		{"size too large", SetOptions{Name: "set", Size: 1001}, ErrSetTooLarge},
		{"criteria unmet", SetOptions{Name: "set", Size: 20}, ErrCriteriaUnmet},
		{"themes unmet", SetOptions{Name: "set", Size: 5, Themes: []string{"smotheredMate"}}, ErrCriteriaUnmet},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.CreateSet(tt.opts); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCreateSetRepositoryError(t *testing.T) {
	store := dao.NewMemoryStore()
	for i := 0; i < 5; i++ {
		p := puzzle.Sample()
		p.ID = fmt.Sprintf("p%d", i)
		store.InsertPuzzle(p)
	}
	s := NewService(store, failingSets{})
	if _, err := s.CreateSet(SetOptions{Name: "set", Size: 5}); err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("err = %v", err)
	}
}
