package dao

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gmkornilov/chess-puzzle-book/internal/config"
	"github.com/gmkornilov/chess-puzzle-book/pkg/puzzle"
)

func samplePuzzle(id string, rating int, themes ...string) puzzle.Puzzle {
	p := puzzle.Sample()
	p.ID = id
	p.Rating = rating
	p.Themes = themes
	return p
}

func openStores(t *testing.T) map[string]Store {
	t.Helper()
	b, err := NewBadgerStore("")
	if err != nil {
		t.Fatalf("open badger: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	return map[string]Store{
		"memory": NewMemoryStore(),
		"badger": b,
	}
}

func TestPuzzleRoundTrip(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			stored, err := s.InsertPuzzle(samplePuzzle("", 1500, "fork"))
			if err != nil {
				t.Fatalf("insert: %v", err)
			}
			if stored.ID == "" {
				t.Fatal("no id assigned")
			}
			got, err := s.GetPuzzle(stored.ID)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if got.FEN != stored.FEN || len(got.Moves) != 4 || got.Moves[1].String() != "e5c7" {
				t.Fatalf("got %+v", got)
			}
			if _, err := s.GetPuzzle("missing"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("missing puzzle: err = %v", err)
			}
		})
	}
}

func TestListPuzzles(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			var batch []puzzle.Puzzle
			for i := 0; i < 5; i++ {
				batch = append(batch, samplePuzzle(fmt.Sprintf("p%d", i), 1500))
			}
			if err := s.InsertAllPuzzles(batch); err != nil {
				t.Fatalf("insert all: %v", err)
			}
			all, err := s.ListPuzzles(0)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(all) != 5 || all[0].ID != "p0" || all[4].ID != "p4" {
				t.Fatalf("list = %v", ids(all))
			}
			some, err := s.ListPuzzles(2)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(some) != 2 {
				t.Fatalf("limit ignored: %v", ids(some))
			}
		})
	}
}

func TestRandomPuzzles(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			err := s.InsertAllPuzzles([]puzzle.Puzzle{
				samplePuzzle("low", 900, "mate"),
				samplePuzzle("mid", 1480, "fork"),
				samplePuzzle("high", 2100, "mate", "mateIn2"),
			})
			if err != nil {
				t.Fatalf("insert: %v", err)
			}

			p, err := s.GetRandomPuzzleForRating(1500)
			if err != nil {
				t.Fatalf("random: %v", err)
			}
			if p.ID != "mid" {
				t.Fatalf("random near 1500 = %s", p.ID)
			}
			if _, err := s.GetRandomPuzzleForRating(3000); !errors.Is(err, ErrNotFound) {
				t.Fatalf("random near 3000: err = %v", err)
			}

			found, err := s.FindRandomPuzzles(10, 0, 3000, []string{"mate"})
			if err != nil {
				t.Fatalf("find: %v", err)
			}
			if len(found) != 2 {
				t.Fatalf("mate puzzles = %v", ids(found))
			}
			found, err = s.FindRandomPuzzles(1, 0, 3000, nil)
			if err != nil {
				t.Fatalf("find: %v", err)
			}
			if len(found) != 1 {
				t.Fatalf("size ignored: %v", ids(found))
			}
		})
	}
}

func TestTrainingSets(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			set, err := s.InsertTrainingSet(TrainingSet{Name: "endgames", PuzzleIDs: []string{"a", "b"}, MaxRating: 2000})
			if err != nil {
				t.Fatalf("insert: %v", err)
			}
			got, err := s.GetTrainingSet(set.ID)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if got.Name != "endgames" || len(got.PuzzleIDs) != 2 {
				t.Fatalf("got %+v", got)
			}
			if _, err := s.GetTrainingSet("missing"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("missing set: err = %v", err)
			}
		})
	}
}

func ids(puzzles []puzzle.Puzzle) []string {
	res := make([]string, 0, len(puzzles))
	for _, p := range puzzles {
		res = append(res, p.ID)
	}
	return res
}

func TestOpenStore(t *testing.T) {
	cfg := &config.Configuration{}
	cfg.Store.Kind = config.StoreMemory
	s, err := OpenStore(cfg)
	if err != nil {
		t.Fatalf("memory: %v", err)
	}
	_ = s.Close()

	cfg.Store.Kind = config.StoreBadger
	cfg.Badger.Dir = ""
	s, err = OpenStore(cfg)
	if err != nil {
		t.Fatalf("badger: %v", err)
	}
	_ = s.Close()

	cfg.Store.Kind = "postgres"
	if _, err := OpenStore(cfg); err == nil {
		t.Fatal("expected an error for an unknown store kind")
	}
}
