package dao

import (
	"fmt"
	"sync"

	"github.com/gmkornilov/chess-puzzle-book/pkg/puzzle"
	"github.com/google/uuid"
)

type memoryStore struct {
	mu      sync.RWMutex
	puzzles map[string]puzzle.Puzzle
	sets    map[string]TrainingSet
}

func NewMemoryStore() Store {
	return &memoryStore{
		puzzles: make(map[string]puzzle.Puzzle),
		sets:    make(map[string]TrainingSet),
	}
}

func (m *memoryStore) InsertPuzzle(p puzzle.Puzzle) (puzzle.Puzzle, error) {
	p = withID(p)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puzzles[p.ID] = p
	return p, nil
}

func (m *memoryStore) InsertAllPuzzles(puzzles []puzzle.Puzzle) error {
	for _, p := range puzzles {
		if _, err := m.InsertPuzzle(p); err != nil {
			return err
		}
	}
	return nil
}

func (m *memoryStore) GetPuzzle(id string) (puzzle.Puzzle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.puzzles[id]
	if !ok {
		return puzzle.Puzzle{}, fmt.Errorf("puzzle %s: %w", id, ErrNotFound)
	}
	return p, nil
}

func (m *memoryStore) ListPuzzles(limit int) ([]puzzle.Puzzle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]puzzle.Puzzle, 0, len(m.puzzles))
	for _, p := range m.puzzles {
		res = append(res, p)
	}
	return sortAndLimit(res, limit), nil
}

func (m *memoryStore) GetRandomPuzzleForRating(rating int) (puzzle.Puzzle, error) {
	found, err := m.FindRandomPuzzles(1, rating-ratingWindow, rating+ratingWindow, nil)
	if err != nil {
		return puzzle.Puzzle{}, err
	}
	if len(found) == 0 {
		return puzzle.Puzzle{}, fmt.Errorf("puzzle rated near %d: %w", rating, ErrNotFound)
	}
	return found[0], nil
}

func (m *memoryStore) FindRandomPuzzles(size, minRating, maxRating int, themes []string) ([]puzzle.Puzzle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	candidates := make([]puzzle.Puzzle, 0)
	for _, p := range m.puzzles {
		if matches(p, minRating, maxRating, themes) {
			candidates = append(candidates, p)
		}
	}
	return pickRandom(candidates, size), nil
}

func (m *memoryStore) InsertTrainingSet(set TrainingSet) (TrainingSet, error) {
	if set.ID == "" {
		set.ID = uuid.NewString()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets[set.ID] = set
	return set, nil
}

func (m *memoryStore) GetTrainingSet(id string) (TrainingSet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	set, ok := m.sets[id]
	if !ok {
		return TrainingSet{}, fmt.Errorf("training set %s: %w", id, ErrNotFound)
	}
	return set, nil
}

func (m *memoryStore) Close() error {
	return nil
}
