package dao

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/gmkornilov/chess-puzzle-book/pkg/puzzle"
	"github.com/google/uuid"
)

const (
	puzzlePrefix = "puzzle/"
	setPrefix    = "set/"
)

type badgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens a Badger database in dir. An empty dir keeps
// everything in memory.
func NewBadgerStore(dir string) (Store, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &badgerStore{db: db}, nil
}

func (b *badgerStore) Close() error {
	return b.db.Close()
}

func (b *badgerStore) put(key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

func (b *badgerStore) get(key string, v interface{}) error {
	return b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})
}

func (b *badgerStore) scanPuzzles(keep func(puzzle.Puzzle) bool) ([]puzzle.Puzzle, error) {
	res := make([]puzzle.Puzzle, 0)
	err := b.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(puzzlePrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var p puzzle.Puzzle
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &p)
			})
			if err != nil {
				return err
			}
			if keep(p) {
				res = append(res, p)
			}
		}
		return nil
	})
	return res, err
}

func (b *badgerStore) InsertPuzzle(p puzzle.Puzzle) (puzzle.Puzzle, error) {
	p = withID(p)
	if err := b.put(puzzlePrefix+p.ID, p); err != nil {
		return puzzle.Puzzle{}, err
	}
	return p, nil
}

func (b *badgerStore) InsertAllPuzzles(puzzles []puzzle.Puzzle) error {
	wb := b.db.NewWriteBatch()
	for _, p := range puzzles {
		p = withID(p)
		data, err := json.Marshal(p)
		if err == nil {
			err = wb.Set([]byte(puzzlePrefix+p.ID), data)
		}
		if err != nil {
			wb.Cancel()
			return err
		}
	}
	return wb.Flush()
}

func (b *badgerStore) GetPuzzle(id string) (puzzle.Puzzle, error) {
	var p puzzle.Puzzle
	err := b.get(puzzlePrefix+id, &p)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return puzzle.Puzzle{}, fmt.Errorf("puzzle %s: %w", id, ErrNotFound)
	}
	return p, err
}

func (b *badgerStore) ListPuzzles(limit int) ([]puzzle.Puzzle, error) {
	all, err := b.scanPuzzles(func(puzzle.Puzzle) bool { return true })
	if err != nil {
		return nil, err
	}
	return sortAndLimit(all, limit), nil
}

func (b *badgerStore) GetRandomPuzzleForRating(rating int) (puzzle.Puzzle, error) {
	found, err := b.FindRandomPuzzles(1, rating-ratingWindow, rating+ratingWindow, nil)
	if err != nil {
		return puzzle.Puzzle{}, err
	}
	if len(found) == 0 {
		return puzzle.Puzzle{}, fmt.Errorf("puzzle rated near %d: %w", rating, ErrNotFound)
	}
	return found[0], nil
}

func (b *badgerStore) FindRandomPuzzles(size, minRating, maxRating int, themes []string) ([]puzzle.Puzzle, error) {
	candidates, err := b.scanPuzzles(func(p puzzle.Puzzle) bool {
		return matches(p, minRating, maxRating, themes)
	})
	if err != nil {
		return nil, err
	}
	return pickRandom(candidates, size), nil
}

func (b *badgerStore) InsertTrainingSet(set TrainingSet) (TrainingSet, error) {
	if set.ID == "" {
		set.ID = uuid.NewString()
	}
	if err := b.put(setPrefix+set.ID, set); err != nil {
		return TrainingSet{}, err
	}
	return set, nil
}

func (b *badgerStore) GetTrainingSet(id string) (TrainingSet, error) {
	var set TrainingSet
	err := b.get(setPrefix+id, &set)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return TrainingSet{}, fmt.Errorf("training set %s: %w", id, ErrNotFound)
	}
	return set, err
}
