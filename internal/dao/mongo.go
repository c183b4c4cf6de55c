package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gmkornilov/chess-puzzle-book/internal/db"
	"github.com/gmkornilov/chess-puzzle-book/pkg/puzzle"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const queryTimeout = time.Second

type mongoStore struct {
	dbClient *db.PuzzleDbClient
}

func NewMongoStore(dbClient *db.PuzzleDbClient) Store {
	return &mongoStore{dbClient}
}

func (t *mongoStore) InsertPuzzle(p puzzle.Puzzle) (puzzle.Puzzle, error) {
	ctx, cancel := context.WithTimeout(context.TODO(), queryTimeout)
	defer cancel()

	p = withID(p)
	opts := options.Replace().SetUpsert(true)
	_, err := t.dbClient.PuzzleCollection.ReplaceOne(ctx, bson.D{{Key: "_id", Value: p.ID}}, p, opts)
	if err != nil {
		return puzzle.Puzzle{}, err
	}
	return p, nil
}

func (t *mongoStore) InsertAllPuzzles(puzzles []puzzle.Puzzle) error {
	for _, p := range puzzles {
		if _, err := t.InsertPuzzle(p); err != nil {
			return err
		}
	}
	return nil
}

func (t *mongoStore) GetPuzzle(id string) (puzzle.Puzzle, error) {
	ctx, cancel := context.WithTimeout(context.TODO(), queryTimeout)
	defer cancel()

	var p puzzle.Puzzle
	err := t.dbClient.PuzzleCollection.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return puzzle.Puzzle{}, fmt.Errorf("puzzle %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return puzzle.Puzzle{}, err
	}
	return p, nil
}

func (t *mongoStore) ListPuzzles(limit int) ([]puzzle.Puzzle, error) {
	ctx, cancel := context.WithTimeout(context.TODO(), queryTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := t.dbClient.PuzzleCollection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}

	puzzles := make([]puzzle.Puzzle, 0)
	if err = cur.All(ctx, &puzzles); err != nil {
		return nil, err
	}
	return puzzles, nil
}

func (t *mongoStore) GetRandomPuzzleForRating(rating int) (puzzle.Puzzle, error) {
	found, err := t.FindRandomPuzzles(1, rating-ratingWindow, rating+ratingWindow, nil)
	if err != nil {
		return puzzle.Puzzle{}, err
	}
	if len(found) != 1 {
		return puzzle.Puzzle{}, fmt.Errorf("puzzle rated near %d: %w", rating, ErrNotFound)
	}
	return found[0], nil
}

func (t *mongoStore) FindRandomPuzzles(size, minRating, maxRating int, themes []string) ([]puzzle.Puzzle, error) {
	ctx, cancel := context.WithTimeout(context.TODO(), queryTimeout)
	defer cancel()

	filter := bson.D{{Key: "rating", Value: bson.D{
		{Key: "$gte", Value: minRating},
		{Key: "$lte", Value: maxRating},
	}}}
	if len(themes) > 0 {
		filter = append(filter, bson.E{Key: "themes", Value: bson.D{{Key: "$in", Value: themes}}})
	}
	matchStage := bson.D{{Key: "$match", Value: filter}}
	sampleStage := bson.D{{Key: "$sample", Value: bson.D{{Key: "size", Value: size}}}}

	cursor, err := t.dbClient.PuzzleCollection.Aggregate(ctx, mongo.Pipeline{matchStage, sampleStage})
	if err != nil {
		return nil, err
	}

	loaded := make([]puzzle.Puzzle, 0)
	if err = cursor.All(ctx, &loaded); err != nil {
		return nil, err
	}
	return loaded, nil
}

func (t *mongoStore) InsertTrainingSet(set TrainingSet) (TrainingSet, error) {
	ctx, cancel := context.WithTimeout(context.TODO(), queryTimeout)
	defer cancel()

	if set.ID == "" {
		set.ID = uuid.NewString()
	}
	_, err := t.dbClient.SetCollection.InsertOne(ctx, set)
	if err != nil {
		return TrainingSet{}, err
	}
	return set, nil
}

func (t *mongoStore) GetTrainingSet(id string) (TrainingSet, error) {
	ctx, cancel := context.WithTimeout(context.TODO(), queryTimeout)
	defer cancel()

	var set TrainingSet
	err := t.dbClient.SetCollection.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&set)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return TrainingSet{}, fmt.Errorf("training set %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return TrainingSet{}, err
	}
	return set, nil
}

func (t *mongoStore) Close() error {
	return t.dbClient.Close()
}
