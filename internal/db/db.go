package db

import (
	"context"
	"fmt"
	"time"

	"github.com/gmkornilov/chess-puzzle-book/internal/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const connectTimeout = 5 * time.Second

type PuzzleDbClient struct {
	client           *mongo.Client
	PuzzleCollection *mongo.Collection
	SetCollection    *mongo.Collection
}

func (r *PuzzleDbClient) Close() error {
	return r.client.Disconnect(context.TODO())
}

func NewDbClient(cfg *config.Configuration) (*PuzzleDbClient, error) {
	ctx, cancel := context.WithTimeout(context.TODO(), connectTimeout)
	defer cancel()

	clientOpts := options.Client().ApplyURI(cfg.Database.Address)

	dbClient := &PuzzleDbClient{}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, err
	}
	dbClient.client = client

	err = client.Ping(ctx, nil)
	if err != nil {
		return nil, err
	}

	database := client.Database(cfg.Database.DatabaseName)
	dbClient.PuzzleCollection = database.Collection(cfg.Database.PuzzleCollection)
	dbClient.SetCollection = database.Collection(cfg.Database.SetCollection)
	if dbClient.PuzzleCollection == nil || dbClient.SetCollection == nil {
		return nil, fmt.Errorf("can't resolve collections in %s", cfg.Database.DatabaseName)
	}
	return dbClient, nil
}
