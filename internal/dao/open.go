package dao

import (
	"fmt"

	"github.com/gmkornilov/chess-puzzle-book/internal/config"
	"github.com/gmkornilov/chess-puzzle-book/internal/db"
	"github.com/rs/zerolog/log"
)

// OpenStore opens the store selected by STORE_KIND.
func OpenStore(cfg *config.Configuration) (Store, error) {
	switch cfg.Store.Kind {
	case config.StoreMemory:
		return NewMemoryStore(), nil
	case config.StoreBadger:
		log.Info().Str("dir", cfg.Badger.Dir).Msg("opening badger store")
		return NewBadgerStore(cfg.Badger.Dir)
	case config.StoreMongo:
		log.Info().Str("database", cfg.Database.DatabaseName).Msg("connecting to mongo")
		dbClient, err := db.NewDbClient(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect to mongo: %w", err)
		}
		return NewMongoStore(dbClient), nil
	}
	return nil, fmt.Errorf("unknown store kind %q", cfg.Store.Kind)
}
