package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
)

const (
	StoreMemory = "memory"
	StoreMongo  = "mongo"
	StoreBadger = "badger"
)

type Configuration struct {
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Server   struct {
		Host string `envconfig:"SERVER_HOST" default:"0.0.0.0"`
		Port string `envconfig:"SERVER_PORT" default:"5000"`
	}
	Store struct {
		Kind string `envconfig:"STORE_KIND" default:"memory"`
	}
	Database struct {
		Address          string `envconfig:"MONGO_ADDRESS" default:"mongodb://localhost:27017"`
		DatabaseName     string `envconfig:"MONGO_DATABASE" default:"puzzlebook"`
		PuzzleCollection string `envconfig:"MONGO_PUZZLE_COLLECTION" default:"puzzles"`
		SetCollection    string `envconfig:"MONGO_SET_COLLECTION" default:"training_sets"`
	}
	Badger struct {
		Dir string `envconfig:"BADGER_DIR" default:"data/puzzles"`
	}
	Stockfish struct {
		Path  string   `envconfig:"STOCKFISH_PATH" default:"stockfish"`
		Args  []string `envconfig:"STOCKFISH_ARGS"`
		Depth int      `envconfig:"STOCKFISH_DEPTH" default:"10"`
	}
	Board struct {
		ImageSize int `envconfig:"BOARD_IMAGE_SIZE" default:"480"`
	}
	Session struct {
		IdleTimeout time.Duration `envconfig:"SESSION_IDLE_TIMEOUT" default:"30m"`
	}
}

func (c *Configuration) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// InitConfig reads the environment, after loading a .env file when one is
// present.
func InitConfig() (*Configuration, error) {
	_ = godotenv.Load()
	var cfg Configuration
	err := envconfig.Process("", &cfg)
	return &cfg, err
}

// SetupLogging applies the configured level to the global zerolog logger.
func SetupLogging(cfg *Configuration) {
	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}
