package scraper

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gmkornilov/chess-puzzle-book/internal/config"
	"github.com/gmkornilov/chess-puzzle-book/internal/dao"
)

const (
	lichessURL      = "https://lichess.org"
	defaultMaxGames = 20
)

type Factory struct {
	Engines    EngineFactory
	Repo       dao.PuzzleRepository
	Depth      int
	LichessURL string
	Client     *http.Client
}

func NewFactory(cfg *config.Configuration, repo dao.PuzzleRepository) *Factory {
	return &Factory{
		Engines:    StockfishFactory(cfg.Stockfish.Path, cfg.Stockfish.Args...),
		Repo:       repo,
		Depth:      cfg.Stockfish.Depth,
		LichessURL: lichessURL,
		Client:     &http.Client{Timeout: time.Minute},
	}
}

func (f *Factory) CreatePgnWorker(pgn []byte) *PgnWorker {
	return &PgnWorker{
		generation: generation{engines: f.Engines, repo: f.Repo, depth: f.Depth},
		pgn:        pgn,
	}
}

func (f *Factory) CreateLichessScraper(nickname string, last int) *LichessGameScraper {
	if last <= 0 {
		last = defaultMaxGames
	}
	return &LichessGameScraper{
		generation: generation{engines: f.Engines, repo: f.Repo, depth: f.Depth},
		nickname:   nickname,
		last:       last,
		baseURL:    f.LichessURL,
		client:     f.Client,
	}
}

// LichessGameScraper downloads the latest games of a lichess user and
// generates puzzles from them.
type LichessGameScraper struct {
	generation

	nickname string
	last     int
	baseURL  string
	client   *http.Client
}

func (l *LichessGameScraper) StartWork() {
	go l.Scrap()
}

func (l *LichessGameScraper) Scrap() {
	u := fmt.Sprintf("%s/api/games/user/%s?max=%s", l.baseURL, url.PathEscape(l.nickname), strconv.Itoa(l.last))
	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		l.fail(err)
		return
	}
	req.Header.Set("Accept", "application/x-chess-pgn")

	client := l.client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		l.fail(fmt.Errorf("error fetching %s games: %w", l.nickname, err))
		return
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		l.fail(fmt.Errorf("user %s doesn't exist on lichess", l.nickname))
		return
	case resp.StatusCode != http.StatusOK:
		l.fail(fmt.Errorf("lichess answered %s", resp.Status))
		return
	}

	games, err := scanGames(resp.Body)
	if err != nil {
		l.fail(fmt.Errorf("reading %s games: %w", l.nickname, err))
		return
	}
	l.analyze(games)
}
