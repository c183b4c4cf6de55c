package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gmkornilov/chess-puzzle-book/pkg/puzzle"
	"github.com/rs/zerolog/log"
)

// Columns of the lichess puzzle database export.
const (
	colID = iota
	colFEN
	colMoves
	colRating
	colRatingDeviation
	colPopularity
	colPlays
	colThemes
	colGameURL

	minColumns = colGameURL + 1
)

const SourceLichess = "lichess"

type Importer interface {
	ImportPuzzle(p puzzle.Puzzle) (puzzle.Puzzle, error)
}

type Report struct {
	Imported int
	Skipped  int
}

// ParseRecord turns one CSV row of the lichess export into a puzzle.
func ParseRecord(record []string) (puzzle.Puzzle, error) {
	if len(record) < minColumns {
		return puzzle.Puzzle{}, fmt.Errorf("expected at least %d columns, got %d", minColumns, len(record))
	}
	moves, err := puzzle.ParseMoves(record[colMoves])
	if err != nil {
		return puzzle.Puzzle{}, err
	}

	ints := make([]int, 0, 4)
	for _, col := range []int{colRating, colRatingDeviation, colPopularity, colPlays} {
		n, err := strconv.Atoi(strings.TrimSpace(record[col]))
		if err != nil {
			return puzzle.Puzzle{}, fmt.Errorf("column %d: %w", col, err)
		}
		ints = append(ints, n)
	}

	return puzzle.Puzzle{
		ID:              strings.TrimSpace(record[colID]),
		FEN:             strings.TrimSpace(record[colFEN]),
		Moves:           moves,
		Rating:          ints[0],
		RatingDeviation: ints[1],
		Popularity:      ints[2],
		PlayCount:       ints[3],
		Themes:          strings.Fields(record[colThemes]),
		GameURL:         strings.TrimSpace(record[colGameURL]),
		Source:          SourceLichess,
	}, nil
}

func isHeader(record []string) bool {
	return len(record) > colFEN && strings.EqualFold(strings.TrimSpace(record[colID]), "PuzzleId")
}

// ImportLichess reads the lichess CSV from r and hands every row to imp.
// Rows that fail to parse or are rejected are counted and skipped.
func ImportLichess(r io.Reader, imp Importer) (Report, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	var report Report
	line := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				log.Warn().Err(err).Int("line", line).Msg("skipping malformed row")
				report.Skipped++
				continue
			}
			return report, err
		}
		if line == 1 && isHeader(record) {
			continue
		}

		p, err := ParseRecord(record)
		if err == nil {
			_, err = imp.ImportPuzzle(p)
		}
		if err != nil {
			log.Warn().Err(err).Int("line", line).Msg("skipping puzzle")
			report.Skipped++
			continue
		}
		report.Imported++
	}
	log.Info().Int("imported", report.Imported).Int("skipped", report.Skipped).Msg("lichess import finished")
	return report, nil
}
