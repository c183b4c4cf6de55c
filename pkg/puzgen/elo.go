package puzgen

import "math"

const (
	baseRating    = 1000
	ratingPerMove = 250
)

func eloCoeff(elo int) int {
	if elo >= 2400 {
		return 10
	}
	if elo >= 2000 {
		return 20
	}
	return 40
}

// EstimateRating guesses a rating for a mate in n.
func EstimateRating(mateIn int) int {
	if mateIn < 1 {
		mateIn = 1
	}
	return baseRating + ratingPerMove*(mateIn-1)
}

func expectedScore(playerElo, puzzleElo int) float64 {
	return 1 / (1 + math.Pow(10, float64(puzzleElo-playerElo)/400))
}

// Score is the share of the solver's moves found before the first mistake.
func Score(correctMoves, totalMoves int) float64 {
	if totalMoves <= 0 {
		return 0
	}
	if correctMoves > totalMoves {
		correctMoves = totalMoves
	}
	return float64(correctMoves) / float64(totalMoves)
}

// RatingAfterAttempt applies one Elo update for a player who scored score
// (0 to 1) against a puzzle.
func RatingAfterAttempt(playerElo, puzzleElo int, score float64) int {
	coeff := eloCoeff(playerElo)
	delta := float64(coeff) * (score - expectedScore(playerElo, puzzleElo))
	return playerElo + int(math.Round(delta))
}
