package puzgen

import "testing"

func TestRatingAfterAttempt(t *testing.T) {
	tests := []struct {
		name          string
		player, puzzl int
		score         float64
		want          int
	}{
		{"even win", 1500, 1500, 1, 1520},
		{"even loss", 1500, 1500, 0, 1480},
		{"half", 1500, 1500, 0.5, 1500},
		{"strong player win", 2100, 2100, 1, 2110},
		{"master loss", 2500, 2500, 0, 2495},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RatingAfterAttempt(tt.player, tt.puzzl, tt.score); got != tt.want {
				t.Fatalf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScore(t *testing.T) {
	if Score(1, 2) != 0.5 || Score(0, 0) != 0 || Score(3, 2) != 1 {
		t.Fatal("unexpected score")
	}
}

func TestEstimateRating(t *testing.T) {
	if EstimateRating(1) != 1000 || EstimateRating(3) != 1500 || EstimateRating(0) != 1000 {
		t.Fatal("unexpected estimate")
	}
}
