package puzzle

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseMoves(t *testing.T) {
	tests := []struct {
		in      string
		want    []Move
		wantErr bool
	}{
		{in: "e2e4 e7e5", want: []Move{{From: "e2", To: "e4"}, {From: "e7", To: "e5"}}},
		{in: " a7a8q ", want: []Move{{From: "a7", To: "a8", Promotion: "q"}}},
		{in: "E2E4", want: []Move{{From: "e2", To: "e4"}}},
		{in: "", want: []Move{}},
		{in: "e2e9", wantErr: true},
		{in: "e7e8k", wantErr: true},
		{in: "e2", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseMoves(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseMoves(%q) succeeded, want error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseMoves(%q): %v", tt.in, err)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseMoves(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSquares(t *testing.T) {
	if len(Squares) != 64 {
		t.Fatalf("got %d squares", len(Squares))
	}
	if Squares[0] != "a1" || Squares[7] != "h1" || Squares[63] != "h8" {
		t.Fatalf("unexpected order: %s %s %s", Squares[0], Squares[7], Squares[63])
	}
	for _, sq := range Squares {
		if !IsSquare(sq) {
			t.Fatalf("%q is not a square", sq)
		}
	}
}

func TestValidate(t *testing.T) {
	if err := Sample().Validate(); err != nil {
		t.Fatalf("sample: %v", err)
	}
	p := Sample()
	p.FEN = " "
	if err := p.Validate(); !errors.Is(err, ErrInvalidPuzzle) {
		t.Fatalf("blank fen: err = %v", err)
	}
}

func TestHasTheme(t *testing.T) {
	p := Puzzle{Themes: []string{"mate", "mateIn2"}}
	if !p.HasTheme("fork", "mateIn2") {
		t.Fatal("expected mateIn2 to match")
	}
	if p.HasTheme("fork") {
		t.Fatal("fork should not match")
	}
}
