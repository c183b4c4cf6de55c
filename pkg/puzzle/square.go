package puzzle

// Squares lists all 64 squares from a1 to h8, rank by rank.
var Squares = func() []string {
	squares := make([]string, 0, 64)
	for rank := '1'; rank <= '8'; rank++ {
		for file := 'a'; file <= 'h'; file++ {
			squares = append(squares, string([]rune{file, rank}))
		}
	}
	return squares
}()

func IsSquare(s string) bool {
	return len(s) == 2 && s[0] >= 'a' && s[0] <= 'h' && s[1] >= '1' && s[1] <= '8'
}
