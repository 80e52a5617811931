package game

// BingoBonus is the fixed bonus for playing all seven tiles in one turn.
const BingoBonus = 50

// TotalScore computes the score a turn is worth. The base score is taken
// as given; board legality is not this system's concern.
func TotalScore(base int, bingo bool) int {
	if bingo {
		return base + BingoBonus
	}
	return base
}
