package gif

import (
	"fmt"

	"github.com/deepmcts/deepmcts/game"
)

func fmtNumbers(gameNumber, moveNumber int) string {
	return fmt.Sprintf("Game %d, Move %d", gameNumber, moveNumber)
}

func winnerName(p game.Player) string {
	if p == game.Player(game.None) {
		return "Draw"
	}
	return fmt.Sprintf("%v", p)
}
