package bot

import "github.com/Luckmuc/TicTacToe/internal/rules"

// Minimax searches the full game tree. Faster wins and slower losses score
// higher; ties go to the lowest cell index, so the choice is deterministic.
type Minimax struct{}

func (Minimax) Move(b rules.Board, self, opponent rules.Mark) (int, bool) {
	best, bestScore := -1, -100
	for _, idx := range b.EmptyCells() {
		b[idx] = self
		score := -negamax(b, opponent, self, 1)
		b[idx] = rules.Empty
		if score > bestScore {
			best, bestScore = idx, score
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}

// negamax scores the board from the perspective of toMove.
func negamax(b rules.Board, toMove, other rules.Mark, depth int) int {
	out := rules.Evaluate(b)
	switch {
	case out.Winner == toMove:
		return 10 - depth
	case out.Winner == other:
		return depth - 10
	case out.Draw:
		return 0
	}

	best := -100
	for _, idx := range b.EmptyCells() {
		b[idx] = toMove
		score := -negamax(b, other, toMove, depth+1)
		b[idx] = rules.Empty
		if score > best {
			best = score
		}
	}
	return best
}
