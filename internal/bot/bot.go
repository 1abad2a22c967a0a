// internal/bot/bot.go
package bot

import (
	"fmt"
	"math/rand/v2"

	"github.com/Luckmuc/TicTacToe/internal/rules"
)

// Selector picks the cell a synthetic player occupies next. ok is false only when
// the board has no empty cell.
type Selector interface {
	Move(b rules.Board, self, opponent rules.Mark) (idx int, ok bool)
}

// Strategy names accepted by New.
const (
	StrategyHeuristic = "heuristic"
	StrategyMinimax   = "minimax"
)

// New returns the selector registered under name.
func New(name string) (Selector, error) {
	switch name {
	case "", StrategyHeuristic:
		return NewHeuristic(nil), nil
	case StrategyMinimax:
		return Minimax{}, nil
	default:
		return nil, fmt.Errorf("unknown bot strategy %q", name)
	}
}

var corners = [...]int{0, 2, 6, 8}

const center = 4

// Heuristic plays by priority: win, block, center, a random corner, then any
// random free cell.
type Heuristic struct {
	intN func(n int) int
}

// NewHeuristic builds a Heuristic. A nil intN uses math/rand/v2.
func NewHeuristic(intN func(n int) int) *Heuristic {
	if intN == nil {
		intN = rand.IntN
	}
	return &Heuristic{intN: intN}
}

func (h *Heuristic) Move(b rules.Board, self, opponent rules.Mark) (int, bool) {
	if idx, ok := completingCell(b, self); ok {
		return idx, true
	}
	if idx, ok := completingCell(b, opponent); ok {
		return idx, true
	}
	if b.Free(center) {
		return center, true
	}

	var open []int
	for _, c := range corners {
		if b.Free(c) {
			open = append(open, c)
		}
	}
	if len(open) > 0 {
		return open[h.intN(len(open))], true
	}

	free := b.EmptyCells()
	if len(free) == 0 {
		return 0, false
	}
	return free[h.intN(len(free))], true
}

// completingCell finds the empty cell of the first line holding two of m and
// one empty cell.
func completingCell(b rules.Board, m rules.Mark) (int, bool) {
	for _, l := range rules.Lines {
		own, empty, at := 0, 0, -1
		for _, idx := range l {
			switch b[idx] {
			case m:
				own++
			case rules.Empty:
				empty++
				at = idx
			}
		}
		if own == 2 && empty == 1 {
			return at, true
		}
	}
	return 0, false
}
