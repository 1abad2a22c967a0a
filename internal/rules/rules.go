// internal/rules/rules.go
package rules

import "encoding/json"

// Mark is the symbol a side plays with in a single match.
type Mark string

const (
	Empty Mark = ""
	X     Mark = "X"
	O     Mark = "O"
)

// Other returns the opposing mark. Empty maps to Empty.
func (m Mark) Other() Mark {
	switch m {
	case X:
		return O
	case O:
		return X
	default:
		return Empty
	}
}

// Valid reports whether m is one of the two playable marks.
func (m Mark) Valid() bool {
	return m == X || m == O
}

// MarshalJSON encodes Empty as null so an empty cell reads as absent on the wire.
func (m Mark) MarshalJSON() ([]byte, error) {
	if m == Empty {
		return []byte("null"), nil
	}
	return json.Marshal(string(m))
}

// Cells is the number of cells on the board.
const Cells = 9

// Board is a 3x3 grid stored row-major.
type Board [Cells]Mark

// Line is a winning triple of cell indices.
type Line [3]int

// Lines lists every winning triple: rows, columns, then diagonals.
var Lines = [...]Line{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Outcome is the result of evaluating a board.
type Outcome struct {
	Winner      Mark  // Empty when nobody has won
	WinningLine *Line // nil unless Winner is set
	Draw        bool
}

// Terminal reports whether the match is over.
func (o Outcome) Terminal() bool {
	return o.Winner != Empty || o.Draw
}

// InBounds reports whether idx addresses a cell.
func InBounds(idx int) bool {
	return idx >= 0 && idx < Cells
}

// Free reports whether the cell at idx exists and is empty.
func (b *Board) Free(idx int) bool {
	return InBounds(idx) && b[idx] == Empty
}

// Full reports whether no empty cell remains.
func (b *Board) Full() bool {
	for _, c := range b {
		if c == Empty {
			return false
		}
	}
	return true
}

// EmptyCells returns the indices of all empty cells in ascending order.
func (b *Board) EmptyCells() []int {
	out := make([]int, 0, Cells)
	for i, c := range b {
		if c == Empty {
			out = append(out, i)
		}
	}
	return out
}

// Count returns how many cells hold m.
func (b *Board) Count(m Mark) int {
	n := 0
	for _, c := range b {
		if c == m {
			n++
		}
	}
	return n
}

// Evaluate inspects the board for a winner or a draw. Lines are scanned in the
// order of Lines and the first complete one wins; under legal play at most one
// mark can own a complete line.
func Evaluate(b Board) Outcome {
	for i := range Lines {
		l := Lines[i]
		if b[l[0]] != Empty && b[l[0]] == b[l[1]] && b[l[0]] == b[l[2]] {
			return Outcome{Winner: b[l[0]], WinningLine: &l}
		}
	}
	if b.Full() {
		return Outcome{Draw: true}
	}
	return Outcome{}
}
