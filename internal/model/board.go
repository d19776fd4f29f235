package model

// Board dimensions. The grid is fixed at 5x5.
const (
	BoardSize  = 5
	BoardCells = BoardSize * BoardSize

	// NoFreePosition disables the free cell
	NoFreePosition = -1
)

// WinScheme selects how completed lines become wins
type WinScheme string

const (
	// WinSchemeMulti awards row, column, diagonal and full independently
	WinSchemeMulti WinScheme = "multi"
	// WinSchemeLines awards a single bingo once enough lines are complete
	WinSchemeLines WinScheme = "lines"
)

// IsValid reports whether s is a known scheme
func (s WinScheme) IsValid() bool {
	return s == WinSchemeMulti || s == WinSchemeLines
}

// LineKind identifies the family a line belongs to
type LineKind string

const (
	LineRow      LineKind = "row"
	LineColumn   LineKind = "column"
	LineDiagonal LineKind = "diagonal"
)

// Line is one of the 12 five-position groups of the grid
type Line struct {
	Kind      LineKind
	Index     int // row/column number, or 0 for the main diagonal and 1 for the anti-diagonal
	Positions [BoardSize]int
}

// Progress is the evaluated state of one player's board
type Progress struct {
	Completed      []int // display slots counted as done, free cell included
	Lines          []Line
	CompletedLines int
	WinTypes       []WinType
	Bingo          bool
}

// HasWin reports whether t is among the achieved win types
func (p *Progress) HasWin(t WinType) bool {
	for _, w := range p.WinTypes {
		if w == t {
			return true
		}
	}
	return false
}

// Cell is one square of a player's board, in display order
type Cell struct {
	TaskID            TaskID
	Description       string
	Position          int // display slot
	CanonicalPosition int
	Completed         bool
	IsFreeSpace       bool
}

// Board is a player's full 5x5 board plus its evaluated progress
type Board struct {
	PlayerID PlayerID
	Cells    []Cell
	Progress Progress
}
