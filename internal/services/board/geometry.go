package board

import "github.com/zn-har/Bingo/internal/model"

// Positions are numbered row-major from 0 (top left) to 24 (bottom right).

var allLines = buildLines()

func buildLines() []model.Line {
	lines := make([]model.Line, 0, 2*model.BoardSize+2)
	for n := 0; n < model.BoardSize; n++ {
		lines = append(lines, Row(n))
	}
	for n := 0; n < model.BoardSize; n++ {
		lines = append(lines, Column(n))
	}
	return append(lines, MainDiagonal(), AntiDiagonal())
}

// Row returns row n (0-4)
func Row(n int) model.Line {
	line := model.Line{Kind: model.LineRow, Index: n}
	for i := range line.Positions {
		line.Positions[i] = n*model.BoardSize + i
	}
	return line
}

// Column returns column n (0-4)
func Column(n int) model.Line {
	line := model.Line{Kind: model.LineColumn, Index: n}
	for i := range line.Positions {
		line.Positions[i] = i*model.BoardSize + n
	}
	return line
}

// MainDiagonal returns the top-left to bottom-right diagonal {0,6,12,18,24}
func MainDiagonal() model.Line {
	line := model.Line{Kind: model.LineDiagonal, Index: 0}
	for i := range line.Positions {
		line.Positions[i] = i*model.BoardSize + i
	}
	return line
}

// AntiDiagonal returns the top-right to bottom-left diagonal {4,8,12,16,20}
func AntiDiagonal() model.Line {
	line := model.Line{Kind: model.LineDiagonal, Index: 1}
	for i := range line.Positions {
		line.Positions[i] = i*model.BoardSize + (model.BoardSize - 1 - i)
	}
	return line
}

// Lines returns all 12 lines: rows 0-4, columns 0-4, then both diagonals
func Lines() []model.Line {
	out := make([]model.Line, len(allLines))
	copy(out, allLines)
	return out
}

// IsValidPosition reports whether p lies on the board
func IsValidPosition(p int) bool {
	return p >= 0 && p < model.BoardCells
}

// RowOf returns the row index of position p
func RowOf(p int) int {
	return p / model.BoardSize
}

// ColumnOf returns the column index of position p
func ColumnOf(p int) int {
	return p % model.BoardSize
}

// DiagonalsOf returns the diagonals passing through p (zero, one, or two)
func DiagonalsOf(p int) []model.Line {
	var out []model.Line
	row, col := RowOf(p), ColumnOf(p)
	if row == col {
		out = append(out, MainDiagonal())
	}
	if row+col == model.BoardSize-1 {
		out = append(out, AntiDiagonal())
	}
	return out
}

// LineComplete reports whether every position of line is marked in done
func LineComplete(line model.Line, done *[model.BoardCells]bool) bool {
	for _, p := range line.Positions {
		if !done[p] {
			return false
		}
	}
	return true
}
