package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zn-har/Bingo/internal/model"
)

func TestLinesShape(t *testing.T) {
	lines := Lines()
	require.Len(t, lines, 12)

	kinds := map[model.LineKind]int{}
	for _, line := range lines {
		kinds[line.Kind]++
		for _, p := range line.Positions {
			assert.True(t, IsValidPosition(p))
		}
	}
	assert.Equal(t, 5, kinds[model.LineRow])
	assert.Equal(t, 5, kinds[model.LineColumn])
	assert.Equal(t, 2, kinds[model.LineDiagonal])
}

func TestRowsAndColumns(t *testing.T) {
	assert.Equal(t, [5]int{0, 1, 2, 3, 4}, Row(0).Positions)
	assert.Equal(t, [5]int{20, 21, 22, 23, 24}, Row(4).Positions)
	assert.Equal(t, [5]int{2, 7, 12, 17, 22}, Column(2).Positions)
	assert.Equal(t, [5]int{0, 6, 12, 18, 24}, MainDiagonal().Positions)
	assert.Equal(t, [5]int{4, 8, 12, 16, 20}, AntiDiagonal().Positions)
}

func TestEveryPositionMembership(t *testing.T) {
	for p := 0; p < model.BoardCells; p++ {
		rows, cols, diags := 0, 0, 0
		for _, line := range Lines() {
			for _, q := range line.Positions {
				if q != p {
					continue
				}
				switch line.Kind {
				case model.LineRow:
					rows++
				case model.LineColumn:
					cols++
				case model.LineDiagonal:
					diags++
				}
			}
		}
		assert.Equal(t, 1, rows, "position %d", p)
		assert.Equal(t, 1, cols, "position %d", p)
		assert.Equal(t, len(DiagonalsOf(p)), diags, "position %d", p)
		assert.Equal(t, p/5, RowOf(p))
		assert.Equal(t, p%5, ColumnOf(p))
	}

	assert.Len(t, DiagonalsOf(12), 2)
	assert.Len(t, DiagonalsOf(0), 1)
	assert.Len(t, DiagonalsOf(1), 0)
}

func TestLinesReturnsCopy(t *testing.T) {
	lines := Lines()
	lines[0].Positions[0] = 99
	assert.Equal(t, 0, Lines()[0].Positions[0])
}

func TestLineComplete(t *testing.T) {
	var done [model.BoardCells]bool
	for _, p := range Row(1).Positions {
		done[p] = true
	}
	assert.True(t, LineComplete(Row(1), &done))
	assert.False(t, LineComplete(Row(0), &done))
	assert.False(t, LineComplete(Column(0), &done))
}
