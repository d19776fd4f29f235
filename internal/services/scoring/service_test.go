package scoring

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/zn-har/Bingo/internal/model"
	"github.com/zn-har/Bingo/internal/services/board"
)

type ServiceSuite struct {
	suite.Suite
	identity board.Layout
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.identity = board.IdentityLayout()
}

func multi(free int) *Service {
	return New(Config{Scheme: model.WinSchemeMulti, FreePosition: free})
}

func lines(free int) *Service {
	return New(Config{Scheme: model.WinSchemeLines, FreePosition: free})
}

func positions(from, to int) []int {
	out := []int{}
	for p := from; p <= to; p++ {
		out = append(out, p)
	}
	return out
}

func (s *ServiceSuite) TestEmptyBoard() {
	progress := multi(model.NoFreePosition).Evaluate(s.identity, nil)
	s.Empty(progress.Completed)
	s.Empty(progress.WinTypes)
	s.Equal(0, progress.CompletedLines)
	s.False(progress.Bingo)
}

func (s *ServiceSuite) TestTopRowIsRowOnly() {
	progress := multi(model.NoFreePosition).Evaluate(s.identity, []int{0, 1, 2, 3, 4})
	s.Equal([]model.WinType{model.WinRow}, progress.WinTypes)
	s.Equal(1, progress.CompletedLines)
	s.True(progress.Bingo)
}

func (s *ServiceSuite) TestMainDiagonalCountsOneLine() {
	progress := multi(model.NoFreePosition).Evaluate(s.identity, []int{0, 6, 12, 18, 24})
	s.Equal([]model.WinType{model.WinDiagonal}, progress.WinTypes)
	s.Equal(1, progress.CompletedLines)
	s.Require().Len(progress.Lines, 1)
	s.Equal(model.LineDiagonal, progress.Lines[0].Kind)
}

func (s *ServiceSuite) TestFreeCellCompletesLine() {
	// Row 2 passes through the centre.
	progress := multi(12).Evaluate(s.identity, []int{10, 11, 13, 14})
	s.Equal([]model.WinType{model.WinRow}, progress.WinTypes)
	s.Contains(progress.Completed, 12)
}

func (s *ServiceSuite) TestFullBoard() {
	progress := multi(model.NoFreePosition).Evaluate(s.identity, positions(0, 24))
	s.Equal([]model.WinType{model.WinRow, model.WinColumn, model.WinDiagonal, model.WinFull}, progress.WinTypes)
	s.Equal(12, progress.CompletedLines)
	s.Len(progress.Completed, model.BoardCells)
}

func (s *ServiceSuite) TestIdempotent() {
	svc := multi(12)
	completed := []int{0, 5, 10, 15, 20, 3}
	s.Equal(svc.Evaluate(s.identity, completed), svc.Evaluate(s.identity, completed))
}

func (s *ServiceSuite) TestIgnoresOutOfRangeAndDuplicates() {
	progress := multi(model.NoFreePosition).Evaluate(s.identity, []int{-1, 25, 3, 3})
	s.Equal([]int{3}, progress.Completed)
}

func (s *ServiceSuite) TestLineSchemeNeedsFiveLines() {
	svc := lines(model.NoFreePosition)

	// Rows 0-3 complete: four lines.
	progress := svc.Evaluate(s.identity, positions(0, 19))
	s.Equal(4, progress.CompletedLines)
	s.Empty(progress.WinTypes)
	s.False(progress.Bingo)

	progress = svc.Evaluate(s.identity, positions(0, 24))
	s.Equal(12, progress.CompletedLines)
	s.Equal([]model.WinType{model.WinBingo}, progress.WinTypes)
	s.True(progress.Bingo)
}

func (s *ServiceSuite) TestLineSchemeExactThreshold() {
	// Rows 0-3 plus column 1 make five lines.
	completed := append(positions(0, 19), 21)
	progress := lines(model.NoFreePosition).Evaluate(s.identity, completed)
	s.Equal(BingoLineThreshold, progress.CompletedLines)
	s.Equal([]model.WinType{model.WinBingo}, progress.WinTypes)
}

func (s *ServiceSuite) TestEvaluatesDisplayGeometry() {
	layout := board.NewLayout("player-42", 12, true)
	// The canonical positions shown in the player's top row.
	var topRow []int
	for slot := 0; slot < model.BoardSize; slot++ {
		topRow = append(topRow, layout.Slot(slot))
	}

	progress := multi(12).Evaluate(layout, topRow)
	s.Contains(progress.WinTypes, model.WinRow)
	s.Equal([]int{0, 1, 2, 3, 4, 12}, progress.Completed)
}

func (s *ServiceSuite) TestUnknownSchemeFallsBackToLines() {
	svc := New(Config{Scheme: "pyramid", FreePosition: 12})
	s.Equal(model.WinSchemeLines, svc.Scheme())
}
