package scoring

import (
	"sort"

	"github.com/zn-har/Bingo/internal/model"
	"github.com/zn-har/Bingo/internal/services/board"
)

// BingoLineThreshold is the number of completed lines that makes a bingo
// under the line-count scheme
const BingoLineThreshold = 5

// Config selects the win scheme and the free cell
type Config struct {
	Scheme       model.WinScheme
	FreePosition int // model.NoFreePosition disables the free cell
}

// Service evaluates completed positions against the 12 board lines
type Service struct {
	cfg Config
}

// New creates a new scoring Service. An unknown scheme falls back to the
// line-count scheme.
func New(cfg Config) *Service {
	if !cfg.Scheme.IsValid() {
		cfg.Scheme = model.WinSchemeLines
	}
	return &Service{cfg: cfg}
}

// Ensure Service satisfies the evaluator used by boards
var _ board.Evaluator = (*Service)(nil)

// Scheme returns the configured win scheme
func (s *Service) Scheme() model.WinScheme {
	return s.cfg.Scheme
}

// Evaluate computes progress for a board. Completed holds canonical
// positions; they are mapped through the layout so lines are judged on the
// grid the player actually sees. Out-of-range positions are ignored.
func (s *Service) Evaluate(layout board.Layout, completed []int) model.Progress {
	var done [model.BoardCells]bool
	for _, p := range completed {
		if board.IsValidPosition(p) {
			done[layout.DisplayOf(p)] = true
		}
	}
	if board.IsValidPosition(s.cfg.FreePosition) {
		done[layout.DisplayOf(s.cfg.FreePosition)] = true
	}

	progress := model.Progress{
		Completed: []int{},
		Lines:     []model.Line{},
		WinTypes:  []model.WinType{},
	}
	for slot, ok := range done {
		if ok {
			progress.Completed = append(progress.Completed, slot)
		}
	}
	sort.Ints(progress.Completed)

	for _, line := range board.Lines() {
		if board.LineComplete(line, &done) {
			progress.Lines = append(progress.Lines, line)
		}
	}
	progress.CompletedLines = len(progress.Lines)

	switch s.cfg.Scheme {
	case model.WinSchemeMulti:
		progress.WinTypes = multiWins(progress.Lines, len(progress.Completed))
	default:
		if progress.CompletedLines >= BingoLineThreshold {
			progress.WinTypes = append(progress.WinTypes, model.WinBingo)
		}
	}
	progress.Bingo = len(progress.WinTypes) > 0
	return progress
}

// multiWins checks each family independently; order is row, column,
// diagonal, full
func multiWins(lines []model.Line, completed int) []model.WinType {
	var row, column, diagonal bool
	for _, line := range lines {
		switch line.Kind {
		case model.LineRow:
			row = true
		case model.LineColumn:
			column = true
		case model.LineDiagonal:
			diagonal = true
		}
	}

	wins := []model.WinType{}
	if row {
		wins = append(wins, model.WinRow)
	}
	if column {
		wins = append(wins, model.WinColumn)
	}
	if diagonal {
		wins = append(wins, model.WinDiagonal)
	}
	if completed >= model.BoardCells {
		wins = append(wins, model.WinFull)
	}
	return wins
}
