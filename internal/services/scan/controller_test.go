package scan

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/zn-har/Bingo/internal/dependencies/mocks"
	"github.com/zn-har/Bingo/internal/model"
	"github.com/zn-har/Bingo/internal/services/board"
	"github.com/zn-har/Bingo/internal/services/ledger"
	"github.com/zn-har/Bingo/internal/services/scoring"
	"github.com/zn-har/Bingo/internal/storage/memory"
	"github.com/zn-har/Bingo/internal/testutil"
)

type ControllerSuite struct {
	suite.Suite
	storage    *memory.Storage
	clock      *mocks.MockClock
	controller *Controller
	tasks      []*model.Task
	ctx        context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.ctx = context.Background()
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC))
	s.useScheme(model.WinSchemeMulti, false)

	s.tasks = model.DefaultTasks()
	s.Require().NoError(s.storage.SaveTasks(s.ctx, s.tasks))
	for _, id := range []model.PlayerID{"alice", "bob", "carol"} {
		s.addPlayer(id)
	}
}

// useScheme rebuilds the controller; the free cell is always the centre
func (s *ControllerSuite) useScheme(scheme model.WinScheme, shuffle bool) {
	logger := testutil.NopLogger()
	scorer := scoring.New(scoring.Config{Scheme: scheme, FreePosition: 12})
	boards := board.New(s.storage, scorer, board.Config{FreePosition: 12, Shuffle: shuffle}, logger)
	wins := ledger.New(s.storage, s.clock, logger)
	s.controller = NewController(s.storage, boards, scorer, wins, s.clock, logger)
}

var phoneSeq int

func (s *ControllerSuite) addPlayer(id model.PlayerID) {
	phoneSeq++
	p := &model.Player{ID: id, Name: string(id), Phone: fmt.Sprintf("%010d", phoneSeq), CreatedAt: s.clock.Now()}
	s.Require().NoError(s.storage.CreatePlayer(s.ctx, p))
}

func (s *ControllerSuite) setState(active bool, maxWinners int, allowDuplicateTargets bool) {
	state := &model.GameState{GameActive: active, MaxWinners: maxWinners, AllowDuplicateTargets: allowDuplicateTargets, UpdatedAt: s.clock.Now()}
	s.Require().NoError(s.storage.SaveGameState(s.ctx, state))
}

func (s *ControllerSuite) submit(scanner, target model.PlayerID, position int) (*Result, error) {
	return s.controller.Submit(s.ctx, Submission{ScannerID: scanner, TargetID: target, TaskID: s.tasks[position].ID})
}

func (s *ControllerSuite) scanCount(scanner model.PlayerID) int {
	scans, err := s.storage.ListScansByScanner(s.ctx, scanner)
	s.Require().NoError(err)
	return len(scans)
}

// Accepted scans

func (s *ControllerSuite) TestSubmitAccepted() {
	result, err := s.submit("alice", "bob", 3)
	s.Require().NoError(err)

	s.NotZero(result.Scan.ID)
	s.Equal(model.VerificationPending, result.Scan.Status)
	s.True(s.clock.Now().Equal(result.Scan.Timestamp))
	s.Equal("alice", result.Scanner.Name)
	s.Equal("bob", result.Target.Name)
	s.Equal(s.tasks[3].Description, result.Task.Description)
	s.Empty(result.NewWins)
	s.True(result.GameActive)
	s.Equal([]int{3, 12}, result.Progress.Completed)
	s.Equal(1, s.scanCount("alice"))
}

func (s *ControllerSuite) TestRowWinThroughFreeCell() {
	for _, p := range []int{10, 11, 13} {
		result, err := s.submit("alice", "bob", p)
		s.Require().NoError(err)
		s.Empty(result.NewWins)
	}

	result, err := s.submit("alice", "bob", 14)
	s.Require().NoError(err)
	s.Equal([]model.WinType{model.WinRow}, result.NewWins)
	s.Equal(1, result.WinnerCount)
	s.Equal(1, result.Progress.CompletedLines)
}

func (s *ControllerSuite) TestLineSchemeBingo() {
	s.useScheme(model.WinSchemeLines, true)

	var bingoAt int
	scans := 0
	for p := 0; p < model.BoardCells; p++ {
		if p == 12 {
			continue
		}
		result, err := s.submit("alice", "bob", p)
		s.Require().NoError(err)
		scans++
		if len(result.NewWins) > 0 && bingoAt == 0 {
			s.Equal([]model.WinType{model.WinBingo}, result.NewWins)
			s.GreaterOrEqual(result.Progress.CompletedLines, scoring.BingoLineThreshold)
			bingoAt = scans
		}
	}
	s.NotZero(bingoAt)

	winners, err := s.storage.ListWinners(s.ctx)
	s.Require().NoError(err)
	s.Len(winners, 1)
}

// Rejections

func (s *ControllerSuite) TestGameEndedRejectedFirst() {
	s.setState(false, 10, true)

	// Even a self scan of an unknown player reports the game state first.
	_, err := s.controller.Submit(s.ctx, Submission{ScannerID: "ghost", TargetID: "ghost", TaskID: 999})
	s.ErrorIs(err, model.ErrGameEnded)
}

func (s *ControllerSuite) TestSelfScanRejected() {
	_, err := s.submit("alice", "alice", 0)
	s.ErrorIs(err, model.ErrSelfScan)
	s.Equal(0, s.scanCount("alice"))
}

func (s *ControllerSuite) TestNotFoundOrder() {
	_, err := s.controller.Submit(s.ctx, Submission{ScannerID: "ghost", TargetID: "nobody", TaskID: 999})
	s.ErrorIs(err, model.ErrScannerNotFound)

	_, err = s.controller.Submit(s.ctx, Submission{ScannerID: "alice", TargetID: "nobody", TaskID: 999})
	s.ErrorIs(err, model.ErrTargetNotFound)

	_, err = s.controller.Submit(s.ctx, Submission{ScannerID: "alice", TargetID: "bob", TaskID: 999})
	s.ErrorIs(err, model.ErrTaskNotFound)
}

func (s *ControllerSuite) TestDuplicateTaskRejected() {
	_, err := s.submit("alice", "bob", 0)
	s.Require().NoError(err)

	_, err = s.submit("alice", "carol", 0)
	s.ErrorIs(err, model.ErrDuplicateTask)
	s.Equal(1, s.scanCount("alice"))
}

func (s *ControllerSuite) TestDuplicateTargetRules() {
	_, err := s.submit("alice", "bob", 0)
	s.Require().NoError(err)

	// Allowed by default.
	_, err = s.submit("alice", "bob", 1)
	s.Require().NoError(err)

	s.setState(true, 10, false)
	_, err = s.submit("alice", "bob", 2)
	s.ErrorIs(err, model.ErrDuplicateTarget)

	// Repeated target takes precedence over a repeated task.
	_, err = s.submit("alice", "bob", 0)
	s.ErrorIs(err, model.ErrDuplicateTarget)

	_, err = s.submit("alice", "carol", 2)
	s.NoError(err)
	s.Equal(3, s.scanCount("alice"))
}

// Winner quota

func (s *ControllerSuite) completeTopRow(scanner model.PlayerID) *Result {
	var last *Result
	for p := 0; p < model.BoardSize; p++ {
		result, err := s.submit(scanner, "carol", p)
		s.Require().NoError(err)
		last = result
	}
	return last
}

func (s *ControllerSuite) TestTenthWinnerEndsGame() {
	s.setState(true, 10, true)
	players := make([]model.PlayerID, 11)
	for i := range players {
		players[i] = model.PlayerID(fmt.Sprintf("w%02d", i))
		s.addPlayer(players[i])
	}

	for i := 0; i < 9; i++ {
		result := s.completeTopRow(players[i])
		s.Equal([]model.WinType{model.WinRow}, result.NewWins)
		s.True(result.GameActive)
		s.Equal(i+1, result.WinnerCount)
	}

	tenth := s.completeTopRow(players[9])
	s.Equal([]model.WinType{model.WinRow}, tenth.NewWins)
	s.False(tenth.GameActive)
	s.True(tenth.GameEnded)
	s.Equal(10, tenth.WinnerCount)

	_, err := s.submit(players[10], "carol", 0)
	s.ErrorIs(err, model.ErrGameEnded)

	count, err := s.storage.CountDistinctWinners(s.ctx)
	s.Require().NoError(err)
	s.Equal(10, count)
}

// Concurrency

func (s *ControllerSuite) TestConcurrentIdenticalScans() {
	const attempts = 10
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := range attempts {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.submit("alice", "bob", 7)
		}(i)
	}
	wg.Wait()

	accepted := 0
	for _, err := range errs {
		if err == nil {
			accepted++
			continue
		}
		s.ErrorIs(err, model.ErrDuplicateTask)
	}
	s.Equal(1, accepted)
	s.Equal(1, s.scanCount("alice"))
}

// Verification status

func (s *ControllerSuite) TestUpdateStatus() {
	result, err := s.submit("alice", "bob", 0)
	s.Require().NoError(err)

	updated, err := s.controller.UpdateStatus(s.ctx, result.Scan.ID, model.VerificationRejected)
	s.Require().NoError(err)
	s.Equal(model.VerificationRejected, updated.Status)

	// Advisory only: the task stays completed.
	_, err = s.submit("alice", "carol", 0)
	s.ErrorIs(err, model.ErrDuplicateTask)

	_, err = s.controller.UpdateStatus(s.ctx, result.Scan.ID, "maybe")
	s.ErrorIs(err, model.ErrInvalidStatus)

	_, err = s.controller.UpdateStatus(s.ctx, 9999, model.VerificationApproved)
	s.ErrorIs(err, model.ErrScanNotFound)
}
