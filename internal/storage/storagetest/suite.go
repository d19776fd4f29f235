// Package storagetest holds the behaviour every storage backend must share.
package storagetest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/zn-har/Bingo/internal/model"
	"github.com/zn-har/Bingo/internal/storage"
)

// Suite runs the storage conformance tests against the backend returned by
// NewStorage. Backends embed or run it from their own package tests.
type Suite struct {
	suite.Suite

	// NewStorage returns a fresh, empty backend for each test
	NewStorage func() storage.Storage

	Storage storage.Storage
	Ctx     context.Context
}

var baseTime = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func (s *Suite) SetupTest() {
	s.Storage = s.NewStorage()
	s.Ctx = context.Background()
}

func (s *Suite) TearDownTest() {
	if c, ok := s.Storage.(storage.Closer); ok {
		_ = c.Close()
	}
}

func (s *Suite) createPlayer(id model.PlayerID, phone string) *model.Player {
	p := &model.Player{ID: id, Name: "Player " + string(id), Phone: phone, CreatedAt: baseTime}
	s.Require().NoError(s.Storage.CreatePlayer(s.Ctx, p))
	return p
}

func (s *Suite) seedTasks() []*model.Task {
	tasks := model.DefaultTasks()
	s.Require().NoError(s.Storage.SaveTasks(s.Ctx, tasks))
	return tasks
}

func (s *Suite) scan(scanner, target model.PlayerID, task model.TaskID, at time.Time) *model.ScanRecord {
	return &model.ScanRecord{ScannerID: scanner, TargetID: target, TaskID: task, Timestamp: at}
}

// Player tests

func (s *Suite) TestCreateAndGetPlayer() {
	p := s.createPlayer("p1", "5551234567")

	got, err := s.Storage.GetPlayer(s.Ctx, "p1")
	s.Require().NoError(err)
	s.Equal(p.Name, got.Name)
	s.Equal(p.Phone, got.Phone)
	s.True(p.CreatedAt.Equal(got.CreatedAt))

	byPhone, err := s.Storage.GetPlayerByPhone(s.Ctx, "5551234567")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("p1"), byPhone.ID)
}

func (s *Suite) TestGetPlayerNotFound() {
	_, err := s.Storage.GetPlayer(s.Ctx, "missing")
	s.ErrorIs(err, model.ErrPlayerNotFound)

	_, err = s.Storage.GetPlayerByPhone(s.Ctx, "0000000000")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestCreatePlayerPhoneTaken() {
	s.createPlayer("p1", "5551234567")

	err := s.Storage.CreatePlayer(s.Ctx, &model.Player{ID: "p2", Name: "Other", Phone: "5551234567", CreatedAt: baseTime})
	s.ErrorIs(err, model.ErrPhoneTaken)

	_, err = s.Storage.GetPlayer(s.Ctx, "p2")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

// Task tests

func (s *Suite) TestSaveAndListTasks() {
	tasks := s.seedTasks()
	for _, t := range tasks {
		s.NotZero(t.ID)
	}

	listed, err := s.Storage.ListTasks(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(listed, model.BoardCells)
	for i, t := range listed {
		s.Equal(i, t.Position)
	}

	got, err := s.Storage.GetTask(s.Ctx, tasks[3].ID)
	s.Require().NoError(err)
	s.Equal(tasks[3].Description, got.Description)
}

func (s *Suite) TestSaveTasksUpdatesExisting() {
	tasks := s.seedTasks()
	tasks[0].Description = "Find someone wearing a hat"
	s.Require().NoError(s.Storage.SaveTasks(s.Ctx, tasks[:1]))

	got, err := s.Storage.GetTask(s.Ctx, tasks[0].ID)
	s.Require().NoError(err)
	s.Equal("Find someone wearing a hat", got.Description)

	listed, err := s.Storage.ListTasks(s.Ctx)
	s.Require().NoError(err)
	s.Len(listed, model.BoardCells)
}

func (s *Suite) TestGetTaskNotFound() {
	_, err := s.Storage.GetTask(s.Ctx, 9999)
	s.ErrorIs(err, model.ErrTaskNotFound)
}

// Scan tests

func (s *Suite) TestCreateAndGetScan() {
	tasks := s.seedTasks()
	s.createPlayer("a", "1111111111")
	s.createPlayer("b", "2222222222")

	sc := s.scan("a", "b", tasks[0].ID, baseTime)
	s.Require().NoError(s.Storage.CreateScan(s.Ctx, sc, true))
	s.NotZero(sc.ID)
	s.Equal(model.VerificationPending, sc.Status)

	got, err := s.Storage.GetScan(s.Ctx, sc.ID)
	s.Require().NoError(err)
	s.Equal(model.PlayerID("a"), got.ScannerID)
	s.Equal(model.PlayerID("b"), got.TargetID)
	s.Equal(tasks[0].ID, got.TaskID)
	s.Equal(model.VerificationPending, got.Status)
	s.True(baseTime.Equal(got.Timestamp))
}

func (s *Suite) TestGetScanNotFound() {
	_, err := s.Storage.GetScan(s.Ctx, 9999)
	s.ErrorIs(err, model.ErrScanNotFound)
}

func (s *Suite) TestCreateScanDuplicateTask() {
	tasks := s.seedTasks()

	s.Require().NoError(s.Storage.CreateScan(s.Ctx, s.scan("a", "b", tasks[0].ID, baseTime), false))
	err := s.Storage.CreateScan(s.Ctx, s.scan("a", "c", tasks[0].ID, baseTime), false)
	s.ErrorIs(err, model.ErrDuplicateTask)

	// Another scanner may complete the same task
	s.NoError(s.Storage.CreateScan(s.Ctx, s.scan("b", "a", tasks[0].ID, baseTime), false))
}

func (s *Suite) TestCreateScanDuplicateTargetWhenUnique() {
	tasks := s.seedTasks()

	s.Require().NoError(s.Storage.CreateScan(s.Ctx, s.scan("a", "b", tasks[0].ID, baseTime), true))
	err := s.Storage.CreateScan(s.Ctx, s.scan("a", "b", tasks[1].ID, baseTime), true)
	s.ErrorIs(err, model.ErrDuplicateTarget)

	done, err := s.Storage.HasCompletedTask(s.Ctx, "a", tasks[1].ID)
	s.Require().NoError(err)
	s.False(done)
}

func (s *Suite) TestCreateScanSameTargetAllowed() {
	tasks := s.seedTasks()

	s.Require().NoError(s.Storage.CreateScan(s.Ctx, s.scan("a", "b", tasks[0].ID, baseTime), false))
	s.NoError(s.Storage.CreateScan(s.Ctx, s.scan("a", "b", tasks[1].ID, baseTime), false))

	scanned, err := s.Storage.HasScannedTarget(s.Ctx, "a", "b")
	s.Require().NoError(err)
	s.True(scanned)
}

func (s *Suite) TestCreateScanConcurrentSameTask() {
	tasks := s.seedTasks()

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := range attempts {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			target := model.PlayerID(fmt.Sprintf("t%d", i))
			errs[i] = s.Storage.CreateScan(s.Ctx, s.scan("a", target, tasks[5].ID, baseTime), false)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		s.ErrorIs(err, model.ErrDuplicateTask)
	}
	s.Equal(1, succeeded)

	scans, err := s.Storage.ListScansByScanner(s.Ctx, "a")
	s.Require().NoError(err)
	s.Len(scans, 1)
}

func (s *Suite) TestCreateScanRejectedOnceGameEnded() {
	tasks := s.seedTasks()
	s.Require().NoError(s.Storage.CreateScan(s.Ctx, s.scan("a", "b", tasks[0].ID, baseTime), false))

	err := s.Storage.UpdateLedger(s.Ctx, func(tx storage.LedgerTx) error {
		state, err := tx.GetGameState(s.Ctx)
		if err != nil {
			return err
		}
		state.GameActive = false
		return tx.SaveGameState(s.Ctx, state)
	})
	s.Require().NoError(err)

	late := s.scan("a", "c", tasks[1].ID, baseTime.Add(time.Minute))
	s.ErrorIs(s.Storage.CreateScan(s.Ctx, late, false), model.ErrGameEnded)

	completed, err := s.Storage.HasCompletedTask(s.Ctx, "a", tasks[1].ID)
	s.Require().NoError(err)
	s.False(completed)
	scans, err := s.Storage.ListScansByScanner(s.Ctx, "a")
	s.Require().NoError(err)
	s.Len(scans, 1)
}

func (s *Suite) TestListScansByScannerNewestFirst() {
	tasks := s.seedTasks()

	s.Require().NoError(s.Storage.CreateScan(s.Ctx, s.scan("a", "b", tasks[0].ID, baseTime), false))
	s.Require().NoError(s.Storage.CreateScan(s.Ctx, s.scan("a", "c", tasks[1].ID, baseTime.Add(2*time.Minute)), false))
	s.Require().NoError(s.Storage.CreateScan(s.Ctx, s.scan("a", "d", tasks[2].ID, baseTime.Add(time.Minute)), false))
	s.Require().NoError(s.Storage.CreateScan(s.Ctx, s.scan("b", "a", tasks[3].ID, baseTime), false))

	scans, err := s.Storage.ListScansByScanner(s.Ctx, "a")
	s.Require().NoError(err)
	s.Require().Len(scans, 3)
	s.Equal(tasks[1].ID, scans[0].TaskID)
	s.Equal(tasks[2].ID, scans[1].TaskID)
	s.Equal(tasks[0].ID, scans[2].TaskID)

	none, err := s.Storage.ListScansByScanner(s.Ctx, "nobody")
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *Suite) TestUpdateScanStatus() {
	tasks := s.seedTasks()
	sc := s.scan("a", "b", tasks[0].ID, baseTime)
	s.Require().NoError(s.Storage.CreateScan(s.Ctx, sc, false))

	s.Require().NoError(s.Storage.UpdateScanStatus(s.Ctx, sc.ID, model.VerificationApproved))

	got, err := s.Storage.GetScan(s.Ctx, sc.ID)
	s.Require().NoError(err)
	s.Equal(model.VerificationApproved, got.Status)

	s.ErrorIs(s.Storage.UpdateScanStatus(s.Ctx, 9999, model.VerificationRejected), model.ErrScanNotFound)
}

func (s *Suite) TestCompletedPositions() {
	tasks := s.seedTasks()

	positions, err := s.Storage.CompletedPositions(s.Ctx, "a")
	s.Require().NoError(err)
	s.Empty(positions)

	for _, i := range []int{7, 2, 19} {
		target := model.PlayerID(fmt.Sprintf("t%d", i))
		s.Require().NoError(s.Storage.CreateScan(s.Ctx, s.scan("a", target, tasks[i].ID, baseTime), false))
	}

	positions, err = s.Storage.CompletedPositions(s.Ctx, "a")
	s.Require().NoError(err)
	s.Equal([]int{2, 7, 19}, positions)
}

// Game state tests

func (s *Suite) TestGameStateDefaults() {
	state, err := s.Storage.GetGameState(s.Ctx)
	s.Require().NoError(err)
	s.True(state.GameActive)
	s.Equal(model.DefaultMaxWinners, state.MaxWinners)
	s.Equal(model.DefaultAllowDuplicateTargets, state.AllowDuplicateTargets)
}

func (s *Suite) TestInitGameStateOnlyOnce() {
	first := &model.GameState{GameActive: true, MaxWinners: 3, AllowDuplicateTargets: false, UpdatedAt: baseTime}
	created, err := s.Storage.InitGameState(s.Ctx, first)
	s.Require().NoError(err)
	s.True(created)

	second := &model.GameState{GameActive: true, MaxWinners: 7, AllowDuplicateTargets: true, UpdatedAt: baseTime}
	created, err = s.Storage.InitGameState(s.Ctx, second)
	s.Require().NoError(err)
	s.False(created)

	state, err := s.Storage.GetGameState(s.Ctx)
	s.Require().NoError(err)
	s.Equal(3, state.MaxWinners)
	s.False(state.AllowDuplicateTargets)
}

func (s *Suite) TestSaveGameState() {
	state := &model.GameState{GameActive: false, MaxWinners: 4, AllowDuplicateTargets: true, UpdatedAt: baseTime}
	s.Require().NoError(s.Storage.SaveGameState(s.Ctx, state))

	got, err := s.Storage.GetGameState(s.Ctx)
	s.Require().NoError(err)
	s.False(got.GameActive)
	s.Equal(4, got.MaxWinners)
	s.True(baseTime.Equal(got.UpdatedAt))
}

// Ledger tests

func (s *Suite) addWins(winners ...*model.Winner) error {
	return s.Storage.UpdateLedger(s.Ctx, func(tx storage.LedgerTx) error {
		for _, w := range winners {
			if err := tx.AddWinner(s.Ctx, w); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Suite) TestLedgerAddsWinners() {
	s.Require().NoError(s.addWins(
		&model.Winner{PlayerID: "a", WinType: model.WinRow, WonAt: baseTime},
		&model.Winner{PlayerID: "a", WinType: model.WinColumn, WonAt: baseTime.Add(time.Second)},
		&model.Winner{PlayerID: "b", WinType: model.WinRow, WonAt: baseTime.Add(2 * time.Second)},
	))

	winners, err := s.Storage.ListWinners(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(winners, 3)
	s.Equal(model.PlayerID("a"), winners[0].PlayerID)
	s.Equal(model.WinRow, winners[0].WinType)
	s.Equal(model.PlayerID("b"), winners[2].PlayerID)
	for _, w := range winners {
		s.NotZero(w.ID)
	}

	count, err := s.Storage.CountDistinctWinners(s.Ctx)
	s.Require().NoError(err)
	s.Equal(2, count)
}

func (s *Suite) TestLedgerRejectsDuplicateWin() {
	s.Require().NoError(s.addWins(&model.Winner{PlayerID: "a", WinType: model.WinRow, WonAt: baseTime}))

	err := s.addWins(&model.Winner{PlayerID: "a", WinType: model.WinRow, WonAt: baseTime})
	s.ErrorIs(err, model.ErrDuplicateWin)

	winners, err := s.Storage.ListWinners(s.Ctx)
	s.Require().NoError(err)
	s.Len(winners, 1)
}

func (s *Suite) TestLedgerRollsBackOnError() {
	boom := fmt.Errorf("boom")
	err := s.Storage.UpdateLedger(s.Ctx, func(tx storage.LedgerTx) error {
		if err := tx.AddWinner(s.Ctx, &model.Winner{PlayerID: "a", WinType: model.WinFull, WonAt: baseTime}); err != nil {
			return err
		}
		state, err := tx.GetGameState(s.Ctx)
		if err != nil {
			return err
		}
		state.GameActive = false
		if err := tx.SaveGameState(s.Ctx, state); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)

	winners, err := s.Storage.ListWinners(s.Ctx)
	s.Require().NoError(err)
	s.Empty(winners)

	state, err := s.Storage.GetGameState(s.Ctx)
	s.Require().NoError(err)
	s.True(state.GameActive)
}

func (s *Suite) TestLedgerSeesOwnWrites() {
	err := s.Storage.UpdateLedger(s.Ctx, func(tx storage.LedgerTx) error {
		if err := tx.AddWinner(s.Ctx, &model.Winner{PlayerID: "a", WinType: model.WinRow, WonAt: baseTime}); err != nil {
			return err
		}
		has, err := tx.HasWin(s.Ctx, "a", model.WinRow)
		s.Require().NoError(err)
		s.True(has)

		count, err := tx.CountDistinctWinners(s.Ctx)
		s.Require().NoError(err)
		s.Equal(1, count)

		state, err := tx.GetGameState(s.Ctx)
		s.Require().NoError(err)
		state.GameActive = false
		s.Require().NoError(tx.SaveGameState(s.Ctx, state))

		reread, err := tx.GetGameState(s.Ctx)
		s.Require().NoError(err)
		s.False(reread.GameActive)
		return nil
	})
	s.Require().NoError(err)

	state, err := s.Storage.GetGameState(s.Ctx)
	s.Require().NoError(err)
	s.False(state.GameActive)
}

func (s *Suite) TestLedgerConcurrentQuota() {
	// Each goroutine plays the winner-recording step for its own player and
	// closes the game once two distinct winners exist.
	state := &model.GameState{GameActive: true, MaxWinners: 2, AllowDuplicateTargets: true, UpdatedAt: baseTime}
	_, err := s.Storage.InitGameState(s.Ctx, state)
	s.Require().NoError(err)

	const players = 6
	var wg sync.WaitGroup
	errs := make([]error, players)
	for i := range players {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := model.PlayerID(fmt.Sprintf("p%d", i))
			errs[i] = s.Storage.UpdateLedger(s.Ctx, func(tx storage.LedgerTx) error {
				gs, err := tx.GetGameState(s.Ctx)
				if err != nil {
					return err
				}
				if !gs.GameActive {
					return nil
				}
				if err := tx.AddWinner(s.Ctx, &model.Winner{PlayerID: id, WinType: model.WinRow, WonAt: baseTime}); err != nil {
					return err
				}
				count, err := tx.CountDistinctWinners(s.Ctx)
				if err != nil {
					return err
				}
				if gs.QuotaReached(count) {
					gs.GameActive = false
					return tx.SaveGameState(s.Ctx, gs)
				}
				return nil
			})
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		s.NoError(err)
	}

	count, err := s.Storage.CountDistinctWinners(s.Ctx)
	s.Require().NoError(err)
	s.Equal(2, count)

	final, err := s.Storage.GetGameState(s.Ctx)
	s.Require().NoError(err)
	s.False(final.GameActive)
}
