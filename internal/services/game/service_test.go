package game

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/zn-har/Bingo/internal/dependencies/mocks"
	"github.com/zn-har/Bingo/internal/model"
	"github.com/zn-har/Bingo/internal/storage"
	"github.com/zn-har/Bingo/internal/storage/memory"
	"github.com/zn-har/Bingo/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC))
	s.service = New(s.storage, s.clock, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) TestStatusDefaults() {
	status, err := s.service.Status(s.ctx)
	s.Require().NoError(err)
	s.True(status.State.GameActive)
	s.Equal(model.DefaultMaxWinners, status.State.MaxWinners)
	s.True(status.State.AllowDuplicateTargets)
	s.Equal(0, status.WinnerCount)
}

func (s *ServiceSuite) TestInitOnlyOnce() {
	s.Require().NoError(s.service.Init(s.ctx, 5, false))
	s.Require().NoError(s.service.Init(s.ctx, 8, true))

	status, err := s.service.Status(s.ctx)
	s.Require().NoError(err)
	s.Equal(5, status.State.MaxWinners)
	s.False(status.State.AllowDuplicateTargets)

	s.ErrorIs(s.service.Init(s.ctx, 0, true), model.ErrInvalidMaxWinners)
}

func (s *ServiceSuite) TestUpdatePartial() {
	s.Require().NoError(s.service.Init(s.ctx, 10, true))
	s.clock.Advance(time.Minute)

	inactive := false
	status, err := s.service.Update(s.ctx, model.GameStateUpdate{GameActive: &inactive})
	s.Require().NoError(err)
	s.False(status.State.GameActive)
	s.Equal(10, status.State.MaxWinners)
	s.True(s.clock.Now().Equal(status.State.UpdatedAt))

	stored, err := s.storage.GetGameState(s.ctx)
	s.Require().NoError(err)
	s.False(stored.GameActive)
}

func (s *ServiceSuite) TestUpdateRejectsInvalidMaxWinners() {
	zero := 0
	_, err := s.service.Update(s.ctx, model.GameStateUpdate{MaxWinners: &zero})
	s.ErrorIs(err, model.ErrInvalidMaxWinners)
}

func (s *ServiceSuite) addWinners(ids ...model.PlayerID) {
	err := s.storage.UpdateLedger(s.ctx, func(tx storage.LedgerTx) error {
		for _, id := range ids {
			if err := tx.AddWinner(s.ctx, &model.Winner{PlayerID: id, WinType: model.WinRow, WonAt: s.clock.Now()}); err != nil {
				return err
			}
		}
		return nil
	})
	s.Require().NoError(err)
}

func (s *ServiceSuite) TestUpdateLoweringQuotaEndsGame() {
	s.Require().NoError(s.service.Init(s.ctx, 10, true))
	s.addWinners("a", "b", "c")

	maxWinners := 3
	status, err := s.service.Update(s.ctx, model.GameStateUpdate{MaxWinners: &maxWinners})
	s.Require().NoError(err)
	s.False(status.State.GameActive)
	s.Equal(3, status.WinnerCount)

	stored, err := s.storage.GetGameState(s.ctx)
	s.Require().NoError(err)
	s.False(stored.GameActive)
}

func (s *ServiceSuite) TestUpdateCannotReopenWhileQuotaMet() {
	s.Require().NoError(s.service.Init(s.ctx, 2, true))
	s.addWinners("a", "b")

	active := true
	status, err := s.service.Update(s.ctx, model.GameStateUpdate{GameActive: &active})
	s.Require().NoError(err)
	s.False(status.State.GameActive)

	maxWinners := 3
	status, err = s.service.Update(s.ctx, model.GameStateUpdate{GameActive: &active, MaxWinners: &maxWinners})
	s.Require().NoError(err)
	s.True(status.State.GameActive)
	s.Equal(3, status.State.MaxWinners)
}

func (s *ServiceSuite) TestWinnersCarryNames() {
	s.Require().NoError(s.storage.CreatePlayer(s.ctx, &model.Player{ID: "a", Name: "Asha", Phone: "1111111111"}))
	s.Require().NoError(s.storage.CreatePlayer(s.ctx, &model.Player{ID: "b", Name: "Bilal", Phone: "2222222222"}))
	err := s.storage.UpdateLedger(s.ctx, func(tx storage.LedgerTx) error {
		if err := tx.AddWinner(s.ctx, &model.Winner{PlayerID: "b", WinType: model.WinBingo, WonAt: s.clock.Now()}); err != nil {
			return err
		}
		return tx.AddWinner(s.ctx, &model.Winner{PlayerID: "a", WinType: model.WinBingo, WonAt: s.clock.Now().Add(time.Second)})
	})
	s.Require().NoError(err)

	entries, err := s.service.Winners(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	s.Equal("Bilal", entries[0].PlayerName)
	s.Equal("Asha", entries[1].PlayerName)

	status, err := s.service.Status(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, status.WinnerCount)
}
