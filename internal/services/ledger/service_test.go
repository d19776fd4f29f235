package ledger

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/zn-har/Bingo/internal/dependencies/mocks"
	"github.com/zn-har/Bingo/internal/model"
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
	s.clock = mocks.NewMockClock(time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC))
	s.service = New(s.storage, s.clock, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) initGame(maxWinners int) {
	state := model.NewGameState(s.clock.Now())
	state.MaxWinners = maxWinners
	_, err := s.storage.InitGameState(s.ctx, state)
	s.Require().NoError(err)
}

func progress(wins ...model.WinType) model.Progress {
	return model.Progress{WinTypes: wins, Bingo: len(wins) > 0}
}

func (s *ServiceSuite) TestRecordNoWins() {
	result, err := s.service.Record(s.ctx, "alice", progress())
	s.Require().NoError(err)
	s.Empty(result.NewWins)
	s.True(result.GameActive)
	s.Equal(0, result.WinnerCount)
}

func (s *ServiceSuite) TestRecordNewWins() {
	result, err := s.service.Record(s.ctx, "alice", progress(model.WinRow, model.WinDiagonal))
	s.Require().NoError(err)
	s.Equal([]model.WinType{model.WinRow, model.WinDiagonal}, result.NewWins)
	s.Equal(1, result.WinnerCount)

	winners, err := s.storage.ListWinners(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(winners, 2)
	s.True(s.clock.Now().Equal(winners[0].WonAt))
}

func (s *ServiceSuite) TestRecordOnlyReportsUnrecordedWins() {
	_, err := s.service.Record(s.ctx, "alice", progress(model.WinRow))
	s.Require().NoError(err)

	result, err := s.service.Record(s.ctx, "alice", progress(model.WinRow, model.WinColumn))
	s.Require().NoError(err)
	s.Equal([]model.WinType{model.WinColumn}, result.NewWins)

	again, err := s.service.Record(s.ctx, "alice", progress(model.WinRow, model.WinColumn))
	s.Require().NoError(err)
	s.Empty(again.NewWins)

	winners, err := s.storage.ListWinners(s.ctx)
	s.Require().NoError(err)
	s.Len(winners, 2)
}

func (s *ServiceSuite) TestQuotaEndsGame() {
	s.initGame(2)

	first, err := s.service.Record(s.ctx, "alice", progress(model.WinBingo))
	s.Require().NoError(err)
	s.True(first.GameActive)
	s.False(first.GameEnded)

	second, err := s.service.Record(s.ctx, "bob", progress(model.WinBingo))
	s.Require().NoError(err)
	s.False(second.GameActive)
	s.True(second.GameEnded)
	s.Equal(2, second.WinnerCount)

	state, err := s.storage.GetGameState(s.ctx)
	s.Require().NoError(err)
	s.False(state.GameActive)
}

func (s *ServiceSuite) TestSecondWinTypeDoesNotCountTwice() {
	s.initGame(2)

	_, err := s.service.Record(s.ctx, "alice", progress(model.WinRow))
	s.Require().NoError(err)
	result, err := s.service.Record(s.ctx, "alice", progress(model.WinRow, model.WinColumn))
	s.Require().NoError(err)
	s.Equal(1, result.WinnerCount)
	s.True(result.GameActive)
}

func (s *ServiceSuite) TestNothingRecordedAfterGameEnds() {
	s.initGame(1)

	_, err := s.service.Record(s.ctx, "alice", progress(model.WinBingo))
	s.Require().NoError(err)

	late, err := s.service.Record(s.ctx, "bob", progress(model.WinBingo))
	s.Require().NoError(err)
	s.Empty(late.NewWins)
	s.False(late.GameActive)
	s.False(late.GameEnded)
	s.Equal(1, late.WinnerCount)

	count, err := s.storage.CountDistinctWinners(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, count)
}

func (s *ServiceSuite) TestQuotaMetOnEntryEndsGameWithoutRecording() {
	s.initGame(5)
	for _, id := range []model.PlayerID{"alice", "bob", "carol"} {
		_, err := s.service.Record(s.ctx, id, progress(model.WinRow))
		s.Require().NoError(err)
	}

	// Quota lowered below the winner count while the game is still open
	state, err := s.storage.GetGameState(s.ctx)
	s.Require().NoError(err)
	state.MaxWinners = 3
	s.Require().NoError(s.storage.SaveGameState(s.ctx, state))

	result, err := s.service.Record(s.ctx, "dave", progress(model.WinRow))
	s.Require().NoError(err)
	s.Empty(result.NewWins)
	s.False(result.GameActive)
	s.True(result.GameEnded)
	s.Equal(3, result.WinnerCount)
	s.Equal(3, result.MaxWinners)

	count, err := s.storage.CountDistinctWinners(s.ctx)
	s.Require().NoError(err)
	s.Equal(3, count)
	stored, err := s.storage.GetGameState(s.ctx)
	s.Require().NoError(err)
	s.False(stored.GameActive)
}

func (s *ServiceSuite) TestConcurrentWinnersNeverExceedQuota() {
	s.initGame(3)

	const players = 12
	var wg sync.WaitGroup
	ended := make(chan bool, players)
	for i := range players {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := s.service.Record(s.ctx, model.PlayerID(fmt.Sprintf("p%d", i)), progress(model.WinBingo))
			if err == nil {
				ended <- result.GameEnded
			}
		}(i)
	}
	wg.Wait()
	close(ended)

	endings := 0
	for e := range ended {
		if e {
			endings++
		}
	}
	s.Equal(1, endings)

	count, err := s.storage.CountDistinctWinners(s.ctx)
	s.Require().NoError(err)
	s.Equal(3, count)
}
