package task

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/zn-har/Bingo/internal/model"
	"github.com/zn-har/Bingo/internal/storage/memory"
	"github.com/zn-har/Bingo/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.service = New(s.storage, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) TestSeedDefaultsOnEmptyStore() {
	seeded, err := s.service.SeedDefaults(s.ctx)
	s.Require().NoError(err)
	s.True(seeded)

	tasks, err := s.service.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(tasks, model.BoardCells)
	s.Equal(model.FreeSpaceDescription, tasks[12].Description)
	for i, t := range tasks {
		s.Equal(i, t.Position)
	}
}

func (s *ServiceSuite) TestSeedDefaultsKeepsExistingTasks() {
	_, err := s.service.SeedDefaults(s.ctx)
	s.Require().NoError(err)

	seeded, err := s.service.SeedDefaults(s.ctx)
	s.Require().NoError(err)
	s.False(seeded)

	tasks, err := s.service.List(s.ctx)
	s.Require().NoError(err)
	s.Len(tasks, model.BoardCells)
}

func (s *ServiceSuite) TestReplaceRejectsBadSets() {
	short := model.DefaultTasks()[:24]
	s.ErrorIs(s.service.Replace(s.ctx, short), model.ErrInvalidTaskSet)

	dup := model.DefaultTasks()
	dup[1].Position = 0
	s.ErrorIs(s.service.Replace(s.ctx, dup), model.ErrInvalidTaskSet)

	blank := model.DefaultTasks()
	blank[4].Description = ""
	s.ErrorIs(s.service.Replace(s.ctx, blank), model.ErrInvalidTaskSet)

	tasks, err := s.service.List(s.ctx)
	s.Require().NoError(err)
	s.Empty(tasks)
}
