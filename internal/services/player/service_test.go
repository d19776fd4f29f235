package player

import (
	"context"
	"errors"
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
	ids     *mocks.MockIDGenerator
	qr      *mocks.MockQREncoder
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.ids = mocks.NewMockIDGenerator()
	s.qr = mocks.NewMockQREncoder()
	s.clock = mocks.NewMockClock(time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC))
	s.service = New(s.storage, s.ids, s.qr, s.clock, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) TestRegisterCreatesPlayer() {
	s.ids.Queue("p-1")

	player, created, err := s.service.Register(s.ctx, "  Asha  ", "(555) 123-4567")
	s.Require().NoError(err)
	s.True(created)
	s.Equal(model.PlayerID("p-1"), player.ID)
	s.Equal("Asha", player.Name)
	s.Equal("5551234567", player.Phone)
	s.True(s.clock.Now().Equal(player.CreatedAt))

	stored, err := s.storage.GetPlayer(s.ctx, "p-1")
	s.Require().NoError(err)
	s.Equal("Asha", stored.Name)
}

func (s *ServiceSuite) TestRegisterExistingPhoneReturnsSamePlayer() {
	first, created, err := s.service.Register(s.ctx, "Asha", "5551234567")
	s.Require().NoError(err)
	s.True(created)

	second, created, err := s.service.Register(s.ctx, "Someone Else", "555-123-4567")
	s.Require().NoError(err)
	s.False(created)
	s.Equal(first.ID, second.ID)
	s.Equal("Asha", second.Name)
}

func (s *ServiceSuite) TestRegisterValidation() {
	_, _, err := s.service.Register(s.ctx, "Asha", "12345")
	s.ErrorIs(err, model.ErrInvalidPhone)

	_, _, err = s.service.Register(s.ctx, "Asha", "+91 98765 43210")
	s.ErrorIs(err, model.ErrInvalidPhone)

	_, _, err = s.service.Register(s.ctx, "   ", "5551234567")
	s.ErrorIs(err, model.ErrInvalidName)
}

func (s *ServiceSuite) TestQRCodeEncodesPlayerID() {
	s.ids.Queue("p-42")
	player, _, err := s.service.Register(s.ctx, "Asha", "5551234567")
	s.Require().NoError(err)

	png, err := s.service.QRCode(s.ctx, player.ID)
	s.Require().NoError(err)
	s.Equal([]byte("png"), png)
	s.Equal([]string{"p-42"}, s.qr.Encoded)

	url, err := s.service.QRDataURL(player)
	s.Require().NoError(err)
	s.Equal("data:image/png;base64,cG5n", url)
}

func (s *ServiceSuite) TestQRCodeUnknownPlayer() {
	_, err := s.service.QRCode(s.ctx, "missing")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *ServiceSuite) TestQRCodeEncoderFailure() {
	boom := errors.New("boom")
	s.qr.Err = boom
	_, err := s.service.QRDataURL(&model.Player{ID: "p-1"})
	s.ErrorIs(err, boom)
}

func (s *ServiceSuite) TestScans() {
	player, _, err := s.service.Register(s.ctx, "Asha", "5551234567")
	s.Require().NoError(err)

	scans, err := s.service.Scans(s.ctx, player.ID)
	s.Require().NoError(err)
	s.Empty(scans)

	_, err = s.service.Scans(s.ctx, "missing")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}
