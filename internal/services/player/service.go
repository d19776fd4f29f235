package player

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/zn-har/Bingo/internal/dependencies/clock"
	"github.com/zn-har/Bingo/internal/dependencies/idgen"
	"github.com/zn-har/Bingo/internal/dependencies/qrcode"
	"github.com/zn-har/Bingo/internal/model"
	"github.com/zn-har/Bingo/internal/storage"
)

// ServiceInterface defines the player operations used by the API layer
type ServiceInterface interface {
	Register(ctx context.Context, name, phone string) (*model.Player, bool, error)
	Get(ctx context.Context, id model.PlayerID) (*model.Player, error)
	QRCode(ctx context.Context, id model.PlayerID) ([]byte, error)
	QRDataURL(player *model.Player) (string, error)
	Scans(ctx context.Context, id model.PlayerID) ([]*model.ScanRecord, error)
}

// Service handles player registration and identity artifacts
type Service struct {
	storage storage.Storage
	ids     idgen.Generator
	qr      qrcode.Encoder
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new player Service
func New(storage storage.Storage, ids idgen.Generator, qr qrcode.Encoder, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		ids:     ids,
		qr:      qr,
		clock:   clock,
		logger:  logger,
	}
}

// Ensure Service implements ServiceInterface
var _ ServiceInterface = (*Service)(nil)

// Register creates a player, or returns the player already holding the
// phone number. The boolean reports whether a new player was created.
func (s *Service) Register(ctx context.Context, name, phone string) (*model.Player, bool, error) {
	name, err := model.NormalizeName(name)
	if err != nil {
		return nil, false, err
	}
	phone, err = model.NormalizePhone(phone)
	if err != nil {
		return nil, false, err
	}

	existing, err := s.storage.GetPlayerByPhone(ctx, phone)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, model.ErrPlayerNotFound) {
		return nil, false, err
	}

	player := &model.Player{
		ID:        s.ids.PlayerID(),
		Name:      name,
		Phone:     phone,
		CreatedAt: s.clock.Now(),
	}
	if err := s.storage.CreatePlayer(ctx, player); err != nil {
		if errors.Is(err, model.ErrPhoneTaken) {
			// Lost a race with a concurrent registration of the same phone.
			existing, err := s.storage.GetPlayerByPhone(ctx, phone)
			if err != nil {
				return nil, false, err
			}
			return existing, false, nil
		}
		s.logger.Error("failed to create player",
			slog.String("error", err.Error()),
		)
		return nil, false, err
	}

	s.logger.Info("player registered",
		slog.String("player_id", string(player.ID)),
	)
	return player, true, nil
}

// Get returns a player by ID
func (s *Service) Get(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	return s.storage.GetPlayer(ctx, id)
}

// QRCode renders the PNG QR code encoding the player's ID
func (s *Service) QRCode(ctx context.Context, id model.PlayerID) ([]byte, error) {
	player, err := s.storage.GetPlayer(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.encode(player)
}

// QRDataURL renders the player's QR code as a PNG data URL
func (s *Service) QRDataURL(player *model.Player) (string, error) {
	png, err := s.encode(player)
	if err != nil {
		return "", err
	}
	return qrcode.DataURL(png), nil
}

func (s *Service) encode(player *model.Player) ([]byte, error) {
	png, err := s.qr.PNG(string(player.ID))
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}
	return png, nil
}

// Scans returns the scans a player made, newest first
func (s *Service) Scans(ctx context.Context, id model.PlayerID) ([]*model.ScanRecord, error) {
	if _, err := s.storage.GetPlayer(ctx, id); err != nil {
		return nil, err
	}
	return s.storage.ListScansByScanner(ctx, id)
}
