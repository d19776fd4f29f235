package idgen

import (
	"github.com/google/uuid"

	"github.com/zn-har/Bingo/internal/model"
)

// Generator hands out new player identifiers; mocked in tests
type Generator interface {
	PlayerID() model.PlayerID
}

// UUIDGenerator issues random (version 4) UUIDs
type UUIDGenerator struct{}

// New creates a new UUIDGenerator
func New() *UUIDGenerator {
	return &UUIDGenerator{}
}

// PlayerID returns a fresh random identifier
func (g *UUIDGenerator) PlayerID() model.PlayerID {
	return model.PlayerID(uuid.NewString())
}

