package mocks

import (
	"fmt"
	"sync"

	"github.com/zn-har/Bingo/internal/dependencies/idgen"
	"github.com/zn-har/Bingo/internal/model"
)

// MockIDGenerator is a mock implementation of Generator for testing
type MockIDGenerator struct {
	mu sync.Mutex

	// Queued is a queue of IDs to hand out before falling back to a counter
	Queued []model.PlayerID
	index  int
	next   int
}

// Ensure MockIDGenerator implements Generator
var _ idgen.Generator = (*MockIDGenerator)(nil)

// NewMockIDGenerator creates a new MockIDGenerator
func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

// PlayerID returns the next queued ID, or "player-N" once the queue is drained
func (g *MockIDGenerator) PlayerID() model.PlayerID {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.index < len(g.Queued) {
		id := g.Queued[g.index]
		g.index++
		return id
	}
	g.next++
	return model.PlayerID(fmt.Sprintf("player-%d", g.next))
}

// Queue adds IDs to the result queue
func (g *MockIDGenerator) Queue(ids ...model.PlayerID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Queued = append(g.Queued, ids...)
}
