package model

import "time"

// GameStateKey is the fixed key of the singleton game state
const GameStateKey = 1

const (
	DefaultMaxWinners            = 10
	DefaultAllowDuplicateTargets = true
)

// GameState is the singleton record controlling whether scans are accepted
type GameState struct {
	GameActive            bool
	MaxWinners            int
	AllowDuplicateTargets bool
	UpdatedAt             time.Time
}

// NewGameState returns the state a game starts in
func NewGameState(now time.Time) *GameState {
	return &GameState{
		GameActive:            true,
		MaxWinners:            DefaultMaxWinners,
		AllowDuplicateTargets: DefaultAllowDuplicateTargets,
		UpdatedAt:             now,
	}
}

// QuotaReached reports whether winnerCount distinct winners end the game
func (g *GameState) QuotaReached(winnerCount int) bool {
	return winnerCount >= g.MaxWinners
}

// GameStateUpdate carries an admin override; nil fields are left unchanged
type GameStateUpdate struct {
	GameActive            *bool
	MaxWinners            *int
	AllowDuplicateTargets *bool
}

// Apply copies the set fields onto g
func (u GameStateUpdate) Apply(g *GameState) {
	if u.GameActive != nil {
		g.GameActive = *u.GameActive
	}
	if u.MaxWinners != nil {
		g.MaxWinners = *u.MaxWinners
	}
	if u.AllowDuplicateTargets != nil {
		g.AllowDuplicateTargets = *u.AllowDuplicateTargets
	}
}
