package board

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zn-har/Bingo/internal/model"
)

func assertBijection(t *testing.T, l Layout) {
	t.Helper()
	seen := map[int]bool{}
	for slot := 0; slot < model.BoardCells; slot++ {
		canonical := l.Slot(slot)
		assert.True(t, IsValidPosition(canonical))
		assert.False(t, seen[canonical], "canonical %d shown twice", canonical)
		seen[canonical] = true
		assert.Equal(t, slot, l.DisplayOf(canonical))
	}
	assert.Len(t, seen, model.BoardCells)
}

func TestLayoutDeterministic(t *testing.T) {
	id := model.PlayerID("0f8fad5b-d9cb-469f-a165-70867728950e")
	assert.Equal(t, NewLayout(id, 12, true).Slots(), NewLayout(id, 12, true).Slots())
	assert.Equal(t, Seed(id), Seed(id))
}

func TestLayoutDiffersAcrossPlayers(t *testing.T) {
	a := NewLayout("7c9e6679-7425-40de-944b-e07fc1f90ae7", 12, true)
	b := NewLayout("e4eaaaf2-d142-11e1-b3e4-080027620cdd", 12, true)
	assert.NotEqual(t, a.Slots(), b.Slots())
}

func TestLayoutIsBijection(t *testing.T) {
	for _, id := range []model.PlayerID{"a", "b", "player-3", "0f8fad5b-d9cb-469f-a165-70867728950e"} {
		assertBijection(t, NewLayout(id, 12, true))
		assertBijection(t, NewLayout(id, model.NoFreePosition, true))
	}
}

func TestLayoutPinsFreePosition(t *testing.T) {
	for _, free := range []int{0, 12, 24} {
		l := NewLayout("player-1", free, true)
		assert.Equal(t, free, l.Slot(free))
		assert.Equal(t, free, l.DisplayOf(free))
	}
}

func TestLayoutWithoutShuffleIsIdentity(t *testing.T) {
	l := NewLayout("player-1", 12, false)
	assert.Equal(t, IdentityLayout().Slots(), l.Slots())
	for i := 0; i < model.BoardCells; i++ {
		assert.Equal(t, i, l.Slot(i))
	}
}
