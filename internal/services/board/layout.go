package board

import (
	"hash/fnv"
	"math/rand/v2"

	"github.com/zn-har/Bingo/internal/model"
)

// Layout maps a player's display slots to canonical task positions.
// It is a bijection on 0-24 derived only from the player ID, so it is
// never stored and survives restarts.
type Layout struct {
	slots   [model.BoardCells]int // display slot -> canonical position
	display [model.BoardCells]int // canonical position -> display slot
}

// IdentityLayout shows every task at its canonical position
func IdentityLayout() Layout {
	var l Layout
	for i := range l.slots {
		l.slots[i] = i
		l.display[i] = i
	}
	return l
}

// NewLayout builds the layout for a player. When shuffle is false the
// identity layout is returned. A valid freePosition stays at its own slot
// and the other 24 positions are permuted around it.
func NewLayout(id model.PlayerID, freePosition int, shuffle bool) Layout {
	if !shuffle {
		return IdentityLayout()
	}

	movable := make([]int, 0, model.BoardCells)
	for p := 0; p < model.BoardCells; p++ {
		if p != freePosition {
			movable = append(movable, p)
		}
	}

	seed := Seed(id)
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	rng.Shuffle(len(movable), func(i, j int) {
		movable[i], movable[j] = movable[j], movable[i]
	})

	var l Layout
	next := 0
	for slot := 0; slot < model.BoardCells; slot++ {
		canonical := slot
		if slot != freePosition {
			canonical = movable[next]
			next++
		}
		l.slots[slot] = canonical
		l.display[canonical] = slot
	}
	return l
}

// Seed derives the permutation seed from the textual form of the player ID
// (FNV-1a, 64 bit). Not suitable for anything security related.
func Seed(id model.PlayerID) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(id))
	return h.Sum64()
}

// Slot returns the canonical position shown at display slot i
func (l Layout) Slot(i int) int {
	return l.slots[i]
}

// DisplayOf returns the display slot showing canonical position p
func (l Layout) DisplayOf(p int) int {
	return l.display[p]
}

// Slots returns the full display-to-canonical mapping
func (l Layout) Slots() [model.BoardCells]int {
	return l.slots
}
