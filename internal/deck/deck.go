// internal/deck/deck.go
//
// Deck construction and shuffling.
//
// Notes:
//   - New() is deterministic: suit-major (♠ ♥ ♦ ♣), values ascending, all face-down.
//   - Shuffle() never touches its input and takes the random source as a parameter,
//     so tests (and the daily deal) can reproduce a permutation from a seed.

package deck

import (
	"math/rand"
)

// Size is the number of cards in a full deck.
const Size = 52

// Source is the randomness a shuffle draws from. *rand.Rand satisfies it.
type Source interface {
	// Intn returns a uniform value in [0, n).
	Intn(n int) int
}

// processSource defers to the math/rand top-level functions.
type processSource struct{}

func (processSource) Intn(n int) int { return rand.Intn(n) }

// NewSource returns a deterministic Source seeded with seed.
func NewSource(seed int64) Source {
	return rand.New(rand.NewSource(seed))
}

// New builds an ordered 52-card deck.
func New() []Card {
	cards := make([]Card, 0, Size)
	for _, suit := range Suits {
		for value := Ace; value <= King; value++ {
			cards = append(cards, Card{Suit: suit, Value: value})
		}
	}
	return cards
}

// Shuffle returns a uniformly random permutation of cards using Fisher–Yates.
// A nil src uses the process-level source.
func Shuffle(cards []Card, src Source) []Card {
	if src == nil {
		src = processSource{}
	}
	out := make([]Card, len(cards))
	copy(out, cards)
	for i := len(out) - 1; i > 0; i-- {
		j := src.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
