// internal/game/types.go
//
// Core type definitions for the Klondike engine.
// Defines:
//   - State: the whole table (stock, waste, foundations, tableaus) plus counters.
//   - Pile sizes and counts used throughout the engine.

package game

import "github.com/robalobadob/solitaire/internal/deck"

const (
	NumFoundations = 4
	NumTableaus    = 7
	// FoundationSize is the length of a completed foundation (Ace through King).
	FoundationSize = deck.King
	// dealtCards is 1+2+…+7, the number of cards the triangular deal consumes.
	dealtCards = NumTableaus * (NumTableaus + 1) / 2
)

// State holds one game of Klondike.
// The last element of every pile is its top card.
type State struct {
	Stock          []deck.Card                 `json:"stock"`       // all face-down
	Waste          []deck.Card                 `json:"waste"`       // all face-up
	Foundations    [NumFoundations][]deck.Card `json:"foundations"` // Ace upward, one suit each
	Tableaus       [NumTableaus][]deck.Card    `json:"tableaus"`
	Moves          int                         `json:"moves"`
	Time           int                         `json:"time"` // seconds
	IsGameWon      bool                        `json:"isGameWon"`
	IsTimerRunning bool                        `json:"isTimerRunning"`
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := s
	out.Stock = clonePile(s.Stock)
	out.Waste = clonePile(s.Waste)
	for i := range s.Foundations {
		out.Foundations[i] = clonePile(s.Foundations[i])
	}
	for i := range s.Tableaus {
		out.Tableaus[i] = clonePile(s.Tableaus[i])
	}
	return out
}

// CardCount returns the number of cards across every pile.
func (s State) CardCount() int {
	n := len(s.Stock) + len(s.Waste)
	for _, f := range s.Foundations {
		n += len(f)
	}
	for _, t := range s.Tableaus {
		n += len(t)
	}
	return n
}

func clonePile(p []deck.Card) []deck.Card {
	out := make([]deck.Card, len(p))
	copy(out, p)
	return out
}

func top(p []deck.Card) (deck.Card, bool) {
	if len(p) == 0 {
		return deck.Card{}, false
	}
	return p[len(p)-1], true
}
