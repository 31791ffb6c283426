package game

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/robalobadob/solitaire/internal/deck"
)

func TestCanPlaceOnTableau(t *testing.T) {
	cases := []struct {
		name string
		card deck.Card
		pile []deck.Card
		want bool
	}{
		{"king on empty", up(deck.Spades, deck.King), nil, true},
		{"queen on empty", up(deck.Hearts, deck.Queen), nil, false},
		{"red on black, one lower", up(deck.Diamonds, 9), []deck.Card{up(deck.Clubs, 10)}, true},
		{"black on red, one lower", up(deck.Spades, 9), []deck.Card{up(deck.Hearts, 10)}, true},
		{"same colour", up(deck.Hearts, 9), []deck.Card{up(deck.Diamonds, 10)}, false},
		{"one higher", up(deck.Hearts, 11), []deck.Card{up(deck.Clubs, 10)}, false},
		{"two lower", up(deck.Hearts, 8), []deck.Card{up(deck.Clubs, 10)}, false},
		{"face-down top", up(deck.Hearts, 9), []deck.Card{down(deck.Clubs, 10)}, false},
		{"ace on two", up(deck.Hearts, deck.Ace), []deck.Card{up(deck.Spades, 2)}, true},
		{"only the top counts", up(deck.Hearts, 4), []deck.Card{up(deck.Clubs, 10), up(deck.Spades, 5)}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, CanPlaceOnTableau(c.card, c.pile))
		})
	}
}

func TestCanPlaceOnFoundation(t *testing.T) {
	cases := []struct {
		name string
		card deck.Card
		pile []deck.Card
		want bool
	}{
		{"ace on empty", up(deck.Clubs, deck.Ace), nil, true},
		{"two on empty", up(deck.Clubs, 2), nil, false},
		{"next of suit", up(deck.Clubs, 2), []deck.Card{up(deck.Clubs, deck.Ace)}, true},
		{"other suit, same colour", up(deck.Spades, 2), []deck.Card{up(deck.Clubs, deck.Ace)}, false},
		{"skips a value", up(deck.Clubs, 3), []deck.Card{up(deck.Clubs, deck.Ace)}, false},
		{"king completes", up(deck.Hearts, deck.King), completeFoundation(deck.Hearts, deck.Queen), true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, CanPlaceOnFoundation(c.card, c.pile))
		})
	}
}
