// internal/deck/card.go
//
// Card model for a standard 52-card deck.
// Defines:
//   - Suit: ♠ ♥ ♦ ♣, with a colour class (red for hearts/diamonds).
//   - Card: an immutable value; "flipping" returns a copy.

package deck

import (
	"fmt"
	"strconv"
)

// Suit identifies one of the four French suits.
type Suit int

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
)

// Suits lists every suit in deck order.
var Suits = [...]Suit{Spades, Hearts, Diamonds, Clubs}

var suitNames = [...]string{"spades", "hearts", "diamonds", "clubs"}
var suitSymbols = [...]string{"♠", "♥", "♦", "♣"}

// Card values with names.
const (
	Ace   = 1
	Jack  = 11
	Queen = 12
	King  = 13
)

// Color is the colour class of a suit.
type Color int

const (
	Black Color = iota
	Red
)

func (s Suit) valid() bool { return s >= Spades && s <= Clubs }

// Color reports red for hearts and diamonds, black otherwise.
func (s Suit) Color() Color {
	if s == Hearts || s == Diamonds {
		return Red
	}
	return Black
}

// Symbol returns the suit glyph, e.g. "♥".
func (s Suit) Symbol() string {
	if !s.valid() {
		return "?"
	}
	return suitSymbols[s]
}

func (s Suit) String() string {
	if !s.valid() {
		return "Suit(" + strconv.Itoa(int(s)) + ")"
	}
	return suitNames[s]
}

// MarshalText encodes a suit by name so JSON payloads stay readable.
func (s Suit) MarshalText() ([]byte, error) {
	if !s.valid() {
		return nil, fmt.Errorf("deck: invalid suit %d", int(s))
	}
	return []byte(suitNames[s]), nil
}

// UnmarshalText accepts a suit name or glyph.
func (s *Suit) UnmarshalText(b []byte) error {
	v := string(b)
	for i := range suitNames {
		if v == suitNames[i] || v == suitSymbols[i] {
			*s = Suit(i)
			return nil
		}
	}
	return fmt.Errorf("deck: unknown suit %q", v)
}

// Card is a single playing card.
type Card struct {
	Suit   Suit `json:"suit"`
	Value  int  `json:"value"`  // 1 = Ace … 13 = King
	FaceUp bool `json:"faceUp"` // orientation only; identity is (Suit, Value)
}

// Color returns the colour class of the card's suit.
func (c Card) Color() Color { return c.Suit.Color() }

// IsRed reports whether the card is a heart or a diamond.
func (c Card) IsRed() bool { return c.Suit.Color() == Red }

// Face returns a copy of c with the given orientation.
func (c Card) Face(up bool) Card {
	c.FaceUp = up
	return c
}

// SameCard reports whether two cards are the same (suit, value), ignoring orientation.
func (c Card) SameCard(o Card) bool {
	return c.Suit == o.Suit && c.Value == o.Value
}

func (c Card) String() string {
	var rank string
	switch c.Value {
	case Ace:
		rank = "A"
	case Jack:
		rank = "J"
	case Queen:
		rank = "Q"
	case King:
		rank = "K"
	default:
		rank = strconv.Itoa(c.Value)
	}
	return rank + c.Suit.Symbol()
}
