package game

import "github.com/robalobadob/solitaire/internal/deck"

// CanPlaceOnTableau reports whether card may go on top of pile.
// An empty tableau accepts only a King; otherwise the top card must be face-up,
// one higher in value, and of the opposite colour.
func CanPlaceOnTableau(card deck.Card, pile []deck.Card) bool {
	t, ok := top(pile)
	if !ok {
		return card.Value == deck.King
	}
	return t.FaceUp &&
		card.Value == t.Value-1 &&
		card.Color() != t.Color()
}

// CanPlaceOnFoundation reports whether card may go on top of pile.
// An empty foundation accepts only an Ace; otherwise the card must follow the top
// card in the same suit.
func CanPlaceOnFoundation(card deck.Card, pile []deck.Card) bool {
	t, ok := top(pile)
	if !ok {
		return card.Value == deck.Ace
	}
	return card.Suit == t.Suit && card.Value == t.Value+1
}
