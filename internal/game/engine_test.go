package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/solitaire/internal/deck"
)

func up(s deck.Suit, v int) deck.Card   { return deck.Card{Suit: s, Value: v, FaceUp: true} }
func down(s deck.Suit, v int) deck.Card { return deck.Card{Suit: s, Value: v} }

// identitySource never swaps, so a shuffle keeps deck.New() order.
type identitySource struct{}

func (identitySource) Intn(n int) int { return n - 1 }

// emptyState returns a state with every pile present but empty.
func emptyState() State {
	s := State{Stock: []deck.Card{}, Waste: []deck.Card{}}
	for i := range s.Foundations {
		s.Foundations[i] = []deck.Card{}
	}
	for i := range s.Tableaus {
		s.Tableaus[i] = []deck.Card{}
	}
	return s
}

// completeFoundation returns Ace..upto of suit, face-up.
func completeFoundation(suit deck.Suit, upto int) []deck.Card {
	out := make([]deck.Card, 0, upto)
	for v := deck.Ace; v <= upto; v++ {
		out = append(out, up(suit, v))
	}
	return out
}

func TestInitialize(t *testing.T) {
	g := New(WithSource(deck.NewSource(1)))
	s := g.Snapshot()

	t.Run("tableau shape", func(t *testing.T) {
		for i, pile := range s.Tableaus {
			require.Len(t, pile, i+1)
			for j, c := range pile {
				assert.Equal(t, j == len(pile)-1, c.FaceUp, "tableau %d card %d", i, j)
			}
		}
	})

	t.Run("stock, waste and foundations", func(t *testing.T) {
		assert.Len(t, s.Stock, deck.Size-dealtCards)
		for _, c := range s.Stock {
			assert.False(t, c.FaceUp)
		}
		assert.Empty(t, s.Waste)
		for _, f := range s.Foundations {
			assert.Empty(t, f)
		}
	})

	t.Run("counters", func(t *testing.T) {
		assert.Equal(t, 0, s.Moves)
		assert.Equal(t, 0, s.Time)
		assert.True(t, s.IsTimerRunning)
		assert.False(t, s.IsGameWon)
	})

	t.Run("every card dealt once", func(t *testing.T) {
		assertInvariants(t, s)
	})

	t.Run("same seed, same deal", func(t *testing.T) {
		again := New(WithSource(deck.NewSource(1))).Snapshot()
		assert.Equal(t, s, again)
	})

	t.Run("resets a game in progress", func(t *testing.T) {
		g.DrawCard()
		g.IncrementTime()
		g.SetTimerRunning(false)
		g.Initialize()
		s := g.Snapshot()
		assert.Equal(t, 0, s.Moves)
		assert.Equal(t, 0, s.Time)
		assert.True(t, s.IsTimerRunning)
		assert.Empty(t, s.Waste)
		assertInvariants(t, s)
	})
}

func TestInitializeDealOrder(t *testing.T) {
	ordered := deck.New()
	s := New(WithSource(identitySource{})).Snapshot()

	// Round 0 lays cards 0..6 across all seven tableaus.
	for j := 0; j < NumTableaus; j++ {
		assert.True(t, s.Tableaus[j][0].SameCard(ordered[j]), "tableau %d", j)
	}
	// Tableau 1's second card comes from round 1, the eighth card dealt.
	assert.Equal(t, ordered[7].Face(true), s.Tableaus[1][1])
	// The last card dealt lands face-up on tableau 6.
	assert.Equal(t, ordered[dealtCards-1].Face(true), s.Tableaus[6][6])

	// Stock keeps dealt order; its top is the last card of the deck.
	require.Len(t, s.Stock, 24)
	assert.Equal(t, ordered[dealtCards], s.Stock[0])
	assert.Equal(t, ordered[deck.Size-1], s.Stock[len(s.Stock)-1])
}

func TestDrawCard(t *testing.T) {
	t.Run("fresh game draw", func(t *testing.T) {
		g := New(WithSource(deck.NewSource(3)))
		before := g.Snapshot()

		assert.True(t, g.DrawCard())

		s := g.Snapshot()
		require.Len(t, s.Waste, 1)
		assert.True(t, s.Waste[0].FaceUp)
		assert.True(t, s.Waste[0].SameCard(before.Stock[len(before.Stock)-1]))
		assert.Len(t, s.Stock, 23)
		assert.Equal(t, 1, s.Moves)
	})

	t.Run("recycles the waste", func(t *testing.T) {
		s := emptyState()
		s.Waste = []deck.Card{up(deck.Spades, 2), up(deck.Hearts, 9), up(deck.Clubs, 4)}
		g := FromState(s)

		assert.True(t, g.DrawCard())

		got := g.Snapshot()
		assert.Empty(t, got.Waste)
		assert.Equal(t, []deck.Card{down(deck.Clubs, 4), down(deck.Hearts, 9), down(deck.Spades, 2)}, got.Stock)
		assert.Equal(t, 1, got.Moves)
	})

	t.Run("recycle then draw returns the first card drawn", func(t *testing.T) {
		g := New(WithSource(deck.NewSource(5)))
		first := g.Snapshot().Stock[23]
		for i := 0; i < 24; i++ {
			g.DrawCard()
		}
		g.DrawCard() // recycle
		g.DrawCard()
		s := g.Snapshot()
		require.Len(t, s.Waste, 1)
		assert.True(t, s.Waste[0].SameCard(first))
		assert.Equal(t, 26, s.Moves)
	})

	t.Run("both empty still counts a move", func(t *testing.T) {
		g := FromState(emptyState())
		assert.True(t, g.DrawCard())
		s := g.Snapshot()
		assert.Empty(t, s.Stock)
		assert.Empty(t, s.Waste)
		assert.Equal(t, 1, s.Moves)
	})
}

func TestMoveFromWasteToTableau(t *testing.T) {
	base := func() State {
		s := emptyState()
		s.Tableaus[0] = []deck.Card{down(deck.Clubs, 2), up(deck.Spades, 7)}
		return s
	}

	t.Run("red six on black seven", func(t *testing.T) {
		s := base()
		s.Waste = []deck.Card{up(deck.Hearts, 6)}
		g := FromState(s)

		assert.True(t, g.MoveFromWasteToTableau(0))

		got := g.Snapshot()
		assert.Empty(t, got.Waste)
		assert.Equal(t, up(deck.Hearts, 6), got.Tableaus[0][2])
		assert.Equal(t, 1, got.Moves)
	})

	t.Run("same colour is rejected", func(t *testing.T) {
		s := base()
		s.Waste = []deck.Card{up(deck.Clubs, 6)}
		g := FromState(s)

		assert.False(t, g.MoveFromWasteToTableau(0))
		assert.Equal(t, s, g.Snapshot())
	})

	t.Run("wrong value is rejected", func(t *testing.T) {
		s := base()
		s.Waste = []deck.Card{up(deck.Diamonds, 5)}
		g := FromState(s)

		assert.False(t, g.MoveFromWasteToTableau(0))
		assert.Equal(t, s, g.Snapshot())
	})

	t.Run("empty waste", func(t *testing.T) {
		s := base()
		g := FromState(s)
		assert.False(t, g.MoveFromWasteToTableau(0))
		assert.Equal(t, s, g.Snapshot())
	})

	t.Run("out of range tableau", func(t *testing.T) {
		s := base()
		s.Waste = []deck.Card{up(deck.Hearts, 6)}
		g := FromState(s)
		assert.False(t, g.MoveFromWasteToTableau(7))
		assert.False(t, g.MoveFromWasteToTableau(-1))
		assert.Equal(t, s, g.Snapshot())
	})

	t.Run("restarts a stopped timer", func(t *testing.T) {
		s := base()
		s.Waste = []deck.Card{up(deck.Hearts, 6)}
		g := FromState(s)

		require.True(t, g.MoveFromWasteToTableau(0))
		assert.True(t, g.Snapshot().IsTimerRunning)
	})

	t.Run("does not restart the timer of a won game", func(t *testing.T) {
		s := base()
		s.Waste = []deck.Card{up(deck.Hearts, 6)}
		s.IsGameWon = true
		g := FromState(s)

		require.True(t, g.MoveFromWasteToTableau(0))
		assert.False(t, g.Snapshot().IsTimerRunning)
	})
}

func TestMoveFromWasteToFoundation(t *testing.T) {
	t.Run("ace on empty foundation", func(t *testing.T) {
		s := emptyState()
		s.Waste = []deck.Card{up(deck.Spades, 9), up(deck.Diamonds, deck.Ace)}
		g := FromState(s)

		assert.True(t, g.MoveFromWasteToFoundation(2))

		got := g.Snapshot()
		assert.Equal(t, []deck.Card{up(deck.Diamonds, deck.Ace)}, got.Foundations[2])
		assert.Equal(t, []deck.Card{up(deck.Spades, 9)}, got.Waste)
		assert.Equal(t, 1, got.Moves)
	})

	t.Run("next card of the same suit", func(t *testing.T) {
		s := emptyState()
		s.Foundations[1] = completeFoundation(deck.Hearts, 3)
		s.Waste = []deck.Card{up(deck.Hearts, 4)}
		g := FromState(s)

		assert.True(t, g.MoveFromWasteToFoundation(1))
		assert.Len(t, g.Snapshot().Foundations[1], 4)
	})

	t.Run("rejections", func(t *testing.T) {
		cases := []struct {
			name       string
			foundation []deck.Card
			card       deck.Card
		}{
			{"non-ace on empty", nil, up(deck.Hearts, 2)},
			{"wrong suit", completeFoundation(deck.Hearts, 3), up(deck.Diamonds, 4)},
			{"skipped value", completeFoundation(deck.Hearts, 3), up(deck.Hearts, 5)},
			{"repeated value", completeFoundation(deck.Hearts, 3), up(deck.Hearts, 3)},
		}
		for _, c := range cases {
			t.Run(c.name, func(t *testing.T) {
				s := emptyState()
				if c.foundation != nil {
					s.Foundations[0] = c.foundation
				}
				s.Waste = []deck.Card{c.card}
				g := FromState(s)

				assert.False(t, g.MoveFromWasteToFoundation(0))
				assert.Equal(t, s, g.Snapshot())
			})
		}
	})

	t.Run("out of range foundation", func(t *testing.T) {
		s := emptyState()
		s.Waste = []deck.Card{up(deck.Hearts, deck.Ace)}
		g := FromState(s)
		assert.False(t, g.MoveFromWasteToFoundation(4))
		assert.Equal(t, s, g.Snapshot())
	})
}

func TestMoveFromTableauToTableau(t *testing.T) {
	t.Run("moves a run and reveals the new top", func(t *testing.T) {
		s := emptyState()
		s.Tableaus[1] = []deck.Card{down(deck.Spades, 4), up(deck.Hearts, 9), up(deck.Clubs, 8)}
		s.Tableaus[2] = []deck.Card{up(deck.Spades, 10)}
		g := FromState(s)

		assert.True(t, g.MoveFromTableauToTableau(1, 2, 1))

		got := g.Snapshot()
		assert.Equal(t, []deck.Card{up(deck.Spades, 10), up(deck.Hearts, 9), up(deck.Clubs, 8)}, got.Tableaus[2])
		assert.Equal(t, []deck.Card{up(deck.Spades, 4)}, got.Tableaus[1])
		assert.Equal(t, 1, got.Moves)
		assert.Equal(t, 0, got.Time)
	})

	t.Run("queen cannot go on an empty tableau", func(t *testing.T) {
		s := emptyState()
		s.Tableaus[1] = []deck.Card{down(deck.Clubs, 3), up(deck.Hearts, deck.Queen)}
		g := FromState(s)

		assert.False(t, g.MoveFromTableauToTableau(1, 0, 1))
		assert.Equal(t, s, g.Snapshot())
	})

	t.Run("king can go on an empty tableau", func(t *testing.T) {
		s := emptyState()
		s.Tableaus[1] = []deck.Card{down(deck.Clubs, 3), up(deck.Hearts, deck.King), up(deck.Spades, deck.Queen)}
		g := FromState(s)

		assert.True(t, g.MoveFromTableauToTableau(1, 0, 1))

		got := g.Snapshot()
		assert.Equal(t, []deck.Card{up(deck.Hearts, deck.King), up(deck.Spades, deck.Queen)}, got.Tableaus[0])
		assert.Equal(t, []deck.Card{up(deck.Clubs, 3)}, got.Tableaus[1])
	})

	t.Run("only the first card of the run is checked", func(t *testing.T) {
		s := emptyState()
		s.Tableaus[0] = []deck.Card{up(deck.Hearts, 6), up(deck.Diamonds, deck.King)}
		s.Tableaus[1] = []deck.Card{up(deck.Spades, 7)}
		g := FromState(s)

		assert.True(t, g.MoveFromTableauToTableau(0, 1, 0))
		assert.Equal(t, []deck.Card{up(deck.Spades, 7), up(deck.Hearts, 6), up(deck.Diamonds, deck.King)}, g.Snapshot().Tableaus[1])
	})

	t.Run("destination top must be face-up", func(t *testing.T) {
		s := emptyState()
		s.Tableaus[0] = []deck.Card{up(deck.Hearts, 6)}
		s.Tableaus[1] = []deck.Card{down(deck.Spades, 7)}
		g := FromState(s)

		assert.False(t, g.MoveFromTableauToTableau(0, 1, 0))
	})

	t.Run("bounds", func(t *testing.T) {
		s := emptyState()
		s.Tableaus[0] = []deck.Card{up(deck.Hearts, deck.King)}
		g := FromState(s)

		assert.False(t, g.MoveFromTableauToTableau(0, 1, 1))
		assert.False(t, g.MoveFromTableauToTableau(0, 1, -1))
		assert.False(t, g.MoveFromTableauToTableau(0, 7, 0))
		assert.False(t, g.MoveFromTableauToTableau(9, 1, 0))
		assert.False(t, g.MoveFromTableauToTableau(0, 0, 0))
		assert.False(t, g.MoveFromTableauToTableau(1, 0, 0))
		assert.Equal(t, s, g.Snapshot())
	})
}

func TestMoveFromTableauToFoundation(t *testing.T) {
	t.Run("auto-reveals and only counts a move", func(t *testing.T) {
		s := emptyState()
		s.Tableaus[3] = []deck.Card{down(deck.Hearts, 8), up(deck.Clubs, deck.Ace)}
		s.IsTimerRunning = true
		s.Time = 12
		g := FromState(s)

		assert.True(t, g.MoveFromTableauToFoundation(3, 0))

		got := g.Snapshot()
		assert.Equal(t, []deck.Card{up(deck.Clubs, deck.Ace)}, got.Foundations[0])
		assert.Equal(t, []deck.Card{up(deck.Hearts, 8)}, got.Tableaus[3])
		assert.Equal(t, 1, got.Moves)
		assert.Equal(t, 12, got.Time)
	})

	t.Run("empties a tableau", func(t *testing.T) {
		s := emptyState()
		s.Tableaus[0] = []deck.Card{up(deck.Clubs, deck.Ace)}
		g := FromState(s)

		assert.True(t, g.MoveFromTableauToFoundation(0, 3))
		assert.Empty(t, g.Snapshot().Tableaus[0])
	})

	t.Run("rejections leave state alone", func(t *testing.T) {
		s := emptyState()
		s.Tableaus[0] = []deck.Card{up(deck.Clubs, 2)}
		g := FromState(s)

		assert.False(t, g.MoveFromTableauToFoundation(0, 0))
		assert.False(t, g.MoveFromTableauToFoundation(1, 0))
		assert.False(t, g.MoveFromTableauToFoundation(0, 4))
		assert.False(t, g.MoveFromTableauToFoundation(-1, 0))
		assert.Equal(t, s, g.Snapshot())
	})
}

func TestMoveFromFoundationToTableau(t *testing.T) {
	s := emptyState()
	s.Foundations[0] = completeFoundation(deck.Hearts, 5)
	s.Tableaus[4] = []deck.Card{up(deck.Clubs, 6)}
	s.Tableaus[5] = []deck.Card{up(deck.Diamonds, 6)}
	g := FromState(s)

	assert.False(t, g.MoveFromFoundationToTableau(0, 5), "same colour")
	assert.False(t, g.MoveFromFoundationToTableau(1, 4), "empty foundation")
	assert.False(t, g.MoveFromFoundationToTableau(4, 4), "out of range")
	assert.Equal(t, s, g.Snapshot())

	assert.True(t, g.MoveFromFoundationToTableau(0, 4))
	got := g.Snapshot()
	assert.Equal(t, []deck.Card{up(deck.Clubs, 6), up(deck.Hearts, 5)}, got.Tableaus[4])
	assert.Len(t, got.Foundations[0], 4)
	assert.Equal(t, 1, got.Moves)
	assert.True(t, got.IsTimerRunning)
}

func TestTimer(t *testing.T) {
	g := FromState(emptyState())

	assert.False(t, g.IncrementTime())
	assert.Equal(t, 0, g.Snapshot().Time)

	assert.True(t, g.SetTimerRunning(true))
	assert.False(t, g.SetTimerRunning(true))
	g.IncrementTime()
	g.IncrementTime()
	assert.Equal(t, 2, g.Snapshot().Time)

	g.SetTimerRunning(false)
	g.IncrementTime()
	s := g.Snapshot()
	assert.Equal(t, 2, s.Time)
	assert.Equal(t, 0, s.Moves)
}

func TestCheckWinCondition(t *testing.T) {
	t.Run("all foundations complete", func(t *testing.T) {
		s := emptyState()
		for i, suit := range deck.Suits {
			s.Foundations[i] = completeFoundation(suit, deck.King)
		}
		s.IsTimerRunning = true
		g := FromState(s)

		assert.True(t, g.CheckWinCondition())
		got := g.Snapshot()
		assert.True(t, got.IsGameWon)
		assert.False(t, got.IsTimerRunning)

		assert.True(t, g.CheckWinCondition(), "idempotent")
		assert.Equal(t, got, g.Snapshot())
	})

	t.Run("one card short", func(t *testing.T) {
		s := emptyState()
		for i, suit := range deck.Suits {
			s.Foundations[i] = completeFoundation(suit, deck.King)
		}
		s.Foundations[3] = completeFoundation(deck.Clubs, deck.Queen)
		s.Tableaus[0] = []deck.Card{up(deck.Clubs, deck.King)}
		s.IsTimerRunning = true
		g := FromState(s)

		assert.False(t, g.CheckWinCondition())
		got := g.Snapshot()
		assert.False(t, got.IsGameWon)
		assert.True(t, got.IsTimerRunning)
	})

	t.Run("fresh deal is not won", func(t *testing.T) {
		assert.False(t, New().CheckWinCondition())
	})
}

func TestSnapshotIsACopy(t *testing.T) {
	g := New(WithSource(deck.NewSource(11)))
	s := g.Snapshot()
	s.Tableaus[0][0] = up(deck.Hearts, 99)
	s.Stock = nil
	assert.NotEqual(t, s, g.Snapshot())
	assertInvariants(t, g.Snapshot())
}

// TestRandomPlay drives many games with random (mostly illegal) requests and checks
// the table invariants after every step.
func TestRandomPlay(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		rng := rand.New(rand.NewSource(seed))
		g := New(WithSource(deck.NewSource(seed)))

		for step := 0; step < 1500; step++ {
			before := g.Snapshot()
			a := randomAction(rng, before)
			applied := g.Apply(a)
			after := g.Snapshot()

			assertInvariants(t, after)
			if !applied {
				require.Equal(t, before, after, "seed %d step %d: rejected %+v changed state", seed, step, a)
			} else if a.Type != ActionIncrementTime {
				require.Equal(t, before.Moves+1, after.Moves, "seed %d step %d: %+v", seed, step, a)
			}
			if after.IsGameWon {
				break
			}
		}
	}
}

func randomAction(rng *rand.Rand, s State) Action {
	switch rng.Intn(7) {
	case 0:
		return Action{Type: ActionDraw}
	case 1:
		return Action{Type: ActionWasteToTableau, To: rng.Intn(NumTableaus)}
	case 2:
		return Action{Type: ActionWasteToFoundation, To: rng.Intn(NumFoundations)}
	case 3:
		from := rng.Intn(NumTableaus)
		// Drag only face-up cards, as the client does.
		idx := len(s.Tableaus[from])
		for idx > 0 && s.Tableaus[from][idx-1].FaceUp {
			idx--
		}
		if n := len(s.Tableaus[from]) - idx; n > 0 {
			idx += rng.Intn(n)
		}
		return Action{Type: ActionTableauToTableau, From: from, To: rng.Intn(NumTableaus), CardIndex: idx}
	case 4:
		return Action{Type: ActionTableauToFoundation, From: rng.Intn(NumTableaus), To: rng.Intn(NumFoundations)}
	case 5:
		return Action{Type: ActionFoundationToTableau, From: rng.Intn(NumFoundations), To: rng.Intn(NumTableaus)}
	default:
		return Action{Type: ActionIncrementTime}
	}
}

func assertInvariants(t *testing.T, s State) {
	t.Helper()

	require.Equal(t, deck.Size, s.CardCount(), "card conservation")

	seen := map[deck.Card]bool{}
	mark := func(c deck.Card) {
		key := c.Face(false)
		require.False(t, seen[key], "duplicate %s", c)
		seen[key] = true
	}
	for _, c := range s.Stock {
		require.False(t, c.FaceUp, "stock card face-up")
		mark(c)
	}
	for _, c := range s.Waste {
		require.True(t, c.FaceUp, "waste card face-down")
		mark(c)
	}
	for i, f := range s.Foundations {
		for j, c := range f {
			require.Equal(t, j+1, c.Value, "foundation %d not ascending from ace", i)
			require.Equal(t, f[0].Suit, c.Suit, "foundation %d mixes suits", i)
			mark(c)
		}
	}
	for i, p := range s.Tableaus {
		faceUp := false
		for _, c := range p {
			if faceUp {
				require.True(t, c.FaceUp, "tableau %d has a face-down card above a face-up one", i)
			}
			faceUp = faceUp || c.FaceUp
			mark(c)
		}
	}
	require.Equal(t, s.IsGameWon, allComplete(s))
}

func allComplete(s State) bool {
	for _, f := range s.Foundations {
		if len(f) != FoundationSize {
			return false
		}
	}
	return true
}
