// internal/game/engine.go
//
// Core game engine for a single Klondike session.
// Responsibilities:
//   - Deal a new game (triangular deal into seven tableaus, rest to the stock).
//   - Validate and apply each move type against the placement rules.
//   - Track moves, elapsed seconds, the timer flag and the win flag.
//
// Notes:
//   - Every transition runs under one mutex; a transition is all-or-nothing.
//   - Illegal or out-of-range requests are silent no-ops. Each transition reports
//     whether it changed the state, but never returns an error.
//   - The engine owns no clock. Whoever drives IncrementTime owns the ticker.

package game

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/robalobadob/solitaire/internal/deck"
)

// Game owns one State and serialises every transition on it.
type Game struct {
	ID        string
	CreatedAt time.Time

	mu    sync.Mutex
	state State
	src   deck.Source
}

// Option configures a Game at construction.
type Option func(*Game)

// WithSource sets the random source used by Initialize.
func WithSource(src deck.Source) Option {
	return func(g *Game) { g.src = src }
}

// WithID overrides the generated game ID.
func WithID(id string) Option {
	return func(g *Game) { g.ID = id }
}

func newGame(opts []Option) *Game {
	g := &Game{ID: uuid.NewString(), CreatedAt: time.Now().UTC()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// New constructs a game and deals it.
func New(opts ...Option) *Game {
	g := newGame(opts)
	g.Initialize()
	return g
}

// FromState constructs a game around an existing state without dealing.
// The state is copied.
func FromState(s State, opts ...Option) *Game {
	g := newGame(opts)
	g.state = s.Clone()
	return g
}

// Snapshot returns a deep copy of the current state.
func (g *Game) Snapshot() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state.Clone()
}

// Initialize shuffles a fresh deck and deals a new game, replacing all prior state.
func (g *Game) Initialize() {
	cards := deck.Shuffle(deck.New(), g.src)

	s := State{
		Waste:          []deck.Card{},
		IsTimerRunning: true,
	}
	for i := range s.Foundations {
		s.Foundations[i] = []deck.Card{}
	}

	// Round i deals one card to each of tableaus i..6; only the first card of a
	// round (the one landing on tableau i) is dealt face-up.
	next := 0
	for i := 0; i < NumTableaus; i++ {
		for j := i; j < NumTableaus; j++ {
			s.Tableaus[j] = append(s.Tableaus[j], cards[next].Face(i == j))
			next++
		}
	}

	s.Stock = make([]deck.Card, 0, len(cards)-dealtCards)
	for _, c := range cards[dealtCards:] {
		s.Stock = append(s.Stock, c.Face(false))
	}

	g.mu.Lock()
	g.state = s
	g.mu.Unlock()
}

// DrawCard turns the top stock card onto the waste. With an empty stock it
// instead turns the whole waste back over into the stock. Either way it counts
// as one move.
func (g *Game) DrawCard() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	s := &g.state
	if len(s.Stock) == 0 {
		stock := make([]deck.Card, 0, len(s.Waste))
		for i := len(s.Waste) - 1; i >= 0; i-- {
			stock = append(stock, s.Waste[i].Face(false))
		}
		s.Stock = stock
		s.Waste = []deck.Card{}
	} else {
		c := s.Stock[len(s.Stock)-1]
		s.Stock = s.Stock[:len(s.Stock)-1]
		s.Waste = append(s.Waste, c.Face(true))
	}
	s.Moves++
	return true
}

// MoveFromWasteToTableau moves the top waste card onto tableau t.
func (g *Game) MoveFromWasteToTableau(t int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	s := &g.state
	card, ok := top(s.Waste)
	if !ok || !validTableau(t) || !CanPlaceOnTableau(card, s.Tableaus[t]) {
		return false
	}
	s.Tableaus[t] = append(s.Tableaus[t], card)
	s.Waste = s.Waste[:len(s.Waste)-1]
	g.moved()
	return true
}

// MoveFromWasteToFoundation moves the top waste card onto foundation f.
func (g *Game) MoveFromWasteToFoundation(f int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	s := &g.state
	card, ok := top(s.Waste)
	if !ok || !validFoundation(f) || !CanPlaceOnFoundation(card, s.Foundations[f]) {
		return false
	}
	s.Foundations[f] = append(s.Foundations[f], card)
	s.Waste = s.Waste[:len(s.Waste)-1]
	g.moved()
	return true
}

// MoveFromTableauToTableau moves every card from cardIndex to the end of tableau
// from onto tableau to. Only the first card of the run is checked against the
// destination; the rest travel with it in order.
func (g *Game) MoveFromTableauToTableau(from, to, cardIndex int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !validTableau(from) || !validTableau(to) || from == to {
		return false
	}
	s := &g.state
	src := s.Tableaus[from]
	if cardIndex < 0 || cardIndex >= len(src) {
		return false
	}
	if !CanPlaceOnTableau(src[cardIndex], s.Tableaus[to]) {
		return false
	}

	s.Tableaus[to] = append(s.Tableaus[to], src[cardIndex:]...)
	s.Tableaus[from] = clonePile(src[:cardIndex])
	g.reveal(from)
	g.moved()
	return true
}

// MoveFromTableauToFoundation moves the top card of tableau t onto foundation f.
func (g *Game) MoveFromTableauToFoundation(t, f int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !validTableau(t) || !validFoundation(f) {
		return false
	}
	s := &g.state
	card, ok := top(s.Tableaus[t])
	if !ok || !CanPlaceOnFoundation(card, s.Foundations[f]) {
		return false
	}
	s.Foundations[f] = append(s.Foundations[f], card)
	s.Tableaus[t] = s.Tableaus[t][:len(s.Tableaus[t])-1]
	g.reveal(t)
	g.moved()
	return true
}

// MoveFromFoundationToTableau moves the top card of foundation f onto tableau t.
func (g *Game) MoveFromFoundationToTableau(f, t int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !validTableau(t) || !validFoundation(f) {
		return false
	}
	s := &g.state
	card, ok := top(s.Foundations[f])
	if !ok || !CanPlaceOnTableau(card, s.Tableaus[t]) {
		return false
	}
	s.Tableaus[t] = append(s.Tableaus[t], card)
	s.Foundations[f] = s.Foundations[f][:len(s.Foundations[f])-1]
	g.moved()
	return true
}

// IncrementTime adds one second while the timer runs.
func (g *Game) IncrementTime() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.state.IsTimerRunning {
		return false
	}
	g.state.Time++
	return true
}

// CheckWinCondition marks the game won and stops the timer once every foundation
// is complete. It reports whether the game is won.
func (g *Game) CheckWinCondition() bool {
	g.checkWin()

	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state.IsGameWon
}

// checkWin is CheckWinCondition reporting whether this call set the win flag.
func (g *Game) checkWin() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state.IsGameWon {
		return false
	}
	for _, f := range g.state.Foundations {
		if len(f) != FoundationSize {
			return false
		}
	}
	g.state.IsGameWon = true
	g.state.IsTimerRunning = false
	return true
}

// SetTimerRunning sets the timer flag and nothing else.
func (g *Game) SetTimerRunning(running bool) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	changed := g.state.IsTimerRunning != running
	g.state.IsTimerRunning = running
	return changed
}

// moved does the bookkeeping shared by every successful card move.
// Caller holds g.mu.
func (g *Game) moved() {
	g.state.Moves++
	if !g.state.IsTimerRunning && !g.state.IsGameWon {
		g.state.IsTimerRunning = true
	}
}

// reveal turns the top card of tableau t face-up if it is face-down.
// Caller holds g.mu.
func (g *Game) reveal(t int) {
	p := g.state.Tableaus[t]
	if n := len(p); n > 0 && !p[n-1].FaceUp {
		p[n-1] = p[n-1].Face(true)
	}
}

func validTableau(i int) bool    { return i >= 0 && i < NumTableaus }
func validFoundation(i int) bool { return i >= 0 && i < NumFoundations }
