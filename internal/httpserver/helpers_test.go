package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robalobadob/solitaire/internal/config"
	"github.com/robalobadob/solitaire/internal/db"
	"github.com/robalobadob/solitaire/internal/deck"
	"github.com/robalobadob/solitaire/internal/game"
	"github.com/robalobadob/solitaire/internal/store"
)

type testEnv struct {
	srv   *Server
	store *store.Memory
	clock *fakeClock
}

// fakeClock stands in for Server.now. It starts at noon UTC today so tests can
// move it forward without crossing a daily boundary, and issued tokens still
// pass jwt's own expiry check.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	conn, err := db.Open(filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, db.Migrate(context.Background(), conn))

	cfg := &config.Config{
		ClientOrigin:   "http://localhost:5173",
		JWTSecret:      "test_secret",
		JWTExpiresDays: 1,
		CookieName:     "solitaire_token",
		DailySalt:      "test_salt",
	}
	mem := store.NewMemoryStore()
	clk := &fakeClock{t: time.Now().UTC().Truncate(24 * time.Hour).Add(12 * time.Hour)}
	srv := New(cfg, mem, conn)
	srv.now = clk.now
	return &testEnv{srv: srv, store: mem, clock: clk}
}

// client keeps cookies between requests like a browser would.
type client struct {
	t       *testing.T
	env     *testEnv
	cookies map[string]*http.Cookie
}

func (e *testEnv) client(t *testing.T) *client {
	return &client{t: t, env: e, cookies: map[string]*http.Cookie{}}
}

func (c *client) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c.env.srv.Router().ServeHTTP(rec, req)

	for _, ck := range rec.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck
	}
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func up(s deck.Suit, v int) deck.Card { return deck.Card{Suit: s, Value: v, FaceUp: true} }

func suitRun(suit deck.Suit, upto int) []deck.Card {
	out := []deck.Card{}
	for v := deck.Ace; v <= upto; v++ {
		out = append(out, up(suit, v))
	}
	return out
}

// oneMoveFromWin is a table where putting the waste king of clubs on
// foundation 3 wins the game.
func oneMoveFromWin() game.State {
	s := game.State{Stock: []deck.Card{}, Waste: []deck.Card{up(deck.Clubs, deck.King)}}
	for i := range s.Tableaus {
		s.Tableaus[i] = []deck.Card{}
	}
	s.Foundations[0] = suitRun(deck.Spades, deck.King)
	s.Foundations[1] = suitRun(deck.Hearts, deck.King)
	s.Foundations[2] = suitRun(deck.Diamonds, deck.King)
	s.Foundations[3] = suitRun(deck.Clubs, deck.Queen)
	s.Moves = 97
	s.Time = 245
	s.IsTimerRunning = true
	return s
}

var winningMove = moveReq{From: "waste", To: "foundation-3"}

// rigGame swaps the live game behind id for one built from st.
func (e *testEnv) rigGame(t *testing.T, id string, st game.State) {
	t.Helper()
	require.NoError(t, e.store.Save(context.Background(), game.FromState(st, game.WithID(id))))
}

// rigDailyGame does the same for a daily session.
func (e *testEnv) rigDailyGame(t *testing.T, id string, st game.State) {
	t.Helper()
	require.NoError(t, e.srv.dailyGames.Save(context.Background(), game.FromState(st, game.WithID(id))))
}
