// internal/httpserver/routes_daily.go
//
// HTTP routes for the daily deal.
//   - POST /daily/new          → start today's deal (creates or reuses the player's session)
//   - GET  /daily/{id}         → current state of the player's daily game
//   - POST /daily/{id}/draw    → draw
//   - POST /daily/{id}/move    → {from, to, cardIndex}
//   - GET  /daily/leaderboard  → fastest results for today (or ?date=YYYY-MM-DD)
//
// Every player gets the same shuffle for a UTC date and may finish it once.
// Daily games sit in their own store, reachable only through these routes,
// which offer no re-deal. The win is written to daily_results by
// recordProgress, timed by the wall clock from the start of the deal.

package httpserver

import (
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/solitaire/internal/daily"
	"github.com/robalobadob/solitaire/internal/deck"
	"github.com/robalobadob/solitaire/internal/game"
	"github.com/robalobadob/solitaire/internal/store"
)

// dailyServer wraps dependencies for /daily endpoints.
type dailyServer struct {
	srv      *Server
	store    *daily.Store
	games    *store.Memory // daily deals only
	salt     string
	sessions map[string]string // player|date → game ID
	mu       sync.Mutex        // guards sessions
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	dd := &dailyServer{
		srv:      s,
		store:    daily.NewStore(s.db),
		games:    s.dailyGames,
		salt:     s.cfg.DailySalt,
		sessions: make(map[string]string),
	}
	r.Post("/daily/new", dd.handleNew)
	r.Get("/daily/leaderboard", dd.handleLeaderboard)
	r.Get("/daily/{id}", dd.handleGet)
	r.Post("/daily/{id}/draw", dd.handleDraw)
	r.Post("/daily/{id}/move", dd.handleMove)
}

func (d *dailyServer) today() string { return daily.DateKey(d.srv.now()) }

// newRes is returned by /daily/new. GameID and State are empty when Played is set.
type newRes struct {
	GameID string      `json:"gameId,omitempty"`
	Date   string      `json:"date"`
	Played bool        `json:"played"`
	State  *game.State `json:"state,omitempty"`
}

// handleNew creates or reuses today's session.
//   - A recorded result for today → Played=true.
//   - Otherwise an existing live session is returned, or a new deal is made.
func (d *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	userID, anonID := d.srv.owner(w, r)
	uid := userID
	if uid == "" {
		uid = anonID
	}
	date := d.today()

	played, err := d.store.AlreadyPlayed(r.Context(), uid, date)
	if err != nil {
		log.Warn().Err(err).Msg("daily already played")
	}
	if played {
		writeJSON(w, http.StatusOK, newRes{Date: date, Played: true})
		return
	}

	key := uid + "|" + date
	d.mu.Lock()
	defer d.mu.Unlock()

	if id, ok := d.sessions[key]; ok {
		if g, err := d.games.Get(r.Context(), id); err == nil {
			st := g.Snapshot()
			writeJSON(w, http.StatusOK, newRes{GameID: id, Date: date, State: &st})
			return
		}
		// swept from memory; deal again
	}
	d.pruneLocked(date)

	seed := daily.Seed(d.srv.now(), d.salt)
	g := game.New(game.WithSource(deck.NewSource(seed)))
	if err := d.games.Save(r.Context(), g); err != nil {
		log.Error().Err(err).Msg("save daily game")
		writeErr(w, http.StatusInternalServerError, "save_failed")
		return
	}
	d.sessions[key] = g.ID
	d.srv.recordStart(r.Context(), g.ID, modeDaily, userID, anonID)

	st := g.Snapshot()
	writeJSON(w, http.StatusOK, newRes{GameID: g.ID, Date: date, State: &st})
}

// pruneLocked drops sessions from earlier dates. Caller holds d.mu.
func (d *dailyServer) pruneLocked(today string) {
	for k := range d.sessions {
		if !strings.HasSuffix(k, "|"+today) {
			delete(d.sessions, k)
		}
	}
}

// session resolves {id} to the caller's daily game for today.
func (d *dailyServer) session(w http.ResponseWriter, r *http.Request) (*game.Game, bool) {
	uid := d.srv.playerID(w, r)
	id := chi.URLParam(r, "id")

	d.mu.Lock()
	current, ok := d.sessions[uid+"|"+d.today()]
	d.mu.Unlock()
	if !ok || current != id {
		writeErr(w, http.StatusConflict, "no_session")
		return nil, false
	}
	return findGame(w, r, d.games)
}

func (d *dailyServer) handleGet(w http.ResponseWriter, r *http.Request) {
	g, ok := d.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, g.Snapshot())
}

func (d *dailyServer) handleDraw(w http.ResponseWriter, r *http.Request) {
	g, ok := d.session(w, r)
	if !ok {
		return
	}
	d.srv.step(w, r, g, (*game.Game).DrawCard)
}

func (d *dailyServer) handleMove(w http.ResponseWriter, r *http.Request) {
	g, ok := d.session(w, r)
	if !ok {
		return
	}
	from, to, idx, ok := decodeMove(w, r)
	if !ok {
		return
	}
	d.srv.step(w, r, g, func(g *game.Game) bool { return g.MoveCard(from, to, idx) })
}

// lbRes is returned by /daily/leaderboard.
type lbRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

// handleLeaderboard returns the leaderboard for the given date (default today).
func (d *dailyServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = d.today()
	}
	limit := daily.DefaultLimit
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}
	rows, err := d.store.Leaderboard(r.Context(), date, limit)
	if err != nil {
		log.Error().Err(err).Msg("daily leaderboard")
		writeErr(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, lbRes{Date: date, Top: rows})
}
