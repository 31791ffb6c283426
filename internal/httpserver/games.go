// internal/httpserver/games.go
//
// Game endpoints. Live games sit in the session store; a games row in SQLite
// mirrors each one for history and stats.
//
//   - POST /game/new           → deal a new game
//   - GET  /game/{id}          → current state
//   - POST /game/{id}/draw     → draw (or recycle the waste)
//   - POST /game/{id}/move     → {from, to, cardIndex} using pile ids like "tableau-3"
//   - POST /game/{id}/action   → any game.Action
//   - POST /game/{id}/timer    → {running}
//
// Every mutating endpoint answers {applied, state}. Illegal moves are not
// errors: they come back with applied=false and the unchanged state.

package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/solitaire/internal/daily"
	"github.com/robalobadob/solitaire/internal/game"
	"github.com/robalobadob/solitaire/internal/store"
)

const (
	modeNormal = "normal"
	modeDaily  = "daily"
)

type newGameRes struct {
	GameID string     `json:"gameId"`
	State  game.State `json:"state"`
}

type stepRes struct {
	Applied bool       `json:"applied"`
	State   game.State `json:"state"`
}

type moveReq struct {
	From      string `json:"from"`
	To        string `json:"to"`
	CardIndex int    `json:"cardIndex"`
}

type timerReq struct {
	Running bool `json:"running"`
}

func (s *Server) mountGame(r chi.Router) {
	r.Post("/game/new", s.handleNewGame)
	r.Get("/game/{id}", s.handleGetGame)
	r.Post("/game/{id}/draw", s.handleDraw)
	r.Post("/game/{id}/move", s.handleMove)
	r.Post("/game/{id}/action", s.handleAction)
	r.Post("/game/{id}/timer", s.handleTimer)
}

// handleNewGame deals a new game and persists an owner row (either user_id or
// anonymous_id) for history/stats.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	g := game.New()
	if err := s.store.Save(r.Context(), g); err != nil {
		log.Error().Err(err).Msg("save game")
		writeErr(w, http.StatusInternalServerError, "save_failed")
		return
	}
	userID, anonID := s.owner(w, r)
	s.recordStart(r.Context(), g.ID, modeNormal, userID, anonID)
	writeJSON(w, http.StatusOK, newGameRes{GameID: g.ID, State: g.Snapshot()})
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	g, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, g.Snapshot())
}

func (s *Server) handleDraw(w http.ResponseWriter, r *http.Request) {
	g, ok := s.lookup(w, r)
	if !ok {
		return
	}
	s.step(w, r, g, (*game.Game).DrawCard)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	g, ok := s.lookup(w, r)
	if !ok {
		return
	}
	from, to, idx, ok := decodeMove(w, r)
	if !ok {
		return
	}
	s.step(w, r, g, func(g *game.Game) bool { return g.MoveCard(from, to, idx) })
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	g, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var a game.Action
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		writeErr(w, http.StatusBadRequest, "bad_json")
		return
	}
	s.step(w, r, g, func(g *game.Game) bool { return g.Apply(a) })
}

func (s *Server) handleTimer(w http.ResponseWriter, r *http.Request) {
	g, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req timerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "bad_json")
		return
	}
	writeJSON(w, http.StatusOK, stepRes{Applied: g.SetTimerRunning(req.Running), State: g.Snapshot()})
}

// lookup loads the game named by the {id} URL param, writing a 404 if it is gone.
// Daily games live in their own store and are never found here.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*game.Game, bool) {
	return findGame(w, r, s.store)
}

func findGame(w http.ResponseWriter, r *http.Request, st store.Store) (*game.Game, bool) {
	g, err := st.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeErr(w, http.StatusNotFound, "not_found")
		} else {
			log.Error().Err(err).Msg("load game")
			writeErr(w, http.StatusInternalServerError, "load_failed")
		}
		return nil, false
	}
	return g, true
}

// decodeMove reads a moveReq body and resolves its pile ids.
func decodeMove(w http.ResponseWriter, r *http.Request) (from, to game.PileRef, idx int, ok bool) {
	var req moveReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "bad_json")
		return from, to, 0, false
	}
	var err error
	if from, err = game.ParsePile(req.From); err != nil {
		writeErr(w, http.StatusBadRequest, "unknown_pile")
		return from, to, 0, false
	}
	if to, err = game.ParsePile(req.To); err != nil {
		writeErr(w, http.StatusBadRequest, "unknown_pile")
		return from, to, 0, false
	}
	return from, to, req.CardIndex, true
}

// step applies fn to g, settles the win flag, records progress when something changed and writes
// the {applied, state} response.
func (s *Server) step(w http.ResponseWriter, r *http.Request, g *game.Game, fn func(*game.Game) bool) {
	applied := fn(g)
	g.CheckWinCondition()
	st := g.Snapshot()
	if applied {
		s.recordProgress(r.Context(), g.ID, st)
	}
	writeJSON(w, http.StatusOK, stepRes{Applied: applied, State: st})
}

// ----------------------------- persistence ---------------------------------

// recordStart inserts the games row for a new game. A signed-in player's
// unfinished games are marked abandoned, which breaks their win streak.
// Best effort: failures are logged, play continues from memory.
func (s *Server) recordStart(ctx context.Context, gameID, mode, userID, anonID string) {
	now := s.now().UTC().Format(time.RFC3339)
	if userID == "" {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO games (id, anonymous_id, mode, started_at, status) VALUES (?,?,?,?,'playing')`,
			gameID, anonID, mode, now); err != nil {
			log.Warn().Err(err).Str("gameId", gameID).Msg("insert anon game row")
		}
		return
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Warn().Err(err).Msg("begin tx")
		return
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE games SET status='abandoned', finished_at=? WHERE user_id=? AND status='playing'`, now, userID)
	if err != nil {
		log.Warn().Err(err).Msg("abandon games")
		return
	}
	streakReset := ""
	if n, _ := res.RowsAffected(); n > 0 {
		streakReset = `, streak = 0`
	}
	if _, err := tx.ExecContext(ctx, `UPDATE users SET games_played = games_played + 1`+streakReset+` WHERE id=?`, userID); err != nil {
		log.Warn().Err(err).Str("user", userID).Msg("bump games played")
		return
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO games (id, user_id, mode, started_at, status) VALUES (?,?,?,?,'playing')`,
		gameID, userID, mode, now); err != nil {
		log.Warn().Err(err).Str("gameId", gameID).Msg("insert user game row")
		return
	}
	if err := tx.Commit(); err != nil {
		log.Warn().Err(err).Msg("commit game start")
	}
}

// recordProgress mirrors moves and time into the games row. The first
// recorded win finishes the row and credits the owner.
func (s *Server) recordProgress(ctx context.Context, gameID string, st game.State) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Warn().Err(err).Msg("begin tx")
		return
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `UPDATE games SET moves=?, time_seconds=? WHERE id=?`, st.Moves, st.Time, gameID); err != nil {
		log.Warn().Err(err).Msg("update progress")
		return
	}

	if st.IsGameWon {
		res, err := tx.ExecContext(ctx, `UPDATE games SET status='won', finished_at=? WHERE id=? AND status='playing'`,
			s.now().UTC().Format(time.RFC3339), gameID)
		if err != nil {
			log.Warn().Err(err).Msg("finish game")
			return
		}
		if n, _ := res.RowsAffected(); n == 1 {
			s.creditWin(ctx, tx, gameID, st)
		}
	}

	if err := tx.Commit(); err != nil {
		log.Warn().Err(err).Msg("commit progress")
	}
}

// creditWin updates the owner's stats and, for a daily deal, records the
// result under the date the deal was started, timed from started_at to now.
func (s *Server) creditWin(ctx context.Context, tx *sql.Tx, gameID string, st game.State) {
	var userID, anonID sql.NullString
	var mode, startedAt string
	if err := tx.QueryRowContext(ctx, `SELECT user_id, anonymous_id, mode, started_at FROM games WHERE id=?`, gameID).
		Scan(&userID, &anonID, &mode, &startedAt); err != nil {
		log.Warn().Err(err).Msg("load game owner")
		return
	}
	if userID.Valid {
		if err := bumpStats(ctx, tx, userID.String, st); err != nil {
			log.Warn().Err(err).Str("user", userID.String).Msg("bump stats")
		}
	}
	if mode != modeDaily {
		return
	}

	player := userID.String
	if !userID.Valid {
		player = anonID.String
	}
	started, err := time.Parse(time.RFC3339, startedAt)
	if err != nil {
		log.Warn().Err(err).Str("gameId", gameID).Msg("parse started_at")
		return
	}
	// Daily results are timed by the wall clock. The game clock only runs
	// over a websocket and would read zero for a REST-only solve.
	secs := st.Time
	if wall := int(s.now().Sub(started) / time.Second); wall > secs {
		secs = wall
	}
	if _, err := tx.ExecContext(ctx, `UPDATE games SET time_seconds=? WHERE id=?`, secs, gameID); err != nil {
		log.Warn().Err(err).Msg("update daily time")
		return
	}
	if err := daily.NewStore(tx).InsertResult(ctx, daily.Result{
		UserID:      player,
		Date:        daily.DateKey(started),
		Moves:       st.Moves,
		TimeSeconds: secs,
	}); err != nil {
		log.Warn().Err(err).Str("gameId", gameID).Msg("insert daily result")
	}
}

// bumpStats credits a win: wins and streak go up, best time and best move
// count keep the lower value.
func bumpStats(ctx context.Context, tx *sql.Tx, userID string, st game.State) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE users SET
			wins = wins + 1,
			streak = streak + 1,
			best_time = MIN(COALESCE(best_time, ?1), ?1),
			best_moves = MIN(COALESCE(best_moves, ?2), ?2)
		WHERE id = ?3`, st.Time, st.Moves, userID)
	return err
}
