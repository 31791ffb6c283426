// internal/httpserver/ws.go
//
// Live play over a websocket: GET /game/{id}/ws.
//
// The client sends game.Action JSON frames. Each one is answered with
// {"type":"step","applied":..,"state":..}. While the game's timer runs, a
// server-side clock adds one second per tick and pushes
// {"type":"tick","state":..}.

package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/solitaire/internal/clock"
	"github.com/robalobadob/solitaire/internal/game"
)

var (
	pongWait             = 60 * time.Second
	writeWait            = 10 * time.Second
	pingInterval         = (pongWait * 9) / 10
	maxMessageSize int64 = 4096
)

const (
	msgStep  = "step"
	msgTick  = "tick"
	msgError = "error"
)

type wsMessage struct {
	Type    string      `json:"type"`
	Applied *bool       `json:"applied,omitempty"`
	State   *game.State `json:"state,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// wsSession is one connected client driving one game.
type wsSession struct {
	srv   *Server
	conn  *websocket.Conn
	game  *game.Game
	clock *clock.Clock

	writeMu sync.Mutex
}

func (s *Server) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
}

// checkOrigin admits same-host requests, requests without an Origin header
// and the configured client origin.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || origin == s.cfg.ClientOrigin {
		return true
	}
	u, err := url.Parse(origin)
	return err == nil && u.Host == r.Host
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	g, ok := s.lookup(w, r)
	if !ok {
		return
	}
	conn, err := s.upgrader().Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		log.Warn().Err(err).Msg("websocket upgrade")
		return
	}

	sess := &wsSession{srv: s, conn: conn, game: g}
	sess.clock = clock.New(s.tick, sess.tick)
	sess.run(r.Context())
}

func (ws *wsSession) run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		ws.clock.Stop()
		_ = ws.conn.Close()
	}()

	go ws.pinger(ctx)
	ws.syncClock(ctx)

	// initial state so the client can render without a separate GET
	st := ws.game.Snapshot()
	if err := ws.send(wsMessage{Type: msgTick, State: &st}); err != nil {
		return
	}

	ws.conn.SetReadLimit(maxMessageSize)
	_ = ws.conn.SetReadDeadline(time.Now().Add(pongWait))
	ws.conn.SetPongHandler(func(string) error {
		return ws.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := ws.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("gameId", ws.game.ID).Msg("websocket read")
			}
			return
		}

		var a game.Action
		if err := json.Unmarshal(data, &a); err != nil {
			if ws.send(wsMessage{Type: msgError, Error: "bad_json"}) != nil {
				return
			}
			continue
		}

		applied := ws.game.Apply(a)
		st := ws.game.Snapshot()
		if applied {
			ws.srv.recordProgress(ctx, ws.game.ID, st)
		}
		// keep the session alive while the socket is in use
		if err := ws.srv.store.Touch(ctx, ws.game.ID); err != nil {
			log.Warn().Err(err).Str("gameId", ws.game.ID).Msg("touch game")
		}
		if err := ws.send(wsMessage{Type: msgStep, Applied: &applied, State: &st}); err != nil {
			return
		}
		ws.syncClock(ctx)
	}
}

// syncClock starts or stops the clock to follow the game's timer flag.
func (ws *wsSession) syncClock(ctx context.Context) {
	if ws.game.Snapshot().IsTimerRunning {
		ws.clock.Start(ctx)
	} else {
		ws.clock.Stop()
	}
}

// tick advances game time by one second and pushes the new state. Returning
// false stops the clock.
func (ws *wsSession) tick() bool {
	if !ws.game.IncrementTime() {
		return false
	}
	st := ws.game.Snapshot()
	if err := ws.send(wsMessage{Type: msgTick, State: &st}); err != nil {
		return false
	}
	return st.IsTimerRunning
}

func (ws *wsSession) send(m wsMessage) error {
	ws.writeMu.Lock()
	defer ws.writeMu.Unlock()
	_ = ws.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return ws.conn.WriteJSON(m)
}

func (ws *wsSession) pinger(ctx context.Context) {
	t := time.NewTicker(pingInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := ws.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
