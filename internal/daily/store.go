package daily

import (
	"context"
	"database/sql"
)

// DefaultLimit caps leaderboard queries when the caller passes no limit.
const DefaultLimit = 20

// Result is one player's finished daily deal.
type Result struct {
	UserID      string `json:"userId"`
	Date        string `json:"date"`
	Moves       int    `json:"moves"`
	TimeSeconds int    `json:"timeSeconds"`
}

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store reads and writes the daily_results table.
type Store struct{ db DBTX }

func NewStore(db DBTX) *Store { return &Store{db: db} }

// AlreadyPlayed reports whether userID has a recorded result for date.
func (s *Store) AlreadyPlayed(ctx context.Context, userID, date string) (bool, error) {
	var cnt int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM daily_results WHERE user_id=? AND date=?",
		userID, date,
	).Scan(&cnt)
	return cnt > 0, err
}

// InsertResult records a result. A second result for the same user and date is ignored.
func (s *Store) InsertResult(ctx context.Context, r Result) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO daily_results(user_id, date, moves, time_seconds)
		 VALUES(?,?,?,?)`, r.UserID, r.Date, r.Moves, r.TimeSeconds,
	)
	return err
}

type LBRow struct {
	UserID      string `json:"userId"`
	Username    string `json:"username"`
	Moves       int    `json:"moves"`
	TimeSeconds int    `json:"timeSeconds"`
}

// Leaderboard returns the fastest results for date, ties broken by fewer moves
// and then by who finished first.
func (s *Store) Leaderboard(ctx context.Context, date string, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.user_id, COALESCE(u.username, ''), r.moves, r.time_seconds
		 FROM daily_results r
		 LEFT JOIN users u ON u.id = r.user_id
		 WHERE r.date=?
		 ORDER BY r.time_seconds ASC, r.moves ASC, r.created_at ASC, r.rowid ASC
		 LIMIT ?`, date, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]LBRow, 0, limit)
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.UserID, &r.Username, &r.Moves, &r.TimeSeconds); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
