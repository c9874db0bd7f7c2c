package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"piratwhist/internal/logx"
	"piratwhist/whist"

	_ "github.com/lib/pq"
)

type PostgresService struct {
	db          *sql.DB
	recentLimit int
}

func NewPostgresService(dsn string, recentLimit int) (*PostgresService, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("empty postgres dsn")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := ensurePostgresHistorySchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if recentLimit <= 0 {
		recentLimit = defaultRecentLimit
	}
	return &PostgresService{db: db, recentLimit: recentLimit}, nil
}

func (s *PostgresService) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *PostgresService) RecordRound(roomCode, gameID string, playedAt time.Time, rec whist.RoundRecord, names []string) {
	s.insert(roomCode, gameID, KindRound, rec.Round, playedAt, roundSummary(rec, names))
}

func (s *PostgresService) RecordGame(roomCode, gameID string, finishedAt time.Time, names []string, points []int, rounds int) {
	s.insert(roomCode, gameID, KindGame, rounds, finishedAt, gameSummary(names, points, rounds))
}

func (s *PostgresService) insert(roomCode, gameID string, kind Kind, round int, playedAt time.Time, summary map[string]any) {
	if !validKey(roomCode, gameID) {
		return
	}
	if playedAt.IsZero() {
		playedAt = time.Now().UTC()
	}
	summaryRaw, err := json.Marshal(summary)
	if err != nil {
		logx.Error("[Ledger] marshal %s summary failed: game=%s err=%v", kind, gameID, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logx.Error("[Ledger] begin history tx failed: game=%s err=%v", gameID, err)
		return
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO game_history (room_code, game_id, kind, round, played_at, summary_json)
VALUES ($1, $2, $3, $4, $5, $6::jsonb)
ON CONFLICT (game_id, kind, round) DO NOTHING
`, roomCode, gameID, string(kind), round, playedAt.UTC(), string(summaryRaw)); err != nil {
		logx.Error("[Ledger] insert %s failed: game=%s round=%d err=%v", kind, gameID, round, err)
		return
	}

	if _, err := tx.ExecContext(ctx, `
DELETE FROM game_history
WHERE room_code = $1
  AND id IN (
      SELECT id
      FROM game_history
      WHERE room_code = $1
      ORDER BY played_at DESC, id DESC
      OFFSET $2
  )
`, roomCode, s.recentLimit); err != nil {
		logx.Error("[Ledger] trim history failed: room=%s err=%v", roomCode, err)
		return
	}

	if err := tx.Commit(); err != nil {
		logx.Error("[Ledger] commit history failed: game=%s err=%v", gameID, err)
	}
}

func (s *PostgresService) ListRecent(ctx context.Context, roomCode string, limit int) ([]HistoryItem, error) {
	if strings.TrimSpace(roomCode) == "" {
		return []HistoryItem{}, nil
	}
	limit = clampLimit(limit)
	if ctx == nil {
		ctx = context.Background()
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT game_id, room_code, kind, round, played_at, summary_json
FROM game_history
WHERE room_code = $1
ORDER BY played_at DESC, id DESC
LIMIT $2
`, roomCode, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]HistoryItem, 0, limit)
	for rows.Next() {
		var item HistoryItem
		var kindRaw string
		var summaryRaw []byte
		if err := rows.Scan(&item.GameID, &item.RoomCode, &kindRaw, &item.Round, &item.PlayedAt, &summaryRaw); err != nil {
			return nil, err
		}
		item.Kind = Kind(kindRaw)
		item.PlayedAt = item.PlayedAt.UTC()
		if len(summaryRaw) > 0 {
			_ = json.Unmarshal(summaryRaw, &item.Summary)
		}
		if item.Summary == nil {
			item.Summary = map[string]any{}
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func ensurePostgresHistorySchema(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`
CREATE TABLE IF NOT EXISTS game_history (
    id BIGSERIAL PRIMARY KEY,
    room_code TEXT NOT NULL,
    game_id TEXT NOT NULL,
    kind TEXT NOT NULL,
    round INTEGER NOT NULL,
    played_at TIMESTAMPTZ NOT NULL,
    summary_json JSONB NOT NULL DEFAULT '{}'::jsonb,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (game_id, kind, round)
)`,
		`CREATE INDEX IF NOT EXISTS idx_game_history_room_recent ON game_history(room_code, played_at DESC)`,
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
