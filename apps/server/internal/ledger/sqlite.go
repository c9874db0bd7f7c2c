package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"piratwhist/internal/logx"
	"piratwhist/whist"

	_ "modernc.org/sqlite"
)

type SQLiteService struct {
	db          *sql.DB
	recentLimit int
}

func NewSQLiteService(dbPath string, recentLimit int) (*SQLiteService, error) {
	dbPath = strings.TrimSpace(dbPath)
	if dbPath == "" {
		return nil, fmt.Errorf("empty sqlite database path")
	}
	if dbPath != ":memory:" {
		parent := filepath.Dir(dbPath)
		if parent != "" && parent != "." {
			if err := os.MkdirAll(parent, 0o755); err != nil {
				return nil, err
			}
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, pragma := range []string{
		`PRAGMA busy_timeout = 5000;`,
		`PRAGMA journal_mode = WAL;`,
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := ensureSQLiteHistorySchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if recentLimit <= 0 {
		recentLimit = defaultRecentLimit
	}
	return &SQLiteService{db: db, recentLimit: recentLimit}, nil
}

func (s *SQLiteService) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteService) RecordRound(roomCode, gameID string, playedAt time.Time, rec whist.RoundRecord, names []string) {
	s.insert(roomCode, gameID, KindRound, rec.Round, playedAt, roundSummary(rec, names))
}

func (s *SQLiteService) RecordGame(roomCode, gameID string, finishedAt time.Time, names []string, points []int, rounds int) {
	s.insert(roomCode, gameID, KindGame, rounds, finishedAt, gameSummary(names, points, rounds))
}

func (s *SQLiteService) insert(roomCode, gameID string, kind Kind, round int, playedAt time.Time, summary map[string]any) {
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
INSERT INTO game_history (
    room_code, game_id, kind, round, played_at_ms, summary_json, created_at_ms
)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (game_id, kind, round) DO NOTHING
`, roomCode, gameID, string(kind), round, playedAt.UTC().UnixMilli(), string(summaryRaw), time.Now().UTC().UnixMilli()); err != nil {
		logx.Error("[Ledger] insert %s failed: game=%s round=%d err=%v", kind, gameID, round, err)
		return
	}

	if _, err := tx.ExecContext(ctx, `
DELETE FROM game_history
WHERE room_code = ?
  AND id IN (
      SELECT id
      FROM game_history
      WHERE room_code = ?
      ORDER BY played_at_ms DESC, id DESC
      LIMIT -1 OFFSET ?
  )
`, roomCode, roomCode, s.recentLimit); err != nil {
		logx.Error("[Ledger] trim history failed: room=%s err=%v", roomCode, err)
		return
	}

	if err := tx.Commit(); err != nil {
		logx.Error("[Ledger] commit history failed: game=%s err=%v", gameID, err)
	}
}

func (s *SQLiteService) ListRecent(ctx context.Context, roomCode string, limit int) ([]HistoryItem, error) {
	if strings.TrimSpace(roomCode) == "" {
		return []HistoryItem{}, nil
	}
	limit = clampLimit(limit)
	if ctx == nil {
		ctx = context.Background()
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT game_id, room_code, kind, round, played_at_ms, summary_json
FROM game_history
WHERE room_code = ?
ORDER BY played_at_ms DESC, id DESC
LIMIT ?
`, roomCode, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]HistoryItem, 0, limit)
	for rows.Next() {
		var item HistoryItem
		var kindRaw string
		var playedAtMs int64
		var summaryRaw []byte
		if err := rows.Scan(&item.GameID, &item.RoomCode, &kindRaw, &item.Round, &playedAtMs, &summaryRaw); err != nil {
			return nil, err
		}
		item.Kind = Kind(kindRaw)
		item.PlayedAt = time.UnixMilli(playedAtMs).UTC()
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

func ensureSQLiteHistorySchema(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`
CREATE TABLE IF NOT EXISTS game_history (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    room_code TEXT NOT NULL,
    game_id TEXT NOT NULL,
    kind TEXT NOT NULL,
    round INTEGER NOT NULL,
    played_at_ms INTEGER NOT NULL,
    summary_json TEXT NOT NULL DEFAULT '{}',
    created_at_ms INTEGER NOT NULL,
    UNIQUE (game_id, kind, round)
)`,
		`CREATE INDEX IF NOT EXISTS idx_game_history_room_recent ON game_history(room_code, played_at_ms DESC)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
