package ledger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"piratwhist/whist"
)

const (
	defaultRecentLimit = 200
	defaultLocalDBName = "piratwhist_history.db"
)

type Kind string

const (
	KindRound Kind = "round"
	KindGame  Kind = "game"
)

// Service stores finished rounds and games. Write methods are fire-and-forget:
// failures are logged, never returned to the game loop.
type Service interface {
	Close() error
	RecordRound(roomCode, gameID string, playedAt time.Time, rec whist.RoundRecord, names []string)
	RecordGame(roomCode, gameID string, finishedAt time.Time, names []string, points []int, rounds int)
	ListRecent(ctx context.Context, roomCode string, limit int) ([]HistoryItem, error)
}

type HistoryItem struct {
	GameID   string         `json:"game_id"`
	RoomCode string         `json:"room_code"`
	Kind     Kind           `json:"kind"`
	Round    int            `json:"round"`
	PlayedAt time.Time      `json:"played_at"`
	Summary  map[string]any `json:"summary"`
}

type Options struct {
	Mode        string // memory | sqlite | postgres
	SQLitePath  string
	PostgresDSN string
	RecentLimit int // rows kept per room code, 0 => default
}

type noopService struct{}

func (n *noopService) Close() error { return nil }

func (n *noopService) RecordRound(_, _ string, _ time.Time, _ whist.RoundRecord, _ []string) {}

func (n *noopService) RecordGame(_, _ string, _ time.Time, _ []string, _ []int, _ int) {}

func (n *noopService) ListRecent(_ context.Context, _ string, _ int) ([]HistoryItem, error) {
	return []HistoryItem{}, nil
}

// NewService picks the backing store for opts.Mode and returns it with the
// resolved mode name.
func NewService(opts Options) (Service, string, error) {
	if opts.RecentLimit <= 0 {
		opts.RecentLimit = defaultRecentLimit
	}
	switch strings.ToLower(strings.TrimSpace(opts.Mode)) {
	case "", "memory":
		return &noopService{}, "memory-noop", nil
	case "sqlite", "local":
		path := strings.TrimSpace(opts.SQLitePath)
		if path == "" {
			p, err := defaultLocalDatabasePath()
			if err != nil {
				return nil, "", err
			}
			path = p
		}
		service, err := NewSQLiteService(path, opts.RecentLimit)
		if err != nil {
			return nil, "", err
		}
		return service, "sqlite", nil
	case "postgres":
		service, err := NewPostgresService(opts.PostgresDSN, opts.RecentLimit)
		if err != nil {
			return nil, "", err
		}
		return service, "postgres", nil
	default:
		return nil, "", fmt.Errorf("unknown ledger mode %q", opts.Mode)
	}
}

func defaultLocalDatabasePath() (string, error) {
	userConfigDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(userConfigDir, "piratwhist", defaultLocalDBName), nil
}

func roundSummary(rec whist.RoundRecord, names []string) map[string]any {
	return map[string]any{
		"round":    rec.Round,
		"cardsPer": rec.CardsPer,
		"names":    names,
		"bids":     rec.Bids,
		"taken":    rec.Taken,
		"points":   rec.Points,
	}
}

func gameSummary(names []string, points []int, rounds int) map[string]any {
	return map[string]any{
		"names":       names,
		"pointsTotal": points,
		"rounds":      rounds,
	}
}

func validKey(roomCode, gameID string) bool {
	return strings.TrimSpace(roomCode) != "" && strings.TrimSpace(gameID) != ""
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 20
	}
	return limit
}
