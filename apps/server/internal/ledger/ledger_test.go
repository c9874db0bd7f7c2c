package ledger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"piratwhist/whist"

	"github.com/julienschmidt/httprouter"
)

func newMemorySQLite(t *testing.T) *SQLiteService {
	t.Helper()
	svc, err := NewSQLiteService(":memory:", 3)
	if err != nil {
		t.Fatalf("NewSQLiteService err: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func TestSQLiteService_RecordAndListRounds(t *testing.T) {
	svc := newMemorySQLite(t)
	names := []string{"Ada", "Computer 1"}
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	svc.RecordRound("0421", "0421-1", base, whist.RoundRecord{
		Round: 1, CardsPer: 7, Bids: []int{2, 3}, Taken: []int{2, 5}, Points: []int{12, -2},
	}, names)
	svc.RecordRound("0421", "0421-1", base.Add(time.Minute), whist.RoundRecord{
		Round: 2, CardsPer: 6, Bids: []int{1, 1}, Taken: []int{1, 5}, Points: []int{11, -4},
	}, names)
	// duplicate round is ignored
	svc.RecordRound("0421", "0421-1", base.Add(2*time.Minute), whist.RoundRecord{Round: 2}, names)
	svc.RecordRound("9999", "9999-1", base, whist.RoundRecord{Round: 1}, names)

	items, err := svc.ListRecent(context.Background(), "0421", 10)
	if err != nil {
		t.Fatalf("ListRecent err: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 rounds for room 0421, got %d", len(items))
	}
	if items[0].Round != 2 || items[0].Kind != KindRound {
		t.Fatalf("expected newest round first, got %+v", items[0])
	}
	if got := items[1].Summary["cardsPer"]; got != float64(7) {
		t.Fatalf("expected cardsPer 7 in summary, got %v", got)
	}
}

func TestSQLiteService_TrimsToRecentLimit(t *testing.T) {
	svc := newMemorySQLite(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for r := 1; r <= 5; r++ {
		svc.RecordRound("1234", "g", base.Add(time.Duration(r)*time.Minute), whist.RoundRecord{Round: r}, nil)
	}
	svc.RecordGame("1234", "g", base.Add(time.Hour), []string{"a", "b"}, []int{40, 12}, 14)

	items, err := svc.ListRecent(context.Background(), "1234", 50)
	if err != nil {
		t.Fatalf("ListRecent err: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected trim to 3 rows, got %d", len(items))
	}
	if items[0].Kind != KindGame || items[0].Round != 14 {
		t.Fatalf("expected game row first, got %+v", items[0])
	}
}

func TestNewService_Modes(t *testing.T) {
	svc, mode, err := NewService(Options{Mode: "memory"})
	if err != nil || mode != "memory-noop" {
		t.Fatalf("memory mode: %v %q", err, mode)
	}
	_ = svc.Close()

	svc, mode, err = NewService(Options{Mode: "sqlite", SQLitePath: ":memory:"})
	if err != nil || mode != "sqlite" {
		t.Fatalf("sqlite mode: %v %q", err, mode)
	}
	_ = svc.Close()

	if _, _, err := NewService(Options{Mode: "postgres"}); err == nil {
		t.Fatal("expected error for postgres without dsn")
	}
	if _, _, err := NewService(Options{Mode: "mongo"}); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestHTTPHandler_ListsHistory(t *testing.T) {
	svc := newMemorySQLite(t)
	svc.RecordRound("0007", "0007-1", time.Now(), whist.RoundRecord{Round: 1, CardsPer: 7}, []string{"x", "y"})

	mux := httprouter.New()
	NewHTTPHandler(svc).RegisterRoutes(mux, "")

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/history/0007?limit=5", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body historyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if body.RoomCode != "0007" || len(body.Items) != 1 {
		t.Fatalf("unexpected body: %+v", body)
	}
}
