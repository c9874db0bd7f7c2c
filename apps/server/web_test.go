package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"piratwhist/apps/server/internal/gateway"
	"piratwhist/apps/server/internal/ledger"
)

func newTestRouter(t *testing.T, cfg *Config) (*gateway.Gateway, *httptest.Server) {
	t.Helper()

	svc, _, err := ledger.NewService(ledger.Options{Mode: "memory"})
	if err != nil {
		t.Fatalf("ledger err: %v", err)
	}
	gw := gateway.New(cfg.lobbyOptions(), svc)
	mux, cleanup, err := newRouter(cfg, gw, svc)
	if err != nil {
		t.Fatalf("newRouter err: %v", err)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		srv.Close()
		cleanup()
		gw.Close()
	})
	return gw, srv
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()

	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, body
}

func TestHealthAndVersion(t *testing.T) {
	_, srv := newTestRouter(t, validConfig())

	resp, body := get(t, srv.URL+"/healthz")
	if resp.StatusCode != http.StatusOK || string(body) != "Ok\n" {
		t.Fatalf("healthz: %d %q", resp.StatusCode, body)
	}
	resp, body = get(t, srv.URL+"/version")
	if resp.StatusCode != http.StatusOK || !bytes.Contains(body, []byte(releaseVersion)) {
		t.Fatalf("version: %d %q", resp.StatusCode, body)
	}
}

func TestInvite(t *testing.T) {
	gw, srv := newTestRouter(t, validConfig())

	r, err := gw.Lobby().Create(3, 1)
	if err != nil {
		t.Fatalf("Create err: %v", err)
	}

	pngMagic := []byte("\x89PNG")
	for i := 0; i < 2; i++ {
		resp, body := get(t, srv.URL+"/invite/"+r.Code)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("invite status %d: %s", resp.StatusCode, body)
		}
		if resp.Header.Get("Content-Type") != "image/png" || !bytes.HasPrefix(body, pngMagic) {
			t.Fatalf("expected a png, got %s", resp.Header.Get("Content-Type"))
		}
	}

	if resp, _ := get(t, srv.URL+"/invite/12"); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for a malformed code, got %d", resp.StatusCode)
	}
	missing := "0000"
	if r.Code == missing {
		missing = "0001"
	}
	if resp, _ := get(t, srv.URL+"/invite/"+missing); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for an unknown room, got %d", resp.StatusCode)
	}
}

func TestInviteLink(t *testing.T) {
	cfg := validConfig()
	req := httptest.NewRequest("GET", "/invite/0421", nil)
	req.Host = "cards.local:8080"
	req.Header.Set("X-Forwarded-Proto", "https")
	if got := inviteLink(cfg, req, "0421"); got != "https://cards.local:8080/?room=0421" {
		t.Fatalf("derived link %q", got)
	}

	cfg.publicURL = "https://whist.example/"
	if got := inviteLink(cfg, req, "0421"); got != "https://whist.example/?room=0421" {
		t.Fatalf("public link %q", got)
	}
}

func TestHistoryRouteMounted(t *testing.T) {
	_, srv := newTestRouter(t, validConfig())

	resp, body := get(t, srv.URL+"/api/history/0421")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("history status %d: %s", resp.StatusCode, body)
	}
}

func TestProfileRoutes(t *testing.T) {
	cfg := validConfig()
	cfg.profile = true
	_, srv := newTestRouter(t, cfg)

	if resp, _ := get(t, srv.URL+"/pprof/heap"); resp.StatusCode != http.StatusOK {
		t.Fatalf("pprof heap status %d", resp.StatusCode)
	}
	if resp, _ := get(t, srv.URL+"/debug/statsviz/"); resp.StatusCode != http.StatusOK {
		t.Fatalf("statsviz status %d", resp.StatusCode)
	}
}
