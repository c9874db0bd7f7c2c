package main

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"piratwhist/apps/server/internal/lobby"
	"piratwhist/internal/logx"

	"github.com/dgraph-io/ristretto"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

const (
	inviteTTL     = 10 * time.Minute
	inviteQRSize  = 320
	inviteMaxCost = 8 << 20
)

// inviteCache keeps rendered invite PNGs keyed by the URL they encode.
type inviteCache struct {
	cache *ristretto.Cache
	ttl   time.Duration
}

func newInviteCache(ttl time.Duration) (*inviteCache, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e4,
		MaxCost:     inviteMaxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create invite cache: %w", err)
	}
	return &inviteCache{cache: cache, ttl: ttl}, nil
}

func (c *inviteCache) png(link string) ([]byte, error) {
	if v, ok := c.cache.Get(link); ok {
		if data, ok := v.([]byte); ok {
			return data, nil
		}
	}
	data, err := qrcode.Encode(link, qrcode.Medium, inviteQRSize)
	if err != nil {
		return nil, err
	}
	c.cache.SetWithTTL(link, data, int64(len(data)), c.ttl)
	c.cache.Wait()
	return data, nil
}

func (c *inviteCache) Close() {
	c.cache.Close()
}

// inviteLink builds the join URL for code, using --public-url when set and
// the request's own scheme and host otherwise.
func inviteLink(cfg *Config, r *http.Request, code string) string {
	base := strings.TrimSuffix(cfg.publicURL, "/")
	if base == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}
		base = scheme + "://" + r.Host + cfg.prefix
	}
	return base + "/?room=" + url.QueryEscape(code)
}

func serveInvite(cfg *Config, lby *lobby.Lobby, invites *inviteCache) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		code := strings.TrimSpace(p.ByName("code"))
		if _, err := lby.Lookup(code); err != nil {
			status := http.StatusNotFound
			if errors.Is(err, lobby.ErrInvalidRoomCode) {
				status = http.StatusBadRequest
			}
			http.Error(w, err.Error(), status)
			return
		}

		data, err := invites.png(inviteLink(cfg, r, code))
		if err != nil {
			logx.Error("[Invite] qr generation for %s failed: %v", code, err)
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "private, max-age=600")
		securityHeaders(w)
		_, _ = w.Write(data)
	}
}
