package main

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		bind:           "127.0.0.1",
		port:           8080,
		logLevel:       "info",
		emptyRoomTTL:   2 * time.Minute,
		reapInterval:   15 * time.Second,
		reconnectGrace: 30 * time.Second,
		botDelay:       600 * time.Millisecond,
		sweep:          4 * time.Second,
		roundAdvance:   2 * time.Second,
		ledger:         "memory",
	}
}

func TestValidate(t *testing.T) {
	if err := validConfig().validate(); err != nil {
		t.Fatalf("default config rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"port zero", func(c *Config) { c.port = 0 }, "invalid port"},
		{"port too high", func(c *Config) { c.port = 70000 }, "invalid port"},
		{"postgres without dsn", func(c *Config) { c.ledger = "postgres" }, "ledger-dsn"},
		{"unknown ledger", func(c *Config) { c.ledger = "redis" }, "unknown ledger"},
		{"zero grace", func(c *Config) { c.reconnectGrace = 0 }, "reconnect-grace"},
		{"negative sweep", func(c *Config) { c.sweep = -time.Second }, "sweep"},
	}
	for _, tc := range cases {
		cfg := validConfig()
		tc.mutate(cfg)
		err := cfg.validate()
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: expected error containing %q, got %v", tc.name, tc.want, err)
		}
	}

	cfg := validConfig()
	cfg.ledger = "postgres"
	cfg.ledgerDSN = "postgres://localhost/piratwhist"
	if err := cfg.validate(); err != nil {
		t.Fatalf("postgres with dsn rejected: %v", err)
	}
}

func TestLobbyOptions(t *testing.T) {
	opts := validConfig().lobbyOptions()
	if opts.EmptyRoomTTL != 2*time.Minute || opts.Timings.Grace != 30*time.Second {
		t.Fatalf("unexpected lobby options %+v", opts)
	}
	if opts.Timings.BotThink != 600*time.Millisecond || opts.Timings.Sweep != 4*time.Second {
		t.Fatalf("unexpected timings %+v", opts.Timings)
	}
}

func TestNewCmd_EnvOverridesDefault(t *testing.T) {
	t.Setenv("PIRATWHIST_PORT", "9191")
	t.Setenv("PIRATWHIST_RECONNECT_GRACE", "45s")

	cfg := &Config{}
	newCmd(cfg)
	if cfg.port != 9191 {
		t.Fatalf("expected port from env, got %d", cfg.port)
	}
	if cfg.reconnectGrace != 45*time.Second {
		t.Fatalf("expected grace from env, got %s", cfg.reconnectGrace)
	}
	if cfg.sweep != 4*time.Second {
		t.Fatalf("expected default sweep, got %s", cfg.sweep)
	}
}
