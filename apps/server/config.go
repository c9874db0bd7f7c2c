package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"piratwhist/apps/server/internal/lobby"
	"piratwhist/apps/server/internal/room"
	"piratwhist/internal/logx"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	bind     string
	port     int
	prefix   string
	logLevel string

	emptyRoomTTL   time.Duration
	reapInterval   time.Duration
	reconnectGrace time.Duration
	botDelay       time.Duration
	sweep          time.Duration
	roundAdvance   time.Duration

	ledger     string
	ledgerPath string
	ledgerDSN  string

	publicURL string
	profile   bool
	version   bool
}

func (c *Config) validate() error {
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	durations := map[string]time.Duration{
		"empty-room-ttl":  c.emptyRoomTTL,
		"reap-interval":   c.reapInterval,
		"reconnect-grace": c.reconnectGrace,
		"bot-delay":       c.botDelay,
		"sweep":           c.sweep,
		"round-advance":   c.roundAdvance,
	}
	for name, d := range durations {
		if d <= 0 {
			return fmt.Errorf("--%s must be positive, got %s", name, d)
		}
	}
	switch strings.ToLower(c.ledger) {
	case "memory", "sqlite":
	case "postgres":
		if strings.TrimSpace(c.ledgerDSN) == "" {
			return errors.New("--ledger postgres requires --ledger-dsn")
		}
	default:
		return fmt.Errorf("unknown ledger mode %q (memory|sqlite|postgres)", c.ledger)
	}
	return nil
}

func (c *Config) lobbyOptions() lobby.Options {
	return lobby.Options{
		EmptyRoomTTL: c.emptyRoomTTL,
		ReapInterval: c.reapInterval,
		Timings: room.Timings{
			Sweep:        c.sweep,
			RoundAdvance: c.roundAdvance,
			BotThink:     c.botDelay,
			Grace:        c.reconnectGrace,
		},
	}
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("PIRATWHIST")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "piratwhist",
		Short:         "Real-time server for the piratwhist trick-taking card game.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			logx.Init("piratwhist", cfg.logLevel)
			return ServeGame(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: PIRATWHIST_BIND)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: PIRATWHIST_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: PIRATWHIST_PREFIX)")
	fs.StringVar(&cfg.logLevel, "log-level", "info", "debug|info|warn|error (env: PIRATWHIST_LOG_LEVEL)")
	fs.DurationVar(&cfg.emptyRoomTTL, "empty-room-ttl", 120*time.Second, "time before an empty room is removed (env: PIRATWHIST_EMPTY_ROOM_TTL)")
	fs.DurationVar(&cfg.reapInterval, "reap-interval", 15*time.Second, "how often empty rooms are checked (env: PIRATWHIST_REAP_INTERVAL)")
	fs.DurationVar(&cfg.reconnectGrace, "reconnect-grace", 30*time.Second, "time a disconnected player keeps a seat before a bot takes over (env: PIRATWHIST_RECONNECT_GRACE)")
	fs.DurationVar(&cfg.botDelay, "bot-delay", 600*time.Millisecond, "bot thinking time per card (env: PIRATWHIST_BOT_DELAY)")
	fs.DurationVar(&cfg.sweep, "sweep", 4*time.Second, "pause after each trick (env: PIRATWHIST_SWEEP)")
	fs.DurationVar(&cfg.roundAdvance, "round-advance", 2*time.Second, "pause before the next round is dealt (env: PIRATWHIST_ROUND_ADVANCE)")
	fs.StringVar(&cfg.ledger, "ledger", "memory", "history store: memory|sqlite|postgres (env: PIRATWHIST_LEDGER)")
	fs.StringVar(&cfg.ledgerPath, "ledger-path", "", "sqlite history file, default in the user cache dir (env: PIRATWHIST_LEDGER_PATH)")
	fs.StringVar(&cfg.ledgerDSN, "ledger-dsn", "", "postgres connection string (env: PIRATWHIST_LEDGER_DSN)")
	fs.StringVar(&cfg.publicURL, "public-url", "", "base URL encoded in invite QR codes, derived from the request when empty (env: PIRATWHIST_PUBLIC_URL)")
	fs.BoolVar(&cfg.profile, "profile", false, "register pprof and statsviz handlers (env: PIRATWHIST_PROFILE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: PIRATWHIST_VERSION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("piratwhist v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
