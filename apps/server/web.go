package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"piratwhist/apps/server/internal/gateway"
	"piratwhist/apps/server/internal/ledger"
	"piratwhist/internal/logx"

	"github.com/julienschmidt/httprouter"
)

const (
	timeout time.Duration = 10 * time.Second
)

func securityHeaders(w http.ResponseWriter) {
	w.Header().Set("Cross-Origin-Resource-Policy", "same-site")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
	w.Header().Set("X-Content-Type-Options", "nosniff")
}

func serveHealthCheck() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		securityHeaders(w)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("Ok\n"))
	}
}

func serveVersion() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		securityHeaders(w)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("piratwhist v" + releaseVersion + "\n"))
	}
}

// newRouter wires every HTTP route. The returned cleanup releases the invite
// cache.
func newRouter(cfg *Config, gw *gateway.Gateway, svc ledger.Service) (*httprouter.Router, func(), error) {
	mux := httprouter.New()

	mux.PanicHandler = func(w http.ResponseWriter, r *http.Request, i any) {
		logx.Error("[HTTP] panic serving %s: %v", r.URL.Path, i)
		securityHeaders(w)
		http.Error(w, "An error has occurred. Please try again.", http.StatusInternalServerError)
	}

	cfg.prefix = strings.TrimSuffix(cfg.prefix, "/")

	invites, err := newInviteCache(inviteTTL)
	if err != nil {
		return nil, nil, err
	}

	mux.HandlerFunc("GET", cfg.prefix+"/ws", gw.HandleWebSocket)

	mux.GET(cfg.prefix+"/healthz", serveHealthCheck())

	mux.GET(cfg.prefix+"/version", serveVersion())

	mux.GET(cfg.prefix+"/invite/:code", serveInvite(cfg, gw.Lobby(), invites))

	ledger.NewHTTPHandler(svc).RegisterRoutes(mux, cfg.prefix)

	if cfg.profile {
		if err := registerProfileHandlers(cfg, mux); err != nil {
			invites.Close()
			return nil, nil, err
		}
	}

	return mux, invites.Close, nil
}

func ServeGame(ctx context.Context, cfg *Config) error {
	logx.Info("START: piratwhist v%s", releaseVersion)

	svc, mode, err := ledger.NewService(ledger.Options{
		Mode:        cfg.ledger,
		SQLitePath:  cfg.ledgerPath,
		PostgresDSN: cfg.ledgerDSN,
	})
	if err != nil {
		return err
	}
	defer svc.Close()
	logx.Info("[Ledger] mode=%s", mode)

	gw := gateway.New(cfg.lobbyOptions(), svc)
	defer gw.Close()

	mux, cleanup, err := newRouter(cfg, gw, svc)
	if err != nil {
		return err
	}
	defer cleanup()

	go gw.Lobby().Run(ctx)

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.bind, strconv.Itoa(cfg.port)),
		Handler:           mux,
		IdleTimeout:       10 * time.Minute,
		ReadTimeout:       timeout,
		ReadHeaderTimeout: timeout,
	}

	go func() {
		logx.Info("SERVE: Listening on http://%s%s/", srv.Addr, cfg.prefix)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logx.Error("SERVE: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)

	logx.Info("STOP: %d connections dropped", gw.ConnectionCount())

	return nil
}
