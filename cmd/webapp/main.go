package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskboard.org/internal/api"
	"taskboard.org/internal/config"
	"taskboard.org/internal/obs"
	"taskboard.org/internal/session"
	"taskboard.org/internal/webapp"
)

var version = "0.3.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	obs.Init()
	log := obs.NewLogger(cfg.Environment, cfg.LogLevel)

	creds, err := session.NewCredentialFile(cfg.CredentialFile)
	if err != nil {
		log.Fatal().Err(err).Msg("open credential file")
	}

	client := api.NewClient(cfg.BackendURL, creds, api.WithTimeout(cfg.RequestTimeout))
	store := session.New(api.NewAuthService(client), creds,
		session.WithCookieName(cfg.CookieName),
		session.WithLogger(log),
	)

	// Resolve any persisted credential before taking traffic.
	restoreCtx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	store.Restore(restoreCtx)
	cancel()
	log.Info().Str("session", store.State().String()).Msg("session restored on boot")

	server := webapp.New(client, store,
		webapp.WithLogger(log),
		webapp.WithVersion(version),
		webapp.WithLoginThrottle(cfg.LoginBurst, cfg.LoginEvery),
	)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           server.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("starting taskboard-web")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Info().Msg("stopped")
}
