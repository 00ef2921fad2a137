// notekeep server entry point: load environment, seed first-run data, wire
// the services together and serve.
package main

import (
	"errors"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/avolkov/notekeep/internal/auth"
	"github.com/avolkov/notekeep/internal/clock"
	"github.com/avolkov/notekeep/internal/config"
	"github.com/avolkov/notekeep/internal/notes"
	"github.com/avolkov/notekeep/internal/obs"
	"github.com/avolkov/notekeep/internal/ratelimit"
	"github.com/avolkov/notekeep/internal/store"
	"github.com/avolkov/notekeep/internal/users"
	"github.com/avolkov/notekeep/internal/web"
)

func main() {
	// Load .env if it exists; absence is not an error.
	_ = godotenv.Load()

	obs.Init()
	logger := obs.Pkg("main")

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	clk := clock.Real{}
	st := store.New(cfg.DataDir)

	directory := users.NewDirectory(st, clk)
	if err := directory.Seed(); err != nil {
		logger.Error("failed to seed accounts", "error", err)
		os.Exit(1)
	}

	notesService := notes.NewService(st, clk)
	if err := notesService.SeedSamples(); err != nil {
		logger.Error("failed to seed sample notes", "error", err)
		os.Exit(1)
	}

	sessions := auth.NewSessionService(clk)
	limiter := ratelimit.NewLimiter(cfg.RateLimit)
	defer limiter.Stop()

	mux := http.NewServeMux()
	auth.NewHandler(directory, sessions, limiter).RegisterRoutes(mux)
	web.NewHandler(notesService, clk, cfg.SampleAPIKey).RegisterRoutes(mux, auth.NewMiddleware(sessions))

	logger.Info("listening", "addr", cfg.ListenAddr, "data_dir", cfg.DataDir)
	srv := &http.Server{Addr: cfg.ListenAddr, Handler: mux}
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}
