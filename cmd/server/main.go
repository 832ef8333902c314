package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Alias1177/Lucent/config"
	"github.com/Alias1177/Lucent/internal/app"
	"github.com/Alias1177/Lucent/internal/session"
	"github.com/Alias1177/Lucent/internal/web"
)

func main() {
	cfg, err := config.Load()
	logger := app.SetupLogger(os.Getenv("LOG_LEVEL"), os.Stderr)
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid configuration")
	}

	opts := []session.Option{}
	db, err := app.OpenJournal(cfg)
	if err != nil {
		logger.Error().Err(err).Msg("Lookup journal unavailable, continuing without it")
	} else if db != nil {
		defer db.Close()
		opts = append(opts, session.WithJournal(db))
	}

	sess := session.New(app.NewPredictionClient(cfg), opts...)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           web.NewApp(sess),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Str("api_base", cfg.APIBase).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Error during shutdown")
	}
	logger.Info().Msg("Server stopped")
}
