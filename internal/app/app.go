package app

import (
	"io"
	"os"

	"github.com/Alias1177/Lucent/config"
	"github.com/Alias1177/Lucent/internal/api/lucent"
	"github.com/Alias1177/Lucent/internal/database"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SetupLogger installs a console logger at the given level as the global logger
func SetupLogger(level string, out io.Writer) zerolog.Logger {
	if out == nil {
		out = os.Stderr
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: out}).Level(lvl).With().Timestamp().Logger()
	log.Logger = logger
	return logger
}

// NewPredictionClient builds the prediction service client from config
func NewPredictionClient(cfg *config.Config) *lucent.Client {
	return lucent.NewClient(lucent.ClientOptions{
		BaseURL:        cfg.APIBase,
		RequestTimeout: cfg.Timeout(),
		RequestsPerSec: cfg.RequestsPerSec,
	})
}

// OpenJournal connects the lookup journal. It returns nil when no
// database is configured.
func OpenJournal(cfg *config.Config) (*database.DB, error) {
	if !cfg.JournalEnabled() {
		return nil, nil
	}

	return database.New(database.ConnectionParams{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	})
}
