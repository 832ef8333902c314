package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Alias1177/Lucent/models"
	"github.com/cenkalti/backoff/v4"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

// DB represents a database connection
type DB struct {
	*sql.DB
}

// ConnectionParams holds PostgreSQL connection parameters
type ConnectionParams struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string

	// ConnectTimeout bounds the initial ping retries
	ConnectTimeout time.Duration
}

// ConnString builds the lib/pq connection string
func (p ConnectionParams) ConnString() string {
	sslMode := p.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, sslMode,
	)
}

// New creates a new database connection and makes sure the journal table exists
func New(params ConnectionParams) (*DB, error) {
	db, err := sql.Open("postgres", params.ConnString())
	if err != nil {
		return nil, err
	}

	// The database container often comes up after us
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = params.ConnectTimeout
	if bo.MaxElapsedTime == 0 {
		bo.MaxElapsedTime = 30 * time.Second
	}

	ping := func() error {
		if err := db.Ping(); err != nil {
			log.Warn().Err(err).Str("host", params.Host).Msg("Database not reachable yet")
			return err
		}
		return nil
	}
	if err := backoff.Retry(ping, bo); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	return &DB{db}, nil
}

// createTables creates the necessary tables if they don't exist
func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS prediction_lookups (
			id UUID PRIMARY KEY,
			nctid TEXT NOT NULL,
			outcome TEXT NOT NULL,
			probability DOUBLE PRECISION,
			uncertainty DOUBLE PRECISION,
			message TEXT,
			created_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS prediction_lookups_nctid_idx
		ON prediction_lookups (nctid)
	`)
	return err
}

// RecordLookup writes one resolved lookup to the journal
func (db *DB) RecordLookup(ctx context.Context, rec models.LookupRecord) error {
	var probability, uncertainty sql.NullFloat64
	if rec.Outcome == models.OutcomeSucceeded {
		probability = sql.NullFloat64{Float64: rec.Probability, Valid: true}
		uncertainty = sql.NullFloat64{Float64: rec.Uncertainty, Valid: true}
	}

	var message sql.NullString
	if rec.Message != "" {
		message = sql.NullString{String: rec.Message, Valid: true}
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO prediction_lookups (
			id, nctid, outcome, probability, uncertainty, message, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		rec.ID, rec.NCTID, rec.Outcome, probability, uncertainty, message, rec.CreatedAt)

	return err
}
