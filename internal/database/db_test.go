package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/Alias1177/Lucent/models"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnString(t *testing.T) {
	p := ConnectionParams{
		Host:     "db",
		Port:     "5432",
		User:     "lucent",
		Password: "secret",
		DBName:   "lucent",
		SSLMode:  "require",
	}
	assert.Equal(t, "host=db port=5432 user=lucent password=secret dbname=lucent sslmode=require", p.ConnString())

	p.SSLMode = ""
	assert.Contains(t, p.ConnString(), "sslmode=disable")
}

func TestDBImplementsJournal(t *testing.T) {
	var _ models.LookupJournal = (*DB)(nil)
}

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return &DB{conn}, mock
}

func TestCreateTables(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS prediction_lookups`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE INDEX IF NOT EXISTS prediction_lookups_nctid_idx`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, createTables(db.DB))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTablesStopsOnError(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS prediction_lookups`).
		WillReturnError(errors.New("permission denied"))

	assert.ErrorContains(t, createTables(db.DB), "permission denied")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordLookup(t *testing.T) {
	createdAt := time.Date(2025, 6, 3, 14, 5, 9, 0, time.UTC)

	tests := []struct {
		name        string
		rec         models.LookupRecord
		probability interface{}
		uncertainty interface{}
		message     interface{}
	}{
		{
			name: "succeeded stores scores",
			rec: models.LookupRecord{
				ID:          "0f8fad5b-d9cb-469f-a165-70867728950e",
				NCTID:       "NCT01721746",
				Outcome:     models.OutcomeSucceeded,
				Probability: 0.81,
				Uncertainty: 0.05,
				CreatedAt:   createdAt,
			},
			probability: sql.NullFloat64{Float64: 0.81, Valid: true},
			uncertainty: sql.NullFloat64{Float64: 0.05, Valid: true},
			message:     sql.NullString{},
		},
		{
			name: "failed stores null scores",
			rec: models.LookupRecord{
				ID:          "7c9e6679-7425-40de-944b-e07fc1f90ae7",
				NCTID:       "NCT00000000",
				Outcome:     models.OutcomeFailed,
				Probability: 0.9,
				Uncertainty: 0.2,
				Message:     "connection error",
				CreatedAt:   createdAt,
			},
			probability: sql.NullFloat64{},
			uncertainty: sql.NullFloat64{},
			message:     sql.NullString{String: "connection error", Valid: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)

			mock.ExpectExec(`INSERT INTO prediction_lookups`).
				WithArgs(tt.rec.ID, tt.rec.NCTID, tt.rec.Outcome, tt.probability, tt.uncertainty, tt.message, createdAt).
				WillReturnResult(sqlmock.NewResult(0, 1))

			require.NoError(t, db.RecordLookup(context.Background(), tt.rec))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRecordLookupReturnsExecError(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(`INSERT INTO prediction_lookups`).
		WillReturnError(errors.New("connection reset"))

	err := db.RecordLookup(context.Background(), models.LookupRecord{
		ID:        "0f8fad5b-d9cb-469f-a165-70867728950e",
		NCTID:     "NCT01721746",
		Outcome:   models.OutcomeSucceeded,
		CreatedAt: time.Now(),
	})
	assert.ErrorContains(t, err, "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}
