package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Alias1177/Lucent/internal/history"
	"github.com/Alias1177/Lucent/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Status is the lifecycle stage of a lookup
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "IDLE"
	case StatusLoading:
		return "LOADING"
	case StatusSucceeded:
		return "SUCCEEDED"
	case StatusFailed:
		return "FAILED"
	}
	return "UNKNOWN"
}

// State is a snapshot of the session. Result is set only when Succeeded,
// Err and Message only when Failed.
type State struct {
	Status  Status
	Seq     uint64
	NCTID   string
	Result  *models.PredictionResult
	Err     error
	Message string
}

// Terminal reports whether the state ends a submission
func (s State) Terminal() bool {
	return s.Status == StatusSucceeded || s.Status == StatusFailed
}

// Observer receives the states the session moves through, in order. A state
// already overtaken by a newer submission is skipped. The callback may read
// the session but must not submit from inside it.
type Observer func(State)

// Session owns the current lookup state and the recent history
type Session struct {
	client   models.PredictionClient
	history  *history.History
	journal  models.LookupJournal
	observer Observer
	now      func() time.Time
	logger   zerolog.Logger

	mu    sync.Mutex
	seq   uint64
	state State

	// notifyMu serialises observer calls
	notifyMu sync.Mutex
}

// Option configures a Session
type Option func(*Session)

// WithJournal records every resolved remote lookup
func WithJournal(j models.LookupJournal) Option {
	return func(s *Session) { s.journal = j }
}

// WithObserver registers a callback for state changes
func WithObserver(o Observer) Option {
	return func(s *Session) { s.observer = o }
}

// WithClock overrides the clock used for history timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithLogger overrides the component logger
func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// New creates an idle session backed by the given prediction client
func New(client models.PredictionClient, opts ...Option) *Session {
	s := &Session{
		client:  client,
		history: history.New(),
		now:     time.Now,
		logger:  log.With().Str("component", "session").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit runs one lookup and returns the state it resolved to.
//
// A blank identifier fails immediately without a network call. Otherwise
// the session moves to Loading, calls the service once and resolves to
// Succeeded or Failed. If another Submit started meanwhile, the outcome is
// returned with ErrSuperseded and neither state nor history is touched.
func (s *Session) Submit(ctx context.Context, raw string) (State, error) {
	nctid := strings.TrimSpace(raw)

	s.mu.Lock()
	s.seq++
	seq := s.seq

	if nctid == "" {
		st := failedState(seq, "", &ValidationError{Input: raw})
		s.setAndNotify(st)
		s.logger.Debug().Uint64("seq", seq).Msg("Rejected blank identifier")
		return st, nil
	}

	s.setAndNotify(State{Status: StatusLoading, Seq: seq, NCTID: nctid})
	s.logger.Info().Uint64("seq", seq).Str("nctid", nctid).Msg("Requesting prediction")

	resp, err := s.client.Predict(ctx, nctid)
	st := s.resolve(seq, nctid, resp, err)

	s.mu.Lock()
	if seq != s.seq {
		latest := s.seq
		s.mu.Unlock()
		s.logger.Debug().Uint64("seq", seq).Uint64("latest", latest).Str("nctid", nctid).Msg("Discarding superseded response")
		return st, ErrSuperseded
	}

	if st.Status == StatusSucceeded {
		s.history.Push(models.HistoryEntry{
			NCTID:       st.Result.NCTID,
			Probability: st.Result.Probability,
			Timestamp:   s.now(),
		})
	}
	s.setAndNotify(st)

	s.record(ctx, st)
	return st, nil
}

// setAndNotify replaces the state and hands it to the observer.
// Must be called with mu held; releases it. A state that has already been
// overtaken by a newer submission is not delivered.
func (s *Session) setAndNotify(st State) {
	s.state = st
	s.mu.Unlock()

	if s.observer == nil {
		return
	}

	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	if s.Current().Seq != st.Seq {
		return
	}
	s.observer(st)
}

func (s *Session) resolve(seq uint64, nctid string, resp *models.PredictResponse, err error) State {
	if err != nil {
		s.logger.Error().Err(err).Uint64("seq", seq).Str("nctid", nctid).Msg("Prediction request failed")
		return failedState(seq, nctid, &TransportError{NCTID: nctid, Err: err})
	}

	if resp == nil {
		return failedState(seq, nctid, &TransportError{NCTID: nctid, Err: errMissingFields})
	}

	if resp.HasError() {
		s.logger.Warn().Uint64("seq", seq).Str("nctid", nctid).Str("remote_error", resp.ErrorText()).Msg("Prediction service could not analyse trial")
		return failedState(seq, nctid, &ApplicationError{NCTID: nctid, Remote: resp.ErrorText()})
	}

	if resp.Deterministic == nil || resp.Uncertainty == nil {
		return failedState(seq, nctid, &TransportError{NCTID: nctid, Err: errMissingFields})
	}

	result := &models.PredictionResult{
		NCTID:              nctid,
		Probability:        *resp.Deterministic,
		Uncertainty:        *resp.Uncertainty,
		SampledProbability: resp.Probability,
	}
	if resp.NCTID != "" {
		result.NCTID = resp.NCTID
	}

	s.logger.Info().Uint64("seq", seq).Str("nctid", result.NCTID).Float64("probability", result.Probability).Float64("uncertainty", result.Uncertainty).Msg("Prediction received")
	return State{Status: StatusSucceeded, Seq: seq, NCTID: nctid, Result: result}
}

func (s *Session) record(ctx context.Context, st State) {
	if s.journal == nil {
		return
	}

	rec := models.LookupRecord{
		ID:        uuid.NewString(),
		NCTID:     st.NCTID,
		Message:   st.Message,
		CreatedAt: s.now(),
	}
	if st.Status == StatusSucceeded {
		rec.Outcome = models.OutcomeSucceeded
		rec.Probability = st.Result.Probability
		rec.Uncertainty = st.Result.Uncertainty
	} else {
		rec.Outcome = models.OutcomeFailed
	}

	if err := s.journal.RecordLookup(context.WithoutCancel(ctx), rec); err != nil {
		s.logger.Error().Err(err).Str("nctid", st.NCTID).Msg("Error writing lookup journal")
	}
}

// Current returns the latest state
func (s *Session) Current() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// History returns recent successful lookups, most recent first
func (s *Session) History() []models.HistoryEntry {
	return s.history.List()
}

func failedState(seq uint64, nctid string, err error) State {
	return State{
		Status:  StatusFailed,
		Seq:     seq,
		NCTID:   nctid,
		Err:     err,
		Message: UserMessage(err),
	}
}
