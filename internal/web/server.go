package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Alias1177/Lucent/internal/history"
	"github.com/Alias1177/Lucent/internal/risk"
	"github.com/Alias1177/Lucent/internal/session"
	"github.com/Alias1177/Lucent/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// App serves one lookup session over a small JSON API
type App struct {
	id      string
	session *session.Session
	router  *chi.Mux
	logger  zerolog.Logger
}

type predictRequest struct {
	NCTID string `json:"nctid"`
}

type stateResponse struct {
	SessionID  string                   `json:"session_id"`
	Status     string                   `json:"status"`
	Seq        uint64                   `json:"seq"`
	NCTID      string                   `json:"nctid,omitempty"`
	Result     *models.PredictionResult `json:"result,omitempty"`
	Tier       *risk.Tier               `json:"tier,omitempty"`
	Error      string                   `json:"error,omitempty"`
	Superseded bool                     `json:"superseded,omitempty"`
}

type historyItem struct {
	NCTID       string    `json:"nctid"`
	Probability float64   `json:"probability"`
	Timestamp   time.Time `json:"timestamp"`
	Tier        string    `json:"tier"`
}

// NewApp wires the routes around a session
func NewApp(sess *session.Session) *App {
	a := &App{
		id:      uuid.NewString(),
		session: sess,
		router:  chi.NewRouter(),
		logger:  log.With().Str("component", "web").Logger(),
	}

	a.setupMiddleware()
	a.setupRoutes()
	return a
}

// ServeHTTP implements http.Handler
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.Recoverer)
	a.router.Use(a.accessLog)
}

// setupRoutes configures all routes
func (a *App) setupRoutes() {
	a.router.Post("/api/predict", a.handlePredict)
	a.router.Get("/api/state", a.handleState)
	a.router.Get("/api/history", a.handleHistory)
	a.router.Get("/api/tiers", a.handleTiers)
	a.router.Get("/api/model", a.handleModel)
}

func (a *App) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		a.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("Handled request")
	})
}

// handlePredict submits an identifier and waits for the outcome
func (a *App) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	st, err := a.session.Submit(r.Context(), req.NCTID)
	if errors.Is(err, session.ErrSuperseded) {
		// a newer submission owns the session; report what the user now sees
		resp := a.toResponse(a.session.Current())
		resp.Superseded = true
		writeJSON(w, http.StatusOK, resp)
		return
	}

	writeJSON(w, http.StatusOK, a.toResponse(st))
}

func (a *App) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.toResponse(a.session.Current()))
}

func (a *App) handleHistory(w http.ResponseWriter, r *http.Request) {
	entries := a.session.History()
	items := make([]historyItem, 0, history.Capacity)
	for _, e := range entries {
		items = append(items, historyItem{
			NCTID:       e.NCTID,
			Probability: e.Probability,
			Timestamp:   e.Timestamp,
			Tier:        risk.Classify(e.Probability).Label,
		})
	}
	writeJSON(w, http.StatusOK, items)
}

func (a *App) handleTiers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, risk.Tiers())
}

func (a *App) handleModel(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.DefaultModelInfo)
}

func (a *App) toResponse(st session.State) stateResponse {
	resp := stateResponse{
		SessionID: a.id,
		Status:    st.Status.String(),
		Seq:       st.Seq,
		NCTID:     st.NCTID,
		Error:     st.Message,
	}
	if st.Status == session.StatusSucceeded {
		tier := risk.Classify(st.Result.Probability)
		resp.Result = st.Result
		resp.Tier = &tier
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Error encoding response")
	}
}
