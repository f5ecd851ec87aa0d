package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/utakatalp/league-odds/internal/league"
	"github.com/utakatalp/league-odds/internal/sim"
)

// MatchLoader supplies a fresh copy of the season's match records.
type MatchLoader interface {
	LoadMatches(ctx context.Context) ([]*league.Match, error)
}

// Server exposes ratings and on-demand simulations over HTTP.
type Server struct {
	router    *mux.Router
	loader    MatchLoader
	cfg       sim.Config
	maxTrials int
	log       *logrus.Entry
}

func NewServer(loader MatchLoader, cfg sim.Config, maxTrials int, log *logrus.Entry) *Server {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = logrus.NewEntry(l)
	}
	s := &Server{
		router:    mux.NewRouter(),
		loader:    loader,
		cfg:       cfg,
		maxTrials: maxTrials,
		log:       log,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(s.logRequests)
	s.router.HandleFunc("/healthz", s.health).Methods(http.MethodGet)
	s.router.HandleFunc("/teams", s.listTeams).Methods(http.MethodGet)
	s.router.HandleFunc("/teams/{name}", s.getTeam).Methods(http.MethodGet)
	s.router.HandleFunc("/simulations", s.createSimulation).Methods(http.MethodPost)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		}).Info("request")
	})
}

type teamView struct {
	Name          string             `json:"name"`
	Points        int                `json:"points"`
	Rating        float64            `json:"rating"`
	Probabilities map[string]float64 `json:"probabilities,omitempty"`
}

type simulationRequest struct {
	Trials    *int    `json:"trials"`
	Stability *int    `json:"stability"`
	Seed      *uint64 `json:"seed"`
}

type simulationView struct {
	ID        string     `json:"id"`
	Trials    int        `json:"trials"`
	Stability int        `json:"stability"`
	Skipped   int        `json:"skipped"`
	ElapsedMS int64      `json:"elapsed_ms"`
	Teams     []teamView `json:"teams"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) ratings(r *http.Request) (*league.Registry, error) {
	matches, err := s.loader.LoadMatches(r.Context())
	if err != nil {
		return nil, fmt.Errorf("loading matches: %w", err)
	}
	return league.BuildRegistry(matches, s.cfg.Rating)
}

func (s *Server) listTeams(w http.ResponseWriter, r *http.Request) {
	reg, err := s.ratings(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	views := make([]teamView, 0, reg.Len())
	for _, t := range league.Standings(reg.Teams) {
		views = append(views, teamView{Name: t.Name, Points: t.Points, Rating: t.Rating})
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) getTeam(w http.ResponseWriter, r *http.Request) {
	reg, err := s.ratings(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	name := mux.Vars(r)["name"]
	t, ok := reg.Lookup(name)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown team " + name})
		return
	}
	writeJSON(w, http.StatusOK, teamView{Name: t.Name, Points: t.Points, Rating: t.Rating})
}

func (s *Server) createSimulation(w http.ResponseWriter, r *http.Request) {
	var req simulationRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body: " + err.Error()})
			return
		}
	}

	cfg := s.cfg
	if req.Trials != nil {
		cfg.Trials = *req.Trials
	}
	if req.Stability != nil {
		cfg.Stability = *req.Stability
	}
	if req.Seed != nil {
		cfg.Seed = *req.Seed
	}
	if cfg.Trials > s.maxTrials {
		s.fail(w, &league.InvalidConfigurationError{
			Field:   "trials",
			Message: fmt.Sprintf("at most %d per request", s.maxTrials),
		})
		return
	}

	runner, err := sim.NewRunner(cfg, s.log)
	if err != nil {
		s.fail(w, err)
		return
	}
	matches, err := s.loader.LoadMatches(r.Context())
	if err != nil {
		s.fail(w, fmt.Errorf("loading matches: %w", err))
		return
	}
	res, err := runner.Run(r.Context(), matches, nil)
	if err != nil {
		s.fail(w, err)
		return
	}

	view := simulationView{
		ID:        res.ID.String(),
		Trials:    res.Trials,
		Stability: cfg.Stability,
		Skipped:   res.Registry.Skipped,
		ElapsedMS: res.Elapsed.Milliseconds(),
	}
	for _, t := range league.Standings(res.Teams) {
		probs := make(map[string]float64, league.NumTiers)
		for _, tier := range league.Tiers() {
			probs[tier.String()] = t.Probability(tier, res.Trials)
		}
		view.Teams = append(view.Teams, teamView{
			Name:          t.Name,
			Points:        t.Points,
			Rating:        t.Rating,
			Probabilities: probs,
		})
	}
	writeJSON(w, http.StatusCreated, view)
}

// fail maps engine errors onto status codes.
func (s *Server) fail(w http.ResponseWriter, err error) {
	var (
		invalid   *league.InvalidConfigurationError
		integrity *league.DataIntegrityError
		roster    *league.RosterSizeError
	)
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &invalid):
		status = http.StatusBadRequest
	case errors.As(err, &integrity), errors.As(err, &roster):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled):
		status = 499
	}
	if status == http.StatusInternalServerError {
		s.log.WithError(err).Error("request failed")
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
