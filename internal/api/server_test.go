package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/utakatalp/league-odds/internal/league"
	"github.com/utakatalp/league-odds/internal/sim"
)

type seasonLoader struct {
	teams int
}

// LoadMatches builds a new season on every call, half of it played.
func (l seasonLoader) LoadMatches(ctx context.Context) ([]*league.Match, error) {
	names := make([]string, l.teams)
	for i := range names {
		names[i] = fmt.Sprintf("Club%02d", i+1)
	}
	var matches []*league.Match
	for i, m := range league.GenerateSeason(names) {
		if m.Round >= l.teams {
			matches = append(matches, m)
			continue
		}
		matches = append(matches, league.Played(m.Round, m.HomeName, i%3, (i/3)%2, m.AwayName))
	}
	return matches, nil
}

func newTestServer(teams int) *Server {
	cfg := sim.DefaultConfig()
	cfg.Trials = 200
	cfg.Workers = 2
	cfg.Seed = 1
	return NewServer(seasonLoader{teams: teams}, cfg, 10_000, nil)
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(20), http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestListAndGetTeams(t *testing.T) {
	s := newTestServer(20)

	rec := do(t, s, http.MethodGet, "/teams", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var teams []teamView
	if err := json.NewDecoder(rec.Body).Decode(&teams); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if len(teams) != 20 {
		t.Fatalf("got %d teams, want 20", len(teams))
	}
	for i := 1; i < len(teams); i++ {
		if teams[i].Points > teams[i-1].Points {
			t.Errorf("teams not in table order at %d", i)
		}
	}

	rec = do(t, s, http.MethodGet, "/teams/Club03", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	rec = do(t, s, http.MethodGet, "/teams/Nobody", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown team status = %d, want 404", rec.Code)
	}
}

func TestCreateSimulation(t *testing.T) {
	rec := do(t, newTestServer(20), http.MethodPost, "/simulations", `{"trials": 300, "stability": 4}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var view simulationView
	if err := json.NewDecoder(rec.Body).Decode(&view); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if view.Trials != 300 || view.Stability != 4 || view.ID == "" {
		t.Errorf("view = %+v", view)
	}

	champions := 0.0
	for _, team := range view.Teams {
		champions += team.Probabilities["champion"]
	}
	if champions < 0.999 || champions > 1.001 {
		t.Errorf("champion probabilities sum to %v", champions)
	}
}

func TestCreateSimulationErrors(t *testing.T) {
	tests := []struct {
		name  string
		teams int
		body  string
		want  int
	}{
		{"zero trials", 20, `{"trials": 0}`, http.StatusBadRequest},
		{"too many trials", 20, `{"trials": 50000}`, http.StatusBadRequest},
		{"bad json", 20, `{"trials":`, http.StatusBadRequest},
		{"wrong roster", 18, `{}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newTestServer(tt.teams), http.MethodPost, "/simulations", tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body)
			}
		})
	}
}
