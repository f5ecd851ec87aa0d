package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/utakatalp/league-odds/internal/league"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "leagueodds.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	s := c.Sim()
	if s.Trials != 200_000 || s.Stability != 3 || s.Rating.KFactor != 160 {
		t.Errorf("defaults = %+v", s)
	}
	if s.Outcome.HomeWinThreshold != 0.70 || s.Outcome.AwayWinThreshold != -0.80 {
		t.Errorf("thresholds = %+v", s.Outcome)
	}
	if s.Rating.HomeGoalWeight != 0.9 || s.Rating.AwayGoalWeight != 1.1 {
		t.Errorf("goal weights = %+v", s.Rating)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeFile(t, `
simulation:
  trials: 5000
  stability: 5
rating:
  k_factor: 120
  initial: 1500
  scale: 200
  home_goal_weight: 0.9
  away_goal_weight: 1.1
source:
  max_age: 12h
league:
  size: 18
  champion: {from: 0, to: 1}
  continental: {from: 0, to: 4}
  qualify_continental: {from: 4, to: 6}
  sub_continental: {from: 6, to: 12}
  relegation: {from: 14, to: 18}
`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Simulation.Trials != 5000 || c.Simulation.Stability != 5 {
		t.Errorf("simulation = %+v", c.Simulation)
	}
	if c.Rating.KFactor != 120 {
		t.Errorf("k_factor = %v", c.Rating.KFactor)
	}
	if c.Source.MaxAge != 12*time.Hour {
		t.Errorf("max_age = %v", c.Source.MaxAge)
	}
	if c.League.Size != 18 || c.League.Relegation.From != 14 {
		t.Errorf("league = %+v", c.League)
	}
	// untouched sections keep their defaults
	if c.Outcome.HomeWinThreshold != 0.70 || c.Server.Addr != ":8080" {
		t.Errorf("defaults lost: %+v %+v", c.Outcome, c.Server)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"zero trials", "simulation:\n  trials: 0\n"},
		{"negative stability", "simulation:\n  stability: -2\n"},
		{"band outside league", "league:\n  size: 10\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.body))
			var invalid *league.InvalidConfigurationError
			if !errors.As(err, &invalid) {
				t.Fatalf("err = %v, want InvalidConfigurationError", err)
			}
		})
	}
}

func TestLoadUnknownField(t *testing.T) {
	if _, err := Load(writeFile(t, "simulation:\n  trails: 10\n")); err == nil {
		t.Fatal("expected an error for a misspelled key")
	}
}

func TestDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env")
	c := Default()
	if got := c.DatabaseURL(); got != "postgres://env" {
		t.Errorf("DatabaseURL = %q", got)
	}
	c.Database.URL = "postgres://file"
	if got := c.DatabaseURL(); got != "postgres://file" {
		t.Errorf("DatabaseURL = %q", got)
	}
}
