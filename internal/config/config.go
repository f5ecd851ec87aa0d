package config

import (
	"fmt"
	"os"
	"time"

	"github.com/utakatalp/league-odds/internal/league"
	"github.com/utakatalp/league-odds/internal/sim"
	"github.com/utakatalp/league-odds/internal/source"
	yaml "gopkg.in/yaml.v2"
)

// Config is the leagueodds.yaml file.
type Config struct {
	Simulation Simulation           `yaml:"simulation"`
	Rating     league.RatingParams  `yaml:"rating"`
	Outcome    league.OutcomeParams `yaml:"outcome"`
	League     sim.Bands            `yaml:"league"`
	Source     source.Options       `yaml:"source"`
	Database   Database             `yaml:"database"`
	Server     Server               `yaml:"server"`
}

type Simulation struct {
	Trials        int    `yaml:"trials"`
	Stability     int    `yaml:"stability"`
	Workers       int    `yaml:"workers"`
	Seed          uint64 `yaml:"seed"`
	ProgressEvery int    `yaml:"progress_every"`
}

type Database struct {
	URL string `yaml:"url"`
}

type Server struct {
	Addr      string `yaml:"addr"`
	MaxTrials int    `yaml:"max_trials"`
}

func Default() Config {
	s := sim.DefaultConfig()
	return Config{
		Simulation: Simulation{
			Trials:        s.Trials,
			Stability:     s.Stability,
			Workers:       s.Workers,
			Seed:          s.Seed,
			ProgressEvery: s.ProgressEvery,
		},
		Rating:  s.Rating,
		Outcome: s.Outcome,
		League:  s.Bands,
		Source: source.Options{
			URL:       "https://footystats.org/pt/brazil/serie-a/fixtures",
			CachePath: "page.html",
			MaxAge:    24 * time.Hour,
			Timeout:   30 * time.Second,
		},
		Server: Server{Addr: ":8080", MaxTrials: 1_000_000},
	}
}

// Load reads path over the defaults. An empty path yields the defaults.
func Load(path string) (Config, error) {
	c := Default()
	if path == "" {
		return c, c.Validate()
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.UnmarshalStrict(raw, &c); err != nil {
		return c, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return c, c.Validate()
}

// Sim assembles the engine configuration.
func (c Config) Sim() sim.Config {
	return sim.Config{
		Trials:        c.Simulation.Trials,
		Stability:     c.Simulation.Stability,
		Workers:       c.Simulation.Workers,
		Seed:          c.Simulation.Seed,
		ProgressEvery: c.Simulation.ProgressEvery,
		Rating:        c.Rating,
		Outcome:       c.Outcome,
		Bands:         c.League,
	}
}

// DatabaseURL prefers the file, then DATABASE_URL.
func (c Config) DatabaseURL() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}
	return os.Getenv("DATABASE_URL")
}

func (c Config) Validate() error {
	if err := c.Sim().Validate(); err != nil {
		return err
	}
	if c.Source.MaxAge < 0 {
		return &league.InvalidConfigurationError{Field: "source.max_age", Message: "must not be negative"}
	}
	if c.Server.MaxTrials <= 0 {
		return &league.InvalidConfigurationError{Field: "server.max_trials", Message: "must be positive"}
	}
	return nil
}
