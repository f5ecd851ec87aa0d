package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/utakatalp/league-odds/internal/api"
	"github.com/utakatalp/league-odds/internal/league"
	"github.com/utakatalp/league-odds/internal/sim"
	"github.com/utakatalp/league-odds/internal/source"
	"github.com/utakatalp/league-odds/internal/store"
)

type loaderFunc func(ctx context.Context) ([]*league.Match, error)

func (f loaderFunc) LoadMatches(ctx context.Context) ([]*league.Match, error) { return f(ctx) }

// loader picks where match records come from: the database, a generated
// demo season, or the fixtures page.
func (a *app) loader(ctx context.Context, fromDB, demo bool) (api.MatchLoader, func(), error) {
	switch {
	case demo:
		return loaderFunc(func(context.Context) ([]*league.Match, error) {
			return demoSeason(a.cfg.League.Size), nil
		}), func() {}, nil
	case fromDB:
		dsn := a.cfg.DatabaseURL()
		if dsn == "" {
			dsn = store.DefaultDSN()
		}
		s, err := store.NewStore(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	}
	return source.NewFetcher(a.cfg.Source, a.log), func() {}, nil
}

// demoSeason generates a double round-robin of size teams with the first
// half already played.
func demoSeason(size int) []*league.Match {
	names := make([]string, size)
	for i := range names {
		names[i] = fmt.Sprintf("Club %02d", i+1)
	}
	rng := rand.New(rand.NewPCG(2024, uint64(size)))
	season := league.GenerateSeason(names)
	half := len(season) / 2
	for i, m := range season[:half] {
		season[i] = league.Played(m.Round, m.HomeName, rng.IntN(4), rng.IntN(3), m.AwayName)
	}
	return season
}

// progressLogger logs every tenth of the run.
func progressLogger(log *logrus.Entry) sim.Progress {
	var mu sync.Mutex
	last := -1
	return func(f float64) {
		step := int(f * 10)
		mu.Lock()
		defer mu.Unlock()
		if step <= last {
			return
		}
		last = step
		log.WithField("progress", fmt.Sprintf("%d%%", step*10)).Info("simulating")
	}
}

func (a *app) simulateCmd() *cobra.Command {
	var (
		trials, stability, workers int
		seed                       uint64
		fromDB, demo               bool
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Rate every team and estimate final-table odds",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg.Sim()
			if cmd.Flags().Changed("trials") {
				cfg.Trials = trials
			}
			if cmd.Flags().Changed("stability") {
				cfg.Stability = stability
			}
			if cmd.Flags().Changed("workers") {
				cfg.Workers = workers
			}
			if cmd.Flags().Changed("seed") {
				cfg.Seed = seed
			}

			runner, err := sim.NewRunner(cfg, a.log)
			if err != nil {
				return err
			}
			loader, closeFn, err := a.loader(cmd.Context(), fromDB, demo)
			if err != nil {
				return err
			}
			defer closeFn()

			matches, err := loader.LoadMatches(cmd.Context())
			if err != nil {
				return fmt.Errorf("loading matches: %w", err)
			}
			res, err := runner.Run(cmd.Context(), matches, progressLogger(a.log))
			if err != nil {
				return err
			}
			fmt.Printf("Simulation time: %v (%d simulations)\n\n", res.Elapsed, res.Trials)
			return league.WriteOdds(os.Stdout, res.Teams, res.Trials)
		},
	}
	cmd.Flags().IntVarP(&trials, "trials", "n", 0, "number of trials (default from config)")
	cmd.Flags().IntVarP(&stability, "stability", "s", 0, "noise samples averaged per match")
	cmd.Flags().IntVarP(&workers, "workers", "k", 0, "worker goroutines, 0 for one per CPU")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed, 0 for time based")
	cmd.Flags().BoolVar(&fromDB, "db", false, "load matches from the database")
	cmd.Flags().BoolVar(&demo, "demo", false, "use a generated demo season")
	return cmd
}

func (a *app) ratingsCmd() *cobra.Command {
	var fromDB, demo bool
	cmd := &cobra.Command{
		Use:   "ratings",
		Short: "Print points and ratings after replaying played matches",
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := sim.NewRunner(a.cfg.Sim(), a.log)
			if err != nil {
				return err
			}
			loader, closeFn, err := a.loader(cmd.Context(), fromDB, demo)
			if err != nil {
				return err
			}
			defer closeFn()

			matches, err := loader.LoadMatches(cmd.Context())
			if err != nil {
				return fmt.Errorf("loading matches: %w", err)
			}
			reg, err := runner.Ratings(matches)
			if err != nil {
				return err
			}
			return league.WriteRatings(os.Stdout, reg.Teams)
		},
	}
	cmd.Flags().BoolVar(&fromDB, "db", false, "load matches from the database")
	cmd.Flags().BoolVar(&demo, "demo", false, "use a generated demo season")
	return cmd
}

func (a *app) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Fetch the fixtures page and store its matches in Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			matches, err := source.NewFetcher(a.cfg.Source, a.log).LoadMatches(ctx)
			if err != nil {
				return err
			}
			dsn := a.cfg.DatabaseURL()
			if dsn == "" {
				dsn = store.DefaultDSN()
			}
			s, err := store.NewStore(ctx, dsn)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.Migrate(ctx); err != nil {
				return err
			}
			if err := s.SaveMatches(ctx, matches); err != nil {
				return err
			}
			a.log.WithField("matches", len(matches)).Info("matches imported")
			return nil
		},
	}
}

func (a *app) serveCmd() *cobra.Command {
	var fromDB, demo bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve ratings and simulations over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			loader, closeFn, err := a.loader(ctx, fromDB, demo)
			if err != nil {
				return err
			}
			defer closeFn()

			srv := &http.Server{
				Addr:              a.cfg.Server.Addr,
				Handler:           api.NewServer(loader, a.cfg.Sim(), a.cfg.Server.MaxTrials, a.log),
				ReadHeaderTimeout: 10 * time.Second,
			}
			errc := make(chan error, 1)
			go func() {
				a.log.WithField("addr", srv.Addr).Info("starting server")
				errc <- srv.ListenAndServe()
			}()

			select {
			case err := <-errc:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			a.log.Info("shutting down")
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().BoolVar(&fromDB, "db", false, "load matches from the database")
	cmd.Flags().BoolVar(&demo, "demo", false, "use a generated demo season")
	return cmd
}
