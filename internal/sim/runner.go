package sim

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/utakatalp/league-odds/internal/league"
)

// Config drives a Monte Carlo run.
type Config struct {
	Trials        int    `yaml:"trials" json:"trials"`
	Stability     int    `yaml:"stability" json:"stability"`
	Workers       int    `yaml:"workers" json:"workers"` // 0 means runtime.NumCPU
	Seed          uint64 `yaml:"seed" json:"seed"`       // 0 means time based
	ProgressEvery int    `yaml:"progress_every" json:"progress_every"`

	Rating  league.RatingParams  `yaml:"rating" json:"rating"`
	Outcome league.OutcomeParams `yaml:"outcome" json:"outcome"`
	Bands   Bands                `yaml:"league" json:"league"`
}

func DefaultConfig() Config {
	return Config{
		Trials:        200_000,
		Stability:     3,
		ProgressEvery: 100,
		Rating:        league.DefaultRatingParams(),
		Outcome:       league.DefaultOutcomeParams(),
		Bands:         DefaultBands(),
	}
}

func (c Config) Validate() error {
	switch {
	case c.Trials <= 0:
		return &league.InvalidConfigurationError{Field: "trials", Message: fmt.Sprintf("must be positive, got %d", c.Trials)}
	case c.Stability <= 0:
		return &league.InvalidConfigurationError{Field: "stability", Message: fmt.Sprintf("must be positive, got %d", c.Stability)}
	case c.Workers < 0:
		return &league.InvalidConfigurationError{Field: "workers", Message: "must not be negative"}
	case c.ProgressEvery <= 0:
		return &league.InvalidConfigurationError{Field: "progress_every", Message: "must be positive"}
	case c.Rating.KFactor <= 0:
		return &league.InvalidConfigurationError{Field: "rating.k_factor", Message: "must be positive"}
	case c.Rating.Scale <= 0:
		return &league.InvalidConfigurationError{Field: "rating.scale", Message: "must be positive"}
	case c.Outcome.Scale <= 0:
		return &league.InvalidConfigurationError{Field: "outcome.scale", Message: "must be positive"}
	case c.Outcome.AwayWinThreshold > c.Outcome.HomeWinThreshold:
		return &league.InvalidConfigurationError{Field: "outcome", Message: "away threshold above home threshold"}
	}
	return c.Bands.Validate()
}

// Progress receives the fraction of trials completed. It may be called from
// several goroutines and updates may arrive coalesced or out of order.
type Progress func(fraction float64)

// Result is the canonical registry after a run.
type Result struct {
	ID       uuid.UUID
	Registry *league.Registry
	Teams    []*league.Team
	Trials   int
	Seed     uint64
	Elapsed  time.Duration
}

// Probability returns count/Trials for the named team.
func (r *Result) Probability(name string, tier league.Tier) (float64, bool) {
	t, ok := r.Registry.Lookup(name)
	if !ok {
		return 0, false
	}
	return t.Probability(tier, r.Trials), true
}

// Runner sequences the rating phase, the trials and the aggregation.
type Runner struct {
	cfg Config
	log *logrus.Entry
}

func NewRunner(cfg Config, log *logrus.Entry) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = logrus.NewEntry(l)
	}
	return &Runner{cfg: cfg, log: log}, nil
}

func (r *Runner) Config() Config { return r.cfg }

// Ratings runs only the rating phase.
func (r *Runner) Ratings(matches []*league.Match) (*league.Registry, error) {
	reg, err := league.BuildRegistry(matches, r.cfg.Rating)
	if err != nil {
		return nil, fmt.Errorf("rating phase: %w", err)
	}
	fields := logrus.Fields{
		"teams":    reg.Len(),
		"replayed": reg.Replayed,
		"skipped":  reg.Skipped,
	}
	if reg.Skipped > 0 {
		r.log.WithFields(fields).Warn("matches skipped: away team never plays at home")
	} else {
		r.log.WithFields(fields).Debug("ratings computed")
	}
	return reg, nil
}

// Run computes ratings from matches and then plays out the remaining
// schedule Trials times. Cancelling ctx stops the workers between trials and
// returns ctx's error.
func (r *Runner) Run(ctx context.Context, matches []*league.Match, progress Progress) (*Result, error) {
	start := time.Now()
	cfg := r.cfg

	reg, err := r.Ratings(matches)
	if err != nil {
		return nil, err
	}
	engine, err := NewEngine(reg, matches, cfg.Bands, cfg.Stability, cfg.Outcome)
	if err != nil {
		return nil, err
	}

	workers := cfg.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	if workers > cfg.Trials {
		workers = cfg.Trials
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	id := uuid.New()
	log := r.log.WithField("run", id.String())
	log.WithFields(logrus.Fields{
		"trials":    cfg.Trials,
		"stability": cfg.Stability,
		"workers":   workers,
		"pending":   engine.Pending(),
		"seed":      seed,
	}).Info("simulation started")

	rep := newReporter(progress, cfg.Trials)
	perWorker := cfg.Trials / workers
	remaining := cfg.Trials % workers
	results := make(chan *Tally, workers)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		n := perWorker
		if w < remaining {
			n++
		}
		wg.Add(1)
		go func(workerID, n int) {
			defer wg.Done()
			trial := engine.NewTrial(league.NewNoise(rand.NewPCG(seed, uint64(workerID))))
			tally := engine.NewTally()
			done := ctx.Done()

		trials:
			for s := 0; s < n; s++ {
				select {
				case <-done:
					break trials
				default:
				}
				tally.Record(trial.Run())
				if (s+1)%cfg.ProgressEvery == 0 {
					rep.add(cfg.ProgressEvery)
				}
			}
			rep.add(tally.Trials() % cfg.ProgressEvery)
			results <- tally
		}(w, n)
	}

	wg.Wait()
	close(results)

	if err := ctx.Err(); err != nil {
		rep.close(false)
		log.WithError(err).Warn("simulation cancelled")
		return nil, fmt.Errorf("simulation cancelled: %w", err)
	}

	total := engine.NewTally()
	for t := range results {
		total.Merge(t)
	}
	total.Apply()
	rep.close(true)

	res := &Result{
		ID:       id,
		Registry: reg,
		Teams:    reg.Teams,
		Trials:   total.Trials(),
		Seed:     seed,
		Elapsed:  time.Since(start),
	}
	log.WithField("elapsed", res.Elapsed.String()).Info("simulation finished")
	return res, nil
}

// reporter forwards progress to the callback on its own goroutine so a slow
// consumer never stalls a worker. Updates are dropped while one is pending.
type reporter struct {
	fn       Progress
	total    int64
	done     atomic.Int64
	updates  chan float64
	finished chan struct{}
}

func newReporter(fn Progress, total int) *reporter {
	if fn == nil {
		return nil
	}
	r := &reporter{
		fn:       fn,
		total:    int64(total),
		updates:  make(chan float64, 1),
		finished: make(chan struct{}),
	}
	go func() {
		defer close(r.finished)
		for f := range r.updates {
			r.fn(f)
		}
	}()
	return r
}

func (r *reporter) add(n int) {
	if r == nil || n <= 0 {
		return
	}
	done := r.done.Add(int64(n))
	select {
	case r.updates <- float64(done) / float64(r.total):
	default:
	}
}

func (r *reporter) close(complete bool) {
	if r == nil {
		return
	}
	close(r.updates)
	<-r.finished
	if complete {
		r.fn(1)
	}
}
