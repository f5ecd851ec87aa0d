package sim

import (
	"sort"

	"github.com/utakatalp/league-odds/internal/league"
)

type fixture struct {
	home, away int
}

// Engine completes the remaining schedule once per trial. It only reads the
// canonical teams, so one Engine serves every worker.
type Engine struct {
	teams     []*league.Team
	index     map[string]int
	pending   []fixture
	ranks     [][]league.Tier
	stability int
	outcome   league.OutcomeParams
}

// NewEngine prepares the pending fixtures of matches for simulation. The
// registry must hold exactly bands.Size teams.
func NewEngine(
	reg *league.Registry,
	matches []*league.Match,
	bands Bands,
	stability int,
	outcome league.OutcomeParams,
) (*Engine, error) {
	if err := bands.Validate(); err != nil {
		return nil, err
	}
	if reg.Len() != bands.Size {
		return nil, &league.RosterSizeError{Want: bands.Size, Got: reg.Len()}
	}

	e := &Engine{
		teams:     reg.Teams,
		index:     make(map[string]int, reg.Len()),
		ranks:     bands.byRank(),
		stability: stability,
		outcome:   outcome,
	}
	for i, t := range reg.Teams {
		e.index[t.Name] = i
	}

	remaining := make([]*league.Match, 0, len(matches))
	for _, m := range matches {
		if !m.Complete && m.Resolved() {
			remaining = append(remaining, m)
		}
	}
	sort.SliceStable(remaining, func(i, j int) bool {
		return remaining[i].Round < remaining[j].Round
	})
	for _, m := range remaining {
		e.pending = append(e.pending, fixture{
			home: e.index[m.Home.Name],
			away: e.index[m.Away.Name],
		})
	}
	return e, nil
}

// Pending is the number of matches simulated per trial.
func (e *Engine) Pending() int { return len(e.pending) }

// Trial is one worker's scratch state. It is not safe for concurrent use.
type Trial struct {
	e     *Engine
	snap  []league.TrialTeam
	noise *league.Noise
}

func (e *Engine) NewTrial(noise *league.Noise) *Trial {
	return &Trial{
		e:     e,
		snap:  make([]league.TrialTeam, len(e.teams)),
		noise: noise,
	}
}

// Run plays out one season and returns the final table. The slice is reused
// by the next call.
func (t *Trial) Run() []league.TrialTeam {
	for i, team := range t.e.teams {
		t.snap[i] = team.Snapshot()
	}
	for _, f := range t.e.pending {
		league.SimulateMatch(&t.snap[f.home], &t.snap[f.away], t.e.stability, t.e.outcome, t.noise)
	}
	league.Rank(t.snap)
	return t.snap
}
