package sim

import "github.com/utakatalp/league-odds/internal/league"

// Tally accumulates tier placements for one worker. Tallies only grow and
// are merged once at the end of a run.
type Tally struct {
	e      *Engine
	counts [][league.NumTiers]int64
	trials int
}

func (e *Engine) NewTally() *Tally {
	return &Tally{e: e, counts: make([][league.NumTiers]int64, len(e.teams))}
}

// Record credits the tiers earned by every rank of a final table.
func (t *Tally) Record(ranked []league.TrialTeam) {
	for rank, tt := range ranked {
		idx, ok := t.e.index[tt.Name]
		if !ok {
			continue
		}
		for _, tier := range t.e.ranks[rank] {
			t.counts[idx][tier]++
		}
	}
	t.trials++
}

// Merge adds o into t.
func (t *Tally) Merge(o *Tally) {
	for i := range o.counts {
		for tier, n := range o.counts[i] {
			t.counts[i][tier] += n
		}
	}
	t.trials += o.trials
}

func (t *Tally) Trials() int { return t.trials }

// Count returns the placements of the team at registry index idx.
func (t *Tally) Count(idx int, tier league.Tier) int64 {
	return t.counts[idx][tier]
}

// Apply adds the tally onto the canonical teams.
func (t *Tally) Apply() {
	for i, team := range t.e.teams {
		for _, tier := range league.Tiers() {
			team.Add(tier, t.counts[i][tier])
		}
	}
}
