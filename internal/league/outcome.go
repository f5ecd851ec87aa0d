package league

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Outcome is the result of one simulated match.
type Outcome int

const (
	HomeWin Outcome = iota
	Draw
	AwayWin
)

func (o Outcome) String() string {
	switch o {
	case HomeWin:
		return "home"
	case Draw:
		return "draw"
	case AwayWin:
		return "away"
	}
	return "unknown"
}

// OutcomeParams holds the thresholds applied to expected score plus noise.
// Unequal thresholds encode a home advantage.
type OutcomeParams struct {
	Scale            float64 `yaml:"scale" json:"scale"`
	HomeWinThreshold float64 `yaml:"home_win_threshold" json:"home_win_threshold"`
	AwayWinThreshold float64 `yaml:"away_win_threshold" json:"away_win_threshold"`
}

func DefaultOutcomeParams() OutcomeParams {
	return OutcomeParams{
		Scale:            200,
		HomeWinThreshold: 0.70,
		AwayWinThreshold: -0.80,
	}
}

// Noise draws the averaged uniform perturbation added to a match's
// expected score. A Noise is not safe for concurrent use.
type Noise struct {
	dist distuv.Uniform
}

func NewNoise(src rand.Source) *Noise {
	return &Noise{dist: distuv.Uniform{Min: -1, Max: 1, Src: src}}
}

// Draw averages stability samples from U[-1, 1]. Its variance is
// 1/(3*stability).
func (n *Noise) Draw(stability int) float64 {
	if stability < 1 {
		stability = 1
	}
	total := 0.0
	for i := 0; i < stability; i++ {
		total += n.dist.Rand()
	}
	return total / float64(stability)
}

// Classify maps a noisy score onto a result.
func (p OutcomeParams) Classify(score float64) Outcome {
	switch {
	case score > p.HomeWinThreshold:
		return HomeWin
	case score < p.AwayWinThreshold:
		return AwayWin
	}
	return Draw
}

// SimulateMatch resolves a pending match between two trial snapshots and
// credits the points. Ratings are never touched.
func SimulateMatch(home, away *TrialTeam, stability int, p OutcomeParams, noise *Noise) Outcome {
	expected := Expected(home.Rating, away.Rating, p.Scale)
	outcome := p.Classify(expected + noise.Draw(stability))

	switch outcome {
	case HomeWin:
		home.Points += 3
	case AwayWin:
		away.Points += 3
	default:
		home.Points++
		away.Points++
	}
	return outcome
}
