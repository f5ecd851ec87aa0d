package league

import "fmt"

// Tier is an outcome band a team can land in at the end of a trial.
type Tier int

const (
	Champion Tier = iota
	Continental
	QualifyContinental
	SubContinental
	Relegation

	NumTiers = 5
)

var tierNames = [NumTiers]string{
	"champion",
	"continental",
	"qualify_continental",
	"sub_continental",
	"relegation",
}

func (t Tier) String() string {
	if t < 0 || int(t) >= NumTiers {
		return "unknown"
	}
	return tierNames[t]
}

// Tiers lists every tier in reporting order.
func Tiers() []Tier {
	return []Tier{Champion, Continental, QualifyContinental, SubContinental, Relegation}
}

// Team is the canonical record for a club. Points and Rating are fixed once
// the rating phase is over; the counters only grow during a run.
type Team struct {
	Name   string  `json:"name"`
	Points int     `json:"points"`
	Rating float64 `json:"rating"`

	ChampionCount           int64 `json:"champion_count"`
	ContinentalCount        int64 `json:"continental_count"`
	QualifyContinentalCount int64 `json:"qualify_continental_count"`
	SubContinentalCount     int64 `json:"sub_continental_count"`
	RelegationCount         int64 `json:"relegation_count"`
}

// Count returns the number of trials in which the team landed in tier.
func (t *Team) Count(tier Tier) int64 {
	switch tier {
	case Champion:
		return t.ChampionCount
	case Continental:
		return t.ContinentalCount
	case QualifyContinental:
		return t.QualifyContinentalCount
	case SubContinental:
		return t.SubContinentalCount
	case Relegation:
		return t.RelegationCount
	}
	return 0
}

// Add increments the tier counter by n. Negative n is ignored.
func (t *Team) Add(tier Tier, n int64) {
	if n <= 0 {
		return
	}
	switch tier {
	case Champion:
		t.ChampionCount += n
	case Continental:
		t.ContinentalCount += n
	case QualifyContinental:
		t.QualifyContinentalCount += n
	case SubContinental:
		t.SubContinentalCount += n
	case Relegation:
		t.RelegationCount += n
	}
}

// Probability is Count(tier)/trials, or 0 when no trial ran.
func (t *Team) Probability(tier Tier, trials int) float64 {
	if trials <= 0 {
		return 0
	}
	return float64(t.Count(tier)) / float64(trials)
}

// Snapshot copies the standing of the team for one trial. Counters are not
// part of the copy.
func (t *Team) Snapshot() TrialTeam {
	return TrialTeam{Name: t.Name, Points: t.Points, Rating: t.Rating}
}

func (t *Team) String() string {
	return fmt.Sprintf("%s\t%d\t%.1f", t.Name, t.Points, t.Rating)
}

// TrialTeam is a disposable per-trial copy of a team's standing.
type TrialTeam struct {
	Name   string
	Points int
	Rating float64
}

// Match represents a fixture between two teams. Goals are set iff Complete.
type Match struct {
	ID        int
	Round     int
	Complete  bool
	HomeName  string
	AwayName  string
	HomeGoals *int
	AwayGoals *int

	// Resolved by BuildRegistry. Away stays nil when the away name never
	// appears as a home side.
	Home, Away *Team
}

// Played builds a completed match.
func Played(round int, home string, homeGoals, awayGoals int, away string) *Match {
	hg, ag := homeGoals, awayGoals
	return &Match{
		Round:     round,
		Complete:  true,
		HomeName:  home,
		AwayName:  away,
		HomeGoals: &hg,
		AwayGoals: &ag,
	}
}

// Fixture builds a match that has not been played yet.
func Fixture(round int, home, away string) *Match {
	return &Match{Round: round, HomeName: home, AwayName: away}
}

// Resolved reports whether both sides are linked to canonical teams.
func (m *Match) Resolved() bool {
	return m.Home != nil && m.Away != nil
}

func (m *Match) String() string {
	if m.Complete && m.HomeGoals != nil && m.AwayGoals != nil {
		return fmt.Sprintf("%s %d x %d %s [%d]",
			m.HomeName, *m.HomeGoals,
			*m.AwayGoals, m.AwayName, m.Round,
		)
	}
	return fmt.Sprintf("%s x %s [%d]", m.HomeName, m.AwayName, m.Round)
}
