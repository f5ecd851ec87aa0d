package league

import (
	"math"
	"sort"
)

// RatingParams tunes the history replay.
type RatingParams struct {
	KFactor        float64 `yaml:"k_factor" json:"k_factor"`
	Initial        float64 `yaml:"initial" json:"initial"`
	Scale          float64 `yaml:"scale" json:"scale"`
	HomeGoalWeight float64 `yaml:"home_goal_weight" json:"home_goal_weight"`
	AwayGoalWeight float64 `yaml:"away_goal_weight" json:"away_goal_weight"`

	// StrictAwayLinks turns a completed match with an unresolved away side
	// into a DataIntegrityError instead of a counted skip.
	StrictAwayLinks bool `yaml:"strict_away_links" json:"strict_away_links"`
}

func DefaultRatingParams() RatingParams {
	return RatingParams{
		KFactor:        160,
		Initial:        1500,
		Scale:          200,
		HomeGoalWeight: 0.9,
		AwayGoalWeight: 1.1,
	}
}

// Registry holds exactly one canonical Team per name, in first-seen order.
type Registry struct {
	Teams []*Team

	// Replayed counts completed matches folded into the ratings.
	Replayed int
	// Skipped counts matches left out because their away side never
	// appears as a home side.
	Skipped int

	byName map[string]*Team
}

// Lookup finds a canonical team by its case-sensitive name.
func (r *Registry) Lookup(name string) (*Team, bool) {
	t, ok := r.byName[name]
	return t, ok
}

func (r *Registry) Len() int { return len(r.Teams) }

// Expected is the logistic win expectancy of home over away.
func Expected(home, away, scale float64) float64 {
	return 1 / (1 + math.Exp(-(home-away)/scale))
}

// BuildRegistry creates the canonical teams from the home sides of matches,
// links both sides of every match and replays completed matches in round
// order to derive points and ratings.
func BuildRegistry(matches []*Match, p RatingParams) (*Registry, error) {
	reg := &Registry{byName: make(map[string]*Team)}

	for _, m := range matches {
		if err := checkMatch(m); err != nil {
			return nil, err
		}
		team, ok := reg.byName[m.HomeName]
		if !ok {
			team = &Team{Name: m.HomeName, Rating: p.Initial}
			reg.byName[m.HomeName] = team
			reg.Teams = append(reg.Teams, team)
		}
		m.Home = team
	}

	for _, m := range matches {
		team, ok := reg.byName[m.AwayName]
		if !ok {
			if m.Complete && p.StrictAwayLinks {
				return nil, &DataIntegrityError{
					Match:  m.String(),
					Reason: "away team " + m.AwayName + " never plays at home",
				}
			}
			m.Away = nil
			reg.Skipped++
			continue
		}
		m.Away = team
	}

	ordered := make([]*Match, len(matches))
	copy(ordered, matches)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Round < ordered[j].Round
	})

	for _, m := range ordered {
		if !m.Complete || !m.Resolved() {
			continue
		}
		replay(m, p)
		reg.Replayed++
	}
	return reg, nil
}

func checkMatch(m *Match) error {
	switch {
	case m.HomeName == "":
		return &DataIntegrityError{Match: m.String(), Reason: "missing home team name"}
	case m.AwayName == "":
		return &DataIntegrityError{Match: m.String(), Reason: "missing away team name"}
	case m.Complete && (m.HomeGoals == nil || m.AwayGoals == nil):
		return &DataIntegrityError{Match: m.String(), Reason: "completed match without goals"}
	case m.Complete && (*m.HomeGoals < 0 || *m.AwayGoals < 0):
		return &DataIntegrityError{Match: m.String(), Reason: "negative goal count"}
	case !m.Complete && (m.HomeGoals != nil || m.AwayGoals != nil):
		return &DataIntegrityError{Match: m.String(), Reason: "goals on a match that is not complete"}
	}
	return nil
}

// replay folds one completed match into the canonical standings.
func replay(m *Match, p RatingParams) {
	hg, ag := *m.HomeGoals, *m.AwayGoals

	switch {
	case hg == ag:
		m.Home.Points++
		m.Away.Points++
	case hg > ag:
		m.Home.Points += 3
	default:
		m.Away.Points += 3
	}

	// away goals weigh more than home goals
	delta := p.HomeGoalWeight*float64(hg) - p.AwayGoalWeight*float64(ag)
	result := 1 / (1 + math.Exp(-delta))
	expected := Expected(m.Home.Rating, m.Away.Rating, p.Scale)

	diff := result - expected
	m.Home.Rating += p.KFactor * diff
	m.Away.Rating -= p.KFactor * diff
}
