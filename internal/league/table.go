package league

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
)

// ahead orders two standings: points first, then rating, then name. Names
// are unique, so the order is total.
func ahead(pa, pb int, ra, rb float64, na, nb string) bool {
	if pa != pb {
		return pa > pb
	}
	if ra != rb {
		return ra > rb
	}
	return na < nb
}

// Rank sorts trial snapshots into final table order in place.
func Rank(teams []TrialTeam) {
	sort.Slice(teams, func(i, j int) bool {
		a, b := teams[i], teams[j]
		return ahead(a.Points, b.Points, a.Rating, b.Rating, a.Name, b.Name)
	})
}

// Standings returns the canonical teams in table order without reordering
// the input.
func Standings(teams []*Team) []*Team {
	out := make([]*Team, len(teams))
	copy(out, teams)
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		return ahead(a.Points, b.Points, a.Rating, b.Rating, a.Name, b.Name)
	})
	return out
}

func pct(x float64) string { return fmt.Sprintf("%.1f%%", x*100) }

// WriteRatings prints the post-history table.
func WriteRatings(w io.Writer, teams []*Team) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	fmt.Fprintln(tw, "#\tTeam\tPts\tRating")
	for i, t := range Standings(teams) {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%.1f\n", i+1, t.Name, t.Points, t.Rating)
	}
	return tw.Flush()
}

// WriteOdds prints every team's tier probabilities after trials runs.
func WriteOdds(w io.Writer, teams []*Team, trials int) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	fmt.Fprintln(tw, "Team\tPts\tRating\tChampion\tContinental\tQualify\tSub-continental\tRelegation")
	for _, t := range Standings(teams) {
		fmt.Fprintf(tw, "%s\t%d\t%.1f\t%s\t%s\t%s\t%s\t%s\n",
			t.Name, t.Points, t.Rating,
			pct(t.Probability(Champion, trials)),
			pct(t.Probability(Continental, trials)),
			pct(t.Probability(QualifyContinental, trials)),
			pct(t.Probability(SubContinental, trials)),
			pct(t.Probability(Relegation, trials)),
		)
	}
	return tw.Flush()
}
