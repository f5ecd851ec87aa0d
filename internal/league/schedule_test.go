package league

import (
	"fmt"
	"testing"
)

func names(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("Team%02d", i+1)
	}
	return out
}

func TestGenerateSeasonDoubleRoundRobin(t *testing.T) {
	season := GenerateSeason(names(20))
	if len(season) != 380 {
		t.Fatalf("len(season) = %d, want 380", len(season))
	}

	pairs := make(map[string]int)
	perRound := make(map[int]map[string]bool)
	for _, m := range season {
		if m.HomeName == m.AwayName {
			t.Fatalf("%s plays itself", m.HomeName)
		}
		pairs[m.HomeName+"|"+m.AwayName]++

		seen, ok := perRound[m.Round]
		if !ok {
			seen = make(map[string]bool)
			perRound[m.Round] = seen
		}
		for _, n := range []string{m.HomeName, m.AwayName} {
			if seen[n] {
				t.Fatalf("%s plays twice in round %d", n, m.Round)
			}
			seen[n] = true
		}
	}
	if len(pairs) != 380 {
		t.Errorf("distinct home/away pairs = %d, want 380", len(pairs))
	}
	if len(perRound) != 38 {
		t.Errorf("rounds = %d, want 38", len(perRound))
	}
}

func TestGenerateScheduleOddTeams(t *testing.T) {
	rounds := GenerateSchedule(names(5))
	if len(rounds) != 5 {
		t.Fatalf("rounds = %d, want 5", len(rounds))
	}
	for i, r := range rounds {
		if len(r) != 2 {
			t.Errorf("round %d has %d matches, want 2", i+1, len(r))
		}
	}
}
