package league

import (
	"errors"
	"math"
	"testing"
)

func TestBuildRegistryPointsAndRatings(t *testing.T) {
	matches := []*Match{
		Played(1, "Alpha", 2, 0, "Beta"),
		Played(2, "Beta", 1, 1, "Alpha"),
	}
	p := DefaultRatingParams()
	reg, err := BuildRegistry(matches, p)
	if err != nil {
		t.Fatalf("BuildRegistry: %v", err)
	}

	alpha, ok := reg.Lookup("Alpha")
	if !ok {
		t.Fatal("Alpha not registered")
	}
	beta, ok := reg.Lookup("Beta")
	if !ok {
		t.Fatal("Beta not registered")
	}
	if alpha.Points != 4 || beta.Points != 1 {
		t.Errorf("points = %d/%d, want 4/1", alpha.Points, beta.Points)
	}

	// replay the two updates by hand
	a, b := 1500.0, 1500.0
	diff := 1/(1+math.Exp(-(0.9*2-1.1*0))) - 1/(1+math.Exp(-(a-b)/200))
	a, b = a+160*diff, b-160*diff
	diff = 1/(1+math.Exp(-(0.9*1-1.1*1))) - 1/(1+math.Exp(-(b-a)/200))
	b, a = b+160*diff, a-160*diff

	if math.Abs(alpha.Rating-a) > 1e-9 || math.Abs(beta.Rating-b) > 1e-9 {
		t.Errorf("ratings = %.6f/%.6f, want %.6f/%.6f", alpha.Rating, beta.Rating, a, b)
	}
	if reg.Replayed != 2 || reg.Skipped != 0 {
		t.Errorf("replayed/skipped = %d/%d, want 2/0", reg.Replayed, reg.Skipped)
	}
	if matches[0].Home != alpha || matches[0].Away != beta {
		t.Error("match back-links not resolved")
	}
}

func TestBuildRegistryReplaysInRoundOrder(t *testing.T) {
	shuffled := []*Match{
		Played(3, "Alpha", 0, 3, "Gamma"),
		Played(1, "Alpha", 2, 1, "Beta"),
		Played(2, "Beta", 4, 0, "Gamma"),
		Played(2, "Gamma", 1, 1, "Alpha"),
	}
	sorted := []*Match{
		Played(1, "Alpha", 2, 1, "Beta"),
		Played(2, "Beta", 4, 0, "Gamma"),
		Played(2, "Gamma", 1, 1, "Alpha"),
		Played(3, "Alpha", 0, 3, "Gamma"),
	}

	got, err := BuildRegistry(shuffled, DefaultRatingParams())
	if err != nil {
		t.Fatalf("BuildRegistry(shuffled): %v", err)
	}
	want, err := BuildRegistry(sorted, DefaultRatingParams())
	if err != nil {
		t.Fatalf("BuildRegistry(sorted): %v", err)
	}
	for _, name := range []string{"Alpha", "Beta", "Gamma"} {
		g, _ := got.Lookup(name)
		w, _ := want.Lookup(name)
		if g.Points != w.Points || math.Abs(g.Rating-w.Rating) > 1e-9 {
			t.Errorf("%s: got %d/%.4f, want %d/%.4f", name, g.Points, g.Rating, w.Points, w.Rating)
		}
	}
}

func TestBuildRegistryDeterministic(t *testing.T) {
	build := func() *Registry {
		var matches []*Match
		for i, m := range GenerateSeason([]string{"A", "B", "C", "D", "E", "F"}) {
			if m.Round > 6 {
				matches = append(matches, m)
				continue
			}
			matches = append(matches, Played(m.Round, m.HomeName, i%4, (i*5)%3, m.AwayName))
		}
		reg, err := BuildRegistry(matches, DefaultRatingParams())
		if err != nil {
			t.Fatalf("BuildRegistry: %v", err)
		}
		return reg
	}

	first, second := build(), build()
	if first.Len() != second.Len() {
		t.Fatalf("team count differs: %d vs %d", first.Len(), second.Len())
	}
	total := 0.0
	for i := range first.Teams {
		a, b := first.Teams[i], second.Teams[i]
		if a.Name != b.Name || a.Points != b.Points || a.Rating != b.Rating {
			t.Errorf("run mismatch: %v vs %v", a, b)
		}
		total += a.Rating
	}
	// every update moves rating from one side to the other
	if want := 1500.0 * float64(first.Len()); math.Abs(total-want) > 1e-6 {
		t.Errorf("rating sum = %.6f, want %.6f", total, want)
	}
}

func TestBuildRegistrySkipsUnresolvedAway(t *testing.T) {
	matches := []*Match{
		Played(1, "Alpha", 1, 0, "Beta"),
		Played(1, "Beta", 3, 3, "Ghost"),
		Fixture(2, "Alpha", "Ghost"),
	}
	reg, err := BuildRegistry(matches, DefaultRatingParams())
	if err != nil {
		t.Fatalf("BuildRegistry: %v", err)
	}
	if reg.Skipped != 2 {
		t.Errorf("Skipped = %d, want 2", reg.Skipped)
	}
	if reg.Replayed != 1 {
		t.Errorf("Replayed = %d, want 1", reg.Replayed)
	}
	if _, ok := reg.Lookup("Ghost"); ok {
		t.Error("Ghost must not be registered")
	}
	beta, _ := reg.Lookup("Beta")
	if beta.Points != 0 {
		t.Errorf("Beta points = %d, skipped draw must not count", beta.Points)
	}
	if matches[1].Away != nil || matches[1].Resolved() {
		t.Error("unresolved away side must stay nil")
	}
}

func TestBuildRegistryStrictAwayLinks(t *testing.T) {
	matches := []*Match{
		Played(1, "Alpha", 1, 0, "Beta"),
		Played(1, "Beta", 3, 3, "Ghost"),
	}
	p := DefaultRatingParams()
	p.StrictAwayLinks = true

	_, err := BuildRegistry(matches, p)
	var integrity *DataIntegrityError
	if !errors.As(err, &integrity) {
		t.Fatalf("err = %v, want DataIntegrityError", err)
	}
}

func TestBuildRegistryRejectsBadGoals(t *testing.T) {
	missing := &Match{Round: 1, Complete: true, HomeName: "Alpha", AwayName: "Beta"}
	negative := Played(1, "Alpha", -1, 0, "Beta")
	premature := Played(1, "Alpha", 1, 0, "Beta")
	premature.Complete = false

	tests := []struct {
		name  string
		match *Match
	}{
		{"missing goals", missing},
		{"negative goals", negative},
		{"goals on pending match", premature},
		{"missing home name", Fixture(1, "", "Beta")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildRegistry([]*Match{Played(1, "Beta", 0, 0, "Alpha"), tt.match}, DefaultRatingParams())
			var integrity *DataIntegrityError
			if !errors.As(err, &integrity) {
				t.Fatalf("err = %v, want DataIntegrityError", err)
			}
		})
	}
}
