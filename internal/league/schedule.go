package league

// GenerateSchedule returns a single round-robin schedule for the provided
// team names, one slice of fixtures per round starting at round 1.
func GenerateSchedule(names []string) [][]*Match {
	slots := make([]string, len(names), len(names)+1)
	copy(slots, names)

	// an empty slot is the bye for an odd number of teams
	if len(slots)%2 != 0 {
		slots = append(slots, "")
	}
	n := len(slots)
	if n < 2 {
		return nil
	}

	rounds := make([][]*Match, n-1)
	for i := 0; i < n-1; i++ {
		round := make([]*Match, 0, n/2)
		for j := 0; j < n/2; j++ {
			home := slots[j]
			away := slots[n-1-j]
			if home != "" && away != "" {
				round = append(round, Fixture(i+1, home, away))
			}
		}
		rounds[i] = round

		// rotate everyone except the first slot
		last := slots[n-1]
		copy(slots[2:], slots[1:n-1])
		slots[1] = last
	}
	return rounds
}

// GenerateSeason builds a double round-robin: the second half replays the
// first with home and away swapped. Matches come back in round order.
func GenerateSeason(names []string) []*Match {
	firstHalf := GenerateSchedule(names)
	offset := len(firstHalf)

	var season []*Match
	for _, round := range firstHalf {
		season = append(season, round...)
	}
	for i, round := range firstHalf {
		for _, m := range round {
			season = append(season, Fixture(i+1+offset, m.AwayName, m.HomeName))
		}
	}
	return season
}
