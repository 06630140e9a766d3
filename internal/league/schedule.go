package league

// GenerateSeason returns a double round-robin: every pairing once in the
// first half and again with home and away swapped in the second.
func GenerateSeason(names []string) []Round {
	firstHalf := GenerateSchedule(names)
	secondHalf := make([]Round, len(firstHalf))
	for i, rnd := range firstHalf {
		number := i + len(firstHalf) + 1
		swapped := Round{Number: number, Bye: rnd.Bye, Fixtures: make([]Fixture, len(rnd.Fixtures))}
		for j, f := range rnd.Fixtures {
			swapped.Fixtures[j] = Fixture{Round: number, Home: f.Away, Away: f.Home}
		}
		secondHalf[i] = swapped
	}
	return append(firstHalf, secondHalf...)
}

// GenerateSchedule returns a single round-robin using the circle method:
// the first team stays fixed while the rest rotate one place per round.
func GenerateSchedule(names []string) []Round {
	teams := make([]string, len(names))
	copy(teams, names)
	n := len(teams)
	if n < 2 {
		return nil
	}
	// odd count: an empty slot marks the bye
	if n%2 != 0 {
		teams = append(teams, "")
		n++
	}

	rounds := make([]Round, n-1)
	for i := 0; i < n-1; i++ {
		rnd := Round{Number: i + 1, Fixtures: make([]Fixture, 0, n/2)}
		for j := 0; j < n/2; j++ {
			home := teams[j]
			away := teams[n-1-j]
			switch {
			case home == "":
				rnd.Bye = away
			case away == "":
				rnd.Bye = home
			default:
				rnd.Fixtures = append(rnd.Fixtures, Fixture{Round: i + 1, Home: home, Away: away})
			}
		}
		rounds[i] = rnd

		// rotate everyone except the first
		last := teams[n-1]
		copy(teams[2:], teams[1:n-1])
		teams[1] = last
	}
	return rounds
}
