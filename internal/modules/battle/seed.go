package battle

import "github.com/nfrund/battlehub/internal/battle/dex"

// SeedDex returns a tiny in-memory dex covering the two species and moves
// needed to drive spec.md §8's "Simple KO" scenario headlessly — not
// production species data (spec.md §1 scopes that loader out), just enough
// for the debug route and the CLI's replay-scenario command to have
// something real to battle with.
func SeedDex() *dex.MemoryDex {
	d := dex.NewMemoryDex()

	d.AddSpecies(dex.Species{
		ID: 1, Name: "Jolteon",
		BaseStats: [6]int{65, 65, 60, 110, 110, 130},
		Types:     []int{13}, // electric
	})
	d.AddSpecies(dex.Species{
		ID: 2, Name: "Snorlax",
		BaseStats: [6]int{160, 110, 65, 30, 65, 110},
		Types:     []int{0}, // normal
	})

	d.AddMove(dex.Move{
		ID: 1, Name: "Thunderbolt", Type: 13, Power: 150, Accuracy: 100, PP: 15,
		Target: dex.TargetEnemyAdjacent,
	})
	d.AddMove(dex.Move{
		ID: 2, Name: "Tackle", Type: 0, Power: 40, Accuracy: 100, PP: 35,
		Target: dex.TargetEnemyAdjacent,
	})

	d.SetTypeMultiplier(13, 0, 1.0)
	d.SetTypeMultiplier(0, 13, 1.0)
	return d
}

// DemoTeams returns a one-creature-each roster matching spec.md §8's
// "Simple KO" scenario: Jolteon (faster, Thunderbolt) versus Snorlax
// (slower, Tackle).
func DemoTeams() (partyA, partyB []TeamMemberSpec) {
	partyA = []TeamMemberSpec{{
		Species: "Jolteon", Level: 50, Nature: 0,
		IVs: [6]int{31, 31, 31, 31, 31, 31},
		Moves: []string{"Thunderbolt"},
	}}
	partyB = []TeamMemberSpec{{
		Species: "Snorlax", Level: 50, Nature: 0,
		IVs: [6]int{31, 31, 31, 31, 31, 31},
		Moves: []string{"Tackle"},
	}}
	return partyA, partyB
}
