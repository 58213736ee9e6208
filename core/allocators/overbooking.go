package allocators

import (
	"math/rand"
	"sort"

	"github.com/kilianp07/evalloc/core/matchers"
	"github.com/kilianp07/evalloc/core/model"
)

// SpreadOverbooked assigns a fleet that may exceed the available vacancies.
//
// When demand fits the supply it simply runs the base method. Otherwise it
// randomly draws a first wave sized exactly to the number of vacancies, runs
// the base method on it against the full infrastructure, recomputes each
// post's occupancy, and recurses on the leftover vehicles against the posts
// that still have room. Recursion stops when no vehicles or no vacancies
// remain; leftover vehicles keep a null allocation.
//
// The same rng instance is threaded through every recursive call so a run is
// reproducible from a single seed.
func SpreadOverbooked(fleet *model.Fleet, posts *model.ChargingPosts, m matchers.Matcher, rng *rand.Rand, base Func) (*model.Fleet, error) {
	if err := validateTables(fleet, posts); err != nil {
		return nil, err
	}
	_, total := posts.Vacancies()
	if total >= fleet.Len() {
		return base(fleet, posts, m, rng)
	}

	result := fleet.Clone()
	if total == 0 {
		return result, nil
	}

	perm := rng.Perm(fleet.Len())
	firstWave := perm[:total]
	leftover := perm[total:]
	// table order within each wave is preserved
	sort.Ints(firstWave)
	sort.Ints(leftover)

	allocated, err := base(fleet.Take(firstWave), posts, m, rng)
	if err != nil {
		return nil, err
	}
	for i, position := range firstWave {
		result.Allocation[position] = allocated.Allocation[i]
	}

	// occupancy after the first wave
	filled := posts.Clone()
	positionOf := make(map[int]int, posts.Len())
	for position, id := range posts.ID {
		positionOf[id] = position
	}
	for _, a := range allocated.Allocation {
		if a.Valid {
			filled.Occupancy[positionOf[a.Post]]++
		}
	}

	remaining := make([]bool, filled.Len())
	anyRoom := false
	for i := range remaining {
		remaining[i] = filled.Occupancy[i] < filled.Capacity[i]
		anyRoom = anyRoom || remaining[i]
	}
	if !anyRoom || len(leftover) == 0 {
		return result, nil
	}

	rest, err := SpreadOverbooked(fleet.Take(leftover), filled.Select(remaining), m, rng, base)
	if err != nil {
		return nil, err
	}
	for i, position := range leftover {
		result.Allocation[position] = rest.Allocation[i]
	}
	return result, nil
}
