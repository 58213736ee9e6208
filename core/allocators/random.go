package allocators

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/kilianp07/evalloc/core/matchers"
	"github.com/kilianp07/evalloc/core/model"
)

// ErrOverbooked is returned by Random when the fleet exceeds the available
// vacancies and no overbooking strategy is engaged.
var ErrOverbooked = errors.New("fleet exceeds infrastructure vacancies")

// Func is the signature of base allocation methods: the overbooking resolver
// accepts any of them and threads the shared random source down.
type Func func(fleet *model.Fleet, posts *model.ChargingPosts, m matchers.Matcher, rng *rand.Rand) (*model.Fleet, error)

// Random assigns vehicles to vacant, compatible posts in randomized rounds.
//
// Vacancies are expanded into a flat list of slots, one per unit of spare
// capacity, and shuffled once. Each round aligns every still-unassigned
// vehicle with one candidate slot, evaluates the matcher element-wise across
// the pairing, commits the matches and rotates the remaining slots by one so
// every vehicle faces a different slot next round. Vehicles left over when
// the iteration budget runs out keep a null allocation; failing to match is
// an expected outcome, not an error.
//
// maxIter values of zero or below default to the number of slots plus one.
// All randomness flows through rng so runs are reproducible.
func Random(fleet *model.Fleet, posts *model.ChargingPosts, m matchers.Matcher, maxIter int, rng *rand.Rand) (*model.Fleet, error) {
	if err := validateTables(fleet, posts); err != nil {
		return nil, err
	}
	vacancies, total := posts.Vacancies()
	if total < fleet.Len() {
		return nil, fmt.Errorf("%w: %d vehicles for %d vacancies", ErrOverbooked, fleet.Len(), total)
	}

	slots := make([]int, 0, total)
	for position, n := range vacancies {
		for j := 0; j < n; j++ {
			slots = append(slots, position)
		}
	}
	rng.Shuffle(len(slots), func(i, j int) { slots[i], slots[j] = slots[j], slots[i] })

	if maxIter <= 0 {
		maxIter = len(slots) + 1
	}

	result := fleet.Clone()
	unassigned := make([]int, fleet.Len())
	for i := range unassigned {
		unassigned[i] = i
	}

	for iter := 0; iter < maxIter && len(unassigned) > 0; iter++ {
		candidates := slots[:len(unassigned)]
		isMatch, err := m(
			fleet.Rows().Gather(unassigned),
			posts.Rows().Gather(candidates),
		)
		if err != nil {
			return nil, err
		}

		var nextUnassigned, nextSlots []int
		for i, position := range unassigned {
			if isMatch[i] {
				result.Allocation[position] = model.Allocate(posts.ID[candidates[i]])
			} else {
				nextUnassigned = append(nextUnassigned, position)
				nextSlots = append(nextSlots, candidates[i])
			}
		}
		nextSlots = append(nextSlots, slots[len(unassigned):]...)
		unassigned = nextUnassigned
		slots = nextSlots
		if len(unassigned) == 0 {
			break
		}
		rotate(slots)
	}
	return result, nil
}

// rotate moves the first slot to the back so each vehicle sees a different
// slot next round.
func rotate(slots []int) {
	if len(slots) < 2 {
		return
	}
	first := slots[0]
	copy(slots, slots[1:])
	slots[len(slots)-1] = first
}

func validateTables(fleet *model.Fleet, posts *model.ChargingPosts) error {
	if err := fleet.Validate(); err != nil {
		return err
	}
	return posts.Validate()
}
