package allocators

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/evalloc/core/matchers"
	"github.com/kilianp07/evalloc/core/model"
)

func flatFleet(sockets []model.Socket) *model.Fleet {
	n := len(sockets)
	f := &model.Fleet{
		ID:        make([]int, n),
		Latitude:  make([]float64, n),
		Longitude: make([]float64, n),
		DestLat:   make([]float64, n),
		DestLong:  make([]float64, n),
		Socket:    sockets,
		Charger:   make([]model.Charger, n),
	}
	for i := range f.ID {
		f.ID[i] = i
		f.Latitude[i] = 51.5
		f.Longitude[i] = 0.1
		f.DestLat[i] = 51.5
		f.DestLong[i] = 0.1
		f.Charger[i] = model.ChargerSlow
	}
	return f
}

func flatPosts(sockets []model.Socket, capacity, occupancy []int) *model.ChargingPosts {
	n := len(sockets)
	p := &model.ChargingPosts{
		ID:        make([]int, n),
		Latitude:  make([]float64, n),
		Longitude: make([]float64, n),
		Socket:    sockets,
		Charger:   make([]model.Charger, n),
		Capacity:  capacity,
		Occupancy: occupancy,
	}
	for i := range p.ID {
		p.ID[i] = i
		p.Latitude[i] = 51.5
		p.Longitude[i] = 0.1
		p.Charger[i] = model.ChargerSlow
	}
	return p
}

// fillCounts tallies allocations per post label.
func fillCounts(f *model.Fleet) map[int]int {
	counts := make(map[int]int)
	for _, a := range f.Allocation {
		if a.Valid {
			counts[a.Post]++
		}
	}
	return counts
}

func TestRandomExactFit(t *testing.T) {
	// combined vacancy equals fleet size and every vehicle matches exactly
	// one kind of slot
	posts := flatPosts(
		[]model.Socket{model.SocketType1, model.SocketType2, model.SocketCCS},
		[]int{2, 1, 1},
		[]int{0, 0, 0},
	)
	fleet := flatFleet([]model.Socket{model.SocketType1, model.SocketType1, model.SocketType2, model.SocketCCS})

	rng := rand.New(rand.NewSource(42))
	result, err := Random(fleet, posts, matchers.SocketCompatibility, 64, rng)
	require.NoError(t, err)

	require.Equal(t, fleet.Len(), result.Len())
	for i, a := range result.Allocation {
		assert.True(t, a.Valid, "vehicle %d unassigned", i)
	}
	assert.Equal(t, map[int]int{0: 2, 1: 1, 2: 1}, fillCounts(result))
}

func TestRandomUnmatchableSubset(t *testing.T) {
	posts := flatPosts(
		[]model.Socket{model.SocketType1, model.SocketType1},
		[]int{2, 2},
		[]int{0, 0},
	)
	// vehicles 1 and 3 carry no socket bit at all
	fleet := flatFleet([]model.Socket{model.SocketType1, 0, model.SocketType1, 0})

	rng := rand.New(rand.NewSource(7))
	result, err := Random(fleet, posts, matchers.SocketCompatibility, 0, rng)
	require.NoError(t, err)

	assert.True(t, result.Allocation[0].Valid)
	assert.False(t, result.Allocation[1].Valid)
	assert.True(t, result.Allocation[2].Valid)
	assert.False(t, result.Allocation[3].Valid)
}

func TestRandomOverbookedFails(t *testing.T) {
	posts := flatPosts([]model.Socket{model.SocketType1}, []int{1}, []int{0})
	fleet := flatFleet([]model.Socket{model.SocketType1, model.SocketType1})

	_, err := Random(fleet, posts, matchers.SocketCompatibility, 0, rand.New(rand.NewSource(1)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOverbooked))
}

func TestRandomDoesNotMutateInputs(t *testing.T) {
	posts := flatPosts([]model.Socket{model.SocketType1}, []int{2}, []int{0})
	fleet := flatFleet([]model.Socket{model.SocketType1, model.SocketType1})

	_, err := Random(fleet, posts, matchers.SocketCompatibility, 0, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Nil(t, fleet.Allocation)
	assert.Equal(t, []int{0}, posts.Occupancy)
}

func TestRandomCapacityInvariant(t *testing.T) {
	posts := flatPosts(
		[]model.Socket{model.SocketType1, model.SocketType1 | model.SocketType2, model.SocketType2, model.SocketCCS},
		[]int{3, 2, 2, 1},
		[]int{1, 0, 1, 0},
	)
	fleet := flatFleet([]model.Socket{
		model.SocketType1, model.SocketType2, model.SocketType1,
		model.SocketType2, model.SocketCCS, model.SocketType1,
	})

	rng := rand.New(rand.NewSource(3))
	result, err := Random(fleet, posts, matchers.SocketCompatibility, 0, rng)
	require.NoError(t, err)
	require.Equal(t, fleet.Len(), result.Len())

	counts := fillCounts(result)
	for position, id := range posts.ID {
		assert.LessOrEqual(t, counts[id]+posts.Occupancy[position], posts.Capacity[position],
			"post %d over capacity", id)
	}
	// every assigned pair is compatible
	for i, a := range result.Allocation {
		if !a.Valid {
			continue
		}
		position, err := posts.Loc([]int{a.Post})
		require.NoError(t, err)
		assert.NotZero(t, fleet.Socket[i]&posts.Socket[position[0]])
	}
}

func TestRandomSeedReproducibility(t *testing.T) {
	posts := flatPosts(
		[]model.Socket{model.SocketType1, model.SocketType1, model.SocketType1},
		[]int{2, 2, 2},
		[]int{0, 0, 0},
	)
	fleet := flatFleet([]model.Socket{
		model.SocketType1, model.SocketType1, model.SocketType1,
		model.SocketType1, model.SocketType1,
	})

	a, err := Random(fleet, posts, matchers.SocketCompatibility, 0, rand.New(rand.NewSource(11)))
	require.NoError(t, err)
	b, err := Random(fleet, posts, matchers.SocketCompatibility, 0, rand.New(rand.NewSource(11)))
	require.NoError(t, err)
	assert.Equal(t, a.Allocation, b.Allocation)
}

func TestSpreadOverbookedConservation(t *testing.T) {
	posts := flatPosts(
		[]model.Socket{model.SocketType1, model.SocketType1},
		[]int{2, 3},
		[]int{0, 1},
	)
	// ten vehicles for four vacancies, all mutually compatible
	sockets := make([]model.Socket, 10)
	for i := range sockets {
		sockets[i] = model.SocketType1
	}
	fleet := flatFleet(sockets)

	rng := rand.New(rand.NewSource(5))
	base := func(f *model.Fleet, p *model.ChargingPosts, m matchers.Matcher, r *rand.Rand) (*model.Fleet, error) {
		return Random(f, p, m, 0, r)
	}
	result, err := SpreadOverbooked(fleet, posts, matchers.SocketCompatibility, rng, base)
	require.NoError(t, err)

	require.Equal(t, fleet.Len(), result.Len())
	assigned := 0
	for _, a := range result.Allocation {
		if a.Valid {
			assigned++
		}
	}
	// everyone is compatible with everything: exactly the vacancies fill up
	assert.Equal(t, 4, assigned)

	counts := fillCounts(result)
	assert.LessOrEqual(t, counts[0], 2)
	assert.LessOrEqual(t, counts[1], 2)
}

func TestSpreadOverbookedNoVacancies(t *testing.T) {
	posts := flatPosts([]model.Socket{model.SocketType1}, []int{1}, []int{1})
	fleet := flatFleet([]model.Socket{model.SocketType1, model.SocketType1})

	base := func(f *model.Fleet, p *model.ChargingPosts, m matchers.Matcher, r *rand.Rand) (*model.Fleet, error) {
		return Random(f, p, m, 0, r)
	}
	result, err := SpreadOverbooked(fleet, posts, matchers.SocketCompatibility, rand.New(rand.NewSource(1)), base)
	require.NoError(t, err)
	for _, a := range result.Allocation {
		assert.False(t, a.Valid)
	}
}

func TestSpreadOverbookedDelegatesWhenFits(t *testing.T) {
	posts := flatPosts([]model.Socket{model.SocketType1}, []int{2}, []int{0})
	fleet := flatFleet([]model.Socket{model.SocketType1, model.SocketType1})

	called := false
	base := func(f *model.Fleet, p *model.ChargingPosts, m matchers.Matcher, r *rand.Rand) (*model.Fleet, error) {
		called = true
		return Random(f, p, m, 0, r)
	}
	result, err := SpreadOverbooked(fleet, posts, matchers.SocketCompatibility, rand.New(rand.NewSource(1)), base)
	require.NoError(t, err)
	assert.True(t, called)
	assert.True(t, result.Allocation[0].Valid)
	assert.True(t, result.Allocation[1].Valid)
}

func TestRandomAllocatorEngagesOverbooking(t *testing.T) {
	posts := flatPosts([]model.Socket{model.SocketType1}, []int{2}, []int{0})
	sockets := make([]model.Socket, 5)
	for i := range sockets {
		sockets[i] = model.SocketType1
	}
	fleet := flatFleet(sockets)

	alloc := &RandomAllocator{Config: RandomConfig{Seed: 9}}
	result, err := alloc.Allocate(fleet, posts, matchers.SocketCompatibility)
	require.NoError(t, err)
	assigned := 0
	for _, a := range result.Allocation {
		if a.Valid {
			assert.Equal(t, 0, a.Post)
			assigned++
		}
	}
	assert.Equal(t, 2, assigned)
}
