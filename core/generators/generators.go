// Package generators builds random fleets and charging infrastructure over a
// geographic range, defaulting to Greater London.
package generators

import (
	"fmt"
	"math/rand"

	"github.com/kilianp07/evalloc/core/model"
)

// Default coordinate ranges covering Greater London.
var (
	LondonLatitude  = [2]float64{51.25, 51.70}
	LondonLongitude = [2]float64{-0.5, 1.25}
)

// TypesConfig selects the socket, charger and model pools shared by the fleet
// and charging post generators.
type TypesConfig struct {
	// Latitude and Longitude bound the generated coordinates. Empty ranges
	// fall back to the London defaults.
	Latitude  [2]float64 `json:"latitude"`
	Longitude [2]float64 `json:"longitude"`
	// SocketTypes lists the socket names to draw from. Defaults to every
	// known socket type.
	SocketTypes []string `json:"socket_types"`
	// SocketDistribution weights the socket draw. Empty means uniform.
	SocketDistribution []float64 `json:"socket_distribution"`
	// SocketMultiplicity above one combines several socket draws per row.
	SocketMultiplicity  int       `json:"socket_multiplicity"`
	ChargerTypes        []string  `json:"charger_types"`
	ChargerDistribution []float64 `json:"charger_distribution"`
	ChargerMultiplicity int       `json:"charger_multiplicity"`
}

// FleetConfig parametrizes RandomFleet.
type FleetConfig struct {
	TypesConfig `json:",squash"`
	N           int `json:"n"`
	// ModelTypes lists the vehicle model names to draw from. Defaults to
	// every known model.
	ModelTypes []string `json:"model_types"`
	Seed       int64    `json:"seed"`
}

// PostsConfig parametrizes RandomChargingPosts.
type PostsConfig struct {
	TypesConfig `json:",squash"`
	N           int `json:"n"`
	// Capacity is a [min, max) range, or a single value v standing for
	// [1, v+1). Defaults to a capacity of one for every post.
	Capacity []int `json:"capacity"`
	// Occupancy is a [min, max) range, or a single value v standing for
	// [0, v+1). Occupancies never exceed the post's capacity. Defaults to
	// empty posts.
	//
	// The reduction modulo capacity skews the distribution towards lower
	// values when the range exceeds a post's capacity.
	Occupancy []int `json:"occupancy"`
	Seed      int64 `json:"seed"`
}

func (c *TypesConfig) ranges() (lat, long [2]float64) {
	lat, long = c.Latitude, c.Longitude
	if lat == [2]float64{} {
		lat = LondonLatitude
	}
	if long == [2]float64{} {
		long = LondonLongitude
	}
	if lat[0] > lat[1] {
		lat[0], lat[1] = lat[1], lat[0]
	}
	if long[0] > long[1] {
		long[0], long[1] = long[1], long[0]
	}
	return lat, long
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + (hi-lo)*rng.Float64()
}

// weightedIndex draws an index from weights, or uniformly when weights is
// empty.
func weightedIndex(rng *rand.Rand, n int, weights []float64) (int, error) {
	if len(weights) == 0 {
		return rng.Intn(n), nil
	}
	if len(weights) != n {
		return 0, fmt.Errorf("got %d weights for %d choices", len(weights), n)
	}
	total := 0.0
	for _, w := range weights {
		if w < 0 {
			return 0, fmt.Errorf("negative weight %v", w)
		}
		total += w
	}
	if total <= 0 {
		return 0, fmt.Errorf("weights sum to zero")
	}
	r := rng.Float64() * total
	for i, w := range weights {
		r -= w
		if r < 0 {
			return i, nil
		}
	}
	return n - 1, nil
}

// drawFlags draws one flag value, combining up to multiplicity draws with a
// bitwise or. With multiplicity m above one, between 1 and m-1 draws are kept.
func drawFlags[F model.Socket | model.Charger](rng *rand.Rand, pool []F, weights []float64, multiplicity int) (F, error) {
	if multiplicity < 1 {
		multiplicity = 1
	}
	draws := make([]F, multiplicity)
	for i := range draws {
		j, err := weightedIndex(rng, len(pool), weights)
		if err != nil {
			return 0, err
		}
		draws[i] = pool[j]
	}
	if multiplicity == 1 {
		return draws[0], nil
	}
	var combined F
	for _, d := range draws[:1+rng.Intn(multiplicity-1)] {
		combined |= d
	}
	return combined, nil
}

func socketPool(names []string) ([]model.Socket, error) {
	if len(names) == 0 {
		return model.AllSockets, nil
	}
	pool := make([]model.Socket, len(names))
	for i, name := range names {
		s, err := model.ParseSocket(name)
		if err != nil {
			return nil, err
		}
		pool[i] = s
	}
	return pool, nil
}

func chargerPool(names []string) ([]model.Charger, error) {
	if len(names) == 0 {
		return model.AllChargers, nil
	}
	pool := make([]model.Charger, len(names))
	for i, name := range names {
		c, err := model.ParseCharger(name)
		if err != nil {
			return nil, err
		}
		pool[i] = c
	}
	return pool, nil
}

func modelPool(names []string) ([]model.VehicleModel, error) {
	if len(names) == 0 {
		return model.AllVehicleModels, nil
	}
	pool := make([]model.VehicleModel, len(names))
	for i, name := range names {
		m, err := model.ParseVehicleModel(name)
		if err != nil {
			return nil, err
		}
		pool[i] = m
	}
	return pool, nil
}

// normalizeRange expands a single value into a range and orders the bounds.
func normalizeRange(r []int, single [2]int) ([2]int, error) {
	switch len(r) {
	case 0:
		return single, nil
	case 1:
		return [2]int{single[0], r[0] + 1}, nil
	case 2:
		lo, hi := r[0], r[1]
		if lo > hi {
			lo, hi = hi, lo
		}
		return [2]int{lo, hi}, nil
	default:
		return [2]int{}, fmt.Errorf("range must hold one or two values, got %d", len(r))
	}
}

// RandomFleet generates n electric vehicles with random locations,
// destinations, plugs and models.
func RandomFleet(cfg FleetConfig, rng *rand.Rand) (*model.Fleet, error) {
	if cfg.N < 0 {
		return nil, fmt.Errorf("fleet size cannot be negative")
	}
	sockets, err := socketPool(cfg.SocketTypes)
	if err != nil {
		return nil, err
	}
	chargers, err := chargerPool(cfg.ChargerTypes)
	if err != nil {
		return nil, err
	}
	models, err := modelPool(cfg.ModelTypes)
	if err != nil {
		return nil, err
	}
	lat, long := cfg.ranges()

	n := cfg.N
	fleet := &model.Fleet{
		ID:        make([]int, n),
		Latitude:  make([]float64, n),
		Longitude: make([]float64, n),
		DestLat:   make([]float64, n),
		DestLong:  make([]float64, n),
		Socket:    make([]model.Socket, n),
		Charger:   make([]model.Charger, n),
		Model:     make([]model.VehicleModel, n),
	}
	for i := 0; i < n; i++ {
		fleet.ID[i] = i
		fleet.Latitude[i] = uniform(rng, lat[0], lat[1])
		fleet.Longitude[i] = uniform(rng, long[0], long[1])
		fleet.DestLat[i] = uniform(rng, lat[0], lat[1])
		fleet.DestLong[i] = uniform(rng, long[0], long[1])
		fleet.Socket[i], err = drawFlags(rng, sockets, cfg.SocketDistribution, cfg.SocketMultiplicity)
		if err != nil {
			return nil, err
		}
		fleet.Charger[i], err = drawFlags(rng, chargers, cfg.ChargerDistribution, cfg.ChargerMultiplicity)
		if err != nil {
			return nil, err
		}
		j, err := weightedIndex(rng, len(models), nil)
		if err != nil {
			return nil, err
		}
		fleet.Model[i] = models[j]
	}
	return fleet, nil
}

// RandomChargingPosts generates n charging posts with random locations, plugs,
// capacities and occupancies.
func RandomChargingPosts(cfg PostsConfig, rng *rand.Rand) (*model.ChargingPosts, error) {
	if cfg.N < 0 {
		return nil, fmt.Errorf("post count cannot be negative")
	}
	sockets, err := socketPool(cfg.SocketTypes)
	if err != nil {
		return nil, err
	}
	chargers, err := chargerPool(cfg.ChargerTypes)
	if err != nil {
		return nil, err
	}
	capacity, err := normalizeRange(cfg.Capacity, [2]int{1, 2})
	if err != nil {
		return nil, fmt.Errorf("capacity: %w", err)
	}
	if capacity[0] < 1 {
		return nil, fmt.Errorf("the minimum capacity must be at least 1")
	}
	if capacity[1] < 2 {
		return nil, fmt.Errorf("the maximum capacity must be at least 2 (excluded)")
	}
	occupancy, err := normalizeRange(cfg.Occupancy, [2]int{0, 1})
	if err != nil {
		return nil, fmt.Errorf("occupancy: %w", err)
	}
	if occupancy[0] < 0 {
		return nil, fmt.Errorf("the minimum occupancy must be at least 0")
	}
	if occupancy[1] < 1 {
		return nil, fmt.Errorf("the maximum occupancy must be at least 1 (excluded)")
	}
	lat, long := cfg.ranges()

	n := cfg.N
	posts := &model.ChargingPosts{
		ID:        make([]int, n),
		Latitude:  make([]float64, n),
		Longitude: make([]float64, n),
		Socket:    make([]model.Socket, n),
		Charger:   make([]model.Charger, n),
		Capacity:  make([]int, n),
		Occupancy: make([]int, n),
	}
	for i := 0; i < n; i++ {
		posts.ID[i] = i
		posts.Latitude[i] = uniform(rng, lat[0], lat[1])
		posts.Longitude[i] = uniform(rng, long[0], long[1])
		posts.Socket[i], err = drawFlags(rng, sockets, cfg.SocketDistribution, cfg.SocketMultiplicity)
		if err != nil {
			return nil, err
		}
		posts.Charger[i], err = drawFlags(rng, chargers, cfg.ChargerDistribution, cfg.ChargerMultiplicity)
		if err != nil {
			return nil, err
		}
		if capacity[0] == capacity[1] {
			posts.Capacity[i] = 1
		} else {
			posts.Capacity[i] = capacity[0] + rng.Intn(capacity[1]-capacity[0])
		}
		if occupancy[0] == occupancy[1] {
			posts.Occupancy[i] = 1
		} else {
			// modulo keeps occupancy below capacity at the cost of
			// skewing the distribution towards lower values
			posts.Occupancy[i] = (occupancy[0] + rng.Intn(occupancy[1]-occupancy[0])) % posts.Capacity[i]
		}
	}
	return posts, nil
}
