// Package matchers provides vectorized compatibility predicates between
// electric vehicles and charging posts, a factory resolving named matcher
// specs, the all-to-all matching primitive and the classification of tables
// into matching equivalence classes.
package matchers

import (
	"fmt"

	"github.com/kilianp07/evalloc/core/model"
	"github.com/kilianp07/evalloc/core/objectives"
)

// Matcher reports element-wise compatibility between aligned vehicle and post
// rows. Either side may be a single broadcast row. Matchers never swallow
// schema problems: a missing column is an error, not a false.
type Matcher func(vehicles, posts model.Rows) ([]bool, error)

// PostAvailability is true where the post has spare capacity. It does not
// inspect the vehicle side but keeps the common signature so it can be
// composed with other matchers.
func PostAvailability(_, posts model.Rows) ([]bool, error) {
	if posts.Occupancy == nil || posts.Capacity == nil {
		return nil, fmt.Errorf("post_availability: capacity or occupancy column missing")
	}
	n := len(posts.Occupancy)
	out := make([]bool, n)
	for i := 0; i < n; i++ {
		out[i] = posts.Occupancy[i] < posts.Capacity[i]
	}
	return out, nil
}

// SocketCompatibility is true where vehicle and post share a socket bit.
func SocketCompatibility(vehicles, posts model.Rows) ([]bool, error) {
	if vehicles.Socket == nil || posts.Socket == nil {
		return nil, fmt.Errorf("socket_compatibility: socket column missing")
	}
	n, err := pairLen(len(vehicles.Socket), len(posts.Socket))
	if err != nil {
		return nil, fmt.Errorf("socket_compatibility: %w", err)
	}
	out := make([]bool, n)
	for i := 0; i < n; i++ {
		out[i] = at(vehicles.Socket, i)&at(posts.Socket, i) != 0
	}
	return out, nil
}

// ChargerCompatibility is true where vehicle and post share a charger bit.
func ChargerCompatibility(vehicles, posts model.Rows) ([]bool, error) {
	if vehicles.Charger == nil || posts.Charger == nil {
		return nil, fmt.Errorf("charger_compatibility: charger column missing")
	}
	n, err := pairLen(len(vehicles.Charger), len(posts.Charger))
	if err != nil {
		return nil, fmt.Errorf("charger_compatibility: %w", err)
	}
	out := make([]bool, n)
	for i := 0; i < n; i++ {
		out[i] = at(vehicles.Charger, i)&at(posts.Charger, i) != 0
	}
	return out, nil
}

// Distance is true where the great-circle distance between the vehicle's
// current location and the post is below maxDistance kilometers.
func Distance(maxDistance float64) Matcher {
	return func(vehicles, posts model.Rows) ([]bool, error) {
		return withinDistance("distance", vehicles.Latitude, vehicles.Longitude, posts, maxDistance)
	}
}

// DistanceFromDestination is true where the great-circle distance between the
// vehicle's destination and the post is below maxDistance kilometers.
func DistanceFromDestination(maxDistance float64) Matcher {
	return func(vehicles, posts model.Rows) ([]bool, error) {
		return withinDistance("distance_from_destination", vehicles.DestLat, vehicles.DestLong, posts, maxDistance)
	}
}

func withinDistance(name string, lat, long []float64, posts model.Rows, maxDistance float64) ([]bool, error) {
	if lat == nil || long == nil {
		return nil, fmt.Errorf("%s: vehicle coordinate column missing", name)
	}
	if posts.Latitude == nil || posts.Longitude == nil {
		return nil, fmt.Errorf("%s: post coordinate column missing", name)
	}
	n, err := pairLen(len(lat), len(posts.Latitude))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	out := make([]bool, n)
	for i := 0; i < n; i++ {
		d := objectives.GreatCircle(at(lat, i), at(long, i), at(posts.Latitude, i), at(posts.Longitude, i))
		out[i] = d < maxDistance
	}
	return out, nil
}

// And composes matchers into a single predicate that is true only where every
// component matches.
func And(components ...Matcher) Matcher {
	if len(components) == 1 {
		return components[0]
	}
	return func(vehicles, posts model.Rows) ([]bool, error) {
		var result []bool
		for _, m := range components {
			part, err := m(vehicles, posts)
			if err != nil {
				return nil, err
			}
			if result == nil {
				result = part
				continue
			}
			if len(part) != len(result) {
				return nil, fmt.Errorf("matcher results disagree on length: %d vs %d", len(part), len(result))
			}
			for i := range result {
				result[i] = result[i] && part[i]
			}
		}
		return result, nil
	}
}

// pairLen returns the broadcast length of two aligned columns. Lengths must
// be equal or one of them must be one.
func pairLen(a, b int) (int, error) {
	switch {
	case a == b:
		return a, nil
	case a == 1:
		return b, nil
	case b == 1:
		return a, nil
	}
	return 0, fmt.Errorf("cannot broadcast %d rows against %d", a, b)
}

// at indexes a column, broadcasting single-element columns.
func at[T any](col []T, i int) T {
	if len(col) == 1 {
		return col[0]
	}
	return col[i]
}
