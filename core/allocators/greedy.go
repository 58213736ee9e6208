package allocators

import (
	"fmt"
	randv2 "math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/spatial/vptree"

	"github.com/kilianp07/evalloc/core/logger"
	"github.com/kilianp07/evalloc/core/matchers"
	"github.com/kilianp07/evalloc/core/model"
	"github.com/kilianp07/evalloc/core/objectives"
)

// GreedyConfig tunes the nearest-neighbor allocator.
type GreedyConfig struct {
	// NearestNeighbors is the size of each vehicle's candidate window.
	// Values of zero or below widen the search to all available posts.
	NearestNeighbors int `json:"nearestNeighbors"`
	// MaxIter bounds the assignment loop. Zero or below defaults to the
	// total number of vacancies.
	MaxIter int `json:"maxIter"`
	// Metric names the great-circle distance used by the spatial index.
	Metric string `json:"metric"`
	// Effort tunes vantage point selection when building the tree.
	Effort int `json:"effort"`
}

// DefaultGreedyConfig returns the documented defaults.
func DefaultGreedyConfig() GreedyConfig {
	return GreedyConfig{NearestNeighbors: 10, Metric: "haversine", Effort: 5}
}

// Greedy assigns each vehicle to the nearest compatible post with spare
// capacity, processing vehicles in table order so earlier rows win contested
// slots. No randomness is involved: the result is deterministic for a given
// table order.
//
// Each round builds a vantage point tree over the posts that still have room,
// queries the NearestNeighbors closest posts to every unassigned vehicle's
// destination, evaluates the matcher across those candidate windows and
// commits, per vehicle, the nearest matching candidate only. Vehicles whose
// pick was lost to oversubscription are voided back and retried next round.
// The iteration counter advances by the number of vacancies filled in the
// round, and a round with no progress ends the loop, with a warning when the
// candidate window was narrower than the available pool.
func Greedy(fleet *model.Fleet, posts *model.ChargingPosts, m matchers.Matcher, cfg GreedyConfig, log logger.Logger) (*model.Fleet, error) {
	if err := validateTables(fleet, posts); err != nil {
		return nil, err
	}
	metric, err := objectives.Metric(cfg.Metric)
	if err != nil {
		return nil, err
	}

	result := fleet.Clone()
	working := posts.Clone()
	_, totalVacancies := working.Vacancies()
	budget := cfg.MaxIter
	if budget <= 0 {
		budget = totalVacancies
	}

	for iter := 0; iter < budget; {
		var available []int
		for position := range working.ID {
			if working.Occupancy[position] < working.Capacity[position] {
				available = append(available, position)
			}
		}
		var unassigned []int
		for position := range result.Allocation {
			if !result.Allocation[position].Valid {
				unassigned = append(unassigned, position)
			}
		}
		if len(available) == 0 || len(unassigned) == 0 {
			break
		}

		k := cfg.NearestNeighbors
		if k <= 0 || k > len(available) {
			k = len(available)
		}

		indices, err := nearestPosts(working, available, fleet, unassigned, k, metric, cfg.Effort)
		if err != nil {
			return nil, err
		}
		isMatch, err := matchers.AllToAll(fleet.Take(unassigned), posts, m, matchers.WithIndices(indices))
		if err != nil {
			return nil, err
		}

		filled := 0
		for i, position := range unassigned {
			for j, candidate := range indices[i] {
				if !isMatch[i][j] {
					continue
				}
				// nearest matching candidate only; void when the
				// round already used up the post's capacity
				if working.Occupancy[candidate] < working.Capacity[candidate] {
					result.Allocation[position] = model.Allocate(posts.ID[candidate])
					working.Occupancy[candidate]++
					filled++
				}
				break
			}
		}
		if filled == 0 {
			if k < len(available) {
				log.Warnf("no assignment progress with %d nearest neighbours out of %d available posts; a wider search may unlock more matches", k, len(available))
			}
			break
		}
		iter += filled
	}
	return result, nil
}

// postPoint is a charging post in the vantage point tree. The distance is the
// configured great-circle metric, which satisfies the triangle inequality on
// the sphere.
type postPoint struct {
	lat, long float64
	position  int
	metric    objectives.DistanceFunc
}

func (p postPoint) Distance(c vptree.Comparable) float64 {
	q := c.(postPoint)
	return p.metric(p.lat, p.long, q.lat, q.long)
}

// nearestPosts returns, for each unassigned vehicle, the positions of its k
// nearest available posts ordered by increasing distance from the vehicle's
// destination.
func nearestPosts(working *model.ChargingPosts, available []int, fleet *model.Fleet, unassigned []int, k int, metric objectives.DistanceFunc, effort int) ([][]int, error) {
	points := make([]vptree.Comparable, len(available))
	for i, position := range available {
		points[i] = postPoint{
			lat:      working.Latitude[position],
			long:     working.Longitude[position],
			position: position,
			metric:   metric,
		}
	}
	// fixed source keeps vantage point selection deterministic
	tree, err := vptree.New(points, effort, randv2.NewPCG(1, 1))
	if err != nil {
		return nil, fmt.Errorf("build spatial index: %w", err)
	}

	indices := make([][]int, len(unassigned))
	for i, position := range unassigned {
		query := postPoint{
			lat:    fleet.DestLat[position],
			long:   fleet.DestLong[position],
			metric: metric,
		}
		keeper := vptree.NewNKeeper(k)
		tree.NearestSet(keeper, query)
		found := make([]vptree.ComparableDist, 0, k)
		for _, item := range keeper.Heap {
			if item.Comparable != nil {
				found = append(found, item)
			}
		}
		sort.Slice(found, func(a, b int) bool { return found[a].Dist < found[b].Dist })
		row := make([]int, len(found))
		for j, item := range found {
			row[j] = item.Comparable.(postPoint).position
		}
		indices[i] = row
	}
	return indices, nil
}
