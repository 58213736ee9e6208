package matchers

import (
	"fmt"

	"github.com/kilianp07/evalloc/core/model"
)

type allToAllOptions struct {
	indices [][]int
	labels  []int
}

// AllToAllOption restricts which posts each vehicle is matched against.
type AllToAllOption func(*allToAllOptions)

// WithIndices matches each vehicle against its own row of candidate post
// positions. Row i of the matrix names the candidates of vehicle i.
func WithIndices(indices [][]int) AllToAllOption {
	return func(o *allToAllOptions) { o.indices = indices }
}

// WithLabels matches every vehicle against the posts with the given labels.
func WithLabels(labels []int) AllToAllOption {
	return func(o *allToAllOptions) { o.labels = labels }
}

// AllToAll computes the boolean compatibility matrix between every vehicle
// and its candidate posts: the outer product of the two tables under the
// matcher. Without options the full fleet-by-posts matrix is returned; the
// indices and labels forms gather per-vehicle or shared candidate subsets.
// Giving both forms at once is a configuration error.
func AllToAll(fleet *model.Fleet, posts *model.ChargingPosts, m Matcher, opts ...AllToAllOption) ([][]bool, error) {
	var o allToAllOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.indices != nil && o.labels != nil {
		return nil, fmt.Errorf("indices and labels cannot both be given at the same time")
	}

	vehicles := fleet.Rows()
	result := make([][]bool, fleet.Len())

	var shared model.Rows
	switch {
	case o.indices != nil:
		if len(o.indices) != fleet.Len() {
			return nil, fmt.Errorf("indices matrix has %d rows, want %d", len(o.indices), fleet.Len())
		}
	case o.labels != nil:
		positions, err := posts.Loc(o.labels)
		if err != nil {
			return nil, err
		}
		shared = posts.Rows().Gather(positions)
	default:
		shared = posts.Rows()
	}

	for i := 0; i < fleet.Len(); i++ {
		candidates := shared
		if o.indices != nil {
			candidates = posts.Rows().Gather(o.indices[i])
		}
		row, err := m(vehicles.Row(i), candidates)
		if err != nil {
			return nil, err
		}
		result[i] = row
	}
	return result, nil
}
