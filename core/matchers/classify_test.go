package matchers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/evalloc/core/model"
)

// classifyPosts builds a table whose socket bitmasks create overlapping
// classes: posts 0 and 2 share TYPE1, posts 1 and 2 share CCS.
func classifyPosts() *model.ChargingPosts {
	return &model.ChargingPosts{
		ID:        []int{10, 11, 12, 13},
		Latitude:  []float64{51.3, 51.4, 51.5, 51.6},
		Longitude: []float64{0.1, 0.2, 0.3, 0.4},
		Socket: []model.Socket{
			model.SocketType1,
			model.SocketCCS,
			model.SocketType1 | model.SocketCCS,
			model.SocketChademo,
		},
		Charger:   []model.Charger{model.ChargerSlow, model.ChargerSlow, model.ChargerSlow, model.ChargerSlow},
		Capacity:  []int{1, 1, 1, 1},
		Occupancy: []int{0, 0, 0, 0},
	}
}

func TestClassifyPartitionLaw(t *testing.T) {
	posts := classifyPosts()
	classes, err := Classify(posts.Rows(), Matcher(SocketCompatibility), false)
	require.NoError(t, err)

	// every row in exactly one class
	counts := make([]int, posts.Len())
	for _, c := range classes {
		require.Len(t, c.Mask, posts.Len())
		for i, in := range c.Mask {
			if in {
				counts[i]++
			}
		}
	}
	assert.Equal(t, []int{1, 1, 1, 1}, counts)

	// each class fully matches its template row
	for _, c := range classes {
		position, err := posts.Loc([]int{c.Template})
		require.NoError(t, err)
		isMatch, err := SocketCompatibility(posts.Rows(), posts.Rows().Row(position[0]))
		require.NoError(t, err)
		for i, in := range c.Mask {
			if in {
				assert.True(t, isMatch[i], "class member %d does not match template %d", posts.ID[i], c.Template)
			}
		}
	}
}

func TestClassifyRevisitMonotonicity(t *testing.T) {
	posts := classifyPosts()
	disjoint, err := Classify(posts.Rows(), Matcher(SocketCompatibility), false)
	require.NoError(t, err)
	overlap, err := Classify(posts.Rows(), Matcher(SocketCompatibility), true)
	require.NoError(t, err)

	require.Equal(t, len(disjoint), len(overlap))
	for k := range disjoint {
		assert.Equal(t, disjoint[k].Template, overlap[k].Template)
		for i := range disjoint[k].Mask {
			if disjoint[k].Mask[i] {
				assert.True(t, overlap[k].Mask[i], "disjoint class %d not a subset at row %d", k, i)
			}
		}
	}

	// post 12 shares bits with both templates, so the overlapping classes
	// are strictly larger somewhere
	larger := false
	for k := range disjoint {
		for i := range disjoint[k].Mask {
			if overlap[k].Mask[i] && !disjoint[k].Mask[i] {
				larger = true
			}
		}
	}
	assert.True(t, larger)
}

func TestClassifySelfMismatchFails(t *testing.T) {
	posts := classifyPosts()
	posts.Socket[0] = 0
	_, err := Classify(posts.Rows(), Matcher(SocketCompatibility), false)
	assert.Error(t, err)
}

func TestClassifyWithFleetNoDoubleCounting(t *testing.T) {
	posts := classifyPosts()
	fleet := &model.Fleet{
		ID:        []int{0, 1, 2, 3, 4},
		Latitude:  []float64{51.3, 51.3, 51.3, 51.3, 51.3},
		Longitude: []float64{0.1, 0.1, 0.1, 0.1, 0.1},
		DestLat:   []float64{51.3, 51.3, 51.3, 51.3, 51.3},
		DestLong:  []float64{0.1, 0.1, 0.1, 0.1, 0.1},
		Socket: []model.Socket{
			model.SocketType1,
			model.SocketCCS,
			model.SocketType1 | model.SocketCCS,
			model.SocketChademo,
			model.SocketThreePinSquare,
		},
		Charger: []model.Charger{model.ChargerSlow, model.ChargerSlow, model.ChargerSlow, model.ChargerSlow, model.ChargerSlow},
	}

	classes, err := ClassifyWithFleet(posts, Matcher(SocketCompatibility), fleet, false)
	require.NoError(t, err)

	counts := make([]int, fleet.Len())
	for _, c := range classes {
		require.Len(t, c.Fleet.Mask, fleet.Len())
		assert.Equal(t, c.Posts.Template, c.Fleet.Template)
		for i, in := range c.Fleet.Mask {
			if in {
				counts[i]++
			}
		}
		// subfleet members match the class template
		position, err := posts.Loc([]int{c.Posts.Template})
		require.NoError(t, err)
		isMatch, err := SocketCompatibility(fleet.Rows(), posts.Rows().Row(position[0]))
		require.NoError(t, err)
		for i, in := range c.Fleet.Mask {
			if in {
				assert.True(t, isMatch[i])
			}
		}
	}
	// vehicles 0-3 are claimed once, the THREE_PIN_SQUARE vehicle never
	assert.Equal(t, []int{1, 1, 1, 1, 0}, counts)
}
