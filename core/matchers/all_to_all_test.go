package matchers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllToAllFullMatrix(t *testing.T) {
	fleet := testFleet()
	posts := testPosts()
	got, err := AllToAll(fleet, posts, SocketCompatibility)
	require.NoError(t, err)
	require.Len(t, got, fleet.Len())
	want := [][]bool{
		{true, false, true, false},
		{false, true, false, false},
		{false, false, true, false},
	}
	assert.Equal(t, want, got)
}

func TestAllToAllWithIndices(t *testing.T) {
	fleet := testFleet()
	posts := testPosts()
	indices := [][]int{{2, 0}, {1, 3}, {3, 2}}
	got, err := AllToAll(fleet, posts, SocketCompatibility, WithIndices(indices))
	require.NoError(t, err)
	want := [][]bool{
		{true, true},
		{true, false},
		{false, true},
	}
	assert.Equal(t, want, got)
}

func TestAllToAllWithLabels(t *testing.T) {
	fleet := testFleet()
	posts := testPosts()
	got, err := AllToAll(fleet, posts, SocketCompatibility, WithLabels([]int{2, 3}))
	require.NoError(t, err)
	want := [][]bool{
		{true, false},
		{false, false},
		{true, false},
	}
	assert.Equal(t, want, got)

	_, err = AllToAll(fleet, posts, SocketCompatibility, WithLabels([]int{42}))
	assert.Error(t, err)
}

func TestAllToAllIndicesAndLabelsConflict(t *testing.T) {
	fleet := testFleet()
	posts := testPosts()
	_, err := AllToAll(fleet, posts, SocketCompatibility,
		WithIndices([][]int{{0}, {0}, {0}}), WithLabels([]int{0}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot both be given")
}

func TestAllToAllIndicesRowCountMismatch(t *testing.T) {
	fleet := testFleet()
	posts := testPosts()
	_, err := AllToAll(fleet, posts, SocketCompatibility, WithIndices([][]int{{0}}))
	assert.Error(t, err)
}
