package objectives

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// London and Paris city centres, roughly 344 km apart.
const (
	londonLat = 51.5074
	londonLon = -0.1278
	parisLat  = 48.8566
	parisLon  = 2.3522
)

func TestHaversineKnownDistance(t *testing.T) {
	d := Haversine(londonLat, londonLon, parisLat, parisLon)
	assert.InDelta(t, 344, d, 2)
}

func TestGreatCircleAgreesWithHaversine(t *testing.T) {
	cases := [][4]float64{
		{londonLat, londonLon, parisLat, parisLon},
		{51.25, -0.5, 51.70, 1.25},
		{0, 0, 0, 90},
	}
	for _, c := range cases {
		assert.InDelta(t, Haversine(c[0], c[1], c[2], c[3]), GreatCircle(c[0], c[1], c[2], c[3]), 1e-6)
	}
}

func TestDistanceIsZeroOnIdenticalPoints(t *testing.T) {
	assert.InDelta(t, 0, Haversine(51.5, -0.1, 51.5, -0.1), 1e-9)
	assert.InDelta(t, 0, GreatCircle(51.5, -0.1, 51.5, -0.1), 1e-6)
}

func TestMetricResolution(t *testing.T) {
	f, err := Metric("")
	require.NoError(t, err)
	assert.NotNil(t, f)
	f, err = Metric("great_circle")
	require.NoError(t, err)
	assert.NotNil(t, f)
	_, err = Metric("euclidean")
	assert.Error(t, err)
}
