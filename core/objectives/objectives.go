// Package objectives provides the great-circle distance functions used by
// matchers and by the greedy allocator's spatial index.
package objectives

import (
	"fmt"
	"math"
)

// EarthRadiusKM is the mean Earth radius used by all distance functions.
const EarthRadiusKM = 6371.0

// DistanceFunc computes the distance in kilometers between two points given
// as latitude/longitude pairs in degrees.
type DistanceFunc func(aLat, aLong, bLat, bLong float64) float64

// GreatCircle computes the great-circle distance from the spherical law of
// cosines. It can suffer from rounding on very small distances, where
// Haversine should be preferred.
func GreatCircle(aLat, aLong, bLat, bLong float64) float64 {
	aphi := aLat * math.Pi / 180
	bphi := bLat * math.Pi / 180
	dlam := (aLong - bLong) * math.Pi / 180
	x := math.Sin(aphi)*math.Sin(bphi) + math.Cos(aphi)*math.Cos(bphi)*math.Cos(dlam)
	// clamp against rounding outside acos domain
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}
	return math.Acos(x) * EarthRadiusKM
}

// Haversine computes the great-circle distance using the haversine formula,
// which is numerically stable for small distances.
func Haversine(aLat, aLong, bLat, bLong float64) float64 {
	aphi := aLat * math.Pi / 180
	bphi := bLat * math.Pi / 180
	sinDphi := math.Sin((aphi - bphi) / 2)
	sinDlam := math.Sin((aLong - bLong) * math.Pi / 360)
	h := sinDphi*sinDphi + math.Cos(aphi)*math.Cos(bphi)*sinDlam*sinDlam
	return 2 * math.Asin(math.Sqrt(h)) * EarthRadiusKM
}

// Metric resolves a distance function by name. Unknown names are a
// configuration error.
func Metric(name string) (DistanceFunc, error) {
	switch name {
	case "", "haversine":
		return Haversine, nil
	case "great_circle":
		return GreatCircle, nil
	}
	return nil, fmt.Errorf("unknown distance metric %s", name)
}
