package model

import (
	"fmt"
	"math"
)

// Allocation is a nullable reference to a row of the charging posts table.
// The zero value is the null marker used for unassigned vehicles.
type Allocation struct {
	Post  int
	Valid bool
}

// Allocate returns a non-null allocation pointing at the given post label.
func Allocate(post int) Allocation { return Allocation{Post: post, Valid: true} }

// Fleet is a column-oriented table of electric vehicles. Rows are keyed by the
// stable labels in ID. The Allocation column is only ever populated by
// allocators, which return a shallow copy of their input with a fresh column.
type Fleet struct {
	ID         []int
	Latitude   []float64
	Longitude  []float64
	DestLat    []float64
	DestLong   []float64
	Socket     []Socket
	Charger    []Charger
	Model      []VehicleModel
	Allocation []Allocation
}

// Len returns the number of vehicles.
func (f *Fleet) Len() int { return len(f.ID) }

// Validate checks the fleet schema: aligned column lengths, finite
// coordinates and unique labels.
func (f *Fleet) Validate() error {
	n := len(f.ID)
	for name, l := range map[string]int{
		"latitude":  len(f.Latitude),
		"longitude": len(f.Longitude),
		"dest_lat":  len(f.DestLat),
		"dest_long": len(f.DestLong),
		"socket":    len(f.Socket),
		"charger":   len(f.Charger),
	} {
		if l != n {
			return fmt.Errorf("fleet column %s has %d rows, want %d", name, l, n)
		}
	}
	if f.Model != nil && len(f.Model) != n {
		return fmt.Errorf("fleet column model has %d rows, want %d", len(f.Model), n)
	}
	if f.Allocation != nil && len(f.Allocation) != n {
		return fmt.Errorf("fleet column allocation has %d rows, want %d", len(f.Allocation), n)
	}
	seen := make(map[int]struct{}, n)
	for i, id := range f.ID {
		if _, ok := seen[id]; ok {
			return fmt.Errorf("duplicate vehicle label %d", id)
		}
		seen[id] = struct{}{}
		for name, v := range map[string]float64{
			"latitude":  f.Latitude[i],
			"longitude": f.Longitude[i],
			"dest_lat":  f.DestLat[i],
			"dest_long": f.DestLong[i],
		} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("vehicle %d has non-finite %s", id, name)
			}
		}
	}
	return nil
}

// Clone returns a shallow copy: data columns share backing arrays with the
// receiver while the Allocation column is freshly copied so the caller's
// table is never mutated.
func (f *Fleet) Clone() *Fleet {
	cp := *f
	cp.Allocation = make([]Allocation, f.Len())
	copy(cp.Allocation, f.Allocation)
	return &cp
}

// Take returns a new fleet holding the rows at the given positions.
func (f *Fleet) Take(positions []int) *Fleet {
	sub := &Fleet{
		ID:        gather(f.ID, positions),
		Latitude:  gather(f.Latitude, positions),
		Longitude: gather(f.Longitude, positions),
		DestLat:   gather(f.DestLat, positions),
		DestLong:  gather(f.DestLong, positions),
		Socket:    gather(f.Socket, positions),
		Charger:   gather(f.Charger, positions),
		Model:     gather(f.Model, positions),
	}
	if f.Allocation != nil {
		sub.Allocation = gather(f.Allocation, positions)
	}
	return sub
}

// Select returns a new fleet holding the rows where mask is true.
func (f *Fleet) Select(mask []bool) *Fleet {
	return f.Take(maskPositions(mask))
}

// Rows returns the matcher view of the fleet.
func (f *Fleet) Rows() Rows {
	return Rows{
		Index:     f.ID,
		Latitude:  f.Latitude,
		Longitude: f.Longitude,
		DestLat:   f.DestLat,
		DestLong:  f.DestLong,
		Socket:    f.Socket,
		Charger:   f.Charger,
	}
}

func maskPositions(mask []bool) []int {
	var positions []int
	for i, ok := range mask {
		if ok {
			positions = append(positions, i)
		}
	}
	return positions
}
