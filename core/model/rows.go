package model

// Rows is a column-oriented view over fleet or charging post rows. It is the
// unit matchers operate on: element-wise across aligned columns, never one
// row at a time. Columns that do not apply to the underlying table are nil;
// matchers that need a missing column report an error.
//
// A view of length one broadcasts against a view of any length, which is how
// classification compares a whole table against a single template row.
type Rows struct {
	Index     []int
	Latitude  []float64
	Longitude []float64
	DestLat   []float64
	DestLong  []float64
	Socket    []Socket
	Charger   []Charger
	Capacity  []int
	Occupancy []int
}

// Len returns the number of rows in the view.
func (r Rows) Len() int { return len(r.Index) }

// Row returns a single-row view suitable for broadcasting.
func (r Rows) Row(i int) Rows {
	return Rows{
		Index:     slice1(r.Index, i),
		Latitude:  slice1(r.Latitude, i),
		Longitude: slice1(r.Longitude, i),
		DestLat:   slice1(r.DestLat, i),
		DestLong:  slice1(r.DestLong, i),
		Socket:    slice1(r.Socket, i),
		Charger:   slice1(r.Charger, i),
		Capacity:  slice1(r.Capacity, i),
		Occupancy: slice1(r.Occupancy, i),
	}
}

// Gather returns a view holding the rows at the given positions, in order.
// Positions may repeat: gathering is how the all-to-all matcher aligns one
// vehicle with several candidate posts.
func (r Rows) Gather(positions []int) Rows {
	return Rows{
		Index:     gather(r.Index, positions),
		Latitude:  gather(r.Latitude, positions),
		Longitude: gather(r.Longitude, positions),
		DestLat:   gather(r.DestLat, positions),
		DestLong:  gather(r.DestLong, positions),
		Socket:    gather(r.Socket, positions),
		Charger:   gather(r.Charger, positions),
		Capacity:  gather(r.Capacity, positions),
		Occupancy: gather(r.Occupancy, positions),
	}
}

func slice1[T any](col []T, i int) []T {
	if col == nil {
		return nil
	}
	return col[i : i+1]
}

func gather[T any](col []T, positions []int) []T {
	if col == nil {
		return nil
	}
	out := make([]T, len(positions))
	for i, p := range positions {
		out[i] = col[p]
	}
	return out
}
