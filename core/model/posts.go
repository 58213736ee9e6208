package model

import (
	"fmt"
	"math"
)

// ChargingPosts is a column-oriented table of charging infrastructure. Rows
// are keyed by the stable labels in ID. A post with capacity above its
// occupancy offers capacity-occupancy vacancies.
type ChargingPosts struct {
	ID        []int
	Latitude  []float64
	Longitude []float64
	Socket    []Socket
	Charger   []Charger
	Capacity  []int
	Occupancy []int
}

// Len returns the number of posts.
func (p *ChargingPosts) Len() int { return len(p.ID) }

// Validate checks the infrastructure schema: aligned column lengths, finite
// coordinates, capacity at least one and occupancy within capacity.
func (p *ChargingPosts) Validate() error {
	n := len(p.ID)
	for name, l := range map[string]int{
		"latitude":  len(p.Latitude),
		"longitude": len(p.Longitude),
		"socket":    len(p.Socket),
		"charger":   len(p.Charger),
		"capacity":  len(p.Capacity),
		"occupancy": len(p.Occupancy),
	} {
		if l != n {
			return fmt.Errorf("charging posts column %s has %d rows, want %d", name, l, n)
		}
	}
	seen := make(map[int]struct{}, n)
	for i, id := range p.ID {
		if _, ok := seen[id]; ok {
			return fmt.Errorf("duplicate post label %d", id)
		}
		seen[id] = struct{}{}
		if math.IsNaN(p.Latitude[i]) || math.IsInf(p.Latitude[i], 0) ||
			math.IsNaN(p.Longitude[i]) || math.IsInf(p.Longitude[i], 0) {
			return fmt.Errorf("post %d has non-finite coordinates", id)
		}
		if p.Capacity[i] < 1 {
			return fmt.Errorf("post %d has capacity %d, want at least 1", id, p.Capacity[i])
		}
		if p.Occupancy[i] < 0 || p.Occupancy[i] > p.Capacity[i] {
			return fmt.Errorf("post %d has occupancy %d outside [0, %d]", id, p.Occupancy[i], p.Capacity[i])
		}
	}
	return nil
}

// Clone returns a copy sharing all columns except Occupancy, which belongs to
// the copy. Multi-pass allocators track in-progress fills on such a copy.
func (p *ChargingPosts) Clone() *ChargingPosts {
	cp := *p
	cp.Occupancy = make([]int, p.Len())
	copy(cp.Occupancy, p.Occupancy)
	return &cp
}

// Take returns a new table holding the rows at the given positions.
func (p *ChargingPosts) Take(positions []int) *ChargingPosts {
	return &ChargingPosts{
		ID:        gather(p.ID, positions),
		Latitude:  gather(p.Latitude, positions),
		Longitude: gather(p.Longitude, positions),
		Socket:    gather(p.Socket, positions),
		Charger:   gather(p.Charger, positions),
		Capacity:  gather(p.Capacity, positions),
		Occupancy: gather(p.Occupancy, positions),
	}
}

// Select returns a new table holding the rows where mask is true.
func (p *ChargingPosts) Select(mask []bool) *ChargingPosts {
	return p.Take(maskPositions(mask))
}

// Vacancies returns the spare capacity per post and its total.
func (p *ChargingPosts) Vacancies() ([]int, int) {
	vac := make([]int, p.Len())
	total := 0
	for i := range vac {
		v := p.Capacity[i] - p.Occupancy[i]
		if v < 0 {
			v = 0
		}
		vac[i] = v
		total += v
	}
	return vac, total
}

// Loc resolves post labels into row positions. Unknown labels are an error.
func (p *ChargingPosts) Loc(labels []int) ([]int, error) {
	byLabel := make(map[int]int, p.Len())
	for pos, id := range p.ID {
		byLabel[id] = pos
	}
	positions := make([]int, len(labels))
	for i, label := range labels {
		pos, ok := byLabel[label]
		if !ok {
			return nil, fmt.Errorf("unknown post label %d", label)
		}
		positions[i] = pos
	}
	return positions, nil
}

// Rows returns the matcher view of the charging posts.
func (p *ChargingPosts) Rows() Rows {
	return Rows{
		Index:     p.ID,
		Latitude:  p.Latitude,
		Longitude: p.Longitude,
		Socket:    p.Socket,
		Charger:   p.Charger,
		Capacity:  p.Capacity,
		Occupancy: p.Occupancy,
	}
}
