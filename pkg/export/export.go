// Package export writes allocation results and summary statistics.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/evalloc/core/model"
	"github.com/kilianp07/evalloc/core/objectives"
	"github.com/kilianp07/evalloc/infra/tables"
)

// AllocationRecord is one vehicle of the allocation result in JSON form. Post
// is null for unallocated vehicles.
type AllocationRecord struct {
	Vehicle   int     `json:"vehicle"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	DestLat   float64 `json:"dest_lat"`
	DestLong  float64 `json:"dest_long"`
	Socket    string  `json:"socket"`
	Charger   string  `json:"charger"`
	Model     string  `json:"model,omitempty"`
	Post      *int    `json:"post"`
}

// WriteAllocationCSV writes the allocated fleet to w in CSV format.
func WriteAllocationCSV(w io.Writer, fleet *model.Fleet) error {
	return tables.WriteFleet(w, fleet)
}

// WriteAllocationJSON writes the allocated fleet to w as a JSON array.
func WriteAllocationJSON(w io.Writer, fleet *model.Fleet) error {
	records := make([]AllocationRecord, fleet.Len())
	for i := range records {
		rec := AllocationRecord{
			Vehicle:   fleet.ID[i],
			Latitude:  fleet.Latitude[i],
			Longitude: fleet.Longitude[i],
			DestLat:   fleet.DestLat[i],
			DestLong:  fleet.DestLong[i],
			Socket:    fleet.Socket[i].String(),
			Charger:   fleet.Charger[i].String(),
		}
		if fleet.Model != nil {
			rec.Model = fleet.Model[i].String()
		}
		if fleet.Allocation != nil && fleet.Allocation[i].Valid {
			post := fleet.Allocation[i].Post
			rec.Post = &post
		}
		records[i] = rec
	}
	enc := json.NewEncoder(w)
	return enc.Encode(records)
}

// DistanceStats summarizes the distances between allocated vehicles'
// destinations and their posts, in kilometers.
type DistanceStats struct {
	Mean   float64 `json:"mean"`
	Stdev  float64 `json:"stdev"`
	Skew   float64 `json:"skew"`
	Q25    float64 `json:"quantile_25"`
	Median float64 `json:"median"`
	Q75    float64 `json:"quantile_75"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Summary aggregates an allocation run. Distances is nil when no vehicle was
// allocated.
type Summary struct {
	Total       int            `json:"total"`
	Allocated   int            `json:"allocated"`
	Unallocated int            `json:"unallocated"`
	Rate        float64        `json:"rate"`
	Distances   *DistanceStats `json:"distances,omitempty"`
}

// Summarize computes allocation counts and destination-to-post distance
// statistics with the given metric.
func Summarize(fleet *model.Fleet, posts *model.ChargingPosts, metric objectives.DistanceFunc) (*Summary, error) {
	summary := &Summary{Total: fleet.Len()}

	var distances []float64
	for i := 0; i < fleet.Len(); i++ {
		if fleet.Allocation == nil || !fleet.Allocation[i].Valid {
			continue
		}
		positions, err := posts.Loc([]int{fleet.Allocation[i].Post})
		if err != nil {
			return nil, fmt.Errorf("vehicle %d: %w", fleet.ID[i], err)
		}
		p := positions[0]
		distances = append(distances, metric(fleet.DestLat[i], fleet.DestLong[i], posts.Latitude[p], posts.Longitude[p]))
	}
	summary.Allocated = len(distances)
	summary.Unallocated = summary.Total - summary.Allocated
	if summary.Total > 0 {
		summary.Rate = float64(summary.Allocated) / float64(summary.Total)
	}
	if len(distances) == 0 {
		return summary, nil
	}

	sort.Float64s(distances)
	summary.Distances = &DistanceStats{
		Mean:   stat.Mean(distances, nil),
		Stdev:  stat.StdDev(distances, nil),
		Skew:   stat.Skew(distances, nil),
		Q25:    stat.Quantile(0.25, stat.Empirical, distances, nil),
		Median: stat.Quantile(0.50, stat.Empirical, distances, nil),
		Q75:    stat.Quantile(0.75, stat.Empirical, distances, nil),
		Min:    distances[0],
		Max:    distances[len(distances)-1],
	}
	return summary, nil
}

// String renders the summary as the human readable report printed by the
// stats output.
func (s *Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Unallocated vehicles: %d/%d\n", s.Unallocated, s.Total)
	fmt.Fprintf(&b, "Allocated vehicles: %d/%d\n", s.Allocated, s.Total)
	if s.Distances == nil {
		return b.String()
	}
	fmt.Fprintf(&b, "\nFinal distances (in kilometers):\n")
	fmt.Fprintf(&b, "    * mean: %.2f\n", s.Distances.Mean)
	fmt.Fprintf(&b, "    * stdev: %.2f\n", s.Distances.Stdev)
	fmt.Fprintf(&b, "    * skew: %.2f\n", s.Distances.Skew)
	fmt.Fprintf(&b, "    * quantile(25%%): %.2f\n", s.Distances.Q25)
	fmt.Fprintf(&b, "    * quantile(50%%): %.2f\n", s.Distances.Median)
	fmt.Fprintf(&b, "    * quantile(75%%): %.2f\n", s.Distances.Q75)
	fmt.Fprintf(&b, "    * min: %.2f\n", s.Distances.Min)
	fmt.Fprintf(&b, "    * max: %.2f\n", s.Distances.Max)
	return b.String()
}
