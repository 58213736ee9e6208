package matchers

import (
	"fmt"

	"github.com/kilianp07/evalloc/core/model"
)

// Class is one matching equivalence class: a boolean membership mask over the
// classified table and the label of the template row that defined it.
type Class struct {
	Mask     []bool
	Template int
}

// Classify partitions a table into classes of rows matching each other
// according to the matcher. The first not-yet-classified row becomes the
// template of the next class. Without revisit the classes partition the
// table; with revisit rows may belong to several classes, each a superset of
// its disjoint counterpart with the same template.
//
// The result is not canonical: starting from a different row ordering can
// yield a different, equally valid partition.
func Classify(rows model.Rows, m Matcher, revisit bool) ([]Class, error) {
	n := rows.Len()
	visitless := make([]bool, n)
	for i := range visitless {
		visitless[i] = true
	}
	var classes []Class
	for {
		template := -1
		for i, unseen := range visitless {
			if unseen {
				template = i
				break
			}
		}
		if template < 0 {
			return classes, nil
		}
		isMatch, err := m(rows, rows.Row(template))
		if err != nil {
			return nil, err
		}
		if len(isMatch) != n {
			return nil, fmt.Errorf("matcher returned %d rows, want %d", len(isMatch), n)
		}
		if !isMatch[template] {
			return nil, fmt.Errorf("row %d does not match its own template", rows.Index[template])
		}
		mask := make([]bool, n)
		for i := range mask {
			if revisit {
				mask[i] = isMatch[i]
			} else {
				mask[i] = isMatch[i] && visitless[i]
			}
		}
		classes = append(classes, Class{Mask: mask, Template: rows.Index[template]})
		for i := range visitless {
			visitless[i] = visitless[i] && !isMatch[i]
		}
	}
}

// FleetClass pairs a class of charging posts with the subfleet matching the
// class template.
type FleetClass struct {
	Posts Class
	Fleet Class
}

// ClassifyWithFleet classifies the charging posts and pairs each class with
// the vehicles matching its template. Without revisit a vehicle claimed by an
// earlier class is not counted again.
func ClassifyWithFleet(posts *model.ChargingPosts, m Matcher, fleet *model.Fleet, revisit bool) ([]FleetClass, error) {
	postClasses, err := Classify(posts.Rows(), m, revisit)
	if err != nil {
		return nil, err
	}
	vehicles := fleet.Rows()
	visitless := make([]bool, fleet.Len())
	for i := range visitless {
		visitless[i] = true
	}
	classes := make([]FleetClass, 0, len(postClasses))
	for _, pc := range postClasses {
		position, err := posts.Loc([]int{pc.Template})
		if err != nil {
			return nil, err
		}
		isMatch, err := m(vehicles, posts.Rows().Row(position[0]))
		if err != nil {
			return nil, err
		}
		mask := make([]bool, fleet.Len())
		for i := range mask {
			if revisit {
				mask[i] = isMatch[i]
			} else {
				mask[i] = isMatch[i] && visitless[i]
			}
		}
		classes = append(classes, FleetClass{Posts: pc, Fleet: Class{Mask: mask, Template: pc.Template}})
		for i := range visitless {
			visitless[i] = visitless[i] && !isMatch[i]
		}
	}
	return classes, nil
}
