// Package tables reads and writes fleet and charging post tables as CSV.
// Columns are resolved by header name, so extra columns and arbitrary column
// orders are accepted.
package tables

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/kilianp07/evalloc/core/model"
)

var fleetColumns = []string{"vehicle", "latitude", "longitude", "dest_lat", "dest_long", "socket", "charger", "model"}

var postColumns = []string{"post", "latitude", "longitude", "socket", "charger", "capacity", "occupancy"}

// header maps column names to their position in the CSV header row.
type header map[string]int

func readHeader(row []string, required []string) (header, error) {
	h := make(header, len(row))
	for i, name := range row {
		h[name] = i
	}
	for _, name := range required {
		if _, ok := h[name]; !ok {
			return nil, fmt.Errorf("missing column %s", name)
		}
	}
	return h, nil
}

func (h header) text(row []string, column string) string {
	return row[h[column]]
}

func (h header) float(row []string, column string) (float64, error) {
	v, err := strconv.ParseFloat(row[h[column]], 64)
	if err != nil {
		return 0, fmt.Errorf("column %s: %w", column, err)
	}
	return v, nil
}

func (h header) integer(row []string, column string) (int, error) {
	v, err := strconv.Atoi(row[h[column]])
	if err != nil {
		return 0, fmt.Errorf("column %s: %w", column, err)
	}
	return v, nil
}

// ReadFleet parses a fleet table from CSV. An allocation column, when
// present, is read back with empty cells standing for unallocated vehicles.
func ReadFleet(r io.Reader) (*model.Fleet, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read fleet: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("read fleet: empty input")
	}
	h, err := readHeader(records[0], fleetColumns)
	if err != nil {
		return nil, fmt.Errorf("read fleet: %w", err)
	}
	_, hasAllocation := h["allocation"]

	fleet := &model.Fleet{}
	if hasAllocation {
		fleet.Allocation = []model.Allocation{}
	}
	for n, row := range records[1:] {
		if err := appendFleetRow(fleet, h, row, hasAllocation); err != nil {
			return nil, fmt.Errorf("read fleet row %d: %w", n+1, err)
		}
	}
	if err := fleet.Validate(); err != nil {
		return nil, fmt.Errorf("read fleet: %w", err)
	}
	return fleet, nil
}

func appendFleetRow(fleet *model.Fleet, h header, row []string, hasAllocation bool) error {
	id, err := h.integer(row, "vehicle")
	if err != nil {
		return err
	}
	lat, err := h.float(row, "latitude")
	if err != nil {
		return err
	}
	long, err := h.float(row, "longitude")
	if err != nil {
		return err
	}
	destLat, err := h.float(row, "dest_lat")
	if err != nil {
		return err
	}
	destLong, err := h.float(row, "dest_long")
	if err != nil {
		return err
	}
	socket, err := model.ParseSocket(h.text(row, "socket"))
	if err != nil {
		return err
	}
	charger, err := model.ParseCharger(h.text(row, "charger"))
	if err != nil {
		return err
	}
	vehicleModel, err := model.ParseVehicleModel(h.text(row, "model"))
	if err != nil {
		return err
	}

	fleet.ID = append(fleet.ID, id)
	fleet.Latitude = append(fleet.Latitude, lat)
	fleet.Longitude = append(fleet.Longitude, long)
	fleet.DestLat = append(fleet.DestLat, destLat)
	fleet.DestLong = append(fleet.DestLong, destLong)
	fleet.Socket = append(fleet.Socket, socket)
	fleet.Charger = append(fleet.Charger, charger)
	fleet.Model = append(fleet.Model, vehicleModel)
	if hasAllocation {
		var a model.Allocation
		if cell := h.text(row, "allocation"); cell != "" {
			post, err := strconv.Atoi(cell)
			if err != nil {
				return fmt.Errorf("column allocation: %w", err)
			}
			a = model.Allocate(post)
		}
		fleet.Allocation = append(fleet.Allocation, a)
	}
	return nil
}

// WriteFleet writes a fleet table as CSV. The allocation column is emitted
// only when the fleet carries one, with empty cells for unallocated vehicles.
func WriteFleet(w io.Writer, fleet *model.Fleet) error {
	cw := csv.NewWriter(w)
	columns := fleetColumns
	if fleet.Allocation != nil {
		columns = append(append([]string{}, fleetColumns...), "allocation")
	}
	if err := cw.Write(columns); err != nil {
		return err
	}
	for i := 0; i < fleet.Len(); i++ {
		vehicleModel := model.ModelUnknown
		if fleet.Model != nil {
			vehicleModel = fleet.Model[i]
		}
		rec := []string{
			strconv.Itoa(fleet.ID[i]),
			formatFloat(fleet.Latitude[i]),
			formatFloat(fleet.Longitude[i]),
			formatFloat(fleet.DestLat[i]),
			formatFloat(fleet.DestLong[i]),
			fleet.Socket[i].String(),
			fleet.Charger[i].String(),
			vehicleModel.String(),
		}
		if fleet.Allocation != nil {
			cell := ""
			if fleet.Allocation[i].Valid {
				cell = strconv.Itoa(fleet.Allocation[i].Post)
			}
			rec = append(rec, cell)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadChargingPosts parses a charging post table from CSV.
func ReadChargingPosts(r io.Reader) (*model.ChargingPosts, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read charging posts: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("read charging posts: empty input")
	}
	h, err := readHeader(records[0], postColumns)
	if err != nil {
		return nil, fmt.Errorf("read charging posts: %w", err)
	}

	posts := &model.ChargingPosts{}
	for n, row := range records[1:] {
		if err := appendPostRow(posts, h, row); err != nil {
			return nil, fmt.Errorf("read charging posts row %d: %w", n+1, err)
		}
	}
	if err := posts.Validate(); err != nil {
		return nil, fmt.Errorf("read charging posts: %w", err)
	}
	return posts, nil
}

func appendPostRow(posts *model.ChargingPosts, h header, row []string) error {
	id, err := h.integer(row, "post")
	if err != nil {
		return err
	}
	lat, err := h.float(row, "latitude")
	if err != nil {
		return err
	}
	long, err := h.float(row, "longitude")
	if err != nil {
		return err
	}
	socket, err := model.ParseSocket(h.text(row, "socket"))
	if err != nil {
		return err
	}
	charger, err := model.ParseCharger(h.text(row, "charger"))
	if err != nil {
		return err
	}
	capacity, err := h.integer(row, "capacity")
	if err != nil {
		return err
	}
	occupancy, err := h.integer(row, "occupancy")
	if err != nil {
		return err
	}

	posts.ID = append(posts.ID, id)
	posts.Latitude = append(posts.Latitude, lat)
	posts.Longitude = append(posts.Longitude, long)
	posts.Socket = append(posts.Socket, socket)
	posts.Charger = append(posts.Charger, charger)
	posts.Capacity = append(posts.Capacity, capacity)
	posts.Occupancy = append(posts.Occupancy, occupancy)
	return nil
}

// WriteChargingPosts writes a charging post table as CSV.
func WriteChargingPosts(w io.Writer, posts *model.ChargingPosts) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(postColumns); err != nil {
		return err
	}
	for i := 0; i < posts.Len(); i++ {
		rec := []string{
			strconv.Itoa(posts.ID[i]),
			formatFloat(posts.Latitude[i]),
			formatFloat(posts.Longitude[i]),
			posts.Socket[i].String(),
			posts.Charger[i].String(),
			strconv.Itoa(posts.Capacity[i]),
			strconv.Itoa(posts.Occupancy[i]),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadFleetFile reads a fleet table from a CSV file.
func ReadFleetFile(path string) (*model.Fleet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadFleet(f)
}

// ReadChargingPostsFile reads a charging post table from a CSV file.
func ReadChargingPostsFile(path string) (*model.ChargingPosts, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadChargingPosts(f)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
