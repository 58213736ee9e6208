// Package app assembles a simulation from its configuration: table sources,
// matcher, allocator, objective and outputs are all resolved through the
// module registries before anything runs.
package app

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/kilianp07/evalloc/config"
	"github.com/kilianp07/evalloc/core/allocators"
	"github.com/kilianp07/evalloc/core/factory"
	"github.com/kilianp07/evalloc/core/generators"
	"github.com/kilianp07/evalloc/core/matchers"
	"github.com/kilianp07/evalloc/core/model"
	"github.com/kilianp07/evalloc/core/objectives"
	"github.com/kilianp07/evalloc/infra/logger"
	"github.com/kilianp07/evalloc/infra/tables"
	"github.com/kilianp07/evalloc/pkg/export"
)

// Output consumes the allocated fleet at the end of a run.
type Output func(s *Simulation, result *model.Fleet) error

// Simulation holds the resolved input data and modules of one configured run.
type Simulation struct {
	Fleet         *model.Fleet
	ChargingPosts *model.ChargingPosts
	Matcher       matchers.Matcher
	Allocator     allocators.Allocator
	Objective     objectives.DistanceFunc

	// Stdout receives the stats report. Defaults to os.Stdout.
	Stdout io.Writer

	outputs []Output
	log     logger.Logger
}

// New resolves every module of the configuration and loads or generates the
// input tables.
func New(cfg *config.Config) (*Simulation, error) {
	logg := logger.New("simulation")
	rng := rand.New(rand.NewSource(cfg.Seed))

	fleet, err := newFleetRegistry(rng).Create(cfg.Fleet)
	if err != nil {
		return nil, fmt.Errorf("fleet: %w", err)
	}
	posts, err := newPostsRegistry(rng).Create(cfg.ChargingPosts)
	if err != nil {
		return nil, fmt.Errorf("charging posts: %w", err)
	}
	matcher, err := matchers.New(cfg.Matchers...)
	if err != nil {
		return nil, err
	}
	allocator, err := allocators.NewRegistry(logg).Create(cfg.Allocator)
	if err != nil {
		return nil, fmt.Errorf("allocator: %w", err)
	}
	if ra, ok := allocator.(*allocators.RandomAllocator); ok {
		if _, seeded := cfg.Allocator.Conf["seed"]; !seeded {
			ra.Rng = rng
		}
	}
	objective, err := objectives.Metric(cfg.Objective)
	if err != nil {
		return nil, fmt.Errorf("objective: %w", err)
	}

	sim := &Simulation{
		Fleet:         fleet,
		ChargingPosts: posts,
		Matcher:       matcher,
		Allocator:     allocator,
		Objective:     objective,
		Stdout:        os.Stdout,
		log:           logg,
	}
	outputRegistry := newOutputRegistry()
	for i, spec := range cfg.Outputs {
		out, err := outputRegistry.Create(spec)
		if err != nil {
			return nil, fmt.Errorf("outputs[%d]: %w", i, err)
		}
		sim.outputs = append(sim.outputs, out)
	}
	return sim, nil
}

// Run allocates the fleet and feeds the result to every configured output.
func (s *Simulation) Run() (*model.Fleet, error) {
	runID := uuid.NewString()
	s.log.Infof("run %s: allocating %d vehicles over %d posts", runID, s.Fleet.Len(), s.ChargingPosts.Len())

	result, err := s.Allocator.Allocate(s.Fleet, s.ChargingPosts, s.Matcher)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	allocated := 0
	for _, a := range result.Allocation {
		if a.Valid {
			allocated++
		}
	}
	s.log.Infof("run %s: allocated %d/%d vehicles", runID, allocated, result.Len())

	for i, out := range s.outputs {
		if err := out(s, result); err != nil {
			return nil, fmt.Errorf("run %s: outputs[%d]: %w", runID, i, err)
		}
	}
	return result, nil
}

func newFleetRegistry(rng *rand.Rand) *factory.Registry[*model.Fleet] {
	reg := factory.NewRegistry[*model.Fleet]()
	must(reg.Register("random", func(conf map[string]any) (*model.Fleet, error) {
		var c generators.FleetConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if _, seeded := conf["seed"]; seeded {
			return generators.RandomFleet(c, rand.New(rand.NewSource(c.Seed)))
		}
		return generators.RandomFleet(c, rng)
	}))
	must(reg.Register("from_file", func(conf map[string]any) (*model.Fleet, error) {
		var c fileConf
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return tables.ReadFleetFile(c.Path)
	}))
	return reg
}

func newPostsRegistry(rng *rand.Rand) *factory.Registry[*model.ChargingPosts] {
	reg := factory.NewRegistry[*model.ChargingPosts]()
	must(reg.Register("random", func(conf map[string]any) (*model.ChargingPosts, error) {
		var c generators.PostsConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if _, seeded := conf["seed"]; seeded {
			return generators.RandomChargingPosts(c, rand.New(rand.NewSource(c.Seed)))
		}
		return generators.RandomChargingPosts(c, rng)
	}))
	must(reg.Register("from_file", func(conf map[string]any) (*model.ChargingPosts, error) {
		var c fileConf
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return tables.ReadChargingPostsFile(c.Path)
	}))
	return reg
}

type fileConf struct {
	Path string `json:"path"`
}

type outputFileConf struct {
	Path string `json:"path"`
	// Overwrite false refuses to replace an existing file.
	Overwrite *bool `json:"overwrite"`
}

func (c outputFileConf) open() (*os.File, error) {
	if c.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	if c.Overwrite != nil && !*c.Overwrite {
		if _, err := os.Stat(c.Path); err == nil {
			return nil, fmt.Errorf("path %s already exists and overwrite is false", c.Path)
		}
	}
	return os.Create(c.Path)
}

func newOutputRegistry() *factory.Registry[Output] {
	reg := factory.NewRegistry[Output]()
	must(reg.Register("allocated_fleet", func(conf map[string]any) (Output, error) {
		var c outputFileConf
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return func(s *Simulation, result *model.Fleet) error {
			return writeFleetFile(c, result)
		}, nil
	}))
	must(reg.Register("input_fleet", func(conf map[string]any) (Output, error) {
		var c outputFileConf
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return func(s *Simulation, result *model.Fleet) error {
			return writeFleetFile(c, s.Fleet)
		}, nil
	}))
	must(reg.Register("input_charging_posts", func(conf map[string]any) (Output, error) {
		var c outputFileConf
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return func(s *Simulation, result *model.Fleet) error {
			f, err := c.open()
			if err != nil {
				return err
			}
			defer f.Close()
			return tables.WriteChargingPosts(f, s.ChargingPosts)
		}, nil
	}))
	must(reg.Register("stats", func(conf map[string]any) (Output, error) {
		return func(s *Simulation, result *model.Fleet) error {
			summary, err := export.Summarize(result, s.ChargingPosts, s.Objective)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(s.Stdout, summary.String())
			return err
		}, nil
	}))
	return reg
}

// writeFleetFile picks the output codec from the file extension, defaulting
// to CSV.
func writeFleetFile(c outputFileConf, fleet *model.Fleet) error {
	f, err := c.open()
	if err != nil {
		return err
	}
	defer f.Close()
	if strings.ToLower(filepath.Ext(c.Path)) == ".json" {
		return export.WriteAllocationJSON(f, fleet)
	}
	return export.WriteAllocationCSV(f, fleet)
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
