// Package allocators implements the strategies assigning electric vehicles
// to charging posts: randomized rounds with an overbooking resolver, and a
// greedy nearest-neighbor search.
package allocators

import (
	"math/rand"

	"github.com/kilianp07/evalloc/core/factory"
	"github.com/kilianp07/evalloc/core/logger"
	"github.com/kilianp07/evalloc/core/matchers"
	"github.com/kilianp07/evalloc/core/model"
)

// Allocator assigns a fleet to charging posts. Implementations return a new
// fleet with the allocation column filled in and never mutate their inputs.
type Allocator interface {
	Allocate(fleet *model.Fleet, posts *model.ChargingPosts, m matchers.Matcher) (*model.Fleet, error)
}

// RandomConfig tunes the random allocator.
type RandomConfig struct {
	// MaxIter bounds the matching rounds. Zero or below defaults to the
	// number of slots plus one.
	MaxIter int `json:"maxIter"`
	// Seed initialises the allocator's random source.
	Seed int64 `json:"seed"`
}

// RandomAllocator runs the random allocator, spreading the fleet over
// several waves when demand exceeds the available vacancies.
type RandomAllocator struct {
	Config RandomConfig
	Rng    *rand.Rand
}

// Allocate implements Allocator.
func (a *RandomAllocator) Allocate(fleet *model.Fleet, posts *model.ChargingPosts, m matchers.Matcher) (*model.Fleet, error) {
	rng := a.Rng
	if rng == nil {
		rng = rand.New(rand.NewSource(a.Config.Seed))
	}
	base := func(f *model.Fleet, p *model.ChargingPosts, m matchers.Matcher, r *rand.Rand) (*model.Fleet, error) {
		return Random(f, p, m, a.Config.MaxIter, r)
	}
	return SpreadOverbooked(fleet, posts, m, rng, base)
}

// GreedyAllocator runs the nearest-neighbor allocator.
type GreedyAllocator struct {
	Config GreedyConfig
	Log    logger.Logger
}

// Allocate implements Allocator.
func (a *GreedyAllocator) Allocate(fleet *model.Fleet, posts *model.ChargingPosts, m matchers.Matcher) (*model.Fleet, error) {
	return Greedy(fleet, posts, m, a.Config, a.Log)
}

// NewRegistry returns a registry holding the built-in allocators.
func NewRegistry(log logger.Logger) *factory.Registry[Allocator] {
	reg := factory.NewRegistry[Allocator]()
	must := func(err error) {
		if err != nil {
			panic(err)
		}
	}
	must(reg.Register("random", func(conf map[string]any) (Allocator, error) {
		var c RandomConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return &RandomAllocator{Config: c}, nil
	}))
	must(reg.Register("greedy", func(conf map[string]any) (Allocator, error) {
		c := DefaultGreedyConfig()
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return &GreedyAllocator{Config: c, Log: log}, nil
	}))
	return reg
}
