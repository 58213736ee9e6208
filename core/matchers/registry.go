package matchers

import (
	"fmt"

	"github.com/kilianp07/evalloc/core/factory"
)

type distanceConf struct {
	MaxDistance float64 `json:"max_distance"`
}

// NewRegistry returns a registry holding the built-in matchers. Parameterised
// matchers decode their configuration with factory.Decode; absent keys keep
// the documented defaults.
func NewRegistry() *factory.Registry[Matcher] {
	reg := factory.NewRegistry[Matcher]()
	must := func(err error) {
		if err != nil {
			panic(err)
		}
	}
	must(reg.Register("post_availability", func(map[string]any) (Matcher, error) {
		return PostAvailability, nil
	}))
	must(reg.Register("socket_compatibility", func(map[string]any) (Matcher, error) {
		return SocketCompatibility, nil
	}))
	must(reg.Register("charger_compatibility", func(map[string]any) (Matcher, error) {
		return ChargerCompatibility, nil
	}))
	must(reg.Register("distance", func(conf map[string]any) (Matcher, error) {
		c := distanceConf{MaxDistance: 1}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return Distance(c.MaxDistance), nil
	}))
	must(reg.Register("distance_from_destination", func(conf map[string]any) (Matcher, error) {
		c := distanceConf{MaxDistance: 1}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return DistanceFromDestination(c.MaxDistance), nil
	}))
	return reg
}

// New resolves a list of matcher specs through the built-in registry and
// AND-composes them into a single predicate. Unknown names fail here, at
// construction, never during a match.
func New(specs ...factory.ModuleConfig) (Matcher, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("at least one matcher is required")
	}
	reg := NewRegistry()
	components := make([]Matcher, len(specs))
	for i, spec := range specs {
		m, err := reg.Create(spec)
		if err != nil {
			return nil, fmt.Errorf("matcher %d: %w", i, err)
		}
		components[i] = m
	}
	return And(components...), nil
}
