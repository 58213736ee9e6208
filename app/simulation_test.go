package app

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/evalloc/config"
	"github.com/kilianp07/evalloc/core/factory"
	"github.com/kilianp07/evalloc/infra/tables"
)

func randomTablesConfig() *config.Config {
	cfg := &config.Config{
		Fleet:         factory.ModuleConfig{Type: "random", Conf: map[string]any{"n": 30}},
		ChargingPosts: factory.ModuleConfig{Type: "random", Conf: map[string]any{"n": 20, "capacity": []int{1, 4}}},
		Seed:          42,
	}
	cfg.SetDefaults()
	return cfg
}

func TestNewResolvesModules(t *testing.T) {
	sim, err := New(randomTablesConfig())
	require.NoError(t, err)
	assert.Equal(t, 30, sim.Fleet.Len())
	assert.Equal(t, 20, sim.ChargingPosts.Len())
	assert.NotNil(t, sim.Matcher)
	assert.NotNil(t, sim.Allocator)
	assert.NotNil(t, sim.Objective)
}

func TestNewUnknownModule(t *testing.T) {
	cfg := randomTablesConfig()
	cfg.Allocator = factory.ModuleConfig{Type: "simulated_annealing"}
	_, err := New(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "allocator")

	cfg = randomTablesConfig()
	cfg.Matchers = []factory.ModuleConfig{{Type: "phase_of_the_moon"}}
	_, err = New(cfg)
	assert.Error(t, err)
}

func TestRunWithOutputs(t *testing.T) {
	dir := t.TempDir()
	resultPath := filepath.Join(dir, "allocated.csv")
	jsonPath := filepath.Join(dir, "allocated.json")
	postsPath := filepath.Join(dir, "posts.csv")

	cfg := randomTablesConfig()
	cfg.Outputs = []factory.ModuleConfig{
		{Type: "allocated_fleet", Conf: map[string]any{"path": resultPath}},
		{Type: "allocated_fleet", Conf: map[string]any{"path": jsonPath}},
		{Type: "input_charging_posts", Conf: map[string]any{"path": postsPath}},
		{Type: "stats"},
	}
	sim, err := New(cfg)
	require.NoError(t, err)
	var stdout bytes.Buffer
	sim.Stdout = &stdout

	result, err := sim.Run()
	require.NoError(t, err)
	require.Equal(t, sim.Fleet.Len(), result.Len())
	require.NotNil(t, result.Allocation)
	// inputs stay untouched
	assert.Nil(t, sim.Fleet.Allocation)

	written, err := tables.ReadFleetFile(resultPath)
	require.NoError(t, err)
	assert.Equal(t, result, written)

	raw, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\"vehicle\"")

	posts, err := tables.ReadChargingPostsFile(postsPath)
	require.NoError(t, err)
	assert.Equal(t, sim.ChargingPosts, posts)

	assert.Contains(t, stdout.String(), "Allocated vehicles:")
}

func TestRunReproducibleWithSeed(t *testing.T) {
	a, err := New(randomTablesConfig())
	require.NoError(t, err)
	b, err := New(randomTablesConfig())
	require.NoError(t, err)
	assert.Equal(t, a.Fleet, b.Fleet)
	assert.Equal(t, a.ChargingPosts, b.ChargingPosts)

	ra, err := a.Run()
	require.NoError(t, err)
	rb, err := b.Run()
	require.NoError(t, err)
	assert.Equal(t, ra.Allocation, rb.Allocation)
}

func TestFromFileSources(t *testing.T) {
	dir := t.TempDir()
	fleetPath := filepath.Join(dir, "fleet.csv")
	postsPath := filepath.Join(dir, "charging_posts.csv")

	seed, err := New(randomTablesConfig())
	require.NoError(t, err)
	f, err := os.Create(fleetPath)
	require.NoError(t, err)
	require.NoError(t, tables.WriteFleet(f, seed.Fleet))
	require.NoError(t, f.Close())
	f, err = os.Create(postsPath)
	require.NoError(t, err)
	require.NoError(t, tables.WriteChargingPosts(f, seed.ChargingPosts))
	require.NoError(t, f.Close())

	cfg := &config.Config{
		Fleet:         factory.ModuleConfig{Type: "from_file", Conf: map[string]any{"path": fleetPath}},
		ChargingPosts: factory.ModuleConfig{Type: "from_file", Conf: map[string]any{"path": postsPath}},
	}
	cfg.SetDefaults()
	sim, err := New(cfg)
	require.NoError(t, err)
	assert.Equal(t, seed.Fleet, sim.Fleet)
	assert.Equal(t, seed.ChargingPosts, sim.ChargingPosts)
}

func TestOutputOverwriteRefused(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "allocated.csv")
	require.NoError(t, os.WriteFile(path, []byte("existing"), 0o600))

	cfg := randomTablesConfig()
	cfg.Outputs = []factory.ModuleConfig{
		{Type: "allocated_fleet", Conf: map[string]any{"path": path, "overwrite": false}},
	}
	sim, err := New(cfg)
	require.NoError(t, err)
	_, err = sim.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overwrite")
}
