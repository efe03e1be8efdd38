package system

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tilevox/dungeon/internal/core/event"
	coresys "github.com/tilevox/dungeon/internal/core/system"
	"github.com/tilevox/dungeon/internal/data"
	"github.com/tilevox/dungeon/internal/gen"
	"github.com/tilevox/dungeon/internal/scripting"
	"github.com/tilevox/dungeon/internal/world"
	"go.uber.org/zap/zaptest"
)

type harness struct {
	runner *coresys.Runner
	level  *world.Level
	bus    *event.Bus
	mut    *MutationSystem
	verify *VerifySystem
}

func newHarness(t *testing.T, extent world.Extent, scripts string) *harness {
	t.Helper()
	log := zaptest.NewLogger(t)

	mats := data.NewMaterialTable()
	require.NoError(t, data.RegisterDefaults(mats))
	mats.Seal()
	g, err := gen.New(gen.DefaultParams(), mats)
	require.NoError(t, err)
	grid, err := world.NewGrid(extent, 1)
	require.NoError(t, err)
	bus := event.NewBus()
	level, err := world.NewLevel(grid, world.Deps{Materials: mats, Generator: g, Bus: bus, Log: log})
	require.NoError(t, err)

	h := &harness{
		runner: coresys.NewRunner(),
		level:  level,
		bus:    bus,
		mut:    NewMutationSystem(level, log),
		verify: NewVerifySystem(level, log),
	}
	h.runner.Register(h.verify)
	h.runner.Register(h.mut)
	h.runner.Register(NewEventDispatchSystem(bus))

	if scripts != "" {
		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "level"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "level", "test.lua"), []byte(scripts), 0o644))
		eng, err := scripting.NewEngine(dir, level, mats, log)
		require.NoError(t, err)
		t.Cleanup(eng.Close)
		eng.Subscribe(bus)
		h.runner.Register(NewScriptSystem(eng))
	}
	return h
}

func (h *harness) tick(t *testing.T) {
	t.Helper()
	h.runner.Tick(time.Millisecond)
	require.NoError(t, h.mut.Err())
	require.NoError(t, h.verify.Err())
}

func TestTickDrainsQueue(t *testing.T) {
	h := newHarness(t, world.Extent{X: 4, Y: 4, Z: 4}, "")

	h.level.Submit(world.Spawn{At: world.Coord{X: 1, Y: 1, Z: 1}, Material: data.MaterialStone})
	h.tick(t)
	occ, err := h.level.Query(world.Coord{X: 1, Y: 1, Z: 1})
	require.NoError(t, err)
	assert.True(t, occ.Occupied)
	assert.Equal(t, 0, h.level.Pending())

	h.level.Submit(world.InitializeVolume{Seed: 42})
	h.level.Submit(world.DestroyRegion{Min: world.Coord{}, Max: world.Coord{X: 3, Y: 3, Z: 3}})
	h.tick(t)
	assert.Equal(t, 0, h.level.Grid().Occupied())
	assert.Equal(t, uint64(2), h.runner.Ticks())
}

func TestFatalErrorIsLatched(t *testing.T) {
	h := newHarness(t, world.Extent{X: 2, Y: 2, Z: 2}, "")
	h.level.Submit(world.Spawn{At: world.Coord{}, Material: 999})
	h.runner.Tick(time.Millisecond)
	require.Error(t, h.mut.Err())
	assert.True(t, world.IsFatal(h.mut.Err()))

	h.level.Submit(world.Spawn{At: world.Coord{}, Material: data.MaterialStone})
	h.runner.Tick(time.Millisecond)
	assert.Equal(t, 1, h.level.Pending(), "no drain after a fatal error")
	assert.Equal(t, 0, h.level.Grid().Occupied())
}

func TestVerifySystemReportsCorruption(t *testing.T) {
	h := newHarness(t, world.Extent{X: 2, Y: 2, Z: 2}, "")
	h.level.Submit(world.Spawn{At: world.Coord{}, Material: data.MaterialStone})
	h.tick(t)

	occ, err := h.level.Query(world.Coord{})
	require.NoError(t, err)
	require.NoError(t, h.level.Grid().Set(world.Coord{X: 1}, occ.ID))

	h.runner.Tick(time.Millisecond)
	assert.ErrorIs(t, h.verify.Err(), world.ErrInvariantViolated)
}

func TestScriptsProduceAndReact(t *testing.T) {
	h := newHarness(t, world.Extent{X: 4, Y: 4, Z: 4}, `
		reacted = 0
		function on_tick(n)
			if n == 1 then
				spawn(0, 0, 0, "dirt")
			elseif n == 3 then
				destroy_region(0, 0, 0, 3, 3, 3)
			end
		end
		function on_tile_spawned(ev)
			reacted = reacted + 1
			if ev.name == "dirt" then spawn(ev.x, ev.y + 1, ev.z, "wood") end
		end
	`)

	// tick 1: on_tick spawns dirt, drained in the same tick
	h.tick(t)
	assert.Equal(t, 1, h.level.Grid().Occupied())

	// tick 2: the spawn event reaches the hook, which queues wood above it
	h.tick(t)
	wood, err := h.level.Query(world.Coord{Y: 1})
	require.NoError(t, err)
	assert.Equal(t, data.MaterialWood, wood.Material)

	// tick 3: region cleared
	h.tick(t)
	assert.Equal(t, 0, h.level.Grid().Occupied())
}

func TestScriptSystemCountsTicks(t *testing.T) {
	var got []uint64
	s := NewScriptSystem(tickFunc(func(n uint64) { got = append(got, n) }))
	assert.Equal(t, coresys.PhaseUpdate, s.Phase())
	s.Update(0)
	s.Update(0)
	assert.Equal(t, []uint64{1, 2}, got)
}

type tickFunc func(uint64)

func (f tickFunc) OnTick(n uint64) { f(n) }
