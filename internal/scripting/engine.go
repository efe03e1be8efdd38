package scripting

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/tilevox/dungeon/internal/core/ecs"
	"github.com/tilevox/dungeon/internal/core/event"
	"github.com/tilevox/dungeon/internal/data"
	"github.com/tilevox/dungeon/internal/world"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Level is the part of the level a script may touch: it can queue commands
// and probe cells, never mutate the grid directly.
type Level interface {
	Submit(cmd world.Command)
	Query(c world.Coord) (world.Occupancy, error)
}

// Engine wraps a single gopher-lua VM running level scripts.
// Single-goroutine access only (game loop).
type Engine struct {
	vm        *lua.LState
	level     Level
	materials *data.MaterialTable
	log       *zap.Logger
}

// NewEngine creates a Lua engine, installs the level API and loads all scripts
// from the given directory.
func NewEngine(scriptsDir string, level Level, materials *data.MaterialTable, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	// Set API version global
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, level: level, materials: materials, log: log}
	e.register()

	// Core helpers first, then level scripts
	for _, sub := range []string{"core", "level"} {
		p := filepath.Join(scriptsDir, sub)
		if err := e.loadDir(p); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}

	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// DoString runs a chunk in the engine's VM. Used by tests and the console.
func (e *Engine) DoString(src string) error {
	return e.vm.DoString(src)
}

// --- Level API ---

func (e *Engine) register() {
	for name, fn := range map[string]lua.LGFunction{
		"spawn":          e.luaSpawn,
		"destroy":        e.luaDestroy,
		"destroy_region": e.luaDestroyRegion,
		"init_volume":    e.luaInitVolume,
		"query":          e.luaQuery,
		"material_id":    e.luaMaterialID,
	} {
		e.vm.SetGlobal(name, e.vm.NewFunction(fn))
	}
}

func checkCoord(L *lua.LState, first int) world.Coord {
	return world.Coord{X: L.CheckInt(first), Y: L.CheckInt(first + 1), Z: L.CheckInt(first + 2)}
}

// spawn(x, y, z, material) or spawn{x=, y=, z=, material=}. material is a
// name or a numeric id; names are resolved here, ids go to the queue unchecked.
func (e *Engine) luaSpawn(L *lua.LState) int {
	var at world.Coord
	var mat lua.LValue
	if t, ok := L.Get(1).(*lua.LTable); ok {
		at = world.Coord{X: lInt(t, "x"), Y: lInt(t, "y"), Z: lInt(t, "z")}
		mat = t.RawGetString("material")
	} else {
		at = checkCoord(L, 1)
		mat = L.CheckAny(4)
	}
	id, err := e.resolveMaterial(mat)
	if err != nil {
		L.RaiseError("spawn %s: %s", at, err)
		return 0
	}
	e.level.Submit(world.Spawn{At: at, Material: id})
	return 0
}

func (e *Engine) resolveMaterial(v lua.LValue) (data.MaterialID, error) {
	switch v := v.(type) {
	case lua.LNumber:
		f := float64(v)
		if f != math.Trunc(f) || f < 0 || f > math.MaxUint16 {
			return 0, fmt.Errorf("material id %v is not an integer in [0, %d]", f, math.MaxUint16)
		}
		// Unregistered ids still reach the queue, where they are fatal.
		return data.MaterialID(f), nil
	case lua.LString:
		m, ok := e.materials.ByName(string(v))
		if !ok {
			return 0, fmt.Errorf("unknown material %q", string(v))
		}
		return m.ID, nil
	}
	return 0, fmt.Errorf("material name or id expected, got %s", v.Type())
}

// destroy(x, y, z)
func (e *Engine) luaDestroy(L *lua.LState) int {
	e.level.Submit(world.Destroy{At: checkCoord(L, 1)})
	return 0
}

// destroy_region(x0, y0, z0, x1, y1, z1), both corners inclusive.
func (e *Engine) luaDestroyRegion(L *lua.LState) int {
	e.level.Submit(world.DestroyRegion{Min: checkCoord(L, 1), Max: checkCoord(L, 4)})
	return 0
}

// init_volume(seed)
func (e *Engine) luaInitVolume(L *lua.LState) int {
	e.level.Submit(world.InitializeVolume{Seed: L.CheckInt64(1)})
	return 0
}

// query(x, y, z) returns nil for an empty cell, a table describing the tile
// otherwise, or nil plus a message when the cell is outside the grid.
func (e *Engine) luaQuery(L *lua.LState) int {
	occ, err := e.level.Query(checkCoord(L, 1))
	if err != nil {
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	if !occ.Occupied {
		L.Push(lua.LNil)
		return 1
	}
	t := L.NewTable()
	t.RawSetString("id", lua.LNumber(occ.ID))
	t.RawSetString("material", lua.LNumber(occ.Material))
	if m, ok := e.materials.Get(occ.Material); ok {
		t.RawSetString("name", lua.LString(m.Name))
	}
	t.RawSetString("solid", lua.LBool(occ.Solid))
	t.RawSetString("opaque", lua.LBool(occ.Opaque))
	L.Push(t)
	return 1
}

// material_id(name) returns the id of a registered material or nil.
func (e *Engine) luaMaterialID(L *lua.LState) int {
	m, ok := e.materials.ByName(L.CheckString(1))
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LNumber(m.ID))
	return 1
}

// --- Hooks ---

// Subscribe routes tile lifecycle events from the bus to the
// on_tile_spawned / on_tile_destroyed hooks.
func (e *Engine) Subscribe(bus *event.Bus) {
	event.Subscribe(bus, e.OnTileSpawned)
	event.Subscribe(bus, e.OnTileDestroyed)
}

// OnTick calls Lua on_tick(n) if a script defines it.
func (e *Engine) OnTick(n uint64) {
	e.callHook("on_tick", lua.LNumber(n))
}

// OnTileSpawned calls Lua on_tile_spawned(ev).
func (e *Engine) OnTileSpawned(ev world.TileSpawned) {
	fn := e.vm.GetGlobal("on_tile_spawned")
	if fn == lua.LNil {
		return
	}
	t := e.tileTable(ev.ID, ev.At, ev.Material)
	e.callHook("on_tile_spawned", t)
}

// OnTileDestroyed calls Lua on_tile_destroyed(ev).
func (e *Engine) OnTileDestroyed(ev world.TileDestroyed) {
	fn := e.vm.GetGlobal("on_tile_destroyed")
	if fn == lua.LNil {
		return
	}
	t := e.tileTable(ev.ID, ev.At, ev.Material)
	e.callHook("on_tile_destroyed", t)
}

func (e *Engine) tileTable(id ecs.EntityID, at world.Coord, mat data.MaterialID) *lua.LTable {
	t := e.vm.NewTable()
	t.RawSetString("id", lua.LNumber(id))
	t.RawSetString("x", lua.LNumber(at.X))
	t.RawSetString("y", lua.LNumber(at.Y))
	t.RawSetString("z", lua.LNumber(at.Z))
	t.RawSetString("material", lua.LNumber(mat))
	if m, ok := e.materials.Get(mat); ok {
		t.RawSetString("name", lua.LString(m.Name))
	}
	return t
}

// callHook calls an optional global function. Missing hooks are skipped and
// script errors are logged, never propagated into the tick.
func (e *Engine) callHook(name string, args ...lua.LValue) {
	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		return
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, args...); err != nil {
		e.log.Error("lua hook error", zap.String("func", name), zap.Error(err))
	}
}

// --- Lua helpers ---

// lInt reads an integer field from a Lua table.
func lInt(t *lua.LTable, key string) int {
	return int(lua.LVAsNumber(t.RawGetString(key)))
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
