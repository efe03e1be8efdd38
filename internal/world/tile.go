package world

import (
	"github.com/tilevox/dungeon/internal/core/ecs"
	"github.com/tilevox/dungeon/internal/data"
)

// Tile is the component every grid occupant carries.
type Tile struct {
	At       Coord
	Material data.MaterialID
}

// Solid marks a tile that blocks movement and collision queries.
type Solid struct{}

// Opaque marks a tile that blocks visibility.
type Opaque struct{}

// Tiles is the live object set: a generational arena of tile entities with
// their components.
type Tiles struct {
	world  *ecs.World
	tiles  *ecs.PtrComponentStore[Tile]
	solid  *ecs.PtrComponentStore[Solid]
	opaque *ecs.PtrComponentStore[Opaque]
}

func NewTiles() *Tiles {
	t := &Tiles{
		world:  ecs.NewWorld(),
		tiles:  ecs.NewPtrComponentStore[Tile](),
		solid:  ecs.NewPtrComponentStore[Solid](),
		opaque: ecs.NewPtrComponentStore[Opaque](),
	}
	t.world.Registry().Register(t.tiles)
	t.world.Registry().Register(t.solid)
	t.world.Registry().Register(t.opaque)
	return t
}

// create allocates a tile tagged from m. Only the level calls this.
func (t *Tiles) create(at Coord, m data.Material) ecs.EntityID {
	id := t.world.CreateEntity()
	t.tiles.Set(id, &Tile{At: at, Material: m.ID})
	if m.Solid {
		t.solid.Set(id, &Solid{})
	}
	if m.Opaque {
		t.opaque.Set(id, &Opaque{})
	}
	return id
}

// destroy releases a tile and all of its components.
func (t *Tiles) destroy(id ecs.EntityID) (Tile, bool) {
	tile, ok := t.tiles.Get(id)
	if !ok {
		return Tile{}, false
	}
	rec := *tile
	return rec, t.world.Destroy(id)
}

// Get returns the tile component of a live tile.
func (t *Tiles) Get(id ecs.EntityID) (Tile, bool) {
	tile, ok := t.tiles.Get(id)
	if !ok {
		return Tile{}, false
	}
	return *tile, true
}

func (t *Tiles) Alive(id ecs.EntityID) bool    { return t.world.Alive(id) }
func (t *Tiles) IsSolid(id ecs.EntityID) bool  { return t.solid.Has(id) }
func (t *Tiles) IsOpaque(id ecs.EntityID) bool { return t.opaque.Has(id) }

// Len returns the number of live tiles.
func (t *Tiles) Len() int { return t.world.Len() }
