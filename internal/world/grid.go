package world

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/tilevox/dungeon/internal/core/ecs"
)

// Grid is a dense 3D table of optional tile ids, the single source of truth for
// what occupies which cell. The zero EntityID means empty.
// Accessed only from the game loop goroutine during the mutation phase, no locks.
type Grid struct {
	extent Extent
	scale  float64
	cells  []ecs.EntityID // index = (x*sizeY + y)*sizeZ + z
}

// NewGrid allocates an all-empty grid.
func NewGrid(extent Extent, tileScale float64) (*Grid, error) {
	if !extent.Valid() {
		return nil, fmt.Errorf("grid extent %s: every axis must be positive and the volume at most %d cells", extent, MaxCells)
	}
	if !(tileScale > 0) {
		return nil, fmt.Errorf("grid tile scale %v: must be positive", tileScale)
	}
	return &Grid{
		extent: extent,
		scale:  tileScale,
		cells:  make([]ecs.EntityID, extent.Volume()),
	}, nil
}

func (g *Grid) Extent() Extent     { return g.extent }
func (g *Grid) TileScale() float64 { return g.scale }

func (g *Grid) index(c Coord) (int, error) {
	if !g.extent.Contains(c) {
		return 0, fmt.Errorf("cell %s in %s grid: %w", c, g.extent, ErrOutOfBounds)
	}
	return (c.X*g.extent.Y+c.Y)*g.extent.Z + c.Z, nil
}

// Get returns the id recorded at c and whether the cell is occupied.
func (g *Grid) Get(c Coord) (ecs.EntityID, bool, error) {
	i, err := g.index(c)
	if err != nil {
		return 0, false, err
	}
	id := g.cells[i]
	return id, !id.IsZero(), nil
}

// Set records id at c, or clears the cell when id is zero. Overwrites
// unconditionally; the level decides whether a live occupant may be replaced.
func (g *Grid) Set(c Coord, id ecs.EntityID) error {
	i, err := g.index(c)
	if err != nil {
		return err
	}
	g.cells[i] = id
	return nil
}

// Clear empties the cell at c.
func (g *Grid) Clear(c Coord) error {
	return g.Set(c, 0)
}

// ToWorldPosition converts a cell to continuous world space: coord * tile scale per axis.
func (g *Grid) ToWorldPosition(c Coord) (mgl64.Vec3, error) {
	if !g.extent.Contains(c) {
		return mgl64.Vec3{}, fmt.Errorf("cell %s in %s grid: %w", c, g.extent, ErrOutOfBounds)
	}
	return mgl64.Vec3{
		float64(c.X) * g.scale,
		float64(c.Y) * g.scale,
		float64(c.Z) * g.scale,
	}, nil
}

// Occupied returns the number of non-empty cells.
func (g *Grid) Occupied() int {
	n := 0
	for _, id := range g.cells {
		if !id.IsZero() {
			n++
		}
	}
	return n
}

// each visits every cell with its recorded id in canonical order.
func (g *Grid) each(fn func(Coord, ecs.EntityID)) {
	i := 0
	for x := 0; x < g.extent.X; x++ {
		for y := 0; y < g.extent.Y; y++ {
			for z := 0; z < g.extent.Z; z++ {
				fn(Coord{x, y, z}, g.cells[i])
				i++
			}
		}
	}
}
