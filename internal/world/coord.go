package world

import "fmt"

// Coord addresses one grid cell.
type Coord struct {
	X, Y, Z int
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.X, c.Y, c.Z)
}

// Extent is the per-axis cell count of a grid.
type Extent struct {
	X, Y, Z int
}

func (e Extent) String() string {
	return fmt.Sprintf("%dx%dx%d", e.X, e.Y, e.Z)
}

// MaxCells bounds the volume of a grid: 1<<28 cells is 2 GiB of tile ids.
const MaxCells = 1 << 28

// Valid reports whether every axis is positive and the volume is at most MaxCells.
func (e Extent) Valid() bool {
	if e.X <= 0 || e.Y <= 0 || e.Z <= 0 {
		return false
	}
	// Divide instead of multiplying so huge axes cannot overflow.
	return e.X <= MaxCells/e.Y && e.X*e.Y <= MaxCells/e.Z
}

// Volume returns the number of cells.
func (e Extent) Volume() int {
	return e.X * e.Y * e.Z
}

// Contains reports whether c lies inside the extent.
func (e Extent) Contains(c Coord) bool {
	return c.X >= 0 && c.X < e.X &&
		c.Y >= 0 && c.Y < e.Y &&
		c.Z >= 0 && c.Z < e.Z
}

// Max returns the largest valid coordinate.
func (e Extent) Max() Coord {
	return Coord{e.X - 1, e.Y - 1, e.Z - 1}
}

// Walk visits every cell of the inclusive box min..max in canonical order:
// ascending x, then y, then z (z varies fastest). Stops at the first error.
// Callers validate the box; an inverted box visits nothing.
func Walk(min, max Coord, fn func(Coord) error) error {
	for x := min.X; x <= max.X; x++ {
		for y := min.Y; y <= max.Y; y++ {
			for z := min.Z; z <= max.Z; z++ {
				if err := fn(Coord{x, y, z}); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
