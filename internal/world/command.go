package world

import (
	"fmt"

	"github.com/tilevox/dungeon/internal/data"
)

// Command is a pending grid mutation. The set of commands is closed.
type Command interface {
	fmt.Stringer
	Kind() string
	isCommand()
}

// Spawn places a tile of Material at At unless the cell is already occupied.
type Spawn struct {
	At       Coord
	Material data.MaterialID
}

// Destroy removes the tile at At, if any.
type Destroy struct {
	At Coord
}

// DestroyRegion removes every tile in the inclusive box Min..Max.
type DestroyRegion struct {
	Min, Max Coord
}

// InitializeVolume fills the whole grid from the procedural generator.
type InitializeVolume struct {
	Seed int64
}

func (Spawn) Kind() string            { return "spawn" }
func (Destroy) Kind() string          { return "destroy" }
func (DestroyRegion) Kind() string    { return "destroy_region" }
func (InitializeVolume) Kind() string { return "initialize_volume" }

func (Spawn) isCommand()            {}
func (Destroy) isCommand()          {}
func (DestroyRegion) isCommand()    {}
func (InitializeVolume) isCommand() {}

func (c Spawn) String() string         { return fmt.Sprintf("spawn %s material=%d", c.At, c.Material) }
func (c Destroy) String() string       { return fmt.Sprintf("destroy %s", c.At) }
func (c DestroyRegion) String() string { return fmt.Sprintf("destroy_region %s..%s", c.Min, c.Max) }
func (c InitializeVolume) String() string {
	return fmt.Sprintf("initialize_volume seed=%d", c.Seed)
}
