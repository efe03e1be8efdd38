package world

import (
	"github.com/tilevox/dungeon/internal/core/ecs"
	"github.com/tilevox/dungeon/internal/data"
)

// Events emitted on the bus by the mutation phase. Listeners receive them at
// the start of the next tick, in emission order.

type TileSpawned struct {
	ID       ecs.EntityID
	At       Coord
	Material data.MaterialID
}

type TileDestroyed struct {
	ID       ecs.EntityID
	At       Coord
	Material data.MaterialID
}

type VolumeInitialized struct {
	Seed    int64
	Spawned int
}

type CommandRejected struct {
	Command string
	Reason  string
}
