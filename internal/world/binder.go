package world

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/tilevox/dungeon/internal/core/ecs"
	"github.com/tilevox/dungeon/internal/data"
	"go.uber.org/zap"
)

// Binder creates and tears down the renderable and physical representation of
// a tile in lockstep with grid mutation. It is called from inside the mutation
// phase and must not submit commands or touch the grid.
type Binder interface {
	TileSpawned(id ecs.EntityID, at Coord, pos mgl64.Vec3, m data.Material)
	TileDestroyed(id ecs.EntityID, at Coord)
}

// LogBinder is the headless binder: it only records lifecycle calls at debug level.
type LogBinder struct {
	log *zap.Logger
}

func NewLogBinder(log *zap.Logger) *LogBinder {
	return &LogBinder{log: log}
}

func (b *LogBinder) TileSpawned(id ecs.EntityID, at Coord, pos mgl64.Vec3, m data.Material) {
	if ce := b.log.Check(zap.DebugLevel, "tile bound"); ce != nil {
		ce.Write(
			zap.Uint64("id", uint64(id)),
			zap.Stringer("cell", at),
			zap.Float64s("pos", pos[:]),
			zap.String("material", m.Name),
			zap.String("mesh", m.Mesh),
			zap.String("collider", m.Collider),
		)
	}
}

func (b *LogBinder) TileDestroyed(id ecs.EntityID, at Coord) {
	if ce := b.log.Check(zap.DebugLevel, "tile unbound"); ce != nil {
		ce.Write(zap.Uint64("id", uint64(id)), zap.Stringer("cell", at))
	}
}
