package world

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/tilevox/dungeon/internal/core/ecs"
	"github.com/tilevox/dungeon/internal/core/event"
	"github.com/tilevox/dungeon/internal/data"
	"go.uber.org/zap"
)

// VolumeGenerator classifies every cell of a volume and hands each result to emit
// in canonical order. It stops at the first error emit returns.
type VolumeGenerator interface {
	Generate(seed int64, extent Extent, emit func(Coord, data.MaterialID) error) error
}

// Occupancy is the read-only probe result used by movement and physics code.
type Occupancy struct {
	Occupied bool
	ID       ecs.EntityID
	Material data.MaterialID
	Solid    bool
	Opaque   bool
}

// DrainStats counts what one drain did.
type DrainStats struct {
	Commands  int
	Spawned   int
	Destroyed int
	NoOps     int
	Rejected  int
}

func (s *DrainStats) add(o DrainStats) {
	s.Commands += o.Commands
	s.Spawned += o.Spawned
	s.Destroyed += o.Destroyed
	s.NoOps += o.NoOps
	s.Rejected += o.Rejected
}

// Deps holds the collaborators of a Level.
type Deps struct {
	Materials *data.MaterialTable // required
	Generator VolumeGenerator     // nil: InitializeVolume is rejected
	Binder    Binder              // nil: LogBinder on Log
	Bus       *event.Bus          // nil: no events
	Log       *zap.Logger         // nil: no logging
	QueueSize int
}

// Level owns the grid, the live tile set and the mutation queue. Every change
// to grid occupancy goes through Submit and is applied by Drain.
type Level struct {
	grid      *Grid
	tiles     *Tiles
	queue     *Queue
	materials *data.MaterialTable
	gen       VolumeGenerator
	binder    Binder
	bus       *event.Bus
	log       *zap.Logger
	totals    DrainStats
}

func NewLevel(grid *Grid, deps Deps) (*Level, error) {
	if grid == nil {
		return nil, errors.New("new level: nil grid")
	}
	if deps.Materials == nil {
		return nil, errors.New("new level: nil material table")
	}
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	binder := deps.Binder
	if binder == nil {
		binder = NewLogBinder(log)
	}
	return &Level{
		grid:      grid,
		tiles:     NewTiles(),
		queue:     NewQueue(deps.QueueSize),
		materials: deps.Materials,
		gen:       deps.Generator,
		binder:    binder,
		bus:       deps.Bus,
		log:       log,
	}, nil
}

func (l *Level) Grid() *Grid                    { return l.grid }
func (l *Level) Tiles() *Tiles                  { return l.tiles }
func (l *Level) Materials() *data.MaterialTable { return l.materials }
func (l *Level) Pending() int                   { return l.queue.Len() }

// Totals returns the cumulative counters of every drain so far.
func (l *Level) Totals() DrainStats { return l.totals }

// Submit enqueues a command for the next drain. Fire-and-forget; safe from
// any goroutine.
func (l *Level) Submit(cmd Command) {
	l.queue.Submit(cmd)
}

// Query probes a cell.
func (l *Level) Query(c Coord) (Occupancy, error) {
	id, ok, err := l.grid.Get(c)
	if err != nil || !ok {
		return Occupancy{}, err
	}
	tile, ok := l.tiles.Get(id)
	if !ok {
		return Occupancy{}, fmt.Errorf("cell %s holds dead tile %d: %w", c, id, ErrInvariantViolated)
	}
	return Occupancy{
		Occupied: true,
		ID:       id,
		Material: tile.Material,
		Solid:    l.tiles.IsSolid(id),
		Opaque:   l.tiles.IsOpaque(id),
	}, nil
}

// ToWorldPosition converts a cell to world space.
func (l *Level) ToWorldPosition(c Coord) (mgl64.Vec3, error) {
	return l.grid.ToWorldPosition(c)
}

// Drain applies every command pending at call time, in submission order, and
// discards them. Non-fatal failures reject only the offending command. A fatal
// failure stops the drain and is returned; the remaining commands of the batch
// are dropped because the process is expected to terminate.
func (l *Level) Drain() (DrainStats, error) {
	batch := l.queue.take()
	defer l.queue.release(batch)

	var st DrainStats
	for i, cmd := range batch {
		st.Commands++
		err := l.apply(cmd, &st)
		if err == nil {
			continue
		}
		if IsFatal(err) {
			l.totals.add(st)
			l.log.Error("fatal mutation",
				zap.String("command", cmd.String()),
				zap.Int("discarded", len(batch)-i-1),
				zap.Error(err),
			)
			return st, fmt.Errorf("%s: %w", cmd, err)
		}
		st.Rejected++
		l.log.Warn("command rejected",
			zap.String("kind", cmd.Kind()),
			zap.String("command", cmd.String()),
			zap.Error(err),
		)
		emit(l, CommandRejected{Command: cmd.String(), Reason: err.Error()})
	}
	l.totals.add(st)
	return st, nil
}

func (l *Level) apply(cmd Command, st *DrainStats) error {
	switch c := cmd.(type) {
	case Spawn:
		spawned, err := l.spawn(c.At, c.Material)
		if err != nil {
			return err
		}
		if spawned {
			st.Spawned++
		} else {
			st.NoOps++
		}
	case Destroy:
		destroyed, err := l.destroy(c.At)
		if err != nil {
			return err
		}
		if destroyed {
			st.Destroyed++
		} else {
			st.NoOps++
		}
	case DestroyRegion:
		n, err := l.destroyRegion(c.Min, c.Max)
		st.Destroyed += n
		return err
	case InitializeVolume:
		n, err := l.initialize(c.Seed)
		st.Spawned += n
		return err
	default:
		return fmt.Errorf("unsupported command %T", cmd)
	}
	return nil
}

// spawn places a tile unless the cell is taken. Occupied cells win over
// material resolution: spawning onto them is a silent no-op.
func (l *Level) spawn(at Coord, mat data.MaterialID) (bool, error) {
	_, occupied, err := l.grid.Get(at)
	if err != nil {
		return false, err
	}
	if occupied {
		return false, nil
	}
	m, ok := l.materials.Get(mat)
	if !ok {
		return false, fmt.Errorf("material %d at %s: %w", mat, at, ErrUnknownMaterial)
	}
	pos, err := l.grid.ToWorldPosition(at)
	if err != nil {
		return false, err
	}
	id := l.tiles.create(at, m)
	if err := l.grid.Set(at, id); err != nil {
		l.tiles.destroy(id)
		return false, err
	}
	l.binder.TileSpawned(id, at, pos, m)
	emit(l, TileSpawned{ID: id, At: at, Material: m.ID})
	return true, nil
}

func (l *Level) destroy(at Coord) (bool, error) {
	id, occupied, err := l.grid.Get(at)
	if err != nil {
		return false, err
	}
	if !occupied {
		return false, nil
	}
	tile, ok := l.tiles.destroy(id)
	if !ok {
		return false, fmt.Errorf("cell %s holds dead tile %d: %w", at, id, ErrInvariantViolated)
	}
	if err := l.grid.Clear(at); err != nil {
		return false, err
	}
	l.binder.TileDestroyed(id, at)
	emit(l, TileDestroyed{ID: id, At: at, Material: tile.Material})
	return true, nil
}

func (l *Level) destroyRegion(min, max Coord) (int, error) {
	ext := l.grid.Extent()
	if !ext.Contains(min) || !ext.Contains(max) {
		return 0, fmt.Errorf("region %s..%s in %s grid: %w", min, max, ext, ErrOutOfBounds)
	}
	if min.X > max.X || min.Y > max.Y || min.Z > max.Z {
		return 0, fmt.Errorf("region %s..%s is inverted: %w", min, max, ErrOutOfBounds)
	}
	n := 0
	err := Walk(min, max, func(c Coord) error {
		destroyed, err := l.destroy(c)
		if destroyed {
			n++
		}
		return err
	})
	return n, err
}

func (l *Level) initialize(seed int64) (int, error) {
	if l.gen == nil {
		return 0, errors.New("initialize volume: no generator configured")
	}
	n := 0
	err := l.gen.Generate(seed, l.grid.Extent(), func(c Coord, mat data.MaterialID) error {
		spawned, err := l.spawn(c, mat)
		if spawned {
			n++
		}
		return err
	})
	if err != nil {
		return n, fmt.Errorf("initialize volume seed=%d: %w", seed, err)
	}
	l.log.Info("volume initialized",
		zap.Int64("seed", seed),
		zap.Stringer("extent", l.grid.Extent()),
		zap.Int("spawned", n),
	)
	emit(l, VolumeInitialized{Seed: seed, Spawned: n})
	return n, nil
}

// Verify checks that grid and live tile set map one-to-one: every recorded id
// is alive and placed at the cell that records it, and no live tile is missing
// from the grid.
func (l *Level) Verify() error {
	const maxReported = 8
	var errs []error
	report := func(err error) {
		if len(errs) < maxReported {
			errs = append(errs, err)
		}
	}
	recorded := 0
	l.grid.each(func(c Coord, id ecs.EntityID) {
		if id.IsZero() {
			return
		}
		recorded++
		if !l.tiles.Alive(id) {
			report(fmt.Errorf("cell %s records dead tile %d", c, id))
			return
		}
		tile, ok := l.tiles.Get(id)
		if !ok {
			report(fmt.Errorf("cell %s records tile %d without tile component", c, id))
			return
		}
		if tile.At != c {
			report(fmt.Errorf("cell %s records tile %d placed at %s", c, id, tile.At))
		}
	})
	if live := l.tiles.Len(); live != recorded {
		report(fmt.Errorf("%d live tiles but %d occupied cells", live, recorded))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvariantViolated, errors.Join(errs...))
}

func emit[T any](l *Level, ev T) {
	if l.bus != nil {
		event.Emit(l.bus, ev)
	}
}
