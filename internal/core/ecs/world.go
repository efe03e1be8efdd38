package ecs

// World owns the entity pool and the component registry. Unlike a deferred
// destroy queue, Destroy takes effect immediately: the caller is already the
// single writer for the current tick.
type World struct {
	pool     *EntityPool
	registry *Registry
}

func NewWorld() *World {
	return &World{
		pool:     NewEntityPool(),
		registry: NewRegistry(),
	}
}

func (w *World) Registry() *Registry { return w.registry }

func (w *World) CreateEntity() EntityID {
	return w.pool.Create()
}

func (w *World) Alive(id EntityID) bool {
	return w.pool.Alive(id)
}

// Destroy removes every component of id and releases its slot.
// Returns false if id was not alive.
func (w *World) Destroy(id EntityID) bool {
	if !w.pool.Alive(id) {
		return false
	}
	w.registry.RemoveAll(id)
	return w.pool.Destroy(id)
}

// Len returns the number of live entities.
func (w *World) Len() int { return w.pool.Len() }
