package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityPoolNeverIssuesZero(t *testing.T) {
	p := NewEntityPool()
	id := p.Create()
	assert.False(t, id.IsZero())
	assert.Equal(t, uint32(0), id.Index())
	assert.Equal(t, uint32(1), id.Generation())
	assert.True(t, p.Alive(id))
	assert.False(t, p.Alive(0))
}

func TestEntityPoolReuseInvalidatesStaleIDs(t *testing.T) {
	p := NewEntityPool()
	a := p.Create()
	require.True(t, p.Destroy(a))
	assert.False(t, p.Alive(a))
	assert.False(t, p.Destroy(a), "double destroy must be rejected")

	b := p.Create()
	assert.Equal(t, a.Index(), b.Index(), "slot is recycled")
	assert.NotEqual(t, a, b)
	assert.True(t, p.Alive(b))
	assert.False(t, p.Alive(a))
	assert.Equal(t, 1, p.Len())
}

func TestEntityPoolFreedSlotNotAliveUnderNextGeneration(t *testing.T) {
	p := NewEntityPool()
	a := p.Create()
	require.True(t, p.Destroy(a))
	forged := NewEntityID(a.Index(), a.Generation()+1)
	assert.False(t, p.Alive(forged))
}

func TestWorldDestroyStripsComponents(t *testing.T) {
	type marker struct{}
	w := NewWorld()
	store := NewPtrComponentStore[marker]()
	w.Registry().Register(store)

	id := w.CreateEntity()
	store.Set(id, &marker{})
	require.True(t, store.Has(id))

	assert.True(t, w.Destroy(id))
	assert.False(t, store.Has(id))
	assert.Equal(t, 0, w.Len())
	assert.False(t, w.Destroy(id))
}
