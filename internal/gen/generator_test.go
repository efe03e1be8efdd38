package gen

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tilevox/dungeon/internal/data"
	"github.com/tilevox/dungeon/internal/world"
)

func newMaterials(t *testing.T) *data.MaterialTable {
	t.Helper()
	tbl := data.NewMaterialTable()
	require.NoError(t, data.RegisterDefaults(tbl))
	return tbl
}

type cell struct {
	At       world.Coord
	Material data.MaterialID
}

func collect(t *testing.T, g *Generator, seed int64, ext world.Extent) []cell {
	t.Helper()
	var out []cell
	err := g.Generate(seed, ext, func(c world.Coord, m data.MaterialID) error {
		out = append(out, cell{c, m})
		return nil
	})
	require.NoError(t, err)
	return out
}

func TestNewResolvesDefaultMaterials(t *testing.T) {
	g, err := New(DefaultParams(), newMaterials(t))
	require.NoError(t, err)
	assert.Equal(t, data.MaterialWood, g.Material(ClassSoft))
	assert.Equal(t, data.MaterialDirt, g.Material(ClassLoose))
	assert.Equal(t, data.MaterialStone, g.Material(ClassDense))
}

func TestNewRejectsUnknownMaterial(t *testing.T) {
	p := DefaultParams()
	p.DenseMaterial = "granite"
	_, err := New(p, newMaterials(t))
	assert.ErrorIs(t, err, world.ErrUnknownMaterial)
	assert.True(t, world.IsFatal(err))
}

func TestNewRejectsBadParams(t *testing.T) {
	p := DefaultParams()
	p.Thresholds = Thresholds{SoftBelow: 0.5, LooseBelow: 0.1}
	_, err := New(p, newMaterials(t))
	assert.ErrorIs(t, err, ErrInvalidThresholds)

	p = DefaultParams()
	p.Frequency = 0
	_, err = New(p, newMaterials(t))
	assert.Error(t, err)

	p = DefaultParams()
	p.Octaves = 0
	_, err = New(p, newMaterials(t))
	assert.Error(t, err)
}

func TestGenerateCoversVolumeInCanonicalOrder(t *testing.T) {
	g, err := New(DefaultParams(), newMaterials(t))
	require.NoError(t, err)

	ext := world.Extent{X: 3, Y: 2, Z: 4}
	cells := collect(t, g, 7, ext)
	require.Len(t, cells, ext.Volume())

	assert.Equal(t, world.Coord{X: 0, Y: 0, Z: 0}, cells[0].At)
	assert.Equal(t, world.Coord{X: 0, Y: 0, Z: 1}, cells[1].At)
	assert.Equal(t, world.Coord{X: 0, Y: 1, Z: 0}, cells[4].At)
	assert.Equal(t, world.Coord{X: 1, Y: 0, Z: 0}, cells[8].At)
	assert.Equal(t, world.Coord{X: 2, Y: 1, Z: 3}, cells[len(cells)-1].At)

	valid := map[data.MaterialID]bool{data.MaterialWood: true, data.MaterialDirt: true, data.MaterialStone: true}
	for _, c := range cells {
		assert.True(t, valid[c.Material], "cell %s got material %d", c.At, c.Material)
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	ext := world.Extent{X: 8, Y: 8, Z: 4}
	g1, err := New(DefaultParams(), newMaterials(t))
	require.NoError(t, err)
	g2, err := New(DefaultParams(), newMaterials(t))
	require.NoError(t, err)

	assert.Equal(t, collect(t, g1, 42, ext), collect(t, g2, 42, ext))
	assert.Equal(t, collect(t, g1, 42, ext), collect(t, g1, 42, ext), "a generator carries no state between runs")
}

func TestFieldsDependOnSeed(t *testing.T) {
	g, err := New(DefaultParams(), newMaterials(t))
	require.NoError(t, err)
	a, b := g.Field(1), g.Field(2)

	differs := false
	require.NoError(t, world.Walk(world.Coord{}, world.Coord{X: 3, Y: 3, Z: 3}, func(c world.Coord) error {
		if a.Sample(c) != b.Sample(c) {
			differs = true
		}
		return nil
	}))
	assert.True(t, differs)
}

func TestGenerateStopsOnEmitError(t *testing.T) {
	g, err := New(DefaultParams(), newMaterials(t))
	require.NoError(t, err)

	boom := errors.New("boom")
	calls := 0
	err = g.Generate(0, world.Extent{X: 4, Y: 4, Z: 4}, func(world.Coord, data.MaterialID) error {
		calls++
		if calls == 5 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 5, calls)
}

func TestClassifyMatchesSample(t *testing.T) {
	g, err := New(DefaultParams(), newMaterials(t))
	require.NoError(t, err)
	f := g.Field(42)
	th := DefaultThresholds()
	c := world.Coord{X: 3, Y: 5, Z: 2}
	assert.Equal(t, th.Classify(f.Sample(c)), g.Classify(f, c))
}
