package gen

import (
	"fmt"

	"github.com/aquilax/go-perlin"
	"github.com/tilevox/dungeon/internal/data"
	"github.com/tilevox/dungeon/internal/world"
)

// Noise parameters. go-perlin is pinned in go.mod: changing its version or
// these defaults changes every generated level.
const (
	DefaultFrequency = 0.1
	DefaultAlpha     = 2.0
	DefaultBeta      = 2.0
	DefaultOctaves   = 3
)

// Params configures a Generator.
type Params struct {
	Frequency float64 // noise units per cell
	Alpha     float64 // octave amplitude divisor
	Beta      float64 // octave frequency multiplier
	Octaves   int32
	Thresholds

	SoftMaterial  string
	LooseMaterial string
	DenseMaterial string
}

func DefaultParams() Params {
	return Params{
		Frequency:     DefaultFrequency,
		Alpha:         DefaultAlpha,
		Beta:          DefaultBeta,
		Octaves:       DefaultOctaves,
		Thresholds:    DefaultThresholds(),
		SoftMaterial:  "wood",
		LooseMaterial: "dirt",
		DenseMaterial: "stone",
	}
}

// Generator fills a volume by classifying coherent 3D noise per cell.
type Generator struct {
	params    Params
	materials [3]data.MaterialID // indexed by Class
}

// New resolves the class materials by name. Unknown names are a configuration
// error reported as world.ErrUnknownMaterial.
func New(p Params, materials *data.MaterialTable) (*Generator, error) {
	if err := p.Thresholds.Validate(); err != nil {
		return nil, err
	}
	if !(p.Frequency > 0) || p.Octaves < 1 {
		return nil, fmt.Errorf("generator: frequency=%v octaves=%d must be positive", p.Frequency, p.Octaves)
	}
	g := &Generator{params: p}
	for class, name := range [3]string{p.SoftMaterial, p.LooseMaterial, p.DenseMaterial} {
		m, ok := materials.ByName(name)
		if !ok {
			return nil, fmt.Errorf("generator %s material %q: %w", Class(class), name, world.ErrUnknownMaterial)
		}
		g.materials[class] = m.ID
	}
	return g, nil
}

// Material returns the material id used for class c.
func (g *Generator) Material(c Class) data.MaterialID {
	return g.materials[c]
}

// Field is a seeded noise field. Each Field owns its permutation tables, so
// fields never share random state.
type Field struct {
	noise     *perlin.Perlin
	frequency float64
}

// Field builds the noise field for seed.
func (g *Generator) Field(seed int64) *Field {
	return &Field{
		noise:     perlin.NewPerlin(g.params.Alpha, g.params.Beta, g.params.Octaves, seed),
		frequency: g.params.Frequency,
	}
}

// Sample returns the remapped [0, 1] value at a cell.
func (f *Field) Sample(c world.Coord) float64 {
	raw := f.noise.Noise3D(
		float64(c.X)*f.frequency,
		float64(c.Y)*f.frequency,
		float64(c.Z)*f.frequency,
	)
	return Remap(raw)
}

// Classify returns the class of cell c in field f.
func (g *Generator) Classify(f *Field, c world.Coord) Class {
	return g.params.Thresholds.Classify(f.Sample(c))
}

// Generate classifies every cell of extent in canonical order (x, then y,
// then z) and passes the resolved material to emit.
func (g *Generator) Generate(seed int64, extent world.Extent, emit func(world.Coord, data.MaterialID) error) error {
	f := g.Field(seed)
	return world.Walk(world.Coord{}, extent.Max(), func(c world.Coord) error {
		return emit(c, g.materials[g.Classify(f, c)])
	})
}

var _ world.VolumeGenerator = (*Generator)(nil)
