package data

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var (
	// ErrDuplicateRegistration is returned when a material id or name is already taken.
	ErrDuplicateRegistration = errors.New("duplicate material registration")
	// ErrRegistrySealed is returned by Register once bootstrap has sealed the table.
	ErrRegistrySealed = errors.New("material registry is sealed")
)

// MaterialID is the stable key every tile carries.
type MaterialID uint16

// MaterialAttrs are the physical flags and the opaque render/physics handles of
// a material. Handles are owned by the rendering and physics collaborators and
// are never interpreted here.
type MaterialAttrs struct {
	Solid    bool   `yaml:"solid"`    // blocks movement and collision queries
	Opaque   bool   `yaml:"opaque"`   // blocks visibility
	Mesh     string `yaml:"mesh"`     // render mesh handle
	Texture  string `yaml:"texture"`  // render material/texture handle
	Collider string `yaml:"collider"` // physics collider handle
}

// Material is an immutable registry record.
type Material struct {
	ID            MaterialID `yaml:"id"`
	Name          string     `yaml:"name"`
	MaterialAttrs `yaml:",inline"`
}

type materialListFile struct {
	Materials []Material `yaml:"materials"`
}

// MaterialTable holds every registered material. It is filled once during
// bootstrap, sealed, and read-only afterwards.
type MaterialTable struct {
	list   []Material // registration order
	byID   map[MaterialID]int
	byName map[string]int
	sealed bool
}

func NewMaterialTable() *MaterialTable {
	return &MaterialTable{
		list:   make([]Material, 0, 16),
		byID:   make(map[MaterialID]int, 16),
		byName: make(map[string]int, 16),
	}
}

// Register adds a material. Both id and name must be unused.
func (t *MaterialTable) Register(id MaterialID, name string, attrs MaterialAttrs) error {
	if t.sealed {
		return fmt.Errorf("register %q: %w", name, ErrRegistrySealed)
	}
	if name == "" {
		return fmt.Errorf("register material %d: empty name", id)
	}
	if prev, ok := t.byID[id]; ok {
		return fmt.Errorf("register %q: id %d already used by %q: %w", name, id, t.list[prev].Name, ErrDuplicateRegistration)
	}
	if prev, ok := t.byName[name]; ok {
		return fmt.Errorf("register %q: name already used by id %d: %w", name, t.list[prev].ID, ErrDuplicateRegistration)
	}
	t.byID[id] = len(t.list)
	t.byName[name] = len(t.list)
	t.list = append(t.list, Material{ID: id, Name: name, MaterialAttrs: attrs})
	return nil
}

// Seal freezes the table. Further Register calls fail.
func (t *MaterialTable) Seal() { t.sealed = true }

// Sealed reports whether Seal has been called.
func (t *MaterialTable) Sealed() bool { return t.sealed }

// Get returns the material with the given id.
func (t *MaterialTable) Get(id MaterialID) (Material, bool) {
	i, ok := t.byID[id]
	if !ok {
		return Material{}, false
	}
	return t.list[i], true
}

// ByName returns the material registered under name. Names are unique, so the
// index always points at the first (and only) registration.
func (t *MaterialTable) ByName(name string) (Material, bool) {
	i, ok := t.byName[name]
	if !ok {
		return Material{}, false
	}
	return t.list[i], true
}

// Each visits materials in registration order.
func (t *MaterialTable) Each(fn func(Material)) {
	for _, m := range t.list {
		fn(m)
	}
}

// Count returns the number of registered materials.
func (t *MaterialTable) Count() int {
	return len(t.list)
}

// Built-in material ids.
const (
	MaterialStone MaterialID = 1
	MaterialDirt  MaterialID = 2
	MaterialWood  MaterialID = 3
	MaterialWall  MaterialID = 4
	MaterialFloor MaterialID = 5
	MaterialGlass MaterialID = 6
)

var defaultMaterials = []Material{
	{ID: MaterialStone, Name: "stone", MaterialAttrs: MaterialAttrs{Solid: true, Opaque: true, Mesh: "cube", Texture: "tiles/stone", Collider: "box"}},
	{ID: MaterialDirt, Name: "dirt", MaterialAttrs: MaterialAttrs{Solid: true, Opaque: true, Mesh: "cube", Texture: "tiles/dirt", Collider: "box"}},
	{ID: MaterialWood, Name: "wood", MaterialAttrs: MaterialAttrs{Solid: true, Opaque: true, Mesh: "cube", Texture: "tiles/wood", Collider: "box"}},
	{ID: MaterialWall, Name: "wall", MaterialAttrs: MaterialAttrs{Solid: true, Opaque: true, Mesh: "wall", Texture: "tiles/wall", Collider: "box"}},
	{ID: MaterialFloor, Name: "floor", MaterialAttrs: MaterialAttrs{Solid: true, Opaque: true, Mesh: "slab", Texture: "tiles/floor", Collider: "slab"}},
	{ID: MaterialGlass, Name: "glass", MaterialAttrs: MaterialAttrs{Solid: true, Opaque: false, Mesh: "cube", Texture: "tiles/glass", Collider: "box"}},
}

// RegisterDefaults registers the built-in material set. Called once during
// bootstrap, before any generation or spawning.
func RegisterDefaults(t *MaterialTable) error {
	for _, m := range defaultMaterials {
		if err := t.Register(m.ID, m.Name, m.MaterialAttrs); err != nil {
			return err
		}
	}
	return nil
}

// LoadMaterialTable registers the materials listed in a YAML file into t.
// Entries collide with defaults exactly like any other registration.
func LoadMaterialTable(path string, t *MaterialTable) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read material_list: %w", err)
	}
	var f materialListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return 0, fmt.Errorf("parse material_list: %w", err)
	}
	for _, m := range f.Materials {
		if m.ID == 0 {
			return 0, fmt.Errorf("material_list %s: material %q has no id", path, m.Name)
		}
		if err := t.Register(m.ID, m.Name, m.MaterialAttrs); err != nil {
			return 0, fmt.Errorf("material_list %s: %w", path, err)
		}
	}
	return len(f.Materials), nil
}
