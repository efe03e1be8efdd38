package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/tilevox/dungeon/internal/gen"
	"github.com/tilevox/dungeon/internal/world"
)

type Config struct {
	Level     LevelConfig     `toml:"level"`
	Tick      TickConfig      `toml:"tick"`
	Generator GeneratorConfig `toml:"generator"`
	Materials MaterialsConfig `toml:"materials"`
	Scripting ScriptingConfig `toml:"scripting"`
	Logging   LoggingConfig   `toml:"logging"`
	Debug     DebugConfig     `toml:"debug"`
}

type LevelConfig struct {
	SizeX       int     `toml:"size_x"`
	SizeY       int     `toml:"size_y"`
	SizeZ       int     `toml:"size_z"`
	TileScale   float64 `toml:"tile_scale"` // world units per cell
	Seed        int64   `toml:"seed"`
	InitOnStart bool    `toml:"init_on_start"` // queue InitializeVolume(seed) before the first tick
}

type TickConfig struct {
	Rate            time.Duration `toml:"rate"`
	SubmitQueueSize int           `toml:"submit_queue_size"` // initial queue capacity, not a limit
}

type GeneratorConfig struct {
	Frequency     float64 `toml:"frequency"`
	Alpha         float64 `toml:"alpha"`
	Beta          float64 `toml:"beta"`
	Octaves       int32   `toml:"octaves"`
	SoftBelow     float64 `toml:"soft_below"`
	LooseBelow    float64 `toml:"loose_below"`
	SoftMaterial  string  `toml:"soft_material"`
	LooseMaterial string  `toml:"loose_material"`
	DenseMaterial string  `toml:"dense_material"`
}

type MaterialsConfig struct {
	Path string `toml:"path"` // optional YAML list registered after the built-ins
}

type ScriptingConfig struct {
	Dir string `toml:"dir"` // empty disables level scripts
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type DebugConfig struct {
	Profile          string `toml:"profile"` // "", "cpu" or "mem"
	ProfileDir       string `toml:"profile_dir"`
	VerifyInvariants bool   `toml:"verify_invariants"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns the built-in configuration used when no file is present.
func Default() *Config {
	return defaults()
}

func defaults() *Config {
	return &Config{
		Level: LevelConfig{
			SizeX:       128,
			SizeY:       128,
			SizeZ:       8,
			TileScale:   1.0,
			Seed:        0,
			InitOnStart: true,
		},
		Tick: TickConfig{
			Rate:            50 * time.Millisecond,
			SubmitQueueSize: 4096,
		},
		Generator: GeneratorConfig{
			Frequency:     0.1,
			Alpha:         2,
			Beta:          2,
			Octaves:       3,
			SoftBelow:     0.05,
			LooseBelow:    0.25,
			SoftMaterial:  "wood",
			LooseMaterial: "dirt",
			DenseMaterial: "stone",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Debug: DebugConfig{
			ProfileDir: ".",
		},
	}
}

// Validate rejects values no component could run with.
func (c *Config) Validate() error {
	var errs []error
	if ext := (world.Extent{X: c.Level.SizeX, Y: c.Level.SizeY, Z: c.Level.SizeZ}); !ext.Valid() {
		errs = append(errs, fmt.Errorf("level size %s must be positive with at most %d cells", ext, world.MaxCells))
	}
	if !(c.Level.TileScale > 0) {
		errs = append(errs, fmt.Errorf("level tile_scale %v must be positive", c.Level.TileScale))
	}
	if c.Tick.Rate <= 0 {
		errs = append(errs, fmt.Errorf("tick rate %v must be positive", c.Tick.Rate))
	}
	g := c.Generator
	if !(g.Frequency > 0) || g.Octaves < 1 {
		errs = append(errs, fmt.Errorf("generator frequency=%v octaves=%d must be positive", g.Frequency, g.Octaves))
	}
	if err := (gen.Thresholds{SoftBelow: g.SoftBelow, LooseBelow: g.LooseBelow}).Validate(); err != nil {
		errs = append(errs, fmt.Errorf("generator: %w", err))
	}
	switch c.Debug.Profile {
	case "", "cpu", "mem":
	default:
		errs = append(errs, fmt.Errorf("debug profile %q must be cpu, mem or empty", c.Debug.Profile))
	}
	return errors.Join(errs...)
}
