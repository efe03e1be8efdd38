package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/profile"
	"github.com/tilevox/dungeon/internal/config"
	"github.com/tilevox/dungeon/internal/core/event"
	coresys "github.com/tilevox/dungeon/internal/core/system"
	"github.com/tilevox/dungeon/internal/data"
	"github.com/tilevox/dungeon/internal/gen"
	"github.com/tilevox/dungeon/internal/scripting"
	"github.com/tilevox/dungeon/internal/system"
	"github.com/tilevox/dungeon/internal/world"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const defaultConfigPath = "config/dungeon.toml"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(extent world.Extent, seed int64) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m              dungeon  v0.1.0              \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m        tile level · procedural terrain    \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mlevel:\033[0m %s \033[90m(seed: %d)\033[0m\n\n", extent, seed)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main loop ──────────────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	extent := world.Extent{X: cfg.Level.SizeX, Y: cfg.Level.SizeY, Z: cfg.Level.SizeZ}
	printBanner(extent, cfg.Level.Seed)

	// 3. Optional profiling of the whole run
	if p := startProfile(cfg.Debug); p != nil {
		defer p.Stop()
		printOK(fmt.Sprintf("%s profile → %s", cfg.Debug.Profile, cfg.Debug.ProfileDir))
	}

	// 4. Material registry: built-ins, then the data file, then sealed
	printSection("materials")
	materials := data.NewMaterialTable()
	if err := data.RegisterDefaults(materials); err != nil {
		return fmt.Errorf("register default materials: %w", err)
	}
	if cfg.Materials.Path != "" {
		n, err := data.LoadMaterialTable(cfg.Materials.Path, materials)
		if err != nil {
			return fmt.Errorf("load material table: %w", err)
		}
		printStat("from "+cfg.Materials.Path, n)
	}
	materials.Seal()
	printStat("registered", materials.Count())
	fmt.Println()

	// 5. Generator, grid and level
	printSection("level")
	generator, err := gen.New(generatorParams(cfg.Generator), materials)
	if err != nil {
		return fmt.Errorf("generator: %w", err)
	}
	grid, err := world.NewGrid(extent, cfg.Level.TileScale)
	if err != nil {
		return fmt.Errorf("grid: %w", err)
	}
	bus := event.NewBus()
	level, err := world.NewLevel(grid, world.Deps{
		Materials: materials,
		Generator: generator,
		Bus:       bus,
		Log:       log,
		QueueSize: cfg.Tick.SubmitQueueSize,
	})
	if err != nil {
		return fmt.Errorf("level: %w", err)
	}
	printStat("cells", extent.Volume())

	// 6. Systems
	runner := coresys.NewRunner()
	runner.Register(system.NewEventDispatchSystem(bus))
	mutation := system.NewMutationSystem(level, log)
	runner.Register(mutation)
	var verify *system.VerifySystem
	if cfg.Debug.VerifyInvariants {
		verify = system.NewVerifySystem(level, log)
		runner.Register(verify)
		printOK("invariant verification after every drain")
	}

	// 7. Level scripts
	if cfg.Scripting.Dir != "" {
		luaEngine, err := scripting.NewEngine(cfg.Scripting.Dir, level, materials, log)
		if err != nil {
			return fmt.Errorf("lua engine: %w", err)
		}
		defer luaEngine.Close()
		luaEngine.Subscribe(bus)
		runner.Register(system.NewScriptSystem(luaEngine))
		printOK("lua scripts loaded from " + cfg.Scripting.Dir)
	}

	// 8. Initial level command, applied before the loop starts
	if cfg.Level.InitOnStart {
		start := time.Now()
		level.Submit(world.InitializeVolume{Seed: cfg.Level.Seed})
		runner.TickPhase(coresys.PhaseMutate, 0)
		if err := mutation.Err(); err != nil {
			return fmt.Errorf("initialize level: %w", err)
		}
		printStat("tiles spawned", level.Tiles().Len())
		printOK(fmt.Sprintf("volume generated in %s", time.Since(start).Round(time.Millisecond)))
	}
	fmt.Println()

	// 9. Start tick loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Tick.Rate)
	defer ticker.Stop()

	printSection("ready")
	printReady(fmt.Sprintf("tick loop started (tick: %s)", cfg.Tick.Rate))
	fmt.Println()

	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Tick.Rate)
			if err := mutation.Err(); err != nil {
				return err
			}
			if verify != nil {
				if err := verify.Err(); err != nil {
					return err
				}
			}
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			t := level.Totals()
			log.Info("level stopped",
				zap.Uint64("ticks", runner.Ticks()),
				zap.Int("commands", t.Commands),
				zap.Int("spawned", t.Spawned),
				zap.Int("destroyed", t.Destroyed),
				zap.Int("rejected", t.Rejected),
				zap.Int("live_tiles", level.Tiles().Len()),
			)
			return nil
		}
	}
}

// loadConfig reads DUNGEON_CONFIG or the default path. A missing default file
// means built-in defaults; a missing explicit file is an error.
func loadConfig() (*config.Config, error) {
	if p := os.Getenv("DUNGEON_CONFIG"); p != "" {
		return config.Load(p)
	}
	cfg, err := config.Load(defaultConfigPath)
	if errors.Is(err, os.ErrNotExist) {
		return config.Default(), nil
	}
	return cfg, err
}

func generatorParams(c config.GeneratorConfig) gen.Params {
	return gen.Params{
		Frequency: c.Frequency,
		Alpha:     c.Alpha,
		Beta:      c.Beta,
		Octaves:   c.Octaves,
		Thresholds: gen.Thresholds{
			SoftBelow:  c.SoftBelow,
			LooseBelow: c.LooseBelow,
		},
		SoftMaterial:  c.SoftMaterial,
		LooseMaterial: c.LooseMaterial,
		DenseMaterial: c.DenseMaterial,
	}
}

func startProfile(cfg config.DebugConfig) interface{ Stop() } {
	var mode func(*profile.Profile)
	switch cfg.Profile {
	case "cpu":
		mode = profile.CPUProfile
	case "mem":
		mode = profile.MemProfile
	default:
		return nil
	}
	return profile.Start(mode, profile.ProfilePath(cfg.ProfileDir), profile.NoShutdownHook)
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
