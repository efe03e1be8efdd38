package system

import (
	"time"

	coresys "github.com/tilevox/dungeon/internal/core/system"
)

// TickHook is what ScriptSystem drives; the Lua engine implements it.
type TickHook interface {
	OnTick(n uint64)
}

// ScriptSystem calls the level scripts' on_tick hook. Commands the scripts
// submit are applied in the same tick's mutation phase. Phase 1 (Update).
type ScriptSystem struct {
	hook TickHook
	n    uint64
}

func NewScriptSystem(hook TickHook) *ScriptSystem {
	return &ScriptSystem{hook: hook}
}

func (s *ScriptSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *ScriptSystem) Update(_ time.Duration) {
	s.n++
	s.hook.OnTick(s.n)
}
