package system

import (
	"time"

	coresys "github.com/tilevox/dungeon/internal/core/system"
	"github.com/tilevox/dungeon/internal/world"
	"go.uber.org/zap"
)

// MutationSystem drains the level's command queue once per tick. It is the
// only writer of the grid. Phase 2 (Mutate).
//
// A fatal drain error is latched: later ticks skip the drain and the main
// loop stops on Err.
type MutationSystem struct {
	level *world.Level
	log   *zap.Logger
	err   error
}

func NewMutationSystem(level *world.Level, log *zap.Logger) *MutationSystem {
	return &MutationSystem{level: level, log: log}
}

func (s *MutationSystem) Phase() coresys.Phase { return coresys.PhaseMutate }

func (s *MutationSystem) Update(_ time.Duration) {
	if s.err != nil {
		return
	}
	st, err := s.level.Drain()
	if err != nil {
		s.err = err
		return
	}
	if st.Commands == 0 {
		return
	}
	if ce := s.log.Check(zap.DebugLevel, "drain"); ce != nil {
		ce.Write(
			zap.Int("commands", st.Commands),
			zap.Int("spawned", st.Spawned),
			zap.Int("destroyed", st.Destroyed),
			zap.Int("noops", st.NoOps),
			zap.Int("rejected", st.Rejected),
		)
	}
}

// Err returns the fatal error that stopped mutation, if any.
func (s *MutationSystem) Err() error { return s.err }
