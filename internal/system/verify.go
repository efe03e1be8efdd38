package system

import (
	"time"

	coresys "github.com/tilevox/dungeon/internal/core/system"
	"github.com/tilevox/dungeon/internal/world"
	"go.uber.org/zap"
)

// VerifySystem re-checks the grid/tile mapping after every drain. Only
// registered when debug.verify_invariants is set. Phase 3 (PostMutate).
type VerifySystem struct {
	level *world.Level
	log   *zap.Logger
	err   error
}

func NewVerifySystem(level *world.Level, log *zap.Logger) *VerifySystem {
	return &VerifySystem{level: level, log: log}
}

func (s *VerifySystem) Phase() coresys.Phase { return coresys.PhasePostMutate }

func (s *VerifySystem) Update(_ time.Duration) {
	if s.err != nil {
		return
	}
	if err := s.level.Verify(); err != nil {
		s.log.Error("grid verification failed", zap.Error(err))
		s.err = err
	}
}

func (s *VerifySystem) Err() error { return s.err }
