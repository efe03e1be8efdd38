package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhasePreUpdate  Phase = iota // 0: deliver last tick's events
	PhaseUpdate                  // 1: gameplay and level scripts (command producers)
	PhaseMutate                  // 2: drain the mutation queue against the grid
	PhasePostMutate              // 3: invariant checks
)

// System is the interface every tick system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
