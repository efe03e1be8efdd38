package gen

import (
	"errors"
	"fmt"
)

// ErrInvalidThresholds is returned when the class cut points are out of order
// or outside [0, 1].
var ErrInvalidThresholds = errors.New("invalid classification thresholds")

// Class is the terrain class of a cell, ordered by remapped noise value.
type Class uint8

const (
	ClassSoft  Class = iota // wood-like
	ClassLoose              // dirt-like
	ClassDense              // stone-like
)

func (c Class) String() string {
	switch c {
	case ClassSoft:
		return "soft"
	case ClassLoose:
		return "loose"
	case ClassDense:
		return "dense"
	}
	return fmt.Sprintf("class(%d)", uint8(c))
}

// Default cut points on the remapped [0, 1] value.
const (
	DefaultSoftBelow  = 0.05
	DefaultLooseBelow = 0.25
)

// Thresholds are the class cut points. Each lower bound is inclusive for the
// next tier: a value equal to SoftBelow is loose, equal to LooseBelow is dense.
type Thresholds struct {
	SoftBelow  float64
	LooseBelow float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{SoftBelow: DefaultSoftBelow, LooseBelow: DefaultLooseBelow}
}

// Validate checks 0 <= SoftBelow < LooseBelow <= 1.
func (t Thresholds) Validate() error {
	if !(t.SoftBelow >= 0 && t.SoftBelow < t.LooseBelow && t.LooseBelow <= 1) {
		return fmt.Errorf("soft_below=%v loose_below=%v: %w", t.SoftBelow, t.LooseBelow, ErrInvalidThresholds)
	}
	return nil
}

// Classify maps a remapped noise value to its class.
func (t Thresholds) Classify(value float64) Class {
	switch {
	case value < t.SoftBelow:
		return ClassSoft
	case value < t.LooseBelow:
		return ClassLoose
	default:
		return ClassDense
	}
}

// Remap converts a raw noise sample from its native [-1, 1] range to [0, 1].
// Samples beyond the native range are not clamped.
func Remap(raw float64) float64 {
	return raw/2 + 0.5
}
