// Package termination evaluates the axis's termination policy after each
// tick, in the fixed order the specification mandates, and derives the
// policy's 64-bit semantic fingerprint from its configuration.
package termination

import (
	"github.com/axisruntime/timeaxis/internal/timeaxis/hash"
	"github.com/axisruntime/timeaxis/internal/timeaxis/scripting"
)

// ForceCommit is bit 4 of the external signal bitmask. Bits 16-19 are
// reserved for user-defined signals.
const ForceCommit uint32 = 1 << 4

// CustomCallback scores a termination context and reports whether the
// axis should terminate. It must be deterministic.
type CustomCallback func(ctx Context) bool

// Config is the axis's termination policy, fixed at construction and
// never mutable afterward.
type Config struct {
	StepLimit                  uint64
	SafetyCap                  uint64
	TerminateOnRequestDrain    bool
	TerminateOnGroupResolution bool
	RequiredExternalFlags      uint32

	// CustomCallback backs the final evaluation step with a native
	// function. When both CustomCallback and Script are set,
	// CustomCallback takes precedence.
	CustomCallback CustomCallback
	Script         *scripting.TerminationCallback
}

// hasCustom reports whether this config carries any custom termination
// check, native or scripted.
func (c Config) hasCustom() bool {
	return c.CustomCallback != nil || c.Script != nil
}

// PolicyHash folds every field of Config deterministically into a 64-bit
// fingerprint. It records only the presence of a custom callback, never
// its address, so that the hash is reproducible across processes.
func (c Config) PolicyHash() uint64 {
	h := hash.NewHash128()
	h.WriteUint64(c.StepLimit)
	h.WriteUint64(c.SafetyCap)
	h.WriteUint64(boolToUint64(c.TerminateOnRequestDrain))
	h.WriteUint64(boolToUint64(c.TerminateOnGroupResolution))
	h.WriteUint64(uint64(c.RequiredExternalFlags))
	h.WriteUint64(boolToUint64(c.hasCustom()))
	lo, _ := h.Sum()
	return lo
}

func boolToUint64(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
