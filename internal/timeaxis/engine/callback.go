package engine

import "github.com/axisruntime/timeaxis/internal/timeaxis/axistime"

// CommitCallback is invoked once per successful tick, after the slot has
// advanced, with the new current slot and the number of changes applied.
// It exists for debugging and observability only; the engine does not
// depend on it for correctness, and a panicking callback is recovered
// rather than allowed to abort the tick.
type CommitCallback func(slot axistime.SlotIndex, totalChanges int)
