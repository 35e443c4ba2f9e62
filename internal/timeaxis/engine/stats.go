package engine

// Stats accumulates debug counters across the life of an axis. It is
// informational only; no invariant or replay decision depends on it.
type Stats struct {
	TotalRequestsProcessed uint64
	TotalConflictsResolved uint64
	TotalAnchorsCreated    uint64
	TotalTicks             uint64
}
