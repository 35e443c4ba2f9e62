// Package intake implements the request queue and conflict-group table
// that submitter threads populate between ticks.
package intake

import (
	"sync"

	"github.com/axisruntime/timeaxis/internal/platform/errors"
	"github.com/axisruntime/timeaxis/internal/timeaxis/axistime"
)

// MaxConflictGroups bounds the conflict-group table.
const MaxConflictGroups = 256

// entry is one queued request, carrying a tombstone for lazy deletion.
type entry struct {
	id        axistime.RequestID
	desc      axistime.ChangeDesc
	cancelled bool
}

// Queue holds pending requests and the conflict-group table. All mutating
// methods take an internal lock; many submitter threads may call them
// concurrently, but exactly one tick thread drains it at a time.
type Queue struct {
	mu sync.Mutex

	maxPending int
	nextID     axistime.RequestID
	entries    []entry

	nextGroupID axistime.ConflictGroupID
	groups      map[axistime.ConflictGroupID]bool // true if active
}

// New constructs an empty Queue bounded by maxPending requests. A
// maxPending of zero or less leaves the queue unbounded.
func New(maxPending int) *Queue {
	return &Queue{
		maxPending: maxPending,
		groups:     make(map[axistime.ConflictGroupID]bool),
	}
}

// Submit admits a single request for a slot strictly after currentSlot.
func (q *Queue) Submit(desc axistime.ChangeDesc, currentSlot axistime.SlotIndex) (axistime.RequestID, error) {
	if desc.TargetSlot <= currentSlot {
		return 0, errors.New(errors.CodeSlotInPast, "target_slot must be greater than current_slot")
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.maxPending > 0 && len(q.entries) >= q.maxPending {
		return 0, errors.New(errors.CodeRequestQueueFull, "request queue is at capacity")
	}

	id := q.allocateID()
	q.entries = append(q.entries, entry{id: id, desc: desc})
	return id, nil
}

// SubmitBatch admits every descriptor atomically: either all are
// appended or none are, and the queue size is unchanged on rejection.
func (q *Queue) SubmitBatch(descs []axistime.ChangeDesc, currentSlot axistime.SlotIndex) ([]axistime.RequestID, error) {
	for _, d := range descs {
		if d.TargetSlot <= currentSlot {
			return nil, errors.New(errors.CodeSlotInPast, "target_slot must be greater than current_slot")
		}
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.maxPending > 0 && len(q.entries)+len(descs) > q.maxPending {
		return nil, errors.New(errors.CodeRequestQueueFull, "request queue cannot admit the full batch")
	}

	ids := make([]axistime.RequestID, len(descs))
	for i, d := range descs {
		id := q.allocateID()
		q.entries = append(q.entries, entry{id: id, desc: d})
		ids[i] = id
	}
	return ids, nil
}

// Cancel tombstones a pending request. Physical removal happens during
// the next tick's collect phase. Returns NotFound if id is unknown.
func (q *Queue) Cancel(id axistime.RequestID) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i := range q.entries {
		if q.entries[i].id == id {
			q.entries[i].cancelled = true
			return nil
		}
	}
	return errors.New(errors.CodeNotFound, "request id not found")
}

// Collected is a request extracted from the queue for the current tick.
type Collected struct {
	ID   axistime.RequestID
	Desc axistime.ChangeDesc
}

// Collect removes cancelled entries and extracts every entry whose
// target slot equals targetSlot, leaving future/other entries in place.
func (q *Queue) Collect(targetSlot axistime.SlotIndex) []Collected {
	q.mu.Lock()
	defer q.mu.Unlock()

	var collected []Collected
	remaining := q.entries[:0]
	for _, e := range q.entries {
		if e.cancelled {
			continue
		}
		if e.desc.TargetSlot == targetSlot {
			collected = append(collected, Collected{ID: e.id, Desc: e.desc})
			continue
		}
		remaining = append(remaining, e)
	}
	q.entries = remaining
	return collected
}

// PendingCount reports the current queue size.
func (q *Queue) PendingCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

func (q *Queue) allocateID() axistime.RequestID {
	id := q.nextID
	q.nextID++
	return id
}

// CreateConflictGroup appends a new active group to the table, bounded
// by MaxConflictGroups.
func (q *Queue) CreateConflictGroup() (axistime.ConflictGroupID, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.groups) >= MaxConflictGroups {
		return 0, errors.New(errors.CodeConflictGroupFull, "conflict group table is at capacity")
	}

	id := q.nextGroupID
	q.nextGroupID++
	q.groups[id] = true
	return id, nil
}

// DestroyConflictGroup marks a group inactive without reusing its id.
func (q *Queue) DestroyConflictGroup(id axistime.ConflictGroupID) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.groups[id]; !ok {
		return errors.New(errors.CodeNotFound, "conflict group not found")
	}
	q.groups[id] = false
	return nil
}

// GroupActive reports whether id refers to a group that is present and
// not destroyed.
func (q *Queue) GroupActive(id axistime.ConflictGroupID) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.groups[id]
}
