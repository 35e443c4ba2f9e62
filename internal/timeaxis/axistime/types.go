// Package axistime defines the shared value types of the time axis engine:
// slots, conflict groups, requests, state keys/values, and the mutation
// descriptors that flow through the tick pipeline.
package axistime

// SlotIndex is a monotonic, unsigned logical time index. Slot 0 is the
// genesis slot; the first tick advances the axis to slot 1.
type SlotIndex uint64

// ConflictGroupID identifies an isolation boundary for conflict resolution.
// IDs are generated monotonically per axis and never reused after a group
// is destroyed.
type ConflictGroupID uint32

// RequestID identifies a submitted state change, assigned monotonically at
// submission time.
type RequestID uint64

// AnchorID identifies a checkpoint in the anchor ring, assigned
// monotonically as anchors are created.
type AnchorID uint64

// Key is the caller-facing two-part state key.
type Key struct {
	Primary   uint64
	Secondary uint64
}

// InternalKey folds a two-part Key into the single 64-bit key used to
// bucket conflicting requests and index the working state.
func (k Key) InternalKey() uint64 {
	const secondaryMultiplier = 0x9e3779b97f4a7c15
	return k.Primary ^ (k.Secondary * secondaryMultiplier)
}

// MutationKind identifies how a StateChangeDesc combines with the current
// value of its key.
type MutationKind int

const (
	// MutationSet replaces the key's value outright.
	MutationSet MutationKind = iota
	// MutationAdd adds the descriptor's value to the key's current value.
	MutationAdd
	// MutationMultiply multiplies the key's current value by the descriptor's value.
	MutationMultiply
	// MutationDelete removes the key from the working state.
	MutationDelete
	// MutationCustom is committed like MutationSet: the descriptor's value
	// replaces the key's value. No combinator function is invoked.
	MutationCustom
)

// String renders the mutation kind for logs and error messages.
func (m MutationKind) String() string {
	switch m {
	case MutationSet:
		return "Set"
	case MutationAdd:
		return "Add"
	case MutationMultiply:
		return "Multiply"
	case MutationDelete:
		return "Delete"
	case MutationCustom:
		return "Custom"
	default:
		return "Unknown"
	}
}

// ChangeDesc is a single requested state mutation targeting a future slot.
type ChangeDesc struct {
	TargetSlot    SlotIndex
	ConflictGroup ConflictGroupID
	Priority      int32
	Key           Key
	Mutation      MutationKind
	Value         uint64
}

// Change is a committed (key, value) pair materialized from a resolved
// request. Deletes are represented separately by Deleted.
type Change struct {
	Key     uint64
	Value   uint64
	Deleted bool
}
