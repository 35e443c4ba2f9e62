package anchor

import (
	"maps"

	"github.com/axisruntime/timeaxis/internal/timeaxis/axistime"
	"github.com/axisruntime/timeaxis/internal/platform/errors"
)

// ReconstructionKey encodes how to reconstruct state at a target slot,
// not the state itself: the anchor to start from and the hashes a
// replaying party can use to verify it landed on the same history.
type ReconstructionKey struct {
	AnchorID        axistime.AnchorID
	TargetSlot      axistime.SlotIndex
	TransitionHashLo uint64
	TransitionHashHi uint64
	PolicyHashLo     uint64
	PolicyHashHi     uint64
}

// Reconstruct returns the state at targetSlot by starting from the
// nearest anchor at or before it and replaying every recorded transition
// after that anchor up to and including targetSlot, in slot order, whether
// it sits in a later anchor's TransitionLog or in the pending buffer.
func (s *Store) Reconstruct(targetSlot axistime.SlotIndex, currentSlot axistime.SlotIndex, currentState map[uint64]uint64) (map[uint64]uint64, error) {
	if targetSlot < s.OldestReconstructibleSlot() {
		return nil, errors.New(errors.CodeSlotInPast, "target slot precedes the oldest retained anchor")
	}
	if targetSlot > currentSlot {
		return nil, errors.New(errors.CodeInvalidParameter, "target slot is beyond the current slot")
	}
	if targetSlot == currentSlot {
		return maps.Clone(currentState), nil
	}

	anchor, ok := s.NearestAnchorAtOrBefore(targetSlot)
	if !ok {
		return nil, errors.New(errors.CodeAnchorNotFound, "no anchor found at or before target slot")
	}
	if anchor.TerminationPolicyHash != s.policyHash {
		return nil, errors.New(errors.CodePolicyMismatch, "anchor termination policy hash does not match the axis")
	}

	state := maps.Clone(anchor.StateSnapshot)
	transitions := s.TransitionsThrough(anchor.SlotIndex, targetSlot)
	for _, t := range transitions {
		applyChanges(state, t.ResolvedChanges)
	}
	return state, nil
}

// GetReconstructionKey derives the key needed to reconstruct targetSlot
// without materializing the state itself.
func (s *Store) GetReconstructionKey(targetSlot axistime.SlotIndex, currentSlot axistime.SlotIndex) (ReconstructionKey, error) {
	if targetSlot < s.OldestReconstructibleSlot() {
		return ReconstructionKey{}, errors.New(errors.CodeSlotInPast, "target slot precedes the oldest retained anchor")
	}
	if targetSlot > currentSlot {
		return ReconstructionKey{}, errors.New(errors.CodeInvalidParameter, "target slot is beyond the current slot")
	}
	anchor, ok := s.NearestAnchorAtOrBefore(targetSlot)
	if !ok {
		return ReconstructionKey{}, errors.New(errors.CodeAnchorNotFound, "no anchor found at or before target slot")
	}
	return ReconstructionKey{
		AnchorID:         anchor.AnchorID,
		TargetSlot:       targetSlot,
		TransitionHashLo: anchor.TransitionHashLo,
		TransitionHashHi: anchor.TransitionHashHi,
		PolicyHashLo:     s.policyHash,
		PolicyHashHi:     0,
	}, nil
}

func applyChanges(state map[uint64]uint64, changes []axistime.Change) {
	for _, c := range changes {
		if c.Deleted {
			delete(state, c.Key)
			continue
		}
		state[c.Key] = c.Value
	}
}
