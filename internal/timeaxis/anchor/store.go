package anchor

import (
	"maps"

	"github.com/axisruntime/timeaxis/internal/timeaxis/axistime"
	"github.com/axisruntime/timeaxis/internal/platform/errors"
)

// Data is a single checkpoint: a deep-copied state snapshot plus the
// transition log absorbed since the previous anchor.
type Data struct {
	AnchorID              axistime.AnchorID
	SlotIndex             axistime.SlotIndex
	StateSnapshot         map[uint64]uint64
	TransitionLog         []SlotTransition
	TransitionHashLo      uint64
	TransitionHashHi      uint64
	ResolutionHashLo      uint64
	ResolutionHashHi      uint64
	TerminationPolicyHash uint64
}

// Store is the bounded FIFO ring of anchors plus the pending transition
// buffer accumulated since the most recent anchor. It is the axis's only
// persistent state; no per-slot storage is retained outside of it.
type Store struct {
	maxAnchors  int
	nextAnchor  axistime.AnchorID
	anchors     []Data
	pending     []SlotTransition
	policyHash  uint64
}

// New constructs a Store seeded with the genesis anchor at slot 0, an
// empty snapshot, bound to policyHash. maxAnchors must be at least 1.
func New(maxAnchors int, policyHash uint64) (*Store, error) {
	if maxAnchors < 1 {
		return nil, errors.New(errors.CodeInvalidParameter, "max_anchors must be at least 1")
	}
	s := &Store{maxAnchors: maxAnchors, policyHash: policyHash}
	s.anchors = append(s.anchors, Data{
		AnchorID:              s.allocateAnchorID(),
		SlotIndex:             0,
		StateSnapshot:         map[uint64]uint64{},
		TerminationPolicyHash: policyHash,
	})
	return s, nil
}

func (s *Store) allocateAnchorID() axistime.AnchorID {
	id := s.nextAnchor
	s.nextAnchor++
	return id
}

// RecordTransition appends a tick's transition to the pending buffer.
func (s *Store) RecordTransition(t SlotTransition) {
	s.pending = append(s.pending, t)
}

// PendingCount reports how many transitions have accumulated since the
// last anchor.
func (s *Store) PendingCount() int {
	return len(s.pending)
}

// Latest returns the most recently created anchor.
func (s *Store) Latest() Data {
	return s.anchors[len(s.anchors)-1]
}

// OldestReconstructibleSlot is the slot index of the oldest anchor still
// retained in the ring.
func (s *Store) OldestReconstructibleSlot() axistime.SlotIndex {
	return s.anchors[0].SlotIndex
}

// CreateAnchor absorbs every pending transition into a new anchor holding
// a deep copy of currentState, computes the transition and resolution
// hashes over the absorbed log, appends it to the ring (evicting the
// oldest anchor if the ring is at capacity), and clears the pending
// buffer.
func (s *Store) CreateAnchor(slot axistime.SlotIndex, currentState map[uint64]uint64) Data {
	transitionLo, transitionHi := TransitionHash(s.pending)

	changeHashes := make([]uint64, len(s.pending))
	for i, t := range s.pending {
		changeHashes[i] = t.ResolutionHash
	}
	resolutionLo, resolutionHi := ResolutionHash(changeHashes)

	data := Data{
		AnchorID:              s.allocateAnchorID(),
		SlotIndex:             slot,
		StateSnapshot:         maps.Clone(currentState),
		TransitionLog:         s.pending,
		TransitionHashLo:      transitionLo,
		TransitionHashHi:      transitionHi,
		ResolutionHashLo:      resolutionLo,
		ResolutionHashHi:      resolutionHi,
		TerminationPolicyHash: s.policyHash,
	}

	s.anchors = append(s.anchors, data)
	if len(s.anchors) > s.maxAnchors {
		s.anchors = s.anchors[1:]
	}
	s.pending = nil
	return data
}

// ShouldAutoAnchor reports whether target_slot has advanced far enough
// past the most recent anchor to trigger an automatic anchor.
func (s *Store) ShouldAutoAnchor(targetSlot axistime.SlotIndex, interval uint64) bool {
	if interval == 0 {
		return false
	}
	return uint64(targetSlot-s.Latest().SlotIndex) >= interval
}

// NearestAnchorAtOrBefore returns the anchor with the greatest slot index
// not exceeding targetSlot, scanning from the most recent backward since
// ticks nearly always reconstruct recent slots.
func (s *Store) NearestAnchorAtOrBefore(targetSlot axistime.SlotIndex) (Data, bool) {
	for i := len(s.anchors) - 1; i >= 0; i-- {
		if s.anchors[i].SlotIndex <= targetSlot {
			return s.anchors[i], true
		}
	}
	return Data{}, false
}

// PendingTransitionsThrough returns every pending transition with slot
// index in (after, through], in slot order.
func (s *Store) PendingTransitionsThrough(after, through axistime.SlotIndex) []SlotTransition {
	var out []SlotTransition
	for _, t := range s.pending {
		if t.SlotIndex > after && t.SlotIndex <= through {
			out = append(out, t)
		}
	}
	return out
}

// TransitionsThrough returns every transition with slot index in
// (after, through], in slot order, regardless of which anchor's
// TransitionLog absorbed it or whether it is still only in the pending
// buffer. Replay must consult this rather than the pending buffer alone:
// once CreateAnchor absorbs a range of transitions into an anchor and
// clears pending, that range only survives inside the anchor's own
// TransitionLog.
func (s *Store) TransitionsThrough(after, through axistime.SlotIndex) []SlotTransition {
	var out []SlotTransition
	for _, a := range s.anchors {
		for _, t := range a.TransitionLog {
			if t.SlotIndex > after && t.SlotIndex <= through {
				out = append(out, t)
			}
		}
	}
	out = append(out, s.PendingTransitionsThrough(after, through)...)
	return out
}
