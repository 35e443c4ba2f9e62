// Package anchor implements the axis's only persistent state: a bounded
// ring of checkpoints, the pending transition buffer between them, and
// the reconstruction algorithm that replays transitions forward from the
// nearest anchor.
package anchor

import (
	"github.com/axisruntime/timeaxis/internal/timeaxis/axistime"
	"github.com/axisruntime/timeaxis/internal/timeaxis/hash"
)

// SlotTransition records one tick's resolved output: every request that
// targeted the slot and the changes its resolution produced.
type SlotTransition struct {
	SlotIndex      axistime.SlotIndex
	Requests       []axistime.RequestID
	ResolvedChanges []axistime.Change
	ResolutionHash uint64
}

// TransitionHash folds an ordered sequence of transitions into a 128-bit
// digest, used as both the anchor's transition_hash and as half of a
// ReconstructionKey.
func TransitionHash(transitions []SlotTransition) (lo, hi uint64) {
	h := hash.NewHash128()
	for _, t := range transitions {
		h.WriteUint64(uint64(t.SlotIndex))
		for _, r := range t.Requests {
			h.WriteUint64(uint64(r))
		}
		for _, c := range t.ResolvedChanges {
			h.WriteUint64(c.Key)
			h.WriteUint64(c.Value)
			h.WriteUint64(boolToUint64(c.Deleted))
		}
		h.WriteUint64(t.ResolutionHash)
	}
	return h.Sum()
}

// ResolutionHash folds an ordered sequence of per-slot resolution hashes
// (each slot's combined change hash) into a 128-bit digest.
func ResolutionHash(slotResolutionHashes []uint64) (lo, hi uint64) {
	h := hash.NewHash128()
	for _, ch := range slotResolutionHashes {
		h.WriteUint64(ch)
	}
	return h.Sum()
}

func boolToUint64(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
