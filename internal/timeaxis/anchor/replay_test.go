package anchor

import (
	stderrors "errors"
	"testing"

	"github.com/axisruntime/timeaxis/internal/platform/errors"
	"github.com/axisruntime/timeaxis/internal/timeaxis/axistime"
)

func TestReconstructAtCurrentSlotReturnsWorkingStateDirectly(t *testing.T) {
	s, _ := New(4, 0)
	current := map[uint64]uint64{1: 100}

	got, err := s.Reconstruct(0, 0, current)
	if err != nil {
		t.Fatalf("Reconstruct returned error: %v", err)
	}
	if got[1] != 100 {
		t.Fatal("expected the optimisation path to return the current state")
	}

	got[1] = 999
	if current[1] != 100 {
		t.Fatal("expected the returned state to be a copy, not an alias")
	}
}

func TestReconstructRejectsSlotBeforeOldestAnchor(t *testing.T) {
	s, _ := New(2, 0)
	s.CreateAnchor(5, map[uint64]uint64{})
	s.CreateAnchor(10, map[uint64]uint64{})

	_, err := s.Reconstruct(1, 10, map[uint64]uint64{})
	var axisErr *errors.Error
	if !stderrors.As(err, &axisErr) || axisErr.Code != errors.CodeSlotInPast {
		t.Fatalf("expected SlotInPast, got %v", err)
	}
}

func TestReconstructRejectsSlotBeyondCurrent(t *testing.T) {
	s, _ := New(4, 0)
	_, err := s.Reconstruct(100, 10, map[uint64]uint64{})
	var axisErr *errors.Error
	if !stderrors.As(err, &axisErr) || axisErr.Code != errors.CodeInvalidParameter {
		t.Fatalf("expected InvalidParameter, got %v", err)
	}
}

func TestReconstructReplaysTransitionsFromNearestAnchor(t *testing.T) {
	s, _ := New(4, 0)
	s.CreateAnchor(1, map[uint64]uint64{10: 1})
	s.RecordTransition(SlotTransition{
		SlotIndex:       2,
		ResolvedChanges: []axistime.Change{{Key: 10, Value: 2}},
	})
	s.RecordTransition(SlotTransition{
		SlotIndex:       3,
		ResolvedChanges: []axistime.Change{{Key: 20, Value: 5}},
	})

	got, err := s.Reconstruct(3, 5, map[uint64]uint64{10: 999, 20: 999})
	if err != nil {
		t.Fatalf("Reconstruct returned error: %v", err)
	}
	if got[10] != 2 {
		t.Fatalf("expected key 10 to reflect the slot-2 transition, got %d", got[10])
	}
	if got[20] != 5 {
		t.Fatalf("expected key 20 to reflect the slot-3 transition, got %d", got[20])
	}
}

func TestReconstructReachesTransitionsAbsorbedByALaterAnchor(t *testing.T) {
	s, _ := New(8, 0)

	for slot := axistime.SlotIndex(1); slot <= 5; slot++ {
		s.RecordTransition(SlotTransition{
			SlotIndex:       slot,
			ResolvedChanges: []axistime.Change{{Key: 1, Value: uint64(slot)}},
		})
	}
	s.CreateAnchor(5, map[uint64]uint64{1: 5})

	for slot := axistime.SlotIndex(6); slot <= 8; slot++ {
		s.RecordTransition(SlotTransition{
			SlotIndex:       slot,
			ResolvedChanges: []axistime.Change{{Key: 1, Value: uint64(slot)}},
		})
	}

	got, err := s.Reconstruct(3, 8, map[uint64]uint64{1: 8})
	if err != nil {
		t.Fatalf("Reconstruct returned error: %v", err)
	}
	if got[1] != 3 {
		t.Fatalf("expected key 1 to reflect the slot-3 transition absorbed into the slot-5 anchor, got %d", got[1])
	}
}

func TestReconstructHonorsDeletes(t *testing.T) {
	s, _ := New(4, 0)
	s.CreateAnchor(1, map[uint64]uint64{10: 1})
	s.RecordTransition(SlotTransition{
		SlotIndex:       2,
		ResolvedChanges: []axistime.Change{{Key: 10, Deleted: true}},
	})

	got, err := s.Reconstruct(2, 5, map[uint64]uint64{10: 999})
	if err != nil {
		t.Fatalf("Reconstruct returned error: %v", err)
	}
	if _, ok := got[10]; ok {
		t.Fatal("expected key 10 to be deleted in the reconstructed state")
	}
}

func TestReconstructRejectsPolicyMismatch(t *testing.T) {
	s, _ := New(4, 0xaaa)
	s.anchors[0].TerminationPolicyHash = 0xbbb

	_, err := s.Reconstruct(0, 0, map[uint64]uint64{})
	if err != nil {
		t.Fatalf("unexpected error on the current-slot fast path: %v", err)
	}

	s.CreateAnchor(1, map[uint64]uint64{})
	s.anchors[len(s.anchors)-1].TerminationPolicyHash = 0xbbb

	_, err = s.Reconstruct(1, 5, map[uint64]uint64{})
	var axisErr *errors.Error
	if !stderrors.As(err, &axisErr) || axisErr.Code != errors.CodePolicyMismatch {
		t.Fatalf("expected PolicyMismatch, got %v", err)
	}
}

func TestGetReconstructionKeyDoesNotEncodeState(t *testing.T) {
	s, _ := New(4, 0xaaa)
	s.CreateAnchor(1, map[uint64]uint64{1: 2})

	key, err := s.GetReconstructionKey(1, 5)
	if err != nil {
		t.Fatalf("GetReconstructionKey returned error: %v", err)
	}
	if key.PolicyHashLo != 0xaaa {
		t.Fatalf("expected the reconstruction key to carry the axis policy hash, got %x", key.PolicyHashLo)
	}
}
