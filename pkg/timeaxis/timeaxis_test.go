package timeaxis

import (
	"context"
	"testing"
)

func TestNewAndTickAdvancesSlot(t *testing.T) {
	axis, err := New(Config{Termination: TerminationConfig{SafetyCap: 1000}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if _, err := axis.Tick(context.Background()); err != nil {
		t.Fatalf("Tick returned error: %v", err)
	}
	if axis.CurrentSlot() != 1 {
		t.Fatalf("expected slot 1, got %d", axis.CurrentSlot())
	}
}

func TestSubmitResolveAndQuery(t *testing.T) {
	axis, _ := New(Config{Termination: TerminationConfig{SafetyCap: 1000}})
	group, err := axis.CreateConflictGroup(NewFirstWriterPolicy())
	if err != nil {
		t.Fatalf("CreateConflictGroup returned error: %v", err)
	}

	key := Key{Primary: 7}
	if _, err := axis.Submit(ChangeDesc{
		TargetSlot:    1,
		ConflictGroup: group,
		Key:           key,
		Mutation:      MutationSet,
		Value:         123,
	}); err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}

	if _, err := axis.Tick(context.Background()); err != nil {
		t.Fatalf("Tick returned error: %v", err)
	}

	value, ok, err := axis.QueryState(1, key)
	if err != nil {
		t.Fatalf("QueryState returned error: %v", err)
	}
	if !ok || value != 123 {
		t.Fatalf("expected value 123, got %d (ok=%v)", value, ok)
	}
}

func TestTickMultipleStopsAtTermination(t *testing.T) {
	axis, _ := New(Config{Termination: TerminationConfig{StepLimit: 3, SafetyCap: 10000}})
	reason, err := axis.TickMultiple(context.Background(), 4)
	if err != nil {
		t.Fatalf("TickMultiple returned error: %v", err)
	}
	if reason != StepLimit {
		t.Fatalf("expected StepLimit, got %v", reason)
	}
	if axis.CurrentSlot() != 3 {
		t.Fatalf("expected the axis to stop advancing at slot 3, got %d", axis.CurrentSlot())
	}
}

func TestReconstructionKeyAndStatsAreExposed(t *testing.T) {
	axis, _ := New(Config{Termination: TerminationConfig{SafetyCap: 1000}})
	axis.CreateAnchorNow()

	key, err := axis.GetReconstructionKey(0)
	if err != nil {
		t.Fatalf("GetReconstructionKey returned error: %v", err)
	}
	if key.TargetSlot != 0 {
		t.Fatalf("expected reconstruction key target slot 0, got %d", key.TargetSlot)
	}

	stats := axis.GetStats()
	if stats.TotalAnchorsCreated != 1 {
		t.Fatalf("expected 1 anchor created, got %d", stats.TotalAnchorsCreated)
	}
}
