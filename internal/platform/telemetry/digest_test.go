package telemetry

import "testing"

func TestStateDigestDeterministicRegardlessOfInsertionOrder(t *testing.T) {
	a := map[uint64]uint64{1: 10, 2: 20, 3: 30}
	b := map[uint64]uint64{3: 30, 1: 10, 2: 20}

	if StateDigest(a) != StateDigest(b) {
		t.Fatal("expected digest to be independent of map iteration order")
	}
}

func TestStateDigestChangesWithValue(t *testing.T) {
	a := map[uint64]uint64{1: 10}
	b := map[uint64]uint64{1: 11}

	if StateDigest(a) == StateDigest(b) {
		t.Fatal("expected digest to change when a value changes")
	}
}

func TestStateDigestEmpty(t *testing.T) {
	if StateDigest(nil) != StateDigest(map[uint64]uint64{}) {
		t.Fatal("expected nil and empty maps to digest identically")
	}
}
