package hash

import "testing"

func TestChange64Deterministic(t *testing.T) {
	keys := []uint64{1, 2, 3}
	values := []uint64{10, 20, 30}

	a := Change64(keys, values)
	b := Change64(keys, values)
	if a != b {
		t.Fatalf("expected repeated calls to agree, got %x and %x", a, b)
	}
}

func TestChange64SensitiveToOrder(t *testing.T) {
	a := Change64([]uint64{1, 2}, []uint64{10, 20})
	b := Change64([]uint64{2, 1}, []uint64{20, 10})
	if a == b {
		t.Fatal("expected different pair orderings to hash differently")
	}
}

func TestChange64SensitiveToValue(t *testing.T) {
	a := Change64([]uint64{1}, []uint64{10})
	b := Change64([]uint64{1}, []uint64{11})
	if a == b {
		t.Fatal("expected different values to hash differently")
	}
}

func TestChange64Empty(t *testing.T) {
	if Change64(nil, nil) != change64Seed {
		t.Fatal("expected empty input to reduce to the seed")
	}
}

func TestHash128Deterministic(t *testing.T) {
	newHash := func() (uint64, uint64) {
		h := NewHash128()
		h.WriteUint64(42)
		h.WriteUint64(7)
		return h.Sum()
	}

	lo1, hi1 := newHash()
	lo2, hi2 := newHash()
	if lo1 != lo2 || hi1 != hi2 {
		t.Fatal("expected repeated 128-bit hashing to agree")
	}
}

func TestHash128SensitiveToInput(t *testing.T) {
	h1 := NewHash128()
	h1.WriteUint64(1)
	lo1, hi1 := h1.Sum()

	h2 := NewHash128()
	h2.WriteUint64(2)
	lo2, hi2 := h2.Sum()

	if lo1 == lo2 && hi1 == hi2 {
		t.Fatal("expected different inputs to produce different 128-bit hashes")
	}
}

func TestHash128HalvesDiverge(t *testing.T) {
	h := NewHash128()
	h.WriteUint64(123456789)
	lo, hi := h.Sum()
	if lo == hi {
		t.Fatal("expected cross-mixing to decorrelate the two halves")
	}
}
