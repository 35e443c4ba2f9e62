// Package hash implements the engine's deterministic FNV-1a-style hash
// primitives. These are the identity and replay-witness hashes the spec
// fixes exact constants for; they are deliberately not delegated to a
// general-purpose hashing library because their bit-for-bit output across
// processes and replays is itself the invariant being tested.
package hash

const (
	change64Seed       uint64 = 0x517cc1b727220a95
	change64Multiplier uint64 = 0x100000001b3
)

// Change64 computes the 64-bit change hash over an ordered sequence of
// (internal key, value bits) pairs, seeded per spec.
func Change64(keys, values []uint64) uint64 {
	h := change64Seed
	for i := range keys {
		h = mix64(h, keys[i])
		h = mix64(h, values[i])
	}
	return h
}

func mix64(h, word uint64) uint64 {
	var buf [8]byte
	putUint64(buf[:], word)
	for _, b := range buf {
		h ^= uint64(b)
		h *= change64Multiplier
	}
	return h
}

func putUint64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}

// Hash128 is a 128-bit two-halves FNV-ish hash with a cross-mix after
// every input byte, used for transition and resolution hashes.
type Hash128 struct {
	lo uint64
	hi uint64
}

// NewHash128 returns a freshly seeded 128-bit hash accumulator.
func NewHash128() Hash128 {
	return Hash128{lo: change64Seed, hi: ^change64Seed}
}

// Write folds bytes into the accumulator. It never returns an error and
// satisfies a subset of io.Writer's signature for convenience.
func (h *Hash128) Write(p []byte) (int, error) {
	for _, b := range p {
		h.lo ^= uint64(b)
		h.lo *= change64Multiplier
		h.hi ^= h.lo
		h.hi *= change64Multiplier
		h.lo ^= h.hi >> 17
	}
	return len(p), nil
}

// WriteUint64 folds a 64-bit word into the accumulator in little-endian order.
func (h *Hash128) WriteUint64(v uint64) {
	var buf [8]byte
	putUint64(buf[:], v)
	_, _ = h.Write(buf[:])
}

// Sum returns the accumulated 128-bit hash as two 64-bit halves.
func (h Hash128) Sum() (lo, hi uint64) {
	return h.lo, h.hi
}
