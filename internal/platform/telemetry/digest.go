package telemetry

import (
	"encoding/binary"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// StateDigest returns a non-authoritative 64-bit digest of a working state
// map, for log lines and span attributes only. It is never consulted by
// any determinism invariant or replay decision — the engine's identity and
// replay hashes are the FNV-family hashes in package hash.
func StateDigest(state map[uint64]uint64) uint64 {
	keys := make([]uint64, 0, len(state))
	for k := range state {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	digest := xxhash.New()
	var buf [8]byte
	for _, k := range keys {
		binary.LittleEndian.PutUint64(buf[:], k)
		digest.Write(buf[:])
		binary.LittleEndian.PutUint64(buf[:], state[k])
		digest.Write(buf[:])
	}
	return digest.Sum64()
}
