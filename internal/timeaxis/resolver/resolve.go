package resolver

import (
	"sort"

	"github.com/axisruntime/timeaxis/internal/timeaxis/axistime"
	"github.com/axisruntime/timeaxis/internal/timeaxis/hash"
	"github.com/axisruntime/timeaxis/internal/timeaxis/scripting"
)

// Candidate is one contending request within a single internal-key bucket.
type Candidate struct {
	RequestID axistime.RequestID
	Priority  int32
	Key       uint64
	Mutation  axistime.MutationKind
	Value     uint64
}

// GroupResolutionResult is the deterministic output of resolving every
// bucket within one conflict group for one tick.
type GroupResolutionResult struct {
	Changes    []axistime.Change
	ChangeHash uint64
}

// Resolve buckets requests by internal key, resolves each bucket against
// the given current state snapshot, and returns the per-group result.
// lookup is called with each bucket's winning Key to read the value the
// Add/Multiply mutations combine with.
func Resolve(policy ConflictPolicy, requests []Candidate, lookup func(key uint64) (value uint64, ok bool)) GroupResolutionResult {
	buckets := bucketByKey(requests)

	keys := make([]uint64, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	changes := make([]axistime.Change, 0, len(keys))
	for _, key := range keys {
		bucket := buckets[key]
		sort.Slice(bucket, func(i, j int) bool { return bucket[i].RequestID < bucket[j].RequestID })

		winner := selectWinner(policy, bucket)
		change := materialize(bucket[winner], lookup)
		changes = append(changes, change)
	}

	hashKeys := make([]uint64, len(changes))
	hashValues := make([]uint64, len(changes))
	for i, c := range changes {
		hashKeys[i] = c.Key
		hashValues[i] = c.Value
	}

	return GroupResolutionResult{
		Changes:    changes,
		ChangeHash: hash.Change64(hashKeys, hashValues),
	}
}

func bucketByKey(requests []Candidate) map[uint64][]Candidate {
	buckets := make(map[uint64][]Candidate)
	for _, r := range requests {
		buckets[r.Key] = append(buckets[r.Key], r)
	}
	return buckets
}

// selectWinner returns the index within bucket (already sorted ascending
// by RequestID) chosen by policy.
func selectWinner(policy ConflictPolicy, bucket []Candidate) int {
	switch policy.Kind {
	case FirstWriter:
		return 0
	case LastWriter:
		return len(bucket) - 1
	case Priority:
		best := 0
		for i := 1; i < len(bucket); i++ {
			if bucket[i].Priority > bucket[best].Priority {
				best = i
			}
		}
		return best
	case Custom:
		return resolveCustom(policy, bucket)
	default:
		return 0
	}
}

func resolveCustom(policy ConflictPolicy, bucket []Candidate) int {
	if policy.Fn != nil {
		idx, err := policy.Fn(bucket, policy.UserData)
		if err != nil || idx < 0 || idx >= len(bucket) {
			return 0
		}
		return idx
	}
	if policy.Script != nil {
		scripted := make([]scripting.Candidate, len(bucket))
		for i, c := range bucket {
			scripted[i] = scripting.Candidate{
				RequestID: uint64(c.RequestID),
				Priority:  c.Priority,
				Value:     c.Value,
			}
		}
		idx, err := policy.Script.Resolve(scripted)
		if err != nil || idx < 0 || idx >= len(bucket) {
			return 0
		}
		return idx
	}
	return 0
}

// materialize applies the winning candidate's mutation against the
// current value read through lookup. Add and Multiply are read-modify-
// write: the current value is read once, combined, and the combined
// result becomes the committed change.
func materialize(winner Candidate, lookup func(key uint64) (uint64, bool)) axistime.Change {
	switch winner.Mutation {
	case axistime.MutationDelete:
		return axistime.Change{Key: winner.Key, Deleted: true}
	case axistime.MutationAdd:
		current, _ := lookup(winner.Key)
		return axistime.Change{Key: winner.Key, Value: current + winner.Value}
	case axistime.MutationMultiply:
		current, ok := lookup(winner.Key)
		if !ok {
			current = 1
		}
		return axistime.Change{Key: winner.Key, Value: current * winner.Value}
	default:
		return axistime.Change{Key: winner.Key, Value: winner.Value}
	}
}
