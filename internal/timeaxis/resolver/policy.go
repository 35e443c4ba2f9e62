// Package resolver implements the per-group conflict resolution algorithm:
// bucketing contending requests by internal key, choosing a winner per
// bucket according to a ConflictPolicy, and materializing the winner's
// mutation into a committed change.
package resolver

import "github.com/axisruntime/timeaxis/internal/timeaxis/scripting"

// PolicyKind selects which resolution rule a ConflictPolicy applies.
type PolicyKind int

const (
	// Priority picks the highest-priority request, ties broken by lowest RequestId.
	Priority PolicyKind = iota
	// LastWriter picks the highest RequestId.
	LastWriter
	// FirstWriter picks the lowest RequestId.
	FirstWriter
	// Custom delegates to a native or scripted callback.
	Custom
)

// CustomFunc resolves a bucket of candidates to a winning index. It must
// be deterministic and safe to call concurrently from multiple workers;
// the engine never calls it for mutually exclusive buckets on the same
// group, but distinct groups may invoke it in parallel.
type CustomFunc func(candidates []Candidate, userData any) (winner int, err error)

// ConflictPolicy configures how a single conflict group resolves
// contending requests within a bucket.
type ConflictPolicy struct {
	Kind PolicyKind

	// Fn and UserData back Kind == Custom with a native callback.
	Fn       CustomFunc
	UserData any

	// Script backs Kind == Custom with a sandboxed scripted callback.
	// When both Fn and Script are set, Fn takes precedence.
	Script *scripting.Policy
}

// NewPriorityPolicy returns a ConflictPolicy using the Priority rule.
func NewPriorityPolicy() ConflictPolicy { return ConflictPolicy{Kind: Priority} }

// NewLastWriterPolicy returns a ConflictPolicy using the LastWriter rule.
func NewLastWriterPolicy() ConflictPolicy { return ConflictPolicy{Kind: LastWriter} }

// NewFirstWriterPolicy returns a ConflictPolicy using the FirstWriter rule.
func NewFirstWriterPolicy() ConflictPolicy { return ConflictPolicy{Kind: FirstWriter} }

// NewCustomPolicy returns a ConflictPolicy backed by a native callback.
func NewCustomPolicy(fn CustomFunc, userData any) ConflictPolicy {
	return ConflictPolicy{Kind: Custom, Fn: fn, UserData: userData}
}

// NewScriptedPolicy returns a ConflictPolicy backed by a sandboxed Lua
// resolve(candidates) function.
func NewScriptedPolicy(script *scripting.Policy) ConflictPolicy {
	return ConflictPolicy{Kind: Custom, Script: script}
}
