// Package engine orchestrates the tick pipeline: collecting requests,
// partitioning them by conflict group, resolving each group in parallel,
// committing the result in deterministic order, and evaluating the
// termination policy. It owns the axis's lifecycle state machine.
package engine

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"

	"github.com/axisruntime/timeaxis/internal/platform/errors"
	"github.com/axisruntime/timeaxis/internal/platform/telemetry"
	"github.com/axisruntime/timeaxis/internal/timeaxis/anchor"
	"github.com/axisruntime/timeaxis/internal/timeaxis/axistime"
	"github.com/axisruntime/timeaxis/internal/timeaxis/intake"
	"github.com/axisruntime/timeaxis/internal/timeaxis/resolver"
	"github.com/axisruntime/timeaxis/internal/timeaxis/termination"
	"github.com/axisruntime/timeaxis/internal/timeaxis/workerpool"
)

// tracer instruments the tick phases: one span per Tick call, with a
// child span per pipeline stage.
var tracer = telemetry.Tracer("github.com/axisruntime/timeaxis/internal/timeaxis/engine")

// Config configures a new Axis. Termination is fixed for the lifetime of
// the axis; AnchorInterval can be changed later via SetAnchorInterval;
// every other field only affects construction.
type Config struct {
	Threads            int
	MaxPendingRequests int
	MaxAnchors         int
	AnchorInterval     uint64
	Termination        termination.Config
}

// Axis is the tick-pipeline orchestrator. It owns the request queue,
// conflict-group table, anchor ring, working state, worker pool, and
// termination lifecycle exclusively; submitter threads may call intake
// methods concurrently with the single tick thread's calls to Tick.
type Axis struct {
	queue *intake.Queue
	pool  *workerpool.Pool

	termConfig     termination.Config
	policyHash     uint64
	anchorInterval uint64

	groupsMu      sync.Mutex
	groupPolicies map[axistime.ConflictGroupID]resolver.ConflictPolicy

	// engineMu guards everything only the single tick thread mutates:
	// the working state, the anchor store, current slot, lifecycle, and
	// the cumulative counters fed into termination evaluation.
	engineMu sync.Mutex
	state    map[uint64]uint64
	anchors  *anchor.Store
	current  axistime.SlotIndex
	lifecycle termination.Lifecycle
	elapsedSteps uint64
	lastReason   termination.Reason
	lastContext  termination.Context
	stats        Stats

	externalFlags atomic.Uint32

	callbackMu sync.Mutex
	callback   CommitCallback
}

// New constructs an Axis with a genesis anchor at slot 0 and an Active
// lifecycle. Construction fails with ThreadPoolFailed if the worker pool
// cannot be created.
func New(cfg Config) (*Axis, error) {
	pool, err := workerpool.New(cfg.Threads)
	if err != nil {
		return nil, errors.Wrap(errors.CodeThreadPoolFailed, "failed to construct worker pool", err)
	}

	maxAnchors := cfg.MaxAnchors
	if maxAnchors <= 0 {
		maxAnchors = 16
	}

	policyHash := cfg.Termination.PolicyHash()
	store, err := anchor.New(maxAnchors, policyHash)
	if err != nil {
		return nil, err
	}

	return &Axis{
		queue:          intake.New(cfg.MaxPendingRequests),
		pool:           pool,
		termConfig:     cfg.Termination,
		policyHash:     policyHash,
		anchorInterval: cfg.AnchorInterval,
		groupPolicies:  make(map[axistime.ConflictGroupID]resolver.ConflictPolicy),
		state:          make(map[uint64]uint64),
		anchors:        store,
		lifecycle:      termination.Active,
	}, nil
}

// CurrentSlot returns the axis's current logical slot.
func (a *Axis) CurrentSlot() axistime.SlotIndex {
	a.engineMu.Lock()
	defer a.engineMu.Unlock()
	return a.current
}

// TerminationPolicyHash returns the axis's immutable semantic fingerprint.
func (a *Axis) TerminationPolicyHash() uint64 {
	return a.policyHash
}

// LastTerminationReason reports the reason recorded by the most recent
// tick's termination evaluation, or None if no tick has run.
func (a *Axis) LastTerminationReason() termination.Reason {
	a.engineMu.Lock()
	defer a.engineMu.Unlock()
	return a.lastReason
}

// GetTerminationContext returns the context built by the most recent
// tick's termination evaluation.
func (a *Axis) GetTerminationContext() termination.Context {
	a.engineMu.Lock()
	defer a.engineMu.Unlock()
	return a.lastContext
}

// GetTerminationConfig returns the axis's immutable termination policy.
func (a *Axis) GetTerminationConfig() termination.Config {
	return a.termConfig
}

// SetTerminationConfig always fails: the termination policy is fixed at
// construction and never mutable afterward.
func (a *Axis) SetTerminationConfig(termination.Config) error {
	return errors.New(errors.CodePolicyLocked, "termination policy is immutable after construction")
}

// SetExternalSignal performs an atomic OR of flag into the external
// signal bitmask.
func (a *Axis) SetExternalSignal(flag uint32) {
	for {
		old := a.externalFlags.Load()
		if a.externalFlags.CompareAndSwap(old, old|flag) {
			return
		}
	}
}

// ClearExternalSignal performs an atomic AND-NOT of flag from the
// external signal bitmask.
func (a *Axis) ClearExternalSignal(flag uint32) {
	for {
		old := a.externalFlags.Load()
		if a.externalFlags.CompareAndSwap(old, old&^flag) {
			return
		}
	}
}

// SetCommitCallback registers or clears the debug commit callback.
func (a *Axis) SetCommitCallback(cb CommitCallback) {
	a.callbackMu.Lock()
	defer a.callbackMu.Unlock()
	a.callback = cb
}

// SetAnchorInterval updates the automatic-anchor cadence. It is not part
// of the termination policy and remains mutable after construction.
func (a *Axis) SetAnchorInterval(interval uint64) {
	a.engineMu.Lock()
	defer a.engineMu.Unlock()
	a.anchorInterval = interval
}

// GetStats returns a snapshot of the axis's debug counters.
func (a *Axis) GetStats() Stats {
	a.engineMu.Lock()
	defer a.engineMu.Unlock()
	return a.stats
}

// PendingRequestCount reports the current queue size.
func (a *Axis) PendingRequestCount() int {
	return a.queue.PendingCount()
}

// Submit admits a single request.
func (a *Axis) Submit(desc axistime.ChangeDesc) (axistime.RequestID, error) {
	return a.queue.Submit(desc, a.CurrentSlot())
}

// SubmitBatch admits every descriptor atomically.
func (a *Axis) SubmitBatch(descs []axistime.ChangeDesc) ([]axistime.RequestID, error) {
	return a.queue.SubmitBatch(descs, a.CurrentSlot())
}

// Cancel tombstones a pending request.
func (a *Axis) Cancel(id axistime.RequestID) error {
	return a.queue.Cancel(id)
}

// CreateConflictGroup registers a new group under the given policy.
func (a *Axis) CreateConflictGroup(policy resolver.ConflictPolicy) (axistime.ConflictGroupID, error) {
	id, err := a.queue.CreateConflictGroup()
	if err != nil {
		return 0, err
	}
	a.groupsMu.Lock()
	a.groupPolicies[id] = policy
	a.groupsMu.Unlock()
	return id, nil
}

// CreateConflictGroupCustom registers a new group backed by a native
// resolution callback.
func (a *Axis) CreateConflictGroupCustom(fn resolver.CustomFunc, userData any) (axistime.ConflictGroupID, error) {
	return a.CreateConflictGroup(resolver.NewCustomPolicy(fn, userData))
}

// DestroyConflictGroup marks a group inactive. Its id is never reused.
func (a *Axis) DestroyConflictGroup(id axistime.ConflictGroupID) error {
	a.groupsMu.Lock()
	delete(a.groupPolicies, id)
	a.groupsMu.Unlock()
	return a.queue.DestroyConflictGroup(id)
}

func (a *Axis) policyFor(id axistime.ConflictGroupID) resolver.ConflictPolicy {
	a.groupsMu.Lock()
	defer a.groupsMu.Unlock()
	if !a.queue.GroupActive(id) {
		return resolver.NewFirstWriterPolicy()
	}
	policy, ok := a.groupPolicies[id]
	if !ok {
		return resolver.NewFirstWriterPolicy()
	}
	return policy
}

// OldestReconstructibleSlot is the oldest slot any anchor in the ring can
// still reconstruct.
func (a *Axis) OldestReconstructibleSlot() axistime.SlotIndex {
	a.engineMu.Lock()
	defer a.engineMu.Unlock()
	return a.anchors.OldestReconstructibleSlot()
}

// GetReconstructionKey derives the replay key for slot without
// materializing state.
func (a *Axis) GetReconstructionKey(slot axistime.SlotIndex) (anchor.ReconstructionKey, error) {
	a.engineMu.Lock()
	defer a.engineMu.Unlock()
	return a.anchors.GetReconstructionKey(slot, a.current)
}

// ReconstructState returns the state at slot, replaying forward from the
// nearest anchor.
func (a *Axis) ReconstructState(slot axistime.SlotIndex) (map[uint64]uint64, error) {
	a.engineMu.Lock()
	defer a.engineMu.Unlock()
	return a.anchors.Reconstruct(slot, a.current, a.state)
}

// QueryState reads a single key from the reconstructed state at slot.
func (a *Axis) QueryState(slot axistime.SlotIndex, key axistime.Key) (uint64, bool, error) {
	state, err := a.ReconstructState(slot)
	if err != nil {
		return 0, false, err
	}
	value, ok := state[key.InternalKey()]
	return value, ok, nil
}

// CreateAnchorNow forces an anchor at the current slot, absorbing all
// pending transitions regardless of the automatic anchor interval.
func (a *Axis) CreateAnchorNow() anchor.Data {
	a.engineMu.Lock()
	defer a.engineMu.Unlock()
	data := a.anchors.CreateAnchor(a.current, a.state)
	a.stats.TotalAnchorsCreated++
	return data
}

type resolvedGroup struct {
	groupID axistime.ConflictGroupID
	result  resolver.GroupResolutionResult
	ok      bool
}

// Tick runs one full pass of the pipeline described in package engine's
// doc comment. It fails fast with Terminated if the axis is not Active.
func (a *Axis) Tick(ctx context.Context) (termination.Reason, error) {
	ctx, span := tracer.Start(ctx, "tick")
	defer span.End()

	a.engineMu.Lock()
	if a.lifecycle != termination.Active {
		a.engineMu.Unlock()
		return a.lastReason, errors.New(errors.CodeTerminated, "axis has already terminated")
	}
	targetSlot := a.current + 1
	a.engineMu.Unlock()
	span.SetAttributes(attribute.Int64("slot", int64(targetSlot)))

	_, collectSpan := tracer.Start(ctx, "collect")
	collected := a.queue.Collect(targetSlot)
	collectSpan.End()

	_, partitionSpan := tracer.Start(ctx, "partition")
	buckets := make(map[axistime.ConflictGroupID][]resolver.Candidate)
	requestIDs := make([]axistime.RequestID, 0, len(collected))
	for _, c := range collected {
		buckets[c.Desc.ConflictGroup] = append(buckets[c.Desc.ConflictGroup], resolver.Candidate{
			RequestID: c.ID,
			Priority:  c.Desc.Priority,
			Key:       c.Desc.Key.InternalKey(),
			Mutation:  c.Desc.Mutation,
			Value:     c.Desc.Value,
		})
		requestIDs = append(requestIDs, c.ID)
	}

	groupIDs := make([]axistime.ConflictGroupID, 0, len(buckets))
	for id := range buckets {
		groupIDs = append(groupIDs, id)
	}
	totalGroups := len(groupIDs)
	partitionSpan.SetAttributes(attribute.Int("total_groups", totalGroups))
	partitionSpan.End()

	results := make([]resolvedGroup, totalGroups)
	a.engineMu.Lock()
	lookup := func(key uint64) (uint64, bool) {
		v, ok := a.state[key]
		return v, ok
	}
	a.engineMu.Unlock()

	resolveCtx, resolveSpan := tracer.Start(ctx, "resolve")
	tasks := make([]workerpool.Task, totalGroups)
	for i, groupID := range groupIDs {
		i, groupID := i, groupID
		candidates := buckets[groupID]
		policy := a.policyFor(groupID)
		tasks[i] = func(ctx context.Context) error {
			results[i] = resolvedGroup{
				groupID: groupID,
				result:  resolver.Resolve(policy, candidates, lookup),
				ok:      true,
			}
			return nil
		}
	}
	err := a.pool.RunAll(resolveCtx, tasks)
	resolveSpan.End()
	if err != nil {
		return a.lastReason, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].groupID < results[j].groupID })

	a.engineMu.Lock()
	defer a.engineMu.Unlock()

	_, commitSpan := tracer.Start(ctx, "commit")
	var allChanges []axistime.Change
	var combinedChangeHash uint64
	resolvedGroups := 0
	for _, r := range results {
		if !r.ok {
			continue
		}
		resolvedGroups++
		combinedChangeHash ^= r.result.ChangeHash
		for _, c := range r.result.Changes {
			if c.Deleted {
				delete(a.state, c.Key)
			} else {
				a.state[c.Key] = c.Value
			}
		}
		allChanges = append(allChanges, r.result.Changes...)
	}
	commitSpan.SetAttributes(
		attribute.Int("resolved_groups", resolvedGroups),
		attribute.Int64("state_digest", int64(telemetry.StateDigest(a.state))),
	)
	commitSpan.End()

	a.anchors.RecordTransition(anchor.SlotTransition{
		SlotIndex:       targetSlot,
		Requests:        requestIDs,
		ResolvedChanges: allChanges,
		ResolutionHash:  combinedChangeHash,
	})

	a.stats.TotalRequestsProcessed += uint64(len(collected))
	a.stats.TotalConflictsResolved += conflictsResolved(collected)
	a.stats.TotalTicks++

	_, anchorSpan := tracer.Start(ctx, "anchor")
	if a.anchorInterval > 0 && a.anchors.ShouldAutoAnchor(targetSlot, a.anchorInterval) {
		a.anchors.CreateAnchor(targetSlot, a.state)
		a.stats.TotalAnchorsCreated++
	}
	anchorSpan.End()

	a.current = targetSlot

	a.callbackMu.Lock()
	cb := a.callback
	a.callbackMu.Unlock()
	if cb != nil {
		func() {
			defer func() { recover() }()
			cb(targetSlot, len(allChanges))
		}()
	}

	_, terminateSpan := tracer.Start(ctx, "terminate")
	a.elapsedSteps++
	termCtx := termination.Context{
		ElapsedSteps:    a.elapsedSteps,
		PendingRequests: uint64(a.queue.PendingCount()),
		ResolvedGroups:  uint64(resolvedGroups),
		TotalGroups:     uint64(totalGroups),
		ExternalFlags:   a.externalFlags.Load(),
	}
	reason := termination.Evaluate(a.termConfig, termCtx)
	a.lastReason = reason
	a.lastContext = termCtx
	if reason != termination.None {
		a.lifecycle = termination.Terminated
	}
	terminateSpan.SetAttributes(attribute.String("reason", reason.String()))
	terminateSpan.End()

	span.SetAttributes(
		attribute.Int("total_groups", totalGroups),
		attribute.Int("resolved_groups", resolvedGroups),
	)
	return reason, nil
}

// TickMultiple runs Tick n times, stopping at the first error or
// non-None termination reason.
func (a *Axis) TickMultiple(ctx context.Context, n int) (termination.Reason, error) {
	reason := termination.None
	for i := 0; i < n; i++ {
		var err error
		reason, err = a.Tick(ctx)
		if err != nil {
			return reason, err
		}
		if reason != termination.None {
			return reason, nil
		}
	}
	return reason, nil
}

// groupKey identifies a conflict scope: same conflict group, same
// internal key. Two different groups touching the same key in a tick
// are independent resolutions, not a conflict with each other.
type groupKey struct {
	group axistime.ConflictGroupID
	key   uint64
}

// conflictsResolved counts non-winning requests per (group, key): the
// total collected requests minus one winner per distinct group/key pair.
func conflictsResolved(collected []intake.Collected) uint64 {
	if len(collected) == 0 {
		return 0
	}
	counts := make(map[groupKey]int)
	for _, c := range collected {
		counts[groupKey{group: c.Desc.ConflictGroup, key: c.Desc.Key.InternalKey()}]++
	}
	var nonWinners uint64
	for _, count := range counts {
		nonWinners += uint64(count - 1)
	}
	return nonWinners
}
