// Package timeaxis is the public, embeddable API for the time axis
// engine: a discrete deterministic state-transition engine organized
// around request submission, periodic ticks, conflict resolution, and
// bounded-memory reconstruction of past slots.
package timeaxis

import (
	"context"

	"github.com/axisruntime/timeaxis/internal/timeaxis/anchor"
	"github.com/axisruntime/timeaxis/internal/timeaxis/axistime"
	"github.com/axisruntime/timeaxis/internal/timeaxis/engine"
	"github.com/axisruntime/timeaxis/internal/timeaxis/resolver"
	"github.com/axisruntime/timeaxis/internal/timeaxis/scripting"
	"github.com/axisruntime/timeaxis/internal/timeaxis/termination"
)

// Re-exported value types so callers never need to import internal
// packages directly.
type (
	SlotIndex       = axistime.SlotIndex
	ConflictGroupID = axistime.ConflictGroupID
	RequestID       = axistime.RequestID
	AnchorID        = axistime.AnchorID
	Key             = axistime.Key
	MutationKind    = axistime.MutationKind
	ChangeDesc      = axistime.ChangeDesc

	ConflictPolicy = resolver.ConflictPolicy
	CustomFunc     = resolver.CustomFunc

	TerminationConfig  = termination.Config
	TerminationContext = termination.Context
	TerminationReason  = termination.Reason
	Lifecycle          = termination.Lifecycle

	AnchorData         = anchor.Data
	ReconstructionKey  = anchor.ReconstructionKey
	Stats              = engine.Stats
	CommitCallback     = engine.CommitCallback
)

const (
	MutationSet      = axistime.MutationSet
	MutationAdd      = axistime.MutationAdd
	MutationMultiply = axistime.MutationMultiply
	MutationDelete   = axistime.MutationDelete
	MutationCustom   = axistime.MutationCustom
)

const (
	None            = termination.None
	SafetyCap       = termination.SafetyCap
	StepLimit       = termination.StepLimit
	RequestDrain    = termination.RequestDrain
	GroupResolution = termination.GroupResolution
	ExternalSignal  = termination.ExternalSignal
	CustomCallback  = termination.CustomCallbackReason
)

const (
	Active     = termination.Active
	Terminated = termination.Terminated
)

// ForceCommit is the well-known external signal bit; bits 16-19 are
// reserved for caller-defined signals.
const ForceCommit = termination.ForceCommit

// Config configures a new Axis at construction.
type Config struct {
	Threads            int
	MaxPendingRequests int
	MaxAnchors         int
	AnchorInterval     uint64
	Termination        TerminationConfig
}

// Axis is an opaque handle to a running time axis engine. All methods are
// safe to call from submitter threads concurrently with each other; Tick
// and TickMultiple must be called from a single tick thread at a time.
type Axis struct {
	inner *engine.Axis
}

// New constructs an Axis. Fails with ThreadPoolFailed if the worker pool
// cannot be constructed.
func New(cfg Config) (*Axis, error) {
	inner, err := engine.New(engine.Config{
		Threads:            cfg.Threads,
		MaxPendingRequests: cfg.MaxPendingRequests,
		MaxAnchors:         cfg.MaxAnchors,
		AnchorInterval:     cfg.AnchorInterval,
		Termination:        cfg.Termination,
	})
	if err != nil {
		return nil, err
	}
	return &Axis{inner: inner}, nil
}

// Tick runs one pass of the pipeline: collect, partition, resolve,
// commit, record transition, maybe anchor, advance slot, evaluate
// termination.
func (a *Axis) Tick(ctx context.Context) (TerminationReason, error) {
	return a.inner.Tick(ctx)
}

// TickMultiple runs Tick n times, stopping at the first error or the
// first non-None termination reason.
func (a *Axis) TickMultiple(ctx context.Context, n int) (TerminationReason, error) {
	return a.inner.TickMultiple(ctx, n)
}

// CurrentSlot returns the axis's current logical slot.
func (a *Axis) CurrentSlot() SlotIndex { return a.inner.CurrentSlot() }

// Submit admits a single request targeting a future slot.
func (a *Axis) Submit(desc ChangeDesc) (RequestID, error) { return a.inner.Submit(desc) }

// SubmitBatch admits every descriptor atomically: all or none.
func (a *Axis) SubmitBatch(descs []ChangeDesc) ([]RequestID, error) {
	return a.inner.SubmitBatch(descs)
}

// Cancel tombstones a pending request.
func (a *Axis) Cancel(id RequestID) error { return a.inner.Cancel(id) }

// CreateConflictGroup registers a new group under policy.
func (a *Axis) CreateConflictGroup(policy ConflictPolicy) (ConflictGroupID, error) {
	return a.inner.CreateConflictGroup(policy)
}

// CreateConflictGroupCustom registers a new group backed by a native
// resolution callback.
func (a *Axis) CreateConflictGroupCustom(fn CustomFunc, userData any) (ConflictGroupID, error) {
	return a.inner.CreateConflictGroupCustom(fn, userData)
}

// CreateConflictGroupScripted registers a new group backed by a
// sandboxed Lua resolve(candidates) function.
func (a *Axis) CreateConflictGroupScripted(source string) (ConflictGroupID, error) {
	return a.inner.CreateConflictGroup(resolver.NewScriptedPolicy(scripting.NewPolicy(source)))
}

// DestroyConflictGroup marks a group inactive; its id is never reused.
func (a *Axis) DestroyConflictGroup(id ConflictGroupID) error {
	return a.inner.DestroyConflictGroup(id)
}

// OldestReconstructibleSlot is the oldest slot any retained anchor can
// still reconstruct.
func (a *Axis) OldestReconstructibleSlot() SlotIndex { return a.inner.OldestReconstructibleSlot() }

// GetReconstructionKey derives the replay key for slot without
// materializing state.
func (a *Axis) GetReconstructionKey(slot SlotIndex) (ReconstructionKey, error) {
	return a.inner.GetReconstructionKey(slot)
}

// CreateAnchorNow forces an anchor at the current slot.
func (a *Axis) CreateAnchorNow() AnchorData { return a.inner.CreateAnchorNow() }

// SetAnchorInterval updates the automatic-anchor cadence.
func (a *Axis) SetAnchorInterval(interval uint64) { a.inner.SetAnchorInterval(interval) }

// ReconstructState returns the state at slot, replaying forward from the
// nearest retained anchor.
func (a *Axis) ReconstructState(slot SlotIndex) (map[uint64]uint64, error) {
	return a.inner.ReconstructState(slot)
}

// QueryState reads a single key from the reconstructed state at slot.
func (a *Axis) QueryState(slot SlotIndex, key Key) (uint64, bool, error) {
	return a.inner.QueryState(slot, key)
}

// GetStats returns a snapshot of the axis's debug counters.
func (a *Axis) GetStats() Stats { return a.inner.GetStats() }

// SetCommitCallback registers or clears the debug commit callback,
// invoked once per successful tick.
func (a *Axis) SetCommitCallback(cb CommitCallback) { a.inner.SetCommitCallback(cb) }

// PendingRequestCount reports the current queue size.
func (a *Axis) PendingRequestCount() int { return a.inner.PendingRequestCount() }

// GetTerminationConfig returns the axis's immutable termination policy.
func (a *Axis) GetTerminationConfig() TerminationConfig { return a.inner.GetTerminationConfig() }

// SetExternalSignal performs an atomic OR of flag into the signal bitmask.
func (a *Axis) SetExternalSignal(flag uint32) { a.inner.SetExternalSignal(flag) }

// ClearExternalSignal performs an atomic AND-NOT of flag from the signal bitmask.
func (a *Axis) ClearExternalSignal(flag uint32) { a.inner.ClearExternalSignal(flag) }

// GetTerminationContext returns the context built by the most recent
// tick's termination evaluation.
func (a *Axis) GetTerminationContext() TerminationContext { return a.inner.GetTerminationContext() }

// LastTerminationReason reports the most recent tick's termination reason.
func (a *Axis) LastTerminationReason() TerminationReason { return a.inner.LastTerminationReason() }

// TerminationPolicyHash returns the axis's immutable semantic fingerprint.
func (a *Axis) TerminationPolicyHash() uint64 { return a.inner.TerminationPolicyHash() }

// NewPriorityPolicy returns a ConflictPolicy resolving ties by highest
// priority, then lowest RequestID.
func NewPriorityPolicy() ConflictPolicy { return resolver.NewPriorityPolicy() }

// NewLastWriterPolicy returns a ConflictPolicy favoring the highest RequestID.
func NewLastWriterPolicy() ConflictPolicy { return resolver.NewLastWriterPolicy() }

// NewFirstWriterPolicy returns a ConflictPolicy favoring the lowest RequestID.
func NewFirstWriterPolicy() ConflictPolicy { return resolver.NewFirstWriterPolicy() }

// NewCustomPolicy returns a ConflictPolicy backed by a native callback.
func NewCustomPolicy(fn CustomFunc, userData any) ConflictPolicy {
	return resolver.NewCustomPolicy(fn, userData)
}
