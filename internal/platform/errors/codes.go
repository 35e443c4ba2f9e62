// Package errors provides the axis engine's structured error taxonomy.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code. Its string values are the Result
// taxonomy fixed by the engine's external interface contract; they must
// remain numerically and nominally stable across releases so host
// bindings can switch on them.
type Code string

const (
	// CodeInvalidParameter indicates a malformed or out-of-range argument.
	CodeInvalidParameter Code = "INVALID_PARAMETER"
	// CodeOutOfMemory indicates an internal allocation failure.
	CodeOutOfMemory Code = "OUT_OF_MEMORY"
	// CodeNotInitialized indicates an operation on an axis that was never created.
	CodeNotInitialized Code = "NOT_INITIALIZED"
	// CodeAlreadyInitialized indicates a create call on an already-initialized handle.
	CodeAlreadyInitialized Code = "ALREADY_INITIALIZED"
	// CodeSlotInPast indicates a request targets a slot at or before current_slot.
	CodeSlotInPast Code = "SLOT_IN_PAST"
	// CodeConflictGroupFull indicates the conflict group table is at capacity.
	CodeConflictGroupFull Code = "CONFLICT_GROUP_FULL"
	// CodeRequestQueueFull indicates the pending request queue is at capacity.
	CodeRequestQueueFull Code = "REQUEST_QUEUE_FULL"
	// CodeAnchorNotFound indicates no anchor satisfies a reconstruction query.
	CodeAnchorNotFound Code = "ANCHOR_NOT_FOUND"
	// CodeReconstructionFailed indicates replay could not produce a state.
	CodeReconstructionFailed Code = "RECONSTRUCTION_FAILED"
	// CodeInvalidPolicy indicates a malformed termination or conflict policy.
	CodeInvalidPolicy Code = "INVALID_POLICY"
	// CodeThreadPoolFailed indicates the worker pool could not be constructed.
	CodeThreadPoolFailed Code = "THREAD_POOL_FAILED"
	// CodeNotFound indicates a referenced id (group, anchor, request) does not exist.
	CodeNotFound Code = "NOT_FOUND"
	// CodePolicyMismatch indicates an anchor's termination policy hash diverges from the axis's.
	CodePolicyMismatch Code = "POLICY_MISMATCH"
	// CodePolicyLocked indicates a mutation attempt on the immutable termination policy.
	CodePolicyLocked Code = "POLICY_LOCKED"
	// CodeTerminated indicates an operation was rejected because the axis lifecycle is Terminated.
	CodeTerminated Code = "TERMINATED"
)

// GRPCCode maps an engine code to a numerically stable gRPC status code.
// No gRPC server is part of this module; the mapping exists so a host
// embedding the engine behind an RPC boundary can reuse one table instead
// of inventing its own.
func (c Code) GRPCCode() codes.Code {
	switch c {
	case CodeInvalidParameter, CodeSlotInPast, CodeInvalidPolicy:
		return codes.InvalidArgument
	case CodeOutOfMemory, CodeConflictGroupFull, CodeRequestQueueFull:
		return codes.ResourceExhausted
	case CodeNotInitialized, CodeAlreadyInitialized, CodePolicyMismatch, CodePolicyLocked, CodeTerminated:
		return codes.FailedPrecondition
	case CodeAnchorNotFound, CodeNotFound:
		return codes.NotFound
	case CodeReconstructionFailed, CodeThreadPoolFailed:
		return codes.Internal
	default:
		return codes.Unknown
	}
}
