package termination

// Reason identifies which termination check matched, in evaluation order.
type Reason int

const (
	None Reason = iota
	SafetyCap
	StepLimit
	RequestDrain
	GroupResolution
	ExternalSignal
	CustomCallbackReason
)

// String renders the reason for logs and the public API.
func (r Reason) String() string {
	switch r {
	case None:
		return "None"
	case SafetyCap:
		return "SafetyCap"
	case StepLimit:
		return "StepLimit"
	case RequestDrain:
		return "RequestDrain"
	case GroupResolution:
		return "GroupResolution"
	case ExternalSignal:
		return "ExternalSignal"
	case CustomCallbackReason:
		return "CustomCallback"
	default:
		return "Unknown"
	}
}

// Lifecycle is the two-state machine every axis moves through exactly
// once: Active until a termination check matches, Terminated afterward.
type Lifecycle int

const (
	Active Lifecycle = iota
	Terminated
)

// Context is the snapshot of evaluation inputs for a single tick. Its
// field semantics are fixed: elapsed_steps increments by exactly one
// per completed tick and never resets; pending_requests and the group
// counters are this tick's post-resolution snapshot; external_flags is
// an atomic read at evaluation time.
type Context struct {
	ElapsedSteps    uint64
	PendingRequests uint64
	ResolvedGroups  uint64
	TotalGroups     uint64
	ExternalFlags   uint32
}

// AsScriptContext flattens Context into the integer map a scripted
// CustomCallback evaluates against.
func (c Context) AsScriptContext() map[string]int64 {
	return map[string]int64{
		"elapsed_steps":    int64(c.ElapsedSteps),
		"pending_requests": int64(c.PendingRequests),
		"resolved_groups":  int64(c.ResolvedGroups),
		"total_groups":     int64(c.TotalGroups),
		"external_flags":   int64(c.ExternalFlags),
	}
}
