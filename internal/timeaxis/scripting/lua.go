// Package scripting embeds a sandboxed Lua VM so conflict resolution and
// termination checks can be driven by a user-supplied script instead of a
// compiled callback. Each invocation runs in a freshly loaded VM with only
// the base, table, string and math libraries opened; no io, os or package
// library is ever registered, so a script cannot touch the filesystem,
// spawn processes or observe wall-clock time.
package scripting

import (
	"fmt"

	lua "github.com/Shopify/go-lua"

	"github.com/axisruntime/timeaxis/internal/platform/errors"
)

// Candidate is one contending change offered to a resolve() script.
type Candidate struct {
	RequestID uint64
	Priority  int32
	Value     uint64
}

// Policy wraps a Lua source that defines a resolve(candidates) function.
// resolve receives an array of candidate tables ({request_id, priority,
// value}, 1-indexed) and must return the 1-based index of the winner.
type Policy struct {
	source string
}

// NewPolicy compiles nothing eagerly; the source is parsed fresh on every
// call so a script cannot retain state across resolutions.
func NewPolicy(source string) *Policy {
	return &Policy{source: source}
}

// Resolve runs resolve(candidates) and returns the winning candidate's
// index into candidates. On any script error it falls back to the first
// writer, i.e. index 0.
func (p *Policy) Resolve(candidates []Candidate) (int, error) {
	if len(candidates) == 0 {
		return 0, errors.New(errors.CodeInvalidParameter, "resolve requires at least one candidate")
	}

	state := lua.NewState()
	openSandbox(state)

	if err := lua.DoString(state, p.source); err != nil {
		return 0, nil // fall back to first writer
	}

	state.Global("resolve")
	if state.TypeOf(-1) != lua.TypeFunction {
		state.Pop(1)
		return 0, nil
	}

	state.NewTable()
	for i, c := range candidates {
		state.NewTable()
		state.PushInteger(int(c.RequestID))
		state.SetField(-2, "request_id")
		state.PushInteger(int(c.Priority))
		state.SetField(-2, "priority")
		state.PushInteger(int(c.Value))
		state.SetField(-2, "value")
		state.RawSetInt(-2, i+1)
	}

	if err := state.ProtectedCall(1, 1, 0); err != nil {
		return 0, nil
	}

	winner, ok := state.ToInteger(-1)
	state.Pop(1)
	if !ok || winner < 1 || winner > len(candidates) {
		return 0, nil
	}
	return winner - 1, nil
}

// TerminationCallback wraps a Lua source defining a terminate(context)
// function returning a boolean. It is used by the CustomCallback
// termination check.
type TerminationCallback struct {
	source string
}

// NewTerminationCallback constructs a scripted termination check.
func NewTerminationCallback(source string) *TerminationCallback {
	return &TerminationCallback{source: source}
}

// Evaluate runs terminate(context) with the given key/value fields
// flattened into a Lua table. A script error or non-boolean return
// evaluates to false, never true: a broken script must never force
// termination.
func (t *TerminationCallback) Evaluate(context map[string]int64) bool {
	state := lua.NewState()
	openSandbox(state)

	if err := lua.DoString(state, t.source); err != nil {
		return false
	}

	state.Global("terminate")
	if state.TypeOf(-1) != lua.TypeFunction {
		state.Pop(1)
		return false
	}

	state.NewTable()
	for k, v := range context {
		state.PushInteger(int(v))
		state.SetField(-2, k)
	}

	if err := state.ProtectedCall(1, 1, 0); err != nil {
		return false
	}
	result := state.ToBoolean(-1)
	state.Pop(1)
	return result
}

// openSandbox registers only the libraries a deterministic scoring or
// predicate function needs: base, table, string and math. It never opens
// io, os or package, and never registers os.time or os.clock equivalents.
func openSandbox(state *lua.State) {
	lua.BaseOpen(state)
	lua.TableOpen(state)
	lua.StringOpen(state)
	lua.MathOpen(state)
}

// Validate performs a syntax-only load of source, returning an error that
// identifies the script without executing any of it.
func Validate(source string) error {
	state := lua.NewState()
	if err := lua.LoadString(state, source); err != nil {
		return fmt.Errorf("scripting: %w", err)
	}
	return nil
}
