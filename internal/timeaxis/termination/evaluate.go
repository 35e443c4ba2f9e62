package termination

// checkFunc is one entry in the fixed evaluation order. The order of the
// slice below is the policy itself; replay correctness depends on it
// never changing.
type checkFunc func(cfg Config, ctx Context) bool

var checks = []struct {
	reason Reason
	check  checkFunc
}{
	{SafetyCap, func(cfg Config, ctx Context) bool {
		return cfg.SafetyCap > 0 && ctx.ElapsedSteps >= cfg.SafetyCap
	}},
	{StepLimit, func(cfg Config, ctx Context) bool {
		return cfg.StepLimit > 0 && ctx.ElapsedSteps >= cfg.StepLimit
	}},
	{RequestDrain, func(cfg Config, ctx Context) bool {
		return cfg.TerminateOnRequestDrain && ctx.PendingRequests == 0
	}},
	{GroupResolution, func(cfg Config, ctx Context) bool {
		return cfg.TerminateOnGroupResolution && ctx.TotalGroups > 0 && ctx.ResolvedGroups >= ctx.TotalGroups
	}},
	{ExternalSignal, func(cfg Config, ctx Context) bool {
		return cfg.RequiredExternalFlags != 0 && (ctx.ExternalFlags&cfg.RequiredExternalFlags) != 0
	}},
	{CustomCallbackReason, func(cfg Config, ctx Context) bool {
		if cfg.CustomCallback != nil {
			return cfg.CustomCallback(ctx)
		}
		if cfg.Script != nil {
			return cfg.Script.Evaluate(ctx.AsScriptContext())
		}
		return false
	}},
}

// Evaluate runs every check in the fixed order and returns the first
// matching reason, or None if no check matched.
func Evaluate(cfg Config, ctx Context) Reason {
	for _, c := range checks {
		if c.check(cfg, ctx) {
			return c.reason
		}
	}
	return None
}
