package termination

import "testing"

func TestEvaluateNoneWhenNothingMatches(t *testing.T) {
	cfg := Config{}
	if got := Evaluate(cfg, Context{}); got != None {
		t.Fatalf("expected None, got %v", got)
	}
}

func TestEvaluateSafetyCapOverridesAll(t *testing.T) {
	cfg := Config{SafetyCap: 5, StepLimit: 1000}
	ctx := Context{ElapsedSteps: 5}
	if got := Evaluate(cfg, ctx); got != SafetyCap {
		t.Fatalf("expected SafetyCap, got %v", got)
	}
}

func TestEvaluateStepLimit(t *testing.T) {
	cfg := Config{StepLimit: 3, SafetyCap: 10000}
	if got := Evaluate(cfg, Context{ElapsedSteps: 3}); got != StepLimit {
		t.Fatalf("expected StepLimit, got %v", got)
	}
	if got := Evaluate(cfg, Context{ElapsedSteps: 2}); got != None {
		t.Fatalf("expected None before the limit, got %v", got)
	}
}

func TestEvaluateRequestDrain(t *testing.T) {
	cfg := Config{TerminateOnRequestDrain: true, SafetyCap: 10000}
	if got := Evaluate(cfg, Context{PendingRequests: 0}); got != RequestDrain {
		t.Fatalf("expected RequestDrain, got %v", got)
	}
	if got := Evaluate(cfg, Context{PendingRequests: 1}); got != None {
		t.Fatalf("expected None while requests remain, got %v", got)
	}
}

func TestEvaluateGroupResolution(t *testing.T) {
	cfg := Config{TerminateOnGroupResolution: true, SafetyCap: 10000}
	ctx := Context{TotalGroups: 3, ResolvedGroups: 3}
	if got := Evaluate(cfg, ctx); got != GroupResolution {
		t.Fatalf("expected GroupResolution, got %v", got)
	}
	if got := Evaluate(cfg, Context{TotalGroups: 0}); got != None {
		t.Fatalf("expected None with zero observed groups, got %v", got)
	}
}

func TestEvaluateExternalSignal(t *testing.T) {
	cfg := Config{RequiredExternalFlags: ForceCommit, SafetyCap: 10000}
	if got := Evaluate(cfg, Context{ExternalFlags: ForceCommit}); got != ExternalSignal {
		t.Fatalf("expected ExternalSignal, got %v", got)
	}
	if got := Evaluate(cfg, Context{ExternalFlags: 0}); got != None {
		t.Fatalf("expected None without the flag, got %v", got)
	}
}

func TestEvaluateCustomCallback(t *testing.T) {
	cfg := Config{
		SafetyCap:      10000,
		CustomCallback: func(ctx Context) bool { return ctx.ElapsedSteps == 42 },
	}
	if got := Evaluate(cfg, Context{ElapsedSteps: 42}); got != CustomCallbackReason {
		t.Fatalf("expected CustomCallback, got %v", got)
	}
	if got := Evaluate(cfg, Context{ElapsedSteps: 1}); got != None {
		t.Fatalf("expected None, got %v", got)
	}
}

func TestEvaluateOrderSafetyCapBeforeStepLimit(t *testing.T) {
	cfg := Config{SafetyCap: 1, StepLimit: 1}
	if got := Evaluate(cfg, Context{ElapsedSteps: 1}); got != SafetyCap {
		t.Fatalf("expected SafetyCap to win the tie over StepLimit, got %v", got)
	}
}

func TestPolicyHashDeterministic(t *testing.T) {
	a := Config{StepLimit: 3, SafetyCap: 100}
	b := Config{StepLimit: 3, SafetyCap: 100}
	if a.PolicyHash() != b.PolicyHash() {
		t.Fatal("expected identical configs to hash identically")
	}
}

func TestPolicyHashChangesWithAnyField(t *testing.T) {
	base := Config{StepLimit: 3, SafetyCap: 100}
	variants := []Config{
		{StepLimit: 4, SafetyCap: 100},
		{StepLimit: 3, SafetyCap: 200},
		{StepLimit: 3, SafetyCap: 100, TerminateOnRequestDrain: true},
		{StepLimit: 3, SafetyCap: 100, TerminateOnGroupResolution: true},
		{StepLimit: 3, SafetyCap: 100, RequiredExternalFlags: ForceCommit},
		{StepLimit: 3, SafetyCap: 100, CustomCallback: func(Context) bool { return false }},
	}
	baseHash := base.PolicyHash()
	for i, v := range variants {
		if v.PolicyHash() == baseHash {
			t.Fatalf("variant %d expected to change the policy hash", i)
		}
	}
}

func TestPolicyHashIgnoresCallbackIdentity(t *testing.T) {
	a := Config{CustomCallback: func(Context) bool { return true }}
	b := Config{CustomCallback: func(Context) bool { return false }}
	if a.PolicyHash() != b.PolicyHash() {
		t.Fatal("expected the policy hash to depend only on callback presence, not identity")
	}
}
