// Package axisdemo runs a minimal time axis engine for a fixed number
// of ticks and reports its termination reason and stats, exercising the
// public pkg/timeaxis API end to end.
package axisdemo

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/axisruntime/timeaxis/internal/platform/config"
	"github.com/axisruntime/timeaxis/pkg/timeaxis"
)

// Config holds configuration for the demo run.
type Config struct {
	Ticks     int
	StepLimit uint64
	SafetyCap uint64
	Threads   int
}

// envOverrides holds the subset of Config settable via environment
// variables; flags take precedence when both are supplied.
type envOverrides struct {
	Ticks     int    `env:"AXIS_DEMO_TICKS"`
	StepLimit uint64 `env:"AXIS_DEMO_STEP_LIMIT"`
	SafetyCap uint64 `env:"AXIS_DEMO_SAFETY_CAP"`
	Threads   int    `env:"AXIS_DEMO_THREADS"`
}

// ParseConfig parses flags into a Config, seeded with defaults from
// AXIS_DEMO_* environment variables when set.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Config{Ticks: 5, StepLimit: 5, SafetyCap: 1000, Threads: 0}

	var env envOverrides
	if err := config.ParseEnv(&env); err == nil {
		applyEnvOverrides(&cfg, env)
	}

	fs.IntVar(&cfg.Ticks, "ticks", cfg.Ticks, "number of ticks to run")
	fs.Uint64Var(&cfg.StepLimit, "step-limit", cfg.StepLimit, "termination step limit (0 disables)")
	fs.Uint64Var(&cfg.SafetyCap, "safety-cap", cfg.SafetyCap, "termination safety cap")
	fs.IntVar(&cfg.Threads, "threads", cfg.Threads, "worker pool thread count (0 selects host CPU count)")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config, env envOverrides) {
	if env.Ticks != 0 {
		cfg.Ticks = env.Ticks
	}
	if env.StepLimit != 0 {
		cfg.StepLimit = env.StepLimit
	}
	if env.SafetyCap != 0 {
		cfg.SafetyCap = env.SafetyCap
	}
	if env.Threads != 0 {
		cfg.Threads = env.Threads
	}
}

// Run constructs an axis, submits one request per tick against a
// FirstWriter group, drives it to completion, and writes a summary to out.
func Run(cfg Config, out io.Writer) error {
	if cfg.Ticks <= 0 {
		return errors.New("ticks must be greater than zero")
	}
	if out == nil {
		return errors.New("output is required")
	}

	axis, err := timeaxis.New(timeaxis.Config{
		Threads:        cfg.Threads,
		MaxAnchors:     8,
		AnchorInterval: 2,
		Termination: timeaxis.TerminationConfig{
			StepLimit: cfg.StepLimit,
			SafetyCap: cfg.SafetyCap,
		},
	})
	if err != nil {
		return fmt.Errorf("construct axis: %w", err)
	}

	group, err := axis.CreateConflictGroup(timeaxis.NewFirstWriterPolicy())
	if err != nil {
		return fmt.Errorf("create conflict group: %w", err)
	}

	ctx := context.Background()
	for i := 0; i < cfg.Ticks; i++ {
		slot := axis.CurrentSlot() + 1
		if _, err := axis.Submit(timeaxis.ChangeDesc{
			TargetSlot:    slot,
			ConflictGroup: group,
			Key:           timeaxis.Key{Primary: uint64(i)},
			Mutation:      timeaxis.MutationSet,
			Value:         uint64(i) * 10,
		}); err != nil {
			return fmt.Errorf("submit tick %d: %w", i, err)
		}

		reason, err := axis.Tick(ctx)
		if err != nil {
			return fmt.Errorf("tick %d: %w", i, err)
		}
		if reason != timeaxis.None {
			fmt.Fprintf(out, "terminated at slot %d: %v\n", axis.CurrentSlot(), reason)
			break
		}
	}

	stats := axis.GetStats()
	fmt.Fprintf(out, "slot=%d ticks=%d requests=%d conflicts=%d anchors=%d policy_hash=%016x\n",
		axis.CurrentSlot(), stats.TotalTicks, stats.TotalRequestsProcessed,
		stats.TotalConflictsResolved, stats.TotalAnchorsCreated, axis.TerminationPolicyHash())
	return nil
}
