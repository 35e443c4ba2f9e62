package main

import (
	"context"
	"flag"
	"os"

	"github.com/axisruntime/timeaxis/internal/platform/config"
	"github.com/axisruntime/timeaxis/internal/platform/telemetry"
	"github.com/axisruntime/timeaxis/internal/tools/axisdemo"
)

func main() {
	ctx := context.Background()
	shutdown, err := telemetry.Setup(ctx, "timeaxis")
	if err != nil {
		config.Exitf("setup telemetry: %v", err)
	}
	defer shutdown(ctx)

	cfg, err := axisdemo.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	if err := axisdemo.Run(cfg, os.Stdout); err != nil {
		config.Exitf("run axis: %v", err)
	}
}
