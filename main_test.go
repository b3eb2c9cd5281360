package main_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/nicobert/rvm/internal/cli"
	"github.com/nicobert/rvm/internal/cli/cmd"
	"github.com/nicobert/rvm/internal/log"
)

func TestCommandsRegisterDistinctNames(tt *testing.T) {
	tt.Parallel()

	commands := []cli.Command{
		cmd.Assembler(),
		cmd.Run(),
		cmd.Demo(),
	}

	seen := map[string]bool{}
	for _, c := range commands {
		name := c.FlagSet().Name()
		if seen[name] {
			tt.Errorf("duplicate command name %q", name)
		}
		seen[name] = true
	}

	for _, want := range []string{"asm", "run", "demo"} {
		if !seen[want] {
			tt.Errorf("missing command %q", want)
		}
	}
}

func TestDemoCommandRunsToCompletion(tt *testing.T) {
	tt.Parallel()

	commands := []cli.Command{
		cmd.Assembler(),
		cmd.Run(),
		cmd.Demo(),
	}

	var out bytes.Buffer
	logger := log.NewFormattedLogger(&out)

	code := cmd.Demo().Run(context.Background(), nil, &out, logger)
	if code != 0 {
		tt.Fatalf("demo Run() = %d, want 0", code)
	}

	_ = commands
}
