package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/nicobert/rvm/internal/cli"
)

func TestHelpUsageListsCommands(tt *testing.T) {
	tt.Parallel()

	h := Help([]cli.Command{Assembler(), Run(), Demo()})

	var out bytes.Buffer

	code := h.Run(context.Background(), nil, &out, nil)
	if code != 0 {
		tt.Fatalf("Run() = %d, want 0", code)
	}

	for _, name := range []string{"asm", "run", "demo", "help"} {
		if !strings.Contains(out.String(), name) {
			tt.Errorf("usage output missing command %q:\n%s", name, out.String())
		}
	}
}

func TestHelpRunSpecificCommand(tt *testing.T) {
	tt.Parallel()

	h := Help([]cli.Command{Assembler(), Run(), Demo()})

	var out bytes.Buffer

	code := h.Run(context.Background(), []string{"asm"}, &out, nil)
	if code != 0 {
		tt.Fatalf("Run() = %d, want 0", code)
	}

	if !strings.Contains(out.String(), "Assemble source") {
		tt.Errorf("expected asm's detailed usage, got:\n%s", out.String())
	}
}
