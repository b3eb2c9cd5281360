package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/nicobert/rvm/internal/log"
)

func TestDemoRunPrintsSum(tt *testing.T) {
	tt.Parallel()

	d := &demo{}

	var out bytes.Buffer
	logger := log.NewFormattedLogger(&out)

	code := d.Run(context.Background(), nil, &out, logger)
	if code != 0 {
		tt.Fatalf("Run() = %d, want 0", code)
	}

	if !strings.Contains(out.String(), "5") {
		tt.Errorf("output = %q, want it to contain the sum 5", out.String())
	}
}

func TestDemoProgramEncodesExpectedLength(tt *testing.T) {
	tt.Parallel()

	code := demoProgram()

	want := 0
	want += 3 + 8 // movc r1, 2
	want += 3 + 8 // movc r2, 3
	want += 1 + 2 // iadd r1, r2
	want += 1 + 1 + 1 + 1 // mov print, r1
	want += 3 + 8 // movc int, PRINT_UNSIGNED
	want += 1     // intr
	want += 3 + 8 // movc exit, 0
	want += 1     // exit

	if len(code) != want {
		tt.Errorf("len(code) = %d, want %d", len(code), want)
	}
}
