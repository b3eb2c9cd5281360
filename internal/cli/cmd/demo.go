package cmd

import (
	"context"
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/nicobert/rvm/internal/cli"
	"github.com/nicobert/rvm/internal/host"
	"github.com/nicobert/rvm/internal/log"
	"github.com/nicobert/rvm/internal/vm"
)

// Demo is a self-contained smoke-test program: it computes 2+3 in registers and
// prints the sum, built directly as bytecode bytes rather than assembled from source.
func Demo() cli.Command {
	return new(demo)
}

type demo struct {
	debug bool
}

func (demo) Description() string {
	return "run a built-in add-and-print demo program"
}

func (demo) Usage(out io.Writer) error {
	_, err := fmt.Fprintln(out, `demo [-debug]

Run a built-in "add and print" program on the virtual machine.`)

	return err
}

func (d *demo) FlagSet() *cli.FlagSet {
	fs := flag.NewFlagSet("demo", flag.ExitOnError)
	fs.BoolVar(&d.debug, "debug", false, "enable debug logging")

	return fs
}

func (d *demo) Run(ctx context.Context, args []string, out io.Writer, logger *log.Logger) int {
	if d.debug {
		log.LogLevel.Set(log.Debug)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	logger.Info("assembling demo program")

	code := demoProgram()

	hostServices, stdio, err := host.NewDefault(host.DefaultConfig{Stdout: out})
	if err != nil {
		logger.Error("host init failed", "err", err)
		return 1
	}
	defer stdio.Flush()

	mem := vm.NewMemory(4096)
	proc := vm.New(mem, vm.WithLogger(logger), vm.WithHost(hostServices))

	if err := mem.StoreBytes(0, code); err != nil {
		logger.Error("load failed", "err", err)
		return 1
	}

	logger.Info("running demo program")

	if err := proc.Run(ctx); err != nil {
		logger.Error("program fault", "err", err)
		return int(vm.GenericError)
	}

	stdio.Flush()
	fmt.Fprintln(out)

	logger.Info("demo completed", "exit", proc.Regs[vm.Exit])

	return int(proc.Regs[vm.Exit])
}

// demoProgram hand-assembles:
//
//	movc 8, r1, 2
//	movc 8, r2, 3
//	iadd r1, r2
//	mov 8, print, r1
//	movc 8, int, PRINT_UNSIGNED
//	intr
//	movc 8, exit, 0
//	exit
func demoProgram() []byte {
	var b []byte

	b = appendMovConst(b, vm.R1, 2)
	b = appendMovConst(b, vm.R2, 3)

	b = append(b, byte(vm.Iadd), byte(vm.R1), byte(vm.R2))

	b = append(b, byte(vm.MovRR), byte(vm.Size8), byte(vm.Print), byte(vm.R1))

	b = appendMovConst(b, vm.Int, vm.Word(vm.PrintUnsigned))

	b = append(b, byte(vm.Intr))

	b = appendMovConst(b, vm.Exit, 0)

	b = append(b, byte(vm.Exit))

	return b
}

// appendMovConst appends a MovRC instruction: op | size | reg | imm[8].
func appendMovConst(b []byte, reg vm.Register, v vm.Word) []byte {
	b = append(b, byte(vm.MovRC), byte(vm.Size8), byte(reg))

	imm := make([]byte, 8)
	binary.LittleEndian.PutUint64(imm, uint64(v))

	return append(b, imm...)
}
