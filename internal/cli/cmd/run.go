package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/nicobert/rvm/internal/cli"
	"github.com/nicobert/rvm/internal/encoding"
	"github.com/nicobert/rvm/internal/host"
	"github.com/nicobert/rvm/internal/log"
	"github.com/nicobert/rvm/internal/vm"
)

// Run is the command that loads a bytecode container and executes it.
//
//	rvm run [-stack bytes] a.out
func Run() cli.Command {
	return &runner{memSize: 1 << 20, stackSize: 1 << 16}
}

type runner struct {
	verbose   bool
	memSize   int
	stackSize int
	diskPath  string
	fsRoot    string
}

func (*runner) Description() string {
	return "run a bytecode container"
}

func (*runner) Usage(out io.Writer) error {
	_, err := fmt.Fprintln(out, `run [-v] [-stack bytes] [-mem bytes] a.out

Load and execute a bytecode container. The process exit code is the value of
the exit register when the program halts.`)

	return err
}

func (r *runner) FlagSet() *cli.FlagSet {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	fs.BoolVar(&r.verbose, "v", false, "enable debug logging")
	fs.IntVar(&r.memSize, "mem", r.memSize, "memory size in bytes")
	fs.IntVar(&r.stackSize, "stack", r.stackSize, "stack size in bytes, counted from the top of memory")
	fs.StringVar(&r.diskPath, "disk", "", "backing file for disk interrupts")
	fs.StringVar(&r.fsRoot, "fsroot", "", "sandbox root directory for filesystem interrupts")

	return fs
}

// Run loads args[0]'s container and executes it to completion.
func (r *runner) Run(ctx context.Context, args []string, stdout io.Writer, logger *log.Logger) int {
	if r.verbose {
		log.LogLevel.Set(log.Debug)
	}

	if len(args) != 1 {
		logger.Error("run requires exactly one bytecode file")
		return 1
	}

	raw, err := os.ReadFile(args[0])
	if err != nil {
		logger.Error("read failed", "file", args[0], "err", err)
		return 1
	}

	container, err := encoding.Unmarshal(raw)
	if err != nil {
		logger.Error("decode failed", "file", args[0], "err", err)
		return 1
	}

	hostServices, stdio, err := host.NewDefault(host.DefaultConfig{
		Stdout:   stdout,
		Stdin:    os.Stdin,
		DiskPath: r.diskPath,
		FSRoot:   r.fsRoot,
	})
	if err != nil {
		logger.Error("host init failed", "err", err)
		return 1
	}
	defer stdio.Flush()

	mem := vm.NewMemory(r.memSize)
	proc := vm.New(mem,
		vm.WithLogger(logger),
		vm.WithHost(hostServices),
		vm.WithStackLimit(vm.Word(r.memSize)),
	)

	loader := vm.NewLoader(proc)

	n, err := loader.Load(container)
	if err != nil {
		logger.Error("load failed", "err", err)
		return 1
	}

	if r.stackSize < 0 || r.stackSize > r.memSize-n {
		logger.Error("stack does not fit above the program image", "stack", r.stackSize, "mem", r.memSize, "image", n)
		return 1
	}

	// The stack occupies the top stackSize bytes of memory and grows upward to the limit.
	stackBase := vm.Word(r.memSize - r.stackSize)
	proc.Regs[vm.Sbp] = stackBase
	proc.Regs[vm.Stp] = stackBase

	logger.Debug("loaded program", "file", args[0], "bytes", n, "entry", container.Entry)

	if err := proc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("program fault", "err", err)
		return int(vm.GenericError)
	}

	return int(proc.Regs[vm.Exit])
}
