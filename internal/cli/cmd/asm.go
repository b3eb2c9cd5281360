package cmd

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nicobert/rvm/internal/asm"
	"github.com/nicobert/rvm/internal/cli"
	"github.com/nicobert/rvm/internal/log"
	"github.com/nicobert/rvm/internal/monitor"
)

// Assembler is the command that translates source into a bytecode container.
//
//	rvm asm -o a.out file.asm
func Assembler() cli.Command {
	return new(assembler)
}

type assembler struct {
	debug      bool
	output     string
	searchPath stringList
}

type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ":") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func (assembler) Description() string {
	return "assemble source into a bytecode container"
}

func (assembler) Usage(out io.Writer) error {
	_, err := fmt.Fprintln(out, `asm [-o file.out] [-L dir]... [-debug] file.asm

Assemble source, following .include directives, into a bytecode container.`)

	return err
}

func (a *assembler) FlagSet() *cli.FlagSet {
	fs := flag.NewFlagSet("asm", flag.ExitOnError)
	fs.BoolVar(&a.debug, "debug", false, "include source debug info in the container")
	fs.StringVar(&a.output, "o", "a.out", "output `filename`")
	fs.Var(&a.searchPath, "L", "additional include search `directory` (repeatable)")

	return fs
}

// Run assembles the single input file named by args[0] and writes the resulting
// container to -o.
func (a *assembler) Run(ctx context.Context, args []string, stdout io.Writer, logger *log.Logger) int {
	if len(args) != 1 {
		logger.Error("asm requires exactly one input file")
		return 1
	}

	assembler := asm.NewAssembler(asm.Options{
		SearchPath: a.searchPath,
		Debug:      a.debug,
		Reader:     monitor.Reader{},
	})

	container, errs := assembler.Assemble(args[0])
	if errs.HasErrors() {
		logger.Error("assemble failed", "err", errs.Error())
		return 1
	}

	out, err := os.Create(a.output)
	if err != nil {
		logger.Error("open failed", "out", a.output, "err", err)
		return 1
	}
	defer out.Close()

	wire, err := container.Marshal()
	if err != nil {
		logger.Error("encode failed", "err", err)
		return 1
	}

	buf := bufio.NewWriter(out)

	n, err := buf.Write(wire)
	if err != nil {
		logger.Error("write failed", "out", a.output, "err", err)
		return 1
	}

	if err := buf.Flush(); err != nil {
		logger.Error("flush failed", "out", a.output, "err", err)
		return 1
	}

	logger.Debug("assembled", "out", a.output, "bytes", n, "entry", container.Entry)

	return 0
}
