package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/nicobert/rvm/internal/cli"
	"github.com/nicobert/rvm/internal/log"
)

type help struct {
	cmd []cli.Command
}

var _ cli.Command = (*help)(nil)

func (help) Description() string {
	return "display help for commands"
}

func (h help) FlagSet() *cli.FlagSet {
	return flag.NewFlagSet("help", flag.ExitOnError)
}

func (h help) Run(_ context.Context, args []string, out io.Writer, _ *log.Logger) int {
	if len(args) == 1 {
		for _, cmd := range h.cmd {
			if args[0] == cmd.FlagSet().Name() {
				h.printCommandHelp(out, cmd)
				return 0
			}
		}
	}

	if err := h.Usage(out); err != nil {
		return 1
	}

	return 0
}

func (h *help) Usage(out io.Writer) error {
	_, err := fmt.Fprintln(out, `
rvm is a register-based virtual machine and assembler.

Usage:

        rvm <command> [option]... [arg]...

Commands:`)
	if err != nil {
		return err
	}

	for _, cmd := range h.cmd {
		fs := cmd.FlagSet()
		fmt.Fprintf(out, "  %-20s %s\n", fs.Name(), cmd.Description())
	}

	fmt.Fprintf(out, "  %-20s %s\n", h.FlagSet().Name(), h.Description())
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Use `rvm help <command>` to get help for a command.")

	return nil
}

func (h *help) printCommandHelp(out io.Writer, cmd cli.Command) {
	_ = cmd.FlagSet().Parse(nil)

	fmt.Fprint(out, "Usage:\n\n        rvm ")

	if err := cmd.Usage(out); err != nil {
		return
	}

	fmt.Fprintln(out, "\nOptions:")
	cmd.FlagSet().PrintDefaults()
}

// Help constructs the help command, which knows how to describe every other
// registered command.
func Help(cmd []cli.Command) *help {
	return &help{cmd: cmd}
}
