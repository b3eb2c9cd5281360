// rvm is the command-line interface to the register-based virtual machine and its
// two-pass assembler.
package main

import (
	"context"
	"os"

	"github.com/nicobert/rvm/internal/cli"
	"github.com/nicobert/rvm/internal/cli/cmd"
)

var commands = []cli.Command{
	cmd.Assembler(),
	cmd.Run(),
	cmd.Demo(),
}

func main() {
	result :=
		cli.New(context.Background()).
			WithLogger(os.Stderr).
			WithCommands(commands).
			WithHelp(cmd.Help(commands)).
			Execute(os.Args[1:])

	os.Exit(result)
}
