// accsim is the command-line interface to a simulated OpenACC accelerator
// host: a demo driver for the correspondence table in internal/corr and
// internal/accapi.
package main

import (
	"context"
	"os"

	"github.com/smoynes/goaccmem/internal/cli"
	"github.com/smoynes/goaccmem/internal/cli/cmd"
)

var commands = []cli.Command{
	cmd.Demo(),
}

// Entry point.
func main() {
	result :=
		cli.New(context.Background()).
			WithLogger(os.Stderr).
			WithCommands(commands).
			WithHelp(cmd.Help(commands)).
			Execute(os.Args[1:])

	os.Exit(result)
}
