package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/smoynes/goaccmem/internal/accapi"
	"github.com/smoynes/goaccmem/internal/cli"
	"github.com/smoynes/goaccmem/internal/driver"
	"github.com/smoynes/goaccmem/internal/log"
)

// Demo is a demonstration command.
func Demo() cli.Command {
	return new(demo)
}

type demo struct {
	debug  bool
	quiet  bool
	shared bool
}

func (demo) Description() string {
	return "run a scripted correspondence-table session against a simulated device"
}

func (d demo) Usage(out io.Writer) error {
	var err error
	_, err = fmt.Fprintln(out, `
demo [ -debug | -quiet | -shared ]

Allocate a device, map a buffer and a pointer that attaches to it, update
it, and tear everything back down, logging each correspondence-table
transition.`)

	return err
}

func (d *demo) FlagSet() *cli.FlagSet {
	fs := flag.NewFlagSet("demo", flag.ExitOnError)

	fs.BoolVar(&d.debug, "debug", false, "enable debug logging")
	fs.BoolVar(&d.quiet, "quiet", false, "enable quiet output, summary only")
	fs.BoolVar(&d.shared, "shared", false, "use a shared-memory device instead of a discrete one")

	return fs
}

func (d demo) Run(ctx context.Context, args []string, out io.Writer, _ *log.Logger) int {
	if d.quiet {
		log.LogLevel.Set(log.Error)
	}

	if d.debug {
		log.LogLevel.Set(log.Debug)
	}

	logger := log.NewFormattedLogger(os.Stdout)
	log.SetDefault(logger)

	logger.Info("initializing simulated device")

	rt := accapi.NewRuntime()

	if d.shared {
		rt.AddDevice(0, driver.NewShared())
	} else {
		rt.AddDevice(0, driver.NewSim(1<<20, "demo"))
	}

	arr := make([]byte, 256)
	ptr := make([]byte, 8)

	logger.Info("acc_copyin(arr)")

	devArr := rt.Copyin(0, arr)

	logger.Info("acc_copyin(ptr)")
	rt.Copyin(0, ptr)

	logger.Info("acc_attach(ptr -> arr)")

	if err := rt.Attach(0, ptr, arr); err != nil {
		logger.Error("attach failed", "err", err)
		return 1
	}

	logger.Info("acc_update_device(arr)")
	rt.UpdateDevice(0, arr)

	logger.Info("acc_detach(ptr)")

	if err := rt.Detach(0, ptr); err != nil {
		logger.Error("detach failed", "err", err)
		return 1
	}

	logger.Info("acc_copyout(arr)")
	rt.Copyout(0, arr)

	logger.Info("acc_delete(ptr)")
	rt.Delete(0, ptr)

	dump, err := rt.Dump(0)
	if err != nil {
		logger.Error("dump failed", "err", err)
		return 1
	}

	fmt.Fprintf(out, "device 0 entries at %s (device addr %s): %s\n", "quiescence", devArr, dump)
	logger.Info("demo completed")

	return 0
}
