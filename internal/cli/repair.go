package cli

import (
	"context"

	flag "github.com/spf13/pflag"
)

// RepairCmd returns the repair command.
func RepairCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("repair", flag.ContinueOnError),
		Usage: "repair",
		Short: "Rewrite the data file from the catalog",
		Long: `Load the data file, dropping lines that cannot be read, and write it back.

Only works with on_parse_error "skip", since "abort" refuses to load such a file.`,
		Exec: func(_ context.Context, io *IO, args []string) error {
			if len(args) > 0 {
				return errUsage
			}

			return execRepair(io, a)
		},
	}
}

func execRepair(io *IO, a *app) error {
	lib, err := a.openLibrary(io, true)
	if err != nil {
		return err
	}

	defer func() { _ = lib.Close() }()

	dropped := len(lib.LoadIssues())

	err = lib.Repair()
	if err != nil {
		return err
	}

	io.Printf("wrote %d books to %s, dropped %d lines\n", lib.Len(), lib.Path(), dropped)

	return nil
}
