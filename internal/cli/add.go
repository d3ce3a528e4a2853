package cli

import (
	"context"

	flag "github.com/spf13/pflag"
)

// AddCmd returns the add command.
func AddCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("add", flag.ContinueOnError),
		Usage: "add <id> <title> <author>",
		Short: "Add a book",
		Long: `Add a book to the catalog and rewrite the data file.

The id must be an integer not used by another book; negative ids are fine.
Title and author may not contain the configured delimiter or line breaks.`,
		Exec: func(_ context.Context, io *IO, args []string) error {
			return execAdd(io, a, args)
		},
	}
}

func execAdd(io *IO, a *app, args []string) error {
	if len(args) == 0 {
		return errIDRequired
	}

	if len(args) != 3 {
		return errUsage
	}

	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	lib, err := a.openLibrary(io, false)
	if err != nil {
		return err
	}

	defer func() { _ = lib.Close() }()

	b, err := lib.Add(id, args[1], args[2])
	if err != nil {
		return err
	}

	io.Printf("added %d\n", b.ID)

	return nil
}
