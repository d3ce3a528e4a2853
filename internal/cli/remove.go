package cli

import (
	"context"

	flag "github.com/spf13/pflag"
)

// RemoveCmd returns the rm command.
func RemoveCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("rm", flag.ContinueOnError),
		Usage: "rm <id>",
		Short: "Remove a book",
		Long:  "Remove the book with the given id and rewrite the data file.",
		Exec: func(_ context.Context, io *IO, args []string) error {
			return execRemove(io, a, args)
		},
	}
}

func execRemove(io *IO, a *app, args []string) error {
	if len(args) == 0 {
		return errIDRequired
	}

	if len(args) > 1 {
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

	_, err = lib.Remove(id)
	if err != nil {
		return err
	}

	io.Printf("removed %d\n", id)

	return nil
}
