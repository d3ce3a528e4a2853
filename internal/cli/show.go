package cli

import (
	"context"

	flag "github.com/spf13/pflag"
)

// ShowCmd returns the show command.
func ShowCmd(a *app) *Command {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	fs.Bool("json", false, "Output as JSON")

	return &Command{
		Flags: fs,
		Usage: "show <id> [flags]",
		Short: "Show a book by id",
		Exec: func(_ context.Context, io *IO, args []string) error {
			return execShow(io, a, fs, args)
		},
	}
}

func execShow(io *IO, a *app, fs *flag.FlagSet, args []string) error {
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

	b, err := lib.Get(id)
	if err != nil {
		return err
	}

	if asJSON, _ := fs.GetBool("json"); asJSON {
		return printJSON(io, b)
	}

	io.Println(b.String())

	return nil
}
