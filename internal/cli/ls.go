package cli

import (
	"context"
	"slices"

	flag "github.com/spf13/pflag"
)

// LsCmd returns the ls command.
func LsCmd(a *app) *Command {
	fs := flag.NewFlagSet("ls", flag.ContinueOnError)
	fs.Bool("by-added", false, "List in the order books were added")
	fs.Bool("json", false, "Output as JSON")

	return &Command{
		Flags: fs,
		Usage: "ls [flags]",
		Short: "List books",
		Long:  "List all books sorted by title, or in the order they were added with --by-added.",
		Exec: func(_ context.Context, io *IO, args []string) error {
			if len(args) > 0 {
				return errUsage
			}

			return execLs(io, a, fs)
		},
	}
}

func execLs(io *IO, a *app, fs *flag.FlagSet) error {
	byAdded, _ := fs.GetBool("by-added")
	asJSON, _ := fs.GetBool("json")

	lib, err := a.openLibrary(io, false)
	if err != nil {
		return err
	}

	defer func() { _ = lib.Close() }()

	books := lib.Books()
	if byAdded {
		books = lib.Ledger()
	}

	return printBooks(io, slices.Collect(books), asJSON)
}
