package cli

import (
	"context"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/booklib/internal/catalog"
)

// SearchCmd returns the search command.
func SearchCmd(a *app) *Command {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	fs.Bool("all", false, "Show every book with this title")
	fs.Bool("json", false, "Output as JSON")

	return &Command{
		Flags: fs,
		Usage: "search <title> [flags]",
		Short: "Find a book by exact title",
		Long: `Find a book whose title matches exactly (case-sensitive).

When several books share a title only one is shown; pass --all to list them all.`,
		Exec: func(_ context.Context, io *IO, args []string) error {
			return execSearch(io, a, fs, args)
		},
	}
}

func execSearch(io *IO, a *app, fs *flag.FlagSet, args []string) error {
	if len(args) == 0 {
		return errTitleRequired
	}

	if len(args) > 1 {
		return errUsage
	}

	all, _ := fs.GetBool("all")
	asJSON, _ := fs.GetBool("json")
	title := args[0]

	lib, err := a.openLibrary(io, false)
	if err != nil {
		return err
	}

	defer func() { _ = lib.Close() }()

	if all {
		books := lib.SearchAll(title)
		if len(books) == 0 {
			return fmt.Errorf("%w: title %q", catalog.ErrNotFound, title)
		}

		return printBooks(io, books, asJSON)
	}

	b, err := lib.Search(title)
	if err != nil {
		return err
	}

	if asJSON {
		return printJSON(io, b)
	}

	io.Println(b.String())

	return nil
}
