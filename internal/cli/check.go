package cli

import (
	"context"
	"fmt"

	flag "github.com/spf13/pflag"
)

// CheckCmd returns the check command.
func CheckCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("check", flag.ContinueOnError),
		Usage: "check",
		Short: "Verify the data file",
		Long: `Load the data file and compare it with what the catalog would write.

Fails if lines were skipped while loading or the file differs from the
catalog's own encoding. Run 'booklib repair' to rewrite it.`,
		Exec: func(_ context.Context, io *IO, args []string) error {
			if len(args) > 0 {
				return errUsage
			}

			return execCheck(io, a)
		},
	}
}

func execCheck(io *IO, a *app) error {
	// Skipped lines are reported below, not as warnings.
	lib, err := a.openLibrary(io, true)
	if err != nil {
		return err
	}

	defer func() { _ = lib.Close() }()

	report, err := lib.Check()
	if err != nil {
		return err
	}

	io.Println("data_file=" + report.Path)
	io.Printf("exists=%t\n", report.FileExists)
	io.Printf("books=%d\n", report.Books)
	io.Printf("index_height=%d\n", report.Height)
	io.Printf("skipped=%d\n", report.Skipped)
	io.Printf("file_digest=%016x\n", report.FileDigest)
	io.Printf("catalog_digest=%016x\n", report.MemDigest)

	for _, issue := range lib.LoadIssues() {
		io.Println("skipped:", issue.Error())
	}

	if !report.InSync() {
		return fmt.Errorf("%w: %s", errOutOfSync, report.Path)
	}

	return nil
}
