package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/booklib/internal/catalog"
	"github.com/calvinalkan/booklib/internal/fs"
)

// app carries what every command needs besides its own arguments.
type app struct {
	cfg   *catalog.Config
	fs    fs.FS
	stdin io.Reader
	env   map[string]string
}

// Run is the main entry point. Returns exit code.
//
// Without a command, Run starts the interactive menu on stdin. A signal on
// sigCh (which may be nil) cancels the running command.
func Run(stdin io.Reader, out io.Writer, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal) int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	o := NewIO(out, errOut)

	globals, err := parseGlobalFlags(args)
	if err != nil {
		o.ErrPrintln("error:", err)
		o.ErrPrintln()
		o.ErrPrintln(usage(allCommands(&app{})))

		return 1
	}

	if globals.help {
		o.Println(usage(allCommands(&app{})))

		return 0
	}

	cfg, err := catalog.LoadConfig(catalog.LoadConfigInput{
		WorkDirOverride:  globals.workDir,
		ConfigPath:       globals.configPath,
		DataFileOverride: globals.dataFile,
		Env:              env,
	})
	if err != nil {
		o.ErrPrintln("error:", err)

		return 1
	}

	a := &app{cfg: &cfg, fs: fs.NewReal(), stdin: stdin, env: env}
	commands := allCommands(a)

	name := "shell"
	rest := globals.remaining

	if len(rest) > 0 {
		name, rest = rest[0], rest[1:]
	}

	if name == "help" {
		o.Println(usage(commands))

		return 0
	}

	cmd := findCommand(commands, name)
	if cmd == nil {
		o.ErrPrintln("error: unknown command:", name)
		o.ErrPrintln()
		o.ErrPrintln(usage(commands))

		return 1
	}

	code := cmd.Run(ctx, o, rest)

	if finish := o.Finish(); code == 0 {
		code = finish
	}

	return code
}

func allCommands(a *app) []*Command {
	return []*Command{
		ShellCmd(a),
		AddCmd(a),
		RemoveCmd(a),
		SearchCmd(a),
		ShowCmd(a),
		LsCmd(a),
		CheckCmd(a),
		RepairCmd(a),
		PrintConfigCmd(a),
	}
}

func findCommand(commands []*Command, name string) *Command {
	for _, cmd := range commands {
		if cmd.Name() == name {
			return cmd
		}
	}

	return nil
}

type globalFlags struct {
	workDir    string
	configPath string
	dataFile   string
	help       bool
	remaining  []string
}

// parseGlobalFlags parses flags up to the first positional argument, which
// is the command name. Everything after it belongs to the command.
func parseGlobalFlags(args []string) (globalFlags, error) {
	var flags globalFlags

	fs := flag.NewFlagSet("booklib", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SetInterspersed(false)

	fs.StringVarP(&flags.workDir, "cwd", "C", "", "Run as if started in `dir`")
	fs.StringVarP(&flags.configPath, "config", "c", "", "Use specified config `file`")
	fs.StringVar(&flags.dataFile, "data", "", "Use specified data `file`")
	fs.BoolVarP(&flags.help, "help", "h", false, "Show help")

	if len(args) > 0 {
		args = args[1:]
	}

	err := fs.Parse(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			flags.help = true

			return flags, nil
		}

		return globalFlags{}, err
	}

	for _, name := range []string{"cwd", "config", "data"} {
		v, _ := fs.GetString(name)
		if fs.Changed(name) && v == "" {
			return globalFlags{}, fmt.Errorf("%w: --%s", errEmptyValue, name)
		}
	}

	flags.remaining = fs.Args()

	return flags, nil
}

// openLibrary opens the catalog named by the config. Lines skipped while
// loading become warnings unless quiet is set.
func (a *app) openLibrary(o *IO, quiet bool) (*catalog.Library, error) {
	lib, err := catalog.Open(*a.cfg, a.fs)
	if err != nil {
		return nil, err
	}

	if !quiet {
		for _, issue := range lib.LoadIssues() {
			o.Warn(fmt.Sprintf("%s: skipped %v", lib.Path(), issue), "run 'booklib repair' to drop it")
		}
	}

	return lib, nil
}

// usage returns the global help text. Commands are listed when given.
func usage(commands []*Command) string {
	var sb strings.Builder

	sb.WriteString(`booklib - book catalog

Usage: booklib [options] [command] [args]

Without a command, booklib starts the interactive menu.

Options:
  -C, --cwd <dir>       Run as if started in <dir>
  -c, --config <file>   Use specified config file
      --data <file>     Use specified data file
  -h, --help            Show help`)

	if len(commands) > 0 {
		sb.WriteString("\n\nCommands:\n")

		for _, cmd := range commands {
			sb.WriteString(cmd.HelpLine())
			sb.WriteString("\n")
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}
