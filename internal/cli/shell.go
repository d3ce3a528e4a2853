package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/booklib/internal/catalog"
)

// ShellCmd returns the shell command, which is also what runs when booklib
// is started without a command.
func ShellCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("shell", flag.ContinueOnError),
		Usage: "shell",
		Short: "Interactive menu (default)",
		Long: `Run the interactive menu.

Choices can be given by number or by name: add, remove, search, list, exit.
The menu ends on choice 5, end of input or Ctrl-C.`,
		Exec: func(ctx context.Context, io *IO, args []string) error {
			if len(args) > 0 {
				return errUsage
			}

			return execShell(ctx, io, a)
		},
	}
}

const (
	choiceAdd    = "1"
	choiceRemove = "2"
	choiceSearch = "3"
	choiceList   = "4"
	choiceExit   = "5"
)

var choiceAliases = map[string]string{
	"add":    choiceAdd,
	"remove": choiceRemove,
	"rm":     choiceRemove,
	"search": choiceSearch,
	"list":   choiceList,
	"ls":     choiceList,
	"exit":   choiceExit,
	"quit":   choiceExit,
	"q":      choiceExit,
}

var choiceWords = []string{"add", "remove", "search", "list", "exit"}

func normalizeChoice(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := choiceAliases[s]; ok {
		return c
	}

	return s
}

func completeChoice(line string) []string {
	prefix := strings.ToLower(line)

	var out []string

	for _, w := range choiceWords {
		if strings.HasPrefix(w, prefix) {
			out = append(out, w)
		}
	}

	return out
}

type shell struct {
	io  *IO
	lib *catalog.Library
	in  prompter
}

func execShell(ctx context.Context, io *IO, a *app) error {
	lib, err := a.openLibrary(io, false)
	if err != nil {
		return err
	}

	defer func() { _ = lib.Close() }()

	in := a.newPrompter(io)

	defer func() {
		closeErr := in.Close()
		if closeErr != nil {
			io.ErrPrintln("error: saving history:", closeErr)
		}
	}()

	s := &shell{io: io, lib: lib, in: in}

	return s.run(ctx)
}

func (s *shell) run(ctx context.Context) error {
	for {
		s.printMenu()

		choice, err := s.in.Prompt(ctx, "Enter your choice: ")
		if err != nil {
			if isEndOfInput(err) {
				return s.stop(err)
			}

			// A read failure closes the input, so the next prompt ends the menu.
			s.io.ErrPrintln("error:", err)

			continue
		}

		switch normalizeChoice(choice) {
		case choiceAdd:
			err = s.add(ctx)
		case choiceRemove:
			err = s.remove(ctx)
		case choiceSearch:
			err = s.search(ctx)
		case choiceList:
			s.list()
		case choiceExit:
			s.io.Println("Exiting the system.")

			return nil
		default:
			s.io.Println("Invalid choice! Please try again.")
		}

		if err != nil {
			if isEndOfInput(err) {
				return s.stop(err)
			}

			// The library rolls back failed changes, so the menu can go on.
			s.io.ErrPrintln("error:", err)
		}
	}
}

func (s *shell) printMenu() {
	s.io.Println()
	s.io.Println("Library Management System")
	s.io.Println("1. Add Book")
	s.io.Println("2. Remove Book")
	s.io.Println("3. Search Book by Title")
	s.io.Println("4. Display All Books")
	s.io.Println("5. Exit")
}

// stop ends the menu. End of input and Ctrl-C are a normal exit.
func (s *shell) stop(err error) error {
	if !isEndOfInput(err) {
		return err
	}

	s.io.Println()
	s.io.Println("Exiting the system.")

	return nil
}

func isEndOfInput(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, errAborted) || errors.Is(err, context.Canceled)
}

func (s *shell) readID(ctx context.Context, prompt string) (int, error) {
	line, err := s.in.Prompt(ctx, prompt)
	if err != nil {
		return 0, err
	}

	return parseID(line)
}

func (s *shell) add(ctx context.Context) error {
	id, err := s.readID(ctx, "Enter Book ID: ")
	if err != nil {
		return err
	}

	title, err := s.in.Prompt(ctx, "Enter Book Title: ")
	if err != nil {
		return err
	}

	author, err := s.in.Prompt(ctx, "Enter Book Author: ")
	if err != nil {
		return err
	}

	_, err = s.lib.Add(id, title, author)
	if err != nil {
		return fmt.Errorf("adding book %d: %w", id, err)
	}

	s.io.Println("Book added successfully.")

	return nil
}

func (s *shell) remove(ctx context.Context) error {
	id, err := s.readID(ctx, "Enter Book ID to remove: ")
	if err != nil {
		return err
	}

	_, err = s.lib.Remove(id)
	if errors.Is(err, catalog.ErrNotFound) {
		s.io.Printf("Book with ID %d not found.\n", id)

		return nil
	}

	if err != nil {
		return fmt.Errorf("removing book %d: %w", id, err)
	}

	s.io.Println("Book removed successfully.")

	return nil
}

func (s *shell) search(ctx context.Context) error {
	title, err := s.in.Prompt(ctx, "Enter Book Title to search: ")
	if err != nil {
		return err
	}

	b, err := s.lib.Search(title)
	if errors.Is(err, catalog.ErrNotFound) {
		s.io.Println("Book not found.")

		return nil
	}

	if err != nil {
		return err
	}

	s.io.Printf("Book Found! ID: %d, Title: %s, Author: %s\n", b.ID, b.Title, b.Author)

	return nil
}

func (s *shell) list() {
	s.io.Println("Books in Library (Sorted by Title):")

	for b := range s.lib.Books() {
		s.io.Println(b.String())
	}
}
