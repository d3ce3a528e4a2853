package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"golang.org/x/sys/unix"

	"github.com/calvinalkan/booklib/internal/fs"
)

const historyFileName = ".booklib_history"

// maxLineBytes bounds one line of piped menu input.
const maxLineBytes = 64 * 1024

var (
	// errAborted is returned by a prompter when the user presses Ctrl-C.
	errAborted     = errors.New("aborted")
	errLineTooLong = errors.New("input line too long")
)

// prompter reads one line of input after showing a prompt. It returns
// [io.EOF] when input ends and [errAborted] on Ctrl-C.
type prompter interface {
	Prompt(ctx context.Context, prompt string) (string, error)
	Close() error
}

// newPrompter returns a line editor when stdin is a terminal and a plain
// line reader otherwise.
func (a *app) newPrompter(io *IO) prompter {
	if f, ok := a.stdin.(*os.File); ok && isTerminal(f) && liner.TerminalSupported() {
		return newLinePrompter(a.fs, a.historyPath())
	}

	return newPlainPrompter(a.stdin, io)
}

// historyPath returns where the menu keeps its input history, or "" for none.
func (a *app) historyPath() string {
	if a.cfg.HistoryFile != "" {
		return a.cfg.HistoryFile
	}

	if home := a.env["HOME"]; home != "" {
		return filepath.Join(home, historyFileName)
	}

	return ""
}

func isTerminal(f *os.File) bool {
	_, err := unix.IoctlGetTermios(int(f.Fd()), ioctlReadTermios)

	return err == nil
}

// linePrompter wraps liner with history and completion of menu choices.
type linePrompter struct {
	state       *liner.State
	fs          fs.FS
	historyPath string
}

func newLinePrompter(fsys fs.FS, historyPath string) *linePrompter {
	p := &linePrompter{state: liner.NewLiner(), fs: fsys, historyPath: historyPath}

	p.state.SetCtrlCAborts(true)
	p.state.SetCompleter(completeChoice)

	if historyPath != "" {
		if data, err := fsys.ReadFile(historyPath); err == nil {
			_, _ = p.state.ReadHistory(bytes.NewReader(data))
		}
	}

	return p
}

func (p *linePrompter) Prompt(_ context.Context, prompt string) (string, error) {
	line, err := p.state.Prompt(prompt)
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", errAborted
		}

		return "", err
	}

	if strings.TrimSpace(line) != "" {
		p.state.AppendHistory(line)
	}

	return line, nil
}

// Close restores the terminal and saves the history.
func (p *linePrompter) Close() error {
	var buf bytes.Buffer

	_, histErr := p.state.WriteHistory(&buf)
	closeErr := p.state.Close()

	if p.historyPath == "" || histErr != nil {
		return closeErr
	}

	return errors.Join(closeErr, p.fs.WriteFileAtomic(p.historyPath, buf.Bytes(), 0o600))
}

type lineResult struct {
	text string
	err  error
}

// plainPrompter reads lines from a non-terminal reader. Reading happens on a
// separate goroutine so a cancelled context ends a Prompt that is waiting for
// input.
type plainPrompter struct {
	io    *IO
	lines chan lineResult
	done  chan struct{}
}

func newPlainPrompter(r io.Reader, o *IO) *plainPrompter {
	p := &plainPrompter{
		io:    o,
		lines: make(chan lineResult),
		done:  make(chan struct{}),
	}

	if r == nil {
		r = strings.NewReader("")
	}

	go p.read(r)

	return p
}

func (p *plainPrompter) read(r io.Reader) {
	br := bufio.NewReader(r)

	for {
		text, err := readLine(br)
		if err != nil && !errors.Is(err, errLineTooLong) {
			select {
			case p.lines <- lineResult{err: err}:
			case <-p.done:
			}

			return
		}

		select {
		case p.lines <- lineResult{text: text, err: err}:
		case <-p.done:
			return
		}
	}
}

// readLine reads one line without its line ending. A line longer than
// maxLineBytes is consumed whole and reported as [errLineTooLong].
func readLine(br *bufio.Reader) (string, error) {
	var (
		line    []byte
		tooLong bool
	)

	for {
		chunk, isPrefix, err := br.ReadLine()
		if err != nil {
			return "", err
		}

		if !tooLong {
			line = append(line, chunk...)
			tooLong = len(line) > maxLineBytes
		}

		if !isPrefix {
			break
		}
	}

	if tooLong {
		return "", fmt.Errorf("%w (limit %d bytes)", errLineTooLong, maxLineBytes)
	}

	return string(line), nil
}

func (p *plainPrompter) Prompt(ctx context.Context, prompt string) (string, error) {
	p.io.Printf("%s", prompt)

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res, ok := <-p.lines:
		if !ok {
			return "", io.EOF
		}

		if errors.Is(res.err, errLineTooLong) {
			return "", res.err
		}

		if res.err != nil {
			// Later prompts see EOF too.
			close(p.lines)

			return "", res.err
		}

		return res.text, nil
	}
}

func (p *plainPrompter) Close() error {
	close(p.done)

	return nil
}
