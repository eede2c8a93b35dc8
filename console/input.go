package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/term"
)

// ErrInterrupted is returned by ReadLine when the operator pressed Ctrl-C.
var ErrInterrupted = errors.New("interrupted")

const (
	keyInterrupt = 3 // Ctrl-C
	keyEOF       = 4 // Ctrl-D
	keyBackspace = 8
	keyDelete    = 127
)

// Input pumps keystrokes from a reader into a channel so that the line
// prompt and the intervention Watcher can share one terminal. Characters are
// echoed by ReadLine; the terminal is expected to be in raw mode.
type Input struct {
	keys chan rune
	echo io.Writer

	mu  sync.Mutex
	err error
}

// NewInput starts reading r. Typed characters are echoed to echo, which may
// be nil when the terminal echoes by itself.
func NewInput(r io.Reader, echo io.Writer) *Input {
	if echo == nil {
		echo = io.Discard
	}

	in := &Input{keys: make(chan rune), echo: echo}

	go in.pump(bufio.NewReader(r))

	return in
}

func (in *Input) pump(r *bufio.Reader) {
	defer close(in.keys)

	for {
		key, _, err := r.ReadRune()
		if err != nil {
			in.mu.Lock()
			in.err = err
			in.mu.Unlock()
			return
		}
		in.keys <- key
	}
}

// Keys returns the keystroke channel. It is closed when the reader fails.
func (in *Input) Keys() <-chan rune { return in.keys }

// Err returns the error that ended the reader, if any.
func (in *Input) Err() error {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.err
}

// ReadLine collects keystrokes up to Enter and returns the line without the
// terminator. prefix is treated as already typed and echoed first. Backspace
// edits the line; Ctrl-C yields ErrInterrupted and Ctrl-D on an empty line
// io.EOF.
func (in *Input) ReadLine(ctx context.Context, prefix string) (string, error) {
	line := []rune(prefix)
	fmt.Fprint(in.echo, prefix)

	for {
		select {
		case <-ctx.Done():
			return string(line), ctx.Err()
		case key, ok := <-in.keys:
			if !ok {
				if len(line) > 0 {
					return string(line), nil
				}
				if err := in.Err(); err != nil && !errors.Is(err, io.EOF) {
					return "", err
				}
				return "", io.EOF
			}

			switch key {
			case '\r', '\n':
				fmt.Fprint(in.echo, "\n")
				return string(line), nil
			case keyInterrupt:
				fmt.Fprint(in.echo, "\n")
				return "", ErrInterrupted
			case keyEOF:
				if len(line) == 0 {
					return "", io.EOF
				}
			case keyBackspace, keyDelete:
				if len(line) > 0 {
					line = line[:len(line)-1]
					fmt.Fprint(in.echo, "\b \b")
				}
			default:
				if unicode.IsPrint(key) || key == '\t' {
					line = append(line, key)
					fmt.Fprint(in.echo, string(key))
				}
			}
		}
	}
}

// Terminal puts stdin into raw mode when it is a terminal. The returned
// restore function is a no-op otherwise. raw reports whether raw mode is
// active, in which case output must go through NewCRLFWriter.
func Terminal() (restore func(), raw bool, err error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return func() {}, false, nil
	}

	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, false, fmt.Errorf("set terminal raw mode: %w", err)
	}

	return func() { _ = term.Restore(fd, state) }, true, nil
}

// crlfWriter translates "\n" into "\r\n"; raw mode disables the terminal's
// own translation.
type crlfWriter struct {
	w io.Writer
}

// NewCRLFWriter wraps w for output to a raw-mode terminal.
func NewCRLFWriter(w io.Writer) io.Writer { return &crlfWriter{w: w} }

func (c *crlfWriter) Write(p []byte) (int, error) {
	s := strings.ReplaceAll(string(p), "\r\n", "\n")
	if _, err := io.WriteString(c.w, strings.ReplaceAll(s, "\n", "\r\n")); err != nil {
		return 0, err
	}
	return len(p), nil
}
