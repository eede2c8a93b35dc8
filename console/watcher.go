package console

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"github.com/hupe1980/agentzero/intervention"
)

// ExitCommand typed at a prompt ends the session.
const ExitCommand = "exit"

// IsExit reports whether line is ExitCommand, ignoring case and surrounding
// whitespace.
func IsExit(line string) bool {
	return strings.EqualFold(strings.TrimSpace(line), ExitCommand)
}

// Watcher turns keystrokes typed while an agent streams into interventions.
//
// A letter or a space pauses the board and opens a prompt seeded with that
// key. Enter resumes the paused agent with the typed line as its
// intervention; an empty line resumes it unchanged. ExitCommand or Ctrl-C
// exits the board, which aborts the running delegation chain.
type Watcher struct {
	board   *intervention.Board
	input   *Input
	printer *Printer
}

// NewWatcher creates a Watcher.
func NewWatcher(board *intervention.Board, input *Input, printer *Printer) *Watcher {
	return &Watcher{board: board, input: input, printer: printer}
}

// Run consumes keystrokes until ctx ends or the input closes. Keys typed
// while nothing streams are dropped.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case key, ok := <-w.input.Keys():
			if !ok {
				return
			}

			if key == keyInterrupt {
				w.board.Exit()
				return
			}

			if !isTrigger(key) || !w.board.Pause() {
				continue
			}

			if !w.intervene(ctx, key) {
				return
			}
		}
	}
}

// intervene reads the intervention line for a paused board. It reports
// whether watching should continue.
func (w *Watcher) intervene(ctx context.Context, first rune) bool {
	w.printer.Prompt("User intervention ('" + ExitCommand + "' to leave, empty to continue):")

	prefix := string(first)
	if first == ' ' {
		prefix = ""
	}

	line, err := w.input.ReadLine(ctx, prefix)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		w.board.Resume("")
		return false
	case err != nil:
		w.board.Exit()
		return false
	}

	line = strings.TrimSpace(line)
	if IsExit(line) {
		w.board.Exit()
		return false
	}

	w.board.Resume(line)

	return true
}

func isTrigger(key rune) bool {
	return unicode.IsLetter(key) || key == ' '
}
