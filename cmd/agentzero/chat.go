package main

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/hupe1980/agentzero/config"
	"github.com/hupe1980/agentzero/console"
	"github.com/hupe1980/agentzero/intervention"
	"github.com/spf13/cobra"
)

func newChatCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive session with the root agent",
		Long: `Start an interactive session with the root agent.

While an agent streams, type a letter or a space to pause it and write an
intervention. Enter resumes the agent with the message, an empty line resumes
it unchanged and 'exit' or Ctrl-C ends the session.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}

			return runChat(cmd.Context(), cfg, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
}

func runChat(ctx context.Context, cfg *config.Config, in io.Reader, stdout, stderr io.Writer) error {
	raw := false
	if in == os.Stdin {
		restore, isRaw, err := console.Terminal()
		if err != nil {
			return err
		}
		defer restore()
		raw = isRaw
	}

	out, logOut := stdout, stderr
	var echo io.Writer
	if raw {
		out = console.NewCRLFWriter(stdout)
		logOut = console.NewCRLFWriter(stderr)
		echo = out
	}

	s, err := newSession(cfg, out, logOut)
	if err != nil {
		return err
	}

	input := console.NewInput(in, echo)

	for {
		s.printer.Prompt("User message ('" + console.ExitCommand + "' to leave):")

		line, err := input.ReadLine(ctx, "")
		switch {
		case errors.Is(err, io.EOF), errors.Is(err, console.ErrInterrupted):
			return nil
		case err != nil:
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if console.IsExit(line) {
			return nil
		}
		if line == "" {
			continue
		}

		if exit := s.process(ctx, input, raw, line); exit {
			return nil
		}
	}
}

// process runs one message on the root agent. With watch set, keystrokes
// typed during the run become interventions. It reports whether the operator
// ended the session.
func (s *session) process(ctx context.Context, input *console.Input, watch bool, msg string) bool {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	if watch {
		w := console.NewWatcher(s.runner.Board(), input, s.printer)

		wg.Add(1)
		go func() {
			defer wg.Done()
			w.Run(runCtx)
		}()
	}

	answer, err := s.runner.Run(runCtx, msg)
	cancel()
	wg.Wait()

	switch {
	case errors.Is(err, intervention.ErrExit):
		return true
	case err != nil:
		s.printer.Errorf("%v", err)
		return ctx.Err() != nil
	}

	s.printer.Answer(s.runner.Agent().Info(), answer)

	return false
}
