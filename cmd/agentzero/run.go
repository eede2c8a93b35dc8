package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

func newRunCmd(flags *globalFlags) *cobra.Command {
	var (
		message string
		quiet   bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process a single message and print the answer",
		Long: `Process a single message and print the root agent's answer on stdout.

Narration and logs go to stderr; --quiet drops the narration.`,
		Example: `  agentzero run -m "How many files are in the current directory?"
  agentzero run --provider anthropic -m "Summarize README.md" --quiet`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			narration := cmd.ErrOrStderr()
			if quiet {
				narration = io.Discard
			}

			s, err := newSession(cfg, narration, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			answer, err := s.runner.Run(ctx, message)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), answer)

			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "message for the root agent")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "print only the answer")
	_ = cmd.MarkFlagRequired("message")

	return cmd
}
