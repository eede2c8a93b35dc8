// Command agentzero runs the agent control loop in a terminal.
//
//	agentzero chat                  # interactive session
//	agentzero run -m "list files"   # one-shot message, answer on stdout
//
// While an agent streams in an interactive session, typing a letter or a
// space pauses it and opens an intervention prompt.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
