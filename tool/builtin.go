package tool

import (
	"strconv"
	"strings"

	"github.com/hupe1980/agentzero/core"
)

// Names of the control tools every agent understands.
const (
	ResponseToolName    = "response"
	SubordinateToolName = "call_subordinate"
)

const responseDescription = `Send your final answer to your user or superior and end the task.
The body is the answer.

<tool$ name="response">
The report is ready: ...
</tool$>`

const subordinateDescription = `Delegate a sub-task to a subordinate agent and wait for its answer.
The body is the message for the subordinate.
Set reset="true" to start with a fresh subordinate.

<tool$ name="call_subordinate" reset="true">
Find the three largest files in the project directory and list their sizes.
</tool$>`

// NewResponseTool returns the tool that hands the agent's final answer to its
// caller. The answer is the body, or the text attribute when the body is
// empty. It produces no tool output of its own.
func NewResponseTool() *Namespace {
	return NewFunctionTool(ResponseToolName, responseDescription,
		func(tc *core.ToolContext, body string, attrs map[string]string) (string, error) {
			caller, err := tc.Caller()
			if err != nil {
				return "", err
			}

			text := body
			if text == "" {
				text = attrs["text"]
			}

			caller.Respond(text)

			return "", nil
		})
}

// NewSubordinateTool returns the delegation tool. The message is the body, or
// the message attribute when the body is empty; reset="true" discards any
// kept subordinate first.
func NewSubordinateTool() *Namespace {
	return NewFunctionTool(SubordinateToolName, subordinateDescription,
		func(tc *core.ToolContext, body string, attrs map[string]string) (string, error) {
			caller, err := tc.Caller()
			if err != nil {
				return "", err
			}

			msg := body
			if msg == "" {
				msg = attrs["message"]
			}

			return caller.CallSubordinate(tc.RunContext(), msg, parseBool(attrs["reset"]))
		})
}

// Builtins returns fresh instances of the control tools.
func Builtins() []Tool {
	return []Tool{NewResponseTool(), NewSubordinateTool()}
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	return err == nil && b
}
