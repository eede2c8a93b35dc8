package tool

import (
	"errors"
	"time"

	"github.com/hupe1980/agentzero/core"
	"github.com/hupe1980/agentzero/logging"
)

// Handler implements one capability. body is the text between the markers,
// attrs the full attribute map of the opening tag (name included). An empty
// result is a valid answer.
type Handler func(tc *core.ToolContext, body string, attrs map[string]string) (string, error)

// Capability is a named entry point of a tool.
type Capability struct {
	Name    string
	Handler Handler
}

// NewFunctionTool exposes a plain Go function as a tool with a single
// "execute" capability.
//
// Example:
//
//	echo := NewFunctionTool(
//	  "echo",
//	  "Repeat the body back.",
//	  func(tc *core.ToolContext, body string, attrs map[string]string) (string, error) {
//	    return body, nil
//	  },
//	)
func NewFunctionTool(name, description string, fn Handler) *Namespace {
	return NewNamespace(name, description, Capability{Name: ExecuteCapability, Handler: fn})
}

// call invokes c and normalizes failures into *ToolError:
//
//	*ToolError (returned directly)  -> forwarded unchanged
//	other error                     -> *ToolError{Code: "EXECUTION_ERROR"}
func (c Capability) call(tc *core.ToolContext, tool string, body string, attrs map[string]string) (string, error) {
	start := time.Now()

	tc.LogDebug("tool.call.start", "tool", tool, "capability", c.Name, "agent", tc.AgentName())

	result, err := c.Handler(tc, body, attrs)

	logging.LogToolCall(tc.Logger(), tool, time.Since(start), err)

	if err != nil {
		var toolErr *ToolError
		if errors.As(err, &toolErr) {
			return "", toolErr
		}

		return "", &ToolError{
			Tool:    tool,
			Message: err.Error(),
			Code:    CodeExecution,
			Err:     err,
		}
	}

	return result, nil
}
