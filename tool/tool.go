// Package tool implements the registry and dispatcher agents use to run the
// tools a model requests through embedded markup.
//
// A tool is a named namespace holding one or more capabilities. Dispatch
// resolves a name to exactly one capability: the one called "execute" when
// present, otherwise the first capability the tool registered. The tool body
// is passed as the primary argument and the full attribute map as named
// inputs. A capability may return text or nothing; nothing is an empty result.
package tool

import (
	"errors"
	"fmt"
)

// ExecuteCapability is the conventional name of a tool's default capability.
const ExecuteCapability = "execute"

// Error codes carried by ToolError.
const (
	CodeNotFound  = "NOT_FOUND"
	CodeExecution = "EXECUTION_ERROR"
	CodeMaxDepth  = "MAX_DEPTH"
)

// ErrToolNotFound is wrapped by the ToolError returned when a name resolves
// to no capability.
var ErrToolNotFound = errors.New("tool not found")

// Tool is a named namespace of capabilities.
type Tool interface {
	// Name returns the identifier models use in the name attribute.
	Name() string

	// Description is shown to the model in the tools prompt. It may be empty.
	Description() string

	// Capabilities returns the callable entry points in registration order.
	Capabilities() []Capability
}

// ToolError represents errors that occur during tool resolution or execution.
type ToolError struct {
	Tool    string `json:"tool"`    // Name of the tool that failed
	Message string `json:"message"` // Error message
	Code    string `json:"code"`    // Error code for categorization
	Err     error  `json:"-"`
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// Unwrap returns the underlying cause.
func (e *ToolError) Unwrap() error { return e.Err }

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{
		Tool:    tool,
		Message: message,
		Code:    code,
	}
}

// IsNotFound reports whether err is a resolution failure.
func IsNotFound(err error) bool { return errors.Is(err, ErrToolNotFound) }

// Namespace is the stock Tool implementation: a name, a description and an
// ordered list of capabilities.
type Namespace struct {
	name        string
	description string
	caps        []Capability
}

// NewNamespace creates a tool from explicit capabilities.
func NewNamespace(name, description string, caps ...Capability) *Namespace {
	return &Namespace{
		name:        name,
		description: description,
		caps:        caps,
	}
}

// Name implements Tool.
func (n *Namespace) Name() string { return n.name }

// Description implements Tool.
func (n *Namespace) Description() string { return n.description }

// Capabilities implements Tool.
func (n *Namespace) Capabilities() []Capability {
	out := make([]Capability, len(n.caps))
	copy(out, n.caps)
	return out
}

// Resolve picks the capability dispatch invokes for t.
func Resolve(t Tool) (Capability, bool) {
	caps := t.Capabilities()
	for _, c := range caps {
		if c.Name == ExecuteCapability && c.Handler != nil {
			return c, true
		}
	}
	for _, c := range caps {
		if c.Handler != nil {
			return c, true
		}
	}
	return Capability{}, false
}
