package core

import (
	"maps"

	"github.com/google/uuid"
)

// Role tags the origin of a Message.
type Role string

const (
	// RoleUser marks content from the human operator, a superior agent or the
	// framework itself (tool responses, notices).
	RoleUser Role = "user"
	// RoleAgent marks content generated by the model on behalf of the agent.
	RoleAgent Role = "assistant"
)

// String returns the role tag.
func (r Role) String() string { return string(r) }

// Message is one turn of a conversation transcript.
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// UserMessage constructs a user-origin message.
func UserMessage(text string) Message { return Message{Role: RoleUser, Text: text} }

// AgentMessage constructs an agent-origin message.
func AgentMessage(text string) Message { return Message{Role: RoleAgent, Text: text} }

// ToolRequest is a tool invocation extracted from generated text. It is built
// fresh per parse and consumed immediately by dispatch.
type ToolRequest struct {
	// Name selects the tool namespace. It may be empty when the markup carried
	// no name attribute, in which case dispatch reports the tool as not found.
	Name string
	// Attributes holds every quoted key/value pair of the opening tag,
	// including name. When a key repeats, the last occurrence wins.
	Attributes map[string]string
	// Body is the text between the markers with surrounding whitespace trimmed.
	Body string
}

// Attribute returns a named attribute.
func (r ToolRequest) Attribute(key string) (string, bool) {
	v, ok := r.Attributes[key]
	return v, ok
}

// Params returns the attributes except name, the set narrated to the operator
// next to the body.
func (r ToolRequest) Params() map[string]string {
	params := maps.Clone(r.Attributes)
	if params == nil {
		return map[string]string{}
	}
	delete(params, "name")
	return params
}

// NewID generates a new unique identifier for invocations.
func NewID() string { return uuid.NewString() }
