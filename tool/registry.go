package tool

import (
	"fmt"
	"strings"
	"sync"

	"github.com/hupe1980/agentzero/core"
)

// Registry is the table mapping tool names to tools. It is populated at
// startup and shared by every agent of a delegation tree. Registry is safe
// for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
}

// NewRegistry creates a registry holding tools. It panics on an invalid or
// duplicate name, like MustRegister.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: map[string]Tool{}}
	for _, t := range tools {
		r.MustRegister(t)
	}
	return r
}

// Register adds t. Names must be non-empty and unique.
func (r *Registry) Register(t Tool) error {
	name := t.Name()
	if name == "" {
		return fmt.Errorf("register tool: empty name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("register tool %q: already registered", name)
	}

	r.tools[name] = t
	r.order = append(r.order, name)

	return nil
}

// MustRegister is Register that panics on error.
func (r *Registry) MustRegister(t Tool) {
	if err := r.Register(t); err != nil {
		panic(err)
	}
}

// Lookup returns the tool registered under name.
func (r *Registry) Lookup(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Resolve maps name to the capability dispatch would invoke. A name with no
// tool, or a tool without capabilities, yields a NOT_FOUND ToolError wrapping
// ErrToolNotFound.
func (r *Registry) Resolve(name string) (Capability, error) {
	t, ok := r.Lookup(name)
	if !ok {
		return Capability{}, notFound(name)
	}

	c, ok := Resolve(t)
	if !ok {
		return Capability{}, notFound(name)
	}

	return c, nil
}

// Dispatch resolves req.Name and invokes the capability with the request body
// and attributes. The call is synchronous and not time-boxed beyond whatever
// the handler does with tc.Context().
func (r *Registry) Dispatch(tc *core.ToolContext, req core.ToolRequest) (string, error) {
	c, err := r.Resolve(req.Name)
	if err != nil {
		tc.LogWarn("tool.resolve.not_found", "tool", req.Name)
		return "", err
	}

	attrs := req.Attributes
	if attrs == nil {
		attrs = map[string]string{}
	}

	return c.call(tc, req.Name, req.Body, attrs)
}

// Describe renders a markdown section per tool with a description, in
// registration order.
func (r *Registry) Describe() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var b strings.Builder
	for _, name := range r.order {
		desc := strings.TrimSpace(r.tools[name].Description())
		if desc == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("## " + name + "\n" + desc)
	}

	return b.String()
}

func notFound(name string) *ToolError {
	return &ToolError{
		Tool:    name,
		Message: "no capability registered",
		Code:    CodeNotFound,
		Err:     ErrToolNotFound,
	}
}
