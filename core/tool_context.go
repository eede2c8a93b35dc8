package core

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentzero/logging"
)

// ToolContext provides the surface a tool capability sees while it runs: the
// run it belongs to, the request that triggered it and a handle to the calling
// agent for control tools (respond, delegate).
type ToolContext struct {
	runCtx  *RunContext
	caller  AgentHandle
	request ToolRequest

	*loggerAdapter
}

// NewToolContext constructs a tool context bound to a parent RunContext.
func NewToolContext(runCtx *RunContext, caller AgentHandle, req ToolRequest) *ToolContext {
	return &ToolContext{
		runCtx:        runCtx,
		caller:        caller,
		request:       req,
		loggerAdapter: newLoggerAdapter(runCtx.Logger(), ""),
	}
}

// Context returns the context associated with the tool invocation.
func (tc *ToolContext) Context() context.Context { return tc.runCtx.Context }

// InvocationID returns the id of the root invocation.
func (tc *ToolContext) InvocationID() string { return tc.runCtx.InvocationID }

// Logger returns the logger associated with the tool invocation.
func (tc *ToolContext) Logger() logging.Logger { return tc.loggerAdapter.Logger() }

// RunContext returns the run the tool was dispatched from.
func (tc *ToolContext) RunContext() *RunContext { return tc.runCtx }

// Request returns the parsed tool request.
func (tc *ToolContext) Request() ToolRequest { return tc.request }

// ToolName returns the requested tool name.
func (tc *ToolContext) ToolName() string { return tc.request.Name }

// AgentName returns the name of the agent that dispatched the tool.
func (tc *ToolContext) AgentName() string { return tc.runCtx.Agent.Name }

// Caller returns the handle of the dispatching agent. It errors when the
// context was built without one (for example in isolated tool tests).
func (tc *ToolContext) Caller() (AgentHandle, error) {
	if tc.caller == nil {
		return nil, fmt.Errorf("tool %q: no calling agent bound to context", tc.request.Name)
	}
	return tc.caller, nil
}
