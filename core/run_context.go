package core

import (
	"context"

	"github.com/hupe1980/agentzero/intervention"
	"github.com/hupe1980/agentzero/logging"
)

// RunContext carries execution state for one agent processing one inbound
// message. It aggregates:
//   - The ambient cancellation Context
//   - The InvocationID shared by the whole delegation tree of a root call
//   - The Agent identity and its Depth in the delegation tree
//   - The intervention Board, threaded explicitly from the root caller down
//     through every nested delegate call
//
// A RunContext is never shared between concurrently running agents; nested
// agents receive a child via NewChildContext.
type RunContext struct {
	Context      context.Context
	InvocationID string
	Agent        AgentInfo
	Depth        int
	Board        *intervention.Board

	*loggerAdapter
}

// NewRunContext constructs a root RunContext. A nil board disables operator
// intervention; a nil logger discards logs.
func NewRunContext(
	ctx context.Context,
	invocationID string,
	agent AgentInfo,
	board *intervention.Board,
	logger logging.Logger,
) *RunContext {
	if invocationID == "" {
		invocationID = NewID()
	}

	return &RunContext{
		Context:       ctx,
		InvocationID:  invocationID,
		Agent:         agent,
		Board:         board,
		loggerAdapter: newLoggerAdapter(logger, invocationID),
	}
}

// Done returns a channel closed when the underlying context is cancelled.
func (rc *RunContext) Done() <-chan struct{} { return rc.Context.Done() }

// Err returns the cancellation error (if any) from the underlying context.
func (rc *RunContext) Err() error { return rc.Context.Err() }

// GetAgentName returns the logical agent name for this run.
func (rc *RunContext) GetAgentName() string { return rc.Agent.Name }

// WithAgent returns a copy bound to a different agent at the same depth.
func (rc *RunContext) WithAgent(agent AgentInfo) *RunContext {
	c := *rc
	c.Agent = agent
	return &c
}

// WithContext returns a copy bound to ctx, typically a deadline-scoped child
// of the current context.
func (rc *RunContext) WithContext(ctx context.Context) *RunContext {
	c := *rc
	c.Context = ctx
	return &c
}

// NewChildContext derives the context for a subordinate agent one level deeper
// in the delegation tree. The board, invocation id and logger are inherited.
func (rc *RunContext) NewChildContext(agent AgentInfo) *RunContext {
	return &RunContext{
		Context:       rc.Context,
		InvocationID:  rc.InvocationID,
		Agent:         agent,
		Depth:         rc.Depth + 1,
		Board:         rc.Board,
		loggerAdapter: rc.loggerAdapter,
	}
}

// WaitIfPaused blocks while the operator holds the board paused.
func (rc *RunContext) WaitIfPaused() error {
	return rc.Board.Wait(rc.Context)
}
