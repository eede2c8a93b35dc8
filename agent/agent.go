package agent

import (
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/agentzero/core"
	"github.com/hupe1980/agentzero/history"
	"github.com/hupe1980/agentzero/intervention"
	"github.com/hupe1980/agentzero/model"
	"github.com/hupe1980/agentzero/prompts"
	"github.com/hupe1980/agentzero/ratelimit"
	"github.com/hupe1980/agentzero/tool"
)

// ErrMaxDepth is wrapped by the MAX_DEPTH tool error returned when a
// delegation would exceed Options.MaxDepth.
var ErrMaxDepth = errors.New("exceeded max delegation depth")

// Options configures an Agent and every subordinate it creates.
type Options struct {
	// Limiter throttles generation requests. One limiter is shared by the
	// whole delegation tree; nil disables throttling.
	Limiter *ratelimit.Limiter
	// Estimator turns the formatted prompt into the limiter's cost unit.
	Estimator ratelimit.Estimator
	// Registry resolves tool names. Defaults to the built-in control tools.
	Registry *tool.Registry
	// Prompts renders the preamble and notices.
	Prompts prompts.Loader
	// System overrides the agent.system.md template.
	System Instruction
	// Tools overrides the agent.tools.md template.
	Tools Instruction
	// Callbacks receives narration. Defaults to NopCallbacks.
	Callbacks Callbacks

	// KeepHead and KeepTail bound the history (see history.Options).
	KeepHead int
	KeepTail int

	// MaxDepth bounds the delegation tree below the root; 0 means unbounded.
	MaxDepth int
	// MaxRounds bounds generation rounds per inbound message; 0 means unbounded.
	MaxRounds int
	// KeepSubordinate keeps a subordinate (and its history) across delegating
	// calls until a reset="true" request. By default it is released when the
	// delegating call returns.
	KeepSubordinate bool

	// Stream requests token streaming from the model.
	Stream bool
	// GenerateTimeout bounds a single model call; 0 means no bound.
	GenerateTimeout time.Duration
	// ToolTimeout bounds the context handed to a single tool call; 0 means no
	// bound. Handlers that ignore their context are not interrupted.
	ToolTimeout time.Duration
}

// Agent is one instance of the control loop. It owns its history, its
// intervention channel and at most one subordinate; it references its
// superior without owning it.
//
// An Agent processes one inbound message at a time and is not safe for
// concurrent use.
type Agent struct {
	info     core.AgentInfo
	llm      model.Model
	opts     Options
	history  *history.History
	channel  *intervention.Channel
	superior *Agent

	subordinate *Agent

	lastMessage string
	answer      string
	answered    bool
	intervened  bool
}

// New creates the root agent ("Agent 0").
func New(llm model.Model, optFns ...func(o *Options)) *Agent {
	opts := Options{
		Estimator: ratelimit.CharEstimator{},
		KeepHead:  5,
		KeepTail:  10,
		MaxDepth:  5,
		Stream:    true,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Estimator == nil {
		opts.Estimator = ratelimit.CharEstimator{}
	}
	if opts.Registry == nil {
		opts.Registry = tool.NewRegistry(tool.Builtins()...)
	}
	if opts.Prompts == nil {
		opts.Prompts = prompts.NewDefaultLoader()
	}
	if opts.Callbacks == nil {
		opts.Callbacks = NopCallbacks{}
	}

	return newAgent(0, llm, opts, nil)
}

func newAgent(number int, llm model.Model, opts Options, superior *Agent) *Agent {
	a := &Agent{
		info:     core.AgentInfo{Number: number, Name: fmt.Sprintf("Agent %d", number)},
		llm:      llm,
		opts:     opts,
		channel:  intervention.NewChannel(),
		superior: superior,
	}

	a.history = history.New(func(o *history.Options) {
		o.KeepHead = opts.KeepHead
		o.KeepTail = opts.KeepTail
		o.Notice = func() string {
			return a.render(prompts.Cleanup, nil, "[earlier messages were removed to save space]")
		}
	})

	return a
}

// Info implements core.AgentHandle.
func (a *Agent) Info() core.AgentInfo { return a.info }

// Name returns the display name ("Agent N").
func (a *Agent) Name() string { return a.info.Name }

// Superior returns the delegating agent, or nil for the root.
func (a *Agent) Superior() *Agent { return a.superior }

// Subordinate returns the currently held subordinate, or nil.
func (a *Agent) Subordinate() *Agent { return a.subordinate }

// History returns a copy of the transcript.
func (a *Agent) History() []core.Message { return a.history.Messages() }

// Registry returns the tool registry shared by the delegation tree.
func (a *Agent) Registry() *tool.Registry { return a.opts.Registry }

// Intervene posts msg as this agent's pending intervention. It is picked up
// at the next suspension point of the running loop.
func (a *Agent) Intervene(msg string) { a.channel.Post(msg) }

// Reset drops the transcript, the repeat baseline and any subordinate.
func (a *Agent) Reset() {
	a.history.Reset()
	a.lastMessage = ""
	a.answer, a.answered = "", false
	a.subordinate = nil
}

// Respond implements core.AgentHandle. The message becomes the answer
// returned by ProcessMessage once the current round finishes without an
// intervention.
func (a *Agent) Respond(message string) {
	a.answer = message
	a.answered = true
}

// CallSubordinate implements core.AgentHandle. It runs message through the
// subordinate one level below a, creating it first when needed, and blocks
// until the subordinate answers.
func (a *Agent) CallSubordinate(rc *core.RunContext, message string, reset bool) (string, error) {
	depth := rc.Depth + 1
	if a.opts.MaxDepth > 0 && depth > a.opts.MaxDepth {
		rc.LogWarn("agent.delegate.max_depth", "agent", a.info.Name, "depth", depth, "max_depth", a.opts.MaxDepth)

		return "", &tool.ToolError{
			Tool:    tool.SubordinateToolName,
			Message: fmt.Sprintf("delegation depth %d exceeds limit %d", depth, a.opts.MaxDepth),
			Code:    tool.CodeMaxDepth,
			Err:     ErrMaxDepth,
		}
	}

	if reset || a.subordinate == nil {
		a.subordinate = newAgent(a.info.Number+1, a.llm, a.opts, a)
	}
	sub := a.subordinate

	if !a.opts.KeepSubordinate {
		defer func() { a.subordinate = nil }()
	}

	rc.LogDebug("agent.delegate.start", "agent", a.info.Name, "subordinate", sub.info.Name, "reset", reset)

	return sub.ProcessMessage(rc.NewChildContext(sub.info), message)
}

func (a *Agent) render(name string, vars map[string]any, fallback string) string {
	out, err := a.opts.Prompts.Render(name, vars)
	if err != nil {
		return fallback
	}
	return out
}
