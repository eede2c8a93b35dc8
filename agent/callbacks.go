package agent

import "github.com/hupe1980/agentzero/core"

// Callbacks receives narration of an agent's progress. Hooks run
// synchronously on the control loop and must not block.
//
// A delegation tree shares one Callbacks value; the AgentInfo argument tells
// the agents apart.
type Callbacks interface {
	// OnGenerationStart fires once the rate limiter admitted a round.
	OnGenerationStart(agent core.AgentInfo)
	// OnStream fires for every streamed text delta.
	OnStream(agent core.AgentInfo, chunk string)
	// OnGenerationEnd fires when a stream completes or is cut by an intervention.
	OnGenerationEnd(agent core.AgentInfo, text string)
	// OnRepeat fires when identical output was replaced by the repeat notice.
	OnRepeat(agent core.AgentInfo, notice string)
	// OnToolUse fires before a tool request is dispatched.
	OnToolUse(agent core.AgentInfo, req core.ToolRequest)
	// OnToolResponse fires with the result of a dispatched tool.
	OnToolResponse(agent core.AgentInfo, tool string, response string)
	// OnToolNotFound fires with the notice sent back for an unknown tool.
	OnToolNotFound(agent core.AgentInfo, notice string)
	// OnIntervention fires when an operator message was injected.
	OnIntervention(agent core.AgentInfo, message string)
	// OnError fires with the error notice forwarded to the model.
	OnError(agent core.AgentInfo, notice string)
}

// NopCallbacks ignores every hook. Embed it to implement a subset.
type NopCallbacks struct{}

func (NopCallbacks) OnGenerationStart(core.AgentInfo)              {}
func (NopCallbacks) OnStream(core.AgentInfo, string)               {}
func (NopCallbacks) OnGenerationEnd(core.AgentInfo, string)        {}
func (NopCallbacks) OnRepeat(core.AgentInfo, string)               {}
func (NopCallbacks) OnToolUse(core.AgentInfo, core.ToolRequest)    {}
func (NopCallbacks) OnToolResponse(core.AgentInfo, string, string) {}
func (NopCallbacks) OnToolNotFound(core.AgentInfo, string)         {}
func (NopCallbacks) OnIntervention(core.AgentInfo, string)         {}
func (NopCallbacks) OnError(core.AgentInfo, string)                {}
