package core

// AgentInfo carries identifying details about an agent used in contexts and logs.
// Number is the delegation depth index (0 for the root agent); Name is the
// display name derived from it ("Agent 0", "Agent 1", ...).
type AgentInfo struct {
	Number int
	Name   string
}

// AgentHandle is the surface an agent exposes to the tools it dispatches.
//
// Built-in control tools use it to set the side-channel answer that ends the
// agent's loop (Respond) and to delegate a sub-task to a subordinate
// (CallSubordinate). The superior's loop blocks synchronously inside
// CallSubordinate until the subordinate returns its answer.
type AgentHandle interface {
	Info() AgentInfo
	Respond(message string)
	CallSubordinate(runCtx *RunContext, message string, reset bool) (string, error)
}
