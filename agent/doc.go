// Package agent implements the conversational control loop.
//
// An Agent keeps a transcript, asks its model for the next message, reads
// tool requests out of that message and feeds tool results back until a
// response tool call hands an answer to its caller. Delegation through the
// call_subordinate tool creates a chain of agents ("Agent 0", "Agent 1", ...)
// sharing one model, one tool registry, one rate limiter and one intervention
// board. Exactly one agent of the chain runs at a time; a superior blocks
// inside its tool dispatch until the subordinate answers.
//
// Operator input reaches the running agent through the intervention board
// threaded in core.RunContext. The loop checks for it before every streamed
// chunk and around every tool dispatch; a pause blocks at those points.
//
// Recoverable failures (model errors, tool errors, template errors) are
// appended to the transcript as an error notice and the loop continues, so the
// model can correct itself.
package agent
