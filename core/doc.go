// Package core provides the foundational domain types and execution contexts
// shared by the agentzero packages:
//
//   - Message and Role (one conversation turn)
//   - ToolRequest (a tool invocation parsed from generated text)
//   - RunContext / ToolContext (scoped execution state threaded explicitly
//     through nested agent loops and tool calls)
//   - RoundBudget (bounds generation rounds per inbound message)
//
// The package keeps implementation concerns (model providers, the control
// loop, concrete tools) out of scope and exposes small types other packages
// build on.
package core
