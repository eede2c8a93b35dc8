// Package model defines the provider-agnostic abstraction agents use to talk
// to language models.
//
// A Model consumes a Request (system preamble plus ordered transcript) and
// produces a stream of Responses on a channel, with failures reported on a
// separate error channel. Providers live in sub-packages (openai, anthropic)
// so the control loop stays decoupled from vendor SDKs. MockModel plays
// scripted turns for tests and offline examples.
package model
