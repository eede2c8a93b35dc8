// Package runner drives the root agent of an agentzero session.
//
// A Runner owns the intervention board shared with the operator's key
// watcher, gives every inbound message its own invocation id and run
// context, and keeps active runs cancellable by id. Runs are synchronous
// (Run) or asynchronous (Start); either way only one message is processed at
// a time because the delegation chain below the root agent is strictly
// sequential.
package runner
