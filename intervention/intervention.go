// Package intervention lets an operator pause an agent mid-generation and
// inject a message into its conversation.
//
// Two pieces cooperate:
//
//   - Channel is owned by exactly one agent. It holds at most one pending
//     message, which is consumed at most once, and exposes a notify signal
//     the agent selects on while streaming.
//   - Board is created once per process (or per root invocation) and threaded
//     explicitly through every control loop. It carries the pause flag and the
//     token naming which agent is currently streaming.
//
// Agents observe the Board only at their suspension points (between stream
// chunks, before and after tool dispatch). Nothing is preempted: a tool call
// or a chunk already in flight runs to completion first.
package intervention

import (
	"context"
	"errors"
	"sync"
)

// ErrExit is returned by Board.Wait once the operator asked to shut down.
var ErrExit = errors.New("operator requested exit")

// Channel is the per-agent intervention state.
type Channel struct {
	mu      sync.Mutex
	message string
	pending bool
	notify  chan struct{}
}

// NewChannel constructs an empty Channel.
func NewChannel() *Channel {
	return &Channel{notify: make(chan struct{}, 1)}
}

// Post stores msg as the pending intervention, replacing any earlier message
// that has not been consumed yet.
func (c *Channel) Post(msg string) {
	c.mu.Lock()
	c.message = msg
	c.pending = true
	c.mu.Unlock()

	c.signal()
}

// Take consumes the pending message. The second call after a Post reports false.
func (c *Channel) Take() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.pending {
		return "", false
	}

	msg := c.message
	c.message = ""
	c.pending = false

	return msg, true
}

// Pending reports whether a message is waiting to be consumed.
func (c *Channel) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Notify returns a channel that receives a value whenever the operator pauses
// this agent or posts a message to it. Signals coalesce.
func (c *Channel) Notify() <-chan struct{} { return c.notify }

func (c *Channel) signal() {
	select {
	case c.notify <- struct{}{}:
	default:
	}
}

// Board coordinates the operator with whichever agent is currently streaming.
type Board struct {
	mu      sync.Mutex
	paused  bool
	exited  bool
	resumed chan struct{} // closed while not paused
	active  *Channel
}

// NewBoard constructs an unpaused Board with no active streamer.
func NewBoard() *Board {
	resumed := make(chan struct{})
	close(resumed)

	return &Board{resumed: resumed}
}

// Activate marks ch as the active streamer and returns a function restoring
// the previous holder. Nested agents call it on entry and defer the restore,
// so the token follows the strictly nested delegation order.
func (b *Board) Activate(ch *Channel) (restore func()) {
	b.mu.Lock()
	prev := b.active
	b.active = ch
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		b.active = prev
		b.mu.Unlock()
	}
}

// Active returns the channel of the agent currently streaming, or nil.
func (b *Board) Active() *Channel {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active
}

// Streaming reports whether any agent currently holds the streamer token.
func (b *Board) Streaming() bool { return b.Active() != nil }

// Pause sets the pause flag and wakes the active streamer. It reports false
// when nothing is streaming or the board is already paused.
func (b *Board) Pause() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.active == nil || b.paused || b.exited {
		return false
	}

	b.paused = true
	b.resumed = make(chan struct{})
	b.active.signal()

	return true
}

// Paused reports the pause flag.
func (b *Board) Paused() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.paused
}

// Resume clears the pause flag. A non-empty msg is first posted to the active
// streamer as its pending intervention.
func (b *Board) Resume(msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if msg != "" && b.active != nil {
		b.active.Post(msg)
	}

	if !b.paused {
		return
	}

	b.paused = false
	close(b.resumed)
}

// Exit releases a pending pause and makes every later Wait return ErrExit.
func (b *Board) Exit() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.exited {
		return
	}
	b.exited = true

	if b.paused {
		b.paused = false
		close(b.resumed)
	}
	if b.active != nil {
		b.active.signal()
	}
}

// Exited reports whether Exit was called.
func (b *Board) Exited() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.exited
}

// Wait blocks while the board is paused. It returns early with the context
// error if ctx is cancelled first, and ErrExit after Exit. A nil Board never
// blocks.
func (b *Board) Wait(ctx context.Context) error {
	if b == nil {
		return nil
	}

	b.mu.Lock()
	resumed := b.resumed
	b.mu.Unlock()

	select {
	case <-resumed:
	case <-ctx.Done():
		return ctx.Err()
	}

	if b.Exited() {
		return ErrExit
	}

	return nil
}
