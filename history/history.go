// Package history keeps the ordered transcript of one agent.
//
// Two invariants hold after every Append:
//   - adjacent messages never share a role; a same-role append is merged into
//     the last message, separated by a blank line
//   - the transcript never grows past keepHead+keepTail entries; a true append
//     beyond that compacts it to the first keepHead messages, one agent-origin
//     notice and the last keepTail messages
//
// Compaction is lossy: the middle of the conversation is dropped, not
// summarized. It only runs after a new entry is pushed, never after a merge.
package history

import (
	"github.com/hupe1980/agentzero/core"
)

// Separator joins merged same-role messages.
const Separator = "\n\n"

// NoticeFunc supplies the text of the synthetic compaction notice.
type NoticeFunc func() string

// Options configures a History.
type Options struct {
	KeepHead int
	KeepTail int
	Notice   NoticeFunc
}

// History is the transcript of a single agent. It is mutated only by the
// owning agent's control loop and is not safe for concurrent use.
type History struct {
	messages []core.Message
	keepHead int
	keepTail int
	notice   NoticeFunc
}

// New creates an empty History. Defaults keep the first 5 and last 10 messages.
func New(optFns ...func(o *Options)) *History {
	opts := Options{
		KeepHead: 5,
		KeepTail: 10,
		Notice:   func() string { return "[earlier messages were removed to save space]" },
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &History{
		keepHead: opts.KeepHead,
		keepTail: opts.KeepTail,
		notice:   opts.Notice,
	}
}

// Append adds text under role, merging into the last message when it has the
// same role. It reports whether a merge happened.
func (h *History) Append(role core.Role, text string) (merged bool) {
	if n := len(h.messages); n > 0 && h.messages[n-1].Role == role {
		h.messages[n-1].Text += Separator + text
		return true
	}

	h.messages = append(h.messages, core.Message{Role: role, Text: text})
	h.Compact(h.keepHead, h.keepTail)

	return false
}

// AppendUser appends user-origin text.
func (h *History) AppendUser(text string) bool { return h.Append(core.RoleUser, text) }

// AppendAgent appends agent-origin text.
func (h *History) AppendAgent(text string) bool { return h.Append(core.RoleAgent, text) }

// Compact keeps the first keepHead and last keepTail messages with a notice in
// between. It is a no-op while the transcript has at most keepHead+keepTail
// entries.
func (h *History) Compact(keepHead, keepTail int) {
	if keepHead < 0 {
		keepHead = 0
	}
	if keepTail < 0 {
		keepTail = 0
	}

	n := len(h.messages)
	if n <= keepHead+keepTail {
		return
	}

	compacted := make([]core.Message, 0, keepHead+1+keepTail)
	compacted = append(compacted, h.messages[:keepHead]...)
	compacted = append(compacted, core.AgentMessage(h.notice()))
	compacted = append(compacted, h.messages[n-keepTail:]...)

	h.messages = compacted
}

// Messages returns a copy of the transcript.
func (h *History) Messages() []core.Message {
	out := make([]core.Message, len(h.messages))
	copy(out, h.messages)
	return out
}

// Len returns the number of stored messages.
func (h *History) Len() int { return len(h.messages) }

// Last returns the most recent message.
func (h *History) Last() (core.Message, bool) {
	if len(h.messages) == 0 {
		return core.Message{}, false
	}
	return h.messages[len(h.messages)-1], true
}

// Reset drops every message.
func (h *History) Reset() { h.messages = nil }
