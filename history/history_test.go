package history

import (
	"fmt"
	"testing"

	"github.com/hupe1980/agentzero/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppend_MergesSameRole(t *testing.T) {
	h := New(func(o *Options) { o.KeepHead, o.KeepTail = 50, 50 })

	assert.False(t, h.AppendUser("hello"))
	assert.True(t, h.AppendUser("are you there?"))
	assert.False(t, h.AppendAgent("yes"))

	msgs := h.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, core.UserMessage("hello\n\nare you there?"), msgs[0])
	assert.Equal(t, core.AgentMessage("yes"), msgs[1])
}

func TestAppend_NoAdjacentSameRole(t *testing.T) {
	roles := []core.Role{
		core.RoleUser, core.RoleUser, core.RoleAgent, core.RoleUser, core.RoleAgent,
		core.RoleAgent, core.RoleAgent, core.RoleUser, core.RoleUser, core.RoleAgent,
	}

	h := New(func(o *Options) { o.KeepHead, o.KeepTail = 100, 100 })
	for i, r := range roles {
		h.Append(r, fmt.Sprintf("m%d", i))
	}

	msgs := h.Messages()
	for i := 1; i < len(msgs); i++ {
		assert.NotEqual(t, msgs[i-1].Role, msgs[i].Role, "adjacent messages %d and %d", i-1, i)
	}
	assert.Equal(t, "m4\n\nm5\n\nm6", msgs[3].Text)
}

func TestCompact_HeadNoticeTail(t *testing.T) {
	const keepHead, keepTail = 2, 3

	h := New(func(o *Options) {
		o.KeepHead, o.KeepTail = keepHead, keepTail
		o.Notice = func() string { return "NOTICE" }
	})

	var all []core.Message
	for i := 0; i < keepHead+keepTail; i++ {
		role := core.RoleUser
		if i%2 == 1 {
			role = core.RoleAgent
		}
		h.Append(role, fmt.Sprintf("m%d", i))
		all = append(all, core.Message{Role: role, Text: fmt.Sprintf("m%d", i)})
	}
	require.Equal(t, keepHead+keepTail, h.Len(), "no compaction at the threshold")

	h.AppendAgent("m5")
	all = append(all, core.AgentMessage("m5"))

	msgs := h.Messages()
	require.Len(t, msgs, keepHead+1+keepTail)
	assert.Equal(t, all[:keepHead], msgs[:keepHead])
	assert.Equal(t, core.AgentMessage("NOTICE"), msgs[keepHead])
	assert.Equal(t, all[len(all)-keepTail:], msgs[keepHead+1:])
}

func TestCompact_NotTriggeredByMerge(t *testing.T) {
	calls := 0
	h := New(func(o *Options) {
		o.KeepHead, o.KeepTail = 1, 1
		o.Notice = func() string { calls++; return "NOTICE" }
	})

	h.AppendUser("a")
	h.AppendAgent("b")
	h.AppendAgent("c")
	h.AppendAgent("d")

	assert.Zero(t, calls)
	assert.Equal(t, 2, h.Len())

	h.AppendUser("e")
	assert.Equal(t, 1, calls)
	assert.Equal(t, 3, h.Len())
	assert.Equal(t, "a", h.Messages()[0].Text)
	assert.Equal(t, "e", h.Messages()[2].Text)
}

func TestCompact_ExplicitNoop(t *testing.T) {
	h := New()
	h.AppendUser("x")
	h.Compact(5, 10)
	assert.Equal(t, 1, h.Len())
}

func TestLastAndReset(t *testing.T) {
	h := New()
	_, ok := h.Last()
	assert.False(t, ok)

	h.AppendUser("q")
	h.AppendAgent("a")
	last, ok := h.Last()
	require.True(t, ok)
	assert.Equal(t, core.AgentMessage("a"), last)

	msgs := h.Messages()
	msgs[0].Text = "mutated"
	assert.Equal(t, "q", h.Messages()[0].Text, "Messages returns a copy")

	h.Reset()
	assert.Zero(t, h.Len())
}
