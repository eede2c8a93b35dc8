package anthropic

import (
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/hupe1980/agentzero/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessages_FoldsSameRole(t *testing.T) {
	msgs := buildMessages([]core.Message{
		core.UserMessage("hello"),
		core.AgentMessage("first"),
		core.AgentMessage("notice"),
		core.UserMessage(""),
		core.UserMessage("tool result"),
	})

	require.Len(t, msgs, 3)
	assert.Equal(t, anthropic.MessageParamRoleUser, msgs[0].Role)
	assert.Equal(t, anthropic.MessageParamRoleAssistant, msgs[1].Role)
	assert.Len(t, msgs[1].Content, 2)
	assert.Equal(t, anthropic.MessageParamRoleUser, msgs[2].Role)
	assert.Len(t, msgs[2].Content, 1)
}

func TestFinishReason(t *testing.T) {
	assert.Equal(t, "stop", finishReason(""))
	assert.Equal(t, "max_tokens", finishReason(anthropic.StopReasonMaxTokens))
}

func TestConvertUsage(t *testing.T) {
	u := convertUsage(anthropic.Usage{InputTokens: 10, OutputTokens: 5})
	assert.Equal(t, 15, u.TotalTokens)
	assert.Equal(t, 10, u.PromptTokens)
}

func TestNewModel_Info(t *testing.T) {
	m := NewModel(func(o *Options) { o.APIKey = "test" })
	assert.Equal(t, "anthropic", m.Info().Provider)
	assert.Equal(t, "claude-sonnet-4-20250514", m.Info().Name)
}
