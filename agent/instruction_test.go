package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/agentzero/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockProvider struct {
	text string
	err  error
}

func (m mockProvider) Instruction(*core.RunContext) (string, error) { return m.text, m.err }

func newTestRunContext() *core.RunContext {
	return core.NewRunContext(context.Background(), "invocation-id", core.AgentInfo{Name: "Agent 0"}, nil, nil)
}

func TestInstruction_Static(t *testing.T) {
	inst := NewInstructionFromText("static instruction")
	assert.True(t, inst.IsSet())
	assert.True(t, inst.IsStatic())

	text, err := inst.Resolve(newTestRunContext())
	require.NoError(t, err)
	assert.Equal(t, "static instruction", text)
}

func TestInstruction_Provider(t *testing.T) {
	inst := NewInstructionFromProvider(mockProvider{text: "dynamic"})
	assert.False(t, inst.IsStatic())

	text, err := inst.Resolve(newTestRunContext())
	require.NoError(t, err)
	assert.Equal(t, "dynamic", text)

	failing := NewInstructionFromProvider(mockProvider{err: errors.New("fail")})
	_, err = failing.Resolve(newTestRunContext())
	assert.Error(t, err)
}

func TestInstruction_Func(t *testing.T) {
	inst := NewInstructionFromFunc(func(rc *core.RunContext) (string, error) {
		return "You are " + rc.GetAgentName(), nil
	})

	text, err := inst.Resolve(newTestRunContext())
	require.NoError(t, err)
	assert.Equal(t, "You are Agent 0", text)
}

func TestInstruction_ZeroValueIsUnset(t *testing.T) {
	var inst Instruction
	assert.False(t, inst.IsSet())
}
