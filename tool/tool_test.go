package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/agentzero/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockHandle struct {
	mock.Mock
}

func (m *mockHandle) Info() core.AgentInfo { return core.AgentInfo{Number: 0, Name: "Agent 0"} }

func (m *mockHandle) Respond(message string) { m.Called(message) }

func (m *mockHandle) CallSubordinate(rc *core.RunContext, message string, reset bool) (string, error) {
	args := m.Called(rc, message, reset)
	return args.String(0), args.Error(1)
}

func newToolContext(caller core.AgentHandle, req core.ToolRequest) *core.ToolContext {
	rc := core.NewRunContext(context.Background(), "inv-1", core.AgentInfo{Name: "Agent 0"}, nil, nil)
	return core.NewToolContext(rc, caller, req)
}

func handlerReturning(out string) Handler {
	return func(*core.ToolContext, string, map[string]string) (string, error) { return out, nil }
}

// -------------------- Resolution --------------------

func TestResolve_PrefersExecute(t *testing.T) {
	ns := NewNamespace("multi", "",
		Capability{Name: "first", Handler: handlerReturning("first")},
		Capability{Name: ExecuteCapability, Handler: handlerReturning("execute")},
		Capability{Name: "last", Handler: handlerReturning("last")},
	)

	c, ok := Resolve(ns)
	require.True(t, ok)
	assert.Equal(t, ExecuteCapability, c.Name)
}

func TestResolve_FallsBackToFirstRegistered(t *testing.T) {
	ns := NewNamespace("multi", "",
		Capability{Name: "broken"},
		Capability{Name: "search", Handler: handlerReturning("search")},
		Capability{Name: "store", Handler: handlerReturning("store")},
	)

	for range 10 {
		c, ok := Resolve(ns)
		require.True(t, ok)
		assert.Equal(t, "search", c.Name, "resolution is stable")
	}
}

func TestResolve_Empty(t *testing.T) {
	_, ok := Resolve(NewNamespace("empty", ""))
	assert.False(t, ok)
}

// -------------------- Registry --------------------

func TestRegistry_RegisterRejectsDuplicatesAndEmptyNames(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(NewFunctionTool("echo", "", handlerReturning(""))))

	assert.Error(t, r.Register(NewFunctionTool("echo", "", handlerReturning(""))))
	assert.Error(t, r.Register(NewFunctionTool("", "", handlerReturning(""))))
	assert.Panics(t, func() { r.MustRegister(NewFunctionTool("echo", "", handlerReturning(""))) })

	assert.Equal(t, []string{"echo"}, r.Names())
}

func TestRegistry_DispatchPassesBodyAndAttributes(t *testing.T) {
	var gotBody string
	var gotAttrs map[string]string

	r := NewRegistry(NewFunctionTool("knowledge", "Look things up.",
		func(tc *core.ToolContext, body string, attrs map[string]string) (string, error) {
			gotBody, gotAttrs = body, attrs
			assert.Equal(t, "knowledge", tc.ToolName())
			return "found it", nil
		}))

	req := core.ToolRequest{
		Name:       "knowledge",
		Attributes: map[string]string{"name": "knowledge", "query": "go"},
		Body:       "what is a goroutine",
	}

	out, err := r.Dispatch(newToolContext(nil, req), req)
	require.NoError(t, err)
	assert.Equal(t, "found it", out)
	assert.Equal(t, "what is a goroutine", gotBody)
	assert.Equal(t, req.Attributes, gotAttrs)
}

func TestRegistry_DispatchInvokesExactlyOneCapability(t *testing.T) {
	calls := map[string]int{}
	count := func(name string) Handler {
		return func(*core.ToolContext, string, map[string]string) (string, error) {
			calls[name]++
			return name, nil
		}
	}

	r := NewRegistry(
		NewNamespace("with_execute", "", Capability{Name: "a", Handler: count("a")}, Capability{Name: ExecuteCapability, Handler: count("execute")}),
		NewNamespace("without_execute", "", Capability{Name: "b", Handler: count("b")}, Capability{Name: "c", Handler: count("c")}),
	)

	for _, name := range []string{"with_execute", "without_execute"} {
		req := core.ToolRequest{Name: name}
		_, err := r.Dispatch(newToolContext(nil, req), req)
		require.NoError(t, err)
	}

	assert.Equal(t, map[string]int{"execute": 1, "b": 1}, calls)
}

func TestRegistry_DispatchNotFound(t *testing.T) {
	r := NewRegistry(NewNamespace("hollow", "no capabilities"))

	for _, name := range []string{"missing", "", "hollow"} {
		req := core.ToolRequest{Name: name}
		_, err := r.Dispatch(newToolContext(nil, req), req)
		require.Error(t, err)
		assert.True(t, IsNotFound(err))

		var toolErr *ToolError
		require.ErrorAs(t, err, &toolErr)
		assert.Equal(t, CodeNotFound, toolErr.Code)
	}
}

func TestRegistry_DispatchWrapsExecutionErrors(t *testing.T) {
	boom := errors.New("boom")
	r := NewRegistry(
		NewFunctionTool("fail", "", func(*core.ToolContext, string, map[string]string) (string, error) {
			return "", boom
		}),
		NewFunctionTool("typed", "", func(*core.ToolContext, string, map[string]string) (string, error) {
			return "", NewToolError("typed", "custom", "E123")
		}),
	)

	req := core.ToolRequest{Name: "fail"}
	_, err := r.Dispatch(newToolContext(nil, req), req)
	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, CodeExecution, toolErr.Code)
	assert.ErrorIs(t, err, boom)

	req = core.ToolRequest{Name: "typed"}
	_, err = r.Dispatch(newToolContext(nil, req), req)
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "E123", toolErr.Code, "custom codes are forwarded")
}

func TestRegistry_Describe(t *testing.T) {
	r := NewRegistry(
		NewFunctionTool("a", "Tool A.", handlerReturning("")),
		NewFunctionTool("hidden", "", handlerReturning("")),
		NewFunctionTool("b", "  Tool B.\n", handlerReturning("")),
	)

	assert.Equal(t, "## a\nTool A.\n\n## b\nTool B.", r.Describe())
}

// -------------------- Built-in tools --------------------

func TestResponseTool(t *testing.T) {
	h := &mockHandle{}
	h.On("Respond", "all done").Return().Once()
	h.On("Respond", "from attribute").Return().Once()

	r := NewRegistry(Builtins()...)

	req := core.ToolRequest{Name: ResponseToolName, Body: "all done"}
	out, err := r.Dispatch(newToolContext(h, req), req)
	require.NoError(t, err)
	assert.Empty(t, out)

	req = core.ToolRequest{Name: ResponseToolName, Attributes: map[string]string{"text": "from attribute"}}
	_, err = r.Dispatch(newToolContext(h, req), req)
	require.NoError(t, err)

	h.AssertExpectations(t)
}

func TestSubordinateTool(t *testing.T) {
	h := &mockHandle{}
	h.On("CallSubordinate", mock.Anything, "count the files", true).Return("42 files", nil).Once()
	h.On("CallSubordinate", mock.Anything, "via attribute", false).Return("", errors.New("subordinate failed")).Once()

	r := NewRegistry(Builtins()...)

	req := core.ToolRequest{
		Name:       SubordinateToolName,
		Attributes: map[string]string{"name": SubordinateToolName, "reset": "true"},
		Body:       "count the files",
	}
	out, err := r.Dispatch(newToolContext(h, req), req)
	require.NoError(t, err)
	assert.Equal(t, "42 files", out)

	req = core.ToolRequest{
		Name:       SubordinateToolName,
		Attributes: map[string]string{"message": "via attribute", "reset": "nope"},
	}
	_, err = r.Dispatch(newToolContext(h, req), req)
	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, CodeExecution, toolErr.Code)

	h.AssertExpectations(t)
}

func TestBuiltins_RequireCaller(t *testing.T) {
	r := NewRegistry(Builtins()...)

	req := core.ToolRequest{Name: ResponseToolName, Body: "x"}
	_, err := r.Dispatch(newToolContext(nil, req), req)
	assert.Error(t, err)
}

// -------------------- ToolError Formatting --------------------

func TestToolErrorFormatting(t *testing.T) {
	err := NewToolError("demo", "something failed", "E123")
	assert.Contains(t, err.Error(), "E123")
	assert.Contains(t, err.Error(), "demo")

	plain := &ToolError{Tool: "demo", Message: "m"}
	assert.Equal(t, "tool error in demo: m", plain.Error())
}
