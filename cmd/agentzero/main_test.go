package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/hupe1980/agentzero/config"
	"github.com/hupe1980/agentzero/core"
	"github.com/hupe1980/agentzero/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate keeps config discovery away from the developer's files.
func isolate(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
}

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), errOut.String(), err
}

func TestRunCmd_MockProvider(t *testing.T) {
	isolate(t)

	out, narration, err := execute(t, "", "run", "--provider", "mock", "-m", "hello")
	require.NoError(t, err)

	assert.Equal(t, "You said: hello\n", out)
	assert.Contains(t, narration, "Agent 0: Starting a message:")
	assert.Contains(t, narration, "Agent 0: Using tool response:")
}

func TestRunCmd_Quiet(t *testing.T) {
	isolate(t)

	out, narration, err := execute(t, "", "run", "--provider", "mock", "-m", "hello", "--quiet")
	require.NoError(t, err)

	assert.Equal(t, "You said: hello\n", out)
	assert.Empty(t, narration)
}

func TestRunCmd_RequiresMessage(t *testing.T) {
	isolate(t)

	_, _, err := execute(t, "", "run", "--provider", "mock")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "message")
}

func TestRunCmd_InvalidProvider(t *testing.T) {
	isolate(t)

	_, _, err := execute(t, "", "run", "--provider", "llama", "-m", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model.provider")
}

func TestChatCmd_PipedInput(t *testing.T) {
	isolate(t)

	out, _, err := execute(t, "hello\n\nagain\nexit\nignored\n", "chat", "--provider", "mock")
	require.NoError(t, err)

	assert.Contains(t, out, "You said: hello")
	assert.Contains(t, out, "You said: again")
	assert.NotContains(t, out, "ignored")
	assert.Contains(t, out, "User message ('exit' to leave):")
}

func TestChatCmd_ExitIgnoresCase(t *testing.T) {
	isolate(t)

	out, _, err := execute(t, "hello\nEXIT\nignored\n", "chat", "--provider", "mock")
	require.NoError(t, err)

	assert.Contains(t, out, "You said: hello")
	assert.NotContains(t, out, "ignored")
	assert.NotContains(t, out, "You said: EXIT")
}

func TestChatCmd_EndsOnEOF(t *testing.T) {
	isolate(t)

	out, _, err := execute(t, "hello", "chat", "--provider", "mock")
	require.NoError(t, err)
	assert.Contains(t, out, "You said: hello")
}

func TestGlobalFlags_Load(t *testing.T) {
	isolate(t)

	flags := &globalFlags{provider: "mock", logLevel: "debug", maxRounds: 3}
	cfg, err := flags.load()
	require.NoError(t, err)

	assert.Equal(t, "mock", cfg.Model.Provider)
	assert.Empty(t, cfg.Model.Name, "the default name belongs to the default provider")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 3, cfg.Agent.MaxRounds)

	flags = &globalFlags{model: "gpt-4o", maxRounds: -1}
	cfg, err = flags.load()
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", cfg.Model.Name)
	assert.Equal(t, config.Default().Agent.MaxRounds, cfg.Agent.MaxRounds)
}

func TestBuildModel(t *testing.T) {
	for _, provider := range []string{"openai", "anthropic", "mock"} {
		t.Run(provider, func(t *testing.T) {
			cfg := config.Default().Model
			cfg.Provider = provider
			cfg.APIKey = "test-key"

			llm, err := buildModel(cfg)
			require.NoError(t, err)
			require.NotNil(t, llm)
		})
	}

	_, err := buildModel(config.ModelConfig{Provider: "llama"})
	assert.Error(t, err)
}

func TestEchoModel(t *testing.T) {
	llm := newEchoModel("")
	assert.Equal(t, "echo", llm.Info().Name)

	out, errCh := llm.Generate(context.Background(), model.Request{
		Messages: []core.Message{core.UserMessage(" hi ")},
	})

	var text string
	for r := range out {
		if !r.Partial {
			text = r.Text
		}
	}
	require.NoError(t, <-errCh)
	assert.Equal(t, `<tool$ name="response">You said: hi</tool$>`, text)
}
