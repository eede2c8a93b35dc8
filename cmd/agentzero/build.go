package main

import (
	"fmt"
	"io"
	"strings"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/hupe1980/agentzero/agent"
	"github.com/hupe1980/agentzero/config"
	"github.com/hupe1980/agentzero/console"
	"github.com/hupe1980/agentzero/logging"
	"github.com/hupe1980/agentzero/model"
	"github.com/hupe1980/agentzero/model/anthropic"
	"github.com/hupe1980/agentzero/model/openai"
	"github.com/hupe1980/agentzero/prompts"
	"github.com/hupe1980/agentzero/runner"
)

// session bundles what a command needs to drive the root agent.
type session struct {
	runner  *runner.Runner
	printer *console.Printer
	logger  *logging.AgentLogger
}

func buildModel(cfg config.ModelConfig) (model.Model, error) {
	switch cfg.Provider {
	case "openai":
		return openai.NewModel(func(o *openai.Options) {
			if cfg.Name != "" {
				o.Model = cfg.Name
			}
			o.Temperature = cfg.Temperature
			o.MaxCompletionTokens = int64(cfg.MaxTokens)
			o.APIKey = cfg.APIKey
			o.BaseURL = cfg.BaseURL
		}), nil
	case "anthropic":
		return anthropic.NewModel(func(o *anthropic.Options) {
			if cfg.Name != "" {
				o.Model = anthropicsdk.Model(cfg.Name)
			}
			o.Temperature = cfg.Temperature
			o.MaxTokens = int64(cfg.MaxTokens)
			o.APIKey = cfg.APIKey
			o.BaseURL = cfg.BaseURL
		}), nil
	case "mock":
		return newEchoModel(cfg.Name), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

// newEchoModel answers every message through the response tool, quoting the
// last line of the newest message. It lets the CLI run without credentials.
func newEchoModel(name string) *model.MockModel {
	if name == "" {
		name = "echo"
	}

	m := model.NewMockModel(name, "mock")
	m.SetFallback(func(req model.Request) model.MockTurn {
		var last string
		if n := len(req.Messages); n > 0 {
			text := strings.TrimSpace(req.Messages[n-1].Text)
			last = strings.TrimSpace(text[strings.LastIndex(text, "\n")+1:])
		}
		return model.Text(`<tool$ name="response">You said: ` + last + `</tool$>`)
	})

	return m
}

// newSession wires the configuration into a runner. Narration goes to out,
// logs to logOut.
func newSession(cfg *config.Config, out, logOut io.Writer) (*session, error) {
	logger, err := cfg.Log.Logger(logOut)
	if err != nil {
		return nil, err
	}

	llm, err := buildModel(cfg.Model)
	if err != nil {
		return nil, err
	}

	limiter, estimator, err := cfg.RateLimit.Limiter(logger)
	if err != nil {
		return nil, err
	}

	printer := console.NewPrinter(out)

	root := agent.New(llm, func(o *agent.Options) {
		o.Limiter = limiter
		o.Estimator = estimator
		o.Prompts = prompts.NewDirLoader(cfg.PromptsDir)
		o.Callbacks = printer
		o.KeepHead = cfg.History.KeepHead
		o.KeepTail = cfg.History.KeepTail
		o.MaxDepth = cfg.Agent.MaxDepth
		o.MaxRounds = cfg.Agent.MaxRounds
		o.KeepSubordinate = cfg.Agent.KeepSubordinate
		o.Stream = cfg.Agent.Stream
		o.GenerateTimeout = cfg.Agent.GenerateTimeout
		o.ToolTimeout = cfg.Agent.ToolTimeout
	})

	r := runner.New(root, func(o *runner.Options) {
		o.Logger = logger
	})

	return &session{runner: r, printer: printer, logger: logger}, nil
}
