package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/agentzero/core"
	"github.com/hupe1980/agentzero/intervention"
	"github.com/hupe1980/agentzero/logging"
	"github.com/hupe1980/agentzero/model"
	"github.com/hupe1980/agentzero/prompts"
	"github.com/hupe1980/agentzero/protocol"
	"github.com/hupe1980/agentzero/ratelimit"
	"github.com/hupe1980/agentzero/tool"
)

// ProcessMessage appends msg to the history and runs generation rounds until
// the agent hands back an answer through the response tool.
//
// Each round builds the prompt from the preamble and the history, waits for
// the rate limiter, streams the model output while watching for operator
// interventions, appends the output and dispatches the tool requests it
// contains. Model, tool and template failures never end the loop: they are
// appended as an error notice so the model can recover. ProcessMessage only
// returns an error when rc is cancelled, the operator exits, MaxRounds is
// exhausted, a request can never fit the rate limiter or the preamble cannot
// be built.
func (a *Agent) ProcessMessage(rc *core.RunContext, msg string) (string, error) {
	if rc.Agent != a.info {
		rc = rc.WithAgent(a.info)
	}

	if rc.Board != nil {
		restore := rc.Board.Activate(a.channel)
		defer restore()
	}

	system, toolsPrompt, err := a.preamble(rc)
	if err != nil {
		return "", err
	}

	start := time.Now()
	rc.LogInfo("agent.message.start", "agent", a.info.Name, "depth", rc.Depth)

	a.answer, a.answered = "", false
	a.history.AppendUser(msg)

	rounds := core.RoundBudget{Max: a.opts.MaxRounds}
	for {
		if err := rc.Err(); err != nil {
			return "", err
		}

		if err := rounds.Next(); err != nil {
			rc.LogWarn("agent.message.max_rounds", "agent", a.info.Name, "max_rounds", a.opts.MaxRounds)
			return "", err
		}

		answer, done, err := a.round(rc, system, toolsPrompt)
		if err != nil {
			if a.fatal(rc, err) {
				rc.LogError("agent.message.aborted", "agent", a.info.Name, "error", err.Error())
				return "", err
			}

			a.forwardError(rc, err)

			continue
		}

		if done {
			rc.LogInfo("agent.message.complete",
				"agent", a.info.Name,
				"rounds", rounds.Used(),
				"duration_ms", time.Since(start).Milliseconds(),
			)

			return answer, nil
		}
	}
}

// round runs one Generating -> ToolDispatch cycle. done reports that the
// agent produced its answer and no intervention is pending.
func (a *Agent) round(rc *core.RunContext, system, toolsPrompt string) (answer string, done bool, err error) {
	a.intervened = false

	req := model.Request{
		System:   system,
		Messages: a.history.Messages(),
		Stream:   a.opts.Stream,
	}

	if a.opts.Limiter != nil {
		if err := a.opts.Limiter.Wait(rc.Context, a.opts.Estimator.Estimate(formatPrompt(req))); err != nil {
			return "", false, err
		}
	}

	rc.LogDebug("agent.round.start", "agent", a.info.Name, "messages", len(req.Messages))
	a.opts.Callbacks.OnGenerationStart(a.info)

	text, err := a.generate(rc, req)
	if err != nil {
		return "", false, err
	}
	if a.intervened {
		return "", false, nil
	}

	// An intervention may arrive after the last chunk.
	if stop, err := a.checkIntervention(rc, text); err != nil || stop {
		return "", false, err
	}

	if text == a.lastMessage {
		text = a.render(prompts.Repeat, nil, "You have sent the same message again. You have to do something else!")

		rc.LogWarn("agent.output.repeated", "agent", a.info.Name)
		a.opts.Callbacks.OnRepeat(a.info, text)
	}

	a.appendAgent(text)

	if err := a.processTools(rc, text, toolsPrompt); err != nil {
		return "", false, err
	}

	if a.answered && !a.intervened {
		answer = a.answer
		a.answer, a.answered = "", false

		return answer, true, nil
	}

	return "", false, nil
}

// generate streams one model response. When an intervention cuts the stream
// the partial text has already been recorded and a.intervened is set.
func (a *Agent) generate(rc *core.RunContext, req model.Request) (string, error) {
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if a.opts.GenerateTimeout > 0 {
		ctx, cancel = context.WithTimeout(rc.Context, a.opts.GenerateTimeout)
	} else {
		ctx, cancel = context.WithCancel(rc.Context)
	}
	defer cancel()

	start := time.Now()
	out, errCh := a.llm.Generate(ctx, req)

	var (
		text   strings.Builder
		final  string
		chunks int
	)

	notify := a.channel.Notify()
	interrupted := func() (bool, error) {
		select {
		case <-notify:
			return a.checkIntervention(rc, text.String())
		default:
			return false, nil
		}
	}

stream:
	for {
		select {
		case <-notify:
			stop, err := a.checkIntervention(rc, text.String())
			if err != nil {
				return "", err
			}
			if stop {
				return a.cut(rc, text.String(), chunks, start), nil
			}
		case resp, ok := <-out:
			if !ok {
				break stream
			}

			// Checked before the chunk is consumed; a cut stream drops it.
			stop, err := interrupted()
			if err != nil {
				return "", err
			}
			if stop {
				return a.cut(rc, text.String(), chunks, start), nil
			}

			if !resp.Partial {
				final = resp.Text
				continue
			}
			if resp.Text == "" {
				continue
			}

			chunks++
			text.WriteString(resp.Text)
			a.opts.Callbacks.OnStream(a.info, resp.Text)
		}
	}

	err := <-errCh

	result := text.String()
	if chunks == 0 {
		result = final
	}

	logging.LogGeneration(rc.Logger(), a.llm.Info().Name, chunks, len(result), time.Since(start), err)

	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}

	a.opts.Callbacks.OnGenerationEnd(a.info, result)

	return result, nil
}

func (a *Agent) cut(rc *core.RunContext, partial string, chunks int, start time.Time) string {
	rc.LogDebug("agent.generate.cut", "agent", a.info.Name, "chunks", chunks, "duration_ms", time.Since(start).Milliseconds())
	a.opts.Callbacks.OnGenerationEnd(a.info, partial)
	return partial
}

// checkIntervention is the suspension point: it blocks while the board is
// paused, then consumes a pending intervention. progress is the output
// produced so far in the round; it is kept in the history before the
// intervention message. The result stays true for the rest of the round.
func (a *Agent) checkIntervention(rc *core.RunContext, progress string) (bool, error) {
	if err := rc.WaitIfPaused(); err != nil {
		return false, err
	}

	if a.intervened {
		return true, nil
	}

	msg, ok := a.channel.Take()
	if !ok {
		return false, nil
	}

	if strings.TrimSpace(progress) != "" {
		a.appendAgent(progress)
	}

	a.history.AppendUser(a.render(prompts.Intervention, map[string]any{"user_message": msg}, msg))
	a.intervened = true

	rc.LogInfo("agent.intervention", "agent", a.info.Name, "partial_chars", len(progress))
	a.opts.Callbacks.OnIntervention(a.info, msg)

	return true, nil
}

// processTools dispatches the requests found in text in document order. An
// intervention before or after a dispatch abandons the rest of the batch.
func (a *Agent) processTools(rc *core.RunContext, text, toolsPrompt string) error {
	for req := range protocol.All(text) {
		stop, err := a.checkIntervention(rc, "")
		if err != nil {
			return err
		}
		if stop {
			break
		}

		rc.LogDebug("agent.tool.request", "agent", a.info.Name, "tool", req.Name)
		a.opts.Callbacks.OnToolUse(a.info, req)

		result, err := a.dispatch(rc, req)
		if err != nil {
			if !tool.IsNotFound(err) {
				return err
			}

			notice := a.render(prompts.ToolNotFound,
				map[string]any{"tool_name": req.Name, "tools_prompt": toolsPrompt},
				fmt.Sprintf("Tool %q not found.", req.Name),
			)
			a.history.AppendUser(notice)
			a.opts.Callbacks.OnToolNotFound(a.info, notice)

			continue
		}

		a.history.AppendUser(a.render(prompts.ToolResponse,
			map[string]any{"tool_name": req.Name, "tool_response": result},
			result,
		))
		a.opts.Callbacks.OnToolResponse(a.info, req.Name, result)

		stop, err = a.checkIntervention(rc, "")
		if err != nil {
			return err
		}
		if stop {
			break
		}
	}

	return nil
}

func (a *Agent) dispatch(rc *core.RunContext, req core.ToolRequest) (string, error) {
	if a.opts.ToolTimeout > 0 {
		ctx, cancel := context.WithTimeout(rc.Context, a.opts.ToolTimeout)
		defer cancel()
		rc = rc.WithContext(ctx)
	}

	return a.opts.Registry.Dispatch(core.NewToolContext(rc, a, req), req)
}

func (a *Agent) forwardError(rc *core.RunContext, err error) {
	notice := a.render(prompts.Error, map[string]any{"error": err.Error()}, err.Error())
	a.history.AppendUser(notice)

	rc.LogWarn("agent.error.forwarded", "agent", a.info.Name, "error", err.Error())
	a.opts.Callbacks.OnError(a.info, notice)
}

// fatal reports errors that end ProcessMessage instead of being forwarded.
func (a *Agent) fatal(rc *core.RunContext, err error) bool {
	return rc.Err() != nil ||
		errors.Is(err, intervention.ErrExit) ||
		errors.Is(err, ratelimit.ErrCostExceedsLimit)
}

func (a *Agent) appendAgent(text string) {
	a.history.AppendAgent(text)
	a.lastMessage = text
}

// preamble returns the system prompt (system template, blank line, tools
// template) and the tools part alone, which the not-found notice repeats.
func (a *Agent) preamble(rc *core.RunContext) (string, string, error) {
	system, err := a.resolve(rc, a.opts.System, prompts.AgentSystem, nil)
	if err != nil {
		return "", "", fmt.Errorf("system prompt: %w", err)
	}

	tools, err := a.resolve(rc, a.opts.Tools, prompts.AgentTools, map[string]any{
		"tools": a.opts.Registry.Describe(),
	})
	if err != nil {
		return "", "", fmt.Errorf("tools prompt: %w", err)
	}

	return system + "\n\n" + tools, tools, nil
}

func (a *Agent) resolve(rc *core.RunContext, inst Instruction, name string, vars map[string]any) (string, error) {
	if inst.IsSet() {
		return inst.Resolve(rc)
	}
	return a.opts.Prompts.Render(name, vars)
}

// formatPrompt flattens a request into the text the cost estimate is taken
// from.
func formatPrompt(req model.Request) string {
	var b strings.Builder
	b.WriteString("System: ")
	b.WriteString(req.System)

	for _, m := range req.Messages {
		if m.Role == core.RoleAgent {
			b.WriteString("\nAI: ")
		} else {
			b.WriteString("\nHuman: ")
		}
		b.WriteString(m.Text)
	}

	return b.String()
}
