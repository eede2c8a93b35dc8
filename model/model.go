package model

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/hupe1980/agentzero/core"
)

// Request is the provider-neutral prompt: a system preamble followed by the
// ordered transcript.
type Request struct {
	System   string         `json:"system"`
	Messages []core.Message `json:"messages"`
	Stream   bool           `json:"stream,omitempty"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is a (partial or final) chunk emitted by a model.
//
// Partial responses carry text deltas. The final response carries the full
// text, the finish reason and, when the provider reports it, usage.
type Response struct {
	Partial      bool        `json:"partial"`
	Text         string      `json:"text"`
	FinishReason string      `json:"finish_reason"` // "stop", "length", ...
	Usage        *TokenUsage `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "mock"
}

// Model is the minimal interface required by agents to drive generation.
//
// Generate returns immediately. Both channels are closed by the producer once
// generation ends; at most one error is sent. Cancelling ctx abandons the
// stream.
type Model interface {
	Generate(ctx context.Context, req Request) (<-chan Response, <-chan error)

	// Info returns information about the model implementation.
	Info() Info
}

// MockTurn scripts one call to MockModel.Generate.
type MockTurn struct {
	// Chunks are streamed in order as partial responses; the final response
	// carries their concatenation.
	Chunks []string
	// Wait, if set, blocks the turn after the chunks until it is closed or the
	// request context ends.
	Wait <-chan struct{}
	// Err is reported instead of a final response.
	Err error
}

// Text scripts a turn that streams text word by word.
func Text(text string) MockTurn {
	return MockTurn{Chunks: splitWords(text)}
}

// Failure scripts a turn that fails with err.
func Failure(err error) MockTurn {
	return MockTurn{Err: err}
}

// MockModel is a lightweight in-memory Model useful for tests and examples.
// Scripted turns are consumed in order; once they run out it answers from the
// canned responses keyed by the last message, or echoes it.
type MockModel struct {
	info Info

	mu        sync.Mutex
	turns     []MockTurn
	responses map[string]string
	fallback  func(req Request) MockTurn
	requests  []Request
}

// NewMockModel constructs a MockModel.
func NewMockModel(name, provider string) *MockModel {
	return &MockModel{
		info: Info{
			Name:     name,
			Provider: provider,
		},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for an input prompt.
func (m *MockModel) AddResponse(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[prompt] = response
}

// SetFallback replaces the canned-response lookup used once the scripted
// turns run out. fn runs under the model's lock and must not call back into m.
func (m *MockModel) SetFallback(fn func(req Request) MockTurn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = fn
}

// AddTurns appends scripted turns.
func (m *MockModel) AddTurns(turns ...MockTurn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = append(m.turns, turns...)
}

// AddText appends one streamed turn per text.
func (m *MockModel) AddText(texts ...string) {
	for _, t := range texts {
		m.AddTurns(Text(t))
	}
}

// Requests returns the requests received so far.
func (m *MockModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Remaining reports how many scripted turns have not been consumed.
func (m *MockModel) Remaining() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.turns)
}

func (m *MockModel) next(req Request) MockTurn {
	m.mu.Lock()
	defer m.mu.Unlock()

	req.Messages = append([]core.Message(nil), req.Messages...)
	m.requests = append(m.requests, req)

	if len(m.turns) > 0 {
		turn := m.turns[0]
		m.turns = m.turns[1:]
		return turn
	}

	if m.fallback != nil {
		return m.fallback(req)
	}

	var input string
	if n := len(req.Messages); n > 0 {
		input = req.Messages[n-1].Text
	}
	full, ok := m.responses[input]
	if !ok {
		full = fmt.Sprintf("Mock response to: %s", input)
	}
	return Text(full)
}

// Generate implements Model.
func (m *MockModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	respCh := make(chan Response, 16)
	errCh := make(chan error, 1)

	turn := m.next(req)

	go func() {
		defer close(respCh)
		defer close(errCh)

		send := func(r Response) bool {
			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return false
			case respCh <- r:
				return true
			}
		}

		if req.Stream {
			for _, c := range turn.Chunks {
				if !send(Response{Partial: true, Text: c}) {
					return
				}
			}
		}

		if turn.Wait != nil {
			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			case <-turn.Wait:
			}
		}

		if turn.Err != nil {
			errCh <- turn.Err
			return
		}

		send(Response{
			Partial:      false,
			Text:         strings.Join(turn.Chunks, ""),
			FinishReason: "stop",
		})
	}()

	return respCh, errCh
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }

// splitWords cuts text after each run of whitespace so the pieces concatenate
// back to the original.
func splitWords(text string) []string {
	var chunks []string
	start := 0
	inSpace := false
	for i, r := range text {
		space := r == ' ' || r == '\n' || r == '\t'
		if inSpace && !space {
			chunks = append(chunks, text[start:i])
			start = i
		}
		inSpace = space
	}
	if start < len(text) {
		chunks = append(chunks, text[start:])
	}
	return chunks
}
