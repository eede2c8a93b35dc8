package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/agentzero/agent"
	"github.com/hupe1980/agentzero/core"
	"github.com/hupe1980/agentzero/intervention"
	"github.com/hupe1980/agentzero/logging"
)

// ErrBusy is returned when a message is submitted while another run holds
// the root agent.
var ErrBusy = errors.New("root agent is busy")

// Options holds dependency + configuration overrides passed to New().
type Options struct {
	// Board is shared with the operator side (key watcher). Defaults to a
	// fresh board.
	Board *intervention.Board
	// Logger receives run lifecycle logs and is inherited by every agent of
	// the delegation tree.
	Logger logging.Logger
}

// Result is the outcome of an asynchronous run.
type Result struct {
	Answer string
	Err    error
}

// Runner drives the root agent ("Agent 0"): it assigns invocation ids,
// threads the intervention board into the run context and keeps the cancel
// functions of active runs. The root agent processes one message at a time;
// Runner enforces that with ErrBusy. Public methods are safe for concurrent
// use.
type Runner struct {
	agent  *agent.Agent
	board  *intervention.Board
	logger logging.Logger

	busy sync.Mutex

	activeRuns map[string]context.CancelFunc
	mu         sync.RWMutex
}

// New constructs a Runner with optional overrides.
func New(root *agent.Agent, optFns ...func(o *Options)) *Runner {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Board == nil {
		opts.Board = intervention.NewBoard()
	}

	return &Runner{
		agent:      root,
		board:      opts.Board,
		logger:     opts.Logger,
		activeRuns: make(map[string]context.CancelFunc),
	}
}

// Agent returns the root agent.
func (r *Runner) Agent() *agent.Agent { return r.agent }

// Board returns the intervention board threaded into every run.
func (r *Runner) Board() *intervention.Board { return r.board }

// Run processes msg on the root agent and blocks until it answers, the
// context is cancelled or the operator exits.
func (r *Runner) Run(ctx context.Context, msg string) (string, error) {
	runID := core.NewID()
	return r.run(ctx, runID, msg)
}

// Start runs msg asynchronously. The result channel receives exactly one
// Result and is then closed.
func (r *Runner) Start(ctx context.Context, msg string) (string, <-chan Result) {
	runID := core.NewID()
	resultCh := make(chan Result, 1)

	go func() {
		defer close(resultCh)

		answer, err := r.run(ctx, runID, msg)
		resultCh <- Result{Answer: answer, Err: err}
	}()

	return runID, resultCh
}

// Cancel cancels a running run by ID.
func (r *Runner) Cancel(runID string) error {
	r.mu.Lock()
	cancel, exists := r.activeRuns[runID]
	r.mu.Unlock()

	if !exists {
		return fmt.Errorf("run %s not found", runID)
	}

	cancel()

	return nil
}

// Active reports whether any run is in progress.
func (r *Runner) Active() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.activeRuns) > 0
}

func (r *Runner) run(ctx context.Context, runID, msg string) (string, error) {
	if !r.busy.TryLock() {
		return "", ErrBusy
	}
	defer r.busy.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	r.mu.Lock()
	r.activeRuns[runID] = cancel
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		delete(r.activeRuns, runID)
		r.mu.Unlock()
	}()

	start := time.Now()
	r.logger.Debug("runner.run.start", "run_id", runID)

	rc := core.NewRunContext(ctx, runID, r.agent.Info(), r.board, r.logger)

	answer, err := r.agent.ProcessMessage(rc, msg)
	if err != nil {
		r.logger.Warn("runner.run.failed", "run_id", runID, "duration", time.Since(start), "error", err.Error())
		return "", fmt.Errorf("run %s: %w", runID, err)
	}

	r.logger.Debug("runner.run.completed", "run_id", runID, "duration", time.Since(start))

	return answer, nil
}
