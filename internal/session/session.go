// Package session implements the two-phase arm-then-capture trigger. The
// interface loop calls Arm and Capture in response to user signals and drains
// Results; cycles run on the dispatcher's worker, one at a time.
package session

import (
	"context"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	apperrors "github.com/ppiankov/pricelens/internal/errors"
	"github.com/ppiankov/pricelens/internal/pipeline"
	"github.com/ppiankov/pricelens/internal/worker"
)

// Runner executes one capture cycle
type Runner interface {
	Run(ctx context.Context, pointer image.Point) (*pipeline.Outcome, error)
}

// PointerSource reports the pointer position in screen coordinates
type PointerSource interface {
	Position() (image.Point, error)
}

// State of the trigger
type State int

const (
	Idle State = iota
	Armed
)

func (s State) String() string {
	if s == Armed {
		return "armed"
	}
	return "idle"
}

// Action is what a signal did
type Action string

const (
	ActionArmed      Action = "armed"
	ActionCancelled  Action = "cancelled"
	ActionDispatched Action = "dispatched"
	ActionIgnored    Action = "ignored" // capture while not armed
	ActionDropped    Action = "dropped" // a cycle is already in flight
)

// CycleJob runs one cycle on the dispatcher
type CycleJob struct {
	Seq     uint64
	Pointer image.Point
	Runner  Runner
}

// Execute implements worker.Job
func (j *CycleJob) Execute(ctx context.Context) worker.Result {
	start := time.Now()
	outcome, err := j.Runner.Run(ctx, j.Pointer)
	slog.Debug("cycle finished", "seq", j.Seq, "duration", time.Since(start), "error", err)
	return &CycleResult{
		Seq:     j.Seq,
		Pointer: j.Pointer,
		Outcome: outcome,
		Error:   err,
	}
}

// CycleResult is posted to Results when a cycle ends
type CycleResult struct {
	Seq     uint64
	Pointer image.Point
	Outcome *pipeline.Outcome
	Error   error
}

// GetError implements worker.Result
func (r *CycleResult) GetError() error {
	return r.Error
}

// Session tracks the armed state and hands cycles to a dispatcher
type Session struct {
	pointer    PointerSource
	runner     Runner
	dispatcher *worker.Dispatcher

	mu      sync.Mutex
	state   State
	armedAt image.Point
	seq     atomic.Uint64
}

// New creates an idle session
func New(pointer PointerSource, runner Runner, dispatcher *worker.Dispatcher) *Session {
	return &Session{
		pointer:    pointer,
		runner:     runner,
		dispatcher: dispatcher,
	}
}

// Arm enters the armed preview state at the current pointer, or cancels it
// if already armed. Cancelling has no other side effect.
func (s *Session) Arm() (Action, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Armed {
		s.state = Idle
		slog.Debug("disarmed")
		return ActionCancelled, nil
	}

	pos, err := s.pointer.Position()
	if err != nil {
		return ActionIgnored, apperrors.Wrap(err, apperrors.CaptureFailure, "cannot read pointer position")
	}
	s.state = Armed
	s.armedAt = pos
	slog.Debug("armed", "x", pos.X, "y", pos.Y)
	return ActionArmed, nil
}

// Capture dispatches a cycle at the current pointer when armed. The pointer
// is read again since it may have moved since Arm. The session returns to
// idle whether or not the cycle was accepted.
func (s *Session) Capture() (Action, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Armed {
		return ActionIgnored, nil
	}
	s.state = Idle

	pos, err := s.pointer.Position()
	if err != nil {
		return ActionIgnored, apperrors.Wrap(err, apperrors.CaptureFailure, "cannot read pointer position")
	}

	job := &CycleJob{Seq: s.seq.Add(1), Pointer: pos, Runner: s.runner}
	if !s.dispatcher.Trigger(job) {
		slog.Debug("cycle in flight, trigger dropped", "seq", job.Seq)
		return ActionDropped, nil
	}
	slog.Debug("cycle dispatched", "seq", job.Seq, "x", pos.X, "y", pos.Y)
	return ActionDispatched, nil
}

// Cancel leaves the armed state
func (s *Session) Cancel() {
	s.mu.Lock()
	s.state = Idle
	s.mu.Unlock()
}

// State returns the current state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ArmedAt returns the pointer position recorded by Arm while armed
func (s *Session) ArmedAt() (image.Point, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.armedAt, s.state == Armed
}

// Busy reports whether a cycle is in flight
func (s *Session) Busy() bool {
	return s.dispatcher.Busy()
}

// Results delivers finished cycles as *CycleResult
func (s *Session) Results() <-chan worker.Result {
	return s.dispatcher.Results()
}
