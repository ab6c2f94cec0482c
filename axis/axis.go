// Package axis implements a goal-seeking rotary axis controller on top of
// the motor simulator. It adds absolute and relative moves that travel the
// shortest angular path, deceleration lookahead so the motor coasts to rest
// at the goal, open-ended jog in either direction, and runtime speed and
// acceleration tuning.
package axis

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/edaniels/golog"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"

	"github.com/axisforge/rigsim/motor"
	"github.com/axisforge/rigsim/utils"
)

const (
	// positionTolerance is how close, in degrees, is close enough to
	// declare arrival.
	positionTolerance = 0.05

	// supervisePollInterval is the supervisory loop rate, independent of
	// the motor's own tick rate.
	supervisePollInterval = 2 * time.Millisecond

	haltPollInterval = 5 * time.Millisecond
)

// Config describes how to construct a rotary axis and its motor.
type Config struct {
	MaxSpeed     float64 `json:"max_speed_degs_per_sec"`
	Acceleration float64 `json:"acceleration_degs_per_sec2"`
	TickRate     float64 `json:"tick_rate_hz,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate(path string) error {
	mcfg := motor.Config{MaxSpeed: cfg.MaxSpeed, Acceleration: cfg.Acceleration, TickRate: cfg.TickRate}
	return mcfg.Validate(path)
}

// RotaryAxis drives a single motor toward commanded angles. Positions are in
// degrees; Position is always normalized to [0, 360) and moves always travel
// the shortest arc unless a direction is forced by a jog.
//
// The move intent (goal and jog flags) is guarded by a lock distinct from
// the motor's state lock, and the intent lock is never held across a
// blocking wait on motor state.
type RotaryAxis struct {
	motor  *motor.Motor
	logger golog.Logger

	// cmdMu serializes move and jog setup so at most one supervisory task
	// is ever live for this axis.
	cmdMu sync.Mutex

	mu       sync.Mutex
	goal     *float64 // raw (unbounded) target, nil when no move is in flight
	jogging  bool
	moveDone chan struct{} // closed when the current supervisory task exits

	supervisorPolls atomic.Int64

	cancelCtx               context.Context
	cancel                  func()
	activeBackgroundWorkers sync.WaitGroup
}

// New constructs an axis and the motor it owns.
func New(cfg Config, logger golog.Logger) (*RotaryAxis, error) {
	m, err := motor.New(motor.Config{
		MaxSpeed:     cfg.MaxSpeed,
		Acceleration: cfg.Acceleration,
		TickRate:     cfg.TickRate,
	}, logger)
	if err != nil {
		return nil, err
	}
	cancelCtx, cancel := context.WithCancel(context.Background())
	return &RotaryAxis{
		motor:     m,
		logger:    logger,
		cancelCtx: cancelCtx,
		cancel:    cancel,
	}, nil
}

// SetAbsolutePosition moves to an absolute angle in degrees along the
// shortest arc. The call returns once the move is committed; use
// WaitForMove to block until arrival.
func (a *RotaryAxis) SetAbsolutePosition(targetDeg float64) {
	delta := utils.ShortestAngleDeltaDeg(a.motor.Position(), targetDeg)
	a.startMove(delta)
}

// SetRelativePosition moves by a relative angle: positive is clockwise,
// negative counter-clockwise.
func (a *RotaryAxis) SetRelativePosition(deltaDeg float64) {
	a.startMove(deltaDeg)
}

// startMove is the common entry point for absolute and relative moves. It
// cancels any in-flight goal or jog, brings the motor to a full stop so the
// new direction commitment starts from rest, and spawns one supervisory
// task for the move.
func (a *RotaryAxis) startMove(deltaDeg float64) {
	a.cmdMu.Lock()
	defer a.cmdMu.Unlock()

	// clearing the shared goal cancels the previous supervisory task
	a.mu.Lock()
	a.jogging = false
	a.goal = nil
	a.mu.Unlock()

	a.motor.Stop()
	a.waitForHalt()

	if math.Abs(deltaDeg) < positionTolerance {
		return
	}

	direction := 1
	if deltaDeg < 0 {
		direction = -1
	}
	goutils.UncheckedError(a.motor.SetDirection(direction))

	goal := a.motor.RawPosition() + deltaDeg
	done := make(chan struct{})
	a.mu.Lock()
	a.goal = &goal
	a.moveDone = done
	a.mu.Unlock()

	a.activeBackgroundWorkers.Add(1)
	goutils.PanicCapturingGo(func() {
		defer a.activeBackgroundWorkers.Done()
		defer close(done)
		a.supervise(goal)
	})
}

// supervise watches position at a fixed high-frequency poll and commands
// the stop at the moment the remaining travel equals the braking distance
// v^2/(2a), so the deceleration ramp lands on the goal. The goal is
// captured by value; if the shared goal no longer matches, another command
// has superseded this move and the task exits without side effects.
func (a *RotaryAxis) supervise(goalRaw float64) {
	a.mu.Lock()
	cancelled := a.goal == nil || *a.goal != goalRaw
	a.mu.Unlock()
	if cancelled {
		// superseded before the motor ever started
		return
	}
	a.motor.Start()
	stopIssued := false

	for {
		a.supervisorPolls.Inc()
		status := a.motor.Status()

		// clamped to 0 so overshoot reads as arrival rather than looping
		remaining := math.Max(float64(status.Direction)*(goalRaw-status.RawPosition), 0)

		a.mu.Lock()
		superseded := a.goal == nil || *a.goal != goalRaw
		a.mu.Unlock()
		if superseded {
			return
		}

		brakingDist := status.Speed * status.Speed / (2 * status.Acceleration)
		if !stopIssued && remaining <= brakingDist+positionTolerance {
			a.motor.Stop()
			stopIssued = true
		}

		// A stopped-and-halted motor also counts as arrival: moves shorter
		// than one braking distance may never cross the position threshold.
		if remaining <= positionTolerance || (stopIssued && !a.motor.IsMoving()) {
			a.mu.Lock()
			if a.goal != nil && *a.goal == goalRaw {
				a.goal = nil
			}
			a.mu.Unlock()
			return
		}

		if !goutils.SelectContextOrWait(a.cancelCtx, supervisePollInterval) {
			return
		}
	}
}

// waitForHalt blocks the calling thread until the motor has fully stopped.
func (a *RotaryAxis) waitForHalt() {
	for a.motor.IsMoving() {
		if !goutils.SelectContextOrWait(a.cancelCtx, haltPollInterval) {
			return
		}
	}
}

// WaitForMove blocks until the in-flight move completes. A non-positive
// timeout waits indefinitely. It returns false if the timeout expired or
// ctx was cancelled first, true otherwise.
func (a *RotaryAxis) WaitForMove(ctx context.Context, timeout time.Duration) bool {
	a.mu.Lock()
	done := a.moveDone
	a.mu.Unlock()
	if done == nil {
		return true
	}

	var timeoutC <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timeoutC = timer.C
	}
	select {
	case <-done:
		return true
	case <-timeoutC:
		return false
	case <-ctx.Done():
		return false
	}
}

// JogCW starts jogging clockwise at the configured speed until JogStop.
func (a *RotaryAxis) JogCW() {
	a.startJog(1)
}

// JogCCW starts jogging counter-clockwise until JogStop.
func (a *RotaryAxis) JogCCW() {
	a.startJog(-1)
}

func (a *RotaryAxis) startJog(direction int) {
	a.cmdMu.Lock()
	defer a.cmdMu.Unlock()

	a.mu.Lock()
	a.jogging = true
	a.goal = nil
	a.mu.Unlock()

	a.motor.Stop()
	a.waitForHalt()

	goutils.UncheckedError(a.motor.SetDirection(direction))
	a.motor.Start()
}

// JogStop ends an active jog, or any in-progress move, with a deceleration
// ramp. It does not block on the ramp.
func (a *RotaryAxis) JogStop() {
	a.mu.Lock()
	a.jogging = false
	a.goal = nil
	a.mu.Unlock()
	a.motor.Stop()
}

// SetSpeed changes the cruising speed in degrees per second.
func (a *RotaryAxis) SetSpeed(maxSpeed float64) error {
	return a.motor.SetMaxSpeed(maxSpeed)
}

// SetAcceleration changes the ramp rate in degrees per second squared.
func (a *RotaryAxis) SetAcceleration(acceleration float64) error {
	return a.motor.SetAcceleration(acceleration)
}

// Position returns the axis position in degrees, normalized to [0, 360).
func (a *RotaryAxis) Position() float64 {
	return a.motor.Position()
}

// Speed returns the instantaneous shaft speed in degrees per second.
func (a *RotaryAxis) Speed() float64 {
	return a.motor.Speed()
}

// IsMoving reports whether the axis is in motion, move or jog.
func (a *RotaryAxis) IsMoving() bool {
	return a.motor.IsMoving()
}

// State returns the motor's current profile phase.
func (a *RotaryAxis) State() motor.State {
	return a.motor.State()
}

// Jogging reports whether an open-ended jog is active.
func (a *RotaryAxis) Jogging() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.jogging
}

// Motor exposes the underlying motor, read-only by convention.
func (a *RotaryAxis) Motor() *motor.Motor {
	return a.motor
}

// SupervisorPolls returns how many supervisory loop iterations have run.
func (a *RotaryAxis) SupervisorPolls() int64 {
	return a.supervisorPolls.Load()
}

// Close cancels any in-flight move, waits for background tasks, and shuts
// down the motor's simulation loop.
func (a *RotaryAxis) Close(ctx context.Context) error {
	a.cancel()
	a.activeBackgroundWorkers.Wait()
	return multierr.Combine(a.motor.Close(ctx))
}
