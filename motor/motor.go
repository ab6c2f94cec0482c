// Package motor implements a simulated rotary servo motor with a trapezoidal
// velocity profile: linear ramp up to a cruising speed, constant cruise, and
// a symmetric ramp down to rest after a stop command. The simulation runs on
// a background loop owned by the motor for its entire lifetime.
package motor

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"github.com/axisforge/rigsim/utils"
)

// State describes which phase of the velocity profile the motor is in.
type State string

// The four profile phases. Transitions are driven by the integration loop,
// never assigned directly.
const (
	StateIdle         State = "idle"
	StateAccelerating State = "accelerating"
	StateCruising     State = "cruising"
	StateDecelerating State = "decelerating"
)

const defaultTickRate = 200.0

// Config describes how to construct a motor.
type Config struct {
	// MaxSpeed is the cruising speed in degrees per second.
	MaxSpeed float64 `json:"max_speed_degs_per_sec"`
	// Acceleration is the ramp rate in degrees per second squared, used for
	// both acceleration and deceleration.
	Acceleration float64 `json:"acceleration_degs_per_sec2"`
	// Direction is +1 for clockwise or -1 for counter-clockwise; 0 defaults
	// to clockwise.
	Direction int `json:"direction,omitempty"`
	// TickRate is the simulation update frequency in Hz; 0 defaults to 200.
	TickRate float64 `json:"tick_rate_hz,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate(path string) error {
	if cfg.MaxSpeed <= 0 {
		return goutils.NewConfigValidationError(path, errors.New("max_speed must be positive"))
	}
	if cfg.Acceleration <= 0 {
		return goutils.NewConfigValidationError(path, errors.New("acceleration must be positive"))
	}
	if cfg.Direction != 0 && cfg.Direction != 1 && cfg.Direction != -1 {
		return goutils.NewConfigValidationError(path, errors.New("direction must be +1 or -1"))
	}
	if cfg.TickRate < 0 {
		return goutils.NewConfigValidationError(path, errors.New("tick_rate must not be negative"))
	}
	return nil
}

// Status is a point-in-time sample of everything a control layer needs to
// read in one critical section.
type Status struct {
	RawPosition  float64
	Speed        float64
	MaxSpeed     float64
	Acceleration float64
	Direction    int
	Moving       bool
	State        State
}

// Motor simulates a single rotary servo. All public methods are safe for
// concurrent use; the simulation state is guarded by one mutex held only for
// the duration of a single read or integration step.
type Motor struct {
	logger       golog.Logger
	clock        clock.Clock
	tickInterval time.Duration

	mu           sync.Mutex
	rawPosition  float64
	speed        float64
	maxSpeed     float64
	acceleration float64
	direction    int
	running      bool
	decelerating bool

	cancelCtx               context.Context
	cancel                  func()
	activeBackgroundWorkers sync.WaitGroup
}

// New constructs a motor from cfg and starts its simulation loop.
func New(cfg Config, logger golog.Logger) (*Motor, error) {
	return NewWithClock(cfg, logger, clock.New())
}

// NewWithClock is New with an injectable clock for deterministic tests.
func NewWithClock(cfg Config, logger golog.Logger, c clock.Clock) (*Motor, error) {
	if err := cfg.Validate(""); err != nil {
		return nil, err
	}
	direction := cfg.Direction
	if direction == 0 {
		direction = 1
	}
	tickRate := cfg.TickRate
	if tickRate == 0 {
		tickRate = defaultTickRate
	}

	cancelCtx, cancel := context.WithCancel(context.Background())
	m := &Motor{
		logger:       logger,
		clock:        c,
		tickInterval: time.Duration(float64(time.Second) / tickRate),
		maxSpeed:     cfg.MaxSpeed,
		acceleration: cfg.Acceleration,
		direction:    direction,
		cancelCtx:    cancelCtx,
		cancel:       cancel,
	}

	m.activeBackgroundWorkers.Add(1)
	goutils.ManagedGo(func() {
		m.simulate(cancelCtx)
	}, m.activeBackgroundWorkers.Done)
	return m, nil
}

// Start commands the motor to begin rotating, ramping from its current speed
// toward the cruising speed. Calling Start on a motor that is already
// running and not decelerating has no effect.
func (m *Motor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running && !m.decelerating {
		return
	}
	m.logger.Debug("motor starting")
	m.running = true
	m.decelerating = false
}

// Stop commands the motor to decelerate to rest at the configured ramp rate.
// Calling Stop on a fully halted motor has no effect.
func (m *Motor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running && m.speed == 0 {
		return
	}
	m.logger.Debug("motor stopping")
	m.running = false
	m.decelerating = true
}

// SetDirection changes the rotation direction (+1 or -1). It is safe to call
// mid-motion, but reversing without a full stop first produces a
// discontinuous pose; callers are expected to halt first.
func (m *Motor) SetDirection(direction int) error {
	if direction != 1 && direction != -1 {
		return errors.Errorf("direction must be +1 or -1, got %d", direction)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.direction = direction
	return nil
}

// SetMaxSpeed changes the cruising speed in degrees per second.
func (m *Motor) SetMaxSpeed(maxSpeed float64) error {
	if maxSpeed <= 0 {
		return errors.New("max_speed must be positive")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maxSpeed = maxSpeed
	return nil
}

// SetAcceleration changes the ramp rate in degrees per second squared.
func (m *Motor) SetAcceleration(acceleration float64) error {
	if acceleration <= 0 {
		return errors.New("acceleration must be positive")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.acceleration = acceleration
	return nil
}

// ResetPosition zeroes the position accumulator. The motor may still be
// moving.
func (m *Motor) ResetPosition() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rawPosition = 0
}

// Position returns the current angular position in degrees, normalized to
// [0, 360).
func (m *Motor) Position() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return utils.ModAngDeg(m.rawPosition)
}

// RawPosition returns the cumulative angular position in degrees, unbounded
// so that full turns accumulate.
func (m *Motor) RawPosition() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rawPosition
}

// Speed returns the current rotational speed in degrees per second, always
// non-negative.
func (m *Motor) Speed() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.speed
}

// IsMoving reports whether the shaft is in motion, including during ramp up
// and ramp down.
func (m *Motor) IsMoving() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.speed > 0
}

// State returns the current profile phase.
func (m *Motor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stateLocked()
}

func (m *Motor) stateLocked() State {
	switch {
	case m.speed == 0 && !m.running:
		return StateIdle
	case m.decelerating:
		return StateDecelerating
	case m.running && m.speed < m.maxSpeed:
		return StateAccelerating
	default:
		return StateCruising
	}
}

// Status samples the full motor state under a single lock acquisition.
func (m *Motor) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Status{
		RawPosition:  m.rawPosition,
		Speed:        m.speed,
		MaxSpeed:     m.maxSpeed,
		Acceleration: m.acceleration,
		Direction:    m.direction,
		Moving:       m.speed > 0,
		State:        m.stateLocked(),
	}
}

// Close stops the simulation loop and waits for it to exit. The motor must
// not be used afterward.
func (m *Motor) Close(ctx context.Context) error {
	m.cancel()
	m.activeBackgroundWorkers.Wait()
	return nil
}

// simulate advances the velocity profile until the motor is closed. Each
// tick integrates over the measured elapsed time rather than a fixed step so
// that scheduling jitter does not distort the profile.
func (m *Motor) simulate(cancelCtx context.Context) {
	ticker := m.clock.Ticker(m.tickInterval)
	defer ticker.Stop()
	last := m.clock.Now()
	for {
		select {
		case <-cancelCtx.Done():
			return
		case <-ticker.C:
		}
		now := m.clock.Now()
		dt := now.Sub(last).Seconds()
		last = now
		m.step(dt)
	}
}

func (m *Motor) step(dt float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		if m.speed < m.maxSpeed {
			m.speed = math.Min(m.speed+m.acceleration*dt, m.maxSpeed)
		}
	} else if m.decelerating {
		if m.speed > 0 {
			m.speed = math.Max(m.speed-m.acceleration*dt, 0)
		}
		if m.speed == 0 {
			m.decelerating = false
		}
	}
	m.rawPosition += float64(m.direction) * m.speed * dt
}
