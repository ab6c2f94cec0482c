package axis

import (
	"context"
	"testing"
	"time"

	"github.com/edaniels/golog"
	"go.viam.com/test"
	"go.viam.com/utils/testutils"

	"github.com/axisforge/rigsim/motor"
)

// arrivalSlack loosens the controller's 0.05° tolerance for wall-clock
// tests, where poll scheduling jitter adds overshoot.
const arrivalSlack = 2.0

func newTestAxis(t *testing.T, cfg Config) *RotaryAxis {
	t.Helper()
	a, err := New(cfg, golog.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	t.Cleanup(func() {
		test.That(t, a.Close(context.Background()), test.ShouldBeNil)
	})
	return a
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{}
	test.That(t, cfg.Validate("axis"), test.ShouldNotBeNil)
	_, err := New(cfg, golog.NewTestLogger(t))
	test.That(t, err, test.ShouldNotBeNil)

	cfg = Config{MaxSpeed: 180, Acceleration: 60}
	test.That(t, cfg.Validate("axis"), test.ShouldBeNil)
}

func TestAbsoluteMove(t *testing.T) {
	a := newTestAxis(t, Config{MaxSpeed: 180, Acceleration: 60, TickRate: 400})

	a.SetAbsolutePosition(200)
	ok := a.WaitForMove(context.Background(), 10*time.Second)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, a.Position(), test.ShouldAlmostEqual, 200, arrivalSlack)
	test.That(t, a.SupervisorPolls(), test.ShouldBeGreaterThan, 0)

	// the axis settles: no residual motion after arrival
	testutils.WaitForAssertion(t, func(tb testing.TB) {
		tb.Helper()
		test.That(tb, a.IsMoving(), test.ShouldBeFalse)
		test.That(tb, a.State(), test.ShouldEqual, motor.StateIdle)
	})
}

func TestRelativeMoveWraparound(t *testing.T) {
	a := newTestAxis(t, Config{MaxSpeed: 720, Acceleration: 1440, TickRate: 400})

	a.SetRelativePosition(-90)
	ok := a.WaitForMove(context.Background(), 10*time.Second)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, a.Position(), test.ShouldAlmostEqual, 270, arrivalSlack)
}

func TestAbsoluteMoveTakesShortestPath(t *testing.T) {
	a := newTestAxis(t, Config{MaxSpeed: 720, Acceleration: 1440, TickRate: 400})

	// 350° is 10° counter-clockwise from 0, not 350° clockwise: the raw
	// position goes negative rather than accumulating a near-full turn
	a.SetAbsolutePosition(350)
	ok := a.WaitForMove(context.Background(), 10*time.Second)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, a.Position(), test.ShouldAlmostEqual, 350, arrivalSlack)
	test.That(t, a.Motor().RawPosition(), test.ShouldBeLessThan, 0)
}

func TestMoveSupersedesMove(t *testing.T) {
	a := newTestAxis(t, Config{MaxSpeed: 90, Acceleration: 45, TickRate: 400})

	// a slow full-turn move, immediately replaced
	a.SetRelativePosition(360)
	a.SetAbsolutePosition(45)

	ok := a.WaitForMove(context.Background(), 15*time.Second)
	test.That(t, ok, test.ShouldBeTrue)
	testutils.WaitForAssertion(t, func(tb testing.TB) {
		tb.Helper()
		test.That(tb, a.IsMoving(), test.ShouldBeFalse)
	})
	test.That(t, a.Position(), test.ShouldAlmostEqual, 45, arrivalSlack)
}

func TestSubToleranceMove(t *testing.T) {
	a := newTestAxis(t, Config{MaxSpeed: 180, Acceleration: 60, TickRate: 400})

	a.SetRelativePosition(0.01)
	// no motion was started and there is nothing to wait on
	test.That(t, a.WaitForMove(context.Background(), time.Second), test.ShouldBeTrue)
	test.That(t, a.IsMoving(), test.ShouldBeFalse)
	test.That(t, a.Position(), test.ShouldAlmostEqual, 0, positionTolerance)
}

func TestSubToleranceMoveHaltsResidualMotion(t *testing.T) {
	a := newTestAxis(t, Config{MaxSpeed: 360, Acceleration: 720, TickRate: 400})

	// leave the motor jogging, then command a sub-tolerance move; the move
	// setup must ramp the jog out before returning
	a.JogCW()
	testutils.WaitForAssertion(t, func(tb testing.TB) {
		tb.Helper()
		test.That(tb, a.IsMoving(), test.ShouldBeTrue)
	})
	a.SetRelativePosition(0.01)
	test.That(t, a.IsMoving(), test.ShouldBeFalse)
}

func TestJog(t *testing.T) {
	a := newTestAxis(t, Config{MaxSpeed: 360, Acceleration: 720, TickRate: 400})

	a.JogCW()
	test.That(t, a.Jogging(), test.ShouldBeTrue)
	testutils.WaitForAssertion(t, func(tb testing.TB) {
		tb.Helper()
		test.That(tb, a.Speed(), test.ShouldBeGreaterThan, 0)
	})

	a.JogStop()
	test.That(t, a.Jogging(), test.ShouldBeFalse)
	testutils.WaitForAssertion(t, func(tb testing.TB) {
		tb.Helper()
		test.That(tb, a.IsMoving(), test.ShouldBeFalse)
	})
	cwPos := a.Motor().RawPosition()
	test.That(t, cwPos, test.ShouldBeGreaterThan, 0)

	a.JogCCW()
	testutils.WaitForAssertion(t, func(tb testing.TB) {
		tb.Helper()
		test.That(tb, a.Speed(), test.ShouldBeGreaterThan, 0)
	})
	a.JogStop()
	testutils.WaitForAssertion(t, func(tb testing.TB) {
		tb.Helper()
		test.That(tb, a.IsMoving(), test.ShouldBeFalse)
	})
	test.That(t, a.Motor().RawPosition(), test.ShouldBeLessThan, cwPos)
}

func TestJogCancelsMove(t *testing.T) {
	a := newTestAxis(t, Config{MaxSpeed: 90, Acceleration: 45, TickRate: 400})

	a.SetRelativePosition(360)
	testutils.WaitForAssertion(t, func(tb testing.TB) {
		tb.Helper()
		test.That(tb, a.IsMoving(), test.ShouldBeTrue)
	})
	a.JogStop()
	testutils.WaitForAssertion(t, func(tb testing.TB) {
		tb.Helper()
		test.That(tb, a.IsMoving(), test.ShouldBeFalse)
	})
	// the superseded supervisor exits: the goal was cleared by JogStop
	test.That(t, a.WaitForMove(context.Background(), 5*time.Second), test.ShouldBeTrue)
}

func TestWaitForMoveTimeout(t *testing.T) {
	a := newTestAxis(t, Config{MaxSpeed: 90, Acceleration: 45, TickRate: 400})

	a.SetRelativePosition(720)
	test.That(t, a.WaitForMove(context.Background(), 20*time.Millisecond), test.ShouldBeFalse)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	test.That(t, a.WaitForMove(ctx, 0), test.ShouldBeFalse)

	a.JogStop()
}

func TestRuntimeTuning(t *testing.T) {
	a := newTestAxis(t, Config{MaxSpeed: 90, Acceleration: 45, TickRate: 400})

	test.That(t, a.SetSpeed(-1), test.ShouldNotBeNil)
	test.That(t, a.SetAcceleration(0), test.ShouldNotBeNil)
	test.That(t, a.SetSpeed(720), test.ShouldBeNil)
	test.That(t, a.SetAcceleration(1440), test.ShouldBeNil)

	a.SetRelativePosition(-90)
	test.That(t, a.WaitForMove(context.Background(), 10*time.Second), test.ShouldBeTrue)
	test.That(t, a.Position(), test.ShouldAlmostEqual, 270, arrivalSlack)
}
