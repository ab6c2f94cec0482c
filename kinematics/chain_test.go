package kinematics

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/axisforge/rigsim/spatialmath"
)

func buildTestArm(t *testing.T) *Chain {
	t.Helper()
	c := NewChain()

	test.That(t, c.AddLink(NewLink("base", spatialmath.NewTransform())), test.ShouldBeNil)

	shoulder, err := NewJoint("shoulder", AxisZ)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, c.AddJoint(shoulder), test.ShouldBeNil)
	test.That(t, c.AddLink(NewLink(
		"upper_arm", spatialmath.NewTransformFromPosition(r3.Vector{Y: 1}),
	)), test.ShouldBeNil)

	elbow, err := NewJoint("elbow", AxisZ)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, c.AddJoint(elbow), test.ShouldBeNil)
	test.That(t, c.AddLink(NewLink(
		"forearm", spatialmath.NewTransformFromPosition(r3.Vector{Y: 0.8}),
	)), test.ShouldBeNil)

	wrist, err := NewJoint("wrist", AxisZ)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, c.AddJoint(wrist), test.ShouldBeNil)
	test.That(t, c.AddLink(NewLink(
		"end_effector", spatialmath.NewTransformFromPosition(r3.Vector{Y: 0.3}),
	)), test.ShouldBeNil)

	return c
}

func vecAlmostEqual(t *testing.T, got, want r3.Vector, tol float64) {
	t.Helper()
	test.That(t, math.Abs(got.X-want.X), test.ShouldBeLessThan, tol)
	test.That(t, math.Abs(got.Y-want.Y), test.ShouldBeLessThan, tol)
	test.That(t, math.Abs(got.Z-want.Z), test.ShouldBeLessThan, tol)
}

func TestForwardKinematicsAtZero(t *testing.T) {
	c := buildTestArm(t)

	tf, err := c.WorldTransform("end_effector")
	test.That(t, err, test.ShouldBeNil)
	vecAlmostEqual(t, tf.Position, r3.Vector{Y: 2.1}, 1e-9)
	vecAlmostEqual(t, tf.Rotation, r3.Vector{}, 1e-9)

	mid, err := c.WorldTransform("forearm")
	test.That(t, err, test.ShouldBeNil)
	vecAlmostEqual(t, mid.Position, r3.Vector{Y: 1.8}, 1e-9)
}

func TestForwardKinematicsShoulderRotation(t *testing.T) {
	c := buildTestArm(t)

	// Rotating the shoulder 90 degrees about Z swings the whole arm from
	// +Y to -X.
	test.That(t, c.SetJointPosition("shoulder", 90), test.ShouldBeNil)

	tf, err := c.WorldTransform("end_effector")
	test.That(t, err, test.ShouldBeNil)
	vecAlmostEqual(t, tf.Position, r3.Vector{X: -2.1}, 1e-9)
	vecAlmostEqual(t, tf.Rotation, r3.Vector{Z: 90}, 1e-9)
}

func TestForwardKinematicsElbowBend(t *testing.T) {
	c := buildTestArm(t)

	// Only the segments past the elbow swing; the upper arm stays on +Y.
	test.That(t, c.SetJointPosition("elbow", 90), test.ShouldBeNil)

	tf, err := c.WorldTransform("end_effector")
	test.That(t, err, test.ShouldBeNil)
	vecAlmostEqual(t, tf.Position, r3.Vector{X: -1.1, Y: 1}, 1e-9)

	upper, err := c.WorldTransform("upper_arm")
	test.That(t, err, test.ShouldBeNil)
	vecAlmostEqual(t, upper.Position, r3.Vector{Y: 1}, 1e-9)
}

func TestChainLookupErrors(t *testing.T) {
	c := buildTestArm(t)

	_, err := c.Joint("nonexistent")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "no chain element")

	_, err = c.WorldTransform("nonexistent")
	test.That(t, err, test.ShouldNotBeNil)

	_, err = c.Joint("upper_arm")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "expected")

	_, err = c.Link("shoulder")
	test.That(t, err, test.ShouldNotBeNil)

	err = c.AddLink(NewLink("base", spatialmath.NewTransform()))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "already exists")
}

func TestJointValidation(t *testing.T) {
	_, err := NewJoint("bad", RotationAxis("w"))
	test.That(t, err, test.ShouldNotBeNil)

	axis, err := ParseRotationAxis("y")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, axis, test.ShouldEqual, AxisY)

	_, err = ParseRotationAxis("")
	test.That(t, err, test.ShouldNotBeNil)
}

type fixedAngle float64

func (f fixedAngle) Position() float64 { return float64(f) }

func TestJointBoundSource(t *testing.T) {
	c := buildTestArm(t)

	shoulder, err := c.Joint("shoulder")
	test.That(t, err, test.ShouldBeNil)
	shoulder.BindSource(fixedAngle(90))

	// A bound source overrides the static angle.
	shoulder.SetPosition(45)
	test.That(t, shoulder.Position(), test.ShouldEqual, 90.0)

	tf, err := c.WorldTransform("end_effector")
	test.That(t, err, test.ShouldBeNil)
	vecAlmostEqual(t, tf.Position, r3.Vector{X: -2.1}, 1e-9)
}

func TestSnapshot(t *testing.T) {
	c := buildTestArm(t)
	test.That(t, c.SetJointPosition("shoulder", 30), test.ShouldBeNil)

	snap := c.Snapshot(StylePlain)
	test.That(t, len(snap), test.ShouldEqual, 1)

	base, ok := snap["base"]
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, base.Kind, test.ShouldEqual, KindLink)

	shoulder, ok := base.Children["shoulder"]
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, shoulder.Kind, test.ShouldEqual, KindJoint)
	test.That(t, shoulder.Axis, test.ShouldEqual, "z")
	test.That(t, *shoulder.Position, test.ShouldEqual, 30.0)

	upper, ok := shoulder.Children["upper_arm"]
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, upper.Transform.Position, test.ShouldResemble, []float64{0, 1, 0})

	// Walk to the leaf.
	node := upper
	for _, name := range []string{"elbow", "forearm", "wrist", "end_effector"} {
		node, ok = node.Children[name]
		test.That(t, ok, test.ShouldBeTrue)
	}
	test.That(t, node.Children, test.ShouldBeNil)

	robot := c.Snapshot(StyleRobot)
	test.That(t, robot["base"].Kind, test.ShouldEqual, KindRobotLink)
	test.That(t, robot["base"].Children["shoulder"].Kind, test.ShouldEqual, KindRobotJoint)
}

func TestSnapshotEmptyChain(t *testing.T) {
	snap := NewChain().Snapshot(StylePlain)
	test.That(t, snap, test.ShouldBeEmpty)
}
