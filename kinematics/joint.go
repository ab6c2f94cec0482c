package kinematics

import (
	"sync"

	"github.com/golang/geo/r3"

	"github.com/axisforge/rigsim/spatialmath"
)

// RotationAxis is the axis a revolute joint rotates about.
type RotationAxis string

// The three permitted rotation axes.
const (
	AxisX RotationAxis = "x"
	AxisY RotationAxis = "y"
	AxisZ RotationAxis = "z"
)

// ParseRotationAxis validates an axis literal from a descriptor.
func ParseRotationAxis(s string) (RotationAxis, error) {
	switch RotationAxis(s) {
	case AxisX, AxisY, AxisZ:
		return RotationAxis(s), nil
	default:
		return "", NewInvalidAxisError(s)
	}
}

// AngleSource provides the live angle, in degrees, of an actuated joint.
// *axis.RotaryAxis satisfies it.
type AngleSource interface {
	Position() float64
}

// Joint is a single revolute degree of freedom in a kinematic chain. Its
// current angle determines its effective transform at runtime. The angle is
// either held statically (SetPosition) or read live from a bound
// AngleSource.
type Joint struct {
	name string
	axis RotationAxis

	mu       sync.Mutex
	position float64
	source   AngleSource
}

// NewJoint creates a revolute joint rotating about the given axis.
func NewJoint(name string, axis RotationAxis) (*Joint, error) {
	if _, err := ParseRotationAxis(string(axis)); err != nil {
		return nil, err
	}
	return &Joint{name: name, axis: axis}, nil
}

// Name returns the joint's identifier.
func (j *Joint) Name() string {
	return j.name
}

// Axis returns the joint's rotation axis.
func (j *Joint) Axis() RotationAxis {
	return j.axis
}

// SetPosition sets the static joint angle in degrees. It is ignored while
// an AngleSource is bound.
func (j *Joint) SetPosition(deg float64) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.position = deg
}

// BindSource attaches a live angle source, typically a motion controller.
func (j *Joint) BindSource(src AngleSource) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.source = src
}

// Position returns the current joint angle in degrees.
func (j *Joint) Position() float64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.source != nil {
		return j.source.Position()
	}
	return j.position
}

// Transform returns the rotation contributed by the joint's current angle
// about its configured axis.
func (j *Joint) Transform() spatialmath.Transform {
	deg := j.Position()
	var rot r3.Vector
	switch j.axis {
	case AxisX:
		rot = r3.Vector{X: deg}
	case AxisY:
		rot = r3.Vector{Y: deg}
	case AxisZ:
		rot = r3.Vector{Z: deg}
	}
	return spatialmath.NewTransformFromRotation(rot)
}

// DynamicTransform lets a Joint contribute its live rotation to a scene
// node.
func (j *Joint) DynamicTransform() spatialmath.Transform {
	return j.Transform()
}
