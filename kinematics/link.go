package kinematics

import (
	"github.com/axisforge/rigsim/spatialmath"
)

// Link is a rigid body segment in a kinematic chain. It carries no state,
// only a constant local transform relative to its predecessor.
type Link struct {
	name      string
	transform spatialmath.Transform
}

// NewLink creates a link with a fixed local offset.
func NewLink(name string, transform spatialmath.Transform) *Link {
	return &Link{name: name, transform: transform}
}

// Name returns the link's identifier.
func (l *Link) Name() string {
	return l.name
}

// Transform returns the link's fixed local transform.
func (l *Link) Transform() spatialmath.Transform {
	return l.transform
}
