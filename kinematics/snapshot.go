package kinematics

import (
	"github.com/axisforge/rigsim/spatialmath"
)

// ElementKind labels a snapshot node. The robot variants exist so a
// frontend can select device-specific models for the same underlying
// element types; the variant is chosen up front rather than rewritten after
// construction.
type ElementKind string

// Snapshot node labels.
const (
	KindLink       ElementKind = "Link"
	KindJoint      ElementKind = "Joint"
	KindRobotLink  ElementKind = "RobotLink"
	KindRobotJoint ElementKind = "RobotJoint"
)

// SnapshotStyle selects which label variants a snapshot uses.
type SnapshotStyle int

// Available snapshot styles.
const (
	StylePlain SnapshotStyle = iota
	StyleRobot
)

// SnapshotNode is one element of a hierarchical chain snapshot, nested
// under its predecessor to mirror the chain's linear hierarchy.
type SnapshotNode struct {
	Kind      ElementKind                 `json:"type"`
	Name      string                      `json:"name"`
	Axis      string                      `json:"axis,omitempty"`
	Position  *float64                    `json:"position,omitempty"`
	Transform spatialmath.TransformConfig `json:"transform"`
	Children  map[string]*SnapshotNode    `json:"children,omitempty"`
}

// Snapshot returns a hierarchical snapshot of the chain, each element
// nested under its predecessor: base → joint → link → ...
func (c *Chain) Snapshot(style SnapshotStyle) map[string]*SnapshotNode {
	c.mu.RLock()
	elements := make([]Element, len(c.elements))
	copy(elements, c.elements)
	c.mu.RUnlock()

	if len(elements) == 0 {
		return map[string]*SnapshotNode{}
	}

	var build func(index int) *SnapshotNode
	build = func(index int) *SnapshotNode {
		elem := elements[index]
		node := &SnapshotNode{
			Name:      elem.Name(),
			Transform: elem.Transform().Config(),
		}
		switch e := elem.(type) {
		case *Joint:
			node.Kind = KindJoint
			if style == StyleRobot {
				node.Kind = KindRobotJoint
			}
			node.Axis = string(e.Axis())
			pos := e.Position()
			node.Position = &pos
		case *Link:
			node.Kind = KindLink
			if style == StyleRobot {
				node.Kind = KindRobotLink
			}
		}
		if index+1 < len(elements) {
			next := elements[index+1]
			node.Children = map[string]*SnapshotNode{next.Name(): build(index + 1)}
		}
		return node
	}

	first := elements[0]
	return map[string]*SnapshotNode{first.Name(): build(0)}
}
