// Package kinematics implements serial kinematic chains of alternating
// rigid links and revolute joints, with forward kinematics by fold-compose
// of transforms from the base.
package kinematics

import (
	"sync"

	"github.com/axisforge/rigsim/spatialmath"
)

// Element is one entry of a chain, either a *Link or a *Joint.
type Element interface {
	Name() string
	Transform() spatialmath.Transform
}

// Chain is a serial kinematic chain: Link → Joint → Link → Joint → ...
// Elements are addressed by unique name. The chain structure is append-only
// after construction; joint angles may change live.
type Chain struct {
	mu          sync.RWMutex
	elements    []Element
	nameToIndex map[string]int
}

// NewChain creates an empty chain.
func NewChain() *Chain {
	return &Chain{nameToIndex: map[string]int{}}
}

func (c *Chain) add(e Element) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.nameToIndex[e.Name()]; ok {
		return NewDuplicateElementError(e.Name())
	}
	c.nameToIndex[e.Name()] = len(c.elements)
	c.elements = append(c.elements, e)
	return nil
}

// AddLink appends a link to the end of the chain.
func (c *Chain) AddLink(l *Link) error {
	return c.add(l)
}

// AddJoint appends a joint to the end of the chain.
func (c *Chain) AddJoint(j *Joint) error {
	return c.add(j)
}

// Joint returns the joint with the given name.
func (c *Chain) Joint(name string) (*Joint, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	idx, ok := c.nameToIndex[name]
	if !ok {
		return nil, NewElementNotFoundError(name)
	}
	j, ok := c.elements[idx].(*Joint)
	if !ok {
		return nil, NewUnexpectedElementError(name, &Joint{}, c.elements[idx])
	}
	return j, nil
}

// Link returns the link with the given name.
func (c *Chain) Link(name string) (*Link, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	idx, ok := c.nameToIndex[name]
	if !ok {
		return nil, NewElementNotFoundError(name)
	}
	l, ok := c.elements[idx].(*Link)
	if !ok {
		return nil, NewUnexpectedElementError(name, &Link{}, c.elements[idx])
	}
	return l, nil
}

// SetJointPosition sets the static angle of the named joint in degrees.
func (c *Chain) SetJointPosition(name string, deg float64) error {
	j, err := c.Joint(name)
	if err != nil {
		return err
	}
	j.SetPosition(deg)
	return nil
}

// WorldTransform computes the world transform of the named element by
// composing every element's transform from the base of the chain up to and
// including the named one.
func (c *Chain) WorldTransform(name string) (spatialmath.Transform, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	idx, ok := c.nameToIndex[name]
	if !ok {
		return spatialmath.Transform{}, NewElementNotFoundError(name)
	}
	result := spatialmath.NewTransform()
	for i := 0; i <= idx; i++ {
		result = result.Compose(c.elements[i].Transform())
	}
	return result, nil
}

// Elements returns all elements in chain order.
func (c *Chain) Elements() []Element {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Element, len(c.elements))
	copy(out, c.elements)
	return out
}
