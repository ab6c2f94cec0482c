// Package scene implements a transform hierarchy of named, typed nodes
// rooted at a world frame, with snapshot generation for visualization
// clients: a static definition describing the graph and a state update
// carrying per-node world matrices.
package scene

import (
	"sync"

	"github.com/google/uuid"

	"github.com/axisforge/rigsim/spatialmath"
)

// NodeKind tags what a scene node represents so clients can pick an
// appropriate model for it.
type NodeKind string

// Recognized node kinds.
const (
	KindBasicComponent NodeKind = "basic_component"
	KindAxisBase       NodeKind = "axis_base"
	KindAxisRotor      NodeKind = "axis_rotor"
	KindRobotJoint     NodeKind = "robot_joint"
	KindRobotLink      NodeKind = "robot_link"
)

// DynamicTransformer contributes a live transform on top of a node's static
// local transform. *kinematics.Joint satisfies it.
type DynamicTransformer interface {
	DynamicTransform() spatialmath.Transform
}

// Node is the caller-facing description of a scene graph node.
type Node struct {
	Name      string
	Kind      NodeKind
	Transform spatialmath.Transform
	// Locked nodes reject SetTransform; their placement is owned by the
	// rig that created them.
	Locked  bool
	Dynamic DynamicTransformer
	CADFile string
	CADBody string
}

// node is the arena entry. Children are held as arena indexes so the graph
// carries no pointers between entries.
type node struct {
	id       uuid.UUID
	data     Node
	parent   int
	children []int
	removed  bool
}

// Scene is a tree of nodes under a single world root. Node identity is a
// generated UUID. Removal tombstones arena entries rather than compacting,
// so indexes held in children lists stay valid.
type Scene struct {
	mu        sync.RWMutex
	nodes     []node
	idToIndex map[uuid.UUID]int
}

// New creates a scene containing only the world root.
func New() *Scene {
	s := &Scene{idToIndex: map[uuid.UUID]int{}}
	rootID := uuid.New()
	s.nodes = append(s.nodes, node{
		id:     rootID,
		data:   Node{Name: "world", Transform: spatialmath.NewTransform()},
		parent: -1,
	})
	s.idToIndex[rootID] = 0
	return s
}

// Root returns the ID of the world root.
func (s *Scene) Root() uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nodes[0].id
}

// AddNode attaches n under the given parent and returns its generated ID.
func (s *Scene) AddNode(parentID uuid.UUID, n Node) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	parentIdx, ok := s.idToIndex[parentID]
	if !ok {
		return uuid.Nil, NewNodeNotFoundError(parentID)
	}
	id := uuid.New()
	idx := len(s.nodes)
	s.nodes = append(s.nodes, node{id: id, data: n, parent: parentIdx})
	s.nodes[parentIdx].children = append(s.nodes[parentIdx].children, idx)
	s.idToIndex[id] = idx
	return id, nil
}

// RemoveNode detaches the node and its whole subtree from the scene. The
// world root cannot be removed.
func (s *Scene) RemoveNode(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.idToIndex[id]
	if !ok {
		return NewNodeNotFoundError(id)
	}
	if idx == 0 {
		return NewRootRemovalError()
	}

	parent := &s.nodes[s.nodes[idx].parent]
	for i, child := range parent.children {
		if child == idx {
			parent.children = append(parent.children[:i], parent.children[i+1:]...)
			break
		}
	}

	var tombstone func(i int)
	tombstone = func(i int) {
		s.nodes[i].removed = true
		delete(s.idToIndex, s.nodes[i].id)
		for _, child := range s.nodes[i].children {
			tombstone(child)
		}
	}
	tombstone(idx)
	return nil
}

// Node returns a copy of the node's description.
func (s *Scene) Node(id uuid.UUID) (Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.idToIndex[id]
	if !ok {
		return Node{}, NewNodeNotFoundError(id)
	}
	return s.nodes[idx].data, nil
}

// FindByName returns the ID of the first node with the given name in
// depth-first order.
func (s *Scene) FindByName(name string) (uuid.UUID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var walk func(idx int) (uuid.UUID, bool)
	walk = func(idx int) (uuid.UUID, bool) {
		if s.nodes[idx].data.Name == name {
			return s.nodes[idx].id, true
		}
		for _, child := range s.nodes[idx].children {
			if id, ok := walk(child); ok {
				return id, true
			}
		}
		return uuid.Nil, false
	}
	return walk(0)
}

// SetTransform replaces the node's static local transform. Locked nodes
// reject the update.
func (s *Scene) SetTransform(id uuid.UUID, tf spatialmath.Transform) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.idToIndex[id]
	if !ok {
		return NewNodeNotFoundError(id)
	}
	if s.nodes[idx].data.Locked {
		return NewNodeLockedError(s.nodes[idx].data.Name)
	}
	s.nodes[idx].data.Transform = tf
	return nil
}

// localTransform is the node's static transform composed with its dynamic
// contribution, if any.
func (n *node) localTransform() spatialmath.Transform {
	tf := n.data.Transform
	if n.data.Dynamic != nil {
		tf = tf.Compose(n.data.Dynamic.DynamicTransform())
	}
	return tf
}

// WorldTransform computes the node's transform relative to the world root.
func (s *Scene) WorldTransform(id uuid.UUID) (spatialmath.Transform, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.idToIndex[id]
	if !ok {
		return spatialmath.Transform{}, NewNodeNotFoundError(id)
	}
	var lineage []int
	for i := idx; i != -1; i = s.nodes[i].parent {
		lineage = append(lineage, i)
	}
	world := spatialmath.NewTransform()
	for i := len(lineage) - 1; i >= 0; i-- {
		world = world.Compose(s.nodes[lineage[i]].localTransform())
	}
	return world, nil
}

// NodeDefinition is one component of a static scene definition.
type NodeDefinition struct {
	ID        string                      `json:"id"`
	Name      string                      `json:"name"`
	Type      NodeKind                    `json:"type"`
	Parent    string                      `json:"parent,omitempty"`
	Transform spatialmath.TransformConfig `json:"transform"`
	Locked    bool                        `json:"locked,omitempty"`
	CADFile   string                      `json:"cad_file,omitempty"`
	CADBody   string                      `json:"cad_body,omitempty"`
}

// StaticDefinition describes the scene's structure without poses. Clients
// use it to load models once, then apply state updates.
type StaticDefinition struct {
	Type       string           `json:"type"`
	Components []NodeDefinition `json:"components"`
}

// NodeState carries one node's world pose as a 16 element row major
// homogeneous matrix.
type NodeState struct {
	ID     string    `json:"id"`
	Matrix []float64 `json:"matrix"`
}

// State is a full-scene pose update.
type State struct {
	Type       string      `json:"type"`
	Components []NodeState `json:"components"`
}

// StaticDefinition returns the scene's structural snapshot in depth-first
// order, excluding the world root.
func (s *Scene) StaticDefinition() StaticDefinition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	def := StaticDefinition{Type: "static_scene_definition"}
	var walk func(idx int)
	walk = func(idx int) {
		n := &s.nodes[idx]
		if idx != 0 {
			entry := NodeDefinition{
				ID:        n.id.String(),
				Name:      n.data.Name,
				Type:      n.data.Kind,
				Transform: n.data.Transform.Config(),
				Locked:    n.data.Locked,
				CADFile:   n.data.CADFile,
				CADBody:   n.data.CADBody,
			}
			if n.parent != 0 {
				entry.Parent = s.nodes[n.parent].id.String()
			}
			def.Components = append(def.Components, entry)
		}
		for _, child := range n.children {
			walk(child)
		}
	}
	walk(0)
	return def
}

// State returns every node's current world pose in depth-first order,
// excluding the world root. Dynamic transforms are sampled once per call.
func (s *Scene) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := State{Type: "state_update"}
	var walk func(idx int, parentWorld spatialmath.Transform)
	walk = func(idx int, parentWorld spatialmath.Transform) {
		n := &s.nodes[idx]
		world := parentWorld.Compose(n.localTransform())
		if idx != 0 {
			st.Components = append(st.Components, NodeState{
				ID:     n.id.String(),
				Matrix: world.FlatMatrix(),
			})
		}
		for _, child := range n.children {
			walk(child, world)
		}
	}
	walk(0, spatialmath.NewTransform())
	return st
}
