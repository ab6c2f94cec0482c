// Package rig assembles the simulation layers into a complete device: one
// motor and motion controller per joint, the joints bound into a kinematic
// chain for forward kinematics, and every element mirrored into a scene
// tree for visualization.
package rig

import (
	"context"
	"time"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"

	"github.com/axisforge/rigsim/axis"
	"github.com/axisforge/rigsim/kinematics"
	"github.com/axisforge/rigsim/motor"
	"github.com/axisforge/rigsim/scene"
	"github.com/axisforge/rigsim/spatialmath"
)

// Actuator is the motion command surface of a rig joint.
type Actuator interface {
	SetAbsolutePosition(targetDeg float64)
	SetRelativePosition(deltaDeg float64)
	WaitForMove(ctx context.Context, timeout time.Duration) bool
	JogCW()
	JogCCW()
	JogStop()
	SetSpeed(maxSpeed float64) error
	SetAcceleration(acceleration float64) error
}

// PoseProvider reports the live angular state of a rig joint.
type PoseProvider interface {
	Position() float64
	Speed() float64
	IsMoving() bool
}

var (
	_ Actuator     = (*axis.RotaryAxis)(nil)
	_ PoseProvider = (*axis.RotaryAxis)(nil)
)

// Rig is a fully assembled device. Joint angles flow from the motion
// controllers into the chain and scene automatically; callers command the
// axes and read poses.
type Rig struct {
	name   string
	logger golog.Logger

	chain *kinematics.Chain
	scene *scene.Scene

	axes       map[string]*axis.RotaryAxis
	jointOrder []string
}

// New builds a rig from its config. On error every motor loop already
// started is torn down before returning.
func New(cfg Config, logger golog.Logger) (r *Rig, err error) {
	if err := cfg.Validate(cfg.Name); err != nil {
		return nil, err
	}

	r = &Rig{
		name:   cfg.Name,
		logger: logger,
		chain:  kinematics.NewChain(),
		scene:  scene.New(),
		axes:   map[string]*axis.RotaryAxis{},
	}
	defer func() {
		if err != nil {
			goutils.UncheckedError(r.Close(context.Background()))
		}
	}()

	parent := r.scene.Root()
	for _, elem := range cfg.Elements {
		switch {
		case elem.Joint != nil:
			jc := elem.Joint
			if _, exists := r.axes[jc.Name]; exists {
				return nil, kinematics.NewDuplicateElementError(jc.Name)
			}
			ax, err := axis.New(axis.Config{
				MaxSpeed:     jc.MaxSpeed,
				Acceleration: jc.Acceleration,
				TickRate:     cfg.TickRate,
			}, logger.Named(jc.Name))
			if err != nil {
				return nil, err
			}
			r.axes[jc.Name] = ax
			r.jointOrder = append(r.jointOrder, jc.Name)

			joint, err := kinematics.NewJoint(jc.Name, kinematics.RotationAxis(jc.Axis))
			if err != nil {
				return nil, err
			}
			joint.BindSource(ax)
			if err := r.chain.AddJoint(joint); err != nil {
				return nil, err
			}

			parent, err = r.scene.AddNode(parent, scene.Node{
				Name:      jc.Name,
				Kind:      scene.KindRobotJoint,
				Transform: spatialmath.NewTransform(),
				Locked:    true,
				Dynamic:   joint,
			})
			if err != nil {
				return nil, err
			}
		case elem.Link != nil:
			lc := elem.Link
			tf, err := spatialmath.NewTransformFromConfig(lc.Transform)
			if err != nil {
				return nil, err
			}
			if err := r.chain.AddLink(kinematics.NewLink(lc.Name, tf)); err != nil {
				return nil, err
			}

			parent, err = r.scene.AddNode(parent, scene.Node{
				Name:      lc.Name,
				Kind:      scene.KindRobotLink,
				Transform: tf,
				Locked:    true,
				CADFile:   lc.CADFile,
				CADBody:   lc.CADBody,
			})
			if err != nil {
				return nil, err
			}
		}
	}
	return r, nil
}

// Name returns the rig's configured name.
func (r *Rig) Name() string {
	return r.name
}

// Axis returns the motion controller driving the named joint.
func (r *Rig) Axis(name string) (*axis.RotaryAxis, error) {
	ax, ok := r.axes[name]
	if !ok {
		return nil, errors.Errorf("rig %q has no axis named %q", r.name, name)
	}
	return ax, nil
}

// AxisNames returns the actuated joint names in chain order.
func (r *Rig) AxisNames() []string {
	out := make([]string, len(r.jointOrder))
	copy(out, r.jointOrder)
	return out
}

// Chain returns the rig's kinematic chain.
func (r *Rig) Chain() *kinematics.Chain {
	return r.chain
}

// Scene returns the rig's scene tree.
func (r *Rig) Scene() *scene.Scene {
	return r.scene
}

// WorldTransform computes the world pose of the named chain element using
// the live joint angles.
func (r *Rig) WorldTransform(name string) (spatialmath.Transform, error) {
	return r.chain.WorldTransform(name)
}

// Snapshot returns the chain's nested structural snapshot.
func (r *Rig) Snapshot() map[string]*kinematics.SnapshotNode {
	return r.chain.Snapshot(kinematics.StyleRobot)
}

// StaticDefinition returns the scene's structural snapshot.
func (r *Rig) StaticDefinition() scene.StaticDefinition {
	return r.scene.StaticDefinition()
}

// State returns the scene's current world poses.
func (r *Rig) State() scene.State {
	return r.scene.State()
}

// JointStatus returns a point-in-time snapshot of the named joint's motor.
func (r *Rig) JointStatus(name string) (motor.Status, error) {
	ax, err := r.Axis(name)
	if err != nil {
		return motor.Status{}, err
	}
	return ax.Motor().Status(), nil
}

// Close stops every motor loop.
func (r *Rig) Close(ctx context.Context) error {
	var err error
	for _, name := range r.jointOrder {
		err = multierr.Combine(err, r.axes[name].Close(ctx))
	}
	return err
}
