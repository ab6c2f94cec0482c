package rig

import (
	"fmt"

	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"github.com/axisforge/rigsim/axis"
	"github.com/axisforge/rigsim/kinematics"
	"github.com/axisforge/rigsim/spatialmath"
)

// JointConfig describes one actuated revolute joint: the rotation axis of
// the kinematic joint plus the motion profile of the motor that drives it.
type JointConfig struct {
	Name         string  `json:"name"`
	Axis         string  `json:"axis"`
	MaxSpeed     float64 `json:"max_speed_degs_per_sec"`
	Acceleration float64 `json:"acceleration_degs_per_sec2"`
}

// Validate ensures all parts of the config are valid.
func (cfg *JointConfig) Validate(path string) error {
	if cfg.Name == "" {
		return goutils.NewConfigValidationFieldRequiredError(path, "name")
	}
	if _, err := kinematics.ParseRotationAxis(cfg.Axis); err != nil {
		return goutils.NewConfigValidationError(path, err)
	}
	acfg := axis.Config{MaxSpeed: cfg.MaxSpeed, Acceleration: cfg.Acceleration}
	return acfg.Validate(path)
}

// LinkConfig describes one rigid link and its optional CAD model reference.
type LinkConfig struct {
	Name      string                      `json:"name"`
	Transform spatialmath.TransformConfig `json:"transform"`
	CADFile   string                      `json:"cad_file,omitempty"`
	CADBody   string                      `json:"cad_body,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (cfg *LinkConfig) Validate(path string) error {
	if cfg.Name == "" {
		return goutils.NewConfigValidationFieldRequiredError(path, "name")
	}
	if _, err := spatialmath.NewTransformFromConfig(cfg.Transform); err != nil {
		return goutils.NewConfigValidationError(path, err)
	}
	return nil
}

// ElementConfig is one chain element. Exactly one of Joint or Link must be
// set.
type ElementConfig struct {
	Joint *JointConfig `json:"joint,omitempty"`
	Link  *LinkConfig  `json:"link,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (cfg *ElementConfig) Validate(path string) error {
	switch {
	case cfg.Joint != nil && cfg.Link != nil:
		return goutils.NewConfigValidationError(path, errors.New("element cannot be both a joint and a link"))
	case cfg.Joint != nil:
		return cfg.Joint.Validate(fmt.Sprintf("%s.joint", path))
	case cfg.Link != nil:
		return cfg.Link.Validate(fmt.Sprintf("%s.link", path))
	default:
		return goutils.NewConfigValidationError(path, errors.New("element must be either a joint or a link"))
	}
}

// Config describes a complete rig as an ordered list of chain elements.
type Config struct {
	Name     string          `json:"name"`
	Elements []ElementConfig `json:"elements"`
	// TickRate overrides the integration rate of every motor, in Hz.
	TickRate float64 `json:"tick_rate_hz,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate(path string) error {
	if cfg.Name == "" {
		return goutils.NewConfigValidationFieldRequiredError(path, "name")
	}
	if len(cfg.Elements) == 0 {
		return goutils.NewConfigValidationError(path, errors.New("at least one element is required"))
	}
	for i, elem := range cfg.Elements {
		if err := elem.Validate(fmt.Sprintf("%s.elements.%d", path, i)); err != nil {
			return err
		}
	}
	return nil
}

func jointElement(name, rotAxis string, maxSpeed, acceleration float64) ElementConfig {
	return ElementConfig{Joint: &JointConfig{
		Name:         name,
		Axis:         rotAxis,
		MaxSpeed:     maxSpeed,
		Acceleration: acceleration,
	}}
}

func linkElement(name string, position []float64) ElementConfig {
	return ElementConfig{Link: &LinkConfig{
		Name:      name,
		Transform: spatialmath.TransformConfig{Position: position},
	}}
}

// ThreeAxisConfig returns a sample three degree of freedom arm: shoulder,
// elbow, and wrist all rotating about Y, with 1.0, 0.8, and 0.3 unit links
// between them.
func ThreeAxisConfig() Config {
	return Config{
		Name: "three_axis",
		Elements: []ElementConfig{
			linkElement("base", []float64{0, 0, 0}),
			jointElement("shoulder", "y", 180, 360),
			linkElement("upper_arm", []float64{0, 1, 0}),
			jointElement("elbow", "y", 180, 360),
			linkElement("forearm", []float64{0, 0.8, 0}),
			jointElement("wrist", "y", 180, 360),
			linkElement("end_effector", []float64{0, 0.3, 0}),
		},
	}
}
