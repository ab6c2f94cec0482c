// Package spatialmath implements the rigid transform algebra used by the
// kinematics and scene packages: composition of position, Euler XYZ rotation
// (degrees), and componentwise scale, plus conversion to homogeneous matrices.
package spatialmath

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Transform is an immutable rigid spatial transform. Rotation is an Euler
// XYZ triple in degrees. Composition along a chain is associative but not
// commutative.
type Transform struct {
	Position r3.Vector
	Rotation r3.Vector
	Scale    r3.Vector
}

// NewTransform returns the identity transform.
func NewTransform() Transform {
	return Transform{Scale: r3.Vector{X: 1, Y: 1, Z: 1}}
}

// NewTransformFromPosition returns a pure translation.
func NewTransformFromPosition(pos r3.Vector) Transform {
	t := NewTransform()
	t.Position = pos
	return t
}

// NewTransformFromRotation returns a pure rotation from Euler XYZ degrees.
func NewTransformFromRotation(rot r3.Vector) Transform {
	t := NewTransform()
	t.Rotation = rot
	return t
}

// Compose treats t as the parent frame and returns the world transform of
// child: the child's local offset is scaled by the parent scale, rotated by
// the parent rotation, and added to the parent position; rotations compose
// by matrix multiplication (parent · child); scales multiply componentwise.
func (t Transform) Compose(child Transform) Transform {
	parentMat := EulerToRotationMatrix(t.Rotation)
	scaled := r3.Vector{
		X: child.Position.X * t.Scale.X,
		Y: child.Position.Y * t.Scale.Y,
		Z: child.Position.Z * t.Scale.Z,
	}
	worldPos := t.Position.Add(parentMat.MulVec(scaled))

	childMat := EulerToRotationMatrix(child.Rotation)
	worldRot := RotationMatrixToEuler(parentMat.Mul(childMat))

	worldScale := r3.Vector{
		X: t.Scale.X * child.Scale.X,
		Y: t.Scale.Y * child.Scale.Y,
		Z: t.Scale.Z * child.Scale.Z,
	}
	return Transform{Position: worldPos, Rotation: worldRot, Scale: worldScale}
}

// Matrix returns the 4x4 homogeneous matrix combining rotation, scale, and
// translation. Scale is applied before rotation, matching Compose.
func (t Transform) Matrix() *mat.Dense {
	rm := EulerToRotationMatrix(t.Rotation)
	scale := [3]float64{t.Scale.X, t.Scale.Y, t.Scale.Z}
	m := mat.NewDense(4, 4, nil)
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			m.Set(row, col, rm.At(row, col)*scale[col])
		}
	}
	m.Set(0, 3, t.Position.X)
	m.Set(1, 3, t.Position.Y)
	m.Set(2, 3, t.Position.Z)
	m.Set(3, 3, 1)
	return m
}

// FlatMatrix returns the homogeneous matrix as 16 row major floats, the
// layout streamed to visualization clients.
func (t Transform) FlatMatrix() []float64 {
	out := make([]float64, 16)
	copy(out, t.Matrix().RawMatrix().Data)
	return out
}

// TransformConfig is the wire/descriptor form of a Transform. Empty slices
// fall back to a zero offset, zero rotation, and unit scale.
type TransformConfig struct {
	Position []float64 `json:"position,omitempty"`
	Rotation []float64 `json:"rotation,omitempty"`
	Scale    []float64 `json:"scale,omitempty"`
}

// Config returns the wire form of t.
func (t Transform) Config() TransformConfig {
	return TransformConfig{
		Position: []float64{t.Position.X, t.Position.Y, t.Position.Z},
		Rotation: []float64{t.Rotation.X, t.Rotation.Y, t.Rotation.Z},
		Scale:    []float64{t.Scale.X, t.Scale.Y, t.Scale.Z},
	}
}

// NewTransformFromConfig validates cfg and builds the Transform it describes.
func NewTransformFromConfig(cfg TransformConfig) (Transform, error) {
	t := NewTransform()
	set := func(dst *r3.Vector, field string, vals []float64) error {
		if len(vals) == 0 {
			return nil
		}
		if len(vals) != 3 {
			return errors.Errorf("transform %s must have exactly 3 components, got %d", field, len(vals))
		}
		*dst = r3.Vector{X: vals[0], Y: vals[1], Z: vals[2]}
		return nil
	}
	if err := set(&t.Position, "position", cfg.Position); err != nil {
		return Transform{}, err
	}
	if err := set(&t.Rotation, "rotation", cfg.Rotation); err != nil {
		return Transform{}, err
	}
	if err := set(&t.Scale, "scale", cfg.Scale); err != nil {
		return Transform{}, err
	}
	return t, nil
}
