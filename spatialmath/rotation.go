package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/axisforge/rigsim/utils"
)

// gimbalLockTolerance bounds the region around pitch = ±90° where the Euler
// XYZ decomposition of a rotation matrix stops being unique.
const gimbalLockTolerance = 1e-6

// RotationMatrix is a 3x3 rotation matrix stored in row major order.
type RotationMatrix struct {
	mat [9]float64
}

// NewRotationMatrix creates a rotation matrix from a slice of 9 row major floats.
func NewRotationMatrix(m []float64) *RotationMatrix {
	rm := &RotationMatrix{}
	copy(rm.mat[:], m)
	return rm
}

// At returns the value of the matrix at the given row and column.
func (rm *RotationMatrix) At(row, col int) float64 {
	return rm.mat[row*3+col]
}

// Mul returns the product rm · other.
func (rm *RotationMatrix) Mul(other *RotationMatrix) *RotationMatrix {
	out := &RotationMatrix{}
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			var sum float64
			for k := 0; k < 3; k++ {
				sum += rm.At(row, k) * other.At(k, col)
			}
			out.mat[row*3+col] = sum
		}
	}
	return out
}

// MulVec rotates the vector v by rm.
func (rm *RotationMatrix) MulVec(v r3.Vector) r3.Vector {
	return r3.Vector{
		X: rm.mat[0]*v.X + rm.mat[1]*v.Y + rm.mat[2]*v.Z,
		Y: rm.mat[3]*v.X + rm.mat[4]*v.Y + rm.mat[5]*v.Z,
		Z: rm.mat[6]*v.X + rm.mat[7]*v.Y + rm.mat[8]*v.Z,
	}
}

// EulerToRotationMatrix builds the rotation matrix for the given Euler XYZ
// angles in degrees, applying X roll first, then Y pitch, then Z yaw.
func EulerToRotationMatrix(euler r3.Vector) *RotationMatrix {
	rx := utils.DegToRad(euler.X)
	ry := utils.DegToRad(euler.Y)
	rz := utils.DegToRad(euler.Z)
	cx, sx := math.Cos(rx), math.Sin(rx)
	cy, sy := math.Cos(ry), math.Sin(ry)
	cz, sz := math.Cos(rz), math.Sin(rz)
	return &RotationMatrix{mat: [9]float64{
		cy * cz, sx*sy*cz - cx*sz, cx*sy*cz + sx*sz,
		cy * sz, sx*sy*sz + cx*cz, cx*sy*sz - sx*cz,
		-sy, sx * cy, cx * cy,
	}}
}

// RotationMatrixToEuler extracts Euler XYZ angles in degrees from a rotation
// matrix. Inside the gimbal lock band the decomposition is not unique, so
// pitch is clamped to ±90°, yaw is forced to 0, and all remaining rotation
// is attributed to roll.
func RotationMatrixToEuler(rm *RotationMatrix) r3.Vector {
	sy := -rm.At(2, 0)
	var rx, ry, rz float64
	if math.Abs(sy) < 1.0-gimbalLockTolerance {
		ry = math.Asin(sy)
		rx = math.Atan2(rm.At(2, 1), rm.At(2, 2))
		rz = math.Atan2(rm.At(1, 0), rm.At(0, 0))
	} else {
		ry = math.Copysign(math.Pi/2, sy)
		rx = math.Atan2(-rm.At(1, 2), rm.At(1, 1))
		rz = 0
	}
	return r3.Vector{
		X: utils.RadToDeg(rx),
		Y: utils.RadToDeg(ry),
		Z: utils.RadToDeg(rz),
	}
}
