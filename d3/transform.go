package d3

import (
	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Transform represents a 3D affine spatial transformation stored as a 4x4 matrix.
// The zero value of Transform is the identity transform.
type Transform struct {
	// in order to make the zero value of Transform represent the identity
	// transform we store it with the identity matrix subtracted.
	// These diagonal elements are subtracted such that
	//  d00 = x00-1, d11 = x11-1, d22 = x22-1, d33 = x33-1
	// where x00, x11, x22, x33 are the matrix diagonal elements.
	// We can then check for identity in if blocks like so:
	//  if T == (Transform{})
	d00, x01, x02, x03 float32
	x10, d11, x12, x13 float32
	x20, x21, d22, x23 float32
	x30, x31, x32, d33 float32
}

// Identity returns the identity Transform. It is equal to Transform{}.
func Identity() Transform { return Transform{} }

// Transform applies the Transform to v treated as the homogeneous point (x,y,z,1)
// and returns the resulting (x,y,z). The w component is discarded, no perspective
// division is performed; results are only meaningful for affine transforms.
func (t Transform) Transform(v ms3.Vec) ms3.Vec {
	return ms3.Vec{
		X: (t.d00+1)*v.X + t.x01*v.Y + t.x02*v.Z + t.x03,
		Y: t.x10*v.X + (t.d11+1)*v.Y + t.x12*v.Z + t.x13,
		Z: t.x20*v.X + t.x21*v.Y + (t.d22+1)*v.Z + t.x23,
	}
}

// NewTransform returns a new Transform type and populates its elements
// with values passed in row-major form. It panics if len(a) != 16.
func NewTransform(a []float32) Transform {
	if len(a) != 16 {
		panic("Transform is initialized with 16 values")
	}
	return Transform{
		d00: a[0] - 1, x01: a[1], x02: a[2], x03: a[3],
		x10: a[4], d11: a[5] - 1, x12: a[6], x13: a[7],
		x20: a[8], x21: a[9], d22: a[10] - 1, x23: a[11],
		x30: a[12], x31: a[13], x32: a[14], d33: a[15] - 1,
	}
}

// NewTransformColumnMajor is like NewTransform but takes the 16 values in
// column-major (OpenGL) order, where element (row, col) is at a[col*4+row].
func NewTransformColumnMajor(a []float32) Transform {
	if len(a) != 16 {
		panic("Transform is initialized with 16 values")
	}
	return Transform{
		d00: a[0] - 1, x01: a[4], x02: a[8], x03: a[12],
		x10: a[1], d11: a[5] - 1, x12: a[9], x13: a[13],
		x20: a[2], x21: a[6], d22: a[10] - 1, x23: a[14],
		x30: a[3], x31: a[7], x32: a[11], d33: a[15] - 1,
	}
}

// ComposeTransform creates a new transform for a given translation to
// positon, scaling vector scale and quaternion rotation.
// The identity Transform is constructed with
//  ComposeTransform(Vec{}, Vec{1,1,1}, r3.Rotation{Real: 1})
func ComposeTransform(position, scale ms3.Vec, q r3.Rotation) Transform {
	x2 := q.Imag + q.Imag
	y2 := q.Jmag + q.Jmag
	z2 := q.Kmag + q.Kmag
	xx := q.Imag * x2
	yy := q.Jmag * y2
	zz := q.Kmag * z2
	xy := q.Imag * y2
	xz := q.Imag * z2
	yz := q.Jmag * z2
	wx := q.Real * x2
	wy := q.Real * y2
	wz := q.Real * z2

	var t Transform
	t.d00 = float32(1-(yy+zz))*scale.X - 1
	t.x10 = float32(xy+wz) * scale.X
	t.x20 = float32(xz-wy) * scale.X

	t.x01 = float32(xy-wz) * scale.Y
	t.d11 = float32(1-(xx+zz))*scale.Y - 1
	t.x21 = float32(yz+wx) * scale.Y

	t.x02 = float32(xz+wy) * scale.Z
	t.x12 = float32(yz-wx) * scale.Z
	t.d22 = float32(1-(xx+yy))*scale.Z - 1

	t.x03 = position.X
	t.x13 = position.Y
	t.x23 = position.Z
	return t
}

// Rotation returns the Transform rotating by angle radians about axis
// following the right hand rule. A zero axis returns the identity.
func Rotation(angle float64, axis ms3.Vec) Transform {
	if angle == 0 || Norm(axis) < NormalizeTol {
		return Transform{}
	}
	axis = Normalize(axis)
	q := r3.NewRotation(angle, r3.Vec{X: float64(axis.X), Y: float64(axis.Y), Z: float64(axis.Z)})
	return ComposeTransform(ms3.Vec{}, ms3.Vec{X: 1, Y: 1, Z: 1}, q)
}

// Translate adds v to the positional part of the Transform.
func (t Transform) Translate(v ms3.Vec) Transform {
	t.x03 += v.X
	t.x13 += v.Y
	t.x23 += v.Z
	return t
}

// Scale returns the transform with scaling added around the origin.
func (t Transform) Scale(factor ms3.Vec) Transform {
	t.d00 = (t.d00+1)*factor.X - 1
	t.x10 *= factor.X
	t.x20 *= factor.X
	t.x30 *= factor.X

	t.x01 *= factor.Y
	t.d11 = (t.d11+1)*factor.Y - 1
	t.x21 *= factor.Y
	t.x31 *= factor.Y

	t.x02 *= factor.Z
	t.x12 *= factor.Z
	t.d22 = (t.d22+1)*factor.Z - 1
	t.x32 *= factor.Z
	return t
}

// Mul multiplies the Transforms t and b and returns the result.
// Applying t.Mul(b) to a point is equivalent to applying b first and then t.
func (t Transform) Mul(b Transform) Transform {
	if t == (Transform{}) {
		return b
	}
	if b == (Transform{}) {
		return t
	}
	x00 := t.d00 + 1
	x11 := t.d11 + 1
	x22 := t.d22 + 1
	x33 := t.d33 + 1
	y00 := b.d00 + 1
	y11 := b.d11 + 1
	y22 := b.d22 + 1
	y33 := b.d33 + 1
	var m Transform
	m.d00 = x00*y00 + t.x01*b.x10 + t.x02*b.x20 + t.x03*b.x30 - 1
	m.x10 = t.x10*y00 + x11*b.x10 + t.x12*b.x20 + t.x13*b.x30
	m.x20 = t.x20*y00 + t.x21*b.x10 + x22*b.x20 + t.x23*b.x30
	m.x30 = t.x30*y00 + t.x31*b.x10 + t.x32*b.x20 + x33*b.x30
	m.x01 = x00*b.x01 + t.x01*y11 + t.x02*b.x21 + t.x03*b.x31
	m.d11 = t.x10*b.x01 + x11*y11 + t.x12*b.x21 + t.x13*b.x31 - 1
	m.x21 = t.x20*b.x01 + t.x21*y11 + x22*b.x21 + t.x23*b.x31
	m.x31 = t.x30*b.x01 + t.x31*y11 + t.x32*b.x21 + x33*b.x31
	m.x02 = x00*b.x02 + t.x01*b.x12 + t.x02*y22 + t.x03*b.x32
	m.x12 = t.x10*b.x02 + x11*b.x12 + t.x12*y22 + t.x13*b.x32
	m.d22 = t.x20*b.x02 + t.x21*b.x12 + x22*y22 + t.x23*b.x32 - 1
	m.x32 = t.x30*b.x02 + t.x31*b.x12 + t.x32*y22 + x33*b.x32
	m.x03 = x00*b.x03 + t.x01*b.x13 + t.x02*b.x23 + t.x03*y33
	m.x13 = t.x10*b.x03 + x11*b.x13 + t.x12*b.x23 + t.x13*y33
	m.x23 = t.x20*b.x03 + t.x21*b.x13 + x22*b.x23 + t.x23*y33
	m.d33 = t.x30*b.x03 + t.x31*b.x13 + t.x32*b.x23 + x33*y33 - 1
	return m
}

// IsAffine reports whether the bottom row of the matrix is (0,0,0,1) within tol.
func (t Transform) IsAffine(tol float32) bool {
	return math32.Abs(t.x30) <= tol && math32.Abs(t.x31) <= tol &&
		math32.Abs(t.x32) <= tol && math32.Abs(t.d33) <= tol
}

// equals tests the equality of the Transforms to within a tolerance.
func (t Transform) equals(b Transform, tolerance float32) bool {
	a, c := t.RowMajor(), b.RowMajor()
	for i := range a {
		if math32.Abs(a[i]-c[i]) > tolerance {
			return false
		}
	}
	return true
}

// RowMajor returns a copy of the Transform's data
// in row major storage format. It returns 16 elements.
func (t Transform) RowMajor() []float32 {
	return []float32{
		t.d00 + 1, t.x01, t.x02, t.x03,
		t.x10, t.d11 + 1, t.x12, t.x13,
		t.x20, t.x21, t.d22 + 1, t.x23,
		t.x30, t.x31, t.x32, t.d33 + 1,
	}
}

// Array returns the matrix in column-major order, as expected by OpenGL uniforms.
func (t Transform) Array() [16]float32 {
	return [16]float32{
		t.d00 + 1, t.x10, t.x20, t.x30,
		t.x01, t.d11 + 1, t.x21, t.x31,
		t.x02, t.x12, t.d22 + 1, t.x32,
		t.x03, t.x13, t.x23, t.d33 + 1,
	}
}
