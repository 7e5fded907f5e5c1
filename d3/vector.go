package d3

import (
	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
)

// NormalizeTol is the magnitude under which Normalize
// returns the zero vector instead of dividing.
const NormalizeTol = 1e-6

// Dot returns the sum of the componentwise products of a and b.
func Dot(a, b ms3.Vec) float32 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

// Cross returns the right-handed cross product a×b.
// Cross is not commutative: Cross(a,b) == -Cross(b,a).
func Cross(a, b ms3.Vec) ms3.Vec {
	return ms3.Vec{
		X: a.Y*b.Z - a.Z*b.Y,
		Y: a.Z*b.X - a.X*b.Z,
		Z: a.X*b.Y - a.Y*b.X,
	}
}

// Norm returns the magnitude of v.
func Norm(v ms3.Vec) float32 {
	return math32.Sqrt(Dot(v, v))
}

// Normalize returns v scaled to unit length. If the magnitude of v
// is below NormalizeTol the zero vector is returned.
func Normalize(v ms3.Vec) ms3.Vec {
	mag := Norm(v)
	if mag < NormalizeTol {
		return ms3.Vec{}
	}
	return ms3.Vec{X: v.X / mag, Y: v.Y / mag, Z: v.Z / mag}
}

// Sub returns a-b.
func Sub(a, b ms3.Vec) ms3.Vec {
	return ms3.Vec{X: a.X - b.X, Y: a.Y - b.Y, Z: a.Z - b.Z}
}

// Scale returns v scaled by f.
func Scale(f float32, v ms3.Vec) ms3.Vec {
	return ms3.Vec{X: f * v.X, Y: f * v.Y, Z: f * v.Z}
}

// PlaneNormal returns the unit normal of the plane through p0, p1, p2
// following the winding p0→p1→p2. Collinear or coincident points
// yield the zero vector.
func PlaneNormal(p0, p1, p2 ms3.Vec) ms3.Vec {
	u := Sub(p1, p0)
	v := Sub(p2, p0)
	return Normalize(Cross(u, v))
}

// EqualWithin reports whether every component of a and b differs by at most tol.
func EqualWithin(a, b ms3.Vec, tol float32) bool {
	return math32.Abs(a.X-b.X) <= tol &&
		math32.Abs(a.Y-b.Y) <= tol &&
		math32.Abs(a.Z-b.Z) <= tol
}

// IsFinite reports whether no component of v is NaN or infinite.
func IsFinite(v ms3.Vec) bool {
	return !(math32.IsNaN(v.X) || math32.IsInf(v.X, 0) ||
		math32.IsNaN(v.Y) || math32.IsInf(v.Y, 0) ||
		math32.IsNaN(v.Z) || math32.IsInf(v.Z, 0))
}

// MinElem return a vector with the minimum components of two vectors.
func MinElem(a, b ms3.Vec) ms3.Vec {
	return ms3.Vec{X: math32.Min(a.X, b.X), Y: math32.Min(a.Y, b.Y), Z: math32.Min(a.Z, b.Z)}
}

// MaxElem return a vector with the maximum components of two vectors.
func MaxElem(a, b ms3.Vec) ms3.Vec {
	return ms3.Vec{X: math32.Max(a.X, b.X), Y: math32.Max(a.Y, b.Y), Z: math32.Max(a.Z, b.Z)}
}
