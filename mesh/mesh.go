// Package mesh reads polygon meshes into flat, immutable triangle lists.
package mesh

import (
	"errors"

	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/objcull/d3"
)

// Mesh is an ordered, immutable sequence of triangles. Every triangle owns
// independent copies of its three positions so the flattened position count
// is always a multiple of 3. The zero value is an empty mesh.
type Mesh struct {
	tris []d3.Triangle
}

// New returns a Mesh holding a copy of tris.
func New(tris []d3.Triangle) Mesh {
	if len(tris) == 0 {
		return Mesh{}
	}
	return Mesh{tris: append([]d3.Triangle(nil), tris...)}
}

// FromPositions groups consecutive positions of flat into triangles.
// It fails if len(flat) is not a multiple of 3.
func FromPositions(flat []ms3.Vec) (Mesh, error) {
	if len(flat)%3 != 0 {
		return Mesh{}, errors.New("position count not a multiple of 3")
	}
	tris := make([]d3.Triangle, len(flat)/3)
	for i := range tris {
		copy(tris[i][:], flat[3*i:3*i+3])
	}
	return Mesh{tris: tris}, nil
}

// NumTriangles returns the number of triangles in the mesh.
func (m Mesh) NumTriangles() int { return len(m.tris) }

// NumVertices returns the number of positions in the mesh, 3 per triangle.
func (m Mesh) NumVertices() int { return 3 * len(m.tris) }

// Triangle returns the ith triangle of the mesh.
func (m Mesh) Triangle(i int) d3.Triangle { return m.tris[i] }

// AppendTriangles appends the triangles of the mesh to dst in order.
func (m Mesh) AppendTriangles(dst []d3.Triangle) []d3.Triangle {
	return append(dst, m.tris...)
}

// Floats returns the mesh positions flattened as x,y,z per vertex in mesh
// order, 9 floats per triangle. The result is a new slice, suitable for sizing
// and filling a GPU vertex buffer.
func (m Mesh) Floats() []float32 {
	return m.AppendFloats(make([]float32, 0, 9*len(m.tris)))
}

// AppendFloats appends the flattened positions of the mesh to dst.
func (m Mesh) AppendFloats(dst []float32) []float32 {
	for _, t := range m.tris {
		dst = AppendTriangle(dst, t)
	}
	return dst
}

// AppendTriangle appends the 9 coordinates of t to dst.
func AppendTriangle(dst []float32, t d3.Triangle) []float32 {
	return append(dst,
		t[0].X, t[0].Y, t[0].Z,
		t[1].X, t[1].Y, t[1].Z,
		t[2].X, t[2].Y, t[2].Z,
	)
}

// Bounds returns the axis aligned bounding box of the mesh.
// ok is false for an empty mesh.
func (m Mesh) Bounds() (min, max ms3.Vec, ok bool) {
	if len(m.tris) == 0 {
		return min, max, false
	}
	min, max = m.tris[0][0], m.tris[0][0]
	for _, t := range m.tris {
		for _, v := range t {
			min = d3.MinElem(min, v)
			max = d3.MaxElem(max, v)
		}
	}
	return min, max, true
}
