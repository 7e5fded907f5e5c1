// Package cull transforms a mesh to world space and keeps the triangles
// facing the viewer.
package cull

import (
	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/objcull/d3"
	"github.com/soypat/objcull/mesh"
)

// DefaultView looks down the negative Z axis. Counter-clockwise triangles
// with normals pointing towards +Z are visible from it.
var DefaultView = ms3.Vec{Z: -1}

// Stats counts what happened to the triangles of the last computed frame.
type Stats struct {
	Triangles  int // Triangles in the mesh.
	Visible    int // Triangles written to the render buffer.
	Degenerate int // Triangles with no normal, always culled.
}

// IsVisible reports whether tri faces a viewer looking along view.
// Edge-on and degenerate triangles are not visible.
func IsVisible(tri d3.Triangle, view ms3.Vec) bool {
	return d3.Dot(tri.Normal(), view) < 0
}

// ComputeFrame returns the flattened positions of the triangles of m that are
// visible along view after applying t, in mesh order. The result is newly
// allocated and has a length multiple of 9.
func ComputeFrame(m mesh.Mesh, t d3.Transform, view ms3.Vec) []float32 {
	var c Culler
	return c.ComputeFrame(m, t, view)
}

// Visible is like ComputeFrame but returns the visible world space triangles.
func Visible(m mesh.Mesh, t d3.Transform, view ms3.Vec) []d3.Triangle {
	var c Culler
	return c.AppendVisible(nil, m, t, view)
}

// Culler computes frames reusing its buffers between calls.
// The zero value is ready to use. A Culler must not be used concurrently.
type Culler struct {
	world []ms3.Vec
	out   []float32
	stats Stats
}

// ComputeFrame rebuilds the render buffer for m under t viewed along view.
// The returned slice is owned by c and is valid until the next call.
func (c *Culler) ComputeFrame(m mesh.Mesh, t d3.Transform, view ms3.Vec) []float32 {
	c.out = c.out[:0]
	c.cull(m, t, view, func(tri d3.Triangle) {
		c.out = mesh.AppendTriangle(c.out, tri)
	})
	return c.out
}

// AppendVisible appends the visible world space triangles to dst.
func (c *Culler) AppendVisible(dst []d3.Triangle, m mesh.Mesh, t d3.Transform, view ms3.Vec) []d3.Triangle {
	c.cull(m, t, view, func(tri d3.Triangle) {
		dst = append(dst, tri)
	})
	return dst
}

// Stats returns the statistics of the last frame computed by c.
func (c *Culler) Stats() Stats { return c.stats }

func (c *Culler) cull(m mesh.Mesh, t d3.Transform, view ms3.Vec, keep func(d3.Triangle)) {
	ntri := m.NumTriangles()
	c.stats = Stats{Triangles: ntri}
	// World positions first, then regroup in triples.
	c.world = c.world[:0]
	for i := 0; i < ntri; i++ {
		tri := m.Triangle(i)
		c.world = append(c.world, t.Transform(tri[0]), t.Transform(tri[1]), t.Transform(tri[2]))
	}
	for i := 0; i < len(c.world); i += 3 {
		tri := d3.Triangle{c.world[i], c.world[i+1], c.world[i+2]}
		n := tri.Normal()
		if n == (ms3.Vec{}) {
			c.stats.Degenerate++
			continue
		}
		if d3.Dot(n, view) < 0 {
			c.stats.Visible++
			keep(tri)
		}
	}
}
