// Package render runs the culling pipeline once per frame and hands the
// resulting render buffers to a Sink.
package render

import (
	"errors"
	"time"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/objcull/cull"
	"github.com/soypat/objcull/d3"
	"github.com/soypat/objcull/mesh"
)

// Sink receives render buffers: flattened x,y,z positions, 9 per visible
// triangle. Implementations must not retain positions after Upload returns.
type Sink interface {
	Upload(positions []float32) error
}

// Scene is what the Driver draws every frame.
type Scene struct {
	Mesh mesh.Mesh
	// Model returns the model transform at the elapsed time since the first
	// frame. A nil Model is the identity.
	Model func(elapsed time.Duration) d3.Transform
	// View is the direction the viewer looks along.
	// The zero value is replaced by cull.DefaultView.
	View ms3.Vec
}

func (s Scene) transform(elapsed time.Duration) d3.Transform {
	if s.Model == nil {
		return d3.Identity()
	}
	return s.Model(elapsed)
}

func (s Scene) view() ms3.Vec {
	if s.View == (ms3.Vec{}) {
		return cull.DefaultView
	}
	return s.View
}

// Spin returns a Model that applies base and then rotates about axis at rate
// radians per second.
func Spin(rate float64, axis ms3.Vec, base d3.Transform) func(time.Duration) d3.Transform {
	return func(elapsed time.Duration) d3.Transform {
		return d3.Rotation(rate*elapsed.Seconds(), axis).Mul(base)
	}
}

// Triangles regroups a render buffer into triangles.
func Triangles(positions []float32) ([]d3.Triangle, error) {
	if len(positions)%9 != 0 {
		return nil, errors.New("render buffer length not a multiple of 9")
	}
	tris := make([]d3.Triangle, len(positions)/9)
	for i := range tris {
		p := positions[9*i : 9*i+9]
		tris[i] = d3.Triangle{
			{X: p[0], Y: p[1], Z: p[2]},
			{X: p[3], Y: p[4], Z: p[5]},
			{X: p[6], Y: p[7], Z: p[8]},
		}
	}
	return tris, nil
}

// FitBox returns the origin centered cube that contains m under any rotation
// about the origin. ok is false for an empty mesh.
func FitBox(m mesh.Mesh) (min, max ms3.Vec, ok bool) {
	lo, hi, ok := m.Bounds()
	if !ok {
		return min, max, false
	}
	var r float32
	for _, c := range [8]ms3.Vec{
		{X: lo.X, Y: lo.Y, Z: lo.Z}, {X: hi.X, Y: lo.Y, Z: lo.Z},
		{X: lo.X, Y: hi.Y, Z: lo.Z}, {X: hi.X, Y: hi.Y, Z: lo.Z},
		{X: lo.X, Y: lo.Y, Z: hi.Z}, {X: hi.X, Y: lo.Y, Z: hi.Z},
		{X: lo.X, Y: hi.Y, Z: hi.Z}, {X: hi.X, Y: hi.Y, Z: hi.Z},
	} {
		r = math32.Max(r, d3.Norm(c))
	}
	return ms3.Vec{X: -r, Y: -r, Z: -r}, ms3.Vec{X: r, Y: r, Z: r}, true
}
