package d3

import "github.com/soypat/glgl/math/ms3"

// Triangle is three positions listed in winding order.
type Triangle [3]ms3.Vec

// Normal returns the unit normal of the triangle, or the zero vector if degenerate.
func (t Triangle) Normal() ms3.Vec {
	return PlaneNormal(t[0], t[1], t[2])
}

// Degenerate reports whether the triangle has no well defined normal.
func (t Triangle) Degenerate() bool {
	return t.Normal() == (ms3.Vec{})
}

// Transform applies tf to every vertex of the triangle.
func (t Triangle) Transform(tf Transform) Triangle {
	return Triangle{tf.Transform(t[0]), tf.Transform(t[1]), tf.Transform(t[2])}
}
