package mesh

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/objcull/d3"
)

const (
	stlHeaderSize   = 84
	stlTriangleSize = 50
)

// WriteSTL writes triangles to w in binary STL format. Facet normals are
// computed from each triangle's winding.
func WriteSTL(w io.Writer, model []d3.Triangle) (int, error) {
	if len(model) == 0 {
		return 0, errors.New("empty triangle slice")
	}
	nt := int64(len(model)) // int64 cast so that next line works correctly on 32bit machines.
	if nt > math.MaxUint32 {
		return 0, errors.New("amount of triangles in model exceeds STL design limits")
	}
	header := stlHeader{Count: uint32(nt)}

	var buf [stlHeaderSize]byte
	header.put(buf[:])
	n, err := w.Write(buf[:])
	if err != nil {
		return n, err
	} else if n != len(buf) {
		return n, io.ErrShortWrite
	}
	var d stlTriangle
	for _, triangle := range model {
		norm := triangle.Normal()
		d.Normal = [3]float32{norm.X, norm.Y, norm.Z}
		d.Vertex1 = [3]float32{triangle[0].X, triangle[0].Y, triangle[0].Z}
		d.Vertex2 = [3]float32{triangle[1].X, triangle[1].Y, triangle[1].Z}
		d.Vertex3 = [3]float32{triangle[2].X, triangle[2].Y, triangle[2].Z}
		d.put(buf[:])
		ngot, err := w.Write(buf[:stlTriangleSize])
		n += ngot
		if err != nil {
			return n, err
		} else if ngot != stlTriangleSize {
			return n, io.ErrShortWrite
		}
	}
	return n, nil
}

// ReadSTL reads a binary STL. Like ParseOBJ it never fails: facets with
// non-finite coordinates are skipped and a truncated stream keeps the facets
// read so far, each problem being reported in the returned Diagnostics.
// Facet normals stored in the file are ignored.
func ReadSTL(r io.Reader) (Mesh, Diagnostics) {
	var (
		diags Diagnostics
		buf   [stlHeaderSize]byte
	)
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		diags.add(Diagnostic{Kind: KindIO, Err: fmt.Errorf("reading STL header: %w", err)})
		return Mesh{}, diags
	}
	var header stlHeader
	header.get(buf[:])
	if header.Count == 0 {
		diags.add(Diagnostic{Kind: KindSTL, Err: errors.New("STL header indicates 0 triangles present")})
		return Mesh{}, diags
	}
	n := header.Count
	tris := make([]d3.Triangle, 0, int(min(n, 1<<20)))
	var d stlTriangle
	for i := uint32(0); i < n; i++ {
		if _, err := io.ReadFull(r, buf[:stlTriangleSize]); err != nil {
			diags.add(Diagnostic{
				Line: int(i) + 1,
				Kind: KindIO,
				Err:  fmt.Errorf("%d/%d STL triangles read: %w", i, n, err),
			})
			break
		}
		d.get(buf[:])
		tri := d.toTriangle()
		if !d3.IsFinite(tri[0]) || !d3.IsFinite(tri[1]) || !d3.IsFinite(tri[2]) {
			diags.add(Diagnostic{Line: int(i) + 1, Kind: KindSTL, Err: ErrNonFinite})
			continue
		}
		tris = append(tris, tri)
	}
	return Mesh{tris: tris}, diags
}

// stlHeader defines the STL file header.
type stlHeader struct {
	_     [80]uint8 // Header
	Count uint32    // Number of triangles
}

func (h stlHeader) put(b []byte) {
	_ = b[83] // early bounds check
	for i := range b[:80] {
		b[i] = 0
	}
	binary.LittleEndian.PutUint32(b[80:], h.Count)
}

func (h *stlHeader) get(b []byte) {
	_ = b[83] // early bounds check
	h.Count = binary.LittleEndian.Uint32(b[80:])
}

// stlTriangle defines the triangle data within an STL file.
type stlTriangle struct {
	Normal  [3]float32
	Vertex1 [3]float32
	Vertex2 [3]float32
	Vertex3 [3]float32
	_       uint16 // Attribute byte count
}

func (t stlTriangle) put(b []byte) {
	if len(b) < stlTriangleSize {
		panic("need length 50 to marshal stlTriangle")
	}
	put3F32(b, t.Normal)
	put3F32(b[12:], t.Vertex1)
	put3F32(b[24:], t.Vertex2)
	put3F32(b[36:], t.Vertex3)
	binary.LittleEndian.PutUint16(b[48:], 0)
}

func (t *stlTriangle) get(b []byte) {
	if len(b) < stlTriangleSize {
		panic("need length 50 to unmarshal stlTriangle")
	}
	get3F32(b, &t.Normal)
	get3F32(b[12:], &t.Vertex1)
	get3F32(b[24:], &t.Vertex2)
	get3F32(b[36:], &t.Vertex3)
	// no attributes supported yet.
}

func (t stlTriangle) toTriangle() d3.Triangle {
	return d3.Triangle{vecFrom3F32(t.Vertex1), vecFrom3F32(t.Vertex2), vecFrom3F32(t.Vertex3)}
}

func vecFrom3F32(f [3]float32) ms3.Vec {
	return ms3.Vec{X: f[0], Y: f[1], Z: f[2]}
}

func put3F32(b []byte, f [3]float32) {
	_ = b[11] // early bounds check
	binary.LittleEndian.PutUint32(b, math.Float32bits(f[0]))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(f[1]))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(f[2]))
}

func get3F32(b []byte, f *[3]float32) {
	_ = b[11] // early bounds check
	f[0] = math.Float32frombits(binary.LittleEndian.Uint32(b))
	f[1] = math.Float32frombits(binary.LittleEndian.Uint32(b[4:]))
	f[2] = math.Float32frombits(binary.LittleEndian.Uint32(b[8:]))
}
