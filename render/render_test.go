package render

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/objcull"
	"github.com/soypat/objcull/d3"
	"github.com/soypat/objcull/mesh"
	"gonum.org/v1/plot/cmpimg"
)

const cubeOBJ = `v -1 -1 -1
v 1 -1 -1
v 1 1 -1
v -1 1 -1
v -1 -1 1
v 1 -1 1
v 1 1 1
v -1 1 1
f 5 6 7 8
f 1 4 3 2
f 2 3 7 6
f 1 5 8 4
f 4 8 7 3
f 1 2 6 5
`

func cubeMesh(t testing.TB) mesh.Mesh {
	t.Helper()
	m, diags := mesh.ParseOBJ(strings.NewReader(cubeOBJ))
	if err := diags.Err(); err != nil {
		t.Fatal(err)
	}
	return m
}

var ccw = d3.Triangle{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0.5, Z: 0}, {X: 0, Y: 1, Z: 0}}

func TestSpin(t *testing.T) {
	base := d3.Identity().Translate(ms3.Vec{X: 1})
	still := Spin(0, ms3.Vec{Y: 1}, base)
	if got := still(3 * time.Second); got != base {
		t.Errorf("zero rate spin changed base transform")
	}
	quarter := Spin(math.Pi/2, ms3.Vec{Z: 1}, base)
	got := quarter(time.Second).Transform(ms3.Vec{})
	want := ms3.Vec{Y: 1}
	if !d3.EqualWithin(got, want, 1e-6) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestDriverRun(t *testing.T) {
	var d Driver
	var rec RecordSink
	scene := Scene{Mesh: cubeMesh(t)}
	if err := d.Run(context.Background(), &rec, scene, 3, time.Second/60); err != nil {
		t.Fatal(err)
	}
	if d.Frames() != 3 || len(rec.Frames) != 3 {
		t.Fatalf("got %d frames computed and %d recorded, want 3", d.Frames(), len(rec.Frames))
	}
	for i, f := range rec.Frames {
		if len(f) != 2*9 {
			t.Errorf("frame %d: got %d floats, want 2 triangles", i, len(f))
		}
	}
	tris, err := Triangles(rec.Last())
	if err != nil {
		t.Fatal(err)
	}
	for _, tri := range tris {
		if tri.Normal() != (ms3.Vec{Z: 1}) {
			t.Errorf("visible triangle %v does not face +Z", tri)
		}
	}
}

func TestDriverSpin(t *testing.T) {
	var d Driver
	var rec RecordSink
	scene := Scene{
		Mesh:  cubeMesh(t),
		Model: Spin(math.Pi/4, ms3.Vec{Y: 1}, d3.Identity()),
		View:  ms3.Vec{Z: -1},
	}
	if err := d.Run(context.Background(), &rec, scene, 2, time.Second); err != nil {
		t.Fatal(err)
	}
	if got := len(rec.Frames[0]) / 9; got != 2 {
		t.Errorf("first frame: got %d visible, want 2", got)
	}
	if got := len(rec.Frames[1]) / 9; got != 4 {
		t.Errorf("frame at 45 degrees: got %d visible, want 4", got)
	}
}

type failSink struct{ calls int }

var errSink = errors.New("device lost")

func (f *failSink) Upload([]float32) error {
	f.calls++
	return errSink
}

func TestDriverErrors(t *testing.T) {
	var d Driver
	var sink failSink
	scene := Scene{Mesh: cubeMesh(t)}
	err := d.Run(context.Background(), &sink, scene, 5, time.Millisecond)
	if !errors.Is(err, errSink) || sink.calls != 1 {
		t.Errorf("got err %v after %d uploads, want %v after 1", err, sink.calls, errSink)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var rec RecordSink
	err = d.Run(ctx, &rec, scene, 5, time.Millisecond)
	if !errors.Is(err, context.Canceled) || len(rec.Frames) != 0 {
		t.Errorf("canceled run: got err %v and %d frames", err, len(rec.Frames))
	}
}

func TestDriverWarnsNonAffineOnce(t *testing.T) {
	orig := objcull.Logger()
	t.Cleanup(func() { objcull.SetLogger(orig) })
	var buf bytes.Buffer
	objcull.SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))

	projective := d3.NewTransform([]float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0.5, 1,
	})
	scene := Scene{
		Mesh:  cubeMesh(t),
		Model: func(time.Duration) d3.Transform { return projective },
	}
	var d Driver
	var rec RecordSink
	if err := d.Run(context.Background(), &rec, scene, 3, time.Second); err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(buf.String(), "not affine"); n != 1 {
		t.Errorf("got %d non affine warnings, want 1:\n%s", n, buf.String())
	}
	// w is ignored so the result equals the identity frame.
	if len(rec.Last()) != 2*9 {
		t.Errorf("got %d floats, want 2 triangles", len(rec.Last()))
	}
}

func TestTriangles(t *testing.T) {
	if _, err := Triangles(make([]float32, 10)); err == nil {
		t.Error("expected error for 10 floats")
	}
	buf := mesh.AppendTriangle(nil, ccw)
	tris, err := Triangles(buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(tris) != 1 || tris[0] != ccw {
		t.Errorf("got %v, want %v", tris, ccw)
	}
}

func TestFitBox(t *testing.T) {
	lo, hi, ok := FitBox(cubeMesh(t))
	if !ok {
		t.Fatal("cube has no box")
	}
	r := float32(math.Sqrt(3))
	if !d3.EqualWithin(hi, ms3.Vec{X: r, Y: r, Z: r}, 1e-6) || !d3.EqualWithin(lo, d3.Scale(-1, hi), 0) {
		t.Errorf("got box %v %v, want half side %v", lo, hi, r)
	}
	if _, _, ok := FitBox(mesh.Mesh{}); ok {
		t.Error("empty mesh has a box")
	}
}

type bufCloser struct {
	bytes.Buffer
	closed bool
}

func (b *bufCloser) Close() error {
	b.closed = true
	return nil
}

func TestSTLSink(t *testing.T) {
	var outputs []*bufCloser
	sink := &STLSink{Create: func(frame int) (io.WriteCloser, error) {
		if frame != len(outputs) {
			t.Errorf("got frame %d, want %d", frame, len(outputs))
		}
		b := &bufCloser{}
		outputs = append(outputs, b)
		return b, nil
	}}
	var d Driver
	if err := d.Run(context.Background(), sink, Scene{Mesh: cubeMesh(t)}, 2, time.Second); err != nil {
		t.Fatal(err)
	}
	if len(outputs) != 2 {
		t.Fatalf("got %d files, want 2", len(outputs))
	}
	for i, out := range outputs {
		if !out.closed {
			t.Errorf("output %d not closed", i)
		}
		m, diags := mesh.ReadSTL(&out.Buffer)
		if len(diags) != 0 || m.NumTriangles() != 2 {
			t.Errorf("output %d: got %d triangles, diagnostics %v", i, m.NumTriangles(), diags.Err())
		}
	}
	if err := sink.Upload(nil); err != nil {
		t.Errorf("empty frame: %v", err)
	}
	if len(outputs) != 2 {
		t.Errorf("empty frame created output %d", len(outputs)-1)
	}
}

func TestSTLSinkSkipsHiddenFrames(t *testing.T) {
	var created []int
	sink := &STLSink{Create: func(frame int) (io.WriteCloser, error) {
		created = append(created, frame)
		return &bufCloser{}, nil
	}}
	// Half a turn per second shows the back of the triangle on odd frames.
	scene := Scene{
		Mesh:  mesh.New([]d3.Triangle{ccw}),
		Model: Spin(math.Pi, ms3.Vec{Y: 1}, d3.Identity()),
	}
	var d Driver
	if err := d.Run(context.Background(), sink, scene, 3, time.Second); err != nil {
		t.Fatal(err)
	}
	if len(created) != 2 || created[0] != 0 || created[1] != 2 {
		t.Errorf("created outputs for frames %v, want [0 2]", created)
	}
	if d.Frames() != 3 {
		t.Errorf("got %d frames, want 3", d.Frames())
	}
}

func TestSTLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "visible.stl")
	if err := STLFile(path).Upload(mesh.AppendTriangle(nil, ccw)); err != nil {
		t.Fatal(err)
	}
	m, diags := mesh.Load(path)
	if len(diags) != 0 || m.NumTriangles() != 1 || m.Triangle(0) != ccw {
		t.Errorf("read back %v, diagnostics %v", m.AppendTriangles(nil), diags.Err())
	}
}

const imgDelta = 0.01

func TestPNGSink(t *testing.T) {
	const size = 64
	path := filepath.Join(t.TempDir(), "frame.png")
	cfg := PNGConfig{
		Width:       size,
		Height:      size,
		Supersample: 2,
		Background:  "#FFF8E3",
		Color:       "#468966",
	}
	sink := NewPNGSink(path, cfg)
	frame := mesh.AppendTriangle(nil, ccw)
	if err := sink.Upload(frame); err != nil {
		t.Fatal(err)
	}
	img := sink.Image()
	if img.Bounds().Dx() != size || img.Bounds().Dy() != size {
		t.Fatalf("got image bounds %v", img.Bounds())
	}
	object := color.NRGBA{R: 0x46, G: 0x89, B: 0x66, A: 0xff}
	background := color.NRGBA{R: 0xff, G: 0xf8, B: 0xe3, A: 0xff}
	// The triangle is symmetric about y=0.5 and spans x in [0,1].
	if got := pixel(img, size/5, size/2); !near(got, object) {
		t.Errorf("inside pixel got %v, want %v", got, object)
	}
	for _, y := range []int{size / 10, size - size/10} {
		if got := pixel(img, size-size/10, y); !near(got, background) {
			t.Errorf("outside pixel at y=%d got %v, want %v", y, got, background)
		}
	}

	// Rendering is deterministic.
	onDisk, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	again := NewPNGSink("", cfg)
	if err := again.Upload(frame); err != nil {
		t.Fatal(err)
	}
	var b bytes.Buffer
	if err := png.Encode(&b, again.Image()); err != nil {
		t.Fatal(err)
	}
	equal, err := cmpimg.EqualApprox("png", onDisk, b.Bytes(), imgDelta)
	if err != nil {
		t.Fatal(err)
	}
	if !equal {
		t.Error("repeated render differs")
	}
}

func TestPNGSinkEmptyFrame(t *testing.T) {
	sink := NewPNGSink("", PNGConfig{Width: 16, Height: 8, Background: "#FFF8E3"})
	if err := sink.Upload(nil); err != nil {
		t.Fatal(err)
	}
	background := color.NRGBA{R: 0xff, G: 0xf8, B: 0xe3, A: 0xff}
	if got := pixel(sink.Image(), 8, 4); !near(got, background) {
		t.Errorf("empty frame pixel got %v, want background", got)
	}
}

func pixel(img interface {
	At(x, y int) color.Color
}, x, y int) color.NRGBA {
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

func near(a, b color.NRGBA) bool {
	d := func(x, y uint8) bool { return x-y <= 2 || y-x <= 2 }
	return d(a.R, b.R) && d(a.G, b.G) && d(a.B, b.B) && d(a.A, b.A)
}
