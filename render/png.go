package render

import (
	"image"

	"github.com/chewxy/math32"
	"github.com/fogleman/fauxgl"
	"github.com/nfnt/resize"
	"github.com/soypat/glgl/math/ms3"
)

// PNGConfig configures the software preview of a PNGSink.
type PNGConfig struct {
	Width, Height int
	// Supersample renders at this multiple of the output size and
	// downsamples for antialiasing. Values below 1 mean 4.
	Supersample int
	// Min and Max bound the region of world space that is drawn. When equal
	// the bounds of each uploaded frame are used.
	Min, Max ms3.Vec
	// Hex colors. Empty strings select the defaults.
	Background, Color string
}

// DefaultPNGConfig matches the window the OpenGL viewer opens.
func DefaultPNGConfig() PNGConfig {
	return PNGConfig{
		Width:       800,
		Height:      600,
		Supersample: 4,
		Background:  "#334D4D",
		Color:       "#FF8033",
	}
}

// PNGSink rasterizes uploaded render buffers in software with an
// orthographic projection along -Z. Culling is disabled since render buffers
// only hold visible triangles.
type PNGSink struct {
	cfg  PNGConfig
	path string
	img  image.Image
}

// NewPNGSink returns a sink rendering with cfg. If path is not empty every
// frame is saved there as a PNG image.
func NewPNGSink(path string, cfg PNGConfig) *PNGSink {
	def := DefaultPNGConfig()
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = def.Width, def.Height
	}
	if cfg.Supersample < 1 {
		cfg.Supersample = def.Supersample
	}
	if cfg.Background == "" {
		cfg.Background = def.Background
	}
	if cfg.Color == "" {
		cfg.Color = def.Color
	}
	return &PNGSink{cfg: cfg, path: path}
}

// Image returns the last rendered frame or nil.
func (s *PNGSink) Image() image.Image { return s.img }

func (s *PNGSink) Upload(positions []float32) error {
	tris, err := Triangles(positions)
	if err != nil {
		return err
	}
	lo, hi := s.cfg.Min, s.cfg.Max
	if lo == hi {
		lo, hi = frameBounds(positions)
	}
	faux := make([]*fauxgl.Triangle, len(tris))
	for i, t := range tris {
		ft := &fauxgl.Triangle{}
		ft.V1.Position = fauxgl.V(float64(t[0].X), float64(t[0].Y), float64(t[0].Z))
		ft.V2.Position = fauxgl.V(float64(t[1].X), float64(t[1].Y), float64(t[1].Z))
		ft.V3.Position = fauxgl.V(float64(t[2].X), float64(t[2].Y), float64(t[2].Z))
		faux[i] = ft
	}
	ss := s.cfg.Supersample
	width, height := s.cfg.Width, s.cfg.Height
	context := fauxgl.NewContext(width*ss, height*ss)
	context.ClearColorBufferWith(fauxgl.HexColor(s.cfg.Background))
	context.Cull = fauxgl.CullNone
	context.Shader = fauxgl.NewSolidColorShader(orthographic(lo, hi, width, height), fauxgl.HexColor(s.cfg.Color))
	if len(faux) > 0 {
		context.DrawMesh(fauxgl.NewTriangleMesh(faux))
	}
	// downsample image for antialiasing
	img := resize.Resize(uint(width), uint(height), context.Image(), resize.Bilinear)
	s.img = img
	if s.path == "" {
		return nil
	}
	return fauxgl.SavePNG(s.path, img)
}

// orthographic maps the box [lo,hi] into clip space keeping the aspect ratio
// of the output image. The viewer looks along -Z so larger Z is nearer.
func orthographic(lo, hi ms3.Vec, width, height int) fauxgl.Matrix {
	const pad = 1.05
	cx, cy := (lo.X+hi.X)/2, (lo.Y+hi.Y)/2
	hw := math32.Max((hi.X-lo.X)/2, 1e-3) * pad
	hh := math32.Max((hi.Y-lo.Y)/2, 1e-3) * pad
	aspect := float32(width) / float32(height)
	if hw/hh < aspect {
		hw = hh * aspect
	} else {
		hh = hw / aspect
	}
	depth := math32.Max(hi.Z-lo.Z, 1e-3)
	near := float64(-hi.Z - depth)
	far := float64(-lo.Z + depth)
	return fauxgl.Orthographic(float64(cx-hw), float64(cx+hw), float64(cy-hh), float64(cy+hh), near, far)
}

func frameBounds(positions []float32) (lo, hi ms3.Vec) {
	if len(positions) < 3 {
		return ms3.Vec{X: -1, Y: -1, Z: -1}, ms3.Vec{X: 1, Y: 1, Z: 1}
	}
	lo = ms3.Vec{X: positions[0], Y: positions[1], Z: positions[2]}
	hi = lo
	for i := 3; i+2 < len(positions); i += 3 {
		lo.X, hi.X = math32.Min(lo.X, positions[i]), math32.Max(hi.X, positions[i])
		lo.Y, hi.Y = math32.Min(lo.Y, positions[i+1]), math32.Max(hi.Y, positions[i+1])
		lo.Z, hi.Z = math32.Min(lo.Z, positions[i+2]), math32.Max(hi.Z, positions[i+2])
	}
	return lo, hi
}
