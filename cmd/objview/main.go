// Command objview loads an OBJ or STL mesh and draws the triangles facing the
// viewer every frame, either in an OpenGL window or headless to PNG and STL files.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/objcull"
	"github.com/soypat/objcull/cull"
	"github.com/soypat/objcull/d3"
	"github.com/soypat/objcull/mesh"
	"github.com/soypat/objcull/render"
	"github.com/soypat/objcull/render/glview"
)

func init() {
	runtime.LockOSThread() // GLFW and GL calls must come from the main thread.
}

const headlessStep = time.Second / 60

func main() {
	var (
		meshPath = flag.String("mesh", "block.obj", "OBJ or binary STL mesh to draw")
		width    = flag.Int("width", 800, "window or image width")
		height   = flag.Int("height", 600, "window or image height")
		spin     = flag.Float64("spin", 0, "rotation speed about the Y axis in radians per second")
		tilt     = flag.Float64("tilt", 0.5, "fixed rotation about the X axis in radians")
		pngOut   = flag.String("png", "", "render headless to this PNG file and exit")
		stlOut   = flag.String("stl", "", "write the visible triangles to this STL file and exit")
		frames   = flag.Int("frames", 1, "number of frames to compute in headless mode")
		verbose  = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	objcull.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	m, diags := mesh.Load(*meshPath)
	if len(diags) > 0 {
		// Diagnostics were logged one by one, the mesh holds what could be read.
		objcull.Logger().Warn("mesh read with problems", "path", *meshPath, "count", len(diags))
	}
	scene := render.Scene{
		Mesh:  m,
		Model: render.Spin(*spin, ms3.Vec{Y: 1}, d3.Rotation(*tilt, ms3.Vec{X: 1}).Mul(unitScale(m))),
		View:  cull.DefaultView,
	}

	var err error
	if *pngOut != "" || *stlOut != "" {
		err = headless(scene, *pngOut, *stlOut, *width, *height, *frames)
	} else {
		err = interactive(scene, *width, *height)
	}
	if err != nil {
		log.Fatal(err)
	}
}

// unitScale scales m so it stays inside the [-1,1] cube under any rotation.
func unitScale(m mesh.Mesh) d3.Transform {
	_, hi, ok := render.FitBox(m)
	if !ok || hi.X == 0 {
		return d3.Identity()
	}
	s := 1 / hi.X
	return d3.Identity().Scale(ms3.Vec{X: s, Y: s, Z: s})
}

func headless(scene render.Scene, pngPath, stlPath string, width, height, frames int) error {
	var sinks multiSink
	if pngPath != "" {
		cfg := render.DefaultPNGConfig()
		cfg.Width, cfg.Height = width, height
		cfg.Min, cfg.Max = ms3.Vec{X: -1, Y: -1, Z: -1}, ms3.Vec{X: 1, Y: 1, Z: 1}
		sinks = append(sinks, render.NewPNGSink(pngPath, cfg))
	}
	if stlPath != "" {
		sinks = append(sinks, render.STLFile(stlPath))
	}
	var d render.Driver
	err := d.Run(context.Background(), sinks, scene, max(frames, 1), headlessStep)
	objcull.Logger().Info("headless render done", "frames", d.Frames(), "png", pngPath, "stl", stlPath)
	return err
}

func interactive(scene render.Scene, width, height int) error {
	w, err := glview.Open(glview.Config{Width: width, Height: height})
	if err != nil {
		return err
	}
	defer w.Close()
	var d render.Driver
	for !w.ShouldClose() {
		w.BeginFrame()
		if _, err := d.Frame(w, scene, w.Time()); err != nil {
			return err
		}
		w.EndFrame()
	}
	objcull.Logger().Info("window closed", "frames", d.Frames())
	return nil
}

// multiSink uploads every frame to all its sinks.
type multiSink []render.Sink

func (ms multiSink) Upload(positions []float32) error {
	var errs []error
	for _, s := range ms {
		errs = append(errs, s.Upload(positions))
	}
	return errors.Join(errs...)
}
