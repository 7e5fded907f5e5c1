// Package glview draws render buffers in an OpenGL 3.3 core window.
// All functions must be called from the main OS thread, see runtime.LockOSThread.
package glview

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-gl/gl/all-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/soypat/glgl/v4.6-core/glgl"
)

// Config describes the window and the flat colors used to draw.
type Config struct {
	Title         string
	Width, Height int
	// Version is the requested OpenGL core context version.
	Version    [2]int
	ClearColor [4]float32
	Color      [3]float32
}

// DefaultConfig returns the configuration of an 800x600 "Triangle Engine"
// window drawing orange triangles on a dark teal background.
func DefaultConfig() Config {
	return Config{
		Title:      "Triangle Engine",
		Width:      800,
		Height:     600,
		Version:    [2]int{3, 3},
		ClearColor: [4]float32{0.2, 0.3, 0.3, 1},
		Color:      [3]float32{1, 0.5, 0.2},
	}
}

func (cfg Config) withDefaults() Config {
	def := DefaultConfig()
	if cfg.Title == "" {
		cfg.Title = def.Title
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = def.Width, def.Height
	}
	if cfg.Version == ([2]int{}) {
		cfg.Version = def.Version
	}
	if cfg.ClearColor == ([4]float32{}) {
		cfg.ClearColor = def.ClearColor
	}
	if cfg.Color == ([3]float32{}) {
		cfg.Color = def.Color
	}
	return cfg
}

// Window is an OpenGL window with a single vertex buffer of positions.
// It implements render.Sink.
type Window struct {
	win       *glfw.Window
	terminate func()
	prog      glgl.Program
	vao, vbo  uint32
	clear     [4]float32
	start     float64
}

// Open creates the window, makes its context current and compiles the
// flat color program.
//
// The shaders only need OpenGL 3.3, but glgl loads every OpenGL 4.6 core
// entry point after creating the context and Open fails if the driver does
// not expose them, even on a 3.3 context. Drivers limited to 4.1 (macOS)
// are not supported. Set cfg.Version to {4, 6} to request the matching
// context where the driver offers it.
func Open(cfg Config) (*Window, error) {
	cfg = cfg.withDefaults()
	win, terminate, err := glgl.InitWithCurrentWindow33(glgl.WindowConfig{
		Title:   cfg.Title,
		Version: cfg.Version,
		Width:   cfg.Width,
		Height:  cfg.Height,
	})
	if err != nil {
		return nil, fmt.Errorf("opening window: %w", err)
	}
	if err := gl.Init(); err != nil {
		terminate()
		return nil, fmt.Errorf("loading OpenGL: %w", err)
	}
	source, err := glgl.ParseCombined(strings.NewReader(shaderSource(cfg.Color)))
	if err != nil {
		terminate()
		return nil, err
	}
	prog, err := glgl.CompileProgram(source)
	if err != nil {
		terminate()
		return nil, fmt.Errorf("compiling program: %w", err)
	}
	w := &Window{
		win:       win,
		terminate: terminate,
		prog:      prog,
		clear:     cfg.ClearColor,
		start:     glfw.GetTime(),
	}
	prog.Bind()
	gl.GenVertexArrays(1, &w.vao)
	gl.BindVertexArray(w.vao)
	gl.GenBuffers(1, &w.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, w.vbo)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 3*4, gl.PtrOffset(0))

	win.SetKeyCallback(func(win *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			win.SetShouldClose(true)
		}
	})
	return w, nil
}

// Upload replaces the vertex buffer contents with positions and draws them
// as triangles.
func (w *Window) Upload(positions []float32) error {
	if len(positions)%9 != 0 {
		return errors.New("render buffer length not a multiple of 9")
	}
	if len(positions) == 0 {
		return nil
	}
	w.prog.Bind()
	gl.BindVertexArray(w.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, w.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, 4*len(positions), gl.Ptr(positions), gl.DYNAMIC_DRAW)
	gl.DrawArrays(gl.TRIANGLES, 0, int32(len(positions)/3))
	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("drawing %d vertices: GL error 0x%x", len(positions)/3, code)
	}
	return nil
}

// ShouldClose reports whether the user asked to close the window.
func (w *Window) ShouldClose() bool { return w.win.ShouldClose() }

// BeginFrame fits the viewport to the framebuffer and clears it.
func (w *Window) BeginFrame() {
	width, height := w.win.GetFramebufferSize()
	gl.Viewport(0, 0, int32(width), int32(height))
	gl.ClearColor(w.clear[0], w.clear[1], w.clear[2], w.clear[3])
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

// EndFrame presents the frame and processes pending window events.
func (w *Window) EndFrame() {
	w.win.SwapBuffers()
	glfw.PollEvents()
}

// Time returns the time elapsed since the window was opened.
func (w *Window) Time() time.Duration {
	return time.Duration((glfw.GetTime() - w.start) * float64(time.Second))
}

// Close destroys the window and releases GLFW.
func (w *Window) Close() {
	gl.DeleteBuffers(1, &w.vbo)
	gl.DeleteVertexArrays(1, &w.vao)
	w.terminate()
}

// shaderSource returns the combined vertex and fragment shader drawing
// positions untransformed in the flat color c.
func shaderSource(c [3]float32) string {
	return fmt.Sprintf(`#shader vertex
#version 330 core
layout (location = 0) in vec3 aPos;
void main() {
	gl_Position = vec4(aPos, 1.0);
}

#shader fragment
#version 330 core
out vec4 FragColor;
void main() {
	FragColor = vec4(%g, %g, %g, 1.0);
}
`, c[0], c[1], c[2])
}
