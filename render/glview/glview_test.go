package glview

import (
	"os"
	"runtime"
	"strings"
	"testing"

	"github.com/soypat/objcull/cull"
	"github.com/soypat/objcull/d3"
	"github.com/soypat/objcull/mesh"
)

func init() {
	runtime.LockOSThread() // For GL.
}

func TestShaderSource(t *testing.T) {
	src := shaderSource(DefaultConfig().Color)
	for _, want := range []string{
		"#shader vertex",
		"#shader fragment",
		"layout (location = 0) in vec3 aPos;",
		"vec4(1, 0.5, 0.2, 1.0)",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("shader source missing %q:\n%s", want, src)
		}
	}
	if strings.Index(src, "#shader vertex") > strings.Index(src, "#shader fragment") {
		t.Error("vertex shader must come first")
	}
}

func TestConfigDefaults(t *testing.T) {
	got := Config{Width: 320}.withDefaults()
	if got != DefaultConfig() {
		t.Errorf("got %+v, want %+v", got, DefaultConfig())
	}
	custom := Config{Title: "x", Width: 10, Height: 20, Color: [3]float32{0, 0, 1}}.withDefaults()
	if custom.Title != "x" || custom.Width != 10 || custom.Height != 20 || custom.Color != [3]float32{0, 0, 1} {
		t.Errorf("custom fields overwritten: %+v", custom)
	}
	if custom.Version != [2]int{3, 3} {
		t.Errorf("context version not defaulted: %v", custom.Version)
	}
	if v := (Config{Version: [2]int{4, 6}}).withDefaults().Version; v != [2]int{4, 6} {
		t.Errorf("context version overwritten: %v", v)
	}
	if custom.ClearColor != DefaultConfig().ClearColor {
		t.Errorf("clear color not defaulted: %+v", custom)
	}
}

// TestWindow needs a display and OpenGL 3.3 drivers.
func TestWindow(t *testing.T) {
	if os.Getenv("OBJCULL_GL") == "" {
		t.Skip("set OBJCULL_GL=1 to run tests that open a window")
	}
	w, err := Open(Config{Width: 64, Height: 64})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	tri := d3.Triangle{{X: -0.5, Y: -0.5}, {X: 0.5, Y: -0.5}, {X: 0, Y: 0.5}}
	buf := cull.ComputeFrame(mesh.New([]d3.Triangle{tri}), d3.Identity(), cull.DefaultView)
	for i := 0; i < 3; i++ {
		w.BeginFrame()
		if err := w.Upload(buf); err != nil {
			t.Fatal(err)
		}
		w.EndFrame()
	}
	if err := w.Upload(buf[:4]); err == nil {
		t.Error("expected error for partial triangle")
	}
	if w.Time() < 0 {
		t.Error("negative elapsed time")
	}
}
