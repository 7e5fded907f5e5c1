package render

import (
	"fmt"
	"io"
	"os"

	"github.com/soypat/objcull"
	"github.com/soypat/objcull/mesh"
)

// RecordSink keeps a copy of every uploaded render buffer.
type RecordSink struct {
	Frames [][]float32
}

func (r *RecordSink) Upload(positions []float32) error {
	r.Frames = append(r.Frames, append([]float32(nil), positions...))
	return nil
}

// Last returns the most recent upload or nil if there was none.
func (r *RecordSink) Last() []float32 {
	if len(r.Frames) == 0 {
		return nil
	}
	return r.Frames[len(r.Frames)-1]
}

// STLSink writes every uploaded render buffer as a binary STL file.
// Frames with no visible triangles are skipped without calling Create.
type STLSink struct {
	// Create opens the destination of the given frame number.
	Create func(frame int) (io.WriteCloser, error)
	frame  int
}

// STLFile returns an STLSink that writes to the file at path,
// overwriting it on every frame.
func STLFile(path string) *STLSink {
	return &STLSink{Create: func(int) (io.WriteCloser, error) {
		return os.Create(path)
	}}
}

func (s *STLSink) Upload(positions []float32) (err error) {
	frame := s.frame
	s.frame++
	tris, err := Triangles(positions)
	if err != nil {
		return err
	}
	if len(tris) == 0 {
		// Binary STL cannot hold an empty model.
		objcull.Logger().Debug("no visible triangles, skipping STL frame", "frame", frame)
		return nil
	}
	w, err := s.Create(frame)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err = mesh.WriteSTL(w, tris); err != nil {
		return fmt.Errorf("writing STL frame %d: %w", frame, err)
	}
	return nil
}
