package render

import (
	"context"
	"fmt"
	"time"

	"github.com/soypat/objcull"
	"github.com/soypat/objcull/cull"
)

const affineTol = 1e-6

// Driver computes one render buffer per frame and uploads it to a Sink.
// Every frame is recomputed from the scene, nothing is carried over except
// reused scratch memory. The zero value is ready to use.
type Driver struct {
	culler cull.Culler
	frames int
	warned bool
}

// Frame computes the render buffer of scene at elapsed and uploads it to sink.
func (d *Driver) Frame(sink Sink, scene Scene, elapsed time.Duration) (cull.Stats, error) {
	log := objcull.Logger()
	tf := scene.transform(elapsed)
	if !d.warned && !tf.IsAffine(affineTol) {
		d.warned = true
		log.Warn("model transform is not affine, projective part ignored", "frame", d.frames)
	}
	buf := d.culler.ComputeFrame(scene.Mesh, tf, scene.view())
	stats := d.culler.Stats()
	log.Debug("frame",
		"n", d.frames,
		"elapsed", elapsed,
		"triangles", stats.Triangles,
		"visible", stats.Visible,
		"degenerate", stats.Degenerate,
	)
	d.frames++
	if err := sink.Upload(buf); err != nil {
		return stats, fmt.Errorf("uploading frame %d: %w", d.frames-1, err)
	}
	return stats, nil
}

// Frames returns how many frames d has computed.
func (d *Driver) Frames() int { return d.frames }

// Run draws frames frames of scene spaced dt apart, starting at elapsed zero.
// It stops early when ctx is done or an upload fails.
func (d *Driver) Run(ctx context.Context, sink Sink, scene Scene, frames int, dt time.Duration) error {
	for i := 0; i < frames; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := d.Frame(sink, scene, time.Duration(i)*dt); err != nil {
			return err
		}
	}
	return nil
}
