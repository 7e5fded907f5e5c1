// Package objcull holds the shared logger of the objcull geometry pipeline.
//
// The pipeline lives in the sub-packages:
//   - [github.com/soypat/objcull/d3]: float32 vector algebra and affine transforms.
//   - [github.com/soypat/objcull/mesh]: immutable triangle meshes read from OBJ and STL files.
//   - [github.com/soypat/objcull/cull]: per-frame transform and backface culling.
//   - [github.com/soypat/objcull/render]: frame driver and rendering sinks.
//
// A host loads a mesh once and computes a render buffer every frame:
//
//	m, diags := mesh.Load("block.obj")
//	if err := diags.Err(); err != nil {
//		log.Println(err) // Not fatal, m holds whatever could be parsed.
//	}
//	buf := cull.ComputeFrame(m, d3.Rotation(0.5, ms3.Vec{Y: 1}), cull.DefaultView)
//	// upload buf and draw len(buf)/3 vertices.
package objcull
