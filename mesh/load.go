package mesh

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/soypat/objcull"
)

// Load reads the mesh file at path. Files with an .stl extension are read as
// binary STL, everything else as OBJ. If the file cannot be opened Load
// returns an empty Mesh and a single KindIO diagnostic.
func Load(path string) (Mesh, Diagnostics) {
	var diags Diagnostics
	fp, err := os.Open(path)
	if err != nil {
		diags.add(Diagnostic{Kind: KindIO, Token: path, Err: fmt.Errorf("opening mesh: %w", err)})
		return Mesh{}, diags
	}
	defer fp.Close()
	var m Mesh
	if strings.EqualFold(filepath.Ext(path), ".stl") {
		m, diags = ReadSTL(bufio.NewReader(fp))
	} else {
		m, diags = ParseOBJ(fp)
	}
	objcull.Logger().Info("mesh loaded",
		"path", path,
		"triangles", m.NumTriangles(),
		"vertices", m.NumVertices(),
		"diagnostics", len(diags),
	)
	return m, diags
}
