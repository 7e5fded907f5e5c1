package mesh

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/objcull"
	"github.com/soypat/objcull/d3"
)

// ParseOBJ reads the vertex position and face records of a Wavefront OBJ
// text and returns them as a triangle list. It never fails: malformed content
// is skipped and reported in the returned Diagnostics.
//
// Supported records:
//
//	v x y z            vertex position, extra coordinates are ignored
//	f a b c            triangle
//	f a b c d          quad, split into (a,b,c) and (a,c,d)
//
// Face references may carry texture and normal indices (a/t/n, a//n) which are
// ignored. Faces with other vertex counts are dropped. A face with any
// reference that does not resolve to a previously defined vertex is dropped
// whole, with one diagnostic per bad reference. Comments (#), blank lines and
// all other records are ignored. Lines longer than MaxLineLength are skipped
// with a diagnostic.
func ParseOBJ(r io.Reader) (Mesh, Diagnostics) {
	var (
		p        objParser
		buf      []byte
		overlong bool
	)
	br := bufio.NewReader(r)
	for {
		chunk, isPrefix, err := br.ReadLine()
		if err != nil {
			if err != io.EOF {
				p.diags.add(Diagnostic{
					Line: p.line + 1,
					Kind: KindIO,
					Err:  fmt.Errorf("reading OBJ: %w", err),
				})
			}
			break
		}
		if !overlong {
			if len(buf)+len(chunk) > MaxLineLength {
				overlong = true
				buf = buf[:0]
			} else {
				buf = append(buf, chunk...)
			}
		}
		if isPrefix {
			continue
		}
		p.line++
		if overlong {
			p.diags.add(Diagnostic{
				Line: p.line,
				Kind: KindLineTooLong,
				Err:  fmt.Errorf("%w: over %d bytes", ErrLineTooLong, MaxLineLength),
			})
		} else {
			p.parseLine(string(buf))
		}
		buf = buf[:0]
		overlong = false
	}
	return Mesh{tris: p.tris}, p.diags
}

// MaxLineLength is the longest OBJ line ParseOBJ interprets.
const MaxLineLength = 1 << 20

type objParser struct {
	line      int
	positions []ms3.Vec
	tris      []d3.Triangle
	diags     Diagnostics
}

func (p *objParser) parseLine(line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return
	}
	switch fields[0] {
	case "v":
		p.parseVertex(fields[1:])
	case "f":
		p.parseFace(fields[1:])
	}
}

func (p *objParser) parseVertex(args []string) {
	if len(args) < 3 {
		p.diags.add(Diagnostic{
			Line:  p.line,
			Kind:  KindMalformedVertex,
			Token: strings.Join(args, " "),
			Err:   fmt.Errorf("%w: got %d", ErrMalformedVertex, len(args)),
		})
		return
	}
	var c [3]float32
	for i := range c {
		f, err := strconv.ParseFloat(args[i], 32)
		if err != nil {
			p.diags.add(Diagnostic{
				Line:  p.line,
				Kind:  KindMalformedVertex,
				Token: args[i],
				Err:   fmt.Errorf("%w: %q", ErrMalformedVertex, args[i]),
			})
			return
		}
		c[i] = float32(f)
		if math32.IsNaN(c[i]) || math32.IsInf(c[i], 0) {
			p.diags.add(Diagnostic{
				Line:  p.line,
				Kind:  KindMalformedVertex,
				Token: args[i],
				Err:   fmt.Errorf("%w: %q is not finite", ErrMalformedVertex, args[i]),
			})
			return
		}
	}
	p.positions = append(p.positions, ms3.Vec{X: c[0], Y: c[1], Z: c[2]})
}

func (p *objParser) parseFace(refs []string) {
	if len(refs) != 3 && len(refs) != 4 {
		objcull.Logger().Debug("dropping face of unsupported arity", "line", p.line, "arity", len(refs))
		return
	}
	var v [4]ms3.Vec
	valid := true
	for i, ref := range refs {
		idx, err := p.resolve(ref)
		if err != nil {
			valid = false
			kind := KindBadFaceIndex
			if errors.Is(err, ErrIndexOutOfRange) {
				kind = KindIndexOutOfRange
			}
			p.diags.add(Diagnostic{
				Line:  p.line,
				Kind:  kind,
				Token: ref,
				Err:   err,
			})
			continue
		}
		v[i] = p.positions[idx]
	}
	if !valid {
		return
	}
	p.tris = append(p.tris, d3.Triangle{v[0], v[1], v[2]})
	if len(refs) == 4 {
		p.tris = append(p.tris, d3.Triangle{v[0], v[2], v[3]})
	}
}

// resolve returns the 0-based position index of a face reference.
func (p *objParser) resolve(ref string) (int, error) {
	if slash := strings.IndexByte(ref, '/'); slash >= 0 {
		ref = ref[:slash]
	}
	n, err := strconv.Atoi(ref)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBadFaceIndex, err)
	}
	idx := n - 1
	if idx < 0 || idx >= len(p.positions) {
		return 0, fmt.Errorf("%w: %d (%d vertices defined)", ErrIndexOutOfRange, n, len(p.positions))
	}
	return idx, nil
}
