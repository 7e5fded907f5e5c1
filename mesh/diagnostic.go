package mesh

import (
	"errors"
	"fmt"

	"github.com/soypat/objcull"
)

// Kind classifies a non-fatal problem found while reading a mesh.
type Kind uint8

const (
	KindIO Kind = iota + 1
	KindMalformedVertex
	KindBadFaceIndex
	KindIndexOutOfRange
	KindSTL
	KindLineTooLong
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindMalformedVertex:
		return "malformed vertex"
	case KindBadFaceIndex:
		return "bad face index"
	case KindIndexOutOfRange:
		return "index out of range"
	case KindSTL:
		return "stl"
	case KindLineTooLong:
		return "line too long"
	}
	return "unknown"
}

var (
	ErrMalformedVertex = errors.New("vertex record needs 3 numeric coordinates")
	ErrBadFaceIndex    = errors.New("face reference is not an integer vertex index")
	ErrIndexOutOfRange = errors.New("vertex index out of range")
	ErrNonFinite       = errors.New("inf/NaN STL triangle vertex")
	ErrLineTooLong     = errors.New("OBJ line too long")
)

// Diagnostic describes one problem that was skipped while reading a mesh.
// Line is the 1-based line number for OBJ input or the 1-based facet number
// for STL input. It is zero when the problem is not tied to a record.
type Diagnostic struct {
	Line  int
	Kind  Kind
	Token string
	Err   error
}

func (d Diagnostic) Error() string {
	if d.Line == 0 {
		return d.Err.Error()
	}
	return fmt.Sprintf("line %d: %v", d.Line, d.Err)
}

func (d Diagnostic) Unwrap() error { return d.Err }

// Diagnostics is the list of problems found while reading a mesh, in input order.
type Diagnostics []Diagnostic

// Err joins all diagnostics into a single error. It returns nil if there are none.
func (ds Diagnostics) Err() error {
	if len(ds) == 0 {
		return nil
	}
	errs := make([]error, len(ds))
	for i := range ds {
		errs[i] = ds[i]
	}
	return errors.Join(errs...)
}

// Count returns how many diagnostics are of kind k.
func (ds Diagnostics) Count(k Kind) (n int) {
	for i := range ds {
		if ds[i].Kind == k {
			n++
		}
	}
	return n
}

// add records d and emits it through the package logger.
func (ds *Diagnostics) add(d Diagnostic) {
	objcull.Logger().Warn("mesh diagnostic",
		"line", d.Line,
		"kind", d.Kind.String(),
		"token", d.Token,
		"err", d.Err,
	)
	*ds = append(*ds, d)
}
