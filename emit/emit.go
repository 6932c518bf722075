// Package emit renders a value tree to JSON, compact JSON, Config
// (nginx-style), or YAML, plus a streaming variant for callers that want to
// drive output incrementally instead of handing over a whole tree.
package emit

import (
	"bytes"
	"io"

	"github.com/jacoelho/ucl/value"
)

// Format selects the output encoding.
type Format int

const (
	JSON Format = iota
	JSONCompact
	Config
	YAML
)

func (f Format) String() string {
	switch f {
	case JSON:
		return "json"
	case JSONCompact:
		return "compact_json"
	case Config:
		return "config"
	case YAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// Emit renders v in the given format and returns the resulting bytes.
func Emit(v *value.Value, format Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := EmitTo(&buf, v, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EmitTo renders v to w. w is the byte sink: an in-memory *bytes.Buffer, an
// *os.File opened for writing, or any other io.Writer wrapping a file
// descriptor all satisfy this directly, since Go's io.Writer is already the
// minimal "append_bytes" sink the format doesn't need to know about.
func EmitTo(w io.Writer, v *value.Value, format Format) error {
	if format == YAML {
		return emitYAML(w, v)
	}
	ops, topBraces := opsFor(format)
	e := &walker{w: w, ops: ops}
	return e.emitRoot(v, topBraces)
}
