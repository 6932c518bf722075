package emit

import (
	"errors"
	"io"

	"github.com/jacoelho/ucl/value"
)

// Streamer drives output incrementally instead of handing over a whole
// value tree at once. Every StartContainer must be matched by one
// EndContainer; Finish closes whatever containers remain open.
type Streamer struct {
	w         io.Writer
	walk      walker
	topBraces bool
	stack     []*streamFrame
	started   bool
	err       error
}

type streamFrame struct {
	kind  value.Kind // KindObject or KindArray
	count int
}

// NewStreamer creates a Streamer for the given format. YAML is not
// supported in streaming mode: goccy/go-yaml's encoder builds its own
// in-memory node tree and offers no incremental-append API to drive.
func NewStreamer(w io.Writer, format Format) (*Streamer, error) {
	if format == YAML {
		return nil, errors.New("emit: streaming is not supported for the yaml format")
	}
	ops, topBraces := opsFor(format)
	return &Streamer{w: w, walk: walker{w: w, ops: ops}, topBraces: topBraces}, nil
}

// Start opens the top-level container. top must be KindObject or KindArray.
func (s *Streamer) Start(top value.Kind) error {
	if s.started {
		return errors.New("emit: Start called twice")
	}
	s.started = true
	return s.StartContainer(top)
}

// StartContainer opens a nested object or array. It writes no key, so a
// container opened directly inside an object is emitted without one;
// AddObject, which takes a key, adds a whole keyed subtree instead.
func (s *Streamer) StartContainer(kind value.Kind) error {
	if kind != value.KindObject && kind != value.KindArray {
		return errors.New("emit: StartContainer requires KindObject or KindArray")
	}
	s.beforeEntry(kind)
	if kind == value.KindObject {
		if len(s.stack) > 0 || s.topBraces {
			s.walk.write("{")
		}
	} else {
		s.walk.write("[")
	}
	s.stack = append(s.stack, &streamFrame{kind: kind})
	return s.walk.err
}

// EndContainer closes the most recently opened container.
func (s *Streamer) EndContainer() error {
	if len(s.stack) == 0 {
		return errors.New("emit: EndContainer with no open container")
	}
	top := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	depth := len(s.stack)
	if top.kind == value.KindObject {
		if depth > 0 || s.topBraces {
			if top.count > 0 {
				s.walk.newline()
				s.walk.indent(depth)
			}
			s.walk.write("}")
		}
	} else {
		if top.count > 0 {
			s.walk.newline()
			s.walk.indent(depth)
		}
		s.walk.write("]")
	}
	return s.walk.err
}

// AddObject appends a scalar or subtree v at the current position. key is
// required (and used) only when the enclosing container is an object;
// pass "" for array elements.
func (s *Streamer) AddObject(key string, v *value.Value) error {
	s.beforeEntry(v.Kind())
	depth := len(s.stack)
	s.walk.newline()
	s.walk.indent(depth)
	if len(s.stack) > 0 && s.stack[len(s.stack)-1].kind == value.KindObject {
		s.walk.emitKey(key)
		isContainer := v.Kind() == value.KindObject || v.Kind() == value.KindArray
		s.walk.write(s.walk.ops.kvSeparator(isContainer))
	}
	s.walk.emitValue(v, depth)
	return s.walk.err
}

func (s *Streamer) beforeEntry(childKind value.Kind) {
	if len(s.stack) == 0 {
		return
	}
	top := s.stack[len(s.stack)-1]
	if top.count > 0 {
		isContainer := childKind == value.KindObject || childKind == value.KindArray
		s.walk.write(s.walk.ops.elementSeparator(isContainer))
	}
	top.count++
}

// Finish closes every outstanding container, innermost first.
func (s *Streamer) Finish() error {
	for len(s.stack) > 0 {
		if err := s.EndContainer(); err != nil {
			return err
		}
	}
	return s.walk.err
}
