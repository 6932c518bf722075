package emit

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jacoelho/ucl/value"
)

// operations is the table a format plugs into the shared traversal: how to
// separate a key from its value, how to separate successive entries, how
// much to indent, and whether duplicate keys become a JSON-style array or
// repeated key-value lines (Config's round-trippable rendering).
type operations struct {
	kvSeparator      func(isContainer bool) string
	elementSeparator func(isContainer bool) string
	indentUnit       string
	quoteKey         func(key string) bool
	quoteString      func(s string) bool
	repeatedKeyLines bool
}

func opsFor(format Format) (operations, bool) {
	switch format {
	case JSONCompact:
		return operations{
			kvSeparator:      func(bool) string { return ":" },
			elementSeparator: func(bool) string { return "," },
			indentUnit:       "",
			quoteKey:         func(string) bool { return true },
			quoteString:      func(string) bool { return true },
		}, true
	case Config:
		return operations{
			kvSeparator: func(isContainer bool) string {
				if isContainer {
					return " "
				}
				return " = "
			},
			elementSeparator: func(isContainer bool) string {
				if isContainer {
					return ","
				}
				return ";"
			},
			indentUnit: "    ",
			quoteKey:   keyNeedsQuoting,
			// String values are always quoted, even when the payload looks
			// like a bare word (true, 123, yes): Config is read back by
			// the same tolerant parser that recognizes unquoted bool/number
			// literals, so an unquoted string value would round-trip as a
			// different kind (spec §8 law 2).
			quoteString:      func(string) bool { return true },
			repeatedKeyLines: true,
		}, false
	default: // JSON
		return operations{
			kvSeparator:      func(bool) string { return ": " },
			elementSeparator: func(bool) string { return "," },
			indentUnit:       "    ",
			quoteKey:         func(string) bool { return true },
			quoteString:      func(string) bool { return true },
		}, true
	}
}

func keyNeedsQuoting(s string) bool {
	if s == "" {
		return true
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_', c == '-', c == '.':
		default:
			return true
		}
	}
	return false
}

type walker struct {
	w   io.Writer
	ops operations
	err error
}

func (e *walker) emitRoot(v *value.Value, topBraces bool) error {
	switch v.Kind() {
	case value.KindObject:
		if topBraces {
			e.emitObject(v, 0)
		} else {
			e.emitObjectBody(v, 0)
		}
	case value.KindArray:
		e.emitArray(v, 0)
	default:
		e.emitScalar(v)
	}
	return e.err
}

func (e *walker) write(s string) {
	if e.err != nil {
		return
	}
	_, e.err = io.WriteString(e.w, s)
}

func (e *walker) indent(depth int) {
	if e.ops.indentUnit == "" {
		return
	}
	e.write(strings.Repeat(e.ops.indentUnit, depth))
}

func (e *walker) newline() {
	if e.ops.indentUnit != "" {
		e.write("\n")
	}
}

func (e *walker) emitObject(v *value.Value, depth int) {
	e.write("{")
	e.emitObjectBody(v, depth+1)
	if v.Object().Count() > 0 {
		e.newline()
		e.indent(depth)
	}
	e.write("}")
}

func (e *walker) emitObjectBody(v *value.Value, depth int) {
	keys := v.Object().Keys()
	for ki, key := range keys {
		siblings := v.Object().Siblings(key)
		if e.ops.repeatedKeyLines {
			for _, sib := range siblings {
				e.indent(depth)
				e.emitEntry(key, sib, depth)
				e.emitEntryTerminator(sib)
			}
			continue
		}
		if ki > 0 {
			e.write(e.ops.elementSeparator(true))
			e.newline()
		} else {
			e.newline()
		}
		e.indent(depth)
		if len(siblings) == 1 {
			e.emitEntry(key, siblings[0], depth)
			continue
		}
		e.emitKey(key)
		e.write(e.ops.kvSeparator(true))
		e.emitImplicitArray(siblings, depth)
	}
}

func (e *walker) emitKey(key string) {
	if e.ops.quoteKey(key) {
		e.write(strconv.Quote(key))
	} else {
		e.write(key)
	}
}

// emitEntryTerminator writes the Config format's per-entry terminator (the
// JSON-family formats never set repeatedKeyLines, so this is only reached
// for Config). A scalar entry is split from its neighbor by ";", matching
// the original ucl emitter's "objects are split by ';'" rule; a container
// entry's own closing brace or bracket already delimits it, so it only
// needs the trailing newline.
func (e *walker) emitEntryTerminator(v *value.Value) {
	if v.Kind() == value.KindObject || v.Kind() == value.KindArray {
		e.newline()
		return
	}
	e.write(e.ops.elementSeparator(false))
	e.newline()
}

func (e *walker) emitEntry(key string, v *value.Value, depth int) {
	e.emitKey(key)
	isContainer := v.Kind() == value.KindObject || v.Kind() == value.KindArray
	e.write(e.ops.kvSeparator(isContainer))
	e.emitValue(v, depth)
}

// emitImplicitArray renders a chain of same-key siblings as a JSON array,
// used by JSON/compact JSON formats (Config never reaches this path; it
// repeats the key instead).
func (e *walker) emitImplicitArray(siblings []*value.Value, depth int) {
	e.write("[")
	for i, v := range siblings {
		if i > 0 {
			e.write(e.ops.elementSeparator(false))
		}
		e.newline()
		e.indent(depth + 1)
		e.emitValue(v, depth+1)
	}
	if len(siblings) > 0 {
		e.newline()
		e.indent(depth)
	}
	e.write("]")
}

func (e *walker) emitArray(v *value.Value, depth int) {
	elems := v.Array()
	e.write("[")
	for i, child := range elems {
		if i > 0 {
			isContainer := child.Kind() == value.KindObject || child.Kind() == value.KindArray
			e.write(e.ops.elementSeparator(isContainer))
		}
		e.newline()
		e.indent(depth + 1)
		e.emitValue(child, depth+1)
	}
	if len(elems) > 0 {
		e.newline()
		e.indent(depth)
	}
	e.write("]")
}

func (e *walker) emitValue(v *value.Value, depth int) {
	switch v.Kind() {
	case value.KindObject:
		e.emitObject(v, depth)
	case value.KindArray:
		e.emitArray(v, depth)
	default:
		e.emitScalar(v)
	}
}

func (e *walker) emitScalar(v *value.Value) {
	switch v.Kind() {
	case value.KindNull:
		e.write("null")
	case value.KindBool:
		e.write(strconv.FormatBool(v.Bool()))
	case value.KindInt:
		e.write(strconv.FormatInt(v.Int(), 10))
	case value.KindFloat, value.KindTime:
		e.write(formatFloat(v.Float()))
	case value.KindString:
		if e.ops.quoteString(v.String()) {
			e.write(strconv.Quote(v.String()))
		} else {
			e.write(v.String())
		}
	default:
		e.err = fmt.Errorf("emit: cannot render value kind %s as a scalar", v.Kind())
	}
}
