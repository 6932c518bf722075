// Package schema implements a draft-v4 JSON Schema validator over the
// value tree, so a UCL document can validate itself or another document
// without a trip through encoding/json.
package schema

import (
	"fmt"

	"github.com/jacoelho/ucl/internal/errcode"
	"github.com/jacoelho/ucl/value"
)

// Code classifies a validation failure.
type Code int

const (
	CodeTypeMismatch Code = iota
	CodeInvalidSchema
	CodeMissingProperty
	CodeConstraint
	CodeMissingDependency
	CodeRecursionTooDeep
	CodeUnknown
)

func (c Code) String() string {
	switch c {
	case CodeTypeMismatch:
		return "TypeMismatch"
	case CodeInvalidSchema:
		return "InvalidSchema"
	case CodeMissingProperty:
		return "MissingProperty"
	case CodeConstraint:
		return "Constraint"
	case CodeMissingDependency:
		return "MissingDependency"
	case CodeRecursionTooDeep:
		return "RecursionTooDeep"
	default:
		return "Unknown"
	}
}

// maxValidationDepth bounds schema recursion ($ref cycles, nested
// combinators) at the same limit as include-chunk nesting.
const maxValidationDepth = 16

// Error describes a single validation failure: the code, a message, and
// the offending value (nil if not applicable).
type Error struct {
	Code      Code
	Message   string
	Offending *value.Value
}

func (e *Error) Error() string {
	return fmt.Sprintf("schema: %s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	switch e.Code {
	case CodeTypeMismatch:
		return errcode.ErrTypeMismatch
	case CodeInvalidSchema:
		return errcode.ErrInvalidSchema
	case CodeMissingProperty:
		return errcode.ErrMissingProperty
	case CodeConstraint:
		return errcode.ErrConstraint
	case CodeMissingDependency:
		return errcode.ErrMissingDependency
	case CodeRecursionTooDeep:
		return errcode.ErrRecursionDeep
	default:
		return errcode.ErrUnknownSchemaError
	}
}

func fail(code Code, offending *value.Value, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Offending: offending}
}

// Validate checks v against schema (itself a value tree, as produced by
// parsing a JSON Schema document through the same parser). It returns true
// with a nil *Error on success.
func Validate(schema, v *value.Value) (bool, *Error) {
	c := &context{root: schema}
	if err := c.validate(schema, v); err != nil {
		return false, err
	}
	return true, nil
}

type context struct {
	root  *value.Value
	depth int
}

// enter bumps the recursion depth for one validate call ($ref resolution
// or a combinator descending into a subschema) and fails once it exceeds
// maxValidationDepth, the same cap applied to include-chunk nesting.
func (c *context) enter(v *value.Value) *Error {
	c.depth++
	if c.depth > maxValidationDepth {
		return fail(CodeRecursionTooDeep, v, "schema recursion exceeded depth %d", maxValidationDepth)
	}
	return nil
}

func (c *context) leave() { c.depth-- }
