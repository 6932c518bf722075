// Package pathquery implements dot-path lookups ("a.b.0.c") against a
// value tree by translating the path into a JSONPath query and evaluating
// it with github.com/theory/jsonpath. Path resolution lives in its own
// package instead of the parser/value core, since it has nothing to do
// with parsing or the tree representation itself.
package pathquery

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/theory/jsonpath"

	"github.com/jacoelho/ucl/value"
)

var (
	// ErrNotFound is returned when the dot path resolves to nothing.
	ErrNotFound = errors.New("pathquery: no match for path")
	// ErrInvalidPath is returned for a malformed dot path.
	ErrInvalidPath = errors.New("pathquery: invalid path")
)

// Lookup resolves dotPath (e.g. "server.listen.0.port") against root and
// returns the first matching value's generic-any projection.
func Lookup(root *value.Value, dotPath string) (any, error) {
	query, err := toJSONPath(dotPath)
	if err != nil {
		return nil, err
	}
	path, err := jsonpath.Parse(query)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPath, dotPath, err)
	}

	data := value.ToAny(root)
	results := path.Select(data)
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, dotPath)
	}
	return results[0], nil
}

// toJSONPath converts "a.b.0.c" into "$.a.b[0].c". A segment that parses
// as a non-negative integer is treated as an array index; everything else
// is a bare key reference.
func toJSONPath(dotPath string) (string, error) {
	if dotPath == "" {
		return "", fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	var b strings.Builder
	b.WriteString("$")
	for _, segment := range strings.Split(dotPath, ".") {
		if segment == "" {
			return "", fmt.Errorf("%w: %s: empty segment", ErrInvalidPath, dotPath)
		}
		if n, err := strconv.Atoi(segment); err == nil && n >= 0 {
			fmt.Fprintf(&b, "[%d]", n)
			continue
		}
		b.WriteString(".")
		b.WriteString(segment)
	}
	return b.String(), nil
}
