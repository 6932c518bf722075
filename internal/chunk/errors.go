package chunk

import "github.com/jacoelho/ucl/internal/errcode"

// ErrRecursionTooDeep is returned by Push when include nesting exceeds
// MaxDepth.
var ErrRecursionTooDeep = errcode.ErrRecursionDeep
