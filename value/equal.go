package value

import "math"

// EqualOpts controls how Equal treats numeric tags.
type EqualOpts struct {
	// NumericCoerce makes Int, Float, and Time values compare equal to
	// each other based on numeric value alone, ignoring tag. The schema
	// validator sets this when a schema declares items as "number";
	// everywhere else (enum, default uniqueItems) tags must match first.
	NumericCoerce bool
}

// Equal reports whether a and b are deep-equal: compare by tag first
// (unless NumericCoerce applies), then by length, then by element/byte
// content.
func Equal(a, b *Value, opts EqualOpts) bool {
	if a == nil || b == nil {
		return a == b
	}

	if opts.NumericCoerce && isNumericKind(a.kind) && isNumericKind(b.kind) {
		av, _ := a.AsNumber()
		bv, _ := b.AsNumber()
		return av == bv
	}

	if a.kind != b.kind {
		return false
	}

	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindInt:
		return a.i == b.i
	case KindFloat, KindTime:
		return a.f == b.f
	case KindString:
		return a.s == b.s
	case KindArray:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !Equal(a.arr[i], b.arr[i], opts) {
				return false
			}
		}
		return true
	case KindObject:
		if a.obj.Count() != b.obj.Count() {
			return false
		}
		equal := true
		a.obj.Range(func(key string, _ *Value) bool {
			as := a.obj.Siblings(key)
			bs := b.obj.Siblings(key)
			if len(as) != len(bs) {
				equal = false
				return false
			}
			for i := range as {
				if !Equal(as[i], bs[i], opts) {
					equal = false
					return false
				}
			}
			return true
		})
		return equal
	case KindUserdata:
		return a.ud == b.ud
	default:
		return false
	}
}

func isNumericKind(k Kind) bool {
	return k == KindInt || k == KindFloat || k == KindTime
}

// Compare orders a and b, supplementing libucl's ucl_object_compare
// (original_source/src/ucl_util.c). Int, Float and Time values compare
// numerically with each other regardless of tag; any other pair orders by
// tag first (using Kind's integer value as a stable, arbitrary tag order),
// then within a tag: booleans false before true, strings
// lexicographically, arrays element by element then by length, and
// objects by key count only.
func Compare(a, b *Value) int {
	if a == nil || b == nil {
		switch {
		case a == b:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}

	if isNumericKind(a.kind) && isNumericKind(b.kind) {
		av, _ := a.AsNumber()
		bv, _ := b.AsNumber()
		return compareFloat(av, bv)
	}

	if a.kind != b.kind {
		return int(a.kind) - int(b.kind)
	}

	switch a.kind {
	case KindNull:
		return 0
	case KindBool:
		return boolCompare(a.b, b.b)
	case KindString:
		return stringCompare(a.s, b.s)
	case KindArray:
		n := min(len(a.arr), len(b.arr))
		for i := 0; i < n; i++ {
			if c := Compare(a.arr[i], b.arr[i]); c != 0 {
				return c
			}
		}
		return len(a.arr) - len(b.arr)
	case KindObject:
		return a.obj.Count() - b.obj.Count()
	default:
		return 0
	}
}

func compareFloat(a, b float64) int {
	switch {
	case math.IsNaN(a) || math.IsNaN(b):
		return 0
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func boolCompare(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

func stringCompare(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
