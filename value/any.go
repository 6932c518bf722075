package value

// ToAny projects v into plain Go values (nil, bool, int64, float64, string,
// []any, map[string]any) for handoff to tools that only know generic JSON
// shapes, such as a JSONPath evaluator. Duplicate keys collapse to their
// first value; use RangeExpanded directly if every sibling matters.
func ToAny(v *Value) any {
	if v == nil {
		return nil
	}
	switch v.Kind() {
	case KindNull:
		return nil
	case KindBool:
		return v.Bool()
	case KindInt:
		return v.Int()
	case KindFloat, KindTime:
		return v.Float()
	case KindString:
		return v.String()
	case KindArray:
		elems := v.Array()
		out := make([]any, len(elems))
		for i, c := range elems {
			out[i] = ToAny(c)
		}
		return out
	case KindObject:
		out := make(map[string]any, v.Object().Count())
		v.Object().Range(func(key string, head *Value) bool {
			out[key] = ToAny(head)
			return true
		})
		return out
	default:
		return nil
	}
}
