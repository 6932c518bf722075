package emit

import (
	"io"

	"github.com/goccy/go-yaml"

	"github.com/jacoelho/ucl/value"
)

// emitYAML converts the value tree into goccy/go-yaml's ordered MapSlice
// representation and hands it to the library's own encoder, rather than
// walking bytes by hand the way the JSON/Config formats do: YAML's quoting
// and block-scalar rules are subtle enough that reusing a real YAML encoder
// is the idiomatic choice once one is already a dependency.
func emitYAML(w io.Writer, v *value.Value) error {
	enc := yaml.NewEncoder(w, yaml.Indent(4))
	defer enc.Close()
	return enc.Encode(toYAMLNode(v))
}

func toYAMLNode(v *value.Value) any {
	switch v.Kind() {
	case value.KindNull:
		return nil
	case value.KindBool:
		return v.Bool()
	case value.KindInt:
		return v.Int()
	case value.KindFloat, value.KindTime:
		return v.Float()
	case value.KindString:
		return v.String()
	case value.KindArray:
		elems := v.Array()
		out := make([]any, len(elems))
		for i, c := range elems {
			out[i] = toYAMLNode(c)
		}
		return out
	case value.KindObject:
		return objectToYAMLMapSlice(v.Object())
	default:
		return nil
	}
}

func objectToYAMLMapSlice(o *value.Object) yaml.MapSlice {
	ms := make(yaml.MapSlice, 0, o.Count())
	for _, key := range o.Keys() {
		siblings := o.Siblings(key)
		if len(siblings) == 1 {
			ms = append(ms, yaml.MapItem{Key: key, Value: toYAMLNode(siblings[0])})
			continue
		}
		arr := make([]any, len(siblings))
		for i, s := range siblings {
			arr[i] = toYAMLNode(s)
		}
		ms = append(ms, yaml.MapItem{Key: key, Value: arr})
	}
	return ms
}
