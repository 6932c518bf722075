package schema

import (
	"math"
	"regexp"
	"strings"

	"github.com/jacoelho/ucl/value"
)

func (c *context) validate(schema, v *value.Value) *Error {
	if err := c.enter(v); err != nil {
		return err
	}
	defer c.leave()

	if schema.Kind() != value.KindObject {
		return fail(CodeInvalidSchema, schema, "schema must be an object, got %s", schema.Kind())
	}
	obj := schema.Object()

	if ref := obj.Get("$ref"); ref != nil {
		resolved, err := c.resolveRef(ref)
		if err != nil {
			return err
		}
		return c.validate(resolved, v)
	}

	if t := obj.Get("type"); t != nil {
		if err := validateType(t, v); err != nil {
			return err
		}
	}

	switch v.Kind() {
	case value.KindObject:
		if err := c.validateObject(obj, v); err != nil {
			return err
		}
	case value.KindArray:
		if err := c.validateArray(obj, v); err != nil {
			return err
		}
	case value.KindString:
		if err := validateString(obj, v); err != nil {
			return err
		}
	case value.KindInt, value.KindFloat, value.KindTime:
		if err := validateNumber(obj, v); err != nil {
			return err
		}
	}

	if enum := obj.Get("enum"); enum != nil {
		if err := validateEnum(enum, v); err != nil {
			return err
		}
	}
	if err := c.validateCombinators(obj, v); err != nil {
		return err
	}
	return nil
}

func validateType(t *value.Value, v *value.Value) *Error {
	switch t.Kind() {
	case value.KindString:
		if typeMatches(t.String(), v) {
			return nil
		}
		return fail(CodeTypeMismatch, v, "value is %s, want %s", v.Kind(), t.String())
	case value.KindArray:
		for _, want := range t.Array() {
			if want.Kind() == value.KindString && typeMatches(want.String(), v) {
				return nil
			}
		}
		return fail(CodeTypeMismatch, v, "value is %s, does not match any type in %v", v.Kind(), t)
	default:
		return fail(CodeInvalidSchema, t, "type must be a string or array of strings")
	}
}

func typeMatches(want string, v *value.Value) bool {
	switch want {
	case "object":
		return v.Kind() == value.KindObject
	case "array":
		return v.Kind() == value.KindArray
	case "string":
		return v.Kind() == value.KindString
	case "boolean":
		return v.Kind() == value.KindBool
	case "null":
		return v.Kind() == value.KindNull
	case "integer":
		return v.Kind() == value.KindInt || (v.Kind() == value.KindFloat && v.Float() == math.Trunc(v.Float()))
	case "number":
		// An Int or Time passes "number" (draft-v4 numeric compatibility).
		return v.Kind() == value.KindInt || v.Kind() == value.KindFloat || v.Kind() == value.KindTime
	default:
		return false
	}
}

func (c *context) validateObject(schemaObj *value.Object, v *value.Value) *Error {
	obj := v.Object()

	if req := schemaObj.Get("required"); req != nil {
		if req.Kind() != value.KindArray {
			return fail(CodeInvalidSchema, req, "required must be an array")
		}
		for _, name := range req.Array() {
			if obj.Get(name.String()) == nil {
				return fail(CodeMissingProperty, v, "missing required property %q", name.String())
			}
		}
	}

	if minP := schemaObj.Get("minProperties"); minP != nil {
		if n, ok := minP.AsNumber(); ok && float64(obj.Count()) < n {
			return fail(CodeConstraint, v, "object has %d properties, want >= %v", obj.Count(), n)
		}
	}
	if maxP := schemaObj.Get("maxProperties"); maxP != nil {
		if n, ok := maxP.AsNumber(); ok && float64(obj.Count()) > n {
			return fail(CodeConstraint, v, "object has %d properties, want <= %v", obj.Count(), n)
		}
	}

	if deps := schemaObj.Get("dependencies"); deps != nil {
		if err := c.validateDependencies(deps, obj, v); err != nil {
			return err
		}
	}

	matched := make(map[string]bool)
	if props := schemaObj.Get("properties"); props != nil {
		if props.Kind() != value.KindObject {
			return fail(CodeInvalidSchema, props, "properties must be an object")
		}
		for _, key := range props.Object().Keys() {
			child := obj.Get(key)
			if child == nil {
				continue
			}
			matched[key] = true
			if err := c.validate(props.Object().Get(key), child); err != nil {
				return err
			}
		}
	}

	var patterns []*regexp.Regexp
	var patternSchemas []*value.Value
	if pp := schemaObj.Get("patternProperties"); pp != nil {
		if pp.Kind() != value.KindObject {
			return fail(CodeInvalidSchema, pp, "patternProperties must be an object")
		}
		for _, pat := range pp.Object().Keys() {
			re, err := regexp.CompilePOSIX(pat)
			if err != nil {
				return fail(CodeInvalidSchema, pp, "invalid patternProperties regex %q: %v", pat, err)
			}
			patterns = append(patterns, re)
			patternSchemas = append(patternSchemas, pp.Object().Get(pat))
		}
		for _, key := range obj.Keys() {
			for i, re := range patterns {
				if re.MatchString(key) {
					matched[key] = true
					if err := c.validate(patternSchemas[i], obj.Get(key)); err != nil {
						return err
					}
				}
			}
		}
	}

	if ap := schemaObj.Get("additionalProperties"); ap != nil {
		for _, key := range obj.Keys() {
			if matched[key] {
				continue
			}
			switch ap.Kind() {
			case value.KindBool:
				if !ap.Bool() {
					return fail(CodeConstraint, obj.Get(key), "additional property %q is not allowed", key)
				}
			case value.KindObject:
				if err := c.validate(ap, obj.Get(key)); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

func (c *context) validateDependencies(deps *value.Value, obj *value.Object, v *value.Value) *Error {
	if deps.Kind() != value.KindObject {
		return fail(CodeInvalidSchema, deps, "dependencies must be an object")
	}
	for _, key := range deps.Object().Keys() {
		if obj.Get(key) == nil {
			continue
		}
		dep := deps.Object().Get(key)
		switch dep.Kind() {
		case value.KindArray:
			for _, req := range dep.Array() {
				if obj.Get(req.String()) == nil {
					return fail(CodeMissingDependency, v, "property %q requires %q", key, req.String())
				}
			}
		case value.KindObject:
			if err := c.validate(dep, v); err != nil {
				return err
			}
		default:
			return fail(CodeInvalidSchema, dep, "dependency value must be an array or schema object")
		}
	}
	return nil
}

func (c *context) validateArray(schemaObj *value.Object, v *value.Value) *Error {
	elems := v.Array()

	if minI := schemaObj.Get("minItems"); minI != nil {
		if n, ok := minI.AsNumber(); ok && float64(len(elems)) < n {
			return fail(CodeConstraint, v, "array has %d items, want >= %v", len(elems), n)
		}
	}
	if maxI := schemaObj.Get("maxItems"); maxI != nil {
		if n, ok := maxI.AsNumber(); ok && float64(len(elems)) > n {
			return fail(CodeConstraint, v, "array has %d items, want <= %v", len(elems), n)
		}
	}

	if uniq := schemaObj.Get("uniqueItems"); uniq != nil && uniq.Kind() == value.KindBool && uniq.Bool() {
		numericCoerce := declaresNumberType(schemaObj)
		for i := 0; i < len(elems); i++ {
			for j := i + 1; j < len(elems); j++ {
				if value.Equal(elems[i], elems[j], value.EqualOpts{NumericCoerce: numericCoerce}) {
					return fail(CodeConstraint, elems[j], "array items at index %d and %d are not unique", i, j)
				}
			}
		}
	}

	items := schemaObj.Get("items")
	switch {
	case items == nil:
		// no item schema: nothing further to check
	case items.Kind() == value.KindArray:
		itemSchemas := items.Array()
		for i, elem := range elems {
			if i < len(itemSchemas) {
				if err := c.validate(itemSchemas[i], elem); err != nil {
					return err
				}
				continue
			}
			if ai := schemaObj.Get("additionalItems"); ai != nil {
				switch ai.Kind() {
				case value.KindBool:
					if !ai.Bool() {
						return fail(CodeConstraint, elem, "additional item at index %d is not allowed", i)
					}
				case value.KindObject:
					if err := c.validate(ai, elem); err != nil {
						return err
					}
				}
			}
		}
	case items.Kind() == value.KindObject:
		for _, elem := range elems {
			if err := c.validate(items, elem); err != nil {
				return err
			}
		}
	default:
		return fail(CodeInvalidSchema, items, "items must be a schema or an array of schemas")
	}

	return nil
}

func declaresNumberType(schemaObj *value.Object) bool {
	items := schemaObj.Get("items")
	if items == nil || items.Kind() != value.KindObject {
		return false
	}
	t := items.Object().Get("type")
	if t == nil || t.Kind() != value.KindString {
		return false
	}
	return t.String() == "number"
}

func validateString(schemaObj *value.Object, v *value.Value) *Error {
	s := v.String()
	if minL := schemaObj.Get("minLength"); minL != nil {
		if n, ok := minL.AsNumber(); ok && float64(len(s)) < n {
			return fail(CodeConstraint, v, "string length %d, want >= %v", len(s), n)
		}
	}
	if maxL := schemaObj.Get("maxLength"); maxL != nil {
		if n, ok := maxL.AsNumber(); ok && float64(len(s)) > n {
			return fail(CodeConstraint, v, "string length %d, want <= %v", len(s), n)
		}
	}
	if pat := schemaObj.Get("pattern"); pat != nil {
		re, err := regexp.CompilePOSIX(pat.String())
		if err != nil {
			return fail(CodeInvalidSchema, pat, "invalid pattern %q: %v", pat.String(), err)
		}
		if !re.MatchString(s) {
			return fail(CodeConstraint, v, "string %q does not match pattern %q", s, pat.String())
		}
	}
	return nil
}

func validateNumber(schemaObj *value.Object, v *value.Value) *Error {
	n, _ := v.AsNumber()

	if min := schemaObj.Get("minimum"); min != nil {
		bound, _ := min.AsNumber()
		if exclusiveBound(schemaObj, "exclusiveMinimum") {
			if n <= bound {
				return fail(CodeConstraint, v, "%v is not > exclusive minimum %v", n, bound)
			}
		} else if n < bound {
			return fail(CodeConstraint, v, "%v is not >= minimum %v", n, bound)
		}
	}
	if max := schemaObj.Get("maximum"); max != nil {
		bound, _ := max.AsNumber()
		if exclusiveBound(schemaObj, "exclusiveMaximum") {
			if n >= bound {
				return fail(CodeConstraint, v, "%v is not < exclusive maximum %v", n, bound)
			}
		} else if n > bound {
			return fail(CodeConstraint, v, "%v is not <= maximum %v", n, bound)
		}
	}
	if mult := schemaObj.Get("multipleOf"); mult != nil {
		m, _ := mult.AsNumber()
		if m > 0 {
			if rem := math.Mod(n, m); math.Abs(rem) >= 1e-16 && math.Abs(rem-m) >= 1e-16 {
				return fail(CodeConstraint, v, "%v is not a multiple of %v", n, m)
			}
		}
	}
	return nil
}

// exclusiveBound reports whether the exclusive{Minimum,Maximum} flag for a
// draft-v4 schema is boolean-true, tolerating the draft-6+ numeric form too
// (a schema author who sets it to a number clearly means "exclusive").
func exclusiveBound(schemaObj *value.Object, key string) bool {
	e := schemaObj.Get(key)
	if e == nil {
		return false
	}
	if e.Kind() == value.KindBool {
		return e.Bool()
	}
	_, ok := e.AsNumber()
	return ok
}

func validateEnum(enum *value.Value, v *value.Value) *Error {
	if enum.Kind() != value.KindArray {
		return fail(CodeInvalidSchema, enum, "enum must be an array")
	}
	for _, candidate := range enum.Array() {
		if value.Equal(candidate, v, value.EqualOpts{}) {
			return nil
		}
	}
	return fail(CodeConstraint, v, "value does not match any enum candidate")
}

func (c *context) validateCombinators(schemaObj *value.Object, v *value.Value) *Error {
	if allOf := schemaObj.Get("allOf"); allOf != nil {
		for _, s := range allOf.Array() {
			if err := c.validate(s, v); err != nil {
				return err
			}
		}
	}
	if anyOf := schemaObj.Get("anyOf"); anyOf != nil {
		var last *Error
		ok := false
		for _, s := range anyOf.Array() {
			if err := c.validate(s, v); err == nil {
				ok = true
				break
			} else {
				last = err
			}
		}
		if !ok {
			if last == nil {
				last = fail(CodeConstraint, v, "anyOf has no branches")
			}
			return fail(CodeConstraint, v, "value matched none of anyOf: %s", last.Message)
		}
	}
	if oneOf := schemaObj.Get("oneOf"); oneOf != nil {
		count := 0
		for _, s := range oneOf.Array() {
			if err := c.validate(s, v); err == nil {
				count++
			}
		}
		if count != 1 {
			return fail(CodeConstraint, v, "value matched %d branches of oneOf, want exactly 1", count)
		}
	}
	if not := schemaObj.Get("not"); not != nil {
		if err := c.validate(not, v); err == nil {
			return fail(CodeConstraint, v, "value matched a schema under not")
		}
	}
	return nil
}

// resolveRef resolves a "#/a/b" fragment pointer against the root schema.
func (c *context) resolveRef(ref *value.Value) (*value.Value, *Error) {
	if ref.Kind() != value.KindString {
		return nil, fail(CodeInvalidSchema, ref, "$ref must be a string")
	}
	path := ref.String()
	if !strings.HasPrefix(path, "#/") && path != "#" {
		return nil, fail(CodeInvalidSchema, ref, "$ref %q is not a local fragment pointer", path)
	}
	cur := c.root
	if path == "#" {
		return cur, nil
	}
	for _, segment := range strings.Split(strings.TrimPrefix(path, "#/"), "/") {
		if cur.Kind() != value.KindObject {
			return nil, fail(CodeInvalidSchema, ref, "$ref %q traverses into a non-object at %q", path, segment)
		}
		next := cur.Object().Get(segment)
		if next == nil {
			return nil, fail(CodeInvalidSchema, ref, "$ref %q: no such property %q", path, segment)
		}
		cur = next
	}
	return cur, nil
}
