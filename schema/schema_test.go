package schema

import (
	"testing"

	"github.com/jacoelho/ucl/value"
)

func obj(pairs ...any) *value.Value {
	o := value.NewObject(false)
	for i := 0; i+1 < len(pairs); i += 2 {
		o.Object().Put(pairs[i].(string), pairs[i+1].(*value.Value))
	}
	return o
}

func arr(elems ...*value.Value) *value.Value {
	a := value.NewArray()
	for _, e := range elems {
		a.AppendElement(e)
	}
	return a
}

func TestValidateTypeMismatch(t *testing.T) {
	schema := obj("type", value.NewString("string"))
	ok, err := Validate(schema, value.NewInt(1))
	if ok || err == nil {
		t.Fatalf("expected type mismatch failure")
	}
	if err.Code != CodeTypeMismatch {
		t.Fatalf("code = %v, want CodeTypeMismatch", err.Code)
	}
}

func TestValidateRequiredProperty(t *testing.T) {
	schema := obj("type", value.NewString("object"), "required", arr(value.NewString("name")))
	missing := value.NewObject(false)
	ok, err := Validate(schema, missing)
	if ok || err == nil || err.Code != CodeMissingProperty {
		t.Fatalf("expected missing property failure, got ok=%v err=%v", ok, err)
	}

	present := obj("name", value.NewString("x"))
	ok, err = Validate(schema, present)
	if !ok || err != nil {
		t.Fatalf("expected success, got ok=%v err=%v", ok, err)
	}
}

func TestValidateProperties(t *testing.T) {
	schema := obj(
		"type", value.NewString("object"),
		"properties", obj("port", obj("type", value.NewString("integer"))),
	)
	good := obj("port", value.NewInt(80))
	if ok, err := Validate(schema, good); !ok {
		t.Fatalf("expected success, got err=%v", err)
	}

	bad := obj("port", value.NewString("eighty"))
	if ok, _ := Validate(schema, bad); ok {
		t.Fatal("expected failure for wrong property type")
	}
}

func TestValidateAdditionalPropertiesFalse(t *testing.T) {
	schema := obj(
		"type", value.NewString("object"),
		"properties", obj("a", obj("type", value.NewString("integer"))),
		"additionalProperties", value.NewBool(false),
	)
	ok, err := Validate(schema, obj("a", value.NewInt(1), "b", value.NewInt(2)))
	if ok || err == nil || err.Code != CodeConstraint {
		t.Fatalf("expected additionalProperties rejection, got ok=%v err=%v", ok, err)
	}
}

func TestValidateArrayMinMaxItems(t *testing.T) {
	schema := obj("type", value.NewString("array"), "minItems", value.NewInt(2), "maxItems", value.NewInt(3))
	if ok, _ := Validate(schema, arr(value.NewInt(1))); ok {
		t.Fatal("expected minItems failure")
	}
	if ok, err := Validate(schema, arr(value.NewInt(1), value.NewInt(2))); !ok {
		t.Fatalf("expected success, got err=%v", err)
	}
	if ok, _ := Validate(schema, arr(value.NewInt(1), value.NewInt(2), value.NewInt(3), value.NewInt(4))); ok {
		t.Fatal("expected maxItems failure")
	}
}

func TestValidateUniqueItems(t *testing.T) {
	schema := obj("type", value.NewString("array"), "uniqueItems", value.NewBool(true))
	if ok, _ := Validate(schema, arr(value.NewInt(1), value.NewInt(1))); ok {
		t.Fatal("expected uniqueItems failure on duplicate ints")
	}
	if ok, err := Validate(schema, arr(value.NewInt(1), value.NewInt(2))); !ok {
		t.Fatalf("expected success, got err=%v", err)
	}
}

func TestValidateUniqueItemsNumericCoercion(t *testing.T) {
	schema := obj(
		"type", value.NewString("array"),
		"items", obj("type", value.NewString("number")),
		"uniqueItems", value.NewBool(true),
	)
	if ok, _ := Validate(schema, arr(value.NewInt(1), value.NewFloat(1.0))); ok {
		t.Fatal("expected 1 and 1.0 to collide as duplicates when items declare type number")
	}
}

func TestValidateStringPattern(t *testing.T) {
	schema := obj("type", value.NewString("string"), "pattern", value.NewString("^[a-z]+$"))
	if ok, _ := Validate(schema, value.NewString("abc")); !ok {
		t.Fatal("expected pattern match to succeed")
	}
	if ok, _ := Validate(schema, value.NewString("ABC")); ok {
		t.Fatal("expected pattern mismatch to fail")
	}
}

func TestValidateNumberBounds(t *testing.T) {
	schema := obj("type", value.NewString("integer"), "minimum", value.NewInt(1), "maximum", value.NewInt(10))
	if ok, _ := Validate(schema, value.NewInt(0)); ok {
		t.Fatal("expected below-minimum failure")
	}
	if ok, _ := Validate(schema, value.NewInt(11)); ok {
		t.Fatal("expected above-maximum failure")
	}
	if ok, err := Validate(schema, value.NewInt(5)); !ok {
		t.Fatalf("expected success, got err=%v", err)
	}
}

func TestValidateExclusiveMinimum(t *testing.T) {
	schema := obj("type", value.NewString("integer"), "minimum", value.NewInt(5), "exclusiveMinimum", value.NewBool(true))
	if ok, _ := Validate(schema, value.NewInt(5)); ok {
		t.Fatal("expected exclusive minimum to reject the boundary value")
	}
	if ok, _ := Validate(schema, value.NewInt(6)); !ok {
		t.Fatal("expected value above the exclusive minimum to pass")
	}
}

func TestValidateEnum(t *testing.T) {
	schema := obj("enum", arr(value.NewString("a"), value.NewString("b")))
	if ok, _ := Validate(schema, value.NewString("a")); !ok {
		t.Fatal("expected enum match to succeed")
	}
	if ok, _ := Validate(schema, value.NewString("c")); ok {
		t.Fatal("expected enum mismatch to fail")
	}
}

func TestValidateCombinators(t *testing.T) {
	anyOf := obj("anyOf", arr(
		obj("type", value.NewString("string")),
		obj("type", value.NewString("integer")),
	))
	if ok, _ := Validate(anyOf, value.NewInt(1)); !ok {
		t.Fatal("expected anyOf to accept an integer branch")
	}
	if ok, _ := Validate(anyOf, value.NewBool(true)); ok {
		t.Fatal("expected anyOf to reject a value matching neither branch")
	}

	not := obj("not", obj("type", value.NewString("string")))
	if ok, _ := Validate(not, value.NewInt(1)); !ok {
		t.Fatal("expected not to accept a non-string")
	}
	if ok, _ := Validate(not, value.NewString("x")); ok {
		t.Fatal("expected not to reject a string")
	}
}

func TestValidateRefResolvesLocalFragment(t *testing.T) {
	schema := obj(
		"definitions", obj("port", obj("type", value.NewString("integer"))),
		"properties", obj("port", obj("$ref", value.NewString("#/definitions/port"))),
		"type", value.NewString("object"),
	)
	if ok, err := Validate(schema, obj("port", value.NewInt(80))); !ok {
		t.Fatalf("expected $ref resolution to succeed, got err=%v", err)
	}
	if ok, _ := Validate(schema, obj("port", value.NewString("x"))); ok {
		t.Fatal("expected $ref-resolved schema to still enforce its type")
	}
}

func TestValidateRefRejectsRemoteRef(t *testing.T) {
	schema := obj("$ref", value.NewString("http://example.com/schema.json"))
	ok, err := Validate(schema, value.NewInt(1))
	if ok || err == nil || err.Code != CodeInvalidSchema {
		t.Fatalf("expected remote $ref to be rejected, got ok=%v err=%v", ok, err)
	}
}

func TestValidateRefCycleFailsRecursionTooDeep(t *testing.T) {
	// "#" resolves to the schema root itself, so validating against it
	// recurses through $ref forever without a depth guard.
	schema := obj("$ref", value.NewString("#"))
	ok, err := Validate(schema, value.NewInt(1))
	if ok || err == nil || err.Code != CodeRecursionTooDeep {
		t.Fatalf("expected RecursionTooDeep, got ok=%v err=%v", ok, err)
	}
}

func TestValidateBatch(t *testing.T) {
	stringSchema := obj("type", value.NewString("string"))
	tasks := []Task{
		{Schema: stringSchema, Value: value.NewString("ok")},
		{Schema: stringSchema, Value: value.NewInt(1)},
	}
	results, err := ValidateBatch(tasks, 2)
	if err != nil {
		t.Fatalf("ValidateBatch: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	if !results[0].OK {
		t.Errorf("results[0].OK = false, want true")
	}
	if results[1].OK {
		t.Errorf("results[1].OK = true, want false")
	}
}
