package pathquery

import (
	"testing"

	"github.com/jacoelho/ucl/value"
)

func buildTree() *value.Value {
	root := value.NewObject(false)
	server := value.NewObject(false)
	server.Object().Put("port", value.NewInt(8080))

	listen := value.NewArray()
	listen.AppendElement(value.NewString("0.0.0.0"))
	listen.AppendElement(value.NewString("::1"))
	server.Object().Put("listen", listen)

	root.Object().Put("server", server)
	return root
}

func TestLookupObjectField(t *testing.T) {
	got, err := Lookup(buildTree(), "server.port")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	n, ok := got.(int64)
	if !ok || n != 8080 {
		t.Fatalf("got %v (%T), want int64(8080)", got, got)
	}
}

func TestLookupArrayIndex(t *testing.T) {
	got, err := Lookup(buildTree(), "server.listen.1")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got != "::1" {
		t.Fatalf("got %v, want \"::1\"", got)
	}
}

func TestLookupNotFound(t *testing.T) {
	if _, err := Lookup(buildTree(), "server.missing"); err == nil {
		t.Fatal("expected ErrNotFound")
	}
}

func TestLookupEmptyPath(t *testing.T) {
	if _, err := Lookup(buildTree(), ""); err == nil {
		t.Fatal("expected ErrInvalidPath for empty path")
	}
}

func TestLookupEmptySegment(t *testing.T) {
	if _, err := Lookup(buildTree(), "server..port"); err == nil {
		t.Fatal("expected ErrInvalidPath for empty segment")
	}
}
