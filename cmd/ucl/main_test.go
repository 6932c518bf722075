package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDocumentAndProcessFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "input.conf")
	if err := os.WriteFile(in, []byte(`name = "example"; port = 8080;`), 0o644); err != nil {
		t.Fatal(err)
	}

	doc, err := loadDocument(in, false, false, 0)
	if err != nil {
		t.Fatalf("loadDocument: %v", err)
	}
	if doc.Object().Get("name").String() != "example" {
		t.Fatalf("name = %v, want \"example\"", doc.Object().Get("name"))
	}
}

func TestWriteAtomicProducesFinalFile(t *testing.T) {
	dir := t.TempDir()
	if err := writeAtomic(dir, "input.conf", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("writeAtomic: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "input.conf"))
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if string(data) != `{"a":1}` {
		t.Fatalf("data = %q", data)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the final file to remain, got %d entries", len(entries))
	}
}
