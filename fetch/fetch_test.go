package fetch

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestFetchLocalFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "child.conf")
	if err := os.WriteFile(path, []byte("key = 1"), 0o644); err != nil {
		t.Fatal(err)
	}

	f := New(dir, 0)
	data, err := f.Fetch("child.conf")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(data) != "key = 1" {
		t.Fatalf("data = %q, want %q", data, "key = 1")
	}
}

func TestFetchLocalFileMissing(t *testing.T) {
	f := New(t.TempDir(), 0)
	if _, err := f.Fetch("missing.conf"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestFetchHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("remote = 1"))
	}))
	defer srv.Close()

	f := New("", 0)
	data, err := f.Fetch(srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(data) != "remote = 1" {
		t.Fatalf("data = %q, want %q", data, "remote = 1")
	}
}

func TestFetchHTTPNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := New("", 0)
	if _, err := f.Fetch(srv.URL); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestSetRateLimit(t *testing.T) {
	f := New("", 0)
	f.SetRateLimit(5)
	f.SetRateLimit(0)
}
