package chunk

import "testing"

func TestChunk_AdvanceTracksLineColumn(t *testing.T) {
	t.Parallel()

	c := New([]byte("ab\ncd"), 0, "test")
	c.AdvanceN(2)
	if c.Line != 1 || c.Column != 2 {
		t.Fatalf("after 2 advances: line=%d col=%d, want 1,2", c.Line, c.Column)
	}
	c.Advance() // consumes '\n'
	if c.Line != 2 || c.Column != 0 {
		t.Fatalf("after newline: line=%d col=%d, want 2,0", c.Line, c.Column)
	}
}

func TestReader_PushRecursionLimit(t *testing.T) {
	t.Parallel()

	r := NewReader()
	for i := 0; i < MaxDepth; i++ {
		if err := r.Push(New([]byte("x"), 0, "f")); err != nil {
			t.Fatalf("Push #%d: unexpected error %v", i, err)
		}
	}
	if err := r.Push(New([]byte("x"), 0, "f")); err == nil {
		t.Fatal("expected Push to fail once MaxDepth is exceeded")
	}
}

func TestReader_PopsExhaustedChunksAndSplicesInPlace(t *testing.T) {
	t.Parallel()

	r := NewReader()
	outer := New([]byte("ab"), 0, "outer")
	if err := r.Push(outer); err != nil {
		t.Fatal(err)
	}

	r.Advance() // consume 'a', cursor now at 'b'
	inner := New([]byte("XY"), 0, "inner")
	if err := r.Push(inner); err != nil {
		t.Fatal(err)
	}

	var seen []byte
	for !r.AtEOF() {
		b, ok := r.Peek()
		if !ok {
			break
		}
		seen = append(seen, b)
		r.Advance()
	}

	if string(seen) != "XYb" {
		t.Fatalf("spliced sequence = %q, want %q", seen, "XYb")
	}
}
