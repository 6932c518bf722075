package lex

import (
	"testing"

	"github.com/jacoelho/ucl/internal/chunk"
	"github.com/jacoelho/ucl/value"
)

func lexNumber(t *testing.T, input string) *value.Value {
	t.Helper()
	c := chunk.New([]byte(input), 0, "test")
	v, ok, err := Number(c, false)
	if err != nil {
		t.Fatalf("Number(%q) error: %v", input, err)
	}
	if !ok {
		t.Fatalf("Number(%q) did not parse as a number", input)
	}
	return v
}

func TestNumber_Suffixes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		wantKind value.Kind
		wantNum  float64
	}{
		{"10k", value.KindInt, 10000},
		{"10kb", value.KindInt, 10240},
		{"10min", value.KindTime, 600.0},
		{"0.2s", value.KindTime, 0.2},
		{"10ms", value.KindTime, 0.01},
		{"1h", value.KindTime, 3600},
		{"2d", value.KindTime, 172800},
		{"1w", value.KindTime, 604800},
		{"1y", value.KindTime, 31536000},
		{"1mb", value.KindInt, 1048576},
		{"42", value.KindInt, 42},
		{"3.14", value.KindFloat, 3.14},
		{"-5", value.KindInt, -5},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			v := lexNumber(t, tt.input+";")
			if v.Kind() != tt.wantKind {
				t.Fatalf("Kind() = %v, want %v", v.Kind(), tt.wantKind)
			}
			got, _ := v.AsNumber()
			if got != tt.wantNum {
				t.Fatalf("value = %v, want %v", got, tt.wantNum)
			}
		})
	}
}

func TestNumber_NoTimeDisablesTimeSuffixes(t *testing.T) {
	t.Parallel()

	c := chunk.New([]byte("10s;"), 0, "test")
	_, ok, err := Number(c, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("NoTime should reject a time-suffixed literal")
	}
	if c.Cursor != 0 {
		t.Fatalf("cursor should be restored to 0 on rewind, got %d", c.Cursor)
	}
}

func TestNumber_UnrecognizedSuffixRewinds(t *testing.T) {
	t.Parallel()

	c := chunk.New([]byte("10xyz"), 0, "test")
	_, ok, err := Number(c, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected rewind for unrecognized non-terminating suffix")
	}
	if c.Cursor != 0 {
		t.Fatalf("cursor should be restored, got %d", c.Cursor)
	}
}

func TestNumber_OutOfRange(t *testing.T) {
	t.Parallel()

	c := chunk.New([]byte("999999999999999999999999999999;"), 0, "test")
	_, ok, err := Number(c, false)
	if err == nil {
		t.Fatal("expected out-of-range error")
	}
	if ok {
		t.Fatal("ok should be false on error")
	}
}

func TestQuotedString_Escapes(t *testing.T) {
	t.Parallel()

	c := chunk.New([]byte(`"hello\nworldA"`), 0, "test")
	v, err := QuotedString(c, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "hello\nworldA"; v.String() != want {
		t.Fatalf("String() = %q, want %q", v.String(), want)
	}
}

func TestQuotedString_InvalidControlByte(t *testing.T) {
	t.Parallel()

	c := chunk.New([]byte("\"a\x01b\""), 0, "test")
	if _, err := QuotedString(c, false); err == nil {
		t.Fatal("expected error for raw control byte")
	}
}

func TestUnquotedString_BalancedBraces(t *testing.T) {
	t.Parallel()

	c := chunk.New([]byte("foo{bar}baz,"), 0, "test")
	v := UnquotedString(c, false)
	if v.String() != "foo{bar}baz" {
		t.Fatalf("String() = %q, want %q", v.String(), "foo{bar}baz")
	}
}

func TestUnquotedString_TrimsWhitespace(t *testing.T) {
	t.Parallel()

	c := chunk.New([]byte("  hello world  ,"), 0, "test")
	v := UnquotedString(c, false)
	if v.String() != "hello world" {
		t.Fatalf("String() = %q, want %q", v.String(), "hello world")
	}
}

func TestRecognizeBool(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  bool
	}{
		{"true", true}, {"YES", true}, {"On", true},
		{"false", false}, {"NO", false}, {"off", false},
	}
	for _, tt := range tests {
		v := RecognizeBool(value.NewString(tt.input))
		if v.Kind() != value.KindBool || v.Bool() != tt.want {
			t.Errorf("RecognizeBool(%q) = %v %v, want Bool %v", tt.input, v.Kind(), v.Bool(), tt.want)
		}
	}

	notBool := RecognizeBool(value.NewString("maybe"))
	if notBool.Kind() != value.KindString {
		t.Errorf("RecognizeBool(maybe) should stay a string, got %v", notBool.Kind())
	}
}

func TestHeredoc(t *testing.T) {
	t.Parallel()

	c := chunk.New([]byte("<<EOF\nline one\nline two\nEOF\n"), 0, "test")
	v, err := Heredoc(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "line one\nline two\n"; v.String() != want {
		t.Fatalf("String() = %q, want %q", v.String(), want)
	}
	if !v.HasFlag(value.FlagMultiline) {
		t.Fatal("heredoc value should carry FlagMultiline")
	}
}

func TestHeredoc_LowercaseTagRejected(t *testing.T) {
	t.Parallel()

	c := chunk.New([]byte("<<eof\nbody\neof\n"), 0, "test")
	if _, err := Heredoc(c); err == nil {
		t.Fatal("expected error for lowercase heredoc tag")
	}
}

func TestHeredoc_Unterminated(t *testing.T) {
	t.Parallel()

	c := chunk.New([]byte("<<EOF\nbody\n"), 0, "test")
	if _, err := Heredoc(c); err == nil {
		t.Fatal("expected error for unterminated heredoc")
	}
}

func TestQuotedString_ZeroCopyBorrowsWhenUnescaped(t *testing.T) {
	t.Parallel()

	c := chunk.New([]byte(`"hello world"`), 0, "test")
	v, err := QuotedString(c, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.HasFlag(value.FlagValueAllocated) {
		t.Fatal("zero-copy quoted string should not carry FlagValueAllocated")
	}
	if v.String() != "hello world" {
		t.Fatalf("String() = %q, want %q", v.String(), "hello world")
	}
}

func TestQuotedString_ZeroCopyStillCopiesWhenEscaped(t *testing.T) {
	t.Parallel()

	c := chunk.New([]byte(`"hello\nworld"`), 0, "test")
	v, err := QuotedString(c, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.HasFlag(value.FlagValueAllocated) {
		t.Fatal("escaped quoted string must still be owned, even under ZeroCopy")
	}
	if v.String() != "hello\nworld" {
		t.Fatalf("String() = %q, want %q", v.String(), "hello\nworld")
	}
}

func TestUnquotedString_ZeroCopyBorrows(t *testing.T) {
	t.Parallel()

	c := chunk.New([]byte("  hello world  ,"), 0, "test")
	v := UnquotedString(c, true)
	if v.HasFlag(value.FlagValueAllocated) {
		t.Fatal("zero-copy unquoted string should not carry FlagValueAllocated")
	}
	if v.String() != "hello world" {
		t.Fatalf("String() = %q, want %q", v.String(), "hello world")
	}
}
