package chartab

import "testing"

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		b    byte
		cl   Class
		want bool
	}{
		{"space is whitespace", ' ', Whitespace, true},
		{"newline is whitespace", '\n', Whitespace, true},
		{"newline is not whitespace-unsafe", '\n', WhitespaceUnsafe, false},
		{"space is whitespace-unsafe", ' ', WhitespaceUnsafe, true},
		{"comma is value-end", ',', ValueEnd, true},
		{"digit is digit-start", '5', DigitStart, true},
		{"minus is digit-start", '-', DigitStart, true},
		{"letter is not digit", 'a', Digit, false},
		{"letter is key-start", 'a', KeyStart, true},
		{"underscore is key-start", '_', KeyStart, true},
		{"digit is key-continue", '5', KeyContinue, true},
		{"digit is not key-start", '5', KeyStart, false},
		{"colon is key-sep", ':', KeySep, true},
		{"equals is key-sep", '=', KeySep, true},
		{"quote is json-unsafe", '"', JSONUnsafe, true},
		{"backslash is json-unsafe", '\\', JSONUnsafe, true},
		{"control byte is json-unsafe", 0x01, JSONUnsafe, true},
		{"printable is not json-unsafe", 'z', JSONUnsafe, false},
		{"n is escape", 'n', Escape, true},
		{"u is escape", 'u', Escape, true},
		{"x is not escape", 'x', Escape, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Is(tt.b, tt.cl); got != tt.want {
				t.Errorf("Is(%q, %v) = %v, want %v", tt.b, tt.cl, got, tt.want)
			}
		})
	}
}

func TestIsValueEnd(t *testing.T) {
	t.Parallel()

	if !IsValueEnd(0, true) {
		t.Error("EOF should be a value terminator")
	}
	if !IsValueEnd(']', false) {
		t.Error("] should be a value terminator")
	}
	if IsValueEnd('a', false) {
		t.Error("a should not be a value terminator")
	}
}
