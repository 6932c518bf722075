package lex

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/jacoelho/ucl/internal/chartab"
	"github.com/jacoelho/ucl/internal/chunk"
	"github.com/jacoelho/ucl/internal/errcode"
	"github.com/jacoelho/ucl/value"
)

// QuotedString lexes a JSON-style quoted string starting at c's cursor
// (the opening '"' must be the current byte). A string with no escape
// sequences needs no rewriting; when zeroCopy is set, that common case
// returns a Value borrowing straight from c's backing buffer instead of
// copying it (spec §4.6's ZeroCopy flag). Escapes still force an owned
// copy, since turning `\n` into a newline byte rewrites the content.
func QuotedString(c *chunk.Chunk, zeroCopy bool) (*value.Value, error) {
	startLine, startCol := c.Line, c.Column
	if b, has := c.Peek(); !has || b != '"' {
		return nil, errcode.Syntax(startLine, startCol, peekByte(c), "expected '\"'")
	}
	c.Advance()

	contentStart := c.Cursor
	var b strings.Builder
	building := false

	for {
		ch, has := c.Peek()
		if !has {
			return nil, errcode.Syntax(c.Line, c.Column, 0, "unterminated quoted string")
		}
		if ch == '"' {
			contentEnd := c.Cursor
			c.Advance()
			if !building {
				if zeroCopy {
					return value.NewStringBorrowed(c.Data[contentStart:contentEnd]), nil
				}
				return value.NewString(string(c.Data[contentStart:contentEnd])), nil
			}
			return value.NewString(b.String()), nil
		}
		if ch < 0x20 {
			return nil, errcode.Syntax(c.Line, c.Column, ch, "invalid control byte in quoted string")
		}
		if ch == '\\' {
			if !building {
				b.Write(c.Data[contentStart:c.Cursor])
				building = true
			}
			c.Advance()
			esc, has := c.Peek()
			if !has {
				return nil, errcode.Syntax(c.Line, c.Column, 0, "unterminated escape sequence")
			}
			if !chartab.Is(esc, chartab.Escape) {
				return nil, errcode.Syntax(c.Line, c.Column, esc, "invalid escape sequence")
			}
			switch esc {
			case '"', '\\', '/':
				b.WriteByte(esc)
				c.Advance()
			case 'b':
				b.WriteByte('\b')
				c.Advance()
			case 'f':
				b.WriteByte('\f')
				c.Advance()
			case 'n':
				b.WriteByte('\n')
				c.Advance()
			case 'r':
				b.WriteByte('\r')
				c.Advance()
			case 't':
				b.WriteByte('\t')
				c.Advance()
			case 'u':
				c.Advance()
				r, err := lexUnicodeEscape(c)
				if err != nil {
					return nil, err
				}
				b.WriteRune(r)
			}
			continue
		}
		if building {
			b.WriteByte(ch)
		}
		c.Advance()
	}
}

func lexUnicodeEscape(c *chunk.Chunk) (rune, error) {
	var cp rune
	for i := 0; i < 4; i++ {
		h, has := c.Peek()
		if !has {
			return 0, errcode.Syntax(c.Line, c.Column, 0, "truncated \\u escape")
		}
		digit, ok := hexDigit(h)
		if !ok {
			return 0, errcode.Syntax(c.Line, c.Column, h, "invalid hex digit in \\u escape")
		}
		cp = cp<<4 | rune(digit)
		c.Advance()
	}
	if cp == 0 {
		return utf8.RuneError, nil
	}
	return cp, nil
}

func hexDigit(b byte) (int, bool) {
	switch {
	case b >= '0' && b <= '9':
		return int(b - '0'), true
	case b >= 'a' && b <= 'f':
		return int(b-'a') + 10, true
	case b >= 'A' && b <= 'F':
		return int(b-'A') + 10, true
	default:
		return 0, false
	}
}

// UnquotedString captures bytes from the cursor up to the first value
// terminator or start-of-comment, with balanced {} and [] permitted
// inside, then strips leading/trailing whitespace. Spaces, tabs and
// carriage returns do not end the capture; a newline does. When zeroCopy is set,
// the result borrows straight from c's backing buffer instead of copying
// it (spec §4.6's ZeroCopy flag).
func UnquotedString(c *chunk.Chunk, zeroCopy bool) *value.Value {
	start := c.Cursor
	braceDepth, bracketDepth := 0, 0

	for {
		b, has := c.Peek()
		if !has {
			break
		}
		if braceDepth == 0 && bracketDepth == 0 {
			if chartab.Is(b, chartab.ValueEnd) && !chartab.Is(b, chartab.WhitespaceUnsafe) {
				break
			}
			if b == '#' {
				break
			}
			if b == '/' {
				if n, ok := c.PeekAt(1); ok && (n == '/' || n == '*') {
					break
				}
			}
		}
		switch b {
		case '{':
			braceDepth++
		case '}':
			if braceDepth > 0 {
				braceDepth--
			} else {
				goto done
			}
		case '[':
			bracketDepth++
		case ']':
			if bracketDepth > 0 {
				bracketDepth--
			} else {
				goto done
			}
		}
		c.Advance()
	}
done:
	trimmed := bytes.TrimSpace(c.Data[start:c.Cursor])
	if zeroCopy {
		return value.NewStringBorrowed(trimmed)
	}
	return value.NewString(string(trimmed))
}

// RecognizeBool retypes v to a Bool if its string payload case-insensitively
// matches true/false, yes/no, or on/off. It returns the
// possibly-retyped value.
func RecognizeBool(v *value.Value) *value.Value {
	if v.Kind() != value.KindString {
		return v
	}
	switch strings.ToLower(v.String()) {
	case "true", "yes", "on":
		return value.NewBool(true)
	case "false", "no", "off":
		return value.NewBool(false)
	default:
		return v
	}
}

// Heredoc lexes a <<TAG ... TAG multiline string. The cursor must be
// positioned at the first '<' of "<<TAG". TAG must be all-uppercase ASCII
// and content is taken verbatim until a line consisting of TAG followed by
// a newline, a carriage return, or the end of input.
func Heredoc(c *chunk.Chunk) (*value.Value, error) {
	startLine, startCol := c.Line, c.Column
	if !matchCaseSensitive(c, "<<") {
		return nil, errcode.Syntax(startLine, startCol, peekByte(c), "expected heredoc marker '<<'")
	}
	c.Advance()
	c.Advance()

	tagStart := c.Cursor
	for {
		b, has := c.Peek()
		if !has || b == '\n' || b == '\r' {
			break
		}
		if b < 'A' || b > 'Z' {
			return nil, errcode.Syntax(c.Line, c.Column, b, "heredoc tag must be uppercase ASCII")
		}
		c.Advance()
	}
	tag := string(c.Data[tagStart:c.Cursor])
	if tag == "" {
		return nil, errcode.Syntax(c.Line, c.Column, peekByte(c), "empty heredoc tag")
	}
	if b, has := c.Peek(); !has || b != '\n' {
		return nil, errcode.Syntax(c.Line, c.Column, peekByte(c), "expected newline after heredoc tag")
	}
	c.Advance()

	contentStart := c.Cursor
	for {
		lineStart := c.Cursor
		atLineStart := lineStart == contentStart || c.Data[lineStart-1] == '\n'
		if atLineStart && lineStart+len(tag) <= c.End && string(c.Data[lineStart:lineStart+len(tag)]) == tag {
			after := lineStart + len(tag)
			if after >= c.End || c.Data[after] == '\n' || c.Data[after] == '\r' {
				content := string(c.Data[contentStart:lineStart])
				c.AdvanceN(len(tag))
				v := value.NewString(content)
				v.SetFlags(value.FlagMultiline)
				return v, nil
			}
		}
		if _, has := c.Peek(); !has {
			return nil, errcode.Syntax(startLine, startCol, 0, "unterminated heredoc %q", tag)
		}
		c.Advance()
	}
}

func matchCaseSensitive(c *chunk.Chunk, text string) bool {
	for i := 0; i < len(text); i++ {
		b, has := c.PeekAt(i)
		if !has || b != text[i] {
			return false
		}
	}
	return true
}

func peekByte(c *chunk.Chunk) byte {
	b, _ := c.Peek()
	return b
}
