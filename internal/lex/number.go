// Package lex implements the number, string, heredoc, and boolean lexing
// primitives the parser state machine calls into.
package lex

import (
	"strconv"

	"github.com/jacoelho/ucl/internal/chartab"
	"github.com/jacoelho/ucl/internal/chunk"
	"github.com/jacoelho/ucl/internal/errcode"
	"github.com/jacoelho/ucl/value"
)

type suffixKind int

const (
	suffixNone suffixKind = iota
	suffixMillis
	suffixBytesK
	suffixBytesM
	suffixBytesG
	suffixUnitK
	suffixUnitM
	suffixUnitG
	suffixSeconds
	suffixHours
	suffixDays
	suffixWeeks
	suffixYears
	suffixMinutes
)

// multiByteSuffixes lists suffixes that must be matched before any
// single-byte suffix, longest-match-first, so "min" is not swallowed by a
// lone "m" and "ms"/"kb" are not swallowed by "m"/"k".
var multiByteSuffixes = []struct {
	text string
	kind suffixKind
}{
	{"ms", suffixMillis},
	{"kb", suffixBytesK},
	{"mb", suffixBytesM},
	{"gb", suffixBytesG},
	{"min", suffixMinutes},
}

var singleByteSuffixes = map[byte]suffixKind{
	'k': suffixUnitK, 'K': suffixUnitK,
	'm': suffixUnitM, 'M': suffixUnitM,
	'g': suffixUnitG, 'G': suffixUnitG,
	's': suffixSeconds, 'S': suffixSeconds,
	'h': suffixHours, 'H': suffixHours,
	'd': suffixDays, 'D': suffixDays,
	'w': suffixWeeks, 'W': suffixWeeks,
	'y': suffixYears, 'Y': suffixYears,
}

func isTimeSuffix(k suffixKind) bool {
	switch k {
	case suffixMillis, suffixSeconds, suffixHours, suffixDays, suffixWeeks, suffixYears, suffixMinutes:
		return true
	default:
		return false
	}
}

type cursorMark struct {
	cursor, line, column int
}

func mark(c *chunk.Chunk) cursorMark {
	return cursorMark{c.Cursor, c.Line, c.Column}
}

func (m cursorMark) restore(c *chunk.Chunk) {
	c.Cursor, c.Line, c.Column = m.cursor, m.line, m.column
}

// Number attempts to lex a numeric literal (with optional suffix) at c's
// cursor. ok is false if the bytes at the cursor do not form a number at
// all, or form one followed by an unrecognized, non-terminating suffix —
// in both cases the cursor is restored so the caller can fall back to
// unquoted-string lexing.
func Number(c *chunk.Chunk, noTime bool) (v *value.Value, ok bool, err error) {
	start := mark(c)

	if b, has := c.Peek(); !has || !chartab.Is(b, chartab.DigitStart) {
		return nil, false, nil
	}

	mantissaStart := c.Cursor
	if b, has := c.Peek(); has && b == '-' {
		c.Advance()
	}

	digitsStart := c.Cursor
	for {
		b, has := c.Peek()
		if !has || !chartab.Is(b, chartab.Digit) {
			break
		}
		c.Advance()
	}
	if c.Cursor == digitsStart {
		start.restore(c)
		return nil, false, nil
	}

	isFloat := false
	if b, has := c.Peek(); has && b == '.' {
		save := mark(c)
		c.Advance()
		fracStart := c.Cursor
		for {
			b, has := c.Peek()
			if !has || !chartab.Is(b, chartab.Digit) {
				break
			}
			c.Advance()
		}
		if c.Cursor == fracStart {
			save.restore(c)
		} else {
			isFloat = true
		}
	}

	if b, has := c.Peek(); has && (b == 'e' || b == 'E') {
		save := mark(c)
		c.Advance()
		if b, has := c.Peek(); has && (b == '+' || b == '-') {
			c.Advance()
		}
		expStart := c.Cursor
		for {
			b, has := c.Peek()
			if !has || !chartab.Is(b, chartab.Digit) {
				break
			}
			c.Advance()
		}
		if c.Cursor == expStart {
			save.restore(c)
		} else {
			isFloat = true
		}
	}

	literal := string(c.Data[mantissaStart:c.Cursor])

	kind, _ := matchSuffix(c)
	if kind != suffixNone && noTime && isTimeSuffix(kind) {
		// NoTime: treat suffix as ordinary string content, not a number.
		start.restore(c)
		return nil, false, nil
	}

	if kind == suffixNone {
		b, has := c.Peek()
		if !chartab.IsValueEnd(b, !has) {
			start.restore(c)
			return nil, false, nil
		}
		return buildPlain(literal, isFloat, start, c)
	}

	b, has := c.Peek()
	if !chartab.IsValueEnd(b, !has) {
		start.restore(c)
		return nil, false, nil
	}

	return buildSuffixed(literal, isFloat, kind, start, c)
}

func matchSuffix(c *chunk.Chunk) (suffixKind, bool) {
	for _, s := range multiByteSuffixes {
		if matchCaseInsensitive(c, s.text) {
			for range s.text {
				c.Advance()
			}
			return s.kind, true
		}
	}
	if b, has := c.Peek(); has {
		if kind, found := singleByteSuffixes[b]; found {
			c.Advance()
			return kind, true
		}
	}
	return suffixNone, false
}

func matchCaseInsensitive(c *chunk.Chunk, text string) bool {
	for i := 0; i < len(text); i++ {
		b, has := c.PeekAt(i)
		if !has || lower(b) != lower(text[i]) {
			return false
		}
	}
	return true
}

func lower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}

func buildPlain(literal string, isFloat bool, start cursorMark, c *chunk.Chunk) (*value.Value, bool, error) {
	if isFloat {
		f, err := strconv.ParseFloat(literal, 64)
		if err != nil {
			return rangeErrorOrRestore(err, start, c)
		}
		return value.NewFloat(f), true, nil
	}
	i, err := strconv.ParseInt(literal, 10, 64)
	if err != nil {
		return rangeErrorOrRestore(err, start, c)
	}
	return value.NewInt(i), true, nil
}

func buildSuffixed(literal string, isFloat bool, kind suffixKind, start cursorMark, c *chunk.Chunk) (*value.Value, bool, error) {
	base, err := strconv.ParseFloat(literal, 64)
	if err != nil {
		return rangeErrorOrRestore(err, start, c)
	}

	switch kind {
	case suffixMillis:
		return value.NewTime(base * 0.001), true, nil
	case suffixBytesK:
		return value.NewInt(int64(base * 1024)), true, nil
	case suffixBytesM:
		return value.NewInt(int64(base * 1024 * 1024)), true, nil
	case suffixBytesG:
		return value.NewInt(int64(base * 1024 * 1024 * 1024)), true, nil
	case suffixUnitK:
		return unitResult(base, isFloat, 1000), true, nil
	case suffixUnitM:
		return unitResult(base, isFloat, 1000*1000), true, nil
	case suffixUnitG:
		return unitResult(base, isFloat, 1000*1000*1000), true, nil
	case suffixSeconds:
		return value.NewTime(base), true, nil
	case suffixHours:
		return value.NewTime(base * 3600), true, nil
	case suffixDays:
		return value.NewTime(base * 86400), true, nil
	case suffixWeeks:
		return value.NewTime(base * 604800), true, nil
	case suffixYears:
		return value.NewTime(base * 31536000), true, nil
	case suffixMinutes:
		return value.NewTime(base * 60), true, nil
	default:
		return nil, false, errcode.Internal("unreachable suffix kind %d", kind)
	}
}

func unitResult(base float64, isFloat bool, multiplier float64) *value.Value {
	result := base * multiplier
	if !isFloat && result == float64(int64(result)) {
		return value.NewInt(int64(result))
	}
	return value.NewFloat(result)
}

func rangeErrorOrRestore(err error, start cursorMark, c *chunk.Chunk) (*value.Value, bool, error) {
	if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
		return nil, false, errcode.Syntax(start.line, start.column, 0, "numeric value out of range")
	}
	start.restore(c)
	return nil, false, nil
}
