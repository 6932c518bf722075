// Package chunk implements the byte-cursor tracking the parser reads
// through, including a depth-limited stack of nested chunks. The parser
// pushes one chunk per AddChunk call; .include content is parsed by a
// separate sub-parser and is not pushed onto this stack.
package chunk

import "github.com/jacoelho/ucl/internal/stack"

// MaxDepth is the maximum number of nested chunks (include depth), spec
// §4.3 / §5.
const MaxDepth = 16

// Chunk is a contiguous byte range being parsed, with its own cursor and
// line/column tracking.
type Chunk struct {
	Data     []byte
	Begin    int
	End      int
	Cursor   int
	Line     int
	Column   int
	Priority uint8
	Filename string
}

// New creates a chunk over data starting at line 1, column 0.
func New(data []byte, priority uint8, filename string) *Chunk {
	return &Chunk{
		Data:     data,
		Begin:    0,
		End:      len(data),
		Cursor:   0,
		Line:     1,
		Column:   0,
		Priority: priority,
		Filename: filename,
	}
}

// Remaining reports how many bytes are left in the chunk.
func (c *Chunk) Remaining() int { return c.End - c.Cursor }

// AtEOF reports whether the chunk is fully consumed.
func (c *Chunk) AtEOF() bool { return c.Cursor >= c.End }

// Peek returns the byte at the cursor without advancing, and whether one
// was available.
func (c *Chunk) Peek() (byte, bool) {
	if c.AtEOF() {
		return 0, false
	}
	return c.Data[c.Cursor], true
}

// PeekAt returns the byte offset bytes ahead of the cursor.
func (c *Chunk) PeekAt(offset int) (byte, bool) {
	idx := c.Cursor + offset
	if idx < c.Begin || idx >= c.End {
		return 0, false
	}
	return c.Data[idx], true
}

// Advance moves the cursor forward by one byte, updating line/column.
func (c *Chunk) Advance() {
	if c.AtEOF() {
		return
	}
	if c.Data[c.Cursor] == '\n' {
		c.Line++
		c.Column = 0
	} else {
		c.Column++
	}
	c.Cursor++
}

// AdvanceN advances the cursor by n bytes.
func (c *Chunk) AdvanceN(n int) {
	for i := 0; i < n; i++ {
		c.Advance()
	}
}

// Slice returns the bytes between from and the current cursor.
func (c *Chunk) Slice(from int) []byte {
	return c.Data[from:c.Cursor]
}

// Reader is a stack of chunks; the top of the stack is the chunk currently
// being consumed. Exhausting a chunk pops it so reading resumes in the
// chunk below at its saved cursor, which splices a pushed chunk's bytes in
// place.
type Reader struct {
	chunks *stack.Stack[*Chunk]
}

// NewReader returns an empty chunk reader.
func NewReader() *Reader {
	return &Reader{chunks: stack.New[*Chunk]()}
}

// Push adds a new chunk on top, enforcing the include nesting limit.
func (r *Reader) Push(c *Chunk) error {
	if r.chunks.Size() >= MaxDepth {
		return ErrRecursionTooDeep
	}
	r.chunks.Push(c)
	return nil
}

// Current returns the top-of-stack chunk, or nil if the reader is empty.
func (r *Reader) Current() *Chunk {
	c, ok := r.chunks.Peek()
	if !ok {
		return nil
	}
	return c
}

// Depth returns the number of chunks currently on the stack.
func (r *Reader) Depth() int { return r.chunks.Size() }

// Advance moves forward one byte in the current chunk, popping exhausted
// chunks (possibly more than one, if nested chunks are each empty) until
// a chunk with remaining bytes is on top, or the stack empties.
func (r *Reader) Advance() {
	cur := r.Current()
	if cur == nil {
		return
	}
	cur.Advance()
	r.popExhausted()
}

// popExhausted pops chunks that have no bytes left.
func (r *Reader) popExhausted() {
	for {
		cur := r.Current()
		if cur == nil || !cur.AtEOF() {
			return
		}
		r.chunks.Pop()
	}
}

// Peek returns the next byte to be consumed across the chunk stack
// (popping exhausted chunks first) and whether the whole stack is
// exhausted.
func (r *Reader) Peek() (byte, bool) {
	r.popExhausted()
	cur := r.Current()
	if cur == nil {
		return 0, false
	}
	return cur.Peek()
}

// AtEOF reports whether every chunk on the stack is exhausted.
func (r *Reader) AtEOF() bool {
	r.popExhausted()
	return r.Current() == nil
}
