// Package parser implements the tolerant streaming UCL parser: the state
// machine, chunk stack, and macro/variable engine.
package parser

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jacoelho/ucl/internal/chartab"
	"github.com/jacoelho/ucl/internal/chunk"
	"github.com/jacoelho/ucl/internal/errcode"
	"github.com/jacoelho/ucl/internal/lex"
	"github.com/jacoelho/ucl/internal/stack"
	"github.com/jacoelho/ucl/value"
)

// Flags configure parser behavior.
type Flags uint8

const (
	// KeyLowercase lowercases every key at insertion time.
	KeyLowercase Flags = 1 << iota
	// ZeroCopy borrows string slices from the input instead of copying.
	ZeroCopy
	// NoTime disables time suffixes; they are treated as unquoted string
	// content instead.
	NoTime
)

type state int

const (
	stateInit state = iota
	stateKey
	stateValue
	stateAfterValue
	stateMacroName
	stateError
	stateDone
)

type frame struct {
	container *value.Value
	explicit  bool // true if opened by '{' or '[' and requires a matching close
	pendingKey string
	hasKey     bool
}

// Parser is a single-use, single-threaded UCL parser instance: all calls
// on a given Parser must come from one goroutine.
type Parser struct {
	flags   Flags
	reader  *chunk.Reader
	frames  *stack.Stack[*frame]
	root    *value.Value
	// working holds the top-level value under construction for the chunk
	// currently being parsed, until commitWorking folds it into root.
	working *value.Value
	state   state
	err     error
	mode    value.MergeMode

	macros    map[string]MacroHandler
	variables map[string]string
	varsFn    VariablesHandler
	includes  *includeConfig

	// includeDepth counts nested .include/.includes expansions, since each
	// one parses its content with a fresh sub-Parser (and thus a fresh
	// chunk.Reader whose own depth counter never sees the outer nesting).
	// Propagated to sub-parsers in pushInclude and capped at
	// chunk.MaxDepth, matching the include-nesting limit in spec §4.3.
	includeDepth int

	filename string
	curdir   string
}

// MacroHandler processes a .name macro invocation. body is the raw macro
// body bytes; returning an error aborts the parse at the macro site.
type MacroHandler func(p *Parser, name string, body []byte) error

// VariablesHandler resolves an unregistered ${NAME} reference. ok is false
// to leave the reference as a literal.
type VariablesHandler func(name string) (value string, ok bool)

// New creates a parser with the given flags and registers the built-in
// .include/.includes macros.
func New(flags Flags) *Parser {
	p := &Parser{
		flags:     flags,
		reader:    chunk.NewReader(),
		frames:    stack.New[*frame](),
		macros:    make(map[string]MacroHandler),
		variables: make(map[string]string),
		mode:      value.MergePriority,
	}
	registerBuiltinMacros(p)
	return p
}

// RegisterMacro registers a handler for .name macro invocations.
func (p *Parser) RegisterMacro(name string, handler MacroHandler) {
	p.macros[name] = handler
}

// RegisterVariable registers a literal substitution for ${name}.
func (p *Parser) RegisterVariable(name, val string) {
	p.variables[name] = val
}

// SetVariablesHandler installs the fallback resolver for unregistered
// ${NAME} references.
func (p *Parser) SetVariablesHandler(fn VariablesHandler) {
	p.varsFn = fn
}

// SetFileVars sets the FILENAME and CURDIR built-in variables.
func (p *Parser) SetFileVars(filename string, expand bool) {
	p.filename = filename
	if !expand {
		return
	}
	p.variables["FILENAME"] = filename
	if idx := strings.LastIndexAny(filename, "/\\"); idx >= 0 {
		p.curdir = filename[:idx]
	} else {
		p.curdir = "."
	}
	p.variables["CURDIR"] = p.curdir
}

// GetError returns the parser's current error, if the parser transitioned
// to the Error state.
func (p *Parser) GetError() error { return p.err }

// SetMergeMode selects the policy MergeFrom uses when .include content
// collides with existing keys.
func (p *Parser) SetMergeMode(mode value.MergeMode) { p.mode = mode }

// AddChunk adds a byte buffer for parsing at the given include priority.
// ok is false (with GetError populated) on failure.
func (p *Parser) AddChunk(data []byte, priority uint8) bool {
	if p.state == stateError {
		p.err = errcode.ErrState
		return false
	}
	if err := p.reader.Push(chunk.New(data, priority, p.filename)); err != nil {
		p.fail(err)
		return false
	}
	if err := p.run(); err != nil {
		p.fail(err)
		return false
	}
	return true
}

// AddString is a convenience wrapper over AddChunk for string input.
func (p *Parser) AddString(s string, priority uint8) bool {
	return p.AddChunk([]byte(s), priority)
}

// AddFile reads path in full and adds it as a chunk at the given priority,
// mirroring ucl_parser_add_file. It does not set FILENAME/CURDIR; call
// SetFileVars first if those variables are needed. ok is false (with
// GetError populated) if the file cannot be read or fails to parse.
func (p *Parser) AddFile(path string, priority uint8) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		p.fail(fmt.Errorf("reading %s: %w", path, err))
		return false
	}
	return p.AddChunk(data, priority)
}

// AddFd reads r to completion and adds it as a chunk at the given
// priority, for callers holding an already-open file or other io.Reader
// (e.g. os.Stdin), mirroring ucl_parser_add_fd.
func (p *Parser) AddFd(r io.Reader, priority uint8) bool {
	data, err := io.ReadAll(r)
	if err != nil {
		p.fail(fmt.Errorf("reading input: %w", err))
		return false
	}
	return p.AddChunk(data, priority)
}

func (p *Parser) fail(err error) {
	p.err = err
	p.state = stateError
}

// GetObject returns the parsed root value with an added reference, or nil
// if no value has been parsed or the parser is in the Error state.
func (p *Parser) GetObject() *value.Value {
	if p.state == stateError || p.root == nil {
		return nil
	}
	return p.root.Ref()
}

func (p *Parser) currentChunk() *chunk.Chunk {
	return p.reader.Current()
}

func (p *Parser) peek() (byte, bool) {
	return p.reader.Peek()
}

func (p *Parser) advance() {
	p.reader.Advance()
}

// run drives the state machine until the chunk stack it was just handed is
// exhausted at the top level, or an error/terminal state is reached.
func (p *Parser) run() error {
	if p.state == stateDone {
		// A previous AddChunk already committed its top-level value into
		// root (see commitWorking); this chunk starts a fresh one, merged
		// into root once it completes.
		p.state = stateInit
	}

	for {
		if p.reader.AtEOF() {
			return p.handleTopLevelEOF()
		}

		switch p.state {
		case stateInit:
			if err := p.stepInit(); err != nil {
				return err
			}
		case stateKey:
			if err := p.stepKey(); err != nil {
				return err
			}
		case stateValue:
			if err := p.stepValue(); err != nil {
				return err
			}
		case stateAfterValue:
			if err := p.stepAfterValue(); err != nil {
				return err
			}
		case stateMacroName:
			if err := p.stepMacroName(); err != nil {
				return err
			}
		case stateDone:
			return nil
		}
	}
}

func (p *Parser) handleTopLevelEOF() error {
	for {
		f, ok := p.frames.Peek()
		if !ok {
			break
		}
		if f.explicit {
			return errcode.Syntax(0, 0, 0, "unexpected end of input: unterminated %s", f.container.Kind())
		}
		p.frames.Pop()
	}
	return p.finishTopLevel()
}

func (p *Parser) pushRootFrame() {
	obj := value.NewObject(false)
	p.working = obj
	p.frames.Push(&frame{container: obj, explicit: false})
}

// commitWorking folds the value just completed for the current chunk into
// p.root: the first chunk's value becomes the root outright, and every
// later chunk's value is merged into the existing root the same way
// pushInclude merges .include content into its parent container, so
// repeated AddChunk/AddString calls behave like successive includes rather
// than discarding everything parsed so far.
func (p *Parser) commitWorking() error {
	w := p.working
	p.working = nil
	if w == nil {
		return nil
	}
	if p.root == nil {
		p.root = w
		return nil
	}
	defer value.Unref(w)
	switch p.root.Kind() {
	case value.KindObject:
		if w.Kind() != value.KindObject {
			return errcode.Macro("chunk top-level value is not an object, cannot merge into existing root")
		}
		p.root.Object().MergeFrom(w.Object(), p.mode)
	case value.KindArray:
		if w.Kind() == value.KindArray {
			for _, child := range w.Array() {
				p.root.AppendElement(child.Ref())
			}
		} else {
			p.root.AppendElement(w.Ref())
		}
	default:
		return errcode.Macro("cannot merge additional chunk into a scalar root")
	}
	return nil
}

// finishTopLevel commits the chunk's working value into root and marks the
// parser done; further AddChunk/AddString calls resume at stateInit.
func (p *Parser) finishTopLevel() error {
	if err := p.commitWorking(); err != nil {
		return err
	}
	p.state = stateDone
	return nil
}

func (p *Parser) stepInit() error {
	if err := p.skipTrivia(); err != nil {
		return err
	}
	b, has := p.peek()
	if !has {
		p.pushRootFrame()
		return p.finishTopLevel()
	}

	switch b {
	case '[':
		arr := value.NewArray()
		p.working = arr
		p.advance()
		p.frames.Push(&frame{container: arr, explicit: true})
		p.state = stateValue
	case '{':
		obj := value.NewObject(false)
		p.working = obj
		p.advance()
		p.frames.Push(&frame{container: obj, explicit: true})
		p.state = stateKey
	default:
		p.pushRootFrame()
		p.state = stateKey
	}
	return nil
}

func (p *Parser) topFrame() *frame {
	f, _ := p.frames.Peek()
	return f
}

func (p *Parser) stepKey() error {
	f := p.topFrame()
	if f == nil {
		return p.finishTopLevel()
	}

	if err := p.skipTrivia(); err != nil {
		return err
	}
	b, has := p.peek()
	if !has {
		return nil // top-level EOF handled by run()
	}

	if b == '}' {
		return p.closeContainer(f, '}')
	}
	if b == '.' {
		p.advance()
		p.state = stateMacroName
		return nil
	}

	key, err := p.lexKey()
	if err != nil {
		return err
	}
	if p.flags&KeyLowercase != 0 {
		key = strings.ToLower(key)
	}

	p.skipKeySeparator()
	f.pendingKey = key
	f.hasKey = true
	p.state = stateValue
	return nil
}

func (p *Parser) lexKey() (string, error) {
	c := p.currentChunk()
	b, _ := p.peek()
	if b == '"' {
		v, err := lex.QuotedString(c, p.flags&ZeroCopy != 0)
		if err != nil {
			return "", err
		}
		return v.String(), nil
	}
	if !chartab.Is(b, chartab.KeyStart) {
		return "", errcode.Syntax(c.Line, c.Column, b, "expected key")
	}
	start := c.Cursor
	for {
		b, has := p.peek()
		if !has || !chartab.Is(b, chartab.KeyContinue) {
			break
		}
		p.advance()
	}
	return string(c.Data[start:c.Cursor]), nil
}

func (p *Parser) skipKeySeparator() {
	p.skipWhitespaceUnsafe()
	if b, has := p.peek(); has && chartab.Is(b, chartab.KeySep) {
		p.advance()
	}
	p.skipWhitespaceUnsafe()
}

func (p *Parser) stepValue() error {
	f := p.topFrame()
	if f == nil {
		return p.finishTopLevel()
	}

	if err := p.skipTrivia(); err != nil {
		return err
	}
	c := p.currentChunk()
	b, has := p.peek()
	if !has {
		return nil
	}

	switch {
	case b == '"':
		v, err := lex.QuotedString(c, p.flags&ZeroCopy != 0)
		if err != nil {
			return err
		}
		p.attach(f, p.expandVariables(v))
		p.state = stateAfterValue
	case b == '{':
		child := value.NewObject(false)
		p.attach(f, child)
		p.advance()
		p.frames.Push(&frame{container: child, explicit: true})
		p.state = stateKey
	case b == '[':
		child := value.NewArray()
		p.attach(f, child)
		p.advance()
		p.frames.Push(&frame{container: child, explicit: true})
		p.state = stateValue
	case b == ']':
		return p.closeContainer(f, ']')
	case b == '<' && peekSecond(c) == '<':
		v, err := lex.Heredoc(c)
		if err != nil {
			return err
		}
		p.attach(f, v)
		p.state = stateAfterValue
	case chartab.Is(b, chartab.DigitStart):
		v, ok, err := lex.Number(c, p.flags&NoTime != 0)
		if err != nil {
			return err
		}
		if !ok {
			v = p.lexUnquotedValue(c)
		}
		p.attach(f, v)
		p.state = stateAfterValue
	default:
		v := p.lexUnquotedValue(c)
		p.attach(f, v)
		p.state = stateAfterValue
	}
	return nil
}

func peekSecond(c *chunk.Chunk) byte {
	b, _ := c.PeekAt(1)
	return b
}

func (p *Parser) lexUnquotedValue(c *chunk.Chunk) *value.Value {
	v := lex.UnquotedString(c, p.flags&ZeroCopy != 0)
	v = p.expandVariables(v)
	return lex.RecognizeBool(v)
}

// attach stores v under f's current key (objects) or appends it (arrays),
// stamping it with the priority of the chunk it was parsed from so
// Object.MergeFrom can later arbitrate between colliding keys from chunks
// added at different priorities (spec §4.6).
func (p *Parser) attach(f *frame, v *value.Value) {
	v.SetPriority(p.currentChunk().Priority)
	switch f.container.Kind() {
	case value.KindObject:
		key := f.pendingKey
		f.hasKey = false
		f.pendingKey = ""
		f.container.Object().Put(key, v)
	case value.KindArray:
		f.container.AppendElement(v)
	}
}

func (p *Parser) closeContainer(f *frame, closer byte) error {
	want := byte('}')
	if f.container.Kind() == value.KindArray {
		want = ']'
	}
	if closer != want {
		c := p.currentChunk()
		return errcode.Syntax(c.Line, c.Column, closer, "mismatched closing %q for %s", closer, f.container.Kind())
	}
	if !f.explicit {
		c := p.currentChunk()
		return errcode.Syntax(c.Line, c.Column, closer, "unexpected %q: container was not explicitly opened", closer)
	}
	p.advance()
	p.frames.Pop()
	if p.frames.IsEmpty() {
		return p.finishTopLevel()
	}
	p.state = stateAfterValue
	return nil
}

func (p *Parser) stepAfterValue() error {
	f := p.topFrame()
	if f == nil {
		return p.finishTopLevel()
	}

	if err := p.skipTrivia(); err != nil {
		return err
	}
	b, has := p.peek()
	if !has {
		return nil
	}

	switch b {
	case ',', ';':
		p.advance()
		if err := p.skipTrivia(); err != nil {
			return err
		}
		return p.resumeAfterSeparator(f)
	case '}':
		return p.closeContainer(f, '}')
	case ']':
		return p.closeContainer(f, ']')
	default:
		return p.resumeAfterSeparator(f)
	}
}

func (p *Parser) resumeAfterSeparator(f *frame) error {
	b, has := p.peek()
	if !has {
		return nil
	}
	if b == '}' || b == ']' {
		return nil // let the next AfterValue pass close it (trailing separator)
	}
	switch f.container.Kind() {
	case value.KindObject:
		p.state = stateKey
	case value.KindArray:
		p.state = stateValue
	}
	return nil
}

func (p *Parser) stepMacroName() error {
	c := p.currentChunk()
	start := c.Cursor
	for {
		b, has := p.peek()
		if !has || !chartab.Is(b, chartab.KeyContinue) {
			break
		}
		p.advance()
	}
	name := string(c.Data[start:c.Cursor])
	if name == "" {
		return errcode.Macro("empty macro name")
	}

	handler, ok := p.macros[name]
	if !ok {
		return errcode.Macro("unknown macro %q", name)
	}

	p.skipWhitespaceUnsafe()
	body := p.lexMacroBody(c)
	if err := handler(p, name, body); err != nil {
		return err
	}

	p.state = stateAfterValue
	return nil
}

// lexMacroBody captures the macro body bytes: a quoted string's content, a
// brace-balanced span, or everything up to end-of-atom.
func (p *Parser) lexMacroBody(c *chunk.Chunk) []byte {
	b, has := p.peek()
	if !has {
		return nil
	}
	if b == '"' {
		v, err := lex.QuotedString(c, p.flags&ZeroCopy != 0)
		if err != nil {
			return nil
		}
		return []byte(v.String())
	}
	if b == '{' {
		depth := 0
		start := c.Cursor
		for {
			b, has := p.peek()
			if !has {
				break
			}
			if b == '{' {
				depth++
			}
			if b == '}' {
				depth--
				if depth == 0 {
					p.advance()
					break
				}
			}
			p.advance()
		}
		return c.Data[start+1 : c.Cursor-1]
	}
	v := lex.UnquotedString(c, p.flags&ZeroCopy != 0)
	return []byte(v.String())
}

// skipTrivia skips whitespace and comments (#, //, /* nested */).
func (p *Parser) skipTrivia() error {
	for {
		b, has := p.peek()
		if !has {
			return nil
		}
		switch {
		case chartab.Is(b, chartab.Whitespace):
			p.advance()
		case b == '#':
			p.skipLineComment()
		case b == '/' && peekSecond(p.currentChunk()) == '/':
			p.skipLineComment()
		case b == '/' && peekSecond(p.currentChunk()) == '*':
			if err := p.skipBlockComment(); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func (p *Parser) skipWhitespaceUnsafe() {
	for {
		b, has := p.peek()
		if !has || !chartab.Is(b, chartab.WhitespaceUnsafe) {
			return
		}
		p.advance()
	}
}

func (p *Parser) skipLineComment() {
	for {
		b, has := p.peek()
		if !has || b == '\n' {
			return
		}
		p.advance()
	}
}

func (p *Parser) skipBlockComment() error {
	c := p.currentChunk()
	p.advance() // '/'
	p.advance() // '*'
	depth := 1
	for depth > 0 {
		b, has := p.peek()
		if !has {
			return errcode.Syntax(c.Line, c.Column, 0, "unterminated block comment")
		}
		if b == '/' && peekSecond(p.currentChunk()) == '*' {
			depth++
			p.advance()
			p.advance()
			continue
		}
		if b == '*' && peekSecond(p.currentChunk()) == '/' {
			depth--
			p.advance()
			p.advance()
			continue
		}
		p.advance()
	}
	return nil
}
