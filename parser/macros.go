package parser

import (
	"fmt"

	"github.com/jacoelho/ucl/internal/chunk"
	"github.com/jacoelho/ucl/internal/errcode"
	"github.com/jacoelho/ucl/value"
)

// IncludeFetcher resolves an include target (a path or URL appearing in a
// .include/.includes body) to its raw bytes. Parsers that never register
// .include content (e.g. string-only embedding) can leave this nil; the
// built-in macros then fail closed with errcode.ErrMacro.
type IncludeFetcher func(target string) ([]byte, error)

// SignatureVerifier checks a detached signature for .includes. It receives
// the fetched content and the signature bytes (fetched from target+".sig").
type SignatureVerifier func(content, signature []byte) error

// includeConfig holds the host-supplied callbacks used by the built-in
// .include/.includes macros. It is nil until SetIncludeFetcher is called.
type includeConfig struct {
	fetch  IncludeFetcher
	verify SignatureVerifier
}

// SetIncludeFetcher installs the callback used to resolve .include and
// .includes targets to bytes.
func (p *Parser) SetIncludeFetcher(fetch IncludeFetcher) {
	if p.includes == nil {
		p.includes = &includeConfig{}
	}
	p.includes.fetch = fetch
}

// SetSignatureVerifier installs the callback .includes uses to verify a
// detached signature before the included content is trusted.
func (p *Parser) SetSignatureVerifier(verify SignatureVerifier) {
	if p.includes == nil {
		p.includes = &includeConfig{}
	}
	p.includes.verify = verify
}

// registerBuiltinMacros wires the .include and .includes macros that every
// parser carries by default. Both may be overridden by a later
// RegisterMacro call with the same name.
func registerBuiltinMacros(p *Parser) {
	p.macros[".include"] = macroInclude
	p.macros["include"] = macroInclude
	p.macros[".includes"] = macroIncludes
	p.macros["includes"] = macroIncludes
}

func macroInclude(p *Parser, name string, body []byte) error {
	target := string(body)
	data, err := p.fetchInclude(target)
	if err != nil {
		return err
	}
	return p.pushInclude(data, target)
}

func macroIncludes(p *Parser, name string, body []byte) error {
	target := string(body)
	data, err := p.fetchInclude(target)
	if err != nil {
		return err
	}
	if p.includes == nil || p.includes.verify == nil {
		return errcode.Macro(".includes requires a signature verifier for %q", target)
	}
	sig, err := p.fetchInclude(target + ".sig")
	if err != nil {
		return errcode.Macro(".includes could not fetch signature for %q: %v", target, err)
	}
	if err := p.includes.verify(data, sig); err != nil {
		return fmt.Errorf("%w: .includes signature check failed for %q: %v", errcode.ErrSignature, target, err)
	}
	return p.pushInclude(data, target)
}

func (p *Parser) fetchInclude(target string) ([]byte, error) {
	if p.includes == nil || p.includes.fetch == nil {
		return nil, errcode.Macro("no include fetcher registered for %q", target)
	}
	data, err := p.includes.fetch(target)
	if err != nil {
		return nil, errcode.Macro("failed to fetch include %q: %v", target, err)
	}
	return data, nil
}

// pushInclude merges the parsed content of an included chunk into the
// current container, honoring the parser's merge mode (spec-equivalent to
// priority-based ucl_parser_add_chunk for nested includes).
func (p *Parser) pushInclude(data []byte, target string) error {
	if p.includeDepth >= chunk.MaxDepth {
		return errcode.ErrRecursionDeep
	}

	sub := New(p.flags)
	sub.includeDepth = p.includeDepth + 1
	sub.SetFileVars(target, true)
	for k, v := range p.variables {
		sub.variables[k] = v
	}
	sub.includes = p.includes

	if !sub.AddString(string(data), 0) {
		return sub.GetError()
	}
	included := sub.GetObject()
	if included == nil {
		return nil
	}
	defer value.Unref(included)

	f := p.topFrame()
	if f == nil {
		return errcode.Internal("include with no active container")
	}

	switch f.container.Kind() {
	case value.KindObject:
		if included.Kind() != value.KindObject {
			return errcode.Macro("included content from %q is not an object", target)
		}
		f.container.Object().MergeFrom(included.Object(), p.mode)
	case value.KindArray:
		if included.Kind() == value.KindArray {
			for _, child := range included.Array() {
				f.container.AppendElement(child.Ref())
			}
		} else {
			f.container.AppendElement(included.Ref())
		}
	}
	return nil
}
