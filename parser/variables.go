package parser

import (
	"strings"

	"github.com/jacoelho/ucl/value"
)

// expandVariables replaces every ${NAME} occurrence in v's string payload.
// Registered variables and FILENAME/CURDIR are substituted directly;
// unregistered names fall through to the VariablesHandler, which may
// supply a replacement or leave the reference as a literal.
func (p *Parser) expandVariables(v *value.Value) *value.Value {
	if v.Kind() != value.KindString || !strings.Contains(v.String(), "${") {
		return v
	}

	s := v.String()
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); {
		if s[i] == '$' && i+1 < len(s) && s[i+1] == '{' {
			end := strings.IndexByte(s[i+2:], '}')
			if end < 0 {
				b.WriteString(s[i:])
				break
			}
			name := s[i+2 : i+2+end]
			if replacement, ok := p.resolveVariable(name); ok {
				b.WriteString(replacement)
			} else {
				b.WriteString(s[i : i+2+end+1])
			}
			i += 2 + end + 1
			continue
		}
		b.WriteByte(s[i])
		i++
	}

	return value.NewString(b.String())
}

func (p *Parser) resolveVariable(name string) (string, bool) {
	if val, ok := p.variables[name]; ok {
		return val, true
	}
	if p.varsFn != nil {
		return p.varsFn(name)
	}
	return "", false
}
