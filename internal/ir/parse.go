package ir

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ParseError reports a syntax error with its source line.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// Parse reads a module in the canonical textual form.
func Parse(r io.Reader) (*Module, error) {
	p := &parser{scanner: bufio.NewScanner(r)}
	return p.parseModule()
}

// ParseString parses a module from a string.
func ParseString(s string) (*Module, error) {
	return Parse(strings.NewReader(s))
}

type parser struct {
	scanner *bufio.Scanner
	line    int
	fn      *Func
}

func (p *parser) errf(format string, args ...any) error {
	return &ParseError{Line: p.line, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) parseModule() (*Module, error) {
	m := &Module{}
	for p.scanner.Scan() {
		p.line++
		line := strings.TrimSpace(p.scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		if p.fn == nil {
			if !strings.HasPrefix(line, "func ") {
				return nil, p.errf("expected func declaration, got %q", line)
			}
			fn, err := p.parseFuncHeader(line)
			if err != nil {
				return nil, err
			}
			p.fn = fn
			continue
		}
		if line == "}" {
			m.Funcs = append(m.Funcs, p.fn)
			p.fn = nil
			continue
		}
		if err := p.parseBodyLine(line); err != nil {
			return nil, err
		}
	}
	if err := p.scanner.Err(); err != nil {
		return nil, err
	}
	if p.fn != nil {
		return nil, p.errf("unterminated function @%s", p.fn.Name)
	}
	return m, nil
}

// parseFuncHeader parses `func @name(%p: type, ...) -> type {`.
func (p *parser) parseFuncHeader(line string) (*Func, error) {
	rest, ok := strings.CutPrefix(line, "func @")
	if !ok {
		return nil, p.errf("expected 'func @name(...)', got %q", line)
	}
	rest, ok = strings.CutSuffix(strings.TrimSpace(rest), "{")
	if !ok {
		return nil, p.errf("expected '{' at end of func declaration")
	}
	sig, retStr, ok := strings.Cut(rest, "->")
	if !ok {
		return nil, p.errf("expected '-> <type>' in func declaration")
	}
	ret, err := ParseType(strings.TrimSpace(retStr))
	if err != nil {
		return nil, p.errf("bad return type: %v", err)
	}
	open := strings.Index(sig, "(")
	end := strings.LastIndex(sig, ")")
	if open < 0 || end < open {
		return nil, p.errf("malformed parameter list")
	}
	fn := NewFunc(p.ident(strings.TrimSpace(sig[:open])), ret)
	paramList := strings.TrimSpace(sig[open+1 : end])
	if paramList != "" {
		for _, param := range strings.Split(paramList, ",") {
			name, typeStr, ok := strings.Cut(strings.TrimSpace(param), ":")
			if !ok {
				return nil, p.errf("malformed parameter %q", param)
			}
			name = strings.TrimSpace(name)
			if !strings.HasPrefix(name, "%") {
				return nil, p.errf("parameter name %q must start with %%", name)
			}
			t, err := ParseType(strings.TrimSpace(typeStr))
			if err != nil {
				return nil, p.errf("bad parameter type: %v", err)
			}
			fn.AddParam(p.ident(name[1:]), t)
		}
	}
	return fn, nil
}

func (p *parser) parseBodyLine(line string) error {
	// The result type is the suffix after the last " : "; vector type
	// spellings contain no spaces, so this split is unambiguous.
	cut := strings.LastIndex(line, " : ")
	if cut < 0 {
		return p.errf("missing ' : <type>' suffix in %q", line)
	}
	t, err := ParseType(strings.TrimSpace(line[cut+3:]))
	if err != nil {
		return p.errf("bad type: %v", err)
	}
	body := strings.TrimSpace(line[:cut])

	if rest, ok := strings.CutPrefix(body, "return "); ok {
		operand, err := p.operand(strings.TrimSpace(rest))
		if err != nil {
			return err
		}
		p.fn.Append(KindReturn, "", t, operand)
		return nil
	}

	lhs, rhs, ok := strings.Cut(body, "=")
	if !ok {
		return p.errf("expected '<name> = <op>' in %q", line)
	}
	name := strings.TrimSpace(lhs)
	if !strings.HasPrefix(name, "%") {
		return p.errf("result name %q must start with %%", name)
	}
	name = p.ident(name[1:])
	if p.fn.OpByName(name) != nil {
		return p.errf("duplicate result name %%%s", name)
	}
	rhs = strings.TrimSpace(rhs)

	mnemonic, args, _ := strings.Cut(rhs, " ")
	kind, ok := KindByName[mnemonic]
	if !ok || kind == KindReturn {
		return p.errf("unknown operation %q", mnemonic)
	}
	args = strings.TrimSpace(args)

	if kind == KindConst {
		return p.parseConst(name, args, t)
	}

	var operands []*Op
	if args != "" {
		for _, a := range strings.Split(args, ",") {
			operand, err := p.operand(strings.TrimSpace(a))
			if err != nil {
				return err
			}
			operands = append(operands, operand)
		}
	}
	if len(operands) != kind.Arity() {
		return p.errf("%s expects %d operand(s), got %d", kind, kind.Arity(), len(operands))
	}
	p.fn.Append(kind, name, t, operands...)
	return nil
}

// parseConst parses the payload of a const op: a bare scalar literal, a
// `splat <v>` uniform vector, or a bracketed element list.
func (p *parser) parseConst(name, args string, t Type) error {
	op := p.fn.Append(KindConst, name, t)
	switch {
	case strings.HasPrefix(args, "splat "):
		if !t.IsVector() {
			return p.errf("splat constant requires a vector type, got %s", t)
		}
		v, err := p.float(strings.TrimSpace(strings.TrimPrefix(args, "splat ")))
		if err != nil {
			return err
		}
		op.Elems = make([]float64, t.Lanes)
		for i := range op.Elems {
			op.Elems[i] = v
		}
	case strings.HasPrefix(args, "["):
		if !t.IsVector() {
			return p.errf("element-list constant requires a vector type, got %s", t)
		}
		body, ok := strings.CutSuffix(strings.TrimPrefix(args, "["), "]")
		if !ok {
			return p.errf("unterminated element list in constant")
		}
		for _, e := range strings.Split(body, ",") {
			v, err := p.float(strings.TrimSpace(e))
			if err != nil {
				return err
			}
			op.Elems = append(op.Elems, v)
		}
		if len(op.Elems) != t.Lanes {
			return p.errf("constant has %d element(s), type %s has %d lanes", len(op.Elems), t, t.Lanes)
		}
	default:
		if t.IsVector() {
			return p.errf("vector constant must use splat or element-list form")
		}
		v, err := p.float(args)
		if err != nil {
			return err
		}
		op.Val = v
	}
	return nil
}

func (p *parser) operand(ref string) (*Op, error) {
	if !strings.HasPrefix(ref, "%") {
		return nil, p.errf("operand %q must start with %%", ref)
	}
	op := p.fn.OpByName(p.ident(ref[1:]))
	if op == nil {
		return nil, p.errf("use of undefined value %s", ref)
	}
	return op, nil
}

func (p *parser) float(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, p.errf("bad float literal %q", s)
	}
	return v, nil
}

// ident NFC-normalizes an identifier so visually identical spellings compare
// equal regardless of the source encoding.
func (p *parser) ident(s string) string {
	return norm.NFC.String(s)
}
