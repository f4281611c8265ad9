package script

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/xepl-run/xepl/gene"
	"github.com/xepl-run/xepl/parser"
)

// Script is one running RNA evaluation: a cursor over the source text, the
// evaluation's value buffer and truth bit, and the Context it reads and
// mutates dynamic scope through. ID correlates this evaluation's trace
// output with the dispatch that triggered it.
type Script struct {
	ctx   Context
	c     *parser.Cursor
	Value string
	Truth bool
	ID    uuid.UUID
}

// Evaluate runs source as RNA against ctx and returns the final value and
// truth bit. A reported error aborts the current statement; Evaluate
// still returns whatever value had accumulated so far, matching the
// "evaluator aborts at the current statement" error model.
func Evaluate(ctx Context, source string) (string, bool, error) {
	s := &Script{ctx: ctx, c: parser.NewCursor([]byte(source)), ID: uuid.New()}
	if err := s.run(); err != nil {
		ctx.ReportError(err)
		return s.Value, s.Truth, err
	}
	return s.Value, s.Truth, nil
}

// Substitute evaluates every "{{ ... }}" run inside source in place,
// leaving the surrounding text verbatim, and returns the result. This is
// the pre-pass lobe's keyword-parameter step runs over call-gene content;
// trait values are not passed through it. It is distinct from Evaluate:
// the substituted string is plain text, not itself handed back through
// the RNA grammar.
func Substitute(ctx Context, source string) string {
	if !strings.Contains(source, "{{") {
		return source
	}
	var b strings.Builder
	rest := source
	for {
		start := strings.Index(rest, "{{")
		if start < 0 {
			b.WriteString(rest)
			break
		}
		end := strings.Index(rest[start+2:], "}}")
		if end < 0 {
			b.WriteString(rest)
			break
		}
		end += start + 2
		b.WriteString(rest[:start])
		inner := rest[start+2 : end]
		v, _, _ := Evaluate(ctx, inner)
		b.WriteString(v)
		rest = rest[end+2:]
	}
	return b.String()
}

func (s *Script) run() error {
	if s.c.Done() {
		return nil
	}
	if err := s.primary(); err != nil {
		return err
	}
	for !s.c.Done() {
		if err := s.suffix(); err != nil {
			return err
		}
	}
	return nil
}

// primary parses exactly one "value" production and seeds Value/Truth.
func (s *Script) primary() error {
	switch s.c.Peek() {
	case '\'', '"':
		s.Value = s.readQuoted()
		return nil
	case '{':
		s.c.Advance()
		inner, ok := matchBraces(s.c)
		if !ok {
			return s.errf("unterminated '{' block")
		}
		v, t, err := Evaluate(s.ctx, inner)
		s.Value, s.Truth = v, t
		return err
	case '@':
		s.c.Advance()
		name := s.readName()
		n, ok := s.resolveNeuronUpward(name)
		if !ok {
			return s.errf("neuron %q not found", name)
		}
		s.ctx.SetActiveNeuron(n)
		s.Value = n.Name()
		return nil
	case '$':
		return s.geneNav()
	case '!':
		s.c.Advance()
		n := s.ctx.ActiveNeuron()
		if n == nil {
			return s.errf("'!' property tap with no active neuron")
		}
		return s.tapOrAssign(n.Property, n.SetProperty)
	case '%':
		s.c.Advance()
		return s.tapLocal()
	case '#':
		s.c.Advance()
		return s.tapIndex()
	case ';':
		s.c.Advance()
		return s.tapOrAssign(s.ctx.ShortTermGet, s.ctx.ShortTermSet)
	case '*':
		s.c.Advance()
		name := s.readName()
		resolved, ok := s.resolveBareName(name)
		if !ok {
			return s.errf("indirect name %q unresolved", name)
		}
		v, ok := s.resolveBareName(resolved)
		if !ok {
			return s.errf("indirect target %q unresolved", resolved)
		}
		s.Value = v
		return nil
	case '?':
		s.c.Advance()
		return s.ternary()
	default:
		if isDigitStart(s.c.Peek()) {
			s.Value = s.readNumber()
			return nil
		}
		name := s.readName()
		if name == "" {
			return s.errf("expected a value, found %q", string(s.c.Peek()))
		}
		v, ok := s.resolveBareName(name)
		if !ok {
			return s.errf("name %q unresolved", name)
		}
		s.Value = v
		return nil
	}
}

// suffix parses one mutate or field production and applies it.
func (s *Script) suffix() error {
	if s.c.Peek() != '.' && s.ctx.ActiveGene() == nil {
		return s.errf("field step %q with no active gene", string(s.c.Peek()))
	}
	switch s.c.Peek() {
	case '.':
		s.c.Advance()
		return s.operatorCall()
	case '\'':
		s.c.Advance()
		name, ok := s.c.TakeUntil("'")
		if !ok {
			return s.errf("unterminated trait step")
		}
		s.c.Advance()
		if s.c.Peek() == '=' {
			s.c.Advance()
			if err := s.primary(); err != nil {
				return err
			}
			s.ctx.ActiveGene().TraitSet(name, s.Value)
			return nil
		}
		v, ok := s.ctx.ActiveGene().TraitGet(name)
		s.Truth = ok
		s.Value = v
		return nil
	case '|':
		s.c.Advance()
		g := s.ctx.ActiveGene()
		if s.c.Peek() == '=' {
			s.c.Advance()
			if err := s.primary(); err != nil {
				return err
			}
			g.SetContent(s.Value)
			return nil
		}
		if s.c.Peek() == '+' {
			s.c.Advance()
			if err := s.primary(); err != nil {
				return err
			}
			g.AppendContent(s.Value)
			return nil
		}
		s.Value = g.Content().String()
		return nil
	case '/':
		s.c.Advance()
		tag := s.readName()
		child, ok := s.ctx.ActiveGene().GetFirstGene(tag)
		if !ok {
			return s.errf("child gene %q not found", tag)
		}
		s.ctx.SetOutdex(s.ctx.ActiveGene())
		s.ctx.SetActiveGene(child)
		s.Value = tag
		return nil
	case '>':
		depth := 0
		for s.c.Peek() == '>' {
			s.c.Advance()
			depth++
		}
		s.Value = s.ctx.ActiveGene().PrintInto(depth)
		return nil
	default:
		return s.errf("unexpected character %q", string(s.c.Peek()))
	}
}

// operatorCall parses "name(" [rhs] ")" and invokes the registered
// operator, or falls back to a neuron macro of the same name.
func (s *Script) operatorCall() error {
	name := s.readName()
	if name == "" {
		return s.errf("expected operator name after '.'")
	}
	rhs := ""
	if s.c.Peek() == '(' {
		s.c.Advance()
		body, ok := matchParens(s.c)
		if !ok {
			return s.errf("unterminated argument list for .%s(", name)
		}
		v, _, err := Evaluate(s.ctx, body)
		if err != nil {
			return err
		}
		rhs = v
	}
	if op, ok := s.ctx.Registry().Operator(name); ok {
		return op(s, rhs)
	}
	n := s.ctx.ActiveNeuron()
	if n == nil {
		return s.errf("operator %q not registered and no active neuron for macro fallback", name)
	}
	v, truth, err := n.InvokeMacro(name, rhs)
	if err != nil {
		return err
	}
	s.Value, s.Truth = v, truth
	return nil
}

func (s *Script) ternary() error {
	thenPart, ok := s.c.TakeUntil(":")
	truthGate := s.Truth
	if !ok {
		// no ':' present: whole remainder is the "then" branch only
		thenPart = s.c.Remainder()
		if truthGate {
			v, t, err := Evaluate(s.ctx, thenPart)
			s.Value, s.Truth = v, t
			return err
		}
		return nil
	}
	s.c.Advance() // consume ':'
	elsePart := s.c.Remainder()
	if truthGate {
		v, t, err := Evaluate(s.ctx, thenPart)
		s.Value, s.Truth = v, t
		return err
	}
	v, t, err := Evaluate(s.ctx, elsePart)
	s.Value, s.Truth = v, t
	return err
}

func (s *Script) geneNav() error {
	s.c.Advance() // consume '$'
	switch {
	case s.c.Peek() == '$':
		s.c.Advance()
		s.ctx.SetActiveGene(s.ctx.Outdex())
		return nil
	case s.c.Peek() == '*':
		s.c.Advance()
		name := s.readName()
		resolved, ok := s.resolveBareName(name)
		if !ok {
			return s.errf("dynamic gene name %q unresolved", name)
		}
		g, ok := s.locateGene(resolved)
		if !ok {
			return s.errf("gene %q not found", resolved)
		}
		s.ctx.SetOutdex(s.ctx.ActiveGene())
		s.ctx.SetActiveGene(g)
		return nil
	case isDigitStart(s.c.Peek()):
		numStr := s.readNumber()
		depth, err := strconv.Atoi(numStr)
		if err != nil {
			return s.errf("invalid frame index %q", numStr)
		}
		g, ok := s.ctx.IndexFrame(depth)
		if !ok {
			return s.errf("no frame at depth %d", depth)
		}
		s.ctx.SetOutdex(s.ctx.ActiveGene())
		s.ctx.SetActiveGene(g)
		return nil
	default:
		name := s.readName()
		g, ok := s.locateGene(name)
		if !ok {
			return s.errf("gene %q not found", name)
		}
		s.ctx.SetOutdex(s.ctx.ActiveGene())
		s.ctx.SetActiveGene(g)
		return nil
	}
}

func (s *Script) locateGene(name string) (*gene.Gene, bool) {
	if mutual, ok := s.ctx.Registry().Mutual(name); ok {
		return mutual(s.ctx.ActiveNeuron()), true
	}
	return s.ctx.ActiveGene().GetFirstGene(name)
}

// tapOrAssign implements the "!name" / ";name" read-or-assign forms that
// are backed by a simple string getter/setter pair.
func (s *Script) tapOrAssign(get func(string) (string, bool), set func(string, string)) error {
	name := s.readName()
	if s.c.Peek() == '=' {
		s.c.Advance()
		if err := s.primary(); err != nil {
			return err
		}
		set(name, s.Value)
		return nil
	}
	v, ok := get(name)
	s.Truth = ok
	s.Value = v
	return nil
}

func (s *Script) tapLocal() error {
	name := s.readName()
	locals := s.ctx.Locals()
	if s.c.Peek() == '=' {
		s.c.Advance()
		if err := s.primary(); err != nil {
			return err
		}
		locals.TraitSet(name, s.Value)
		return nil
	}
	v, ok := locals.TraitGet(name)
	s.Truth = ok
	s.Value = v
	return nil
}

func (s *Script) tapIndex() error {
	name := s.readName()
	top, ok := s.ctx.IndexFrame(0)
	if !ok {
		return s.errf("no index frame for #%s", name)
	}
	if s.c.Peek() == '=' {
		s.c.Advance()
		if err := s.primary(); err != nil {
			return err
		}
		top.TraitSet(name, s.Value)
		return nil
	}
	v, ok := top.TraitGet(name)
	s.Truth = ok
	s.Value = v
	return nil
}

// resolveBareName implements the property-hunt resolution order: short-
// term, then locals, then the neuron property chain.
func (s *Script) resolveBareName(name string) (string, bool) {
	if v, ok := s.ctx.ShortTermGet(name); ok {
		return v, true
	}
	if v, ok := s.ctx.Locals().TraitGet(name); ok {
		return v, true
	}
	n := s.ctx.ActiveNeuron()
	for n != nil {
		if v, ok := n.Property(name); ok {
			return v, true
		}
		var hasParent bool
		n, hasParent = n.Parent()
		if !hasParent {
			break
		}
	}
	return "", false
}

func (s *Script) resolveNeuronUpward(name string) (NeuronHandle, bool) {
	n := s.ctx.ActiveNeuron()
	for n != nil {
		if child, ok := n.FindChild(name); ok {
			return child, true
		}
		var hasParent bool
		n, hasParent = n.Parent()
		if !hasParent {
			break
		}
	}
	return nil, false
}

func (s *Script) readName() string {
	var b strings.Builder
	for !s.c.Done() && isNameByte(s.c.Peek()) {
		b.WriteByte(s.c.Advance())
	}
	return b.String()
}

func (s *Script) readNumber() string {
	var b strings.Builder
	if s.c.Peek() == '+' || s.c.Peek() == '-' {
		b.WriteByte(s.c.Advance())
	}
	for !s.c.Done() && (isDigit(s.c.Peek()) || s.c.Peek() == '.') {
		b.WriteByte(s.c.Advance())
	}
	return b.String()
}

func (s *Script) readQuoted() string {
	quote := s.c.Advance()
	var b strings.Builder
	for !s.c.Done() && s.c.Peek() != quote {
		b.WriteByte(s.c.Advance())
	}
	if !s.c.Done() {
		s.c.Advance()
	}
	return b.String()
}

func (s *Script) errf(format string, args ...any) error {
	line, col := s.c.Pos()
	return errors.Wrapf(errors.Errorf(format, args...), "RNA error at %d:%d", line, col)
}

func isNameByte(b byte) bool {
	return b == '_' || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isDigitStart(b byte) bool {
	return isDigit(b) || b == '+' || b == '-'
}

// matchBraces consumes up to and including the matching closing '}' for a
// '{' already consumed by the caller, honoring nested braces, and returns
// the content between them.
func matchBraces(c *parser.Cursor) (string, bool) {
	return matchBalanced(c, '{', '}')
}

func matchParens(c *parser.Cursor) (string, bool) {
	return matchBalanced(c, '(', ')')
}

func matchBalanced(c *parser.Cursor, open, close byte) (string, bool) {
	depth := 1
	start := c.Offset()
	for !c.Done() {
		b := c.Peek()
		if b == open {
			depth++
		} else if b == close {
			depth--
			if depth == 0 {
				body := string(c.Slice(start, c.Offset()))
				c.Advance()
				return body, true
			}
		}
		c.Advance()
	}
	return "", false
}
