// Package wire implements the text-value primitives underneath every Gene:
// an immutable Cord and a mutex-protected, appendable Wire. Grounded on the
// teacher's component.BaseComponent — the same "small struct, one mutex,
// copy out on read" shape, applied to a byte buffer instead of component
// metadata.
package wire

import "sync"

// Cord is an immutable text value. It is cheap to copy and safe to share
// across goroutines precisely because nothing ever mutates it in place.
type Cord string

// String returns the cord's contents.
func (c Cord) String() string { return string(c) }

// Empty reports whether the cord has zero length.
func (c Cord) Empty() bool { return len(c) == 0 }

// Wire is a mutex-protected, appendable text buffer. Wires own their
// string; a Cord taken from a Wire (via Freeze) is an independent copy and
// observes no further appends.
type Wire struct {
	mu  sync.Mutex
	buf []byte
}

// NewWire returns an empty Wire, optionally seeded with initial content.
func NewWire(initial string) *Wire {
	w := &Wire{}
	if initial != "" {
		w.buf = append(w.buf, initial...)
	}
	return w
}

// Append adds s to the end of the wire's buffer. Safe for concurrent use.
func (w *Wire) Append(s string) {
	if s == "" {
		return
	}
	w.mu.Lock()
	w.buf = append(w.buf, s...)
	w.mu.Unlock()
}

// Len returns the current buffer length. Safe for concurrent use.
func (w *Wire) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.buf)
}

// Freeze copies the current buffer contents into an independent Cord.
// Callers must not hold onto the Wire's internal slice; this is the only
// supported way to observe a Wire's contents.
func (w *Wire) Freeze() Cord {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Cord(string(w.buf))
}

// Set replaces the wire's entire contents.
func (w *Wire) Set(s string) {
	w.mu.Lock()
	w.buf = append(w.buf[:0], s...)
	w.mu.Unlock()
}

// ExtractLine removes and returns everything up to (not including) the
// first newline, along with whether a newline was found. The CLI's REPL
// does not use it: it reads its input with bufio.Scanner.
func (w *Wire) ExtractLine() (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, b := range w.buf {
		if b == '\n' {
			line := string(w.buf[:i])
			w.buf = append(w.buf[:0], w.buf[i+1:]...)
			return line, true
		}
	}
	return "", false
}
