// Package atom implements the ref-counted base shared by every entity in
// the runtime (genes, neurons, axons, receptors) and the doubly-linked
// Chain used to hold ordered collections of them. Grounded on the
// teacher's component.BaseComponent: a small struct, one mutex, copy-out
// accessors — retargeted from component lifecycle bookkeeping onto
// reference counting and lifecycle flags.
package atom

import (
	"sync"
	"sync/atomic"

	"github.com/xepl-run/xepl/types"
)

// Atom is the base of every shared entity in the runtime. It carries an
// atomic reference count, initially 1, and a monotonic bitfield of
// lifecycle flags. Embed Atom in any type that needs ref-counted,
// flag-gated teardown.
type Atom struct {
	refs  int32
	flags uint32
}

// NewAtom returns an Atom with a ref count of one.
func NewAtom() Atom {
	return Atom{refs: 1}
}

// Retain increments the reference count and returns the new count.
func (a *Atom) Retain() int32 {
	return atomic.AddInt32(&a.refs, 1)
}

// Release decrements the reference count and reports whether it reached
// zero. Callers must destroy the owning value exactly once, the first
// time Release returns true.
func (a *Atom) Release() bool {
	return atomic.AddInt32(&a.refs, -1) == 0
}

// RefCount returns the current reference count, for diagnostics and tests.
func (a *Atom) RefCount() int32 {
	return atomic.LoadInt32(&a.refs)
}

// Flags returns the current lifecycle flags.
func (a *Atom) Flags() types.AtomFlag {
	return types.AtomFlag(atomic.LoadUint32(&a.flags))
}

// Has reports whether every bit in want is currently set.
func (a *Atom) Has(want types.AtomFlag) bool {
	return a.Flags().Has(want)
}

// Raise sets the given flag bits. Flags are monotonic: nothing ever clears
// a bit once raised, matching the spec's teardown discipline.
func (a *Atom) Raise(add types.AtomFlag) {
	for {
		old := atomic.LoadUint32(&a.flags)
		next := old | uint32(add)
		if next == old {
			return
		}
		if atomic.CompareAndSwapUint32(&a.flags, old, next) {
			return
		}
	}
}

// Bond is one link in a Chain: it wraps a single atom-bearing value and
// its neighbors. Removing a bond does not release the value; a caller
// that counts the chain's hold as a reference releases it itself (as
// Gene.RemoveGene does).
type Bond[T any] struct {
	prev, next *Bond[T]
	chain      *Chain[T]
	Value      T
}

// Chain is a doubly-linked ordered sequence of bonds, optionally guarded
// by its own mutex. Gene children, neuron receptor lists, and axon
// receptor lists are all Chains.
type Chain[T any] struct {
	mu         sync.Mutex
	guarded    bool
	head, tail *Bond[T]
	length     int
}

// NewChain returns an empty chain. When guarded is true every mutation and
// iteration takes the chain's own mutex; set it false for chains already
// protected by an enclosing lock (e.g. Gene's content-mutex covers its
// children chain too).
func NewChain[T any](guarded bool) *Chain[T] {
	return &Chain[T]{guarded: guarded}
}

func (c *Chain[T]) lock() {
	if c.guarded {
		c.mu.Lock()
	}
}

func (c *Chain[T]) unlock() {
	if c.guarded {
		c.mu.Unlock()
	}
}

// Len returns the number of bonds currently in the chain.
func (c *Chain[T]) Len() int {
	c.lock()
	defer c.unlock()
	return c.length
}

// AddTail appends value at the end of the chain and returns its bond.
func (c *Chain[T]) AddTail(value T) *Bond[T] {
	c.lock()
	defer c.unlock()
	b := &Bond[T]{chain: c, Value: value}
	if c.tail == nil {
		c.head, c.tail = b, b
	} else {
		b.prev = c.tail
		c.tail.next = b
		c.tail = b
	}
	c.length++
	return b
}

// PullHead removes and returns the chain's first bond's value. The second
// return is false if the chain was empty.
func (c *Chain[T]) PullHead() (T, bool) {
	c.lock()
	defer c.unlock()
	var zero T
	if c.head == nil {
		return zero, false
	}
	b := c.head
	c.removeLocked(b)
	return b.Value, true
}

// RemoveBond detaches the given bond from the chain. O(1).
func (c *Chain[T]) RemoveBond(b *Bond[T]) {
	c.lock()
	defer c.unlock()
	c.removeLocked(b)
}

func (c *Chain[T]) removeLocked(b *Bond[T]) {
	if b.chain != c {
		return
	}
	if b.prev != nil {
		b.prev.next = b.next
	} else {
		c.head = b.next
	}
	if b.next != nil {
		b.next.prev = b.prev
	} else {
		c.tail = b.prev
	}
	b.prev, b.next, b.chain = nil, nil, nil
	c.length--
}

// RemoveMatch removes the first bond whose value satisfies match, reporting
// whether one was found. Used for remove-by-value lookups (e.g. removing a
// specific receptor from an axon's chain).
func (c *Chain[T]) RemoveMatch(match func(T) bool) bool {
	c.lock()
	defer c.unlock()
	for b := c.head; b != nil; b = b.next {
		if match(b.Value) {
			c.removeLocked(b)
			return true
		}
	}
	return false
}

// Each calls fn for every value in insertion order over a point-in-time
// snapshot: fn is called outside the chain's lock, so it may safely
// mutate the chain (add, remove) without deadlocking or corrupting the
// walk in progress. This is the snapshot discipline invariant (I10) axon
// triggers and relay fan-out rely on.
func (c *Chain[T]) Each(fn func(T)) {
	for _, v := range c.Snapshot() {
		fn(v)
	}
}

// Snapshot copies the chain's values, in order, into a new slice.
func (c *Chain[T]) Snapshot() []T {
	c.lock()
	defer c.unlock()
	out := make([]T, 0, c.length)
	for b := c.head; b != nil; b = b.next {
		out = append(out, b.Value)
	}
	return out
}

// First returns the chain's first value, if any.
func (c *Chain[T]) First() (T, bool) {
	c.lock()
	defer c.unlock()
	var zero T
	if c.head == nil {
		return zero, false
	}
	return c.head.Value, true
}
