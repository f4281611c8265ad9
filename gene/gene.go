// Package gene implements the ref-counted, mutex-protected tree that is
// simultaneously an AST, a runtime value, a small in-memory database, and
// a message payload: the Gene. Every mutating operation on a Gene takes
// the gene's own content-mutex, matching the teacher's
// lock-field-per-struct discipline (component.BaseComponent.mu) rather
// than a single global lock.
package gene

import (
	"fmt"
	"sync"

	"github.com/xepl-run/xepl/atom"
	"github.com/xepl-run/xepl/types"
	"github.com/xepl-run/xepl/wire"
)

// Gene is a named tree node: a tag name, an optional namespace, a lazily
// allocated text body, an ordered map of traits, and an ordered, multiply
// name-indexed collection of children. It embeds atom.Atom for reference
// counting and lifecycle flags.
type Gene struct {
	atom.Atom

	Name  wire.Cord
	Space wire.Cord

	mu      *sync.Mutex // shared with duplicates; guards content, traits, children
	content *wire.Wire  // lazily allocated on first write

	traitHead, traitTail *traitNode
	traitIndex           map[string]*traitNode

	children       *atom.Chain[*Gene]
	childrenByName map[string]*atom.Chain[*Gene]
	childBonds     map[*Gene]*atom.Bond[*Gene]

	owner *Gene // weak: cleared on removal, never retained/released directly
}

// New returns a freshly owned Gene (ref count 1) with the given tag name
// and no namespace, traits, content, or children.
func New(name string) *Gene {
	return &Gene{
		Atom:           atom.NewAtom(),
		Name:           wire.Cord(name),
		mu:             &sync.Mutex{},
		traitIndex:     make(map[string]*traitNode),
		children:       atom.NewChain[*Gene](false),
		childrenByName: make(map[string]*atom.Chain[*Gene]),
		childBonds:     make(map[*Gene]*atom.Bond[*Gene]),
	}
}

// NewNamespaced is New with an explicit XML namespace prefix.
func NewNamespaced(space, name string) *Gene {
	g := New(name)
	g.Space = wire.Cord(space)
	return g
}

// Owner returns the gene's parent, or nil if it is detached.
func (g *Gene) Owner() *Gene {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.owner
}

// Content returns a snapshot of the gene's text body. A gene with no
// content ever written returns the empty cord.
func (g *Gene) Content() wire.Cord {
	g.mu.Lock()
	c := g.content
	g.mu.Unlock()
	if c == nil {
		return ""
	}
	return c.Freeze()
}

// SetContent replaces the gene's text body, allocating the backing wire on
// first use.
func (g *Gene) SetContent(s string) {
	g.mu.Lock()
	if g.content == nil {
		g.content = wire.NewWire("")
	}
	g.mu.Unlock()
	g.content.Set(s)
}

// AppendContent appends to the gene's text body, allocating on first use.
func (g *Gene) AppendContent(s string) {
	g.mu.Lock()
	if g.content == nil {
		g.content = wire.NewWire("")
	}
	w := g.content
	g.mu.Unlock()
	w.Append(s)
}

// AddGene appends child at the tail of g's children, in both the
// insertion-order chain and the per-name sub-chain, and takes ownership of
// the caller's reference to child (the caller must not also Release it).
// child.owner is set to g.
func (g *Gene) AddGene(child *Gene) {
	if child == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.addGeneLocked(child)
}

func (g *Gene) addGeneLocked(child *Gene) {
	b := g.children.AddTail(child)
	g.childBonds[child] = b

	name := child.Name.String()
	sub, ok := g.childrenByName[name]
	if !ok {
		sub = atom.NewChain[*Gene](false)
		g.childrenByName[name] = sub
	}
	sub.AddTail(child)

	child.mu.Lock()
	child.owner = g
	child.mu.Unlock()
}

// GetFirstGene returns the earliest-inserted child named name (I3).
func (g *Gene) GetFirstGene(name string) (*Gene, bool) {
	g.mu.Lock()
	sub, ok := g.childrenByName[name]
	g.mu.Unlock()
	if !ok {
		return nil, false
	}
	return sub.First()
}

// GetGenes returns every child named name, in insertion order.
func (g *Gene) GetGenes(name string) []*Gene {
	g.mu.Lock()
	sub, ok := g.childrenByName[name]
	g.mu.Unlock()
	if !ok {
		return nil
	}
	return sub.Snapshot()
}

// Children returns every child gene, in insertion order.
func (g *Gene) Children() []*Gene {
	return g.children.Snapshot()
}

// ChildCount returns the number of direct children.
func (g *Gene) ChildCount() int {
	return g.children.Len()
}

// RemoveGene detaches child from g's children (both indexes), clears
// child's owner link, and releases the one reference the bond held.
// Reports whether child was actually found and removed.
func (g *Gene) RemoveGene(child *Gene) bool {
	if child == nil {
		return false
	}
	g.mu.Lock()
	b, ok := g.childBonds[child]
	if !ok {
		g.mu.Unlock()
		return false
	}
	delete(g.childBonds, child)
	g.children.RemoveBond(b)

	name := child.Name.String()
	if sub, ok := g.childrenByName[name]; ok {
		sub.RemoveMatch(func(c *Gene) bool { return c == child })
	}
	g.mu.Unlock()

	child.mu.Lock()
	child.owner = nil
	child.mu.Unlock()

	child.Release()
	return true
}

// ReplaceGene removes the first child named name, if present, and then
// adds newChild in its place. Reports whether a prior child was replaced
// (false means newChild was simply appended).
func (g *Gene) ReplaceGene(name string, newChild *Gene) bool {
	existing, had := g.GetFirstGene(name)
	if had {
		g.RemoveGene(existing)
	}
	g.AddGene(newChild)
	return had
}

// DuplicateGene produces a shallow alias of g: the returned Gene shares
// g's content wire, content mutex, and children structures, but owns an
// independent copy of g's trait nodes (so a trait set on the duplicate
// never mutates g's). It is flagged Duplicate so its destructor never
// tears down the shared structures. Grounded on original_source/xepl.cc's
// Duplicate_Gene, which calls traits->Duplicate_Into(&cloned_gene->traits)
// to clone every trait node into the new gene.
func (g *Gene) DuplicateGene() *Gene {
	g.mu.Lock()
	defer g.mu.Unlock()

	dup := &Gene{
		Atom:           atom.NewAtom(),
		Name:           g.Name,
		Space:          g.Space,
		mu:             g.mu,
		content:        g.content,
		traitIndex:     make(map[string]*traitNode),
		children:       g.children,
		childrenByName: g.childrenByName,
		childBonds:     g.childBonds,
		owner:          g.owner,
	}
	for n := g.traitHead; n != nil; n = n.next {
		clone := &traitNode{Trait: n.Trait}
		if dup.traitTail == nil {
			dup.traitHead, dup.traitTail = clone, clone
		} else {
			dup.traitTail.next = clone
			dup.traitTail = clone
		}
		dup.traitIndex[clone.Name] = clone
	}
	dup.Raise(types.FlagDuplicate)
	return dup
}

// AbsorbGene merges other into g: every child of other (taken from a
// stable snapshot, so concurrent mutation of other during the walk is
// safe) is re-parented onto g, other's content is appended to g's, and
// other's traits are cloned (as distinct nodes, preserving order) into g.
func (g *Gene) AbsorbGene(other *Gene) {
	if other == nil || other == g {
		return
	}
	for _, child := range other.Children() {
		other.RemoveGene(child)
		child.Retain()
		g.AddGene(child)
	}
	g.AppendContent(other.Content().String())
	for _, t := range other.Traits() {
		g.TraitSetQuoted(t.Name, t.Value, t.Quote)
	}
}

// String returns a depth-unlimited XML rendering of the gene, for
// debugging (fmt.Stringer).
func (g *Gene) String() string {
	var sb []byte
	sb = g.printInto(sb, -1)
	return string(sb)
}

func (g *Gene) GoString() string {
	return fmt.Sprintf("Gene(%s)", g.Name)
}
