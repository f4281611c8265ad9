// Package neuron implements Nucleus and Neuron: the named, ref-counted,
// hierarchical active entity every other runtime object (including a
// Lobe) is built from. Grounded on the teacher's neuron/factory.go
// idiom — config-struct-driven construction, one exported constructor per
// shape — retargeted from biological parameter sets onto the name,
// parent, and dispatch tables a Nucleus actually needs.
package neuron

import (
	"github.com/xepl-run/xepl/atom"
	"github.com/xepl-run/xepl/gene"
	"github.com/xepl-run/xepl/script"
	"github.com/xepl-run/xepl/synapse"
	"github.com/xepl-run/xepl/types"
)

// MethodFunc is a gene-wrapped callable bound to a neuron under a name:
// invoked when a code gene dispatches a child gene matching that name and
// no cortex keyword claims it first.
type MethodFunc func(n *Nucleus, callGene, codeGene *gene.Gene) error

// MacroFunc backs RNA's ".name(arg)" operator-call fallback: invoked when
// name is not a registered cortex operator but is a macro on the active
// neuron.
type MacroFunc func(n *Nucleus, arg string) (string, bool, error)

// Nucleus is a named Atom with children, axons, receptors, relays,
// methods, and macros: the substrate Neuron and Lobe are built from.
// Config (name, alias) is supplied once at construction, matching
// the teacher's NeuronConfig-and-factory shape.
type Nucleus struct {
	atom.Atom

	Config

	parent   *Nucleus
	children *atom.Chain[*Nucleus]
	byName   map[string]*atom.Chain[*Nucleus]

	axons     map[string]*synapse.Axon
	receptors *atom.Chain[*synapse.Receptor]
	relays    map[*synapse.Axon]fanOut

	observer *gene.Gene // process-visible properties
	shadows  *gene.Gene // methods/macros/forms/config scaffolding, for introspection

	methods map[string]MethodFunc
	macros  map[string]MacroFunc

	hostLobe synapse.Poster
}

// Config is the construction-time parameter set for a Nucleus, mirroring
// the teacher's NeuronConfig: a plain struct a caller fills in (or
// accepts the zero value of) rather than a long constructor parameter
// list.
type Config struct {
	Name  string
	Alias string
}

// New constructs a root Nucleus (no parent) from cfg.
func New(cfg Config) *Nucleus {
	n := &Nucleus{
		Atom:      atom.NewAtom(),
		Config:    cfg,
		children:  atom.NewChain[*Nucleus](true),
		byName:    make(map[string]*atom.Chain[*Nucleus]),
		axons:     make(map[string]*synapse.Axon),
		receptors: atom.NewChain[*synapse.Receptor](true),
		relays:    make(map[*synapse.Axon]fanOut),
		observer:  gene.New("observer"),
		shadows:   gene.New("shadows"),
		methods:   make(map[string]MethodFunc),
		macros:    make(map[string]MacroFunc),
	}
	return n
}

// Name satisfies script.NeuronHandle.
func (n *Nucleus) Name() string { return n.Config.Name }

// Alias returns the neuron's optional secondary name, or "" if none was
// configured. A child is indexed under both its name and, if set, its
// alias (see AddChild), so @-resolution and dotted dispatch can reach it
// either way.
func (n *Nucleus) Alias() string { return n.Config.Alias }

// SetHostLobe records which lobe a neuron's work runs on. A Lobe calls
// this with itself once constructed; AddChild propagates the same value
// to children that don't already carry one, implementing "nearest
// enclosing lobe."
func (n *Nucleus) SetHostLobe(h synapse.Poster) { n.hostLobe = h }

// HostLobe returns the nearest enclosing lobe's Poster, or nil if this
// Nucleus has not yet been attached under one.
func (n *Nucleus) HostLobe() synapse.Poster { return n.hostLobe }

// Parent satisfies script.NeuronHandle.
func (n *Nucleus) Parent() (script.NeuronHandle, bool) {
	if n.parent == nil {
		return nil, false
	}
	return n.parent, true
}

// ParentNucleus returns the concrete parent, or nil at the tree root.
func (n *Nucleus) ParentNucleus() *Nucleus { return n.parent }

// AddChild attaches child under n: tail-appended into both the insertion-
// order chain and the per-name sub-chain, and propagates n's host lobe to
// child if child does not already have one of its own (a nested Lobe
// keeps the one it set on itself).
func (n *Nucleus) AddChild(child *Nucleus) {
	child.parent = n
	if child.hostLobe == nil {
		child.hostLobe = n.hostLobe
	}
	n.children.AddTail(child)
	n.indexChildByName(child, child.Name())
	if alias := child.Alias(); alias != "" {
		n.indexChildByName(child, alias)
	}
}

func (n *Nucleus) indexChildByName(child *Nucleus, name string) {
	sub, ok := n.byName[name]
	if !ok {
		sub = atom.NewChain[*Nucleus](true)
		n.byName[name] = sub
	}
	sub.AddTail(child)
}

// ChildByName returns the earliest-added direct child named name, as a
// concrete *Nucleus, for callers within the runtime that need more than
// the script.NeuronHandle surface.
func (n *Nucleus) ChildByName(name string) (*Nucleus, bool) {
	sub, ok := n.byName[name]
	if !ok {
		return nil, false
	}
	return sub.First()
}

// FindChild satisfies script.NeuronHandle.
func (n *Nucleus) FindChild(name string) (script.NeuronHandle, bool) {
	child, ok := n.ChildByName(name)
	if !ok {
		return nil, false
	}
	return child, true
}

// Children returns every direct child, in insertion order.
func (n *Nucleus) Children() []*Nucleus { return n.children.Snapshot() }

// Observer returns the gene holding this neuron's process-visible
// properties (its trait set is what Property/SetProperty read and write).
func (n *Nucleus) Observer() *gene.Gene { return n.observer }

// Drop is neuron teardown: idempotent, cancels every receptor and relay
// this neuron holds, cancels its own axons' subscribers, and recurses
// into children. Safe to call more than once and safe under cyclic
// neuron graphs, since the dropped flag gates everything after the first
// call.
func (n *Nucleus) Drop() {
	if n.Has(types.FlagDropped) {
		return
	}
	n.Raise(types.FlagDropped)

	n.receptors.Each(func(r *synapse.Receptor) { r.Cancel() })
	for _, rel := range n.relays {
		rel.Cancel()
	}
	n.relays = make(map[*synapse.Axon]fanOut)

	for _, ax := range n.axons {
		ax.Cancel()
	}

	for _, child := range n.children.Snapshot() {
		child.Drop()
	}
}
