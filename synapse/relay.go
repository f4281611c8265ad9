package synapse

import (
	"github.com/xepl-run/xepl/atom"
)

// Relay is a Receptor whose own delivery target is, in turn, a chain of
// Receptors: the standard shape for "parent neuron subscribes on behalf
// of its children." Relays are coalesced per (parent neuron, axon):
// AddInner appends to an existing relay's inner chain rather than
// creating a second subscription on the axon.
type Relay struct {
	*Receptor
	inner *atom.Chain[*Receptor]
}

// NewRelay subscribes a new Relay to axon. hostChain, if non-nil, is the
// owning neuron's own receptor chain (so the relay's outer Receptor half
// can be cancelled the same way any other receptor is).
func NewRelay(axon *Axon, hostChain *atom.Chain[*Receptor]) *Relay {
	rel := &Relay{inner: atom.NewChain[*Receptor](true)}
	rel.Receptor = Subscribe(axon, hostChain, nil, func(signal Signal, _ Signal) {
		rel.inner.Each(func(r *Receptor) { r.activate(signal) })
	})
	rel.Receptor.innerSnapshot = func() []*Receptor { return rel.inner.Snapshot() }
	return rel
}

// AddInner subscribes a new fan-out target under this relay, for a
// child neuron that shares the relay's (parent, axon) pair with other
// children already subscribed through it.
func (rel *Relay) AddInner(memento Signal, receive ReceiveFunc) *Receptor {
	r := &Receptor{Atom: atom.NewAtom(), memento: memento, receive: receive}
	r.attach(rel.inner)
	return r
}

// Empty reports whether the relay has no remaining fan-out targets; an
// empty relay should be dropped by its owner (Cancel the outer Receptor
// and discard the Relay).
func (rel *Relay) Empty() bool { return rel.inner.Len() == 0 }
