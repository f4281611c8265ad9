package synapse

import (
	"sync"

	"github.com/xepl-run/xepl/atom"
	"github.com/xepl-run/xepl/types"
)

// chainLink records one chain a receptor has been attached to, so Cancel
// can detach from all of them (the hosting axon's chain, and the
// subscribing neuron's own receptor chain) without either package holding
// a reference to the other's bookkeeping.
type chainLink struct {
	chain *atom.Chain[*Receptor]
	bond  *atom.Bond[*Receptor]
}

// Receptor is one subscription: a binding between a subscribing neuron
// and an axon, invoked with the triggered signal and a memento gene fixed
// at subscribe time.
type Receptor struct {
	atom.Atom
	axon    *Axon
	memento Signal
	receive ReceiveFunc
	links   []chainLink

	// innerSnapshot, set only on a Relay/Synapse's outer receptor, returns
	// the fan-out targets whose completion actually determines when this
	// receptor's work is "done" — used by Trigger_Wait to await the real
	// leaves instead of the outer relay receptor itself.
	innerSnapshot func() []*Receptor

	pendingMu sync.Mutex
	pending   []chan struct{}
}

// Subscribe creates a Receptor on axon invoking receive for every
// trigger, carrying memento unchanged across deliveries. When hostChain
// is non-nil (the subscribing neuron's own receptor chain) the receptor
// is also linked into it, so a single Cancel detaches from both sides.
func Subscribe(axon *Axon, hostChain *atom.Chain[*Receptor], memento Signal, receive ReceiveFunc) *Receptor {
	r := &Receptor{Atom: atom.NewAtom(), axon: axon, memento: memento, receive: receive}
	r.attach(axon.receptors)
	if hostChain != nil {
		r.attach(hostChain)
	}
	return r
}

func (r *Receptor) attach(chain *atom.Chain[*Receptor]) {
	b := chain.AddTail(r)
	r.links = append(r.links, chainLink{chain: chain, bond: b})
}

// LinkInto attaches an already-constructed receptor into an additional
// chain (typically a subscribing neuron's own receptor chain, recorded
// after the fact because the chain it belongs to isn't known until the
// subscribe call returns), so a later Cancel detaches from it too.
func (r *Receptor) LinkInto(chain *atom.Chain[*Receptor]) {
	r.attach(chain)
}

func (r *Receptor) activate(signal Signal) {
	if r.receive != nil {
		r.receive(signal, r.memento)
	}
	r.notifyPending()
}

// AwaitNext returns a channel closed the next time this receptor finishes
// an activation. Used directly by AwaitSettled for a leaf receptor; a
// relay/synapse outer receptor overrides this via innerSnapshot instead,
// since its own activation only submits work rather than completing it.
func (r *Receptor) AwaitNext() <-chan struct{} {
	ch := make(chan struct{})
	r.pendingMu.Lock()
	r.pending = append(r.pending, ch)
	r.pendingMu.Unlock()
	return ch
}

func (r *Receptor) notifyPending() {
	r.pendingMu.Lock()
	pending := r.pending
	r.pending = nil
	r.pendingMu.Unlock()
	for _, ch := range pending {
		close(ch)
	}
}

// AwaitSettled returns the channels Trigger_Wait must block on for this
// receptor's delivery to be considered complete: its own next activation
// for a plain receptor, or (recursively) every current fan-out target's
// completion for a relay or synapse.
func (r *Receptor) AwaitSettled() []<-chan struct{} {
	if r.innerSnapshot == nil {
		return []<-chan struct{}{r.AwaitNext()}
	}
	var out []<-chan struct{}
	for _, inner := range r.innerSnapshot() {
		out = append(out, inner.AwaitSettled()...)
	}
	return out
}

// Activate runs the receptor's bound receive function against signal, the
// same way a same-lobe Trigger delivery would. A cross-lobe Poster uses
// this to deliver a signal once its SignalAction reaches the head of the
// target lobe's own mailbox.
func (r *Receptor) Activate(signal Signal) { r.activate(signal) }

// Cancel detaches the receptor from its axon and from the subscribing
// neuron's own chain, if recorded. Idempotent: a receptor already
// cancelled is a no-op, which is what makes neuron drop's
// cancel-everything pass safe to run from more than one path.
func (r *Receptor) Cancel() {
	if r.Has(types.FlagDropped) {
		return
	}
	r.Raise(types.FlagDropped)
	for _, l := range r.links {
		l.chain.RemoveBond(l.bond)
	}
	r.links = nil
}

// Axon returns the axon this receptor is subscribed to.
func (r *Receptor) Axon() *Axon { return r.axon }
