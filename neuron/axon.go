package neuron

import "github.com/xepl-run/xepl/synapse"

// fanOut is the common surface of *synapse.Relay and *synapse.Synapse:
// both let a parent neuron add another inner subscriber, check whether
// any subscribers remain, and cancel the whole fan-out. Synapse embeds
// *Relay, so both satisfy this identically; the relays map below doesn't
// need to know which kind it's holding.
type fanOut interface {
	AddInner(memento synapse.Signal, receive synapse.ReceiveFunc) *synapse.Receptor
	Empty() bool
	Cancel()
}

// Axon returns this neuron's axon named name, creating it on first use.
func (n *Nucleus) Axon(name string) *synapse.Axon {
	a, ok := n.axons[name]
	if !ok {
		a = synapse.NewAxon(name)
		n.axons[name] = a
	}
	return a
}

// Trigger fires axon name with signal, delivering to every current
// subscriber in chain order.
func (n *Nucleus) Trigger(name string, signal synapse.Signal) {
	n.Axon(name).Trigger(signal)
}

// SynapseAxon subscribes n to axon: a Receptor is created on n (also
// linked into n's own receptor chain so Drop can cancel it), routed
// through a Relay or Synapse owned by n's parent and coalesced per
// (parent, axon) — a second subscriber to the same axon through the same
// parent reuses the existing fan-out instead of subscribing twice.
//
// crossLobe and poster are supplied by the caller (the lobe scheduling
// layer, which is the only thing that actually knows lobe boundaries):
// when crossLobe is true, delivery is posted through poster instead of
// being invoked inline.
func (n *Nucleus) SynapseAxon(axon *synapse.Axon, crossLobe bool, poster synapse.Poster, memento synapse.Signal, receive synapse.ReceiveFunc) *synapse.Receptor {
	owner := n.parent
	if owner == nil {
		owner = n
	}
	fo, ok := owner.relays[axon]
	if !ok {
		if crossLobe && poster != nil {
			fo = synapse.NewSynapse(axon, owner.receptors, poster)
		} else {
			fo = synapse.NewRelay(axon, owner.receptors)
		}
		owner.relays[axon] = fo
	}
	r := fo.AddInner(memento, receive)
	r.LinkInto(n.receptors)
	return r
}

// DropRelayIfEmpty discards owner's fan-out for axon once nothing
// subscribes through it anymore, matching "an empty relay is dropped."
func (owner *Nucleus) DropRelayIfEmpty(axon *synapse.Axon) {
	fo, ok := owner.relays[axon]
	if !ok || !fo.Empty() {
		return
	}
	fo.Cancel()
	delete(owner.relays, axon)
}
