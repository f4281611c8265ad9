package synapse

import "github.com/xepl-run/xepl/atom"

// Poster is the one call a Synapse needs from a lobe: enqueue a delivery
// as a mailbox action rather than invoking the receptor inline. Defined
// here (not imported from lobe) so synapse never depends on lobe; lobe
// implements Poster and hands itself to NewSynapse.
type Poster interface {
	PostSignal(receptor *Receptor, signal Signal)
}

// Synapse is the cross-lobe variant of a Relay: instead of activating its
// inner receptors in the triggering goroutine, it hands each one to a
// Poster so delivery happens on the subscriber's own lobe thread. Fan-out
// order within a single subscriber lobe is preserved; interleaving across
// lobes is unconstrained, matching the ordering guarantee in spec.
type Synapse struct {
	*Relay
}

// NewSynapse subscribes a new Synapse to axon, posting every inner
// receptor's delivery through poster instead of invoking it directly.
func NewSynapse(axon *Axon, hostChain *atom.Chain[*Receptor], poster Poster) *Synapse {
	syn := &Synapse{Relay: &Relay{inner: atom.NewChain[*Receptor](true)}}
	syn.Relay.Receptor = Subscribe(axon, hostChain, nil, func(signal Signal, _ Signal) {
		for _, r := range syn.Relay.inner.Snapshot() {
			poster.PostSignal(r, signal)
		}
	})
	syn.Relay.Receptor.innerSnapshot = func() []*Receptor { return syn.Relay.inner.Snapshot() }
	return syn
}
