// Package synapse implements the signal graph primitives a neuron uses to
// talk to other neurons without ever calling into them directly: Axon
// (named endpoint), Receptor (subscription), Relay (child-side fan-out),
// and Synapse (the cross-lobe variant of a Relay that posts instead of
// invoking inline). Grounded on the teacher's synapse package: one
// exported struct per concern, composition over inheritance, callback
// injection (synapse.EnhancedSynapse.callbacks) wherever the runtime
// needs to call back into code this package cannot import.
package synapse

import (
	"github.com/xepl-run/xepl/atom"
	"github.com/xepl-run/xepl/gene"
)

// Signal is the payload every Axon trigger and Receptor delivery carries.
// A gene doubles as runtime value and message body throughout XEPL, so
// Signal is simply an alias rather than a wrapper type.
type Signal = *gene.Gene

// ReceiveFunc is invoked for one receptor's delivery: the triggered
// signal, plus the memento gene fixed at subscribe time.
type ReceiveFunc func(signal Signal, memento Signal)

// Axon is a named signal endpoint hosted by a neuron. Triggering it
// delivers to every currently subscribed receptor, in chain insertion
// order, against a point-in-time snapshot: receptors added or cancelled
// during delivery never affect the in-flight round (invariant I10).
type Axon struct {
	atom.Atom
	Name      string
	receptors *atom.Chain[*Receptor]
}

// NewAxon returns a freshly owned Axon with no subscribers.
func NewAxon(name string) *Axon {
	return &Axon{Atom: atom.NewAtom(), Name: name, receptors: atom.NewChain[*Receptor](true)}
}

// Trigger delivers signal to every subscriber, in chain order, under a
// snapshot taken before the first activation runs.
func (a *Axon) Trigger(signal Signal) {
	a.receptors.Each(func(r *Receptor) {
		r.activate(signal)
	})
}

// ReceptorCount reports the number of currently attached receptors, for
// diagnostics and the "empty relay is dropped" bookkeeping.
func (a *Axon) ReceptorCount() int { return a.receptors.Len() }

// Receptors returns a point-in-time snapshot of this axon's current
// subscribers, for Trigger_Wait to register completion waiters on before
// triggering.
func (a *Axon) Receptors() []*Receptor { return a.receptors.Snapshot() }

// Cancel detaches every current subscriber, foreign or local, from this
// axon: each Receptor.Cancel unlinks itself from both the axon's own
// chain and the subscribing neuron's host chain, so a dropped neuron's
// axons stop holding foreign neurons subscribed. Taken as a snapshot
// first since a receptor's own Cancel mutates the chain Cancel is
// iterating. Grounded on spec §4.1's third ownership rule ("cancel
// axons (removes receptors from foreign neurons)").
func (a *Axon) Cancel() {
	for _, r := range a.receptors.Snapshot() {
		r.Cancel()
	}
}
