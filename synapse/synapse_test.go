package synapse

import (
	"testing"

	"github.com/xepl-run/xepl/gene"
)

func TestTriggerDeliversInChainOrder(t *testing.T) {
	axon := NewAxon("spike")
	var order []string
	Subscribe(axon, nil, nil, func(signal Signal, _ Signal) { order = append(order, "first") })
	Subscribe(axon, nil, nil, func(signal Signal, _ Signal) { order = append(order, "second") })

	axon.Trigger(gene.New("payload"))

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("delivery order = %v, want [first second]", order)
	}
}

func TestReceptorCancelRemovesFromAxon(t *testing.T) {
	axon := NewAxon("spike")
	r := Subscribe(axon, nil, nil, func(Signal, Signal) {})
	if axon.ReceptorCount() != 1 {
		t.Fatalf("ReceptorCount() = %d, want 1", axon.ReceptorCount())
	}
	r.Cancel()
	if axon.ReceptorCount() != 0 {
		t.Fatalf("ReceptorCount() after Cancel = %d, want 0", axon.ReceptorCount())
	}
	r.Cancel() // must be idempotent
}

func TestTriggerSnapshotSafeUnderMutationDuringDelivery(t *testing.T) {
	axon := NewAxon("spike")
	calls := 0
	var second *Receptor
	Subscribe(axon, nil, nil, func(Signal, Signal) {
		calls++
		second.Cancel() // cancel a sibling mid-delivery
	})
	second = Subscribe(axon, nil, nil, func(Signal, Signal) { calls++ })

	axon.Trigger(gene.New("payload"))

	if calls != 2 {
		t.Fatalf("calls = %d, want 2 (snapshot taken before delivery began)", calls)
	}
}

func TestRelayFansOutToInnerReceptors(t *testing.T) {
	axon := NewAxon("spike")
	rel := NewRelay(axon, nil)
	seen := 0
	rel.AddInner(nil, func(Signal, Signal) { seen++ })
	rel.AddInner(nil, func(Signal, Signal) { seen++ })

	axon.Trigger(gene.New("payload"))

	if seen != 2 {
		t.Fatalf("seen = %d, want 2", seen)
	}
}

func TestRelayEmptyAfterAllInnerCancelled(t *testing.T) {
	axon := NewAxon("spike")
	rel := NewRelay(axon, nil)
	inner := rel.AddInner(nil, func(Signal, Signal) {})
	if rel.Empty() {
		t.Fatalf("Empty() = true with one inner receptor attached")
	}
	inner.Cancel()
	if !rel.Empty() {
		t.Fatalf("Empty() = false after its only inner receptor was cancelled")
	}
}

type fakePoster struct {
	posted []Signal
}

func (p *fakePoster) PostSignal(r *Receptor, signal Signal) {
	p.posted = append(p.posted, signal)
}

func TestSynapsePostsInsteadOfInvokingInline(t *testing.T) {
	axon := NewAxon("spike")
	poster := &fakePoster{}
	syn := NewSynapse(axon, nil, poster)
	invoked := false
	syn.AddInner(nil, func(Signal, Signal) { invoked = true })

	payload := gene.New("payload")
	axon.Trigger(payload)

	if invoked {
		t.Fatalf("synapse invoked its receiver inline, want it posted instead")
	}
	if len(poster.posted) != 1 || poster.posted[0] != payload {
		t.Fatalf("poster.posted = %v, want [payload]", poster.posted)
	}
}

func TestAwaitSettledWaitsForRelayInnerReceptorNotOuter(t *testing.T) {
	axon := NewAxon("spike")
	rel := NewRelay(axon, nil)
	inner := rel.AddInner(nil, func(Signal, Signal) {})

	waiters := rel.Receptor.AwaitSettled()
	if len(waiters) != 1 {
		t.Fatalf("len(waiters) = %d, want 1 (the single inner receptor)", len(waiters))
	}

	axon.Trigger(gene.New("payload"))

	select {
	case <-waiters[0]:
	default:
		t.Fatalf("inner receptor's settle channel not closed after delivery")
	}
	_ = inner
}
