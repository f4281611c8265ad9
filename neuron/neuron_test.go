package neuron

import (
	"testing"

	"github.com/xepl-run/xepl/gene"
	"github.com/xepl-run/xepl/synapse"
	"github.com/xepl-run/xepl/types"
)

func TestAddChildEldestFirstLookup(t *testing.T) {
	root := New(Config{Name: "root"})
	first := New(Config{Name: "item"})
	second := New(Config{Name: "item"})
	root.AddChild(first)
	root.AddChild(second)

	got, ok := root.ChildByName("item")
	if !ok || got != first {
		t.Fatalf("ChildByName(item) = %v, want the first-added child", got)
	}
}

func TestAddChildPropagatesHostLobe(t *testing.T) {
	root := New(Config{Name: "root"})
	root.SetHostLobe(fakePoster{})
	child := New(Config{Name: "child"})
	root.AddChild(child)
	if child.HostLobe() == nil {
		t.Fatalf("child.HostLobe() = nil, want inherited from parent")
	}
}

func TestPropertyRoundTrip(t *testing.T) {
	n := New(Config{Name: "n"})
	if _, ok := n.Property("color"); ok {
		t.Fatalf("Property(color) found on fresh neuron")
	}
	n.SetProperty("color", "blue")
	v, ok := n.Property("color")
	if !ok || v != "blue" {
		t.Fatalf("Property(color) = %q, %v, want blue, true", v, ok)
	}
}

func TestMethodRegistrationAndInvoke(t *testing.T) {
	n := New(Config{Name: "n"})
	called := false
	n.RegisterMethod("greet", func(n *Nucleus, callGene, codeGene *gene.Gene) error {
		called = true
		return nil
	})
	found, err := n.InvokeMethod("greet", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found || !called {
		t.Fatalf("found, called = %v, %v, want true, true", found, called)
	}
	if _, ok := n.shadows.GetFirstGene("methods"); !ok {
		t.Fatalf("shadows gene missing methods holder after registration")
	}
}

func TestMacroFallback(t *testing.T) {
	n := New(Config{Name: "n"})
	n.RegisterMacro("double", func(n *Nucleus, arg string) (string, bool, error) {
		return arg + arg, true, nil
	})
	v, truth, err := n.InvokeMacro("double", "ab")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !truth || v != "abab" {
		t.Fatalf("value, truth = %q, %v, want abab, true", v, truth)
	}
}

func TestDropIsIdempotentAndCancelsReceptors(t *testing.T) {
	axon := synapse.NewAxon("spike")
	n := New(Config{Name: "n"})
	r := synapse.Subscribe(axon, nil, nil, func(synapse.Signal, synapse.Signal) {})
	r.LinkInto(n.receptors)

	n.Drop()
	if axon.ReceptorCount() != 0 {
		t.Fatalf("ReceptorCount() after Drop = %d, want 0", axon.ReceptorCount())
	}
	n.Drop() // must not panic or double-cancel
}

func TestDropRecursesIntoChildren(t *testing.T) {
	root := New(Config{Name: "root"})
	child := New(Config{Name: "child"})
	root.AddChild(child)

	root.Drop()
	if !child.Has(types.FlagDropped) {
		t.Fatalf("child not dropped when parent dropped")
	}
}

func TestSynapseAxonCoalescesRelayPerParentAndAxon(t *testing.T) {
	axon := synapse.NewAxon("spike")
	parent := New(Config{Name: "parent"})
	childA := New(Config{Name: "a"})
	childB := New(Config{Name: "b"})
	parent.AddChild(childA)
	parent.AddChild(childB)

	seen := 0
	childA.SynapseAxon(axon, false, nil, nil, func(synapse.Signal, synapse.Signal) { seen++ })
	childB.SynapseAxon(axon, false, nil, nil, func(synapse.Signal, synapse.Signal) { seen++ })

	if len(parent.relays) != 1 {
		t.Fatalf("len(parent.relays) = %d, want 1 (coalesced)", len(parent.relays))
	}
	if axon.ReceptorCount() != 1 {
		t.Fatalf("axon.ReceptorCount() = %d, want 1 (one outer relay receptor)", axon.ReceptorCount())
	}

	axon.Trigger(gene.New("payload"))
	if seen != 2 {
		t.Fatalf("seen = %d, want 2 (both children fanned out to)", seen)
	}
}

type fakePoster struct{}

func (fakePoster) PostSignal(*synapse.Receptor, synapse.Signal) {}
