package lobe

import (
	"testing"
	"time"

	"github.com/xepl-run/xepl/gene"
	"github.com/xepl-run/xepl/neuron"
	"github.com/xepl-run/xepl/script"
	"github.com/xepl-run/xepl/synapse"
)

type fakeDispatcher struct {
	operators map[string]script.OperatorFunc
	mutuals   map[string]script.MutualFunc
	keywords  map[string]KeywordFunc
	commands  map[string]CommandFunc
	renders   map[string]RenderFunc
}

func newFakeDispatcher() *fakeDispatcher {
	return &fakeDispatcher{
		operators: map[string]script.OperatorFunc{},
		mutuals:   map[string]script.MutualFunc{},
		keywords:  map[string]KeywordFunc{},
		commands:  map[string]CommandFunc{},
		renders:   map[string]RenderFunc{},
	}
}

func (d *fakeDispatcher) Operator(name string) (script.OperatorFunc, bool) { v, ok := d.operators[name]; return v, ok }
func (d *fakeDispatcher) Mutual(name string) (script.MutualFunc, bool)     { v, ok := d.mutuals[name]; return v, ok }
func (d *fakeDispatcher) Keyword(name string) (KeywordFunc, bool)          { v, ok := d.keywords[name]; return v, ok }
func (d *fakeDispatcher) Command(name string) (CommandFunc, bool)          { v, ok := d.commands[name]; return v, ok }
func (d *fakeDispatcher) Render(name string) (RenderFunc, bool)            { v, ok := d.renders[name]; return v, ok }

func TestCloseDispatchClearsLocalsAndEphemeralsAndIndex(t *testing.T) {
	l := New("l", newFakeDispatcher(), nil, nil, nil)
	l.Locals().TraitSet("x", "1")
	l.SetEphemeral("e", gene.New("e"))
	l.SetActiveGene(gene.New("g"))

	l.closeDispatch()

	if _, ok := l.Ephemeral("e"); ok {
		t.Fatalf("ephemeral survived closeDispatch")
	}
	if _, ok := l.IndexFrame(0); ok {
		t.Fatalf("index frame survived closeDispatch")
	}
	if l.locals != nil {
		t.Fatalf("locals survived closeDispatch")
	}
}

func TestStopDrainsMailboxAndJoinsThread(t *testing.T) {
	l := New("l", newFakeDispatcher(), nil, nil, nil)
	l.Start(nil)
	l.Stop()

	if !l.mailbox.IsEmpty() {
		t.Fatalf("mailbox not empty after Stop")
	}
	if !l.mailbox.IsClosed() {
		t.Fatalf("mailbox not closed after Stop")
	}
}

func TestCrossLobeSignalDeliversExactlyOnceOnTargetLobe(t *testing.T) {
	disp := newFakeDispatcher()
	parent := New("parent", disp, nil, nil, nil)
	child := New("child", disp, parent, nil, nil)
	parent.AddChild(child.Nucleus)

	axon := child.Axon("a")
	var ran int
	done := make(chan struct{}, 1)
	child.SynapseAxon(axon, true, child, nil, func(signal synapse.Signal, memento synapse.Signal) {
		ran++
		done <- struct{}{}
	})

	child.Start(nil)
	defer child.Stop()

	axon.Trigger(gene.New("payload"))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("signal not delivered to child lobe within timeout")
	}

	if ran != 1 {
		t.Fatalf("ran = %d, want 1", ran)
	}
}

func TestDispatchGeneFallsThroughToNeuronMethod(t *testing.T) {
	disp := newFakeDispatcher()
	l := New("l", disp, nil, nil, nil)
	l.SetActiveNeuron(l.Nucleus)

	called := false
	l.RegisterMethod("Greet", func(n *neuron.Nucleus, callGene, codeGene *gene.Gene) error {
		called = true
		return nil
	})

	if err := l.DispatchGene(gene.New("Greet")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatalf("neuron method was not invoked by dispatch fallback")
	}
}

func TestDispatchGeneReportsStatementNotFound(t *testing.T) {
	disp := newFakeDispatcher()
	l := New("l", disp, nil, nil, nil)
	l.SetActiveNeuron(l.Nucleus)

	if err := l.DispatchGene(gene.New("Nowhere")); err == nil {
		t.Fatalf("expected statement-not-found error, got nil")
	}
}
