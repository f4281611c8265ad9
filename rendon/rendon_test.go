package rendon

import (
	"strings"
	"testing"

	"github.com/xepl-run/xepl/gene"
	"github.com/xepl-run/xepl/lobe"
	"github.com/xepl-run/xepl/script"
)

type fakeRenders struct {
	renders map[string]lobe.RenderFunc
}

func (f *fakeRenders) Render(name string) (lobe.RenderFunc, bool) {
	fn, ok := f.renders[name]
	return fn, ok
}

type fakePusher struct {
	active lobe.RendonHandle
}

func (f *fakePusher) PushRendon(h lobe.RendonHandle) lobe.RendonHandle {
	prev := f.active
	f.active = h
	return prev
}

func (f *fakePusher) PopRendon(h lobe.RendonHandle) { f.active = h }

func TestMarkupPrefersRegisteredRenderOverXMLFallback(t *testing.T) {
	renders := &fakeRenders{renders: map[string]lobe.RenderFunc{
		"Greeting": func(n script.NeuronHandle, g *gene.Gene, out *strings.Builder) error {
			out.WriteString("hello")
			return nil
		},
	}}
	host := &fakePusher{}
	r := Push(host, renders)
	defer r.Pop()

	var out strings.Builder
	r.Markup(nil, gene.New("Greeting"), &out)

	if out.String() != "hello" {
		t.Fatalf("out = %q, want %q", out.String(), "hello")
	}
}

func TestMarkupFallsBackToXMLWhenNoRenderRegistered(t *testing.T) {
	r := Push(&fakePusher{}, &fakeRenders{renders: map[string]lobe.RenderFunc{}})
	defer r.Pop()

	g := gene.New("leaf")
	g.TraitSet("id", "1")

	var out strings.Builder
	r.Markup(nil, g, &out)

	want := `<leaf id="1"/>`
	if out.String() != want {
		t.Fatalf("out = %q, want %q", out.String(), want)
	}
}

func TestMarkupFallsBackToXMLWhenRegisteredRenderErrors(t *testing.T) {
	renders := &fakeRenders{renders: map[string]lobe.RenderFunc{
		"broken": func(n script.NeuronHandle, g *gene.Gene, out *strings.Builder) error {
			return errFake
		},
	}}
	r := Push(&fakePusher{}, renders)
	defer r.Pop()

	var out strings.Builder
	r.Markup(nil, gene.New("broken"), &out)

	if out.String() != "<broken/>" {
		t.Fatalf("out = %q, want %q", out.String(), "<broken/>")
	}
}

func TestMarkupRendersChildrenRecursivelyInXMLFallback(t *testing.T) {
	r := Push(&fakePusher{}, &fakeRenders{renders: map[string]lobe.RenderFunc{}})
	defer r.Pop()

	parent := gene.New("parent")
	child := gene.New("child")
	child.SetContent("hi")
	parent.AddGene(child)

	var out strings.Builder
	r.Markup(nil, parent, &out)

	want := "<parent><child>hi</child></parent>"
	if out.String() != want {
		t.Fatalf("out = %q, want %q", out.String(), want)
	}
}

func TestPushInstallsAndPopRestoresPreviousRendon(t *testing.T) {
	host := &fakePusher{}
	renders := &fakeRenders{renders: map[string]lobe.RenderFunc{}}

	outer := Push(host, renders)
	if host.active != lobe.RendonHandle(outer) {
		t.Fatalf("outer rendon not installed as active")
	}

	inner := Push(host, renders)
	if host.active != lobe.RendonHandle(inner) {
		t.Fatalf("inner rendon not installed as active")
	}

	inner.Pop()
	if host.active != lobe.RendonHandle(outer) {
		t.Fatalf("popping inner did not restore outer")
	}

	outer.Pop()
	if host.active != nil {
		t.Fatalf("popping outer did not restore nil")
	}
}

var errFake = &fakeError{"render failed"}

type fakeError struct{ msg string }

func (e *fakeError) Error() string { return e.msg }
