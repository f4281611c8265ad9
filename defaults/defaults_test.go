package defaults_test

import (
	"strings"
	"testing"

	"github.com/xepl-run/xepl/cortex"
	"github.com/xepl-run/xepl/defaults"
	"github.com/xepl-run/xepl/gene"
	"github.com/xepl-run/xepl/lobe"
	"github.com/xepl-run/xepl/script"
)

func newTestLobe(t *testing.T, out *strings.Builder) (*cortex.Cortex, *lobe.Lobe) {
	t.Helper()
	c := cortex.New(cortex.DefaultConfig(), nil)
	defaults.Register(c, out)
	l := lobe.New("test", c, nil, nil, nil)
	return c, l
}

func TestSpaceOperatorJoinsTwoLiterals(t *testing.T) {
	var out strings.Builder
	_, l := newTestLobe(t, &out)

	v, _, err := script.Evaluate(l, "'Hello,'.space('World!')")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if v != "Hello, World!" {
		t.Fatalf("v = %q, want %q", v, "Hello, World!")
	}
}

func TestPrintKeywordWritesParamAndNewline(t *testing.T) {
	var out strings.Builder
	_, l := newTestLobe(t, &out)

	g := gene.New("Print")
	g.SetContent("hi there")

	if err := l.DispatchGene(g); err != nil {
		t.Fatalf("DispatchGene: %v", err)
	}
	if out.String() != "hi there\n" {
		t.Fatalf("out = %q, want %q", out.String(), "hi there\n")
	}
}

func TestRepeatKeywordRunsInnerGenesCountTimes(t *testing.T) {
	var out strings.Builder
	_, l := newTestLobe(t, &out)

	inner := gene.New("Print")
	inner.SetContent("tick")
	repeat := gene.New("Repeat")
	repeat.SetContent("3")
	repeat.AddGene(inner)

	if err := l.DispatchGene(repeat); err != nil {
		t.Fatalf("DispatchGene: %v", err)
	}
	want := "tick\ntick\ntick\n"
	if out.String() != want {
		t.Fatalf("out = %q, want %q", out.String(), want)
	}
}

func TestRepeatKeywordSkipsWhenCountIsZeroOrLess(t *testing.T) {
	var out strings.Builder
	_, l := newTestLobe(t, &out)

	inner := gene.New("Print")
	inner.SetContent("never")
	repeat := gene.New("Repeat")
	repeat.SetContent("0")
	repeat.AddGene(inner)

	if err := l.DispatchGene(repeat); err != nil {
		t.Fatalf("DispatchGene: %v", err)
	}
	if out.String() != "" {
		t.Fatalf("out = %q, want empty", out.String())
	}
}

func TestMethodsKeywordRegistersAndDispatchInvokes(t *testing.T) {
	var out strings.Builder
	_, l := newTestLobe(t, &out)

	greet := gene.New("Greet")
	body := gene.New("Print")
	body.SetContent("{%to}")
	greet.AddGene(body)

	methods := gene.New("Methods")
	methods.AddGene(greet)

	if err := l.DispatchGene(methods); err != nil {
		t.Fatalf("registering Methods: %v", err)
	}

	call := gene.New("Greet")
	call.TraitSet("to", "World")
	if err := l.DispatchGene(call); err != nil {
		t.Fatalf("invoking Greet: %v", err)
	}
	if out.String() != "World\n" {
		t.Fatalf("out = %q, want %q", out.String(), "World\n")
	}
}

func TestIfYesKeywordRunsInnerGenesOnlyWhenTrue(t *testing.T) {
	var out strings.Builder
	_, l := newTestLobe(t, &out)

	inner := gene.New("Print")
	inner.SetContent("shown")
	yes := gene.New("Yes")
	yes.SetContent("{'x'.is('x')}")
	yes.AddGene(inner)

	if err := l.DispatchGene(yes); err != nil {
		t.Fatalf("DispatchGene: %v", err)
	}
	if out.String() != "shown\n" {
		t.Fatalf("out = %q, want %q", out.String(), "shown\n")
	}
}

func TestIfNoKeywordSkipsInnerGenesWhenTrue(t *testing.T) {
	var out strings.Builder
	_, l := newTestLobe(t, &out)

	inner := gene.New("Print")
	inner.SetContent("hidden")
	no := gene.New("No")
	no.SetContent("{'x'.is('x')}")
	no.AddGene(inner)

	if err := l.DispatchGene(no); err != nil {
		t.Fatalf("DispatchGene: %v", err)
	}
	if out.String() != "" {
		t.Fatalf("out = %q, want empty", out.String())
	}
}

func TestNumericOperators(t *testing.T) {
	var out strings.Builder
	_, l := newTestLobe(t, &out)

	cases := []struct {
		expr string
		want string
	}{
		{"'2'.add('3')", "5"},
		{"'5'.sub('2')", "3"},
		{"'4'.mul('3')", "12"},
	}
	for _, c := range cases {
		v, _, err := script.Evaluate(l, c.expr)
		if err != nil {
			t.Fatalf("Evaluate(%q): %v", c.expr, err)
		}
		if v != c.want {
			t.Fatalf("Evaluate(%q) = %q, want %q", c.expr, v, c.want)
		}
	}
}

func TestRepeatWithShortTermRebindingDecrementsEachIteration(t *testing.T) {
	var out strings.Builder
	_, l := newTestLobe(t, &out)

	print := gene.New("Print")
	print.SetContent("{;iter}")
	decrement := gene.New("No")
	decrement.SetContent(";iter={;iter.sub(1)}")

	repeat := gene.New("Repeat")
	repeat.SetContent("3")
	repeat.AddGene(print)
	repeat.AddGene(decrement)

	l.PushShortTerm()
	l.ShortTermSet("iter", "2")
	if err := l.DispatchGene(repeat); err != nil {
		t.Fatalf("DispatchGene: %v", err)
	}
	l.PopShortTerm()

	want := "2\n1\n0\n"
	if out.String() != want {
		t.Fatalf("out = %q, want %q (iter must actually decrement through RNA each iteration, not stay fixed)", out.String(), want)
	}
	if _, ok := l.ShortTermGet("iter"); ok {
		t.Fatalf("iter resolvable after scope exit, want unresolved")
	}
}

func TestMutualMeResolvesToActiveNeuronObserver(t *testing.T) {
	var out strings.Builder
	_, l := newTestLobe(t, &out)
	l.SetProperty("name", "root-value")

	v, _, err := script.Evaluate(l, "$me'name'")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if v != "root-value" {
		t.Fatalf("v = %q, want %q", v, "root-value")
	}
}
