package script

import (
	"testing"

	"github.com/xepl-run/xepl/gene"
)

// fakeNeuron is the smallest NeuronHandle that exercises property hunt and
// macro fallback without pulling in the neuron package (which depends on
// script to evaluate methods, so importing it here would cycle).
type fakeNeuron struct {
	name       string
	parent     *fakeNeuron
	properties map[string]string
	macros     map[string]func(string) (string, bool, error)
}

func newFakeNeuron(name string) *fakeNeuron {
	return &fakeNeuron{name: name, properties: map[string]string{}, macros: map[string]func(string) (string, bool, error){}}
}

func (n *fakeNeuron) Name() string { return n.name }
func (n *fakeNeuron) Parent() (NeuronHandle, bool) {
	if n.parent == nil {
		return nil, false
	}
	return n.parent, true
}
func (n *fakeNeuron) FindChild(name string) (NeuronHandle, bool) { return nil, false }
func (n *fakeNeuron) Property(name string) (string, bool) {
	v, ok := n.properties[name]
	return v, ok
}
func (n *fakeNeuron) SetProperty(name, value string) { n.properties[name] = value }
func (n *fakeNeuron) InvokeMacro(name, param string) (string, bool, error) {
	if m, ok := n.macros[name]; ok {
		return m(param)
	}
	return "", false, errNotFound(name)
}

type errNotFound string

func (e errNotFound) Error() string { return "macro not found: " + string(e) }

type fakeRegistry struct {
	operators map[string]OperatorFunc
	mutuals   map[string]MutualFunc
}

func (r *fakeRegistry) Operator(name string) (OperatorFunc, bool) { op, ok := r.operators[name]; return op, ok }
func (r *fakeRegistry) Mutual(name string) (MutualFunc, bool)     { m, ok := r.mutuals[name]; return m, ok }

type fakeContext struct {
	reg          *fakeRegistry
	activeNeuron NeuronHandle
	activeGene   *gene.Gene
	outdex       *gene.Gene
	locals       *gene.Gene
	ephemerals   map[string]*gene.Gene
	shortTerm    map[string]string
	errs         []error
}

func newFakeContext() *fakeContext {
	return &fakeContext{
		reg:        &fakeRegistry{operators: map[string]OperatorFunc{}, mutuals: map[string]MutualFunc{}},
		ephemerals: map[string]*gene.Gene{},
		shortTerm:  map[string]string{},
	}
}

func (c *fakeContext) Registry() Registry                 { return c.reg }
func (c *fakeContext) ActiveNeuron() NeuronHandle          { return c.activeNeuron }
func (c *fakeContext) SetActiveNeuron(n NeuronHandle)      { c.activeNeuron = n }
func (c *fakeContext) ActiveGene() *gene.Gene              { return c.activeGene }
func (c *fakeContext) SetActiveGene(g *gene.Gene)          { c.activeGene = g }
func (c *fakeContext) Outdex() *gene.Gene                  { return c.outdex }
func (c *fakeContext) SetOutdex(g *gene.Gene)              { c.outdex = g }
func (c *fakeContext) IndexFrame(depth int) (*gene.Gene, bool) {
	if depth == 0 && c.activeGene != nil {
		return c.activeGene, true
	}
	return nil, false
}
func (c *fakeContext) Locals() *gene.Gene {
	if c.locals == nil {
		c.locals = gene.New("Locals")
	}
	return c.locals
}
func (c *fakeContext) Ephemeral(name string) (*gene.Gene, bool) { g, ok := c.ephemerals[name]; return g, ok }
func (c *fakeContext) SetEphemeral(name string, g *gene.Gene)   { c.ephemerals[name] = g }
func (c *fakeContext) ShortTermGet(name string) (string, bool) { v, ok := c.shortTerm[name]; return v, ok }
func (c *fakeContext) ShortTermSet(name, value string)         { c.shortTerm[name] = value }
func (c *fakeContext) ReportError(err error)                   { c.errs = append(c.errs, err) }

func TestEvaluateStringLiteral(t *testing.T) {
	ctx := newFakeContext()
	v, _, err := Evaluate(ctx, `'hello'`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "hello" {
		t.Fatalf("value = %q, want hello", v)
	}
}

func TestEvaluateSpaceOperator(t *testing.T) {
	ctx := newFakeContext()
	ctx.reg.operators["space"] = func(s *Script, rhs string) error {
		s.Value = s.Value + " " + rhs
		return nil
	}
	v, _, err := Evaluate(ctx, `'Hello,'.space('World!')`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "Hello, World!" {
		t.Fatalf("value = %q, want %q", v, "Hello, World!")
	}
}

func TestEvaluatePropertyHuntWalksUpParents(t *testing.T) {
	grandparent := newFakeNeuron("root")
	grandparent.properties["color"] = "blue"
	parent := newFakeNeuron("mid")
	parent.parent = grandparent
	child := newFakeNeuron("leaf")
	child.parent = parent

	ctx := newFakeContext()
	ctx.activeNeuron = child

	v, _, err := Evaluate(ctx, `color`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "blue" {
		t.Fatalf("value = %q, want blue (property hunt should walk to grandparent)", v)
	}
}

func TestEvaluateLocalAssignAndRead(t *testing.T) {
	ctx := newFakeContext()
	if _, _, err := Evaluate(ctx, `%count='1'`); err != nil {
		t.Fatalf("assign error: %v", err)
	}
	v, _, err := Evaluate(ctx, `%count`)
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	if v != "1" {
		t.Fatalf("value = %q, want 1", v)
	}
}

func TestEvaluateTraitStepReadAndWrite(t *testing.T) {
	ctx := newFakeContext()
	g := gene.New("thing")
	g.TraitSet("size", "small")
	ctx.activeGene = g
	ctx.outdex = g // "$$" re-enters the already-active gene as a nav primary

	v, truth, err := Evaluate(ctx, `$$'size'`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !truth || v != "small" {
		t.Fatalf("value,truth = %q,%v want small,true", v, truth)
	}

	if _, _, err := Evaluate(ctx, `$$'size'='large'`); err != nil {
		t.Fatalf("write error: %v", err)
	}
	if got, _ := g.TraitGet("size"); got != "large" {
		t.Fatalf("trait size = %q, want large", got)
	}
}

func TestEvaluateTernaryTakesElseBranchWhenTruthFalse(t *testing.T) {
	ctx := newFakeContext()
	v, _, err := Evaluate(ctx, `?'yes':'no'`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "no" {
		t.Fatalf("value = %q, want no (truth bit starts false)", v)
	}
}

func TestSubstituteEmbeddedScriptPrePass(t *testing.T) {
	ctx := newFakeContext()
	v := Substitute(ctx, `prefix-{{'mid'}}-suffix`)
	if v != "prefix-mid-suffix" {
		t.Fatalf("value = %q, want prefix-mid-suffix", v)
	}
}
