package defaults

import (
	"fmt"
	"io"
	"sync"

	"github.com/pkg/errors"
	"github.com/xepl-run/xepl/cortex"
	"github.com/xepl-run/xepl/gene"
	"github.com/xepl-run/xepl/neuron"
	"github.com/xepl-run/xepl/script"
	"github.com/xepl-run/xepl/synapse"
)

// dispatcher is the slice of a running lobe the built-in keywords need
// beyond script.Context: the ability to run a child gene back through the
// keyword-dispatch algorithm. lobe.Lobe satisfies this; every KeywordFunc
// receives one cast from the ctx it's handed, matching the methodInvoker/
// dispatcher local-interface idiom lobe/dispatch.go already uses to avoid
// an import of package lobe here.
type dispatcher interface {
	script.Context
	DispatchGene(g *gene.Gene) error
}

// childAdder and methodRegistrar narrow ctx.ActiveNeuron() (a
// script.NeuronHandle) down to the concrete neuron.Nucleus operations
// Neuron/Methods need; both lobe.Lobe and neuron.Nucleus satisfy them
// through method promotion.
type childAdder interface {
	AddChild(*neuron.Nucleus)
}

type methodRegistrar interface {
	RegisterMethod(name string, fn neuron.MethodFunc)
}

type axoner interface {
	Axon(name string) *synapse.Axon
}

var autoCounter int64
var autoMu sync.Mutex

func nextAutoName(prefix string) string {
	autoMu.Lock()
	defer autoMu.Unlock()
	autoCounter++
	return fmt.Sprintf("%s%d", prefix, autoCounter)
}

func registerKeywords(c *cortex.Cortex, out io.Writer) {
	c.RegisterKeyword("Print", printKeyword(out))
	c.RegisterKeyword("Repeat", repeatKeyword)
	c.RegisterKeyword("Yes", ifYesKeyword)
	c.RegisterKeyword("No", ifNoKeyword)
	c.RegisterKeyword("Properties", propertiesKeyword)
	c.RegisterKeyword("Method", methodKeyword)
	c.RegisterKeyword("Methods", methodsKeyword)
	c.RegisterKeyword("Neuron", neuronKeyword)
	c.RegisterKeyword("Trigger", triggerKeyword)
}

// processInnerGenes dispatches every child of g in document order,
// reporting (not aborting on) a per-child error, matching "the evaluator
// aborts the current statement but the lobe keeps running."
func processInnerGenes(ctx script.Context, d dispatcher, g *gene.Gene) {
	for _, inner := range g.Children() {
		if err := d.DispatchGene(inner); err != nil {
			ctx.ReportError(err)
		}
	}
}

// printKeyword prints param followed by a newline to out under a lock
// owned by this one registration (output_lock in the teacher kit,
// guarding concurrent printers across lobes), then processes any inner
// genes. Grounded on
// xepl_keyword_kit.hpp's Keyword_Print.
func printKeyword(out io.Writer) lobeKeywordFunc {
	var mu sync.Mutex
	return func(ctx script.Context, callGene *gene.Gene, param string) error {
		mu.Lock()
		fmt.Fprintln(out, param)
		mu.Unlock()
		if d, ok := ctx.(dispatcher); ok && callGene.ChildCount() > 0 {
			processInnerGenes(ctx, d, callGene)
		}
		return nil
	}
}

// lobeKeywordFunc is an alias kept local to this file purely for
// readability at the registration call sites above.
type lobeKeywordFunc = func(ctx script.Context, callGene *gene.Gene, param string) error

// repeatKeyword runs callGene's inner genes param times, param parsed as
// a plain integer (strtol semantics: non-numeric is 0). Grounded on
// Keyword_Repeat; there is no built-in loop-variable binding, matching
// the original, which leaves iteration state entirely to the caller's
// own RNA.
func repeatKeyword(ctx script.Context, callGene *gene.Gene, param string) error {
	count := numberFrom(param)
	if count < 1 || callGene.ChildCount() == 0 {
		return nil
	}
	d, ok := ctx.(dispatcher)
	if !ok {
		return errors.New("Repeat: context does not support gene dispatch")
	}
	for ; count > 0; count-- {
		processInnerGenes(ctx, d, callGene)
	}
	return nil
}

// ifYesKeyword and ifNoKeyword re-evaluate callGene's raw content for its
// truth bit (the pre-computed param string alone can't carry truth), then
// run inner genes only if the branch's condition matches. Grounded on
// Keyword_IfYes/Keyword_IfNo.
func ifYesKeyword(ctx script.Context, callGene *gene.Gene, _ string) error {
	return runBranch(ctx, callGene, true)
}

func ifNoKeyword(ctx script.Context, callGene *gene.Gene, _ string) error {
	return runBranch(ctx, callGene, false)
}

func runBranch(ctx script.Context, callGene *gene.Gene, want bool) error {
	_, truth, err := script.Evaluate(ctx, callGene.Content().String())
	if err != nil {
		ctx.ReportError(err)
	}
	if truth != want {
		return nil
	}
	d, ok := ctx.(dispatcher)
	if !ok {
		return nil
	}
	processInnerGenes(ctx, d, callGene)
	return nil
}

// propertiesKeyword evaluates each inner gene's content as RNA and sets
// the result as a property on the active neuron under that gene's name.
// Grounded on Keyword_Properties.
func propertiesKeyword(ctx script.Context, callGene *gene.Gene, _ string) error {
	active := ctx.ActiveNeuron()
	if active == nil {
		return errors.New("Properties: no active neuron")
	}
	for _, inner := range callGene.Children() {
		v, _, err := script.Evaluate(ctx, inner.Content().String())
		if err != nil {
			ctx.ReportError(err)
			continue
		}
		active.SetProperty(inner.Name.String(), v)
	}
	return nil
}

// methodKeyword registers a single method named by callGene's "name" trait,
// with callGene itself standing in as the code gene: its content and
// children are the method body. Grounded on spec scenario 3's
// "<Method name='Speak'><Print>...</Print></Method>" shape, the singular
// counterpart to xepl_keyword_kit.hpp's batch-oriented Keyword_Methods.
func methodKeyword(ctx script.Context, callGene *gene.Gene, _ string) error {
	active := ctx.ActiveNeuron()
	registrar, ok := active.(methodRegistrar)
	if !ok {
		return errors.New("Method: active neuron cannot register methods")
	}
	name, _ := callGene.TraitGet("name")
	if name == "" {
		return errors.New("Method: missing name trait")
	}
	registrar.RegisterMethod(name, methodBody(ctx, callGene))
	return nil
}

// methodsKeyword registers one neuron method per inner gene of <Methods>,
// each bound to the inner gene as its code gene. Grounded on
// xepl_keyword_kit.hpp's Keyword_Methods (the plural batch-register form)
// together with xepl.cc's Method_Execute.
func methodsKeyword(ctx script.Context, callGene *gene.Gene, _ string) error {
	active := ctx.ActiveNeuron()
	registrar, ok := active.(methodRegistrar)
	if !ok {
		return errors.New("Methods: active neuron cannot register methods")
	}
	for _, inner := range callGene.Children() {
		registrar.RegisterMethod(inner.Name.String(), methodBody(ctx, inner))
	}
	return nil
}

// methodBody closes over the registering dispatch's ctx (always the lobe
// that owns the registering neuron, since a neuron's methods only ever
// fire back on that same lobe's thread) and codeGene (the gene bound at
// registration). The neuron.MethodFunc's own callGene/codeGene parameters
// come from lobe.DispatchGene's invokeMethodOn, which - not having a
// second gene to offer - passes the invoking call gene for both; the
// closure ignores that second parameter and uses its own codeGene
// instead, matching the original's pairing of one bound gene per
// registered method rather than one supplied per call.
func methodBody(ctx script.Context, codeGene *gene.Gene) neuron.MethodFunc {
	return func(_ *neuron.Nucleus, callGene, _ *gene.Gene) error {
		d, ok := ctx.(dispatcher)
		if !ok {
			return errors.New("method invoked outside a dispatching lobe")
		}
		locals := ctx.Locals()
		for _, tr := range callGene.Traits() {
			locals.TraitSet(tr.Name, tr.Value)
		}
		if content := callGene.Content().String(); content != "" {
			if _, _, err := script.Evaluate(ctx, content); err != nil {
				ctx.ReportError(err)
			}
		}
		if content := codeGene.Content().String(); content != "" {
			if _, _, err := script.Evaluate(ctx, content); err != nil {
				ctx.ReportError(err)
			}
		}
		processInnerGenes(ctx, d, codeGene)
		return nil
	}
}

// neuronKeyword creates a child neuron under the active one, named by
// callGene's "name" trait ("auto" or absent generates one), then
// dispatches callGene's inner genes with the new neuron active. Grounded
// on Keyword_Neuron.
func neuronKeyword(ctx script.Context, callGene *gene.Gene, _ string) error {
	active := ctx.ActiveNeuron()
	adder, ok := active.(childAdder)
	if !ok {
		return errors.New("Neuron: active neuron cannot hold children")
	}
	name, _ := callGene.TraitGet("name")
	if name == "" || name == "auto" {
		name = nextAutoName("Neuron")
	}
	child := neuron.New(neuron.Config{Name: name})
	adder.AddChild(child)

	d, ok := ctx.(dispatcher)
	if !ok {
		return nil
	}
	prev := ctx.ActiveNeuron()
	ctx.SetActiveNeuron(child)
	processInnerGenes(ctx, d, callGene)
	ctx.SetActiveNeuron(prev)
	return nil
}

// triggerKeyword fires the axon named param on the active neuron with
// the active gene as the signal, creating the axon on first use (a Hunt-
// then-create, simpler than the original's pure hunt since this runtime
// has no separate axon pre-declaration requirement for Trigger to work).
// Grounded on Keyword_Trigger.
func triggerKeyword(ctx script.Context, callGene *gene.Gene, param string) error {
	if param == "" {
		return errors.New("Trigger: missing axon name")
	}
	active := ctx.ActiveNeuron()
	ax, ok := active.(axoner)
	if !ok {
		return errors.Errorf("Trigger: active neuron has no axons")
	}
	signal := ctx.ActiveGene()
	if geneName, ok := callGene.TraitGet("gene"); ok {
		if g, found := ctx.Locals().GetFirstGene(geneName); found {
			signal = g
		}
	}
	if signal == nil {
		signal = callGene
	}
	ax.Axon(param).Trigger(signal)
	return nil
}
