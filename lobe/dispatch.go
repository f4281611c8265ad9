package lobe

import (
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/xepl-run/xepl/gene"
	"github.com/xepl-run/xepl/script"
	"github.com/xepl-run/xepl/synapse"
)

// KeywordFunc backs a gene-name keyword registration: run when a child of
// a code gene matches a name in the Dispatcher's keyword table.
type KeywordFunc func(ctx script.Context, callGene *gene.Gene, param string) error

// CommandFunc backs a CLI or Command-keyword invocation.
type CommandFunc func(param string) error

// RenderFunc backs a gene-name render registration, invoked by a rendon
// when no keyword claims the gene.
type RenderFunc func(n script.NeuronHandle, g *gene.Gene, out *strings.Builder) error

// Dispatcher is everything a Lobe needs from the process-wide registry: the
// RNA operator/mutual tables (script.Registry) plus the keyword/command/
// render tables keyword dispatch and rendering consult. cortex.Cortex
// implements this; lobe never imports cortex, breaking what would
// otherwise be a cycle (cortex constructs and owns lobes).
type Dispatcher interface {
	script.Registry
	Keyword(name string) (KeywordFunc, bool)
	Command(name string) (CommandFunc, bool)
	Render(name string) (RenderFunc, bool)
}

// errStatementNotFound is reported when gene dispatch exhausts every
// resolution rule in 4.5: no keyword, no neuron method, no dotted target,
// no active rendon.
var errStatementNotFound = errors.New("statement not found")

// DispatchGene runs the keyword-dispatch algorithm against callGene, whose
// name identifies what to do: a registered keyword, a neuron method on the
// active neuron, a "target.method" dotted call, or (falling through) the
// active rendon's markup. Grounded on the teacher's message-handler switch
// idiom (component dispatch by message kind), retargeted onto the five-way
// name-keyed lookup the interpreter requires.
func (l *Lobe) DispatchGene(callGene *gene.Gene) error {
	evalGene := callGene.DuplicateGene()
	if err := evalGene.EvaluateTraits(evaluatorFunc(func(source string) (string, bool, error) {
		return script.Evaluate(l, source)
	})); err != nil {
		l.ReportError(err)
	}

	name := evalGene.Name.String()
	correlationID := uuid.New().String()
	path := neuronPath(l.activeNeuron)

	if kw, ok := l.registry.Keyword(name); ok {
		param := l.evaluateKeywordParam(evalGene)
		l.reporter.Dispatch(l.Name(), "keyword", path, name, correlationID)
		return kw(l, evalGene, param)
	}

	if active := l.activeNeuron; active != nil {
		if invoked, err := l.invokeMethodOn(active, name, evalGene); invoked {
			l.reporter.Dispatch(l.Name(), "method", path, name, correlationID)
			return err
		}
	}

	if dot := strings.IndexByte(name, '.'); dot > 0 {
		targetName, method := name[:dot], name[dot+1:]
		if target, ok := l.resolveNeuronPath(targetName); ok {
			if invoked, err := l.invokeMethodOn(target, method, evalGene); invoked {
				l.reporter.Dispatch(l.Name(), "method", path, name, correlationID)
				return err
			}
		}
	}

	if l.activeRendon != nil {
		l.reporter.Dispatch(l.Name(), "render", path, name, correlationID)
		l.activeRendon.Markup(l.activeNeuron, evalGene, &l.outputString)
		return nil
	}

	return errors.Wrapf(errStatementNotFound, "%s", name)
}

// evaluatorFunc adapts a plain function to gene.TraitEvaluator, the same
// func-as-interface idiom as http.HandlerFunc.
type evaluatorFunc func(string) (string, bool, error)

func (f evaluatorFunc) Evaluate(source string) (string, bool, error) { return f(source) }

// neuronPath walks n up to the root via Parent, joining names with "/", for
// the §6 dispatch-trace line's {neuron-path} field. An unset active neuron
// renders as "-".
func neuronPath(n script.NeuronHandle) string {
	if n == nil {
		return "-"
	}
	var parts []string
	for cur := n; cur != nil; {
		parts = append(parts, cur.Name())
		parent, ok := cur.Parent()
		if !ok {
			break
		}
		cur = parent
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "/")
}

// evaluateKeywordParam implements "evaluate {…}-prefixed content into a
// param string" (§4.5): a {{...}} pre-pass always runs, but the result is
// only handed to the full RNA evaluator when it is itself brace-prefixed;
// otherwise it is the keyword's param verbatim, so a keyword receiving
// plain text content (e.g. ", World!") gets that text unchanged rather
// than a parse error from RNA's grammar.
func (l *Lobe) evaluateKeywordParam(callGene *gene.Gene) string {
	substituted := script.Substitute(l, callGene.Content().String())
	if !strings.HasPrefix(substituted, "{") {
		return substituted
	}
	v, _, err := script.Evaluate(l, substituted)
	if err != nil {
		l.ReportError(err)
	}
	return v
}

// invokeMethodOn calls handle's InvokeMethod, if handle exposes one, with
// callGene as both the call gene and the code gene, reporting whether a
// method registered under name was found at all. RNA macros live in a
// separate table on a concrete Nucleus and are not consulted here.
func (l *Lobe) invokeMethodOn(handle script.NeuronHandle, name string, callGene *gene.Gene) (bool, error) {
	type methodInvoker interface {
		InvokeMethod(name string, callGene, codeGene *gene.Gene) (bool, error)
	}
	mi, ok := handle.(methodInvoker)
	if !ok {
		return false, nil
	}
	return mi.InvokeMethod(name, callGene, callGene)
}

// resolveNeuronPath walks from the active neuron upward, then across via
// FindChild, to locate a neuron named targetName. Dotted dispatch only
// ever targets a direct child of some ancestor, matching the source's
// "target.method" grammar.
func (l *Lobe) resolveNeuronPath(targetName string) (script.NeuronHandle, bool) {
	for n := l.activeNeuron; n != nil; {
		if n.Name() == targetName {
			return n, true
		}
		if child, ok := n.FindChild(targetName); ok {
			return child, true
		}
		parent, ok := n.Parent()
		if !ok {
			break
		}
		n = parent
	}
	return nil, false
}

// TriggerWait fires axon with signal and blocks the calling goroutine
// until every current subscriber has finished running it, including ones
// reached cross-lobe through a Synapse. Same-lobe subscribers already run
// inline during Trigger, so their completion channels are closed before
// Trigger even returns; TriggerWait only actually blocks on the
// cross-lobe ones, matching "if delivery happens to be entirely on the
// origin's lobe, no wait occurs."
func (l *Lobe) TriggerWait(axon *synapse.Axon, signal synapse.Signal) {
	var waiters []<-chan struct{}
	for _, r := range axon.Receptors() {
		waiters = append(waiters, r.AwaitSettled()...)
	}
	axon.Trigger(signal)
	for _, w := range waiters {
		<-w
	}
}
