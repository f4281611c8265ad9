// Package script implements RNA: the inline expression language evaluated
// against a gene and a neuron's dynamic scope. Grounded on the teacher's
// interfaces.go idiom (component/interfaces.go defined small, single-
// purpose interfaces like ChemicalReceiver/ChemicalReleaser so neuron
// package code could depend on behavior rather than a concrete struct);
// here that idiom breaks what would otherwise be an import cycle between
// script (needs a running lobe's dynamic scope) and lobe (needs to
// evaluate RNA during dispatch).
package script

import "github.com/xepl-run/xepl/gene"

// NeuronHandle is the subset of a live neuron's behavior RNA needs: name
// resolution for '@' neuron-switch, property read/write for the property
// hunt, and macro invocation for '.op(arg)' when op is not a registered
// operator but a neuron macro. Concrete neurons implement this; script
// never imports the neuron package.
type NeuronHandle interface {
	Name() string
	Parent() (NeuronHandle, bool)
	FindChild(name string) (NeuronHandle, bool)
	Property(name string) (string, bool)
	SetProperty(name, value string)
	InvokeMacro(name, param string) (string, bool, error)
}

// OperatorFunc is the signature registered operators are invoked
// through: it receives the running evaluation so it can read
// and mutate the value buffer and truth bit directly.
type OperatorFunc func(s *Script, rhs string) error

// MutualFunc resolves a pseudo-variable, like "me" or "parent", against
// the currently active neuron.
type MutualFunc func(n NeuronHandle) *gene.Gene

// Registry is the subset of Cortex's dispatch tables RNA consults:
// operators (".op(...)") and mutuals (pseudo-variables).
type Registry interface {
	Operator(name string) (OperatorFunc, bool)
	Mutual(name string) (MutualFunc, bool)
}

// Context is the dynamic-scope surface a running lobe exposes to RNA
// evaluation: short-terms, locals, ephemerals, the index stack, and the
// active neuron/gene pair. lobe.Lobe implements this.
type Context interface {
	Registry() Registry

	ActiveNeuron() NeuronHandle
	SetActiveNeuron(NeuronHandle)

	ActiveGene() *gene.Gene
	SetActiveGene(*gene.Gene)
	Outdex() *gene.Gene
	SetOutdex(*gene.Gene)

	// IndexFrame returns the gene bound at the given stack depth (0 =
	// innermost), for "$123" navigation and "#name" trait taps.
	IndexFrame(depth int) (*gene.Gene, bool)

	// Locals is the current dispatch's single Locals gene, created lazily
	// on first write.
	Locals() *gene.Gene

	Ephemeral(name string) (*gene.Gene, bool)
	SetEphemeral(name string, g *gene.Gene)

	// ShortTermGet/Set implement ';name' taps: Get reads the innermost
	// short-term frame that has a binding, Set writes the innermost frame.
	ShortTermGet(name string) (string, bool)
	ShortTermSet(name, value string)

	// ReportError records a non-fatal evaluation error (spec's per-
	// evaluation error channel); the evaluator aborts the current
	// statement but the lobe keeps running.
	ReportError(err error)
}
