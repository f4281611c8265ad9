package neuron

import (
	"github.com/pkg/errors"
	"github.com/xepl-run/xepl/gene"
)

// RegisterMethod binds name to fn on this neuron and records it under the
// shadows gene's "methods" child for introspection. Replacing an existing
// method is allowed silently here; Cortex-level dispatch tables are where
// "replacing X" warnings are emitted (methods are private to one neuron,
// not a shared namespace).
func (n *Nucleus) RegisterMethod(name string, fn MethodFunc) {
	n.methods[name] = fn
	holder, ok := n.shadows.GetFirstGene("methods")
	if !ok {
		holder = gene.New("methods")
		n.shadows.AddGene(holder)
	}
	entry := gene.New(name)
	holder.ReplaceGene(name, entry)
}

// Method returns the method registered under name, if any.
func (n *Nucleus) Method(name string) (MethodFunc, bool) {
	fn, ok := n.methods[name]
	return fn, ok
}

// InvokeMethod runs the method registered under name against this
// neuron, reporting "not found" as a plain boolean rather than an error
// so callers (the keyword-dispatch chain) can fall through to the next
// dispatch rule instead of treating it as a failure.
func (n *Nucleus) InvokeMethod(name string, callGene, codeGene *gene.Gene) (bool, error) {
	fn, ok := n.methods[name]
	if !ok {
		return false, nil
	}
	return true, fn(n, callGene, codeGene)
}

// RegisterMacro binds name to fn as an RNA operator-call fallback.
func (n *Nucleus) RegisterMacro(name string, fn MacroFunc) {
	n.macros[name] = fn
}

// InvokeMacro satisfies script.NeuronHandle: it is the last resort RNA's
// ".name(arg)" falls back to when name is not a registered cortex
// operator.
func (n *Nucleus) InvokeMacro(name, arg string) (string, bool, error) {
	fn, ok := n.macros[name]
	if !ok {
		return "", false, errors.Errorf("no macro %q registered on neuron %q", name, n.Name())
	}
	return fn(n, arg)
}
