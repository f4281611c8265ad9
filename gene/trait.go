package gene

import "strings"

// Trait is a name/value attribute pair. Quote records which quote
// character the source XML used ('\'' or '"'; TraitSet records '"'),
// purely so round-trip serialization reproduces the source form (spec
// invariant I8). Equal ignores it.
type Trait struct {
	Name  string
	Value string
	Quote byte
}

// traitNode is one link in a gene's singly-linked trait list, with the
// gene's traitIndex map pointing directly at nodes for O(1) lookup.
type traitNode struct {
	Trait
	next *traitNode
}

// TraitSet upserts name=value, preserving insertion order for new keys.
// Equivalent to TraitSetQuoted(name, value, '"').
func (g *Gene) TraitSet(name, value string) {
	g.TraitSetQuoted(name, value, '"')
}

// TraitSetQuoted upserts name=value, recording which quote character to
// prefer when this trait is re-serialized.
func (g *Gene) TraitSetQuoted(name, value string, quote byte) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if n, ok := g.traitIndex[name]; ok {
		n.Value = value
		n.Quote = quote
		return
	}
	n := &traitNode{Trait: Trait{Name: name, Value: value, Quote: quote}}
	if g.traitTail == nil {
		g.traitHead, g.traitTail = n, n
	} else {
		g.traitTail.next = n
		g.traitTail = n
	}
	g.traitIndex[name] = n
}

// TraitGet returns the trait's value and true, or ("", false) if unset.
func (g *Gene) TraitGet(name string) (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.traitIndex[name]
	if !ok {
		return "", false
	}
	return n.Value, true
}

// TraitGetDefault is TraitGet with a fallback for the unset case.
func (g *Gene) TraitGetDefault(name, fallback string) string {
	if v, ok := g.TraitGet(name); ok {
		return v
	}
	return fallback
}

// TraitDelete removes a trait by name, reporting whether it was present.
// This unlinks the node from the singly-linked list by walking from head,
// which is the cost of preserving insertion order without a doubly-linked
// trait list; traits are rarely deleted compared to genes, so this stays
// O(n) rather than complicating the node type.
func (g *Gene) TraitDelete(name string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.traitIndex[name]; !ok {
		return false
	}
	delete(g.traitIndex, name)

	var prev *traitNode
	for n := g.traitHead; n != nil; n = n.next {
		if n.Name == name {
			if prev == nil {
				g.traitHead = n.next
			} else {
				prev.next = n.next
			}
			if n == g.traitTail {
				g.traitTail = prev
			}
			return true
		}
		prev = n
	}
	return true
}

// Traits returns every trait, in insertion order.
func (g *Gene) Traits() []Trait {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Trait, 0, len(g.traitIndex))
	for n := g.traitHead; n != nil; n = n.next {
		out = append(out, n.Trait)
	}
	return out
}

// TraitEvaluator is the narrow slice of RNA evaluation EvaluateTraits
// needs: evaluate source against whatever dynamic scope is active and
// report its string value. script.Evaluate satisfies this through the
// evaluatorFunc adapter lobe.DispatchGene constructs; gene never imports
// script, breaking what would otherwise be an import cycle.
type TraitEvaluator interface {
	Evaluate(source string) (value string, truth bool, err error)
}

// EvaluateTraits implements spec's evaluate_traits(host_neuron) Gene
// operation: every trait whose raw value starts with "{" is RNA-evaluated
// in place and replaced with the result, so a trait written as
// name="{dynamicName}" resolves before the gene is dispatched. Traits are
// snapshotted before evaluation runs, since ev.Evaluate may itself read
// this same gene's traits (e.g. through an active-gene navigation), which
// would deadlock against g.mu held for the whole walk. Grounded on
// original_source/xepl.cc's Process_Gene, which duplicates the call gene
// and runs Evaluate_Traits before every keyword/method dispatch.
func (g *Gene) EvaluateTraits(ev TraitEvaluator) error {
	g.mu.Lock()
	var pending []traitNode
	for n := g.traitHead; n != nil; n = n.next {
		if strings.HasPrefix(n.Value, "{") {
			pending = append(pending, *n)
		}
	}
	g.mu.Unlock()

	var firstErr error
	for _, p := range pending {
		v, _, err := ev.Evaluate(p.Value)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		g.TraitSetQuoted(p.Name, v, p.Quote)
	}
	return firstErr
}
