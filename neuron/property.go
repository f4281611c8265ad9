package neuron

// Property reads a trait directly on this neuron's observer gene.
// Climbing to the parent neuron on a miss is the script package's job
// (the property-hunt resolution order walks NeuronHandle.Parent()
// itself); Property only ever looks at n.
func (n *Nucleus) Property(name string) (string, bool) {
	return n.observer.TraitGet(name)
}

// SetProperty upserts a trait on this neuron's observer gene.
func (n *Nucleus) SetProperty(name, value string) {
	n.observer.TraitSet(name, value)
}
