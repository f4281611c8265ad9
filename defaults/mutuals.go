package defaults

import (
	"github.com/xepl-run/xepl/cortex"
	"github.com/xepl-run/xepl/gene"
	"github.com/xepl-run/xepl/script"
)

// observerHolder narrows a script.NeuronHandle down to the concrete
// neuron.Nucleus operation $me/$parent need to expose a gene of traits;
// both neuron.Nucleus and lobe.Lobe satisfy it.
type observerHolder interface {
	Observer() *gene.Gene
}

// registerMutuals wires the "$me"/"$parent"/"$cortex" pseudo-variables
// that RNA's "$name" gene navigation resolves through
// Registry().Mutual before falling back to a plain GetFirstGene lookup
// (script/eval.go's locateGene). Grounded on the original's tlsLobe/
// owner_nucleus pseudo-variable pattern, generalized onto the
// NeuronHandle/Cortex split this runtime uses to avoid a script->lobe
// import cycle.
func registerMutuals(c *cortex.Cortex) {
	c.RegisterMutual("me", mutualMe)
	c.RegisterMutual("parent", mutualParent)
	c.RegisterMutual("cortex", mutualCortex(c))
}

func mutualMe(n script.NeuronHandle) *gene.Gene {
	return observerOf(n)
}

func mutualParent(n script.NeuronHandle) *gene.Gene {
	parent, ok := n.Parent()
	if !ok {
		return gene.New("parent")
	}
	return observerOf(parent)
}

func observerOf(n script.NeuronHandle) *gene.Gene {
	if oh, ok := n.(observerHolder); ok {
		return oh.Observer()
	}
	return gene.New(n.Name())
}

// mutualCortex closes over c since script.MutualFunc only receives a
// NeuronHandle, with nothing naming the process-wide cortex; the
// returned gene exposes the cortex's root name as a trait so RNA can
// read "$cortex'root'" the same way it reads any other gene's traits.
func mutualCortex(c *cortex.Cortex) script.MutualFunc {
	return func(_ script.NeuronHandle) *gene.Gene {
		g := gene.New("cortex")
		g.TraitSet("root", c.Config.RootName)
		return g
	}
}
