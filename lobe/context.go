package lobe

import (
	"github.com/pkg/errors"
	"github.com/xepl-run/xepl/gene"
	"github.com/xepl-run/xepl/script"
	"go.uber.org/zap"
)

// Registry satisfies script.Context: a lobe's registry is supplied once at
// construction (ordinarily the process-wide cortex) and never changes.
func (l *Lobe) Registry() script.Registry { return l.registry }

// ActiveNeuron is the neuron a dispatch is currently running against; RNA's
// bare-name property hunt and '@' switch read and write this.
func (l *Lobe) ActiveNeuron() script.NeuronHandle { return l.activeNeuron }

func (l *Lobe) SetActiveNeuron(n script.NeuronHandle) { l.activeNeuron = n }

// ActiveGene is the code gene currently being evaluated.
func (l *Lobe) ActiveGene() *gene.Gene { return l.activeGene }

func (l *Lobe) SetActiveGene(g *gene.Gene) {
	l.activeGene = g
	l.indices = append([]*gene.Gene{g}, l.indices...)
}

// Outdex is the gene that was active before the most recent "/child" or
// "$" gene-navigation step moved away from it, re-entered by "$$".
func (l *Lobe) Outdex() *gene.Gene { return l.outdex }

func (l *Lobe) SetOutdex(g *gene.Gene) { l.outdex = g }

// IndexFrame returns the gene pushed depth SetActiveGene calls back (0 is
// the current one), for "$123" navigation.
func (l *Lobe) IndexFrame(depth int) (*gene.Gene, bool) {
	if depth < 0 || depth >= len(l.indices) {
		return nil, false
	}
	return l.indices[depth], true
}

// Locals is the current dispatch's single locals gene, created on first
// write and discarded at the next closeDispatch.
func (l *Lobe) Locals() *gene.Gene {
	if l.locals == nil {
		l.locals = gene.New("locals")
	}
	return l.locals
}

// Ephemeral looks up a dispatch-scoped named gene: these persist only
// within the current dispatch and are cleared by closeDispatch. RNA's
// "%name" sigil taps Locals, not this table.
func (l *Lobe) Ephemeral(name string) (*gene.Gene, bool) {
	g, ok := l.ephemerals[name]
	return g, ok
}

func (l *Lobe) SetEphemeral(name string, g *gene.Gene) {
	if l.ephemerals == nil {
		l.ephemerals = make(map[string]*gene.Gene)
	}
	l.ephemerals[name] = g
}

// ReportError records a non-fatal RNA evaluation failure: logged as a
// warning (not counted), and the lobe's dispatch loop keeps running the
// next action.
func (l *Lobe) ReportError(err error) {
	l.log.Warn("rna evaluation error",
		zap.String("lobe", l.Name()),
		zap.Error(errors.WithStack(err)),
	)
}
