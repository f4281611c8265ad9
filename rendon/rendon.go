// Package rendon implements the scoped rendering context §4.8 describes:
// pushing a Rendon installs it as the lobe's active renderer; popping
// restores whatever was active before. When keyword dispatch falls
// through to "no action," the active rendon's Markup is invoked to
// produce a textual fallback. Grounded on the teacher's component output
// buffering idiom (a strings.Builder owned per scope, flushed by the
// caller), retargeted from log/metric text onto rendered gene markup.
package rendon

import (
	"strings"

	"github.com/xepl-run/xepl/gene"
	"github.com/xepl-run/xepl/lobe"
	"github.com/xepl-run/xepl/script"
)

// Renders is the subset of Cortex a Rendon needs: looking up a registered
// Render for a gene's name. Defined locally so rendon never imports
// cortex; cortex.Cortex satisfies it directly.
type Renders interface {
	Render(name string) (lobe.RenderFunc, bool)
}

// pusher is the subset of *lobe.Lobe a Rendon needs to install and
// restore itself as the active renderer. Defined locally for the same
// reason: rendon depends on lobe (to implement lobe.RendonHandle), but
// lobe must never depend back on rendon.
type pusher interface {
	PushRendon(lobe.RendonHandle) lobe.RendonHandle
	PopRendon(lobe.RendonHandle)
}

// Rendon is one scoped rendering context: an output buffer plus the
// registry it consults when a gene's name isn't claimed by any other
// dispatch rule.
type Rendon struct {
	out      strings.Builder
	renders  Renders
	host     pusher
	previous lobe.RendonHandle
}

// Push constructs a Rendon against renders and installs it as host's
// active renderer, returning it so the caller can later call Pop to
// restore whatever was active before.
func Push(host pusher, renders Renders) *Rendon {
	r := &Rendon{renders: renders, host: host}
	r.previous = host.PushRendon(r)
	return r
}

// Pop restores the rendon that was active before this one was pushed.
func (r *Rendon) Pop() { r.host.PopRendon(r.previous) }

// Output returns everything written into this rendon's buffer so far.
func (r *Rendon) Output() string { return r.out.String() }

// Markup satisfies lobe.RendonHandle: resolve a registered Render for
// g's name; failing that, emit g as XML with its content and children.
// The fallback reuses gene.PrintInto rather than re-deriving XML
// serialization here, so children are serialized as plain XML and are
// not looked up in the registered Renders.
func (r *Rendon) Markup(n script.NeuronHandle, g *gene.Gene, out *strings.Builder) {
	if render, ok := r.renders.Render(g.Name.String()); ok {
		if err := render(n, g, out); err == nil {
			return
		}
	}
	out.WriteString(g.PrintInto(-1))
}
