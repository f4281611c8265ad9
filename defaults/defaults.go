// Package defaults registers the built-in keyword, operator, and mutual
// tables an embedding program gets out of the box: Print, Repeat, Yes/No,
// Properties, Methods, Neuron, and Trigger as keywords; a grounded subset
// of xepl_operator_kit.hpp's operator table; and the $me/$parent/$cortex
// pseudo-variables RNA's "$name" gene navigation consults. Grounded on
// the teacher's pack/register.go idiom (one exported Install/Register
// entry point a caller runs once at startup against a concrete registry),
// retargeted from a biological receptor pack onto a cortex.Cortex's five
// dispatch tables.
package defaults

import (
	"io"
	"os"

	"github.com/xepl-run/xepl/cortex"
)

// Register wires every built-in keyword, operator, and mutual into c. out
// is where the Print keyword writes; a nil out defaults to os.Stdout.
func Register(c *cortex.Cortex, out io.Writer) {
	if out == nil {
		out = os.Stdout
	}
	registerOperators(c)
	registerKeywords(c, out)
	registerMutuals(c)
}
