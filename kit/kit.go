// Package kit declares the interfaces an embedding application implements
// to supply the collaborators spec §1's Out-of-scope list names: file,
// socket, HTTP, HTML, timer, and CLI I/O. XEPL's core never performs any
// of this I/O itself and this package carries no implementation, only the
// contract a concrete kit registers against a cortex.Cortex through
// cortex.RegisterKeyword/RegisterCommand/RegisterRender. Grounded on the
// teacher's interfaces.go idiom of naming a collaborator's shape without
// owning it, generalized from in-process chemical signaling onto
// out-of-process I/O.
package kit

import (
	"context"
	"io"
	"time"

	"github.com/xepl-run/xepl/gene"
)

// FileKit reads and writes the XML resource files the §6 `}path` CLI
// prefix resolves against, searched under
// ./resources then parent directories per spec.
type FileKit interface {
	// Load resolves name to a resource path and parses it into a gene
	// tree, or returns an error if no such resource exists.
	Load(ctx context.Context, name string) (*gene.Gene, error)

	// Save serializes g and writes it to the resource named name.
	Save(ctx context.Context, name string, g *gene.Gene) error
}

// SocketKit opens outbound or listens for inbound byte-stream connections
// on behalf of a gene's network keywords (e.g. a `<connect>` or `<listen>`
// element a defaults-like package might register). XEPL's core never
// dials or accepts a socket itself.
type SocketKit interface {
	Dial(ctx context.Context, network, address string) (io.ReadWriteCloser, error)
	Listen(ctx context.Context, network, address string) (Listener, error)
}

// Listener is the accept-loop side of a SocketKit, kept minimal so a
// registered keyword can drive it without the kit package depending on
// net.Listener's full surface.
type Listener interface {
	Accept(ctx context.Context) (io.ReadWriteCloser, error)
	Close() error
}

// HTTPKit issues outbound HTTP requests and, separately, mounts inbound
// handlers (for example a prometheus.Registry obtained from
// cortex.Metrics). Neither direction is implemented by XEPL's core.
type HTTPKit interface {
	Do(ctx context.Context, method, url string, body io.Reader) (status int, response []byte, err error)
	Mount(pattern string, handler func(w io.Writer, method, path string, body []byte))
}

// HTMLKit renders a gene tree to an HTML fragment, the natural counterpart
// to rendon.Rendon's plain-XML fallback for a presentation-facing kit.
type HTMLKit interface {
	Render(g *gene.Gene) (string, error)
}

// TimerKit schedules a callback to run after a delay or on a repeating
// interval, the collaborator a `<after>` or `<every>` keyword would call
// into. The returned Cancel func stops a pending or repeating timer.
type TimerKit interface {
	After(d time.Duration, fn func()) (cancel func())
	Every(d time.Duration, fn func()) (cancel func())
}

// CLIKit is the host-loop facet spec §6 describes directly: read a line,
// write a line, until EOF or "quit". Nothing in this repository implements
// it: cmd/xeplcli's REPL reads its input with bufio.Scanner directly.
type CLIKit interface {
	ReadLine(ctx context.Context) (line string, eof bool, err error)
	WriteLine(line string) error
}
