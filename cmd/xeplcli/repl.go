package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/xepl-run/xepl/cortex"
	"github.com/xepl-run/xepl/kit"
	"github.com/xepl-run/xepl/lobe"
	"github.com/xepl-run/xepl/parser"
	"github.com/xepl-run/xepl/script"
)

// errReboot is returned by runREPL when the user typed exactly ";;", asking
// the host loop to tear the cortex down and boot a fresh one rather than
// just continuing the read loop.
var errReboot = fmt.Errorf("reboot requested")

// session bundles everything a line of input is evaluated against: the
// cortex's dispatch tables, the root lobe input is run on, and the file
// kit "}path" resolves through. Grounded on the §6 CLI facet's prefix
// table; runREPL reads lines from an io.Reader with bufio.Scanner and
// writes to out, without going through kit.CLIKit.
type session struct {
	cortex *cortex.Cortex
	root   *lobe.Lobe
	files  kit.FileKit
	out    io.Writer
}

// runREPL reads lines from in until EOF or a bare "quit" line, dispatching
// each through the §6 prefix table. It returns errReboot if the loop ended
// because of a ";;" line, so the caller can construct a fresh session and
// resume reading from the same underlying reader.
func runREPL(ctx context.Context, s *session, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if trimmed == "quit" {
			return nil
		}
		if trimmed == ";;" {
			return errReboot
		}
		if err := s.runLine(ctx, trimmed); err != nil {
			fmt.Fprintf(s.out, "ErrorReport: %s\n", err)
		}
	}
	return scanner.Err()
}

// runLine dispatches one line against the prefix table: "<" parses and
// processes an inline XML program, "{"/"!"/"%" evaluate the line as RNA,
// "}path" loads and processes a named resource, "~name" drops a child
// neuron of the root, "|..." runs a shell command, ";" closes the current
// dispatch, and anything else is looked up in the command table.
func (s *session) runLine(ctx context.Context, line string) error {
	switch {
	case strings.HasPrefix(line, "<"):
		return s.runSync(func() error { return s.processXML(line) })

	case strings.HasPrefix(line, "{"), strings.HasPrefix(line, "!"), strings.HasPrefix(line, "%"):
		return s.runSync(func() error { return s.evaluate(line) })

	case strings.HasPrefix(line, "}"):
		name := strings.TrimPrefix(line, "}")
		return s.runSync(func() error { return s.loadAndProcess(ctx, name) })

	case strings.HasPrefix(line, "~"):
		name := strings.TrimPrefix(line, "~")
		return s.runSync(func() error { return s.dropNeuron(name) })

	case strings.HasPrefix(line, "|"):
		return s.runShell(strings.TrimPrefix(line, "|"))

	case line == ";":
		return s.runSync(func() error { s.root.CloseDispatch(); return nil })

	default:
		return s.runCommand(line)
	}
}

func (s *session) runSync(fn func() error) error {
	var runErr error
	if err := s.root.RunSync(func() { runErr = fn() }); err != nil {
		return err
	}
	return runErr
}

// processXML parses line as a standalone XML fragment and dispatches each
// top-level gene parser.ParseXML produces in turn.
func (s *session) processXML(line string) error {
	root, err := parser.ParseXML([]byte(line))
	if err != nil {
		return err
	}
	for _, g := range root.Children() {
		if err := s.root.DispatchGene(g); err != nil {
			s.cortex.Reporter.ReportErr(err, "processXML")
		}
	}
	return nil
}

// evaluate runs line through RNA and writes its value to stdout, matching
// a REPL's "show me what that expression produced."
func (s *session) evaluate(line string) error {
	v, _, err := script.Evaluate(s.root, line)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, v)
	return nil
}

// loadAndProcess resolves name through the file kit and dispatches each
// top-level gene of the loaded resource.
func (s *session) loadAndProcess(ctx context.Context, name string) error {
	g, err := s.files.Load(ctx, name)
	if err != nil {
		return err
	}
	for _, child := range g.Children() {
		if err := s.root.DispatchGene(child); err != nil {
			s.cortex.Reporter.ReportErr(err, "loadAndProcess")
		}
	}
	return nil
}

// dropNeuron tears down a direct child of the root neuron by name.
func (s *session) dropNeuron(name string) error {
	target, ok := s.root.FindChild(name)
	if !ok {
		return fmt.Errorf("no such neuron %q", name)
	}
	dropper, ok := target.(interface{ Drop() })
	if !ok {
		return fmt.Errorf("neuron %q cannot be dropped", name)
	}
	dropper.Drop()
	return nil
}

// runShell execs rest through the shell, streaming its combined output to
// stdout. This runs on the REPL's own goroutine, not the lobe's thread: a
// shell command has no business blocking lobe dispatch.
func (s *session) runShell(rest string) error {
	cmd := exec.Command("sh", "-c", rest)
	output, err := cmd.CombinedOutput()
	s.out.Write(output)
	return err
}

// runCommand looks line's first word up in the cortex's command table,
// passing the remainder as param.
func (s *session) runCommand(line string) error {
	name, param, _ := strings.Cut(line, " ")
	fn, ok := s.cortex.Command(name)
	if !ok {
		return fmt.Errorf("no such command %q", name)
	}
	return fn(param)
}
