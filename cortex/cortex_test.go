package cortex

import (
	"strings"
	"testing"

	"github.com/xepl-run/xepl/gene"
	"github.com/xepl-run/xepl/script"
	"github.com/xepl-run/xepl/trace"
)

func TestRegisterKeywordIsLookupable(t *testing.T) {
	c := New(DefaultConfig(), nil)
	called := false
	c.RegisterKeyword("Noop", func(ctx script.Context, callGene *gene.Gene, param string) error {
		called = true
		return nil
	})

	fn, ok := c.Keyword("Noop")
	if !ok {
		t.Fatalf("Keyword(%q) not found after RegisterKeyword", "Noop")
	}
	if err := fn(nil, gene.New("Noop"), ""); err != nil {
		t.Fatalf("fn: %v", err)
	}
	if !called {
		t.Fatalf("registered keyword was never invoked")
	}
}

func TestRegisterWarnsOnReplacement(t *testing.T) {
	var out strings.Builder
	reporter := trace.NewReporter(&out, nil)
	c := New(DefaultConfig(), reporter)

	c.RegisterOperator("x", func(s *script.Script, rhs string) error { return nil })
	c.RegisterOperator("x", func(s *script.Script, rhs string) error { return nil })

	if !strings.Contains(out.String(), "replacing existing operator registration") {
		t.Fatalf("out = %q, want a replacement warning", out.String())
	}
}

func TestBootStartsRootLobeAndShutdownStopsIt(t *testing.T) {
	c := New(DefaultConfig(), nil)
	root := c.Boot(nil)
	if root == nil {
		t.Fatal("Boot returned nil root lobe")
	}
	if c.Root() != root {
		t.Fatalf("Root() = %v, want %v", c.Root(), root)
	}
	if err := root.RunSync(func() {}); err != nil {
		t.Fatalf("RunSync against a running root lobe: %v", err)
	}

	c.Shutdown()

	if err := root.RunSync(func() {}); err == nil {
		t.Fatalf("RunSync succeeded against a stopped lobe's closed mailbox")
	}
}
