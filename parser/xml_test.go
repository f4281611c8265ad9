package parser

import (
	"testing"

	"github.com/xepl-run/xepl/gene"
)

func mustParseOne(t *testing.T, xml string) *gene.Gene {
	t.Helper()
	wrapper, err := ParseXML([]byte(xml))
	if err != nil {
		t.Fatalf("ParseXML(%q) error: %v", xml, err)
	}
	children := wrapper.Children()
	if len(children) != 1 {
		t.Fatalf("ParseXML(%q) produced %d top-level nodes, want 1", xml, len(children))
	}
	return children[0]
}

func TestParseSimpleElement(t *testing.T) {
	g := mustParseOne(t, `<hello name="world">hi there</hello>`)
	if g.Name.String() != "hello" {
		t.Fatalf("Name = %q, want hello", g.Name)
	}
	if v, ok := g.TraitGet("name"); !ok || v != "world" {
		t.Fatalf("trait name = %q, %v, want world, true", v, ok)
	}
	if g.Content().String() != "hi there" {
		t.Fatalf("Content = %q, want %q", g.Content(), "hi there")
	}
}

func TestParseSingleAndDoubleQuotedAttributesPreserveQuoteStyle(t *testing.T) {
	g := mustParseOne(t, `<x a='one' b="two"/>`)
	traits := g.Traits()
	if len(traits) != 2 {
		t.Fatalf("len(traits) = %d, want 2", len(traits))
	}
	if traits[0].Quote != '\'' {
		t.Fatalf("traits[0].Quote = %q, want '", traits[0].Quote)
	}
	if traits[1].Quote != '"' {
		t.Fatalf("traits[1].Quote = %q, want \"", traits[1].Quote)
	}
}

func TestParseNestedChildren(t *testing.T) {
	g := mustParseOne(t, `<root><a/><b>body</b></root>`)
	if g.ChildCount() != 2 {
		t.Fatalf("ChildCount = %d, want 2", g.ChildCount())
	}
	b, ok := g.GetFirstGene("b")
	if !ok || b.Content().String() != "body" {
		t.Fatalf("child b = %+v, ok=%v, want content=body", b, ok)
	}
}

func TestParseSkipsShebangOnlyAtOffsetZero(t *testing.T) {
	g := mustParseOne(t, "#!/usr/bin/xepl\n<root/>")
	if g.Name.String() != "root" {
		t.Fatalf("Name = %q, want root (shebang line should have been skipped)", g.Name)
	}
}

func TestParseTolerantOfCommentsCDATAAndPI(t *testing.T) {
	xml := `<?xml version="1.0"?><!-- a comment --><root><![CDATA[raw <stuff>]]></root>`
	g := mustParseOne(t, xml)
	if g.Name.String() != "root" {
		t.Fatalf("Name = %q, want root", g.Name)
	}
	if g.Content().String() != "raw <stuff>" {
		t.Fatalf("Content = %q, want CDATA body preserved verbatim", g.Content())
	}
}

func TestParseMismatchedClosingTagIsAnError(t *testing.T) {
	_, err := ParseXML([]byte(`<a><b></c></a>`))
	if err == nil {
		t.Fatalf("expected an error for mismatched closing tag, got nil")
	}
}

func TestSerializeRoundTripEquality(t *testing.T) {
	root := gene.New("root")
	root.TraitSet("k", "v")
	child := gene.New("c")
	child.SetContent("x")
	root.AddGene(child)

	xml := root.PrintInto(-1)
	reparsed := mustParseOne(t, xml)

	if !root.Equal(reparsed) {
		t.Fatalf("round trip not equal:\noriginal: %s\nreparsed: %s", root.PrintInto(-1), reparsed.PrintInto(-1))
	}
}
