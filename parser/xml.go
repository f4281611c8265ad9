package parser

import (
	"strings"

	"github.com/xepl-run/xepl/gene"
)

// tagStartByte and tagByte implement the tag-name grammar:
// [A-Za-z_:][A-Za-z0-9_:.+-]*
func tagStartByte(b byte) bool {
	return b == '_' || b == ':' || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func tagByte(b byte) bool {
	return tagStartByte(b) || (b >= '0' && b <= '9') || b == '.' || b == '+' || b == '-'
}

// ParseXML parses the XEPL XML dialect in data and returns a synthetic
// wrapper gene named "text" whose children are the top-level nodes found
// (normally exactly one: the document root). A shebang line ("#!...") is
// skipped, but only when it begins at byte offset 0.
func ParseXML(data []byte) (*gene.Gene, error) {
	if len(data) >= 2 && data[0] == '#' && data[1] == '!' {
		if nl := indexOf(data, "\n"); nl >= 0 {
			data = data[nl+1:]
		} else {
			data = nil
		}
	}

	c := NewCursor(data)
	root := gene.New("text")

	for {
		c.SkipSpaces()
		if c.Done() {
			break
		}
		child, err := parseNode(c)
		if err != nil {
			return nil, err
		}
		if child != nil {
			root.AddGene(child)
		}
	}
	return root, nil
}

// parseNode parses exactly one top-level construct: an element, a
// comment, a CDATA section, a processing instruction, a DOCTYPE, or a
// stray run of PCDATA text promoted to a "text" node. Comments, PIs, and
// DOCTYPE are tolerated (parsed and discarded, per spec) rather than
// surfaced as genes.
func parseNode(c *Cursor) (*gene.Gene, error) {
	if c.Peek() != '<' {
		text, ok := takePCDATA(c)
		if !ok || strings.TrimSpace(text) == "" {
			return nil, nil
		}
		g := gene.New("text")
		g.SetContent(text)
		return g, nil
	}

	type step struct {
		gene *gene.Gene
		err  error
	}
	result, _, matched := ParserSelect(c, []Option[step]{
		{Name: "comment", Try: func(c *Cursor) (step, bool) {
			if !c.Literal("<!--") {
				return step{}, false
			}
			if _, ok := c.TakeUntil("-->"); !ok {
				return step{err: c.errAt("unterminated comment")}, true
			}
			c.Literal("-->")
			return step{}, true
		}},
		{Name: "cdata", Try: func(c *Cursor) (step, bool) {
			if !c.Literal("<![CDATA[") {
				return step{}, false
			}
			body, ok := c.TakeUntil("]]>")
			if !ok {
				return step{err: c.errAt("unterminated CDATA section")}, true
			}
			c.Literal("]]>")
			g := gene.New("text")
			g.SetContent(body)
			return step{gene: g}, true
		}},
		{Name: "pi", Try: func(c *Cursor) (step, bool) {
			if !c.Literal("<?") {
				return step{}, false
			}
			if _, ok := c.TakeUntil("?>"); !ok {
				return step{err: c.errAt("unterminated processing instruction")}, true
			}
			c.Literal("?>")
			return step{}, true
		}},
		{Name: "doctype", Try: func(c *Cursor) (step, bool) {
			if !c.Literal("<!DOCTYPE") && !c.Literal("<!doctype") {
				return step{}, false
			}
			if _, ok := c.TakeUntil(">"); !ok {
				return step{err: c.errAt("unterminated DOCTYPE")}, true
			}
			c.Advance()
			return step{}, true
		}},
		{Name: "element", Try: func(c *Cursor) (step, bool) {
			g, err := parseElement(c)
			return step{gene: g, err: err}, true
		}},
	})
	if !matched {
		return nil, c.errAt("no grammar production matched")
	}
	return result.gene, result.err
}

// parseElement parses one <tag ...attrs...>...children...</tag> or
// <tag ...attrs.../> element, starting at the opening '<'.
func parseElement(c *Cursor) (*gene.Gene, error) {
	if !c.Literal("<") {
		return nil, c.errAt("expected '<'")
	}
	if !tagStartByte(c.Peek()) {
		return nil, c.errAt("expected tag name after '<'")
	}
	name := readTagName(c)

	space, localName := "", name
	if idx := strings.IndexByte(name, ':'); idx >= 0 {
		space, localName = name[:idx], name[idx+1:]
	}

	var g *gene.Gene
	if space != "" {
		g = gene.NewNamespaced(space, localName)
	} else {
		g = gene.New(localName)
	}

	for {
		c.SkipSpaces()
		b := c.Peek()
		if b == '/' || b == '>' || b == 0 {
			break
		}
		if err := parseTrait(c, g); err != nil {
			return nil, err
		}
	}

	if c.Literal("/>") {
		return g, nil
	}
	if !c.Literal(">") {
		return nil, c.errAt("expected '>' or '/>' closing start tag")
	}

	for {
		if c.Done() {
			return nil, c.errAt("unexpected end of input inside element body")
		}
		if c.Peek() == '<' && c.PeekAt(1) == '/' {
			break
		}
		child, err := parseNode(c)
		if err != nil {
			return nil, err
		}
		if child == nil {
			continue
		}
		if child.Name.String() == "text" && child.ChildCount() == 0 {
			g.AppendContent(child.Content().String())
			continue
		}
		g.AddGene(child)
	}

	if !c.Literal("</") {
		return nil, c.errAt("expected closing tag")
	}
	closeName := readTagName(c)
	c.SkipSpaces()
	if !c.Literal(">") {
		return nil, c.errAt("expected '>' after closing tag name")
	}
	if closeName != name {
		return nil, c.errAt("mismatched closing tag <" + "/" + closeName + "> for <" + name + ">")
	}
	return g, nil
}

func readTagName(c *Cursor) string {
	start := c.pos
	c.Advance() // tagStartByte already checked by caller
	for tagByte(c.Peek()) {
		c.Advance()
	}
	return string(c.data[start:c.pos])
}

// parseTrait parses one name="value" or name='value' attribute, preserving
// which quote character was used on g's trait (spec invariant I8).
func parseTrait(c *Cursor, g *gene.Gene) error {
	if !tagStartByte(c.Peek()) {
		return c.errAt("expected attribute name")
	}
	start := c.pos
	c.Advance()
	for tagByte(c.Peek()) {
		c.Advance()
	}
	name := string(c.data[start:c.pos])

	c.SkipSpaces()
	if !c.Literal("=") {
		return c.errAt("expected '=' after attribute name " + name)
	}
	c.SkipSpaces()

	quote := c.Peek()
	if quote != '\'' && quote != '"' {
		return c.errAt("expected quote to open attribute value")
	}
	c.Advance()
	valStart := c.pos
	for !c.Done() && c.Peek() != quote {
		c.Advance()
	}
	if c.Done() {
		return c.errAt("unterminated attribute value")
	}
	value := string(c.data[valStart:c.pos])
	c.Advance() // closing quote

	g.TraitSetQuoted(name, unescapeXML(value), quote)
	return nil
}

// takePCDATA consumes text content up to (not including) the next '<',
// right-trimming trailing whitespace the way spec's PCDATA-until-< rule
// does, and unescapes entity references.
func takePCDATA(c *Cursor) (string, bool) {
	start := c.pos
	for !c.Done() && c.Peek() != '<' {
		c.Advance()
	}
	raw := string(c.data[start:c.pos])
	raw = strings.TrimRight(raw, " \t\r\n")
	if raw == "" {
		return "", false
	}
	return unescapeXML(raw), true
}

func unescapeXML(s string) string {
	if !strings.ContainsRune(s, '&') {
		return s
	}
	r := strings.NewReplacer(
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", "\"",
		"&apos;", "'",
		"&amp;", "&",
	)
	return r.Replace(s)
}
