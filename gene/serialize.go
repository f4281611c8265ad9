package gene

import "strings"

// PrintInto XML-serializes g and returns the result. depth controls
// how many levels of children are included: 0 means traits and an empty
// element only; a negative depth means unlimited (the whole subtree).
func (g *Gene) PrintInto(depth int) string {
	return string(g.printInto(nil, depth))
}

func (g *Gene) printInto(buf []byte, depth int) []byte {
	buf = append(buf, '<')
	if !g.Space.Empty() {
		buf = append(buf, g.Space.String()...)
		buf = append(buf, ':')
	}
	buf = append(buf, g.Name.String()...)

	for _, t := range g.Traits() {
		q := t.Quote
		if q != '\'' && q != '"' {
			q = '"'
		}
		buf = append(buf, ' ')
		buf = append(buf, t.Name...)
		buf = append(buf, '=')
		buf = append(buf, q)
		buf = append(buf, escapeXML(t.Value, q)...)
		buf = append(buf, q)
	}

	content := g.Content().String()
	children := g.children.Snapshot()
	hasBody := content != "" || (depth != 0 && len(children) > 0)

	if !hasBody {
		buf = append(buf, "/>"...)
		return buf
	}

	buf = append(buf, '>')
	if content != "" {
		buf = append(buf, escapeXML(content, 0)...)
	}
	if depth != 0 {
		childDepth := depth - 1
		if depth < 0 {
			childDepth = depth
		}
		for _, c := range children {
			buf = c.printInto(buf, childDepth)
		}
	}
	buf = append(buf, "</"...)
	if !g.Space.Empty() {
		buf = append(buf, g.Space.String()...)
		buf = append(buf, ':')
	}
	buf = append(buf, g.Name.String()...)
	buf = append(buf, '>')
	return buf
}

// escapeXML escapes the characters that would otherwise be ambiguous in
// the given context. quote == 0 means "text content" (escape < & only,
// plus > for safety); otherwise it's the quote character a trait value is
// wrapped in, so that character plus &, < and > are escaped.
func escapeXML(s string, quote byte) string {
	if !strings.ContainsAny(s, "&<>'\"") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '\'':
			if quote == '\'' {
				b.WriteString("&apos;")
			} else {
				b.WriteRune(r)
			}
		case '"':
			if quote == '"' {
				b.WriteString("&quot;")
			} else {
				b.WriteRune(r)
			}
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Equal reports deep structural equality per invariant I8: name, space,
// traits (by name and order), content, and children, recursively. Trait
// Quote is intentionally excluded — it is a serialization preference, not
// part of a gene's value.
func (g *Gene) Equal(other *Gene) bool {
	if other == nil {
		return false
	}
	if g.Name != other.Name || g.Space != other.Space {
		return false
	}
	if g.Content() != other.Content() {
		return false
	}
	at, bt := g.Traits(), other.Traits()
	if len(at) != len(bt) {
		return false
	}
	for i := range at {
		if at[i].Name != bt[i].Name || at[i].Value != bt[i].Value {
			return false
		}
	}
	ac, bc := g.Children(), other.Children()
	if len(ac) != len(bc) {
		return false
	}
	for i := range ac {
		if !ac[i].Equal(bc[i]) {
			return false
		}
	}
	return true
}
