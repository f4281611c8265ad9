package lobe

// shortTermFrame is one stack-discipline dynamic-scope frame, linked into
// the lobe's current short-terms stack. A frame's map is allocated lazily
// on first write; an untouched frame costs only the pointer chain. Spec
// additionally describes a "hot" pointer skipping straight to the
// nearest ancestor frame that has a map, as a lookup optimization — this
// implementation walks the plain previous-chain instead, which is
// observably identical (same frame wins a lookup) and avoids the
// bookkeeping needed to keep a hot pointer correct across frames that
// gain a map only after deeper frames were already pushed on top of them.
type shortTermFrame struct {
	previous *shortTermFrame
	vars     map[string]string
}

// pushShortTerm enters a new frame on l by linking it into the lobe's own
// stack field; popShortTerm restores the previous frame.
func (l *Lobe) pushShortTerm() {
	l.shortTerm = &shortTermFrame{previous: l.shortTerm}
}

// popShortTerm exits the current frame, restoring its predecessor.
func (l *Lobe) popShortTerm() {
	if l.shortTerm != nil {
		l.shortTerm = l.shortTerm.previous
	}
}

// PushShortTerm and PopShortTerm are the exported forms of the same stack
// discipline, for a registered keyword (living outside package lobe) that
// needs its own dynamic-scope frame around a block of inner genes, e.g. a
// repeat loop's per-iteration bindings.
func (l *Lobe) PushShortTerm() { l.pushShortTerm() }

func (l *Lobe) PopShortTerm() { l.popShortTerm() }

// ShortTermGet implements ";name" reads: the innermost frame (walking
// outward) that has a binding for name wins.
func (l *Lobe) ShortTermGet(name string) (string, bool) {
	for f := l.shortTerm; f != nil; f = f.previous {
		if f.vars == nil {
			continue
		}
		if v, ok := f.vars[name]; ok {
			return v, true
		}
	}
	return "", false
}

// ShortTermSet implements ";name=" writes: always against the current
// (innermost) frame, allocating its map on first use.
func (l *Lobe) ShortTermSet(name, value string) {
	if l.shortTerm == nil {
		l.pushShortTerm()
	}
	if l.shortTerm.vars == nil {
		l.shortTerm.vars = make(map[string]string)
	}
	l.shortTerm.vars[name] = value
}
