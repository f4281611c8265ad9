// Package types holds the small, dependency-free vocabulary shared across
// every other package: atom lifecycle flags, dispatch-table kinds, and
// mailbox action kinds. Nothing here takes a lock or owns a goroutine;
// it exists so that gene, atom, axon, and cortex can agree on names
// without importing each other.
package types

// AtomFlag is a bitfield of lifecycle states shared by every Atom-derived
// value (Gene, Neuron, Axon, Receptor). Flags are monotonic once set
// during teardown: nothing clears a flag once raised.
type AtomFlag uint32

const (
	// FlagLysing marks an atom (or its owning lobe) as mid-teardown.
	// Set once, checked everywhere before scheduling new work against it.
	FlagLysing AtomFlag = 1 << iota
	// FlagDropped marks a neuron whose drop path has already run.
	// Drop is idempotent; this flag is what makes the second call a no-op.
	FlagDropped
	// FlagClosed marks a mailbox or axon that no longer accepts new entries.
	FlagClosed
	// FlagDuplicate marks a gene produced by DuplicateGene: it shares its
	// owner's content, children, and mutex, and must never free them.
	FlagDuplicate
)

// Has reports whether every bit in want is set in f.
func (f AtomFlag) Has(want AtomFlag) bool {
	return f&want == want
}

// Set returns f with every bit in add raised.
func (f AtomFlag) Set(add AtomFlag) AtomFlag {
	return f | add
}

// DispatchKind names one of the five user-extensible registration tables
// the Cortex owns; String returns the table's lower-case name. The cortex
// package keys its tables and "replacing X" warnings by plain strings,
// not by this type.
type DispatchKind int

const (
	KindKeyword DispatchKind = iota
	KindOperator
	KindCommand
	KindMutual
	KindRender
)

func (k DispatchKind) String() string {
	switch k {
	case KindKeyword:
		return "keyword"
	case KindOperator:
		return "operator"
	case KindCommand:
		return "command"
	case KindMutual:
		return "mutual"
	case KindRender:
		return "render"
	default:
		return "unknown"
	}
}

// ActionKind distinguishes mailbox entries without needing a type switch
// at every call site; Action.Kind() returns one of these for tracing.
type ActionKind int

const (
	ActionSignal ActionKind = iota
	ActionDrop
	ActionFunc
)

func (k ActionKind) String() string {
	switch k {
	case ActionSignal:
		return "signal"
	case ActionDrop:
		return "drop"
	case ActionFunc:
		return "func"
	default:
		return "unknown"
	}
}
