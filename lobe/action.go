// Package lobe implements the single-threaded cooperative actor a Cortex
// runs neurons on: the mailbox (Action/ActionList), the dispatch loop,
// and the short-term/index/ephemeral/locals dynamic-scope stacks RNA
// evaluation reads and writes through script.Context. Grounded on the
// teacher's neuron/signal_scheduler.go idiom — a mutex-guarded queue with
// atomic counters exposed for diagnostics — retargeted from a priority
// queue of biological signal deliveries onto a plain FIFO mailbox.
package lobe

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/xepl-run/xepl/synapse"
	"github.com/xepl-run/xepl/types"
)

// Action is one entry in a lobe's mailbox: an opaque unit of work executed
// on the lobe's own thread, in FIFO order relative to every other action
// posted to the same mailbox.
type Action interface {
	Execute()
	Kind() types.ActionKind
}

// SignalAction delivers signal to receptor on the receptor's own lobe
// thread; it is what a cross-lobe Synapse posts instead of invoking its
// receiver inline.
type SignalAction struct {
	Receptor *synapse.Receptor
	Signal   synapse.Signal
	deliver  func(r *synapse.Receptor, s synapse.Signal)

	// CorrelationID ties this cross-lobe delivery back to the dispatch
	// trace line that posted it, so concurrent lobes' trace output can be
	// matched up without relying on neuron names as a join key.
	CorrelationID uuid.UUID
}

func (a *SignalAction) Execute() { a.deliver(a.Receptor, a.Signal) }
func (a *SignalAction) Kind() types.ActionKind { return types.ActionSignal }

// DropAction tears a neuron down from outside its own lobe: posted by a
// parent lobe against a child lobe's mailbox to request graceful
// shutdown.
type DropAction struct {
	Target interface{ Drop() }
}

func (a *DropAction) Execute() { a.Target.Drop() }
func (a *DropAction) Kind() types.ActionKind { return types.ActionDrop }

// FuncAction runs an arbitrary closure on the owning lobe's thread,
// closing done once it returns. This is the one bridge a goroutine
// outside any lobe (the CLI host loop, a kit callback) has into a lobe's
// single-threaded world: post a FuncAction and wait on Done instead of
// calling lobe state directly from a foreign goroutine.
type FuncAction struct {
	Fn   func()
	done chan struct{}
}

// NewFuncAction wraps fn with its own completion channel.
func NewFuncAction(fn func()) *FuncAction {
	return &FuncAction{Fn: fn, done: make(chan struct{})}
}

func (a *FuncAction) Execute()              { a.Fn(); close(a.done) }
func (a *FuncAction) Kind() types.ActionKind { return types.ActionFunc }
func (a *FuncAction) Done() <-chan struct{}  { return a.done }

// ActionList is a lobe's FIFO mailbox: a mutex-guarded queue with a
// closed flag and running counters, in the teacher's SignalScheduler
// shape. Once closed, Post silently discards further entries and the next
// Pull discards whatever remains and reports closedAndEmpty.
type ActionList struct {
	mu     sync.Mutex
	queue  []Action
	closed bool

	posted, executed int64
}

// NewActionList returns an empty, open mailbox.
func NewActionList() *ActionList { return &ActionList{} }

// Post appends action to the mailbox, reporting whether the mailbox was
// empty beforehand (the caller uses this to decide whether to wake the
// lobe: "a writer posting to an empty open mailbox signals the rest
// semaphore").
func (l *ActionList) Post(action Action) (wasEmpty bool, accepted bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return false, false
	}
	wasEmpty = len(l.queue) == 0
	l.queue = append(l.queue, action)
	atomic.AddInt64(&l.posted, 1)
	return wasEmpty, true
}

// Pull removes and returns the head action. ok is false if the mailbox is
// currently empty or has been closed; closedAndEmpty reports
// the specific "closed with nothing left" case dispatch_one_action uses
// to flip the lobe into lysing. A closed list accepts no new actions and
// discards its entire remaining tail the first time Pull is called after
// Close, rather than draining and executing what's left: matching
// original_source/xepl.cc's Pull_Action, which calls Flush_Action_list()
// and returns false immediately once list_is_closed.
func (l *ActionList) Pull() (action Action, ok bool, closedAndEmpty bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		l.queue = nil
		return nil, false, true
	}
	if len(l.queue) == 0 {
		return nil, false, false
	}
	action = l.queue[0]
	l.queue = l.queue[1:]
	atomic.AddInt64(&l.executed, 1)
	return action, true, false
}

// Close marks the mailbox closed: no further Post calls are accepted, and
// the next Pull discards any remaining entries and reports closedAndEmpty.
func (l *ActionList) Close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
}

// IsEmpty reports whether the mailbox currently holds no actions.
func (l *ActionList) IsEmpty() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue) == 0
}

// IsClosed reports whether Close has been called.
func (l *ActionList) IsClosed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

// Stats returns the running posted/executed counters, for show_counters.
func (l *ActionList) Stats() (posted, executed int64) {
	return atomic.LoadInt64(&l.posted), atomic.LoadInt64(&l.executed)
}
