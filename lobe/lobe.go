package lobe

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/xepl-run/xepl/gene"
	"github.com/xepl-run/xepl/neuron"
	"github.com/xepl-run/xepl/script"
	"github.com/xepl-run/xepl/synapse"
	"github.com/xepl-run/xepl/trace"
	"go.uber.org/zap"
)

// RendonHandle is the scoped rendering context a lobe defers to when
// keyword dispatch falls through to "no action." Defined here rather than
// imported from the rendon package so lobe never depends on rendon;
// rendon.Rendon implements this and calls PushRendon/PopRendon on a
// *Lobe it was handed.
type RendonHandle interface {
	Markup(n script.NeuronHandle, g *gene.Gene, out *strings.Builder)
}

// Lobe is a Neuron that also owns a mailbox and runs a single OS thread:
// every neuron whose nearest enclosing lobe is this one executes only on
// this thread. Grounded on the teacher's neuron.Run() main-loop shape
// (select over an input channel plus periodic housekeeping), replumbed
// from a channel-of-messages onto the mailbox/semaphore model spec
// requires for ordered, close-then-discard shutdown.
type Lobe struct {
	*neuron.Nucleus

	mailbox *ActionList

	restMu   sync.Mutex
	restCond *sync.Cond
	wg       sync.WaitGroup
	lysing   int32

	registry   Dispatcher
	parentLobe *Lobe

	activeNeuron script.NeuronHandle
	activeGene   *gene.Gene
	outdex       *gene.Gene
	indices      []*gene.Gene
	locals       *gene.Gene
	ephemerals   map[string]*gene.Gene
	shortTerm    *shortTermFrame
	activeRendon RendonHandle

	outputString strings.Builder

	log      *zap.Logger
	reporter *trace.Reporter

	dispatched int64
}

// New constructs a Lobe named name, registered against registry for
// operator/mutual lookups during RNA evaluation. parent is nil for a
// root lobe. A nil reporter gets a default (stderr, no-op trace).
func New(name string, registry Dispatcher, parent *Lobe, log *zap.Logger, reporter *trace.Reporter) *Lobe {
	if log == nil {
		log = zap.NewNop()
	}
	if reporter == nil {
		reporter = trace.NewReporter(nil, nil)
	}
	l := &Lobe{
		Nucleus:    neuron.New(neuron.Config{Name: name}),
		mailbox:    NewActionList(),
		registry:   registry,
		parentLobe: parent,
		ephemerals: make(map[string]*gene.Gene),
		log:        log,
		reporter:   reporter,
	}
	l.restCond = sync.NewCond(&l.restMu)
	l.SetHostLobe(l)
	l.activeNeuron = l.Nucleus
	return l
}

// PostSignal satisfies synapse.Poster: it wraps signal and its target
// receptor in a SignalAction and posts it to this lobe's own mailbox,
// waking the lobe if the mailbox was idle.
func (l *Lobe) PostSignal(receptor *synapse.Receptor, signal synapse.Signal) {
	wasEmpty, accepted := l.mailbox.Post(&SignalAction{
		Receptor:      receptor,
		Signal:        signal,
		deliver:       deliver,
		CorrelationID: uuid.New(),
	})
	if accepted && wasEmpty {
		l.wake()
	}
}

// deliver invokes a receptor's bound receive function directly; extracted
// so SignalAction.Execute and same-lobe delivery share one code path.
func deliver(r *synapse.Receptor, s synapse.Signal) {
	r.Activate(s)
}

// Start pushes a root short-term frame on the caller's goroutine, then
// spawns the lobe's thread, which processes this lobe's config children
// (lobe_born) and enters the main dispatch loop. Start returns once the
// thread has been launched; it waits neither for lobe_born to finish nor
// for the lobe to exit.
func (l *Lobe) Start(configGenes []*gene.Gene) {
	l.pushShortTerm()
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		l.lobeBorn(configGenes)
		l.mainLoop()
	}()
}

// lobeBorn runs once at startup against any <config> children supplied,
// evaluating them the same way a dispatch would (a hook point for forms
// that want to run setup keywords before the first real action arrives).
func (l *Lobe) lobeBorn(configGenes []*gene.Gene) {
	for _, cfg := range configGenes {
		l.SetActiveGene(cfg)
		if err := l.DispatchGene(cfg); err != nil {
			l.ReportError(err)
		}
	}
}

// mainLoop is the lobe's entire thread body: drain the mailbox, run
// periodic housekeeping, rest, repeat, until lysing.
func (l *Lobe) mainLoop() {
	for !l.isLysing() {
		for !l.isLysing() && l.dispatchOneAction() {
			l.closeDispatch()
		}
		if !l.isLysing() {
			l.restNow()
		}
	}
	l.lobeDying()
}

func (l *Lobe) isLysing() bool { return atomic.LoadInt32(&l.lysing) == 1 }

func (l *Lobe) setLysing() { atomic.StoreInt32(&l.lysing, 1) }

// dispatchOneAction pulls and executes at most one mailbox entry,
// reporting whether one was run.
func (l *Lobe) dispatchOneAction() bool {
	if l.isLysing() {
		return false
	}
	action, ok, closedAndEmpty := l.mailbox.Pull()
	if !ok {
		if closedAndEmpty {
			l.setLysing()
		}
		return false
	}
	action.Execute()
	atomic.AddInt64(&l.dispatched, 1)
	return true
}

// closeDispatch releases the per-dispatch locals and ephemerals and
// deflates the index stack, per invariant I4.
func (l *Lobe) closeDispatch() {
	l.locals = nil
	l.ephemerals = make(map[string]*gene.Gene)
	l.indices = nil
	l.outdex = nil
}

// CloseDispatch is closeDispatch's exported form, for the CLI's ";"
// line, which asks to end the current dispatch early without waiting for
// the mailbox to naturally reach one between actions.
func (l *Lobe) CloseDispatch() { l.closeDispatch() }

// restNow blocks the lobe's thread until a new action arrives or the
// mailbox is closed. It re-checks under the same lock wake() signals
// through, so a wake racing ahead of the sleep is never lost.
func (l *Lobe) restNow() {
	l.restMu.Lock()
	defer l.restMu.Unlock()
	for l.mailbox.IsEmpty() && !l.mailbox.IsClosed() {
		l.restCond.Wait()
	}
}

// wake signals a resting lobe thread. Safe to call from any goroutine,
// including this lobe's own (where it is simply a no-op cost, since the
// lobe can't be resting in its own call stack).
func (l *Lobe) wake() {
	l.restMu.Lock()
	l.restCond.Broadcast()
	l.restMu.Unlock()
}

// lobeDying runs once, after the main loop exits, before the thread
// returns.
func (l *Lobe) lobeDying() {
	l.Drop()
	l.log.Debug("lobe dying", zap.String("neuron", l.Name()))
}

// Stop closes the mailbox, wakes the thread, and waits for it to exit.
func (l *Lobe) Stop() {
	l.mailbox.Close()
	l.wake()
	l.wg.Wait()
}

// Post enqueues action on this lobe's mailbox from outside, waking the
// thread if it was idle. Used for DropAction delivery from a parent lobe.
func (l *Lobe) Post(action Action) error {
	wasEmpty, accepted := l.mailbox.Post(action)
	if !accepted {
		return errors.Errorf("lobe %q mailbox is closed", l.Name())
	}
	if wasEmpty {
		l.wake()
	}
	return nil
}

// RunSync posts fn as a FuncAction and blocks until it has run on l's own
// thread, the synchronous entry point a foreign goroutine (the CLI host
// loop, a kit callback) uses to touch lobe-owned state safely.
func (l *Lobe) RunSync(fn func()) error {
	action := NewFuncAction(fn)
	if err := l.Post(action); err != nil {
		return err
	}
	<-action.Done()
	return nil
}

// PushRendon installs r as the active rendon, returning the previous one
// so the caller can restore it on exit from the scope.
func (l *Lobe) PushRendon(r RendonHandle) RendonHandle {
	prev := l.activeRendon
	l.activeRendon = r
	return prev
}

// PopRendon restores a previously displaced rendon.
func (l *Lobe) PopRendon(prev RendonHandle) { l.activeRendon = prev }

// ActiveRendon returns the lobe's current rendon, or nil.
func (l *Lobe) ActiveRendon() RendonHandle { return l.activeRendon }

// DispatchedCount reports how many actions this lobe has executed, for
// show_counters.
func (l *Lobe) DispatchedCount() int64 { return atomic.LoadInt64(&l.dispatched) }

// MailboxStats reports the lobe's mailbox posted/executed counters, for
// show_counters.
func (l *Lobe) MailboxStats() (posted, executed int64) { return l.mailbox.Stats() }
