// Package trace implements the uniform error-recording and dispatch-trace
// surface every other package reports through: the mandated
// "ErrorReport: " stderr line (§7) plus a structured zap mirror, and the
// single-line dispatch trace emitted when show_trace is enabled (§6).
// Grounded on the teacher's component.HealthMetrics.Issues []string idiom
// (a flat, append-only record of what went wrong), generalized here into a
// structured event with a dedicated writer instead of a plain string slice.
package trace

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"go.uber.org/zap"
)

// Flags are the three process-wide observability toggles from §6. They are
// plain atomics rather than a mutex-guarded struct because they are read
// on every dispatch and written rarely (at most once per CLI flag or
// config load).
type Flags struct {
	trace         int32
	counters      int32
	memoryCounts  int32
}

func (f *Flags) SetTrace(on bool)        { f.store(&f.trace, on) }
func (f *Flags) SetCounters(on bool)     { f.store(&f.counters, on) }
func (f *Flags) SetMemoryCounts(on bool) { f.store(&f.memoryCounts, on) }

func (f *Flags) Trace() bool        { return atomic.LoadInt32(&f.trace) != 0 }
func (f *Flags) Counters() bool     { return atomic.LoadInt32(&f.counters) != 0 }
func (f *Flags) MemoryCounts() bool { return atomic.LoadInt32(&f.memoryCounts) != 0 }

func (f *Flags) store(cell *int32, on bool) {
	v := int32(0)
	if on {
		v = 1
	}
	atomic.StoreInt32(cell, v)
}

// Reporter is the process-wide error/trace sink: every package that needs
// to surface a non-fatal failure or a dispatch trace line holds one,
// injected at construction rather than reached for as a global, matching
// the teacher's callback-injection discipline.
type Reporter struct {
	out   io.Writer
	log   *zap.Logger
	Flags *Flags
}

// NewReporter writes ErrorReport lines to out and mirrors them through log.
// A nil log defaults to zap.NewNop(); a nil out defaults to os.Stderr.
func NewReporter(out io.Writer, log *zap.Logger) *Reporter {
	if out == nil {
		out = os.Stderr
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Reporter{out: out, log: log, Flags: &Flags{}}
}

// Report writes a single "ErrorReport: reason (context)" line to the
// configured writer and mirrors it through zap at Warn level, per §7's
// "every error takes the form of a single line to the error stream."
func (r *Reporter) Report(reason string, context string) {
	if context != "" {
		fmt.Fprintf(r.out, "ErrorReport: %s (%s)\n", reason, context)
	} else {
		fmt.Fprintf(r.out, "ErrorReport: %s\n", reason)
	}
	r.log.Warn("error report", zap.String("reason", reason), zap.String("context", context))
}

// ReportErr is Report applied to a Go error's message, for callers already
// holding an error value.
func (r *Reporter) ReportErr(err error, context string) {
	if err == nil {
		return
	}
	r.Report(err.Error(), context)
}

// Dispatch emits the §6 trace line "{lobe}: {action}: {neuron-path}.{name}
// {detail}" when show_trace is enabled; a no-op otherwise, so call sites
// never need to guard it themselves.
func (r *Reporter) Dispatch(lobe, action, neuronPath, name, detail string) {
	if !r.Flags.Trace() {
		return
	}
	fmt.Fprintf(r.out, "%s: %s: %s.%s %s\n", lobe, action, neuronPath, name, detail)
	r.log.Debug("dispatch trace",
		zap.String("lobe", lobe),
		zap.String("action", action),
		zap.String("neuron_path", neuronPath),
		zap.String("name", name),
		zap.String("detail", detail),
	)
}
