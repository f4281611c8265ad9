package trace

import (
	"bytes"
	"strings"
	"testing"
)

func TestReportWritesErrorReportPrefixedLine(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf, nil)

	r.Report("statement not found", "root.Hi")

	got := buf.String()
	if !strings.HasPrefix(got, "ErrorReport: statement not found") {
		t.Fatalf("got %q, want ErrorReport-prefixed line", got)
	}
	if !strings.Contains(got, "root.Hi") {
		t.Fatalf("got %q, want context included", got)
	}
}

func TestDispatchTraceSuppressedUntilFlagEnabled(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf, nil)

	r.Dispatch("root", "keyword", "root", "Hi", "")
	if buf.Len() != 0 {
		t.Fatalf("trace line emitted with show_trace disabled")
	}

	r.Flags.SetTrace(true)
	r.Dispatch("root", "keyword", "root", "Hi", "")
	if buf.Len() == 0 {
		t.Fatalf("no trace line emitted with show_trace enabled")
	}
}
