package roundtrip

import (
	"fmt"
	"io"
	"sync"

	"github.com/davecgh/go-spew/spew"
)

// lockedWriter serializes writes so that every trace entry lands in one piece.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

func (l *lockedWriter) enabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w != io.Discard
}

func (l *lockedWriter) swap(w io.Writer) io.Writer {
	l.mu.Lock()
	defer l.mu.Unlock()
	prev := l.w
	l.w = w
	return prev
}

var debugOut = &lockedWriter{w: io.Discard}

// SetDebugOutput redirects the process-wide trace of serialized forms and
// collected records to w, for example os.Stdout while chasing a failing test.
// A nil w discards output again. The returned function restores the previous
// writer:
//
//	t.Cleanup(roundtrip.SetDebugOutput(os.Stdout))
func SetDebugOutput(w io.Writer) (restore func()) {
	if w == nil {
		w = io.Discard
	}
	prev := debugOut.swap(w)
	return func() { debugOut.swap(prev) }
}

var dumper = spew.ConfigState{
	Indent:                  "  ",
	SortKeys:                true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

func tracef(w *lockedWriter, format string, args ...any) {
	if !w.enabled() {
		return
	}
	fmt.Fprintf(w, format, args...)
}

func traceDump(w *lockedWriter, label string, v any) {
	if !w.enabled() {
		return
	}
	fmt.Fprintf(w, "%s:\n%s", label, dumper.Sdump(v))
}
