// Package output renders scan results for the terminal and for files. It
// implements the scan engine's Reporter interface so per-port notifications
// stay a presentation concern.
package output

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
)

// ConsoleReporter prints per-port open notifications as they happen. It is
// safe for concurrent use; probes within a batch complete in arbitrary order.
type ConsoleReporter struct {
	mu      sync.Mutex
	w       io.Writer
	noColor bool
	openFn  func(format string, a ...interface{}) string
}

// NewConsoleReporter creates a reporter writing to w.
func NewConsoleReporter(w io.Writer, noColor bool) *ConsoleReporter {
	openFn := color.New(color.FgMagenta).SprintfFunc()
	if noColor {
		openFn = fmt.Sprintf
	}
	return &ConsoleReporter{
		w:       w,
		noColor: noColor,
		openFn:  openFn,
	}
}

// PortOpen implements scan.Reporter.
func (r *ConsoleReporter) PortOpen(port uint16) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.w, "Open %s\n", r.openFn("%d", port))
}
