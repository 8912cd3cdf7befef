package tui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

var statusSpinner = spinner.MiniDot

// StatusWriter prints a spinning status line to a writer while a blocking
// lookup runs outside of an interactive view. Nothing is drawn when the
// writer is not a terminal.
type StatusWriter struct {
	w       io.Writer
	mu      sync.Mutex
	message string
	started time.Time
	done    chan struct{}
	exited  chan struct{}
	stopped bool
}

// NewStatusWriter starts a background spinner that renders msg to w.
func NewStatusWriter(w io.Writer, msg string) *StatusWriter {
	sw := &StatusWriter{
		w:       w,
		message: msg,
		started: time.Now(),
		done:    make(chan struct{}),
		exited:  make(chan struct{}),
	}
	if !IsTerminal(w) {
		close(sw.exited)
		return sw
	}
	go sw.loop()
	return sw
}

// Update changes the status message and restarts the elapsed timer.
func (sw *StatusWriter) Update(msg string) {
	sw.mu.Lock()
	sw.message = msg
	sw.started = time.Now()
	sw.mu.Unlock()
}

// Stop clears the status line and stops the spinner. It is safe to call more
// than once.
func (sw *StatusWriter) Stop() {
	sw.mu.Lock()
	if sw.stopped {
		sw.mu.Unlock()
		return
	}
	sw.stopped = true
	sw.mu.Unlock()
	close(sw.done)
	<-sw.exited
}

func (sw *StatusWriter) loop() {
	defer close(sw.exited)
	ticker := time.NewTicker(statusSpinner.FPS)
	defer ticker.Stop()

	frame := 0
	for {
		select {
		case <-sw.done:
			fmt.Fprint(sw.w, "\r\033[K")
			return
		case <-ticker.C:
			sw.mu.Lock()
			msg, start := sw.message, sw.started
			sw.mu.Unlock()

			glyph := statusSpinner.Frames[frame%len(statusSpinner.Frames)]
			frame++
			fmt.Fprintf(sw.w, "\r\033[K%s %s (%s)", glyph, msg, formatElapsed(time.Since(start)))
		}
	}
}

func formatElapsed(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < 10*time.Second {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
}
