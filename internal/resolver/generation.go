package resolver

import "sync/atomic"

// Generation hands out monotonically increasing request ids so a caller can
// discard results of requests it no longer cares about.
type Generation struct {
	current atomic.Uint64
}

// Next starts a new request and returns its id. Earlier ids become stale.
func (g *Generation) Next() uint64 {
	return g.current.Add(1)
}

// Current returns the id of the most recent request.
func (g *Generation) Current() uint64 {
	return g.current.Load()
}

// IsCurrent reports whether id belongs to the most recent request.
func (g *Generation) IsCurrent(id uint64) bool {
	return id != 0 && g.current.Load() == id
}

// Invalidate makes every outstanding id stale, e.g. when the view closes.
func (g *Generation) Invalidate() {
	g.current.Add(1)
}
