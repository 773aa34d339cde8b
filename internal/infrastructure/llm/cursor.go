package llm

import "sync"

// Cursor remembers which backend to try first. It only advances past a
// backend that failed and never resets on success, so later calls avoid a
// backend that is known to be down.
type Cursor struct {
	mu  sync.Mutex
	pos int
	n   int
}

// NewCursor returns a cursor over n backends starting at 0.
func NewCursor(n int) *Cursor {
	return &Cursor{n: n}
}

// Current returns the backend index a new call starts from.
func (c *Cursor) Current() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pos
}

// Failed moves the cursor to the backend after failed, but only when the
// cursor still points at it. A concurrent call that already advanced past
// that backend wins.
func (c *Cursor) Failed(failed int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.n == 0 || c.pos != failed {
		return
	}
	c.pos = (failed + 1) % c.n
}
