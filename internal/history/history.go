// Package history provides the bounded undo/redo snapshot stack over
// serialized template source text. Snapshots are full source strings, not
// diffs; the debouncing of pushes during continuous edits is the caller's
// concern (see internal/editor).
package history

// DefaultLimit is the number of past snapshots retained before the oldest
// is evicted.
const DefaultLimit = 50

// History is a bounded two-stack undo/redo structure. The zero value is not
// usable; construct with New.
type History struct {
	past   []string
	future []string
	limit  int
}

// New returns a history bounded to limit past entries. A non-positive limit
// falls back to DefaultLimit.
func New(limit int) *History {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &History{limit: limit}
}

// Push records a snapshot. Pushing a value equal to the most recently pushed
// snapshot is a no-op, so no-op renders do not pollute the stack. Any real
// push drops the redo stack: redo history does not survive a new edit. On
// overflow the oldest past entry is evicted.
func (h *History) Push(snapshot string) {
	if n := len(h.past); n > 0 && h.past[n-1] == snapshot {
		return
	}
	h.past = append(h.past, snapshot)
	h.future = h.future[:0]
	if len(h.past) > h.limit {
		h.past = append(h.past[:0], h.past[len(h.past)-h.limit:]...)
	}
}

// Undo pops the most recent snapshot off the past stack, moves the provided
// current state onto the redo stack, and returns the popped snapshot. The
// second return is false when there is nothing to undo.
func (h *History) Undo(current string) (string, bool) {
	n := len(h.past)
	if n == 0 {
		return "", false
	}
	snapshot := h.past[n-1]
	h.past = h.past[:n-1]
	h.future = append(h.future, current)
	return snapshot, true
}

// Redo is the mirror of Undo: it pops the redo stack, moves the provided
// current state back onto the past stack, and returns the popped snapshot.
func (h *History) Redo(current string) (string, bool) {
	n := len(h.future)
	if n == 0 {
		return "", false
	}
	snapshot := h.future[n-1]
	h.future = h.future[:n-1]
	h.past = append(h.past, current)
	return snapshot, true
}

// CanUndo reports whether Undo would succeed.
func (h *History) CanUndo() bool { return len(h.past) > 0 }

// CanRedo reports whether Redo would succeed.
func (h *History) CanRedo() bool { return len(h.future) > 0 }

// Depth returns the number of past snapshots currently held.
func (h *History) Depth() int { return len(h.past) }
