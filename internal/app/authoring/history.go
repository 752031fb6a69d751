package authoring

import (
	"sync"
	"time"

	"github.com/chatflow/chatflow/internal/core/flow"
)

const (
	// DefaultLimit is how many snapshots the history keeps before
	// evicting the oldest.
	DefaultLimit = 50
	// DefaultDebounce is how long after the last edit a snapshot is
	// captured, so a drag producing many mutations records once.
	DefaultDebounce = 500 * time.Millisecond
)

// Snapshot is one recorded graph state: a deep copy of the nodes and
// edges, independent of the live document.
type Snapshot struct {
	Nodes []*flow.Node
	Edges []*flow.Edge
}

// History is the bounded, debounced undo/redo stack of full-graph
// snapshots. It is independent of execution.
type History struct {
	mu       sync.Mutex
	snaps    []*Snapshot
	cursor   int
	limit    int
	debounce time.Duration
	timer    *time.Timer
	pending  *Snapshot
	applying bool
}

// NewHistory creates a history. Non-positive limit or debounce fall
// back to the defaults.
func NewHistory(limit int, debounce time.Duration) *History {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &History{limit: limit, debounce: debounce}
}

// init seeds the history with the document's initial state.
func (h *History) init(f *flow.Flow) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.snaps = []*Snapshot{snapshotOf(f)}
	h.cursor = 0
	h.pending = nil
}

// Record notes a graph mutation. The snapshot is captured now but
// committed to the stack only after the debounce window passes with
// no further edits. Recording is suppressed while an undo or redo is
// being applied.
func (h *History) Record(f *flow.Flow) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.applying {
		return
	}
	h.pending = snapshotOf(f)
	if h.timer == nil {
		h.timer = time.AfterFunc(h.debounce, h.commitPending)
	} else {
		h.timer.Reset(h.debounce)
	}
}

// Flush commits any pending snapshot immediately, without waiting
// for the debounce window.
func (h *History) Flush() {
	h.mu.Lock()
	if h.timer != nil {
		h.timer.Stop()
	}
	h.commitLocked()
	h.mu.Unlock()
}

// Undo moves the cursor back and returns the snapshot to restore, or
// false at the history boundary. A pending edit is committed first
// so undo always reverses the newest state.
func (h *History) Undo() (*Snapshot, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.timer != nil {
		h.timer.Stop()
	}
	h.commitLocked()
	if h.cursor == 0 {
		return nil, false
	}
	h.cursor--
	return cloneSnapshot(h.snaps[h.cursor]), true
}

// Redo moves the cursor forward and returns the snapshot to restore,
// or false at the history boundary.
func (h *History) Redo() (*Snapshot, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.timer != nil {
		h.timer.Stop()
	}
	h.commitLocked()
	if h.cursor >= len(h.snaps)-1 {
		return nil, false
	}
	h.cursor++
	return cloneSnapshot(h.snaps[h.cursor]), true
}

// Len returns the number of committed snapshots.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.snaps)
}

// CanUndo reports whether Undo would restore a snapshot.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cursor > 0 || h.pending != nil
}

// CanRedo reports whether Redo would restore a snapshot.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pending == nil && h.cursor < len(h.snaps)-1
}

func (h *History) commitPending() {
	h.mu.Lock()
	h.commitLocked()
	h.mu.Unlock()
}

// commitLocked appends the pending snapshot: redo states beyond the
// cursor are discarded, then the oldest snapshot is evicted if the
// stack exceeds the limit.
func (h *History) commitLocked() {
	if h.pending == nil {
		return
	}
	h.snaps = append(h.snaps[:h.cursor+1], h.pending)
	h.pending = nil
	if len(h.snaps) > h.limit {
		h.snaps = h.snaps[len(h.snaps)-h.limit:]
	}
	h.cursor = len(h.snaps) - 1
}

func (h *History) setApplying(v bool) {
	h.mu.Lock()
	h.applying = v
	h.mu.Unlock()
}

func snapshotOf(f *flow.Flow) *Snapshot {
	c := f.Clone()
	return &Snapshot{Nodes: c.Nodes, Edges: c.Edges}
}

func cloneSnapshot(s *Snapshot) *Snapshot {
	f := &flow.Flow{Nodes: s.Nodes, Edges: s.Edges}
	c := f.Clone()
	return &Snapshot{Nodes: c.Nodes, Edges: c.Edges}
}
