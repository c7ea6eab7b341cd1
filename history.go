package mandel

// maxHistoryEntries bounds the zoom history; the oldest entry is evicted
// first once the bound is exceeded.
const maxHistoryEntries = 50

// HistoryEntry is one view snapshot recorded before a discrete zoom action
// (wheel zoom, rectangle-selection zoom). Continuous smooth-zoom steps are
// not recorded; the UI pushes once per gesture, not per tick.
type HistoryEntry struct {
	CenterX        float64
	CenterY        float64
	Zoom           float64
	IterationBound int32
}

// History is a bounded stack of view snapshots with FIFO eviction and LIFO
// undo access. The zero value is ready to use. Once an entry has been
// pushed, no operation ever empties the history: the last remaining entry
// represents the current view and is never discarded.
//
// History is not safe for concurrent use; like the Viewer it belongs to the
// single UI goroutine.
type History struct {
	entries []HistoryEntry
}

// Push appends a snapshot, evicting the oldest entry if the history would
// exceed its bound.
func (h *History) Push(e HistoryEntry) {
	h.entries = append(h.entries, e)
	if len(h.entries) > maxHistoryEntries {
		copy(h.entries, h.entries[1:])
		h.entries = h.entries[:maxHistoryEntries]
	}
}

// Pop undoes the most recent zoom: it discards the current top and returns
// the previous snapshot with ok = true. With fewer than two entries Pop is
// a no-op and returns the unchanged top (the zero entry if the history is
// empty) with ok = false.
func (h *History) Pop() (e HistoryEntry, ok bool) {
	if len(h.entries) < 2 {
		return h.Top(), false
	}
	h.entries = h.entries[:len(h.entries)-1]
	return h.entries[len(h.entries)-1], true
}

// Top returns the most recent snapshot without removing it, or the zero
// entry if the history is empty.
func (h *History) Top() HistoryEntry {
	if len(h.entries) == 0 {
		return HistoryEntry{}
	}
	return h.entries[len(h.entries)-1]
}

// Len returns the number of stored snapshots.
func (h *History) Len() int {
	return len(h.entries)
}
