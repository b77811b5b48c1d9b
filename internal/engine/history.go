package engine

import (
	"sync"

	"github.com/seantiz/algolab/internal/model"
)

// DefaultHistorySize is the number of records an engine keeps.
const DefaultHistorySize = 20

// History is a fixed-capacity ring of execution records. Appending to a full
// ring drops the oldest record. It is safe for concurrent use.
type History struct {
	mu    sync.Mutex
	buf   []model.HistoryRecord
	start int
	size  int
}

// NewHistory creates a ring holding at most capacity records. A non-positive
// capacity uses DefaultHistorySize.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistorySize
	}
	return &History{buf: make([]model.HistoryRecord, capacity)}
}

// Append adds rec as the newest record.
func (h *History) Append(rec model.HistoryRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.size < len(h.buf) {
		h.buf[(h.start+h.size)%len(h.buf)] = rec
		h.size++
		return
	}
	h.buf[h.start] = rec
	h.start = (h.start + 1) % len(h.buf)
}

// All returns the records oldest first.
func (h *History) All() []model.HistoryRecord {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]model.HistoryRecord, h.size)
	for i := range h.size {
		out[i] = h.buf[(h.start+i)%len(h.buf)]
	}
	return out
}

// Clear drops every record.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	clear(h.buf)
	h.start, h.size = 0, 0
}

// Len returns the number of records held.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.size
}

// Cap returns the ring capacity.
func (h *History) Cap() int { return len(h.buf) }
