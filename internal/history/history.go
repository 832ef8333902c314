package history

import (
	"sync"

	"github.com/Alias1177/Lucent/models"
)

// Capacity is the number of lookups kept
const Capacity = 5

// History is a bounded ledger of recent lookups, newest first
type History struct {
	mu      sync.RWMutex
	entries []models.HistoryEntry
}

// New creates an empty history
func New() *History {
	return &History{entries: make([]models.HistoryEntry, 0, Capacity)}
}

// Push prepends an entry and drops the oldest one beyond Capacity.
// The same trial may appear several times.
func (h *History) Push(entry models.HistoryEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.entries) < Capacity {
		h.entries = append(h.entries, models.HistoryEntry{})
	}
	copy(h.entries[1:], h.entries[:len(h.entries)-1])
	h.entries[0] = entry
}

// List returns a copy of the entries, most recent first
func (h *History) List() []models.HistoryEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]models.HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Len returns the number of entries held
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}
