package reader

import (
	"sync"

	"github.com/google/uuid"
)

// Progress is the ephemeral reading position for one book.
type Progress struct {
	CurrentPage int
	TotalPages  int
}

// Tracker holds per-book reading progress in memory only. It has a
// deliberately separate lifecycle from the catalog record: entries are
// best-effort and lost on process restart.
type Tracker struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]Progress
}

func NewTracker() *Tracker {
	return &Tracker{entries: make(map[uuid.UUID]Progress)}
}

func (t *Tracker) Get(bookID uuid.UUID) (Progress, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p, ok := t.entries[bookID]
	return p, ok
}

func (t *Tracker) Set(bookID uuid.UUID, p Progress) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[bookID] = p
}

// Save records the session's position for later resumption.
func (t *Tracker) Save(bookID uuid.UUID, s *Session) {
	if s.State() != StateLoaded {
		return
	}
	t.Set(bookID, Progress{CurrentPage: s.CurrentPage(), TotalPages: s.TotalPages()})
}

// Restore positions a loaded session at the last saved page, if any.
func (t *Tracker) Restore(bookID uuid.UUID, s *Session) {
	if p, ok := t.Get(bookID); ok {
		s.Resume(p.CurrentPage)
	}
}
