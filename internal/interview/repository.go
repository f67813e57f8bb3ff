package interview

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/pavelanni/interviewer/internal/model"
)

// Entry is one live session together with the lock serializing its operations.
type Entry struct {
	mu         sync.Mutex
	session    *model.Session
	lastActive atomic.Int64
	// status is the last committed view of session, readable without mu.
	status atomic.Pointer[Status]
}

func newEntry(s *model.Session, now time.Time) *Entry {
	e := &Entry{session: s}
	e.touch(now)
	e.publish()
	return e
}

// publish stores a snapshot of the session. Callers hold mu or own the entry.
func (e *Entry) publish() {
	s := e.session
	e.status.Store(&Status{
		SessionID:       s.ID,
		TargetRole:      s.TargetRole,
		Level:           s.Level,
		State:           s.State(),
		CurrentRound:    s.CurrentRound,
		Complete:        s.Complete,
		CompletedRounds: len(s.Rounds),
		StartedAt:       s.StartedAt,
	})
}

// ID returns the session ID.
func (e *Entry) ID() string { return e.session.ID }

// LastActive is the time of the last start or submission.
func (e *Entry) LastActive() time.Time {
	return time.Unix(0, e.lastActive.Load())
}

func (e *Entry) touch(now time.Time) {
	e.lastActive.Store(now.UnixNano())
}

// Repository stores live sessions. Implementations must be safe for concurrent use.
type Repository interface {
	Get(id string) (*Entry, bool)
	Put(e *Entry)
	Remove(id string) bool
	// Expired lists sessions inactive since before cutoff.
	Expired(cutoff time.Time) []string
	Len() int
}

// MemoryRepository is an in-memory Repository. Sessions do not survive a restart.
type MemoryRepository struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

// NewMemoryRepository creates an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{entries: make(map[string]*Entry)}
}

func (r *MemoryRepository) Get(id string) (*Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	return e, ok
}

func (r *MemoryRepository) Put(e *Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[e.ID()] = e
}

func (r *MemoryRepository) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; !ok {
		return false
	}
	delete(r.entries, id)
	return true
}

func (r *MemoryRepository) Expired(cutoff time.Time) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var ids []string
	for id, e := range r.entries {
		if e.LastActive().Before(cutoff) {
			ids = append(ids, id)
		}
	}
	return ids
}

func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
