package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cloo-solutions/dreamcourse/internal/domain"
)

// MemorySessionStore keeps sessions in process memory. Sessions hold live
// index handles, so they are not persisted across restarts.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
	active   map[string]time.Time
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]*domain.Session),
		active:   make(map[string]time.Time),
	}
}

// Save records the session and its activity time. The caller must hold the
// session lock.
func (r *MemorySessionStore) Save(_ context.Context, s *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
	r.active[s.ID] = s.LastActiveAt
	return nil
}

func (r *MemorySessionStore) Get(_ context.Context, id string) (*domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return s, nil
}

func (r *MemorySessionStore) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return domain.ErrSessionNotFound
	}
	delete(r.sessions, id)
	delete(r.active, id)
	return nil
}

// IdleSince returns ids of sessions last active before cutoff, oldest first.
func (r *MemorySessionStore) IdleSince(_ context.Context, cutoff time.Time) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var ids []string
	for id, at := range r.active {
		if at.Before(cutoff) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		if !r.active[ids[i]].Equal(r.active[ids[j]]) {
			return r.active[ids[i]].Before(r.active[ids[j]])
		}
		return ids[i] < ids[j]
	})
	return ids, nil
}

// Len reports the number of live sessions.
func (r *MemorySessionStore) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
