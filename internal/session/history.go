// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"qrforge/internal/models"
)

// History is the ordered list of artifacts rendered in one session, oldest
// first. A capacity of 0 keeps every entry; a positive capacity turns it into
// a ring buffer that evicts the oldest entry on overflow.
type History struct {
	capacity int
	entries  []*models.Artifact
}

// NewHistory creates an empty history with the given capacity.
func NewHistory(capacity int) *History {
	if capacity < 0 {
		capacity = 0
	}
	return &History{capacity: capacity}
}

// Capacity returns the configured bound (0 = unbounded).
func (h *History) Capacity() int {
	return h.capacity
}

// Append adds a to the end, evicting the oldest entry when at capacity.
func (h *History) Append(a *models.Artifact) {
	h.entries = append(h.entries, a)
	if h.capacity > 0 && len(h.entries) > h.capacity {
		drop := len(h.entries) - h.capacity
		copy(h.entries, h.entries[drop:])
		for i := len(h.entries) - drop; i < len(h.entries); i++ {
			h.entries[i] = nil
		}
		h.entries = h.entries[:h.capacity]
	}
}

// Entries returns a copy of the entries, oldest first.
func (h *History) Entries() []*models.Artifact {
	out := make([]*models.Artifact, len(h.entries))
	copy(out, h.entries)
	return out
}

// Len returns the number of entries.
func (h *History) Len() int {
	return len(h.entries)
}

// Find returns the entry with the given ID, or nil.
func (h *History) Find(id uuid.UUID) *models.Artifact {
	for _, a := range h.entries {
		if a.ID == id {
			return a
		}
	}
	return nil
}

// Store keeps one History per session ID.
type Store interface {
	// Append adds an artifact to the session's history.
	Append(ctx context.Context, sessionID string, a *models.Artifact) error
	// List returns the session's history, oldest first. Unknown sessions
	// have an empty history.
	List(ctx context.Context, sessionID string) ([]*models.Artifact, error)
	// Get returns one artifact, or nil if the session has no such entry.
	Get(ctx context.Context, sessionID string, id uuid.UUID) (*models.Artifact, error)
	// Clear empties the session's history.
	Clear(ctx context.Context, sessionID string) error
}

// memorySession is a history plus its last access time.
type memorySession struct {
	history  *History
	lastSeen time.Time
}

// MemoryStore holds histories in process memory. Sessions idle longer than
// the TTL are swept by a background goroutine.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*memorySession
	capacity int
	ttl      time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewMemoryStore creates an in-memory store. capacity bounds each history
// (0 = unbounded).
func NewMemoryStore(capacity int, ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &MemoryStore{
		sessions: make(map[string]*memorySession),
		capacity: capacity,
		ttl:      ttl,
		stopCh:   make(chan struct{}),
	}

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.sweep(time.Now())
			case <-s.stopCh:
				return
			}
		}
	}()

	return s
}

// Stop terminates the background sweeper.
func (s *MemoryStore) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// Append adds a to the session's history, creating the history on first use.
func (s *MemoryStore) Append(_ context.Context, sessionID string, a *models.Artifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = &memorySession{history: NewHistory(s.capacity)}
		s.sessions[sessionID] = sess
	}
	sess.history.Append(a)
	sess.lastSeen = time.Now()
	return nil
}

// List returns the session's entries, oldest first.
func (s *MemoryStore) List(_ context.Context, sessionID string) ([]*models.Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	sess.lastSeen = time.Now()
	return sess.history.Entries(), nil
}

// Get returns the artifact with the given ID from the session's history.
func (s *MemoryStore) Get(_ context.Context, sessionID string, id uuid.UUID) (*models.Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	return sess.history.Find(id), nil
}

// Clear drops the session's history.
func (s *MemoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// sweep removes sessions not accessed since now minus the TTL.
func (s *MemoryStore) sweep(now time.Time) {
	cutoff := now.Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		slog.Debug("expired session histories removed", "count", removed)
	}
}
