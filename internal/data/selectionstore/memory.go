package selectionstore

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[uuid.UUID][]byte
	expires  map[uuid.UUID]time.Time
	swept    time.Time
}

// NewMemoryStore keeps state in process. ttl <= 0 disables expiry.
func NewMemoryStore(ttl time.Duration) Store {
	return &memoryStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: map[uuid.UUID][]byte{},
		expires:  map[uuid.UUID]time.Time{},
	}
}

// sweep drops every expired session at most once per ttl, so abandoned
// sessions are reclaimed by other sessions' traffic. Callers hold mu.
func (m *memoryStore) sweep(now time.Time) {
	if m.ttl <= 0 || now.Sub(m.swept) < m.ttl {
		return
	}
	m.swept = now
	for id, exp := range m.expires {
		if now.After(exp) {
			delete(m.sessions, id)
			delete(m.expires, id)
		}
	}
}

// States are stored encoded so callers never share maps with the store.
func (m *memoryStore) load(sessionID uuid.UUID) (*SessionState, error) {
	now := m.now()
	m.sweep(now)
	raw, ok := m.sessions[sessionID]
	if ok && m.ttl > 0 && now.After(m.expires[sessionID]) {
		delete(m.sessions, sessionID)
		delete(m.expires, sessionID)
		ok = false
	}
	if !ok {
		return newState(sessionID), nil
	}
	st := newState(sessionID)
	if err := json.Unmarshal(raw, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (m *memoryStore) Get(_ context.Context, sessionID uuid.UUID) (*SessionState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load(sessionID)
}

func (m *memoryStore) Update(ctx context.Context, sessionID uuid.UUID, fn func(st *SessionState) error) (*SessionState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	st, err := m.load(sessionID)
	if err != nil {
		return nil, err
	}
	if err := fn(st); err != nil {
		return nil, err
	}
	st.SessionID = sessionID
	st.UpdatedAt = m.now().UTC()
	raw, err := json.Marshal(st)
	if err != nil {
		return nil, err
	}
	m.sessions[sessionID] = raw
	if m.ttl > 0 {
		m.expires[sessionID] = m.now().Add(m.ttl)
	}
	return st, nil
}

func (m *memoryStore) Delete(_ context.Context, sessionID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	delete(m.expires, sessionID)
	return nil
}
