package server

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mobile-next/adbocr/session"
	"github.com/mobile-next/adbocr/utils"
)

// ErrSessionNotFound means the session id is unknown, closed or evicted.
var ErrSessionNotFound = errors.New("session not found")

type poolEntry struct {
	mu      sync.Mutex
	session *session.Session
	closed  bool
}

// close releases the session once; callers may already be using it, so
// it waits for them.
func (e *poolEntry) close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	return e.session.Close()
}

// SessionPool holds up to size sessions keyed by random ids. The least
// recently used session is closed when a new one does not fit. Calls for
// the same id are serialized; different ids run in parallel.
type SessionPool struct {
	cache *lru.Cache[string, *poolEntry]
}

func NewSessionPool(size int) (*SessionPool, error) {
	cache, err := lru.NewWithEvict[string, *poolEntry](size, func(id string, e *poolEntry) {
		utils.Verbose("Closing session %s (%s)", id, e.session.ID())
		if err := e.close(); err != nil {
			utils.Warn("Failed to close session %s: %v", id, err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session pool: %w", err)
	}
	return &SessionPool{cache: cache}, nil
}

// Add stores s and returns its id.
func (p *SessionPool) Add(s *session.Session) string {
	id := uuid.NewString()
	p.cache.Add(id, &poolEntry{session: s})
	return id
}

// With runs fn with exclusive use of the session id.
func (p *SessionPool) With(id string, fn func(*session.Session) (interface{}, error)) (interface{}, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: 'sessionId' is required", ErrSessionNotFound)
	}

	entry, ok := p.cache.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.closed {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	return fn(entry.session)
}

// Remove closes and forgets the session id.
func (p *SessionPool) Remove(id string) bool {
	return p.cache.Remove(id)
}

func (p *SessionPool) Len() int {
	return p.cache.Len()
}

// Close closes every session.
func (p *SessionPool) Close() error {
	p.cache.Purge()
	return nil
}
