package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Rydhlnst/capstone-project/internal/analysis"
	"github.com/Rydhlnst/capstone-project/internal/common"
)

var ErrNotFound = errors.New("session not found")

// Store is keyed, mutable, concurrently-accessed session storage. Lookups by
// id on the write paths never fail: an unseen id creates an empty session.
//
// Update runs fn on a copy of the session under that session's lock and
// commits the copy only when fn returns nil, so a failed turn leaves the
// stored history untouched and two concurrent updates of the same session
// cannot lose each other's appends.
type Store interface {
	Create(ctx context.Context) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	GetOrCreate(ctx context.Context, id string) (*Session, error)
	AppendAnalysis(ctx context.Context, id string, res analysis.Result) error
	Update(ctx context.Context, id string, fn func(*Session) error) error
}

// MemoryStore keeps sessions in a process-local map. No eviction, no size
// bound, no durability across restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*memoryEntry
}

type memoryEntry struct {
	mu   sync.Mutex
	sess *Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*memoryEntry)}
}

func (s *MemoryStore) Create(ctx context.Context) (*Session, error) {
	_ = ctx
	id, err := common.NewSessionID()
	if err != nil {
		return nil, err
	}
	e := s.entryFor(id)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sess.Clone(), nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	_ = ctx
	s.mu.RLock()
	e, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sess.Clone(), nil
}

func (s *MemoryStore) GetOrCreate(ctx context.Context, id string) (*Session, error) {
	_ = ctx
	e := s.entryFor(id)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sess.Clone(), nil
}

func (s *MemoryStore) AppendAnalysis(ctx context.Context, id string, res analysis.Result) error {
	return s.Update(ctx, id, func(sess *Session) error {
		sess.Analyses = append(sess.Analyses, res)
		return nil
	})
}

func (s *MemoryStore) Update(ctx context.Context, id string, fn func(*Session) error) error {
	_ = ctx
	e := s.entryFor(id)
	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.sess.Clone()
	if err := fn(next); err != nil {
		return err
	}
	e.sess = next
	return nil
}

func (s *MemoryStore) entryFor(id string) *memoryEntry {
	s.mu.RLock()
	e, ok := s.sessions[id]
	s.mu.RUnlock()
	if ok {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.sessions[id]; ok {
		return e
	}
	e = &memoryEntry{sess: &Session{SessionID: id, CreatedAt: time.Now()}}
	s.sessions[id] = e
	return e
}
